package controller

import (
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ougirez/supplytwin/internal/domain/dto"
	"github.com/ougirez/supplytwin/internal/pkg/constants"
)

const maxWebhookBytes = 1 << 16

func (c *Controller) CreateCheckoutSession(ctx echo.Context) error {
	id, err := userID(ctx)
	if err != nil {
		return err
	}

	var request dto.CheckoutRequest
	if err := ctx.Bind(&request); err != nil {
		return err
	}

	me, err := c.users.Me(ctx.Request().Context(), id)
	if err != nil {
		return err
	}

	url, err := c.billing.Checkout(ctx.Request().Context(), me, &request)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, dto.URLResponse{URL: url})
}

func (c *Controller) CustomerPortal(ctx echo.Context) error {
	id, err := userID(ctx)
	if err != nil {
		return err
	}

	me, err := c.users.Me(ctx.Request().Context(), id)
	if err != nil {
		return err
	}

	url, err := c.billing.Portal(ctx.Request().Context(), me)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, dto.URLResponse{URL: url})
}

func (c *Controller) StripeWebhook(ctx echo.Context) error {
	payload, err := io.ReadAll(io.LimitReader(ctx.Request().Body, maxWebhookBytes))
	if err != nil {
		return fmt.Errorf("%w: %s", constants.ErrBadRequest, err.Error())
	}

	err = c.billing.HandleWebhook(ctx.Request().Context(), payload, ctx.Request().Header.Get("Stripe-Signature"))
	if err != nil {
		return err
	}

	return ctx.NoContent(http.StatusOK)
}
