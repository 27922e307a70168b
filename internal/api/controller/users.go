package controller

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ougirez/supplytwin/internal/domain/dto"
	"github.com/ougirez/supplytwin/internal/pkg/constants"
)

const maxPrefBytes = 1 << 20

func (c *Controller) GetMe(ctx echo.Context) error {
	id, err := userID(ctx)
	if err != nil {
		return err
	}

	me, err := c.users.Me(ctx.Request().Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, me)
}

func (c *Controller) UpdateMe(ctx echo.Context) error {
	id, err := userID(ctx)
	if err != nil {
		return err
	}

	var request dto.UpdateProfileRequest
	if err := ctx.Bind(&request); err != nil {
		return err
	}

	me, err := c.users.UpdateName(ctx.Request().Context(), id, request.Name)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, me)
}

func (c *Controller) GetPref(ctx echo.Context) error {
	id, err := userID(ctx)
	if err != nil {
		return err
	}

	value, err := c.users.GetPref(ctx.Request().Context(), id, ctx.Param("key"))
	if err != nil {
		return err
	}

	return ctx.JSONBlob(http.StatusOK, value)
}

func (c *Controller) PutPref(ctx echo.Context) error {
	id, err := userID(ctx)
	if err != nil {
		return err
	}

	body, err := io.ReadAll(io.LimitReader(ctx.Request().Body, maxPrefBytes))
	if err != nil {
		return fmt.Errorf("%w: %s", constants.ErrBadRequest, err.Error())
	}

	if err := c.users.SetPref(ctx.Request().Context(), id, ctx.Param("key"), json.RawMessage(body)); err != nil {
		return err
	}

	return ctx.NoContent(http.StatusNoContent)
}

func (c *Controller) DeletePref(ctx echo.Context) error {
	id, err := userID(ctx)
	if err != nil {
		return err
	}

	if err := c.users.DeletePref(ctx.Request().Context(), id, ctx.Param("key")); err != nil {
		return err
	}

	return ctx.NoContent(http.StatusNoContent)
}
