package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ougirez/supplytwin/internal/domain/dto"
)

func (c *Controller) Signup(ctx echo.Context) error {
	var request dto.SignupRequest
	if err := ctx.Bind(&request); err != nil {
		return err
	}

	resp, err := c.auth.Signup(ctx.Request().Context(), &request)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusCreated, resp)
}

func (c *Controller) Login(ctx echo.Context) error {
	var request dto.LoginRequest
	if err := ctx.Bind(&request); err != nil {
		return err
	}

	resp, err := c.auth.Login(ctx.Request().Context(), &request)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, resp)
}
