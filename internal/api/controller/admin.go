package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ougirez/supplytwin/internal/domain/dto"
)

func (c *Controller) AdminListUsers(ctx echo.Context) error {
	users, err := c.admin.ListUsers(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, users)
}

func (c *Controller) AdminUpdateUser(ctx echo.Context) error {
	actorID, err := userID(ctx)
	if err != nil {
		return err
	}
	id, err := int64Param(ctx, "id")
	if err != nil {
		return err
	}

	var request dto.UpdateUserRequest
	if err := ctx.Bind(&request); err != nil {
		return err
	}

	user, err := c.admin.UpdateUser(ctx.Request().Context(), actorID, id, &request)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, user)
}

func (c *Controller) AdminDeleteUser(ctx echo.Context) error {
	actorID, err := userID(ctx)
	if err != nil {
		return err
	}
	id, err := int64Param(ctx, "id")
	if err != nil {
		return err
	}

	if err := c.admin.DeleteUser(ctx.Request().Context(), actorID, id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (c *Controller) AdminListSimulations(ctx echo.Context) error {
	limit, offset := pageParams(ctx)
	runs, err := c.admin.ListSimulations(ctx.Request().Context(), limit, offset)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, runs)
}

func (c *Controller) AdminDeleteSimulation(ctx echo.Context) error {
	id, err := uuidParam(ctx, "id")
	if err != nil {
		return err
	}

	if err := c.simulations.Delete(ctx.Request().Context(), nil, id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (c *Controller) AdminListScenarios(ctx echo.Context) error {
	limit, offset := pageParams(ctx)
	scenarios, err := c.admin.ListScenarios(ctx.Request().Context(), limit, offset)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, scenarios)
}

func (c *Controller) AdminDeleteScenario(ctx echo.Context) error {
	id, err := uuidParam(ctx, "id")
	if err != nil {
		return err
	}

	if err := c.admin.DeleteScenario(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (c *Controller) AdminStats(ctx echo.Context) error {
	stats, err := c.admin.Stats(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, stats)
}
