package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ougirez/supplytwin/internal/domain/dto"
)

func (c *Controller) ListScenarios(ctx echo.Context) error {
	id, err := userID(ctx)
	if err != nil {
		return err
	}

	scenarios, err := c.scenarios.List(ctx.Request().Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, scenarios)
}

func (c *Controller) GetScenario(ctx echo.Context) error {
	id, err := userID(ctx)
	if err != nil {
		return err
	}
	scenarioID, err := uuidParam(ctx, "id")
	if err != nil {
		return err
	}

	scenario, err := c.scenarios.Get(ctx.Request().Context(), id, scenarioID)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, scenario)
}

func (c *Controller) CreateScenario(ctx echo.Context) error {
	id, err := userID(ctx)
	if err != nil {
		return err
	}

	var request dto.ScenarioRequest
	if err := ctx.Bind(&request); err != nil {
		return err
	}

	scenario, err := c.scenarios.Create(ctx.Request().Context(), id, request.Name, request.Payload)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusCreated, scenario)
}

func (c *Controller) UpdateScenario(ctx echo.Context) error {
	id, err := userID(ctx)
	if err != nil {
		return err
	}
	scenarioID, err := uuidParam(ctx, "id")
	if err != nil {
		return err
	}

	var request dto.ScenarioRequest
	if err := ctx.Bind(&request); err != nil {
		return err
	}

	scenario, err := c.scenarios.Update(ctx.Request().Context(), id, scenarioID, request.Name, request.Payload)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, scenario)
}

func (c *Controller) DeleteScenario(ctx echo.Context) error {
	id, err := userID(ctx)
	if err != nil {
		return err
	}
	scenarioID, err := uuidParam(ctx, "id")
	if err != nil {
		return err
	}

	if err := c.scenarios.Delete(ctx.Request().Context(), id, scenarioID); err != nil {
		return err
	}

	return ctx.NoContent(http.StatusNoContent)
}
