package controller

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/ougirez/supplytwin/internal/domain"
	"github.com/ougirez/supplytwin/internal/domain/dto"
	"github.com/ougirez/supplytwin/internal/pkg/constants"
	"github.com/ougirez/supplytwin/internal/pkg/prefs"
	"github.com/ougirez/supplytwin/internal/service/aggregate"
	"github.com/ougirez/supplytwin/internal/service/scenario"
	"github.com/ougirez/supplytwin/internal/service/simulation"
)

const maxUploadBytes = 64 << 20

// RunSimulation accepts the six input files plus an optional scenario, either inline as JSON
// or by saved scenario id.
func (c *Controller) RunSimulation(ctx echo.Context) error {
	id, err := userID(ctx)
	if err != nil {
		return err
	}

	if err := ctx.Request().ParseMultipartForm(maxUploadBytes); err != nil {
		return fmt.Errorf("%w: %s", constants.ErrBadRequest, err.Error())
	}
	form := ctx.Request().MultipartForm

	files := make(map[string]simulation.Upload, len(scenario.RequiredFiles))
	for _, name := range scenario.RequiredFiles {
		headers := form.File[name]
		if len(headers) == 0 {
			continue
		}
		upload, err := readUpload(headers[0])
		if err != nil {
			return err
		}
		files[name] = upload
	}

	req := simulation.SubmitRequest{
		UserID: id,
		Name:   ctx.FormValue("name"),
		Files:  files,
	}
	req.AuthToken, _ = ctx.Get(constants.CtxKeyToken).(string)

	if raw := strings.TrimSpace(ctx.FormValue(scenario.FieldScenario)); raw != "" {
		var payload domain.ScenarioPayload
		if err := sonic.UnmarshalString(raw, &payload); err != nil {
			return fmt.Errorf("%w: scenario: %s", constants.ErrBadRequest, err.Error())
		}
		req.Scenario = &payload
		req.ScenarioName = ctx.FormValue("scenario_name")
	}

	if raw := strings.TrimSpace(ctx.FormValue("scenario_id")); raw != "" {
		scenarioID, err := uuid.Parse(raw)
		if err != nil {
			return fmt.Errorf("%w: invalid scenario_id", constants.ErrBadRequest)
		}
		saved, err := c.scenarios.Get(ctx.Request().Context(), id, scenarioID)
		if err != nil {
			return err
		}
		req.ScenarioID = &saved.ID
		req.ScenarioName = saved.Name
		if req.Scenario == nil {
			req.Scenario = &saved.Payload
		}
	}

	result, err := c.simulations.Submit(ctx.Request().Context(), req)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, result)
}

func readUpload(h *multipart.FileHeader) (simulation.Upload, error) {
	f, err := h.Open()
	if err != nil {
		return simulation.Upload{}, fmt.Errorf("%w: %s", constants.ErrBadRequest, err.Error())
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return simulation.Upload{}, fmt.Errorf("%w: %s", constants.ErrBadRequest, err.Error())
	}

	return simulation.Upload{Filename: h.Filename, Data: data}, nil
}

func (c *Controller) ListSimulations(ctx echo.Context) error {
	id, err := userID(ctx)
	if err != nil {
		return err
	}

	runs, err := c.simulations.List(ctx.Request().Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, runs)
}

func (c *Controller) GetSimulation(ctx echo.Context) error {
	run, err := c.loadRun(ctx, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, run)
}

func (c *Controller) DeleteSimulation(ctx echo.Context) error {
	ownerID, err := owner(ctx)
	if err != nil {
		return err
	}
	runID, err := uuidParam(ctx, "id")
	if err != nil {
		return err
	}

	if err := c.simulations.Delete(ctx.Request().Context(), ownerID, runID); err != nil {
		return err
	}

	return ctx.NoContent(http.StatusNoContent)
}

func (c *Controller) GetOutputs(ctx echo.Context) error {
	run, err := c.loadRun(ctx, ctx.Param("id"))
	if err != nil {
		return err
	}

	statuses := c.simulations.Outputs(ctx.Request().Context(), run)
	resp := dto.OutputsResponse{RunID: run.ID.String(), Outputs: statuses}
	if t, err := c.simulations.Table(ctx.Request().Context(), run, domain.OutputInventory, aggregate.Filter{}); err == nil {
		resp.SKUs = aggregate.SKUs(t.Rows)
		resp.Facilities = aggregate.Facilities(t.Rows)
	}

	return ctx.JSON(http.StatusOK, resp)
}

func (c *Controller) RefreshOutputs(ctx echo.Context) error {
	run, err := c.loadRun(ctx, ctx.Param("id"))
	if err != nil {
		return err
	}

	statuses, err := c.simulations.Refresh(ctx.Request().Context(), run)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, dto.OutputsResponse{RunID: run.ID.String(), Outputs: statuses})
}

func (c *Controller) GetChart(ctx echo.Context) error {
	run, err := c.loadRun(ctx, ctx.Param("id"))
	if err != nil {
		return err
	}
	query, err := bindChartQuery(ctx)
	if err != nil {
		return err
	}

	chart, err := c.simulations.Chart(ctx.Request().Context(), run, toFilter(query))
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, chart)
}

func (c *Controller) GetKPIs(ctx echo.Context) error {
	run, err := c.loadRun(ctx, ctx.Param("id"))
	if err != nil {
		return err
	}
	query, err := bindChartQuery(ctx)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, c.simulations.KPIs(ctx.Request().Context(), run, toFilter(query)))
}

// CompareSimulations overlays a baseline run. Without ?baseline= the caller's saved
// baselineRunId preference is used.
func (c *Controller) CompareSimulations(ctx echo.Context) error {
	run, err := c.loadRun(ctx, ctx.Param("id"))
	if err != nil {
		return err
	}
	query, err := bindChartQuery(ctx)
	if err != nil {
		return err
	}

	baselineID := query.Baseline
	if baselineID == "" {
		id, err := userID(ctx)
		if err != nil {
			return err
		}
		err = c.users.Prefs(id).Get(ctx.Request().Context(), prefs.KeyBaselineRunID, &baselineID)
		if errors.Is(err, prefs.ErrNotFound) {
			return fmt.Errorf("%w: baseline", constants.ErrMissingInput)
		}
		if err != nil {
			return err
		}
	}

	baseline, err := c.loadRun(ctx, baselineID)
	if err != nil {
		return err
	}

	chart, err := c.simulations.Compare(ctx.Request().Context(), baseline, run, toFilter(query))
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, chart)
}

func (c *Controller) GetTable(ctx echo.Context) error {
	run, kind, query, err := c.tableArgs(ctx)
	if err != nil {
		return err
	}

	table, err := c.simulations.Table(ctx.Request().Context(), run, kind, toFilter(query))
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, dto.NewTableResponse(table))
}

func (c *Controller) ExportTable(ctx echo.Context) error {
	run, kind, query, err := c.tableArgs(ctx)
	if err != nil {
		return err
	}

	data, err := c.simulations.ExportCSV(ctx.Request().Context(), run, kind, toFilter(query))
	if err != nil {
		return err
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s-%s.csv"`, run.ID, kind))
	return ctx.Blob(http.StatusOK, "text/csv; charset=utf-8", data)
}

func (c *Controller) tableArgs(ctx echo.Context) (*domain.Run, domain.OutputKind, dto.ChartQuery, error) {
	run, err := c.loadRun(ctx, ctx.Param("id"))
	if err != nil {
		return nil, "", dto.ChartQuery{}, err
	}
	kind, ok := domain.ParseOutputKind(ctx.Param("output"))
	if !ok {
		return nil, "", dto.ChartQuery{}, fmt.Errorf("%w: unknown output %q", constants.ErrBadRequest, ctx.Param("output"))
	}
	query, err := bindChartQuery(ctx)
	if err != nil {
		return nil, "", dto.ChartQuery{}, err
	}
	return run, kind, query, nil
}

func (c *Controller) loadRun(ctx echo.Context, rawID string) (*domain.Run, error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}
	runID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid run id", constants.ErrBadRequest)
	}
	return c.simulations.Get(ctx.Request().Context(), ownerID, runID)
}

func bindChartQuery(ctx echo.Context) (dto.ChartQuery, error) {
	var query dto.ChartQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(ctx, &query); err != nil {
		return query, fmt.Errorf("%w: %s", constants.ErrBadRequest, err.Error())
	}
	if err := ctx.Validate(&query); err != nil {
		return query, err
	}
	return query, nil
}

func toFilter(q dto.ChartQuery) aggregate.Filter {
	var skus []string
	for _, s := range q.SKUs {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				skus = append(skus, part)
			}
		}
	}

	return aggregate.Filter{
		SKUs:     skus,
		Facility: q.Facility,
		From:     q.From,
		To:       q.To,
		Output:   domain.OutputKind(strings.ToLower(q.Output)),
		GroupBy:  aggregate.GroupBy(q.GroupBy),
	}
}
