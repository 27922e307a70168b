package simulation

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/ougirez/supplytwin/internal/domain"
	"github.com/ougirez/supplytwin/internal/pkg/constants"
	"github.com/ougirez/supplytwin/internal/pkg/logger"
	"github.com/ougirez/supplytwin/internal/pkg/metrics"
	"github.com/ougirez/supplytwin/internal/service/kpi"
	"github.com/ougirez/supplytwin/internal/service/scenario"
)

// Upload is one input file as received from the user.
type Upload struct {
	Filename string
	Data     []byte
}

type SubmitRequest struct {
	UserID       int64
	Name         string
	Files        map[string]Upload
	Scenario     *domain.ScenarioPayload
	ScenarioID   *uuid.UUID
	ScenarioName string
	AuthToken    string
}

type SubmitResult struct {
	Run        *domain.Run           `json:"run"`
	Transforms []scenario.FileReport `json:"transforms,omitempty"`
	Outputs    []domain.OutputStatus `json:"outputs"`
}

// Submit validates the uploads, applies the scenario, posts the run and records it. Missing
// files are reported before any network call. A failure to record the run is logged and does
// not fail the submission.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	if missing := missingFiles(req.Files); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", constants.ErrMissingInput, strings.Join(missing, ", "))
	}

	form := scenario.NewForm()
	for _, name := range scenario.RequiredFiles {
		upload := req.Files[name]
		filename := upload.Filename
		if filename == "" {
			filename = name + ".csv"
		}
		form.Set(name, filename, upload.Data)
	}

	var reports []scenario.FileReport
	if req.Scenario != nil {
		req.Scenario.ClampSeverity()
		reports = scenario.ApplyScenario(ctx, form, req.Scenario)

		raw, err := sonic.Marshal(req.Scenario)
		if err != nil {
			return nil, fmt.Errorf("marshal scenario: %w", err)
		}
		form.SetValue(scenario.FieldScenario, string(raw))
	}

	body, contentType, err := form.Encode()
	if err != nil {
		return nil, err
	}

	urls, err := s.backend.Run(ctx, body, contentType, req.AuthToken)
	if err != nil {
		metrics.RunsSubmitted.WithLabelValues("error").Inc()
		logger.Errorf(ctx, "simulation run failed: %v", err)
		return nil, fmt.Errorf("backend.Run: %w", err)
	}
	metrics.RunsSubmitted.WithLabelValues("ok").Inc()

	run := &domain.Run{
		ID:           uuid.New(),
		UserID:       req.UserID,
		Name:         strings.TrimSpace(req.Name),
		Timestamp:    s.now().UTC(),
		URLs:         urls,
		Scenario:     req.Scenario,
		ScenarioID:   req.ScenarioID,
		ScenarioName: req.ScenarioName,
	}
	if run.Name == "" {
		run.Name = "Run " + run.Timestamp.Format("2006-01-02 15:04:05")
	}

	statuses := s.Outputs(ctx, run)
	run.KPIs = s.headlineKPIs(run)

	if s.recorder != nil {
		if err := s.recorder.SaveRun(ctx, run); err != nil {
			metrics.RunPersistFailures.Inc()
			logger.Warnf(ctx, "run %s completed but was not recorded: %v", run.ID, err)
		}
	}

	return &SubmitResult{Run: run, Transforms: reports, Outputs: statuses}, nil
}

// headlineKPIs computes unfiltered KPIs from whatever outputs are already cached.
func (s *Service) headlineKPIs(run *domain.Run) domain.KPIs {
	rows := make(map[domain.OutputKind][]domain.Row)
	for _, kind := range domain.ChartKinds {
		if t, ok := s.cache.get(run.ID, kind); ok {
			rows[kind] = t.Rows
		}
	}
	return kpi.Compute(rows)
}

func missingFiles(files map[string]Upload) []string {
	var missing []string
	for _, name := range scenario.RequiredFiles {
		if f, ok := files[name]; !ok || len(f.Data) == 0 {
			missing = append(missing, name)
		}
	}
	return missing
}
