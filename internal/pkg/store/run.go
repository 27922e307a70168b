package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/ougirez/supplytwin/internal/domain"
	"github.com/ougirez/supplytwin/internal/pkg/constants"
)

var runColumns = []string{
	"id", "user_id", "name", "created_at", "urls", "kpis", "scenario", "scenario_id", "scenario_name",
}

func (s *store) CreateRun(ctx context.Context, run *domain.Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}

	urls, err := json.Marshal(run.URLs)
	if err != nil {
		return fmt.Errorf("failed to marshal urls: %w", err)
	}
	kpis, err := json.Marshal(run.KPIs)
	if err != nil {
		return fmt.Errorf("failed to marshal kpis: %w", err)
	}

	var scenario []byte
	if run.Scenario != nil {
		if scenario, err = json.Marshal(run.Scenario); err != nil {
			return fmt.Errorf("failed to marshal scenario: %w", err)
		}
	}

	query := builder().Insert(tableRuns).
		Columns("id", "user_id", "name", "created_at", "urls", "kpis", "scenario", "scenario_id", "scenario_name").
		Values(run.ID, run.UserID, run.Name, run.Timestamp, urls, kpis, scenario, run.ScenarioID, run.ScenarioName)

	if _, err := s.pool.Execx(ctx, query); err != nil {
		return wrapErr(err)
	}

	return nil
}

func (s *store) GetRun(ctx context.Context, id uuid.UUID, ownerID *int64) (*domain.Run, error) {
	query := builder().Select(runColumns...).
		From(tableRuns).
		Where(ownedBy(id, ownerID))

	var selected domain.Run
	if err := s.pool.Getx(ctx, &selected, query); err != nil {
		return nil, wrapErr(err)
	}

	return &selected, nil
}

func (s *store) ListRuns(ctx context.Context, opts ListOpts) ([]*domain.Run, error) {
	query := paginate(builder().Select(runColumns...).
		From(tableRuns).
		OrderBy("created_at DESC"), opts)

	var selected []*domain.Run
	if err := s.pool.Selectx(ctx, &selected, query); err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}

func (s *store) DeleteRun(ctx context.Context, id uuid.UUID, ownerID *int64) error {
	query := builder().Delete(tableRuns).Where(ownedBy(id, ownerID))

	n, err := s.pool.Execx(ctx, query)
	if err != nil {
		return wrapErr(err)
	}
	if n == 0 {
		return constants.ErrDBNotFound
	}

	return nil
}
