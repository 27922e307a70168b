package prefs

import (
	"context"
	"errors"
	"fmt"

	"github.com/ougirez/supplytwin/internal/domain"
)

// DefaultRunLogLimit bounds the run history kept under simulation_runs.
const DefaultRunLogLimit = 50

// RunLog records runs into the simulation_runs list, newest first, truncating the tail.
type RunLog struct {
	store Store
	limit int
}

func NewRunLog(store Store, limit int) *RunLog {
	if limit <= 0 {
		limit = DefaultRunLogLimit
	}
	return &RunLog{store: store, limit: limit}
}

func (l *RunLog) SaveRun(ctx context.Context, run *domain.Run) error {
	runs, err := l.List(ctx)
	if err != nil {
		return err
	}

	runs = append([]domain.Run{*run}, runs...)
	if len(runs) > l.limit {
		runs = runs[:l.limit]
	}

	if err := l.store.Set(ctx, KeySimulationRuns, runs); err != nil {
		return fmt.Errorf("save run log: %w", err)
	}
	return nil
}

func (l *RunLog) List(ctx context.Context) ([]domain.Run, error) {
	var runs []domain.Run
	err := l.store.Get(ctx, KeySimulationRuns, &runs)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load run log: %w", err)
	}
	return runs, nil
}
