// Package simulation submits runs to the simulation backend and serves charts, KPIs and tables
// from the output files it returns.
package simulation

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/ougirez/supplytwin/internal/domain"
	"github.com/ougirez/supplytwin/internal/pkg/generation"
	"github.com/ougirez/supplytwin/internal/pkg/store"
)

// Backend is the part of backend.Client the service depends on.
type Backend interface {
	Run(ctx context.Context, body io.Reader, contentType, authToken string) (domain.OutputURLs, error)
	FetchCSV(ctx context.Context, rawURL string) (*domain.Table, error)
}

// RunRecorder persists a run after a successful submission.
type RunRecorder interface {
	SaveRun(ctx context.Context, run *domain.Run) error
}

// RecorderFunc adapts a function to RunRecorder.
type RecorderFunc func(ctx context.Context, run *domain.Run) error

func (f RecorderFunc) SaveRun(ctx context.Context, run *domain.Run) error {
	return f(ctx, run)
}

// StoreRecorder records runs in the runs table.
func StoreRecorder(s store.Store) RunRecorder {
	return RecorderFunc(func(ctx context.Context, run *domain.Run) error {
		return s.CreateRun(ctx, run)
	})
}

type Config struct {
	MaxCachedRuns int
}

type Service struct {
	backend     Backend
	recorder    RunRecorder
	store       store.Store
	cache       *rowCache
	generations *generation.Tracker
	now         func() time.Time
}

func NewService(backend Backend, recorder RunRecorder, store store.Store, cfg Config) *Service {
	return &Service{
		backend:     backend,
		recorder:    recorder,
		store:       store,
		cache:       newRowCache(cfg.MaxCachedRuns),
		generations: generation.NewTracker(),
		now:         time.Now,
	}
}

func (s *Service) List(ctx context.Context, userID int64) ([]*domain.Run, error) {
	runs, err := s.store.ListRuns(ctx, store.ListOpts{OwnerID: &userID})
	if err != nil {
		return nil, fmt.Errorf("store.ListRuns: %w", err)
	}
	return runs, nil
}

// Get loads a run. A nil ownerID skips the ownership check.
func (s *Service) Get(ctx context.Context, ownerID *int64, id uuid.UUID) (*domain.Run, error) {
	run, err := s.store.GetRun(ctx, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("store.GetRun: %w", err)
	}
	return run, nil
}

func (s *Service) Delete(ctx context.Context, ownerID *int64, id uuid.UUID) error {
	if err := s.store.DeleteRun(ctx, id, ownerID); err != nil {
		return fmt.Errorf("store.DeleteRun: %w", err)
	}

	s.cache.drop(id)
	s.generations.Forget(id.String())

	return nil
}
