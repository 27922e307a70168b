// Package scenario owns what-if scenarios: the saved library and the CSV transforms applied to
// uploaded inputs before a run.
package scenario

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ougirez/supplytwin/internal/domain"
	"github.com/ougirez/supplytwin/internal/pkg/constants"
	"github.com/ougirez/supplytwin/internal/pkg/store"
)

var ErrEmptyName = constants.NewCodedError("scenario name is required", 400)

type Service struct {
	store store.Store
}

func NewService(store store.Store) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context, userID int64) ([]*domain.Scenario, error) {
	scenarios, err := s.store.ListScenarios(ctx, store.ListOpts{OwnerID: &userID})
	if err != nil {
		return nil, fmt.Errorf("store.ListScenarios: %w", err)
	}
	return scenarios, nil
}

func (s *Service) Get(ctx context.Context, userID int64, id uuid.UUID) (*domain.Scenario, error) {
	scenario, err := s.store.GetScenario(ctx, id, &userID)
	if err != nil {
		return nil, fmt.Errorf("store.GetScenario: %w", err)
	}
	return scenario, nil
}

func (s *Service) Create(ctx context.Context, userID int64, name string, payload domain.ScenarioPayload) (*domain.Scenario, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	payload.ClampSeverity()
	scenario := &domain.Scenario{UserID: userID, Name: name, Payload: payload}
	if err := s.store.CreateScenario(ctx, scenario); err != nil {
		return nil, fmt.Errorf("store.CreateScenario: %w", err)
	}

	return scenario, nil
}

func (s *Service) Update(ctx context.Context, userID int64, id uuid.UUID, name string, payload domain.ScenarioPayload) (*domain.Scenario, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	payload.ClampSeverity()
	scenario := &domain.Scenario{ID: id, UserID: userID, Name: name, Payload: payload}
	if err := s.store.UpdateScenario(ctx, scenario); err != nil {
		return nil, fmt.Errorf("store.UpdateScenario: %w", err)
	}

	return scenario, nil
}

func (s *Service) Delete(ctx context.Context, userID int64, id uuid.UUID) error {
	if err := s.store.DeleteScenario(ctx, id, &userID); err != nil {
		return fmt.Errorf("store.DeleteScenario: %w", err)
	}
	return nil
}
