// Package admin backs the admin console: user management and cross-user listings.
package admin

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/ougirez/supplytwin/internal/domain"
	"github.com/ougirez/supplytwin/internal/domain/dto"
	"github.com/ougirez/supplytwin/internal/pkg/constants"
	"github.com/ougirez/supplytwin/internal/pkg/store"
)

var ErrSelfDemotion = constants.NewCodedError("admins cannot remove their own admin role", 400)

type Service struct {
	store store.Store
}

func NewService(store store.Store) *Service {
	return &Service{store: store}
}

func (s *Service) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("store.ListUsers: %w", err)
	}
	return users, nil
}

// UpdateUser changes a user's name, role or plan. An admin cannot demote themself.
func (s *Service) UpdateUser(ctx context.Context, actorID, id int64, req *dto.UpdateUserRequest) (*domain.User, error) {
	if actorID == id && req.Role != nil && *req.Role != constants.RoleAdmin {
		return nil, ErrSelfDemotion
	}

	user, err := s.store.UpdateUser(ctx, id, store.UpdateUserOpts{
		Name: req.Name,
		Role: req.Role,
		Plan: req.Plan,
	})
	if err != nil {
		return nil, fmt.Errorf("store.UpdateUser: %w", err)
	}
	return user, nil
}

func (s *Service) DeleteUser(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return fmt.Errorf("%w: cannot delete yourself", constants.ErrBadRequest)
	}
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("store.DeleteUser: %w", err)
	}
	return nil
}

func (s *Service) ListSimulations(ctx context.Context, limit, offset uint64) ([]*domain.Run, error) {
	runs, err := s.store.ListRuns(ctx, store.ListOpts{Limit: limit, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("store.ListRuns: %w", err)
	}
	return runs, nil
}

func (s *Service) ListScenarios(ctx context.Context, limit, offset uint64) ([]*domain.Scenario, error) {
	scenarios, err := s.store.ListScenarios(ctx, store.ListOpts{Limit: limit, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("store.ListScenarios: %w", err)
	}
	return scenarios, nil
}

func (s *Service) DeleteScenario(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteScenario(ctx, id, nil); err != nil {
		return fmt.Errorf("store.DeleteScenario: %w", err)
	}
	return nil
}

func (s *Service) Stats(ctx context.Context) (*domain.AdminStats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("store.Stats: %w", err)
	}
	return stats, nil
}
