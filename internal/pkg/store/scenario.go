package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/ougirez/supplytwin/internal/domain"
	"github.com/ougirez/supplytwin/internal/pkg/constants"
)

var scenarioColumns = []string{"id", "user_id", "name", "payload", "created_at", "updated_at"}

func (s *store) CreateScenario(ctx context.Context, scenario *domain.Scenario) error {
	if scenario.ID == uuid.Nil {
		scenario.ID = uuid.New()
	}

	payload, err := json.Marshal(scenario.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal scenario payload: %w", err)
	}

	query := builder().Insert(tableScenarios).
		Columns("id", "user_id", "name", "payload").
		Values(scenario.ID, scenario.UserID, scenario.Name, payload).
		Suffix("RETURNING created_at, updated_at")

	if err := s.pool.Getx(ctx, scenario, query); err != nil {
		return wrapErr(err)
	}

	return nil
}

func (s *store) GetScenario(ctx context.Context, id uuid.UUID, ownerID *int64) (*domain.Scenario, error) {
	query := builder().Select(scenarioColumns...).
		From(tableScenarios).
		Where(ownedBy(id, ownerID))

	var selected domain.Scenario
	if err := s.pool.Getx(ctx, &selected, query); err != nil {
		return nil, wrapErr(err)
	}

	return &selected, nil
}

func (s *store) ListScenarios(ctx context.Context, opts ListOpts) ([]*domain.Scenario, error) {
	query := paginate(builder().Select(scenarioColumns...).
		From(tableScenarios).
		OrderBy("updated_at DESC"), opts)

	var selected []*domain.Scenario
	if err := s.pool.Selectx(ctx, &selected, query); err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}

func (s *store) UpdateScenario(ctx context.Context, scenario *domain.Scenario) error {
	payload, err := json.Marshal(scenario.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal scenario payload: %w", err)
	}

	query := builder().Update(tableScenarios).
		Set("name", scenario.Name).
		Set("payload", payload).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": scenario.ID, "user_id": scenario.UserID}).
		Suffix("RETURNING created_at, updated_at")

	if err := s.pool.Getx(ctx, scenario, query); err != nil {
		return wrapErr(err)
	}

	return nil
}

func (s *store) DeleteScenario(ctx context.Context, id uuid.UUID, ownerID *int64) error {
	query := builder().Delete(tableScenarios).Where(ownedBy(id, ownerID))

	n, err := s.pool.Execx(ctx, query)
	if err != nil {
		return wrapErr(err)
	}
	if n == 0 {
		return constants.ErrDBNotFound
	}

	return nil
}

func ownedBy(id uuid.UUID, ownerID *int64) sq.Eq {
	where := sq.Eq{"id": id}
	if ownerID != nil {
		where["user_id"] = *ownerID
	}
	return where
}

func paginate(query sq.SelectBuilder, opts ListOpts) sq.SelectBuilder {
	if opts.OwnerID != nil {
		query = query.Where(sq.Eq{"user_id": *opts.OwnerID})
	}
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}
	return query
}

func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}
