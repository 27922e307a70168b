package store

import (
	"context"

	"github.com/ougirez/supplytwin/internal/domain"
	"github.com/ougirez/supplytwin/internal/pkg/constants"
)

func (s *store) Stats(ctx context.Context) (*domain.AdminStats, error) {
	query := builder().Select().
		Column("(select count(*) from " + tableUsers + ") as users").
		Column("(select count(*) from "+tableUsers+" where role = ?) as admins", constants.RoleAdmin).
		Column("(select count(*) from "+tableUsers+" where plan <> ?) as paid_users", constants.PlanFree).
		Column("(select count(*) from " + tableRuns + ") as simulations").
		Column("(select count(*) from " + tableScenarios + ") as scenarios")

	var selected domain.AdminStats
	if err := s.pool.Getx(ctx, &selected, query); err != nil {
		return nil, wrapErr(err)
	}

	return &selected, nil
}
