package admin

import (
	"context"
	"testing"

	"github.com/ougirez/supplytwin/internal/domain"
	"github.com/ougirez/supplytwin/internal/domain/dto"
	"github.com/ougirez/supplytwin/internal/pkg/constants"
	"github.com/ougirez/supplytwin/internal/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T) (store.Store, *domain.User, *domain.User) {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemoryStore()

	admin := &domain.User{Email: "root@example.com", Role: constants.RoleAdmin, Plan: constants.PlanFree}
	user := &domain.User{Email: "user@example.com", Role: constants.RoleUser, Plan: "pro"}
	require.NoError(t, st.CreateUser(ctx, admin))
	require.NoError(t, st.CreateUser(ctx, user))
	require.NoError(t, st.CreateScenario(ctx, &domain.Scenario{UserID: user.ID, Name: "s"}))
	require.NoError(t, st.CreateRun(ctx, &domain.Run{UserID: user.ID, Name: "r"}))

	return st, admin, user
}

func TestStats(t *testing.T) {
	st, _, _ := seed(t)
	svc := NewService(st)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &domain.AdminStats{Users: 2, Admins: 1, PaidUsers: 1, Simulations: 1, Scenarios: 1}, stats)
}

func TestUpdateUser(t *testing.T) {
	st, admin, user := seed(t)
	svc := NewService(st)
	ctx := context.Background()

	role := constants.RoleUser
	_, err := svc.UpdateUser(ctx, admin.ID, admin.ID, &dto.UpdateUserRequest{Role: &role})
	assert.ErrorIs(t, err, ErrSelfDemotion)

	promote := constants.RoleAdmin
	updated, err := svc.UpdateUser(ctx, admin.ID, user.ID, &dto.UpdateUserRequest{Role: &promote})
	require.NoError(t, err)
	assert.Equal(t, constants.RoleAdmin, updated.Role)
	assert.Equal(t, "pro", updated.Plan)
}

func TestDeleteUserCascades(t *testing.T) {
	st, admin, user := seed(t)
	svc := NewService(st)
	ctx := context.Background()

	assert.ErrorIs(t, svc.DeleteUser(ctx, admin.ID, admin.ID), constants.ErrBadRequest)

	require.NoError(t, svc.DeleteUser(ctx, admin.ID, user.ID))

	runs, err := svc.ListSimulations(ctx, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, runs)

	scenarios, err := svc.ListScenarios(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, scenarios)

	assert.ErrorIs(t, svc.DeleteUser(ctx, admin.ID, user.ID), constants.ErrDBNotFound)
}
