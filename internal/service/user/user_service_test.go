package user

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ougirez/supplytwin/internal/domain"
	"github.com/ougirez/supplytwin/internal/pkg/constants"
	"github.com/ougirez/supplytwin/internal/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefsRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(store.NewMemoryStore())

	require.NoError(t, svc.SetPref(ctx, 1, "baselineRunId", json.RawMessage(`"run-1"`)))

	got, err := svc.GetPref(ctx, 1, "baselineRunId")
	require.NoError(t, err)
	assert.JSONEq(t, `"run-1"`, string(got))

	_, err = svc.GetPref(ctx, 2, "baselineRunId")
	assert.ErrorIs(t, err, constants.ErrDBNotFound, "prefs are per user")

	require.NoError(t, svc.DeletePref(ctx, 1, "baselineRunId"))
	_, err = svc.GetPref(ctx, 1, "baselineRunId")
	assert.ErrorIs(t, err, constants.ErrDBNotFound)
}

func TestPrefsRejectUnknownKeysAndBadValues(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(store.NewMemoryStore())

	err := svc.SetPref(ctx, 1, "favouriteColor", json.RawMessage(`1`))
	assert.ErrorIs(t, err, constants.ErrUnknownPrefKey)

	err = svc.SetPref(ctx, 1, "reports", json.RawMessage(`{nope`))
	assert.ErrorIs(t, err, constants.ErrBadRequest)
}

func TestUpdateName(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := NewUserService(st)

	u := &domain.User{Email: "a@b.io", Role: constants.RoleUser, Plan: constants.PlanFree}
	require.NoError(t, st.CreateUser(ctx, u))

	_, err := svc.UpdateName(ctx, u.ID, " ")
	assert.ErrorIs(t, err, constants.ErrMissingInput)

	updated, err := svc.UpdateName(ctx, u.ID, "Ada")
	require.NoError(t, err)
	assert.Equal(t, "Ada", updated.Name)

	me, err := svc.Me(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", me.Name)
}
