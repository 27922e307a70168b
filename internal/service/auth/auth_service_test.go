package auth

import (
	"context"
	"testing"

	"github.com/ougirez/supplytwin/internal/domain/dto"
	"github.com/ougirez/supplytwin/internal/pkg/constants"
	"github.com/ougirez/supplytwin/internal/pkg/store"
	"github.com/ougirez/supplytwin/internal/pkg/utils"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupAndLogin(t *testing.T) {
	viper.Set(constants.ViperSecretKey, "test-secret")
	t.Cleanup(func() { viper.Set(constants.ViperSecretKey, "") })

	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := NewService(st)

	resp, err := svc.Signup(ctx, &dto.SignupRequest{Username: "Planner@Example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "User created", resp.Message)

	user, err := st.GetUserByEmail(ctx, "planner@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", user.PasswordHash)
	assert.Equal(t, constants.PlanFree, user.Plan)

	_, err = svc.Signup(ctx, &dto.SignupRequest{Email: "planner@example.com", Password: "other12"})
	assert.ErrorIs(t, err, ErrUserExists)
	assert.Equal(t, 409, constants.CodeOf(err))

	login, err := svc.Login(ctx, &dto.LoginRequest{Username: "planner@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, constants.RoleUser, login.Role)
	assert.Equal(t, "planner@example.com", login.UserName)

	claims, err := utils.ParseAuthToken(login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "planner@example.com", claims.Subject)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	svc := NewService(store.NewMemoryStore())

	_, err := svc.Signup(ctx, &dto.SignupRequest{Email: "a@b.io", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "a@b.io", Password: "nope"})
	assert.ErrorIs(t, err, constants.ErrInvalidCredentials)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "missing@b.io", Password: "secret1"})
	assert.ErrorIs(t, err, constants.ErrInvalidCredentials)
	assert.Equal(t, 401, constants.CodeOf(err))
}
