package utils

import (
	"errors"
	"testing"

	"github.com/golang-jwt/jwt"
	"github.com/ougirez/supplytwin/internal/pkg/constants"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthTokenRoundTrip(t *testing.T) {
	viper.Set(constants.ViperSecretKey, "test-secret")
	t.Cleanup(func() { viper.Set(constants.ViperSecretKey, "") })

	raw, err := GenerateAuthToken(&AuthTokenWrapper{UserID: 7, Email: "a@b.c", Role: constants.RoleAdmin, Plan: "pro"})
	require.NoError(t, err)

	claims, err := ParseAuthToken(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "a@b.c", claims.Subject)
	assert.Equal(t, constants.RoleAdmin, claims.Role)
}

func TestParseAuthTokenWrongSecret(t *testing.T) {
	viper.Set(constants.ViperSecretKey, "one")
	raw, err := GenerateAuthToken(&AuthTokenWrapper{UserID: 1})
	require.NoError(t, err)

	viper.Set(constants.ViperSecretKey, "two")
	t.Cleanup(func() { viper.Set(constants.ViperSecretKey, "") })

	_, err = ParseAuthToken(raw)
	require.Error(t, err)
	assert.True(t, errors.Is(err, constants.ErrUnauthorized))
}

func TestGenerateAuthTokenNoSecret(t *testing.T) {
	viper.Set(constants.ViperSecretKey, "")
	_, err := GenerateAuthToken(&AuthTokenWrapper{UserID: 1})
	assert.Error(t, err)
}

func TestParseAuthTokenNoSecret(t *testing.T) {
	viper.Set(constants.ViperSecretKey, "")

	claims := AuthTokenWrapper{UserID: 1, Role: constants.RoleAdmin}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(""))
	require.NoError(t, err)

	_, err = ParseAuthToken(raw)
	require.Error(t, err)
	assert.True(t, errors.Is(err, constants.ErrUnauthorized))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)

	ok, err := CheckPassword(hash, "hunter2")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword(hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = CheckPassword("not-a-hash", "x")
	assert.Error(t, err)
}
