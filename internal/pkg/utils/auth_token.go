package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/ougirez/supplytwin/internal/pkg/constants"
	"github.com/spf13/viper"
)

const defaultTokenTTL = 24 * time.Hour

// AuthTokenWrapper is the claim set carried by access tokens.
type AuthTokenWrapper struct {
	UserID int64  `json:"uid"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Plan   string `json:"plan"`
	jwt.StandardClaims
}

func GenerateAuthToken(w *AuthTokenWrapper) (string, error) {
	secret := viper.GetString(constants.ViperSecretKey)
	if secret == "" {
		return "", fmt.Errorf("auth secret is not configured")
	}

	ttl := viper.GetDuration(constants.ViperAuthTokenTTL)
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}

	now := time.Now()
	claims := *w
	claims.Subject = w.Email
	claims.IssuedAt = now.Unix()
	claims.ExpiresAt = now.Add(ttl).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

func ParseAuthToken(raw string) (*AuthTokenWrapper, error) {
	secret := viper.GetString(constants.ViperSecretKey)
	if secret == "" {
		return nil, fmt.Errorf("%w: auth secret is not configured", constants.ErrUnauthorized)
	}

	var claims AuthTokenWrapper
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", constants.ErrUnauthorized, err.Error())
	}
	if !token.Valid {
		return nil, constants.ErrUnauthorized
	}

	return &claims, nil
}
