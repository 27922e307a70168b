package api

import (
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/ougirez/supplytwin/internal/pkg/constants"
	"github.com/ougirez/supplytwin/internal/pkg/logger"
	"github.com/ougirez/supplytwin/internal/pkg/utils"
	"go.uber.org/zap"
)

// RequestIDMiddleware tags the request context so every log line of the request carries
// its id.
func RequestIDMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		id := ctx.Request().Header.Get(constants.HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		ctx.Response().Header().Set(constants.HeaderRequestID, id)

		reqCtx := logger.WithFields(ctx.Request().Context(), zap.String("request_id", id))
		ctx.SetRequest(ctx.Request().WithContext(reqCtx))

		return next(ctx)
	}
}

// AuthMiddleware accepts a bearer token or the auth cookie.
func (svc *APIService) AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		raw := bearerToken(ctx.Request().Header.Get(echo.HeaderAuthorization))
		if raw == "" {
			cookie, err := ctx.Cookie(constants.CookieKeyAuthToken)
			if err != nil || cookie.Value == "" {
				return constants.ErrMissingAuthToken
			}
			raw = cookie.Value
		}

		token, err := utils.ParseAuthToken(raw)
		if err != nil {
			return err
		}

		ctx.Set(constants.CtxKeyUserID, token.UserID)
		ctx.Set(constants.CtxKeyClaims, token)
		ctx.Set(constants.CtxKeyToken, raw)

		reqCtx := logger.WithFields(ctx.Request().Context(), zap.Int64("user_id", token.UserID))
		ctx.SetRequest(ctx.Request().WithContext(reqCtx))

		return next(ctx)
	}
}

// AdminMiddleware must run after AuthMiddleware. The role is re-read from the store so that a
// demoted admin loses access before their token expires.
func (svc *APIService) AdminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		userID, ok := ctx.Get(constants.CtxKeyUserID).(int64)
		if !ok {
			return constants.ErrUnauthorized
		}

		user, err := svc.store.GetUserByID(ctx.Request().Context(), userID)
		if err != nil {
			return constants.ErrUnauthorized
		}
		if user.Role != constants.RoleAdmin {
			return constants.ErrForbidden
		}

		return next(ctx)
	}
}

func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
