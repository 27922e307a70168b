package controller

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/ougirez/supplytwin/internal/pkg/constants"
	"github.com/ougirez/supplytwin/internal/pkg/utils"
	"github.com/ougirez/supplytwin/internal/service/admin"
	"github.com/ougirez/supplytwin/internal/service/auth"
	"github.com/ougirez/supplytwin/internal/service/billing"
	"github.com/ougirez/supplytwin/internal/service/scenario"
	"github.com/ougirez/supplytwin/internal/service/simulation"
	"github.com/ougirez/supplytwin/internal/service/user"
)

type Controller struct {
	auth        *auth.Service
	users       *user.Service
	scenarios   *scenario.Service
	simulations *simulation.Service
	billing     *billing.Service
	admin       *admin.Service
}

func NewController(
	auth *auth.Service,
	users *user.Service,
	scenarios *scenario.Service,
	simulations *simulation.Service,
	billing *billing.Service,
	admin *admin.Service,
) *Controller {
	return &Controller{
		auth:        auth,
		users:       users,
		scenarios:   scenarios,
		simulations: simulations,
		billing:     billing,
		admin:       admin,
	}
}

func userID(ctx echo.Context) (int64, error) {
	id, ok := ctx.Get(constants.CtxKeyUserID).(int64)
	if !ok {
		return 0, constants.ErrUnauthorized
	}
	return id, nil
}

// owner scopes lookups to the caller; admins see every user's rows.
func owner(ctx echo.Context) (*int64, error) {
	id, err := userID(ctx)
	if err != nil {
		return nil, err
	}
	if claims, ok := ctx.Get(constants.CtxKeyClaims).(*utils.AuthTokenWrapper); ok && claims.Role == constants.RoleAdmin {
		return nil, nil
	}
	return &id, nil
}

func uuidParam(ctx echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s", constants.ErrBadRequest, name)
	}
	return id, nil
}

func int64Param(ctx echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s", constants.ErrBadRequest, name)
	}
	return id, nil
}

func pageParams(ctx echo.Context) (limit, offset uint64) {
	limit, _ = strconv.ParseUint(ctx.QueryParam("limit"), 10, 64)
	offset, _ = strconv.ParseUint(ctx.QueryParam("offset"), 10, 64)
	return limit, offset
}
