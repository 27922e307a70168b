package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/ougirez/supplytwin/internal/domain"
	"github.com/ougirez/supplytwin/internal/pkg/store/xpgx"
)

type Pool = xpgx.Pool

type Store interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByStripeCustomer(ctx context.Context, customerID string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	UpdateUser(ctx context.Context, id int64, opts UpdateUserOpts) (*domain.User, error)
	DeleteUser(ctx context.Context, id int64) error

	CreateScenario(ctx context.Context, scenario *domain.Scenario) error
	GetScenario(ctx context.Context, id uuid.UUID, ownerID *int64) (*domain.Scenario, error)
	ListScenarios(ctx context.Context, opts ListOpts) ([]*domain.Scenario, error)
	UpdateScenario(ctx context.Context, scenario *domain.Scenario) error
	DeleteScenario(ctx context.Context, id uuid.UUID, ownerID *int64) error

	CreateRun(ctx context.Context, run *domain.Run) error
	GetRun(ctx context.Context, id uuid.UUID, ownerID *int64) (*domain.Run, error)
	ListRuns(ctx context.Context, opts ListOpts) ([]*domain.Run, error)
	DeleteRun(ctx context.Context, id uuid.UUID, ownerID *int64) error

	LoadPref(ctx context.Context, userID int64, key string) ([]byte, error)
	SavePref(ctx context.Context, userID int64, key string, raw []byte) error
	RemovePref(ctx context.Context, userID int64, key string) error

	Stats(ctx context.Context) (*domain.AdminStats, error)
}

// ListOpts scopes list queries. A nil OwnerID lists every user's rows (admin).
type ListOpts struct {
	OwnerID *int64
	Limit   uint64
	Offset  uint64
}

type store struct {
	pool Pool
}

func NewStore(pool Pool) Store {
	return &store{pool}
}
