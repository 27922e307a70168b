package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/ougirez/supplytwin/internal/domain"
	"github.com/ougirez/supplytwin/internal/pkg/constants"
)

var userColumns = []string{
	"id", "email", "password_hash", "name", "role", "plan", "stripe_customer_id", "created_at", "updated_at",
}

// UpdateUserOpts carries the fields to change; nil fields are left alone.
type UpdateUserOpts struct {
	Name             *string
	Role             *string
	Plan             *string
	StripeCustomerID *string
}

func (o UpdateUserOpts) empty() bool {
	return o.Name == nil && o.Role == nil && o.Plan == nil && o.StripeCustomerID == nil
}

func (s *store) CreateUser(ctx context.Context, user *domain.User) error {
	query := builder().Insert(tableUsers).
		Columns("email", "password_hash", "name", "role", "plan").
		Values(user.Email, user.PasswordHash, user.Name, user.Role, user.Plan).
		Suffix("RETURNING id, created_at, updated_at")

	if err := s.pool.Getx(ctx, user, query); err != nil {
		return wrapErr(err)
	}

	return nil
}

func (s *store) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.getUser(ctx, sq.Eq{"id": id})
}

func (s *store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getUser(ctx, sq.Eq{"email": email})
}

func (s *store) GetUserByStripeCustomer(ctx context.Context, customerID string) (*domain.User, error) {
	return s.getUser(ctx, sq.Eq{"stripe_customer_id": customerID})
}

func (s *store) getUser(ctx context.Context, where sq.Eq) (*domain.User, error) {
	query := builder().Select(userColumns...).
		From(tableUsers).
		Where(where)

	var selected domain.User
	if err := s.pool.Getx(ctx, &selected, query); err != nil {
		return nil, wrapErr(err)
	}

	return &selected, nil
}

func (s *store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	query := builder().Select(userColumns...).
		From(tableUsers).
		OrderBy("id")

	var selected []*domain.User
	if err := s.pool.Selectx(ctx, &selected, query); err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}

func (s *store) UpdateUser(ctx context.Context, id int64, opts UpdateUserOpts) (*domain.User, error) {
	if opts.empty() {
		return s.GetUserByID(ctx, id)
	}

	query := builder().Update(tableUsers).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id})

	if opts.Name != nil {
		query = query.Set("name", *opts.Name)
	}
	if opts.Role != nil {
		query = query.Set("role", *opts.Role)
	}
	if opts.Plan != nil {
		query = query.Set("plan", *opts.Plan)
	}
	if opts.StripeCustomerID != nil {
		query = query.Set("stripe_customer_id", *opts.StripeCustomerID)
	}

	query = query.Suffix(fmt.Sprintf("RETURNING %s", joinColumns(userColumns)))

	var updated domain.User
	if err := s.pool.Getx(ctx, &updated, query); err != nil {
		return nil, wrapErr(err)
	}

	return &updated, nil
}

func (s *store) DeleteUser(ctx context.Context, id int64) error {
	query := builder().Delete(tableUsers).Where(sq.Eq{"id": id})

	n, err := s.pool.Execx(ctx, query)
	if err != nil {
		return wrapErr(err)
	}
	if n == 0 {
		return constants.ErrDBNotFound
	}

	return nil
}
