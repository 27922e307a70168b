package user

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ougirez/supplytwin/internal/domain"
	"github.com/ougirez/supplytwin/internal/pkg/constants"
	"github.com/ougirez/supplytwin/internal/pkg/prefs"
	"github.com/ougirez/supplytwin/internal/pkg/store"
)

type Service struct {
	store store.Store
}

func NewUserService(store store.Store) *Service {
	return &Service{store}
}

func (svc *Service) Me(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := svc.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("store.GetUserByID: %w", err)
	}
	return user, nil
}

func (svc *Service) UpdateName(ctx context.Context, userID int64, name string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name", constants.ErrMissingInput)
	}

	user, err := svc.store.UpdateUser(ctx, userID, store.UpdateUserOpts{Name: &name})
	if err != nil {
		return nil, fmt.Errorf("store.UpdateUser: %w", err)
	}
	return user, nil
}

// Prefs returns the user's typed preference store, backed by user_prefs.
func (svc *Service) Prefs(userID int64) prefs.Store {
	return prefs.New(store.PrefsEngine(svc.store, userID))
}

func (svc *Service) GetPref(ctx context.Context, userID int64, rawKey string) (json.RawMessage, error) {
	key, err := prefs.ParseKey(rawKey)
	if err != nil {
		return nil, err
	}

	var value json.RawMessage
	if err := svc.Prefs(userID).Get(ctx, key, &value); err != nil {
		return nil, err
	}
	return value, nil
}

func (svc *Service) SetPref(ctx context.Context, userID int64, rawKey string, value json.RawMessage) error {
	key, err := prefs.ParseKey(rawKey)
	if err != nil {
		return err
	}
	if len(value) == 0 || !json.Valid(value) {
		return fmt.Errorf("%w: value must be JSON", constants.ErrBadRequest)
	}

	return svc.Prefs(userID).Set(ctx, key, value)
}

func (svc *Service) DeletePref(ctx context.Context, userID int64, rawKey string) error {
	key, err := prefs.ParseKey(rawKey)
	if err != nil {
		return err
	}
	return svc.Prefs(userID).Delete(ctx, key)
}
