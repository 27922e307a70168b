package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/ougirez/supplytwin/internal/pkg/prefs"
)

func (s *store) LoadPref(ctx context.Context, userID int64, key string) ([]byte, error) {
	query := builder().Select("value").
		From(tablePrefs).
		Where(sq.Eq{"user_id": userID, "key": key})

	var selected struct {
		Value []byte `db:"value"`
	}
	if err := s.pool.Getx(ctx, &selected, query); err != nil {
		return nil, wrapErr(err)
	}

	return selected.Value, nil
}

func (s *store) SavePref(ctx context.Context, userID int64, key string, raw []byte) error {
	query := builder().Insert(tablePrefs).
		Columns("user_id", "key", "value").
		Values(userID, key, raw).
		Suffix(`on conflict (user_id, key) do update set value = excluded.value, updated_at = now()`)

	if _, err := s.pool.Execx(ctx, query); err != nil {
		return wrapErr(err)
	}

	return nil
}

func (s *store) RemovePref(ctx context.Context, userID int64, key string) error {
	query := builder().Delete(tablePrefs).Where(sq.Eq{"user_id": userID, "key": key})

	if _, err := s.pool.Execx(ctx, query); err != nil {
		return wrapErr(err)
	}

	return nil
}

type prefsEngine struct {
	store  Store
	userID int64
}

// PrefsEngine exposes one user's rows in user_prefs as a prefs.Engine.
func PrefsEngine(s Store, userID int64) prefs.Engine {
	return &prefsEngine{store: s, userID: userID}
}

func (e *prefsEngine) Load(ctx context.Context, key string) ([]byte, error) {
	return e.store.LoadPref(ctx, e.userID, key)
}

func (e *prefsEngine) Save(ctx context.Context, key string, raw []byte) error {
	return e.store.SavePref(ctx, e.userID, key, raw)
}

func (e *prefsEngine) Remove(ctx context.Context, key string) error {
	return e.store.RemovePref(ctx, e.userID, key)
}
