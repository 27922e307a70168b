package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ougirez/supplytwin/internal/domain"
	"github.com/ougirez/supplytwin/internal/pkg/constants"
)

// memoryStore keeps everything in process. It backs `serve` when no database is configured
// and the service tests.
type memoryStore struct {
	mu        sync.RWMutex
	nextID    int64
	users     map[int64]domain.User
	scenarios map[uuid.UUID]domain.Scenario
	runs      map[uuid.UUID]domain.Run
	prefs     map[int64]map[string][]byte
	now       func() time.Time
}

func NewMemoryStore() Store {
	return &memoryStore{
		users:     make(map[int64]domain.User),
		scenarios: make(map[uuid.UUID]domain.Scenario),
		runs:      make(map[uuid.UUID]domain.Run),
		prefs:     make(map[int64]map[string][]byte),
		now:       time.Now,
	}
}

func (m *memoryStore) CreateUser(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return constants.ErrAlreadyExists
		}
	}

	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = m.now()
	user.UpdatedAt = user.CreatedAt
	m.users[user.ID] = *user

	return nil
}

func (m *memoryStore) GetUserByID(_ context.Context, id int64) (*domain.User, error) {
	return m.findUser(func(u domain.User) bool { return u.ID == id })
}

func (m *memoryStore) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	return m.findUser(func(u domain.User) bool { return strings.EqualFold(u.Email, email) })
}

func (m *memoryStore) GetUserByStripeCustomer(_ context.Context, customerID string) (*domain.User, error) {
	return m.findUser(func(u domain.User) bool {
		return u.StripeCustomerID != nil && *u.StripeCustomerID == customerID
	})
}

func (m *memoryStore) findUser(match func(domain.User) bool) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, constants.ErrDBNotFound
}

func (m *memoryStore) ListUsers(_ context.Context) ([]*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*domain.User, 0, len(m.users))
	for _, u := range m.users {
		u := u
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (m *memoryStore) UpdateUser(_ context.Context, id int64, opts UpdateUserOpts) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, constants.ErrDBNotFound
	}
	if opts.Name != nil {
		u.Name = *opts.Name
	}
	if opts.Role != nil {
		u.Role = *opts.Role
	}
	if opts.Plan != nil {
		u.Plan = *opts.Plan
	}
	if opts.StripeCustomerID != nil {
		v := *opts.StripeCustomerID
		u.StripeCustomerID = &v
	}
	u.UpdatedAt = m.now()
	m.users[id] = u

	return &u, nil
}

func (m *memoryStore) DeleteUser(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return constants.ErrDBNotFound
	}
	delete(m.users, id)
	delete(m.prefs, id)
	for k, s := range m.scenarios {
		if s.UserID == id {
			delete(m.scenarios, k)
		}
	}
	for k, r := range m.runs {
		if r.UserID == id {
			delete(m.runs, k)
		}
	}

	return nil
}

func (m *memoryStore) CreateScenario(_ context.Context, scenario *domain.Scenario) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if scenario.ID == uuid.Nil {
		scenario.ID = uuid.New()
	}
	if _, ok := m.scenarios[scenario.ID]; ok {
		return constants.ErrAlreadyExists
	}
	scenario.CreatedAt = m.now()
	scenario.UpdatedAt = scenario.CreatedAt
	m.scenarios[scenario.ID] = *scenario

	return nil
}

func (m *memoryStore) GetScenario(_ context.Context, id uuid.UUID, ownerID *int64) (*domain.Scenario, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.scenarios[id]
	if !ok || !owns(s.UserID, ownerID) {
		return nil, constants.ErrDBNotFound
	}
	return &s, nil
}

func (m *memoryStore) ListScenarios(_ context.Context, opts ListOpts) ([]*domain.Scenario, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*domain.Scenario, 0)
	for _, s := range m.scenarios {
		if owns(s.UserID, opts.OwnerID) {
			s := s
			out = append(out, &s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })

	return window(out, opts), nil
}

func (m *memoryStore) UpdateScenario(_ context.Context, scenario *domain.Scenario) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.scenarios[scenario.ID]
	if !ok || s.UserID != scenario.UserID {
		return constants.ErrDBNotFound
	}
	scenario.CreatedAt = s.CreatedAt
	scenario.UpdatedAt = m.now()
	m.scenarios[scenario.ID] = *scenario

	return nil
}

func (m *memoryStore) DeleteScenario(_ context.Context, id uuid.UUID, ownerID *int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.scenarios[id]
	if !ok || !owns(s.UserID, ownerID) {
		return constants.ErrDBNotFound
	}
	delete(m.scenarios, id)

	return nil
}

func (m *memoryStore) CreateRun(_ context.Context, run *domain.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = m.now()
	}
	m.runs[run.ID] = *run

	return nil
}

func (m *memoryStore) GetRun(_ context.Context, id uuid.UUID, ownerID *int64) (*domain.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.runs[id]
	if !ok || !owns(r.UserID, ownerID) {
		return nil, constants.ErrDBNotFound
	}
	return &r, nil
}

func (m *memoryStore) ListRuns(_ context.Context, opts ListOpts) ([]*domain.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*domain.Run, 0)
	for _, r := range m.runs {
		if owns(r.UserID, opts.OwnerID) {
			r := r
			out = append(out, &r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })

	return window(out, opts), nil
}

func (m *memoryStore) DeleteRun(_ context.Context, id uuid.UUID, ownerID *int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.runs[id]
	if !ok || !owns(r.UserID, ownerID) {
		return constants.ErrDBNotFound
	}
	delete(m.runs, id)

	return nil
}

func (m *memoryStore) LoadPref(_ context.Context, userID int64, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	raw, ok := m.prefs[userID][key]
	if !ok {
		return nil, constants.ErrDBNotFound
	}
	return append([]byte{}, raw...), nil
}

func (m *memoryStore) SavePref(_ context.Context, userID int64, key string, raw []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.prefs[userID] == nil {
		m.prefs[userID] = make(map[string][]byte)
	}
	m.prefs[userID][key] = append([]byte{}, raw...)

	return nil
}

func (m *memoryStore) RemovePref(_ context.Context, userID int64, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.prefs[userID], key)
	return nil
}

func (m *memoryStore) Stats(_ context.Context) (*domain.AdminStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &domain.AdminStats{
		Users:       int64(len(m.users)),
		Simulations: int64(len(m.runs)),
		Scenarios:   int64(len(m.scenarios)),
	}
	for _, u := range m.users {
		if u.Role == constants.RoleAdmin {
			stats.Admins++
		}
		if u.Plan != constants.PlanFree {
			stats.PaidUsers++
		}
	}

	return stats, nil
}

func owns(userID int64, ownerID *int64) bool {
	return ownerID == nil || *ownerID == userID
}

func window[T any](items []T, opts ListOpts) []T {
	if opts.Offset >= uint64(len(items)) {
		return items[:0]
	}
	items = items[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < uint64(len(items)) {
		items = items[:opts.Limit]
	}
	return items
}
