package simulation

import (
	"sync"

	"github.com/google/uuid"
	"github.com/ougirez/supplytwin/internal/domain"
)

// DefaultMaxCachedRuns is used when the configured limit is not positive.
const DefaultMaxCachedRuns = 32

// rowCache keeps parsed output tables per run. When full, the run cached earliest is evicted.
type rowCache struct {
	mu      sync.Mutex
	max     int
	order   []uuid.UUID
	entries map[uuid.UUID]map[domain.OutputKind]*domain.Table
}

func newRowCache(max int) *rowCache {
	if max <= 0 {
		max = DefaultMaxCachedRuns
	}
	return &rowCache{max: max, entries: make(map[uuid.UUID]map[domain.OutputKind]*domain.Table)}
}

func (c *rowCache) get(run uuid.UUID, kind domain.OutputKind) (*domain.Table, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.entries[run][kind]
	return t, ok
}

func (c *rowCache) put(run uuid.UUID, kind domain.OutputKind, t *domain.Table) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ensure(run)[kind] = t
}

// replace swaps every cached table of run for tables.
func (c *rowCache) replace(run uuid.UUID, tables map[domain.OutputKind]*domain.Table) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := c.ensure(run)
	for k := range entry {
		delete(entry, k)
	}
	for k, t := range tables {
		entry[k] = t
	}
}

func (c *rowCache) drop(run uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, run)
	for i, id := range c.order {
		if id == run {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *rowCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

func (c *rowCache) ensure(run uuid.UUID) map[domain.OutputKind]*domain.Table {
	if entry, ok := c.entries[run]; ok {
		return entry
	}

	for len(c.order) >= c.max {
		delete(c.entries, c.order[0])
		c.order = c.order[1:]
	}

	entry := make(map[domain.OutputKind]*domain.Table)
	c.entries[run] = entry
	c.order = append(c.order, run)
	return entry
}
