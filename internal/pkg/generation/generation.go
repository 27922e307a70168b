// Package generation tags in-flight requests so that a slow response cannot overwrite the
// result of a newer one for the same key.
package generation

import "sync"

type Tracker struct {
	mu     sync.Mutex
	latest map[string]uint64
}

func NewTracker() *Tracker {
	return &Tracker{latest: make(map[string]uint64)}
}

// Begin registers a new request for key and returns its generation.
func (t *Tracker) Begin(key string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.latest[key]++
	return t.latest[key]
}

// Current returns the newest generation of key without starting a new one. Work tagged with
// it loses to any Begin that happens before its Commit.
func (t *Tracker) Current(key string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.latest[key]
}

// Commit runs apply only if gen is still current, holding the tracker lock so that no newer
// Begin can interleave. It reports whether apply ran.
func (t *Tracker) Commit(key string, gen uint64, apply func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.latest[key] != gen {
		return false
	}
	apply()
	return true
}

func (t *Tracker) Forget(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.latest, key)
}
