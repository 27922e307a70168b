package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStaleCommitIsDiscarded(t *testing.T) {
	tr := NewTracker()

	first := tr.Begin("run-1")
	second := tr.Begin("run-1")

	var applied []uint64
	assert.True(t, tr.Commit("run-1", second, func() { applied = append(applied, second) }))
	assert.False(t, tr.Commit("run-1", first, func() { applied = append(applied, first) }))
	assert.Equal(t, []uint64{second}, applied)
}

func TestKeysAreIndependent(t *testing.T) {
	tr := NewTracker()

	a := tr.Begin("a")
	b := tr.Begin("b")
	tr.Begin("b")

	assert.Equal(t, a, tr.Current("a"))
	assert.NotEqual(t, b, tr.Current("b"))
}

func TestForget(t *testing.T) {
	tr := NewTracker()
	g := tr.Begin("a")
	tr.Forget("a")
	assert.NotEqual(t, g, tr.Current("a"))
	assert.Equal(t, uint64(1), tr.Begin("a"))
}

func TestCommitAtCurrentLosesToLaterBegin(t *testing.T) {
	tr := NewTracker()

	read := tr.Current("run-1")
	assert.True(t, tr.Commit("run-1", read, func() {}))

	tr.Begin("run-1")
	assert.False(t, tr.Commit("run-1", read, func() { t.Fatal("stale work applied") }))
}
