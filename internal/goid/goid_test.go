package goid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_stable(t *testing.T) {
	id := Get()
	require.NotZero(t, id)
	assert.Equal(t, id, Get())
}

func TestGet_distinctPerGoroutine(t *testing.T) {
	const n = 8
	main := Get()
	ids := make(chan uint64, n)
	for range n {
		go func() { ids <- Get() }()
	}
	seen := map[uint64]struct{}{main: {}}
	for range n {
		id := <-ids
		require.NotZero(t, id)
		_, dup := seen[id]
		assert.False(t, dup, "duplicate goroutine id %d", id)
		seen[id] = struct{}{}
	}
}
