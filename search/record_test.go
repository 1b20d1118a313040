package search

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordTableOpenClose(t *testing.T) {
	r := newRecordTable(10)
	r.reset(10)

	assert.False(t, r.seen(3))

	_, ok := r.gScore(3)
	assert.False(t, ok)

	r.open(3, 1.5, 12.0, 3, 1)
	assert.True(t, r.seen(3))
	assert.False(t, r.isClosed(3))

	g, ok := r.gScore(3)
	require.True(t, ok)
	assert.InDelta(t, 1.5, g, 1e-9)
	assert.InDelta(t, 12.0, r.distance(3), 1e-9)

	r.close(3)
	assert.True(t, r.isClosed(3))
}

func TestRecordTableStaleEntries(t *testing.T) {
	r := newRecordTable(10)
	r.reset(10)

	// First discovery.
	r.open(5, 9.0, 0, 5, 1)
	assert.True(t, r.live(5, 1))

	// Re-insertion with a better score supersedes the first entry.
	r.open(5, 4.0, 0, 5, 2)
	assert.False(t, r.live(5, 1))
	assert.True(t, r.live(5, 2))

	// Once expanded, no entry for the node is live.
	r.close(5)
	assert.False(t, r.live(5, 2))
}

func TestRecordTableReset(t *testing.T) {
	r := newRecordTable(4)
	r.reset(4)

	r.open(2, 1, 0, 2, 1)
	r.close(2)
	require.True(t, r.seen(2))

	r.reset(4)
	assert.False(t, r.seen(2))
	assert.False(t, r.isClosed(2))
}

func TestRecordTableResetGrows(t *testing.T) {
	r := newRecordTable(2)
	r.reset(8)

	r.open(7, 1, 0, 7, 1)
	assert.True(t, r.seen(7))
}

func TestRecordTableTokenOverflow(t *testing.T) {
	r := newRecordTable(4)
	r.token = math.MaxUint32
	r.gen[1] = math.MaxUint32

	r.reset(4)
	assert.False(t, r.seen(1))

	r.open(1, 1, 0, 1, 1)
	assert.True(t, r.seen(1))
}

func TestRecordTableAppendPath(t *testing.T) {
	r := newRecordTable(8)
	r.reset(8)

	// 0 -> 2 -> 4 -> 5 with the start node parenting itself.
	r.open(0, 0, 0, 0, 1)
	r.open(2, 1, 0, 0, 2)
	r.open(4, 2, 0, 2, 3)
	r.open(5, 3, 0, 4, 4)

	path := r.appendPath(nil, 5)
	assert.Equal(t, []uint32{0, 2, 4, 5}, path)

	// Degenerate same-node query.
	path = r.appendPath(nil, 0)
	assert.Equal(t, []uint32{0}, path)
}
