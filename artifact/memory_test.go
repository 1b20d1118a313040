package artifact

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_Lifecycle(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	// 1. Put
	require.NoError(t, store.Put(ctx, "runs/abc/report.json", []byte("report")))
	require.NoError(t, store.Put(ctx, "runs/abc/path.geojson", []byte("geo")))
	require.NoError(t, store.Put(ctx, "runs/def/report.json", []byte("other")))

	// 2. Open and read back
	r, err := store.Open(ctx, "runs/abc/report.json")
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, "report", string(got))

	// 3. List is prefix-filtered and sorted
	names, err := store.List(ctx, "runs/abc/")
	require.NoError(t, err)
	assert.Equal(t, []string{"runs/abc/path.geojson", "runs/abc/report.json"}, names)

	// 4. Delete
	require.NoError(t, store.Delete(ctx, "runs/abc/report.json"))

	_, err = store.Open(ctx, "runs/abc/report.json")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting again is a no-op.
	assert.NoError(t, store.Delete(ctx, "runs/abc/report.json"))
}

func TestMemory_Isolation(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	data := []byte("original")
	require.NoError(t, store.Put(ctx, "a", data))

	// Mutating the caller's slice must not reach the store.
	data[0] = 'X'

	r, err := store.Open(ctx, "a")
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "original", string(got))
}

func TestMemory_CreateCommitsOnClose(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	w, err := store.Create(ctx, "replay.bin")
	require.NoError(t, err)

	_, err = w.Write([]byte("chunk"))
	require.NoError(t, err)

	_, err = store.Open(ctx, "replay.bin")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, w.Close())

	r, err := store.Open(ctx, "replay.bin")
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "chunk", string(got))
}

func TestMemory_InvalidNames(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	assert.ErrorIs(t, store.Put(ctx, "", []byte("x")), ErrInvalidName)
	assert.ErrorIs(t, store.Put(ctx, "/abs", []byte("x")), ErrInvalidName)

	_, err := store.Create(ctx, "../up")
	assert.ErrorIs(t, err, ErrInvalidName)
}
