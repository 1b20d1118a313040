package artifact

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_Lifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocal(tmpDir)

	ctx := context.Background()

	// 1. Put
	name := "runs/abc/report.json"
	data := []byte(`{"run_id":"abc"}`)
	require.NoError(t, store.Put(ctx, name, data))

	// Verify file exists on disk under the slash-mapped path
	_, err := os.Stat(filepath.Join(tmpDir, "runs", "abc", "report.json"))
	require.NoError(t, err)

	// 2. Open and read back
	r, err := store.Open(ctx, name)
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, data, got)

	// 3. List
	require.NoError(t, store.Put(ctx, "runs/abc/path.geojson", []byte("{}")))
	require.NoError(t, store.Put(ctx, "runs/def/report.json", []byte("{}")))

	names, err := store.List(ctx, "runs/abc/")
	require.NoError(t, err)
	assert.Equal(t, []string{"runs/abc/path.geojson", "runs/abc/report.json"}, names)

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	// 4. Delete
	require.NoError(t, store.Delete(ctx, name))

	_, err = store.Open(ctx, name)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocal_Overwrite(t *testing.T) {
	store := NewLocal(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "report.json", []byte("v1")))
	require.NoError(t, store.Put(ctx, "report.json", []byte("v2-longer")))

	r, err := store.Open(ctx, "report.json")
	require.NoError(t, err)
	defer r.Close()

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "v2-longer", string(got))
}

func TestLocal_InvalidNames(t *testing.T) {
	store := NewLocal(t.TempDir())
	ctx := context.Background()

	for _, name := range []string{"", "/etc/passwd", "../escape", "runs/../../escape", "a//b"} {
		assert.ErrorIs(t, store.Put(ctx, name, []byte("x")), ErrInvalidName, "name %q", name)
	}
}

func TestLocal_CreateCommitsOnClose(t *testing.T) {
	store := NewLocal(t.TempDir())
	ctx := context.Background()

	w, err := store.Create(ctx, "runs/abc/replay.bin")
	require.NoError(t, err)

	_, err = w.Write([]byte("part1 "))
	require.NoError(t, err)
	_, err = w.Write([]byte("part2"))
	require.NoError(t, err)

	// Not visible before Close: the temp file is filtered from listings and
	// absent under the final name.
	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, names)

	_, err = store.Open(ctx, "runs/abc/replay.bin")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, w.Close())

	r, err := store.Open(ctx, "runs/abc/replay.bin")
	require.NoError(t, err)
	defer r.Close()

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "part1 part2", string(got))
}

func TestLocal_DeleteMissing(t *testing.T) {
	store := NewLocal(t.TempDir())

	assert.NoError(t, store.Delete(context.Background(), "no/such/artifact"))
}

func TestLocal_ListMissingRoot(t *testing.T) {
	store := NewLocal(filepath.Join(t.TempDir(), "never-created"))

	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}
