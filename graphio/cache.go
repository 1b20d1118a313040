package graphio

import (
	"crypto/sha256"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/hupe1980/pathgo/graph"
	"github.com/klauspost/compress/zstd"
)

// FormatVersion tags compiled cache files. Bump it when the graph wire
// format changes; old entries then miss and get rebuilt.
const FormatVersion = 1

const cacheExt = ".pgz"

// WriteCompiled writes g as zstd-compressed gob.
func WriteCompiled(w io.Writer, g *graph.Graph) error {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("failed to create compressor: %w", err)
	}

	if err := gob.NewEncoder(zw).Encode(g); err != nil {
		_ = zw.Close()
		return fmt.Errorf("failed to encode graph: %w", err)
	}

	return zw.Close()
}

// ReadCompiled parses a graph written by WriteCompiled.
func ReadCompiled(r io.Reader) (*graph.Graph, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create decompressor: %w", err)
	}
	defer zr.Close()

	var g graph.Graph
	if err := gob.NewDecoder(zr).Decode(&g); err != nil {
		return nil, fmt.Errorf("failed to decode graph: %w", err)
	}

	return &g, nil
}

// DiskCache stores compiled graphs under a directory, one .pgz file per
// source name.
type DiskCache struct {
	dir string
}

// NewDiskCache creates a cache rooted at dir. The directory is created on
// first store.
func NewDiskCache(dir string) *DiskCache {
	return &DiskCache{dir: dir}
}

// Path returns the cache file for a source name. Names are hashed so
// path-like source names stay flat on disk.
func (c *DiskCache) Path(name string) string {
	sum := sha256.Sum256([]byte(name))

	return filepath.Join(c.dir, fmt.Sprintf("%x-v%d%s", sum[:8], FormatVersion, cacheExt))
}

// Load returns the cached graph for name if the entry was written at or
// after modTime. Stale, missing, or corrupt entries report ok=false; the
// caller then rebuilds from source.
func (c *DiskCache) Load(name string, modTime time.Time) (*graph.Graph, bool) {
	p := c.Path(name)

	info, err := os.Stat(p)
	if err != nil || info.ModTime().Before(modTime) {
		return nil, false
	}

	f, err := os.Open(p)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	g, err := ReadCompiled(f)
	if err != nil {
		return nil, false
	}

	return g, true
}

// Store writes the compiled graph for name, atomically replacing any
// previous entry.
func (c *DiskCache) Store(name string, g *graph.Graph) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}

	p := c.Path(name)

	tmp, err := os.CreateTemp(c.dir, filepath.Base(p)+".tmp-*")
	if err != nil {
		return err
	}

	if err := WriteCompiled(tmp, g); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())

		return err
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())

		return err
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())

		return err
	}

	if err := os.Rename(tmp.Name(), p); err != nil {
		_ = os.Remove(tmp.Name())

		return err
	}

	return nil
}

// Remove drops the cache entry for name, if any.
func (c *DiskCache) Remove(name string) error {
	err := os.Remove(c.Path(name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	return nil
}
