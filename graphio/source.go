package graphio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hupe1980/pathgo/graph"
)

// Source loads graphs by name.
type Source interface {
	Load(ctx context.Context, name string) (*graph.Graph, error)
}

// FileSource loads JSON graph documents from a directory, optionally
// keeping compiled graphs in a DiskCache.
type FileSource struct {
	dir    string
	cache  *DiskCache
	logger *slog.Logger
}

// FileSourceOption configures a FileSource.
type FileSourceOption func(*FileSource)

// WithDiskCache attaches a compiled-graph cache.
func WithDiskCache(c *DiskCache) FileSourceOption {
	return func(s *FileSource) {
		s.cache = c
	}
}

// WithLogger enables cache diagnostics on the given logger.
func WithLogger(logger *slog.Logger) FileSourceOption {
	return func(s *FileSource) {
		s.logger = logger
	}
}

// NewFileSource creates a source reading from dir.
func NewFileSource(dir string, optFns ...FileSourceOption) *FileSource {
	s := &FileSource{dir: dir}

	for _, fn := range optFns {
		if fn != nil {
			fn(s)
		}
	}

	return s
}

// Load reads and compiles the named document, serving the compiled cache
// when it is fresh. A failed cache write does not fail the load.
func (s *FileSource) Load(ctx context.Context, name string) (*graph.Graph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p := filepath.Join(s.dir, filepath.FromSlash(name))

	info, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("graphio: stat %s: %w", name, err)
	}

	if s.cache != nil {
		if g, ok := s.cache.Load(name, info.ModTime()); ok {
			if s.logger != nil {
				s.logger.DebugContext(ctx, "compiled graph cache hit", "name", name)
			}

			return g, nil
		}
	}

	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("graphio: open %s: %w", name, err)
	}
	defer f.Close()

	g, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("graphio: decode %s: %w", name, err)
	}

	if s.cache != nil {
		if err := s.cache.Store(name, g); err != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "compiled graph cache write failed",
				"name", name,
				"error", err,
			)
		}
	}

	return g, nil
}

// CachingSource keeps recently loaded graphs in an in-memory LRU in front
// of the underlying source. Safe for concurrent use.
type CachingSource struct {
	inner Source
	lru   *lru.Cache[string, *graph.Graph]
}

// NewCachingSource wraps inner with an LRU holding up to size graphs.
func NewCachingSource(inner Source, size int) (*CachingSource, error) {
	c, err := lru.New[string, *graph.Graph](size)
	if err != nil {
		return nil, err
	}

	return &CachingSource{
		inner: inner,
		lru:   c,
	}, nil
}

// Load returns the cached graph for name or falls through to the inner
// source.
func (s *CachingSource) Load(ctx context.Context, name string) (*graph.Graph, error) {
	if g, ok := s.lru.Get(name); ok {
		return g, nil
	}

	g, err := s.inner.Load(ctx, name)
	if err != nil {
		return nil, err
	}

	s.lru.Add(name, g)

	return g, nil
}
