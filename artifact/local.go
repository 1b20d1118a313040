package artifact

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Local stores artifacts as plain files under a root directory. Writes go
// to a temp file in the target directory and are renamed into place on
// commit, so readers never observe partial content.
type Local struct {
	root string
}

// NewLocal creates a local artifact store rooted at dir. Directories are
// created on first write, not here.
func NewLocal(dir string) *Local {
	return &Local{root: dir}
}

func (s *Local) path(name string) (string, error) {
	if err := CheckName(name); err != nil {
		return "", err
	}

	return filepath.Join(s.root, filepath.FromSlash(name)), nil
}

// Put writes an artifact atomically.
func (s *Local) Put(ctx context.Context, name string, data []byte) error {
	w, err := s.Create(ctx, name)
	if err != nil {
		return err
	}

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return err
	}

	return w.Close()
}

// Create opens a streaming write. The artifact appears under its final name
// only when Close succeeds.
func (s *Local) Create(_ context.Context, name string) (io.WriteCloser, error) {
	target, err := s.path(name)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	// Temp file in the target directory so the final rename is atomic.
	tmp, err := os.CreateTemp(dir, filepath.Base(target)+".tmp-*")
	if err != nil {
		return nil, err
	}

	_ = tmp.Chmod(0o644)

	return &localWriter{f: tmp, tmpName: tmp.Name(), target: target}, nil
}

// Open opens an artifact for reading.
func (s *Local) Open(_ context.Context, name string) (io.ReadCloser, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}

	// A missing file already satisfies errors.Is(err, ErrNotFound).
	return os.Open(p)
}

// List returns the artifact names under prefix, sorted.
func (s *Local) List(_ context.Context, prefix string) ([]string, error) {
	var names []string

	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == s.root && errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipAll
			}

			return err
		}

		if d.IsDir() {
			return nil
		}

		// Leftover temp from a crashed writer.
		if strings.Contains(d.Name(), ".tmp-") {
			return nil
		}

		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}

		if name := filepath.ToSlash(rel); strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(names)

	return names, nil
}

// Delete removes an artifact. Missing artifacts are ignored.
func (s *Local) Delete(_ context.Context, name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}

	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	return nil
}

// localWriter commits its temp file on Close. A write error poisons the
// writer; Close then removes the temp file and reports that error.
type localWriter struct {
	f       *os.File
	tmpName string
	target  string
	err     error
	closed  bool
}

func (w *localWriter) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}

	n, err := w.f.Write(p)
	if err != nil {
		w.err = err
	}

	return n, err
}

func (w *localWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if w.err != nil {
		_ = w.f.Close()
		_ = os.Remove(w.tmpName)

		return w.err
	}

	if err := w.f.Sync(); err != nil {
		_ = w.f.Close()
		_ = os.Remove(w.tmpName)

		return err
	}

	if err := w.f.Close(); err != nil {
		_ = os.Remove(w.tmpName)

		return err
	}

	if err := os.Rename(w.tmpName, w.target); err != nil {
		_ = os.Remove(w.tmpName)

		return err
	}

	return nil
}
