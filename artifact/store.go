package artifact

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
)

// ErrNotFound is returned when an artifact does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// ErrInvalidName is returned for names that would escape the store's
// namespace.
var ErrInvalidName = errors.New("artifact: invalid name")

// Store is an abstraction for persisting run artifacts. Names are
// slash-separated relative paths ("runs/<id>/report.json").
type Store interface {
	// Put writes an artifact atomically, replacing any previous content.
	Put(ctx context.Context, name string, data []byte) error

	// Open opens an artifact for reading.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// List returns the artifact names under the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes an artifact. Deleting a missing artifact is not an
	// error.
	Delete(ctx context.Context, name string) error
}

// StreamWriter is an optional interface for stores that support streaming
// writes. The artifact becomes visible on Close; an abandoned writer leaves
// no partial artifact behind.
type StreamWriter interface {
	Create(ctx context.Context, name string) (io.WriteCloser, error)
}

// CheckName rejects empty names, rooted names, and parent references.
// Store implementations call it before mapping a name onto their backend
// namespace.
func CheckName(name string) error {
	if name == "" || strings.HasPrefix(name, "/") {
		return ErrInvalidName
	}

	for _, elem := range strings.Split(name, "/") {
		if elem == "" || elem == "." || elem == ".." {
			return ErrInvalidName
		}
	}

	return nil
}
