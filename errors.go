package pathgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/pathgo/graph"
)

var (
	// ErrNotFound is returned when a node or edge attribute cannot be resolved.
	ErrNotFound = errors.New("not found")

	// ErrInvalidBatchSize is returned when a negative batch size is configured.
	ErrInvalidBatchSize = errors.New("batch size must be positive")

	// ErrJoinTimeout is returned by Stop when the worker does not exit within
	// the join timeout. The worker is considered leaked; the condition should
	// be logged or alerted on, not ignored.
	ErrJoinTimeout = errors.New("join timeout: worker still running")

	// ErrWorkerDied is returned when the worker exited without delivering a
	// terminal Complete event. This indicates a fault in the producer, as
	// distinct from clean cancellation or a normal no-path result.
	ErrWorkerDied = errors.New("worker exited without a terminal event")
)

// ErrUnknownNode indicates a route endpoint that is not part of the graph.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrUnknownNode struct {
	ID    int64
	cause error
}

func (e *ErrUnknownNode) Error() string {
	return fmt.Sprintf("unknown node: %d", e.ID)
}

func (e *ErrUnknownNode) Unwrap() error { return e.cause }

// ErrUnknownAttr indicates an edge attribute name that was never registered
// on the graph.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrUnknownAttr struct {
	Name  string
	cause error
}

func (e *ErrUnknownAttr) Error() string {
	return fmt.Sprintf("unknown edge attribute: %q", e.Name)
}

func (e *ErrUnknownAttr) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Not found unification.
	var un *ErrUnknownNode
	if errors.As(err, &un) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	var ua *ErrUnknownAttr
	if errors.As(err, &ua) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if errors.Is(err, graph.ErrMissingAttr) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if errors.Is(err, graph.ErrUnknownNode) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	return err
}
