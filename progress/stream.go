package progress

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrStreamClosed is returned when the stream was closed by either side
	// and no buffered events remain.
	ErrStreamClosed = errors.New("progress: stream closed")

	// ErrPollTimeout is returned by Poll when no event arrived in time.
	ErrPollTimeout = errors.New("progress: poll timed out")
)

// DefaultStreamCapacity bounds the event buffer when no explicit capacity is
// configured.
const DefaultStreamCapacity = 1024

// StreamStats contains counters for a Stream.
type StreamStats struct {
	Capacity  int   // Buffer capacity
	Pending   int   // Events currently buffered
	HighWater int   // Deepest buffer fill observed after a send
	Sent      int64 // Events accepted from the producer
	Received  int64 // Events delivered to the consumer
}

// Stream is a bounded, observable event conduit between exactly one producer
// and exactly one consumer. The producer blocks when the buffer is full,
// which backpressures the search instead of flooding the consumer; the
// consumer polls with a timeout and never blocks indefinitely.
//
// The producer signals the end of the sequence with CloseSend; buffered
// events remain deliverable afterwards. The consumer can abandon the stream
// with Close, which unblocks a producer stuck on a full buffer.
type Stream struct {
	ch   chan Event
	done chan struct{}

	sendClosed atomic.Bool
	closeOnce  sync.Once
	sendOnce   sync.Once

	sent      atomic.Int64
	received  atomic.Int64
	highWater atomic.Int64
}

// NewStream creates a Stream buffering up to capacity events. Non-positive
// capacities fall back to DefaultStreamCapacity.
func NewStream(capacity int) *Stream {
	if capacity <= 0 {
		capacity = DefaultStreamCapacity
	}

	return &Stream{
		ch:   make(chan Event, capacity),
		done: make(chan struct{}),
	}
}

// Send delivers an event to the consumer, blocking while the buffer is full.
// It fails with ErrStreamClosed when the consumer abandoned the stream or
// CloseSend was already called, and with the context error when ctx ends
// first.
func (s *Stream) Send(ctx context.Context, ev Event) error {
	if s.sendClosed.Load() {
		return ErrStreamClosed
	}

	select {
	case <-s.done:
		return ErrStreamClosed
	default:
	}

	select {
	case s.ch <- ev:
		s.sent.Add(1)
		s.noteDepth()
		return nil
	default:
	}

	select {
	case s.ch <- ev:
		s.sent.Add(1)
		s.noteDepth()
		return nil
	case <-s.done:
		return ErrStreamClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TrySend delivers an event without blocking and reports whether the buffer
// accepted it.
func (s *Stream) TrySend(ev Event) bool {
	if s.sendClosed.Load() {
		return false
	}

	select {
	case <-s.done:
		return false
	default:
	}

	select {
	case s.ch <- ev:
		s.sent.Add(1)
		s.noteDepth()
		return true
	default:
		return false
	}
}

// CloseSend marks the producer side finished. Buffered events stay
// available to Poll; once drained, Poll returns ErrStreamClosed.
func (s *Stream) CloseSend() {
	s.sendOnce.Do(func() {
		s.sendClosed.Store(true)
		close(s.ch)
	})
}

// Close abandons the stream from the consumer side, unblocking a producer
// waiting on a full buffer. Safe to call multiple times.
func (s *Stream) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

// Poll retrieves the next event, waiting up to timeout. A non-positive
// timeout makes a single non-blocking attempt. It returns ErrPollTimeout
// when no event arrived in time and ErrStreamClosed when the sequence is
// finished and drained.
func (s *Stream) Poll(timeout time.Duration) (Event, error) {
	if timeout <= 0 {
		ev, ok := s.TryPoll()
		if !ok {
			if s.drained() {
				return nil, ErrStreamClosed
			}

			return nil, ErrPollTimeout
		}

		return ev, nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ev, ok := <-s.ch:
		if !ok {
			return nil, ErrStreamClosed
		}

		s.received.Add(1)

		return ev, nil
	case <-timer.C:
		return nil, ErrPollTimeout
	}
}

// TryPoll retrieves the next event without waiting and reports whether one
// was available.
func (s *Stream) TryPoll() (Event, bool) {
	select {
	case ev, ok := <-s.ch:
		if !ok {
			return nil, false
		}

		s.received.Add(1)

		return ev, true
	default:
		return nil, false
	}
}

// Pending returns the number of buffered events.
func (s *Stream) Pending() int { return len(s.ch) }

// noteDepth records the buffer fill after a send. Only the producer writes
// the mark, so a load-then-store suffices.
func (s *Stream) noteDepth() {
	if depth := int64(len(s.ch)); depth > s.highWater.Load() {
		s.highWater.Store(depth)
	}
}

// Stats returns a snapshot of the stream counters.
func (s *Stream) Stats() StreamStats {
	return StreamStats{
		Capacity:  cap(s.ch),
		Pending:   len(s.ch),
		HighWater: int(s.highWater.Load()),
		Sent:      s.sent.Load(),
		Received:  s.received.Load(),
	}
}

func (s *Stream) drained() bool {
	return s.sendClosed.Load() && len(s.ch) == 0
}
