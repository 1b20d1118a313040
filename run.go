package pathgo

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/hupe1980/pathgo/progress"
	"github.com/hupe1980/pathgo/search"
)

// DefaultJoinTimeout bounds Stop's wait for the worker when no explicit
// timeout is given.
const DefaultJoinTimeout = 5 * time.Second

// Run is the handle for one search session: exactly one worker goroutine
// producing events, exactly one consumer polling them. The polling methods
// (PollEvent, TryPollEvent, Wait, Stop, State) are meant to be driven from a
// single consumer goroutine; RequestStop and the status queries are safe
// from anywhere.
type Run struct {
	id      uuid.UUID
	pg      *Pathgo
	req     search.Request
	startID int64
	goalID  int64
	weight  string

	stream *progress.Stream

	// slot is the one worker this handle may ever own. It is acquired by the
	// first Start and never released, which makes Start idempotent.
	slot    *semaphore.Weighted
	started atomic.Bool
	cancel  context.CancelFunc
	done    chan struct{}
	began   time.Time

	workerErr error // written before done closes

	mu      sync.Mutex
	reducer *progress.Reducer
}

func newRun(pg *Pathgo, req search.Request, start, goal int64, weight string) *Run {
	renderInterval := pg.opts.renderInterval
	if renderInterval == 0 {
		renderInterval = progress.DefaultRenderInterval
	}

	return &Run{
		id:      uuid.New(),
		pg:      pg,
		req:     req,
		startID: start,
		goalID:  goal,
		weight:  weight,
		stream:  progress.NewStream(pg.opts.streamCapacity),
		slot:    semaphore.NewWeighted(1),
		cancel:  func() {},
		done:    make(chan struct{}),
		reducer: progress.NewReducer(renderInterval),
	}
}

// ID returns the unique identifier of this run.
func (r *Run) ID() uuid.UUID { return r.id }

// Start launches the search worker. Calling it while the worker is already
// running (or has already run) is a no-op, not a second worker.
func (r *Run) Start(ctx context.Context) error {
	if !r.slot.TryAcquire(1) {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.began = time.Now()
	r.started.Store(true)

	r.pg.logger.LogRouteStart(runCtx, r.id, r.startID, r.goalID, r.weight)

	go r.work(runCtx)

	return nil
}

func (r *Run) work(ctx context.Context) {
	defer close(r.done)
	defer r.cancel()

	err := r.pg.engine.Run(ctx, r.req, r.stream)
	r.workerErr = err

	runtime := time.Since(r.began)
	r.pg.metrics.RecordRoute(runtime, err)
	r.pg.logger.LogRouteDone(ctx, r.id, runtime, err)
}

// RequestStop signals cooperative cancellation. The worker observes it at
// expansion granularity, flushes its partial batch plus the terminal
// Complete, and exits. Safe to call multiple times and from any goroutine.
func (r *Run) RequestStop() {
	r.cancel()
}

// Stop requests cancellation and waits up to timeout for the worker to exit,
// folding pending events along the way so a worker blocked on a full buffer
// can flush its tail. A non-positive timeout means DefaultJoinTimeout.
//
// It returns ErrJoinTimeout when the worker is still running afterwards (the
// worker is leaked, not killed), ErrWorkerDied when the worker exited
// without a terminal Complete, and the run's fatal input error if it had
// one.
func (r *Run) Stop(timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultJoinTimeout
	}

	r.RequestStop()

	deadline := time.Now().Add(timeout)

	for {
		select {
		case <-r.done:
			return r.verdict()
		default:
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			r.pg.logger.LogStopTimeout(context.Background(), r.id, timeout)
			return ErrJoinTimeout
		}

		interval := r.pg.opts.pollInterval
		if remaining < interval {
			interval = remaining
		}

		if _, err := r.PollEvent(interval); errors.Is(err, progress.ErrStreamClosed) {
			// The producer finished sending; only the worker's final
			// bookkeeping remains.
			select {
			case <-r.done:
			case <-time.After(remaining):
				r.pg.logger.LogStopTimeout(context.Background(), r.id, timeout)
				return ErrJoinTimeout
			}
		}
	}
}

// verdict inspects the finished worker. Callers must have observed done.
func (r *Run) verdict() error {
	r.drainEvents()

	if err := r.workerErr; err != nil {
		return translateError(err)
	}

	if !r.State().Completed {
		return ErrWorkerDied
	}

	return nil
}

func (r *Run) drainEvents() {
	for {
		if _, err := r.PollEvent(0); err != nil &&
			(errors.Is(err, progress.ErrStreamClosed) || errors.Is(err, progress.ErrPollTimeout)) {
			return
		}
	}
}

// PollEvent retrieves the next event, waiting up to timeout, and folds it
// into the run's state. It returns progress.ErrPollTimeout when no event
// arrived in time and progress.ErrStreamClosed once the run is finished and
// drained. A reducer rejection is returned alongside the offending event.
func (r *Run) PollEvent(timeout time.Duration) (progress.Event, error) {
	ev, err := r.stream.Poll(timeout)
	r.pg.metrics.RecordPoll(errors.Is(err, progress.ErrPollTimeout))
	if err != nil {
		return nil, err
	}

	return ev, r.apply(ev)
}

// TryPollEvent retrieves the next event without waiting.
func (r *Run) TryPollEvent() (progress.Event, error) {
	return r.PollEvent(0)
}

func (r *Run) apply(ev progress.Event) error {
	if vb, ok := ev.(progress.VisitedBatch); ok {
		r.pg.metrics.RecordBatch(len(vb.Nodes))
	}

	r.mu.Lock()
	err := r.reducer.Apply(ev)
	r.mu.Unlock()

	if err != nil {
		r.pg.logger.LogProtocolViolation(context.Background(), r.id, err)
		return err
	}

	return nil
}

// HasPendingEvents reports whether buffered events await the consumer.
func (r *Run) HasPendingEvents() bool {
	return r.stream.Pending() > 0
}

// IsRunning reports whether the worker goroutine is currently alive.
func (r *Run) IsRunning() bool {
	if !r.started.Load() {
		return false
	}

	select {
	case <-r.done:
		return false
	default:
		return true
	}
}

// State returns the folded run state. The returned value is owned by the
// run's reducer; treat it as read-only.
func (r *Run) State() *progress.RunState {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.reducer.State()
}

// ShouldRender reports whether enough time has passed since the last
// positive answer to justify re-rendering. Always true once the run
// completed.
func (r *Run) ShouldRender() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.reducer.ShouldRender()
}

// StreamStats returns a snapshot of the event channel counters.
func (r *Run) StreamStats() progress.StreamStats {
	return r.stream.Stats()
}

// Wait polls the run to completion, folding every event, and returns the
// final state. It returns the worker's fatal input error if it had one,
// ErrWorkerDied when the worker exited without a terminal Complete, and the
// context error when ctx ends first (the worker keeps running; use Stop to
// end it).
func (r *Run) Wait(ctx context.Context) (*progress.RunState, error) {
	for {
		if err := ctx.Err(); err != nil {
			return r.State(), err
		}

		_, err := r.PollEvent(r.pg.opts.pollInterval)
		switch {
		case err == nil, errors.Is(err, progress.ErrPollTimeout):
			continue
		case errors.Is(err, progress.ErrStreamClosed):
			return r.join(ctx)
		default:
			return r.State(), err
		}
	}
}

// join waits for the worker's final bookkeeping after the stream drained.
func (r *Run) join(ctx context.Context) (*progress.RunState, error) {
	select {
	case <-r.done:
	case <-ctx.Done():
		return r.State(), ctx.Err()
	}

	state := r.State()

	if err := r.workerErr; err != nil {
		return state, translateError(err)
	}

	if !state.Completed {
		return state, ErrWorkerDied
	}

	return state, nil
}
