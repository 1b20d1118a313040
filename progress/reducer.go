package progress

import (
	"errors"
	"fmt"
	"time"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// ErrAfterComplete is returned when a state-mutating event arrives after the
// run completed. The terminal result is write-once.
var ErrAfterComplete = errors.New("progress: state event after completion")

// DefaultRenderInterval is the minimum time between renders when no explicit
// interval is configured.
const DefaultRenderInterval = 100 * time.Millisecond

// RunState is the consumer-side view of one run, accumulated by folding the
// event sequence. Visited grows append-only without duplicates; Frontier and
// BestPath are replaced wholesale by their snapshots; the terminal result is
// write-once.
type RunState struct {
	Visited       []int64 `json:"visited"`
	Frontier      []int64 `json:"frontier"`
	BestPath      []int64 `json:"best_path"`
	FinalPath     []int64 `json:"final_path"`
	Completed     bool    `json:"completed"`
	Percent       float64 `json:"percent"`
	Stats         Stats   `json:"stats"`
	SaveRequested bool    `json:"save_requested"`
	SaveFilename  string  `json:"save_filename,omitempty"`
}

// Reducer folds events into a RunState and throttles render decisions. Not
// safe for concurrent use; it belongs to the consumer's loop.
type Reducer struct {
	state RunState
	seen  *roaring64.Bitmap

	minInterval time.Duration
	lastRender  time.Time

	now func() time.Time
}

// NewReducer creates a Reducer that allows a render at most once per
// minRenderInterval. Non-positive intervals disable throttling.
func NewReducer(minRenderInterval time.Duration) *Reducer {
	return &Reducer{
		seen:        roaring64.New(),
		minInterval: minRenderInterval,
		now:         time.Now,
	}
}

// Apply folds a single event into the state. Events that would mutate state
// after completion fail with ErrAfterComplete, except SaveRequest, which by
// contract follows Complete and stays idempotent.
func (r *Reducer) Apply(ev Event) error {
	switch ev := ev.(type) {
	case VisitedBatch:
		if r.state.Completed {
			return ErrAfterComplete
		}

		r.appendVisited(ev.Nodes)
	case FrontierSnapshot:
		if r.state.Completed {
			return ErrAfterComplete
		}

		r.state.Frontier = ev.Nodes
	case BestPathSoFar:
		if r.state.Completed {
			return ErrAfterComplete
		}

		r.state.BestPath = ev.Nodes
	case Progress:
		// Informational only. Ignored after completion instead of erroring.
		if !r.state.Completed {
			r.state.Percent = ev.Percent
		}
	case Complete:
		if r.state.Completed {
			return ErrAfterComplete
		}

		r.state.FinalPath = ev.Path
		r.state.Stats = ev.Stats
		r.state.Percent = 100

		// The producer's full expansion sequence is authoritative when batch
		// events were dropped or coalesced along the way. The dedup bitmap is
		// not rebuilt; no further batches are accepted.
		if len(ev.Visited) > len(r.state.Visited) {
			r.state.Visited = ev.Visited
		}

		r.state.Completed = true
	case SaveRequest:
		r.state.SaveRequested = true
		r.state.SaveFilename = ev.Filename
	default:
		return fmt.Errorf("progress: unknown event %T", ev)
	}

	return nil
}

// State returns the accumulated run state. The pointer stays valid for the
// reducer's lifetime; its contents change on each Apply.
func (r *Reducer) State() *RunState { return &r.state }

// ShouldRender reports whether enough time has passed since the last render,
// stamping the render time when it answers yes. Once the run completed it
// always answers yes, so the final state is never lost to throttling.
func (r *Reducer) ShouldRender() bool {
	if r.state.Completed {
		return true
	}

	if r.minInterval <= 0 {
		return true
	}

	now := r.now()
	if now.Sub(r.lastRender) >= r.minInterval {
		r.lastRender = now
		return true
	}

	return false
}

func (r *Reducer) appendVisited(nodes []int64) {
	for _, id := range nodes {
		key := uint64(id)
		if r.seen.Contains(key) {
			continue
		}

		r.seen.Add(key)
		r.state.Visited = append(r.state.Visited, id)
	}
}
