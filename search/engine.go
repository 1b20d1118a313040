package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/pathgo/geo"
	"github.com/hupe1980/pathgo/graph"
	"github.com/hupe1980/pathgo/heuristic"
	"github.com/hupe1980/pathgo/pace"
	"github.com/hupe1980/pathgo/progress"
)

const (
	// DefaultBatchSize is the number of expansions per VisitedBatch event.
	DefaultBatchSize = 20

	// DefaultSnapshotEvery sends frontier and best-path snapshots every Nth
	// batch. Snapshots supersede each other, so they need less bandwidth
	// than visited batches.
	DefaultSnapshotEvery = 5
)

// Logger is a simple interface for logging.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// noopLogger is a default logger that does nothing.
type noopLogger struct{}

func (l *noopLogger) Infof(format string, args ...interface{})  {}
func (l *noopLogger) Errorf(format string, args ...interface{}) {}

// Option defines a configuration option for the Engine.
type Option func(*Engine)

// WithLogger sets the logger for the engine.
func WithLogger(l Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// Request describes one run.
type Request struct {
	// Start and Goal are dense node indices into the engine's graph.
	Start uint32
	Goal  uint32

	// WeightSlot selects the edge attribute that drives cost.
	WeightSlot int

	// DistSlot selects an optional edge attribute accumulated alongside the
	// cost for reporting. Negative disables it.
	DistSlot int

	// Heuristic estimates remaining cost to the goal.
	Heuristic heuristic.Func

	// Pace configures the run's pacing controller. The controller's batch
	// size is forced to BatchSize so both models agree.
	Pace pace.Config

	// BatchSize is the number of expansions per VisitedBatch event.
	// If 0, defaults to DefaultBatchSize.
	BatchSize int

	// SnapshotEvery is the batch period of frontier and best-path snapshots.
	// If 0, defaults to DefaultSnapshotEvery.
	SnapshotEvery int

	// SaveArtifact, when non-empty, asks the consumer to persist a run
	// artifact under this name once the run completes.
	SaveArtifact string
}

// scratch bundles the pooled per-run state.
type scratch struct {
	records *recordTable
	open    *OpenSet
	nbuf    []graph.Neighbor
}

// Engine executes paced A* runs over one graph. Safe for concurrent runs;
// each run draws its bookkeeping from an internal pool.
type Engine struct {
	g      *graph.Graph
	pool   sync.Pool
	logger Logger
}

// New creates an Engine bound to g.
func New(g *graph.Graph, opts ...Option) *Engine {
	e := &Engine{
		g:      g,
		logger: &noopLogger{},
	}

	e.pool.New = func() any {
		return &scratch{
			records: newRecordTable(g.NumNodes()),
			open:    NewOpenSet(g.NumNodes()),
		}
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Run executes one search, streaming progress events into stream until a
// terminal Complete. It observes ctx at expansion granularity and still
// flushes the partial batch and the terminal event when cancelled.
//
// The returned error reports fatal input problems (e.g. an edge without the
// requested weight attribute); cancellation and consumer abandonment are
// normal terminations, not errors.
func (e *Engine) Run(ctx context.Context, req Request, stream *progress.Stream) error {
	defer stream.CloseSend()

	batchSize := req.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	h := req.Heuristic
	if h == nil {
		h = heuristic.Zero
	}

	paceCfg := req.Pace
	paceCfg.BatchSize = batchSize

	startPt := e.g.Point(req.Start)
	goalPt := e.g.Point(req.Goal)

	pacer := pace.NewController(paceCfg, geo.Equirectangular(startPt, goalPt))

	e.logger.Infof("run start=%d goal=%d estimated_nodes=%d delay=%s batch_size=%d",
		e.g.NodeID(req.Start), e.g.NodeID(req.Goal), pacer.EstimatedNodes(), pacer.Delay(), batchSize)

	s, _ := e.pool.Get().(*scratch)
	defer e.pool.Put(s)

	s.records.reset(e.g.NumNodes())
	s.open.Reset()

	seq := s.open.Push(req.Start, h(startPt, goalPt))
	s.records.open(req.Start, 0, 0, req.Start, seq)

	r := &run{
		engine:  e,
		req:     req,
		stream:  stream,
		pacer:   pacer,
		scratch: s,
		started: time.Now(),
	}

	var (
		found    bool
		inputErr error
	)

loop:
	for s.open.Len() > 0 {
		if err := pacer.Wait(ctx); err != nil {
			break
		}

		batch := make([]int64, 0, batchSize)

		for len(batch) < batchSize {
			if ctx.Err() != nil {
				break
			}

			item, ok := s.open.Pop()
			if !ok {
				break
			}

			// Lazy deletion: a superseded or already expanded entry is
			// discarded without counting against the batch.
			if !s.records.live(item.Node, item.Seq) {
				r.staleSkipped++
				continue
			}

			s.records.close(item.Node)
			r.expanded++
			r.lastExpanded = item.Node
			batch = append(batch, e.g.NodeID(item.Node))

			if item.Node == req.Goal {
				found = true
				break
			}

			if err := r.relax(item.Node, goalPt, h); err != nil {
				inputErr = err
				break
			}
		}

		r.visited = append(r.visited, batch...)
		r.batches++

		last := found || inputErr != nil || ctx.Err() != nil

		if err := r.flush(ctx, batch, last); err != nil {
			if errors.Is(err, progress.ErrStreamClosed) {
				e.logger.Errorf("run abandoned by consumer after %d expansions", r.expanded)
				return nil
			}

			break
		}

		if found || inputErr != nil {
			break loop
		}

		pacer.Observe(r.expanded)

		if ctx.Err() != nil {
			break
		}
	}

	r.finish(found, inputErr)

	return inputErr
}

// run holds the mutable state of one Run invocation.
type run struct {
	engine  *Engine
	req     Request
	stream  *progress.Stream
	pacer   *pace.Controller
	scratch *scratch

	started time.Time

	visited      []int64
	batches      int
	batchesSent  int
	expanded     int
	relaxed      int
	staleSkipped int
	lastExpanded uint32
}

// relax expands one node, re-scoring neighbors that improve.
func (r *run) relax(u uint32, goalPt geo.Point, h heuristic.Func) error {
	e := r.engine
	s := r.scratch

	var err error

	s.nbuf, err = e.g.AppendNeighbors(s.nbuf[:0], u, r.req.WeightSlot)
	if err != nil {
		return fmt.Errorf("expand node %d: %w", e.g.NodeID(u), err)
	}

	gU, _ := s.records.gScore(u)
	distU := s.records.distance(u)

	for _, nb := range s.nbuf {
		if s.records.isClosed(nb.Node) {
			continue
		}

		tentative := gU + nb.Cost

		if cur, seen := s.records.gScore(nb.Node); seen && tentative >= cur {
			continue
		}

		dist := distU
		if r.req.DistSlot >= 0 {
			if v, ok := e.g.EdgeValue(r.req.DistSlot, nb.Edge); ok {
				dist += v
			}
		}

		seq := s.open.Push(nb.Node, tentative+h(e.g.Point(nb.Node), goalPt))
		s.records.open(nb.Node, tentative, dist, u, seq)
		r.relaxed++
	}

	return nil
}

// flush emits the batch's events: the visited nodes, then periodically a
// frontier snapshot, the best path so far, and a progress estimate. Snapshots
// are skipped on the last batch; Complete supersedes them. A cancelled run
// still delivers its partial batch, so sends fall back to a background
// context once ctx is done.
func (r *run) flush(ctx context.Context, batch []int64, last bool) error {
	if ctx.Err() != nil {
		ctx = context.Background()
	}

	if len(batch) > 0 {
		if err := r.stream.Send(ctx, progress.VisitedBatch{Nodes: batch}); err != nil {
			return err
		}

		r.batchesSent++
	}

	if last || r.batches%r.req.snapshotPeriod() != 0 {
		return nil
	}

	if err := r.stream.Send(ctx, progress.FrontierSnapshot{Nodes: r.frontier()}); err != nil {
		return err
	}

	if r.lastExpanded != r.req.Start {
		best := r.scratch.records.appendPath(nil, r.lastExpanded)
		if err := r.stream.Send(ctx, progress.BestPathSoFar{Nodes: r.engine.externalIDs(best)}); err != nil {
			return err
		}
	}

	return r.stream.Send(ctx, progress.Progress{Percent: r.pacer.Percent(r.expanded)})
}

// frontier lists the nodes with a live open entry.
func (r *run) frontier() []int64 {
	items := r.scratch.open.Items()

	nodes := make([]int64, 0, len(items))
	for _, item := range items {
		if r.scratch.records.live(item.Node, item.Seq) {
			nodes = append(nodes, r.engine.g.NodeID(item.Node))
		}
	}

	return nodes
}

// finish emits the terminal Complete and, if requested, the SaveRequest.
// Terminal events are delivered even after cancellation, so they use a
// background context; an abandoning consumer unblocks them via the stream.
func (r *run) finish(found bool, inputErr error) {
	e := r.engine

	stats := progress.Stats{
		PathNodes:    0,
		Expanded:     r.expanded,
		Relaxed:      r.relaxed,
		StaleSkipped: r.staleSkipped,
		Batches:      r.batchesSent,
		Runtime:      time.Since(r.started),
		SaveArtifact: r.req.SaveArtifact != "",
	}

	var path []int64

	if found {
		idxPath := r.scratch.records.appendPath(nil, r.req.Goal)
		path = e.externalIDs(idxPath)

		stats.PathNodes = len(path)
		stats.TotalCost, _ = r.scratch.records.gScore(r.req.Goal)
		stats.TotalDistance = r.scratch.records.distance(r.req.Goal)
	}

	e.logger.Infof("run finished found=%t expanded=%d relaxed=%d stale=%d runtime=%s",
		found, r.expanded, r.relaxed, r.staleSkipped, stats.Runtime)

	ctx := context.Background()

	if err := r.stream.Send(ctx, progress.Complete{Path: path, Visited: r.visited, Stats: stats}); err != nil {
		e.logger.Errorf("terminal event not delivered: %v", err)
		return
	}

	if r.req.SaveArtifact != "" && inputErr == nil {
		if err := r.stream.Send(ctx, progress.SaveRequest{Filename: r.req.SaveArtifact}); err != nil {
			e.logger.Errorf("save request not delivered: %v", err)
		}
	}
}

func (e *Engine) externalIDs(idx []uint32) []int64 {
	ids := make([]int64, len(idx))
	for i, u := range idx {
		ids[i] = e.g.NodeID(u)
	}

	return ids
}

func (req Request) snapshotPeriod() int {
	if req.SnapshotEvery <= 0 {
		return DefaultSnapshotEvery
	}

	return req.SnapshotEvery
}
