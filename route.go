package pathgo

import (
	"context"
	"time"

	"github.com/hupe1980/pathgo/heuristic"
	"github.com/hupe1980/pathgo/pace"
	"github.com/hupe1980/pathgo/progress"
	"github.com/hupe1980/pathgo/search"
)

// Route creates a new fluent route builder between two external node IDs.
//
// Example:
//
//	state, err := pg.Route(17, 4211).
//	    Weight("travel_time").
//	    Heuristic(heuristic.KindGreatCircle).
//	    TargetRuntime(10 * time.Second).
//	    Execute(ctx)
//
//	// Or without blocking:
//	run, err := pg.Route(17, 4211).SaveTo("run.json").Start(ctx)
func (p *Pathgo) Route(start, goal int64) *RouteBuilder {
	return &RouteBuilder{
		pg:     p,
		start:  start,
		goal:   goal,
		weight: DefaultWeightAttr,
		kind:   heuristic.KindGreatCircle,
	}
}

// RouteBuilder is a fluent builder for configuring one route search.
type RouteBuilder struct {
	pg    *Pathgo
	start int64
	goal  int64

	weight      string
	distance    string
	distanceSet bool

	kind  heuristic.Kind
	hfunc heuristic.Func
	hexpr string

	targetRuntime time.Duration
	targetSet     bool
	paceCfg       *pace.Config

	batchSize     int
	snapshotEvery int
	saveTo        string
}

// Weight sets the edge attribute that drives cost.
// Default: "travel_time".
func (b *RouteBuilder) Weight(attr string) *RouteBuilder {
	b.weight = attr
	return b
}

// Distance sets the edge attribute accumulated alongside the cost for
// reporting. Pass "" to disable the accumulation.
// Default: "length", silently skipped if the graph does not carry it.
func (b *RouteBuilder) Distance(attr string) *RouteBuilder {
	b.distance = attr
	b.distanceSet = true
	return b
}

// Heuristic selects a built-in heuristic by kind.
// Default: heuristic.KindGreatCircle.
func (b *RouteBuilder) Heuristic(k heuristic.Kind) *RouteBuilder {
	b.kind = k
	return b
}

// HeuristicFunc sets a custom heuristic function. It takes precedence over
// Heuristic and HeuristicExpr.
func (b *RouteBuilder) HeuristicFunc(f heuristic.Func) *RouteBuilder {
	b.hfunc = f
	return b
}

// HeuristicExpr compiles an expression over the variables ax, ay, bx, by
// into the heuristic. Compilation errors surface from Start.
func (b *RouteBuilder) HeuristicExpr(src string) *RouteBuilder {
	b.hexpr = src
	return b
}

// TargetRuntime sets the runtime the pacing controller stretches the search
// toward. Negative disables pacing entirely.
func (b *RouteBuilder) TargetRuntime(d time.Duration) *RouteBuilder {
	b.targetRuntime = d
	b.targetSet = true
	return b
}

// Pace replaces the whole pacing configuration for this route.
func (b *RouteBuilder) Pace(cfg pace.Config) *RouteBuilder {
	b.paceCfg = &cfg
	return b
}

// BatchSize sets the number of expansions per VisitedBatch event for this
// route, overriding the instance default.
func (b *RouteBuilder) BatchSize(n int) *RouteBuilder {
	b.batchSize = n
	return b
}

// SnapshotEvery sets the batch period of frontier and best-path snapshots
// for this route.
func (b *RouteBuilder) SnapshotEvery(n int) *RouteBuilder {
	b.snapshotEvery = n
	return b
}

// SaveTo asks the consumer to persist a run artifact under the given name
// once the run completes. The run emits a SaveRequest after Complete; the
// engine itself performs no I/O.
func (b *RouteBuilder) SaveTo(filename string) *RouteBuilder {
	b.saveTo = filename
	return b
}

// Start validates the configuration and launches the search worker,
// returning a handle for polling and stopping it. Configuration errors are
// returned here and never reach the event stream.
func (b *RouteBuilder) Start(ctx context.Context) (*Run, error) {
	req, err := b.buildRequest()
	if err != nil {
		return nil, translateError(err)
	}

	r := newRun(b.pg, req, b.start, b.goal, b.weight)
	if err := r.Start(ctx); err != nil {
		return nil, err
	}

	return r, nil
}

// Execute starts the route and blocks until the run finishes, returning the
// final folded state.
func (b *RouteBuilder) Execute(ctx context.Context) (*progress.RunState, error) {
	r, err := b.Start(ctx)
	if err != nil {
		return nil, err
	}

	return r.Wait(ctx)
}

// MustExecute executes the route, panicking on error.
// Use this only in tests or when you're certain the route is valid.
func (b *RouteBuilder) MustExecute(ctx context.Context) *progress.RunState {
	state, err := b.Execute(ctx)
	if err != nil {
		panic(err)
	}
	return state
}

func (b *RouteBuilder) buildRequest() (search.Request, error) {
	g := b.pg.g

	startIdx, ok := g.NodeIndex(b.start)
	if !ok {
		return search.Request{}, &ErrUnknownNode{ID: b.start}
	}

	goalIdx, ok := g.NodeIndex(b.goal)
	if !ok {
		return search.Request{}, &ErrUnknownNode{ID: b.goal}
	}

	weightSlot, ok := g.AttrSlot(b.weight)
	if !ok {
		return search.Request{}, &ErrUnknownAttr{Name: b.weight}
	}

	distSlot, err := b.resolveDistance()
	if err != nil {
		return search.Request{}, err
	}

	if b.batchSize < 0 {
		return search.Request{}, ErrInvalidBatchSize
	}

	batchSize := b.batchSize
	if batchSize == 0 {
		batchSize = b.pg.opts.batchSize
	}

	snapshotEvery := b.snapshotEvery
	if snapshotEvery == 0 {
		snapshotEvery = b.pg.opts.snapshotEvery
	}

	h, err := b.resolveHeuristic()
	if err != nil {
		return search.Request{}, err
	}

	paceCfg := b.pg.opts.pace
	if b.paceCfg != nil {
		paceCfg = *b.paceCfg
	}
	if b.targetSet {
		paceCfg.TargetRuntime = b.targetRuntime
	}

	return search.Request{
		Start:         startIdx,
		Goal:          goalIdx,
		WeightSlot:    weightSlot,
		DistSlot:      distSlot,
		Heuristic:     h,
		Pace:          paceCfg,
		BatchSize:     batchSize,
		SnapshotEvery: snapshotEvery,
		SaveArtifact:  b.saveTo,
	}, nil
}

// resolveDistance maps the distance attribute to a slot. The default
// attribute degrades to disabled when absent; an explicitly requested one
// must exist.
func (b *RouteBuilder) resolveDistance() (int, error) {
	name := b.distance
	if !b.distanceSet {
		name = DefaultDistanceAttr
	}

	if name == "" {
		return -1, nil
	}

	slot, ok := b.pg.g.AttrSlot(name)
	if !ok {
		if b.distanceSet {
			return 0, &ErrUnknownAttr{Name: name}
		}
		return -1, nil
	}

	return slot, nil
}

func (b *RouteBuilder) resolveHeuristic() (heuristic.Func, error) {
	if b.hfunc != nil {
		return b.hfunc, nil
	}

	if b.hexpr != "" {
		return heuristic.FromExpr(b.hexpr)
	}

	return heuristic.Provider(b.kind)
}
