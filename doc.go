// Package pathgo provides a paced A* route search engine for Go.
//
// Pathgo runs shortest-path searches over directed weighted multigraphs and
// streams progress events to the caller while the search is in flight. The
// search worker is deliberately slowed to a configurable target runtime so
// consumers (terminal renderers, dashboards, tests) can observe the frontier
// expanding instead of receiving an instant answer.
//
// # Quick Start
//
// Build a graph, then route between two node IDs:
//
//	g, _ := builder.Build() // graph.Builder
//	pg, _ := pathgo.New(g)
//
//	state, err := pg.Route(17, 4211).
//	    Weight("travel_time").
//	    Heuristic(heuristic.KindGreatCircle).
//	    TargetRuntime(10 * time.Second).
//	    Execute(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(state.FinalPath, state.Stats.TotalCost)
//
// # Incremental Consumption
//
// Start returns a Run handle instead of blocking. Poll it from a render loop:
//
//	run, _ := pg.Route(17, 4211).SaveTo("run.json").Start(ctx)
//	for {
//	    ev, err := run.PollEvent(50 * time.Millisecond)
//	    if errors.Is(err, progress.ErrPollTimeout) {
//	        continue
//	    }
//	    if errors.Is(err, progress.ErrStreamClosed) {
//	        break
//	    }
//	    if run.ShouldRender() {
//	        render(run.State())
//	    }
//	    _ = ev
//	}
//	_ = run.Stop(5 * time.Second)
//
// # Event Contract
//
// A run emits VisitedBatch, FrontierSnapshot, BestPathSoFar, and Progress
// events while searching, then exactly one terminal Complete, optionally
// followed by a SaveRequest. Cancellation via RequestStop or context still
// delivers the partial batch and the terminal Complete.
//
// # Key Features
//
//   - A* with lazy open-set deletion and deterministic tie-breaking
//   - Adaptive pacing toward a target runtime with hard delay bounds
//   - Bounded event stream; producer and consumer share no mutable state
//   - Reducer folding the event stream into a renderable RunState
//   - Structured logging (log/slog) and pluggable metrics collection
//   - Graph loading, caching, and artifact export collaborators
package pathgo
