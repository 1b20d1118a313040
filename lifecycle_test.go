package pathgo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pathgo"
	"github.com/hupe1980/pathgo/geo"
	"github.com/hupe1980/pathgo/graph"
	"github.com/hupe1980/pathgo/pace"
	"github.com/hupe1980/pathgo/progress"
	"github.com/hupe1980/pathgo/testutil"
)

// slowPace keeps a run alive long enough for lifecycle tests to interact
// with it mid-flight: one node per batch at 25ms means even a short search
// stays up for seconds.
var slowPace = pace.Config{
	TargetRuntime: time.Hour,
	BatchSize:     1,
	MinDelay:      10 * time.Millisecond,
	MaxDelay:      25 * time.Millisecond,
}

func startGridRun(t *testing.T, pg *pathgo.Pathgo, width int) *pathgo.Run {
	t.Helper()

	run, err := pg.Route(testutil.GridID(width, 0, 0), testutil.GridID(width, width-1, width-1)).
		Pace(slowPace).
		Start(context.Background())
	require.NoError(t, err)

	return run
}

func TestStartIdempotent(t *testing.T) {
	metrics := &pathgo.BasicMetricsCollector{}

	pg, err := pathgo.New(testutil.DiamondGraph(t), pathgo.WithMetricsCollector(metrics))
	require.NoError(t, err)

	run, err := pg.Route(1, 4).TargetRuntime(-1).Start(context.Background())
	require.NoError(t, err)

	// A second Start must not spawn a second worker.
	require.NoError(t, run.Start(context.Background()))
	require.NoError(t, run.Start(context.Background()))

	state, err := run.Wait(context.Background())
	require.NoError(t, err)

	assert.True(t, state.Completed)
	assert.Equal(t, int64(1), metrics.GetStats().RouteCount)
}

func TestRequestStopDeliversComplete(t *testing.T) {
	g := testutil.GridGraph(t, 40, 40)
	pg, err := pathgo.New(g)
	require.NoError(t, err)

	run := startGridRun(t, pg, 40)

	time.Sleep(60 * time.Millisecond)
	run.RequestStop()

	state, err := run.Wait(context.Background())
	require.NoError(t, err)

	assert.True(t, state.Completed)
	assert.Empty(t, state.FinalPath)
	assert.NotEmpty(t, state.Visited)
	assert.Less(t, state.Stats.Expanded, 40*40)
	assert.False(t, run.IsRunning())
}

func TestStopFinishedRun(t *testing.T) {
	pg := newDiamond(t)

	run, err := pg.Route(1, 4).TargetRuntime(-1).Start(context.Background())
	require.NoError(t, err)

	_, err = run.Wait(context.Background())
	require.NoError(t, err)

	// Stopping an already finished run is clean and repeatable.
	assert.NoError(t, run.Stop(time.Second))
	assert.NoError(t, run.Stop(time.Second))
}

func TestStopMidRun(t *testing.T) {
	g := testutil.GridGraph(t, 40, 40)
	pg, err := pathgo.New(g)
	require.NoError(t, err)

	run := startGridRun(t, pg, 40)

	time.Sleep(40 * time.Millisecond)
	require.NoError(t, run.Stop(5*time.Second))

	assert.False(t, run.IsRunning())
	assert.True(t, run.State().Completed)
	assert.Empty(t, run.State().FinalPath)
}

func TestStopJoinTimeout(t *testing.T) {
	g := testutil.GridGraph(t, 40, 40)
	pg, err := pathgo.New(g)
	require.NoError(t, err)

	run := startGridRun(t, pg, 40)

	// The worker cannot flush its partial batch and terminal event within a
	// nanosecond, so the join must report a leak instead of blocking.
	err = run.Stop(time.Nanosecond)
	assert.ErrorIs(t, err, pathgo.ErrJoinTimeout)

	// A follow-up join with a real budget succeeds.
	assert.NoError(t, run.Stop(5*time.Second))
}

func TestPollLoop(t *testing.T) {
	g := testutil.GridGraph(t, 16, 16)
	pg, err := pathgo.New(g)
	require.NoError(t, err)

	run, err := pg.Route(testutil.GridID(16, 0, 0), testutil.GridID(16, 15, 15)).
		TargetRuntime(200 * time.Millisecond).
		Start(context.Background())
	require.NoError(t, err)

	var batches int
	deadline := time.Now().Add(10 * time.Second)

	for {
		require.True(t, time.Now().Before(deadline), "run did not finish")

		ev, err := run.PollEvent(20 * time.Millisecond)
		if errors.Is(err, progress.ErrPollTimeout) {
			continue
		}
		if errors.Is(err, progress.ErrStreamClosed) {
			break
		}
		require.NoError(t, err)

		if _, ok := ev.(progress.VisitedBatch); ok {
			batches++
		}
	}

	assert.Greater(t, batches, 1)
	assert.True(t, run.State().Completed)
	assert.NotEmpty(t, run.State().FinalPath)
	assert.False(t, run.HasPendingEvents())
}

func TestIsRunningLifetime(t *testing.T) {
	g := testutil.GridGraph(t, 40, 40)
	pg, err := pathgo.New(g)
	require.NoError(t, err)

	run := startGridRun(t, pg, 40)
	assert.True(t, run.IsRunning())

	run.RequestStop()

	_, err = run.Wait(context.Background())
	require.NoError(t, err)
	assert.False(t, run.IsRunning())
}

func TestWaitHonorsContext(t *testing.T) {
	g := testutil.GridGraph(t, 40, 40)
	pg, err := pathgo.New(g)
	require.NoError(t, err)

	run := startGridRun(t, pg, 40)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = run.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// The worker is still alive; end it for real.
	require.NoError(t, run.Stop(5*time.Second))
}

func TestMetricsCollected(t *testing.T) {
	metrics := &pathgo.BasicMetricsCollector{}

	pg, err := pathgo.New(testutil.GridGraph(t, 12, 12), pathgo.WithMetricsCollector(metrics))
	require.NoError(t, err)

	_, err = pg.Route(testutil.GridID(12, 0, 0), testutil.GridID(12, 11, 11)).
		TargetRuntime(-1).
		BatchSize(10).
		Execute(context.Background())
	require.NoError(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.RouteCount)
	assert.Zero(t, stats.RouteErrors)
	assert.Greater(t, stats.BatchCount, int64(1))
	assert.Greater(t, stats.BatchNodes, int64(0))
	assert.Greater(t, stats.PollCount, int64(0))
}

func TestShouldRenderAfterComplete(t *testing.T) {
	pg := newDiamond(t)

	run, err := pg.Route(1, 4).TargetRuntime(-1).Start(context.Background())
	require.NoError(t, err)

	_, err = run.Wait(context.Background())
	require.NoError(t, err)

	// Throttling never suppresses the final render.
	assert.True(t, run.ShouldRender())
	assert.True(t, run.ShouldRender())
}

func TestStreamStatsBalanced(t *testing.T) {
	pg := newDiamond(t)

	run, err := pg.Route(1, 4).TargetRuntime(-1).Start(context.Background())
	require.NoError(t, err)

	_, err = run.Wait(context.Background())
	require.NoError(t, err)

	stats := run.StreamStats()
	assert.Equal(t, stats.Sent, stats.Received)
	assert.Zero(t, stats.Pending)
}

func newMissingAttrPathgo(t *testing.T) *pathgo.Pathgo {
	t.Helper()

	b := graph.NewBuilder()
	b.AddNode(1, geo.Point{})
	b.AddNode(2, geo.Point{})
	b.AddNode(3, geo.Point{})
	b.AddEdge(1, 2, map[string]float64{pathgo.DefaultWeightAttr: 1})
	b.AddEdge(2, 3, map[string]float64{pathgo.DefaultDistanceAttr: 5}) // no travel_time

	g, err := b.Build()
	require.NoError(t, err)

	pg, err := pathgo.New(g)
	require.NoError(t, err)

	return pg
}

func TestRuntimeErrorSurfacesFromWait(t *testing.T) {
	// An edge without the weight attribute is a fatal input error. It is
	// detected mid-run, so it surfaces from Wait, not Start, and the stream
	// still terminates with a Complete.
	pg := newMissingAttrPathgo(t)

	run, err := pg.Route(1, 3).TargetRuntime(-1).Start(context.Background())
	require.NoError(t, err)

	state, err := run.Wait(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, pathgo.ErrNotFound)

	assert.True(t, state.Completed)
	assert.Empty(t, state.FinalPath)
}
