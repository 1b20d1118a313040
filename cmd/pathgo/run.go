package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/hupe1980/pathgo"
	"github.com/hupe1980/pathgo/artifact"
	s3store "github.com/hupe1980/pathgo/artifact/s3"
	"github.com/hupe1980/pathgo/export"
	"github.com/hupe1980/pathgo/graph"
	"github.com/hupe1980/pathgo/graphio"
	"github.com/hupe1980/pathgo/heuristic"
	"github.com/hupe1980/pathgo/pace"
	"github.com/hupe1980/pathgo/progress"
	"github.com/hupe1980/pathgo/render"
)

// pollTimeout is the consumer-side poll granularity; it bounds how stale
// a frame can get.
const pollTimeout = 50 * time.Millisecond

var (
	runConfigPath    string
	runPlace         string
	runGraphFile     string
	runFrom          int64
	runTo            int64
	runWeight        string
	runHeuristic     string
	runHeuristicExpr string
	runRuntime       time.Duration
	runBatchSize     int
	runMinDelay      time.Duration
	runMaxDelay      time.Duration
	runSeed          int64
	runNoDisplay     bool
	runNoSave        bool
	runOutputDir     string
	runDataDir       string
	runS3Bucket      string
	runS3Prefix      string
	runDDBTable      string
	runVerbose       bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a paced route search",
	Long: `Run a paced A* route search and watch it explore.

Examples:
  pathgo run --place seattle
  pathgo run --place tokyo --runtime 20s --heuristic manhattan
  pathgo run --graph city.json --from 17 --to 4211 --no-display
  pathgo run --place nyc --save-s3 my-bucket --s3-prefix demos/`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runConfigPath, "config", defaultConfigPath(), "Path to the config file")
	runCmd.Flags().StringVar(&runPlace, "place", "baku", "City preset to route in")
	runCmd.Flags().StringVar(&runGraphFile, "graph", "", "Graph JSON file (overrides --place)")
	runCmd.Flags().Int64Var(&runFrom, "from", 0, "Start node ID (default: picked for separation)")
	runCmd.Flags().Int64Var(&runTo, "to", 0, "Goal node ID (default: picked for separation)")
	runCmd.Flags().StringVar(&runWeight, "weight", pathgo.DefaultWeightAttr, "Edge attribute that drives cost")
	runCmd.Flags().StringVar(&runHeuristic, "heuristic", "great_circle", "Heuristic: euclidean, manhattan, chebyshev, great_circle, zero")
	runCmd.Flags().StringVar(&runHeuristicExpr, "heuristic-expr", "", "Heuristic expression over ax, ay, bx, by (overrides --heuristic)")
	runCmd.Flags().DurationVar(&runRuntime, "runtime", pace.DefaultTargetRuntime, "Runtime the pacer stretches the search toward (negative disables pacing)")
	runCmd.Flags().IntVar(&runBatchSize, "batch-size", 0, "Expansions per progress batch")
	runCmd.Flags().DurationVar(&runMinDelay, "min-delay", 0, "Lower clamp of the per-batch delay")
	runCmd.Flags().DurationVar(&runMaxDelay, "max-delay", 0, "Upper clamp of the per-batch delay")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "Endpoint pick seed (0 seeds from the clock)")
	runCmd.Flags().BoolVar(&runNoDisplay, "no-display", false, "Disable the live map")
	runCmd.Flags().BoolVar(&runNoSave, "no-save", false, "Skip writing run artifacts")
	runCmd.Flags().StringVar(&runOutputDir, "output-dir", "", "Artifact directory (default: ./pathgo-runs)")
	runCmd.Flags().StringVar(&runDataDir, "data-dir", "", "Directory bare graph names resolve against")
	runCmd.Flags().StringVar(&runS3Bucket, "save-s3", "", "Write artifacts to this S3 bucket instead of the local directory")
	runCmd.Flags().StringVar(&runS3Prefix, "s3-prefix", "", "Key prefix inside the S3 bucket")
	runCmd.Flags().StringVar(&runDDBTable, "ddb-table", "", "DynamoDB table recording finished runs (requires --save-s3)")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Debug logging")
}

func runRun(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(runConfigPath)
	if err != nil {
		return err
	}

	applyConfig(cmd, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newRunLogger()
	out := cmd.OutOrStdout()

	g, place, err := loadRunGraph(ctx, cfg, logger)
	if err != nil {
		return err
	}

	min, max := g.BBox()
	fmt.Fprintf(out, "%s: %d nodes, %d edges, bbox (%.4f, %.4f)..(%.4f, %.4f)\n",
		place, g.NumNodes(), g.NumEdges(), min.Y, min.X, max.Y, max.X)

	from, to := runFrom, runTo
	if from == 0 || to == 0 {
		seed := runSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}

		from, to = graphio.DiversePair(g, rand.New(rand.NewSource(seed)))
	}

	metrics := &pathgo.BasicMetricsCollector{}

	pg, err := pathgo.New(g,
		pathgo.WithLogger(logger),
		pathgo.WithMetricsCollector(metrics),
		pathgo.WithPace(paceConfig()),
	)
	if err != nil {
		return err
	}

	builder := pg.Route(from, to).Weight(runWeight)

	if runHeuristicExpr != "" {
		builder.HeuristicExpr(runHeuristicExpr)
	} else {
		kind, err := heuristic.ParseKind(runHeuristic)
		if err != nil {
			return err
		}

		builder.Heuristic(kind)
	}

	if runBatchSize > 0 {
		builder.BatchSize(runBatchSize)
	}

	if !runNoSave {
		builder.SaveTo(export.ReportFile)
	}

	run, err := builder.Start(ctx)
	if err != nil {
		return err
	}

	sink, err := newRunSinks(ctx, run.ID().String(), logger, metrics)
	if err != nil {
		run.Stop(0)
		return err
	}

	var rend render.Renderer = render.NewNullRenderer()
	if !runNoDisplay {
		rend = render.NewTermRenderer(os.Stdout, g,
			render.WithTitle(fmt.Sprintf("%s  %d -> %d", place, from, to)),
			render.WithEndpoints(from, to),
		)
	}

	state, pollErr := pollRun(run, rend, sink)

	rend.Close()

	if pollErr != nil {
		sink.closeReplay()
		return pollErr
	}

	// Persist even after Ctrl-C: the partial run is worth keeping.
	names, err := sink.saveRun(context.Background(), g, state, place, from, to)
	if err != nil {
		return err
	}

	if len(state.FinalPath) > 0 {
		fmt.Fprintf(out, "route %d -> %d: cost %.1f over %d nodes (expanded %d in %s)\n",
			from, to, state.Stats.TotalCost, state.Stats.PathNodes, state.Stats.Expanded,
			state.Stats.Runtime.Round(time.Millisecond))
	} else {
		fmt.Fprintf(out, "no route %d -> %d (expanded %d in %s)\n",
			from, to, state.Stats.Expanded, state.Stats.Runtime.Round(time.Millisecond))
	}

	for _, name := range names {
		fmt.Fprintf(out, "saved %s\n", name)
	}

	if runVerbose {
		ss := run.StreamStats()
		ms := metrics.GetStats()
		fmt.Fprintf(out, "stream: %d sent, %d received, high water %d/%d; polls %d (%d timeouts)\n",
			ss.Sent, ss.Received, ss.HighWater, ss.Capacity, ms.PollCount, ms.PollTimeouts)
	}

	return nil
}

// pollRun drives the consumer loop: fold events, mirror them into the
// replay log, redraw when the reducer allows it. Cancellation needs no
// special casing here; the worker winds down and closes the stream.
func pollRun(run *pathgo.Run, rend render.Renderer, sink *runSinks) (*progress.RunState, error) {
	for {
		ev, err := run.PollEvent(pollTimeout)

		switch {
		case err == nil:
			sink.record(ev)
		case errors.Is(err, progress.ErrPollTimeout):
		case errors.Is(err, progress.ErrStreamClosed):
			if err := run.Stop(0); err != nil {
				return run.State(), err
			}

			state := run.State()
			rend.PublishFrame(state)

			return state, nil
		default:
			return run.State(), err
		}

		if run.ShouldRender() {
			rend.PublishFrame(run.State())
		}
	}
}

// paceConfig builds the run's pacing from the merged flag values. Zero
// delays fall back to the pacer defaults.
func paceConfig() pace.Config {
	return pace.Config{
		TargetRuntime: runRuntime,
		MinDelay:      runMinDelay,
		MaxDelay:      runMaxDelay,
	}
}

// newRunLogger logs to stderr so the map on stdout stays clean. The live
// display quiets routine logs unless --verbose asks for them.
func newRunLogger() *pathgo.Logger {
	level := slog.LevelInfo

	switch {
	case runVerbose:
		level = slog.LevelDebug
	case !runNoDisplay:
		level = slog.LevelWarn
	}

	return pathgo.NewTextLogger(level)
}

// applyConfig fills flag values the user left untouched from the config
// file.
func applyConfig(cmd *cobra.Command, cfg *config) {
	flags := cmd.Flags()

	if !flags.Changed("runtime") && cfg.Runtime != 0 {
		runRuntime = time.Duration(cfg.Runtime)
	}

	if !flags.Changed("batch-size") && cfg.BatchSize != 0 {
		runBatchSize = cfg.BatchSize
	}

	if !flags.Changed("min-delay") && cfg.MinDelay != 0 {
		runMinDelay = time.Duration(cfg.MinDelay)
	}

	if !flags.Changed("max-delay") && cfg.MaxDelay != 0 {
		runMaxDelay = time.Duration(cfg.MaxDelay)
	}

	if !flags.Changed("weight") && cfg.Weight != "" {
		runWeight = cfg.Weight
	}

	if !flags.Changed("heuristic") && cfg.Heuristic != "" {
		runHeuristic = cfg.Heuristic
	}

	if !flags.Changed("output-dir") && cfg.OutputDir != "" {
		runOutputDir = cfg.OutputDir
	}

	if !flags.Changed("data-dir") && cfg.DataDir != "" {
		runDataDir = cfg.DataDir
	}

	if !flags.Changed("save-s3") && cfg.S3.Bucket != "" {
		runS3Bucket = cfg.S3.Bucket
	}

	if !flags.Changed("s3-prefix") && cfg.S3.Prefix != "" {
		runS3Prefix = cfg.S3.Prefix
	}

	if !flags.Changed("ddb-table") && cfg.S3.Table != "" {
		runDDBTable = cfg.S3.Table
	}
}

// loadRunGraph resolves --graph or --place into a compiled graph and a
// display name.
func loadRunGraph(ctx context.Context, cfg *config, logger *pathgo.Logger) (*graph.Graph, string, error) {
	if runGraphFile != "" {
		dir, name := filepath.Split(runGraphFile)

		// Bare names resolve under the data directory.
		if dir == "" && runDataDir != "" {
			dir = runDataDir
		}

		if dir == "" {
			dir = "."
		}

		src := graphio.NewFileSource(dir,
			graphio.WithDiskCache(graphio.NewDiskCache(filepath.Join(dir, ".pathgo-cache"))),
			graphio.WithLogger(logger.Logger),
		)

		g, err := src.Load(ctx, name)
		if err != nil {
			return nil, "", err
		}

		return g, strings.TrimSuffix(name, filepath.Ext(name)), nil
	}

	params, ok := cfg.preset(runPlace)
	if !ok {
		return nil, "", fmt.Errorf("unknown place %q (built in: %s)", runPlace, strings.Join(presetNames(), ", "))
	}

	g, err := graphio.Compile(synthCity(params))
	if err != nil {
		return nil, "", err
	}

	return g, runPlace, nil
}

func presetNames() []string {
	names := make([]string, 0, len(builtinPresets))
	for name := range builtinPresets {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// runSinks owns where artifacts go: a local or S3 store, the streaming
// replay log, and optionally a DynamoDB run registry.
type runSinks struct {
	store    artifact.Store
	registry *s3store.RunRegistry

	replay   *export.ReplayWriter
	replayWC io.WriteCloser
	runID    string

	logger  *pathgo.Logger
	metrics pathgo.MetricsCollector
}

// newRunSinks builds the artifact store and opens the streaming replay
// log. With --no-save the store stays nil and recording is a no-op.
func newRunSinks(ctx context.Context, runID string, logger *pathgo.Logger, metrics pathgo.MetricsCollector) (*runSinks, error) {
	if runNoSave {
		return &runSinks{logger: logger, metrics: metrics}, nil
	}

	s := &runSinks{runID: runID, logger: logger, metrics: metrics}

	if runS3Bucket != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading AWS config: %w", err)
		}

		s.store = s3store.NewStore(awss3.NewFromConfig(awsCfg), runS3Bucket, runS3Prefix)

		if runDDBTable != "" {
			s.registry = s3store.NewRunRegistry(dynamodb.NewFromConfig(awsCfg), runDDBTable)
		}
	} else {
		dir := runOutputDir
		if dir == "" {
			dir = "pathgo-runs"
		}

		s.store = artifact.NewLocal(dir)
	}

	wc, err := export.CreateArtifact(ctx, s.store, export.ArtifactName(runID, export.ReplayFile))
	if err != nil {
		return nil, fmt.Errorf("opening replay log: %w", err)
	}

	s.replayWC = wc
	s.replay = export.NewReplayWriter(wc)

	return s, nil
}

// record mirrors one event into the replay log. A failing log disables
// itself instead of killing the run.
func (s *runSinks) record(ev progress.Event) {
	if s.replay == nil {
		return
	}

	if err := s.replay.Append(ev); err != nil {
		s.logger.Warn("replay log write failed, disabling", "error", err)
		s.closeReplay()
	}
}

// closeReplay finishes the lz4 frame and commits the artifact.
func (s *runSinks) closeReplay() error {
	if s.replay == nil {
		return nil
	}

	err := s.replay.Close()

	if cerr := s.replayWC.Close(); cerr != nil && err == nil {
		err = cerr
	}

	s.replay = nil
	s.replayWC = nil

	return err
}

// saveRun renders and stores the artifact set, then records the run in
// the registry when one is configured.
func (s *runSinks) saveRun(ctx context.Context, g *graph.Graph, state *progress.RunState, place string, from, to int64) ([]string, error) {
	if s.store == nil {
		return nil, nil
	}

	var names []string

	if err := s.closeReplay(); err != nil {
		s.logger.Warn("replay log close failed", "error", err)
	} else {
		names = append(names, export.ArtifactName(s.runID, export.ReplayFile))
	}

	rep := export.RunReport{
		RunID:     s.runID,
		Place:     place,
		Start:     from,
		Goal:      to,
		Weight:    runWeight,
		Found:     len(state.FinalPath) > 0,
		Path:      state.FinalPath,
		Stats:     state.Stats,
		Pace:      export.PaceSettingsFrom(paceConfig()),
		CreatedAt: time.Now().UTC(),
	}

	started := time.Now()
	saved, err := export.NewSaver(s.store).Save(ctx, g, rep, state)

	s.metrics.RecordArtifact(time.Since(started), err)
	s.logger.LogArtifactSave(ctx, export.ArtifactName(s.runID, export.ReportFile), err)

	if err != nil {
		return names, err
	}

	names = append(names, saved...)

	if s.registry != nil {
		rec := s3store.RunRecord{
			RunID:     s.runID,
			Place:     place,
			Start:     from,
			Goal:      to,
			Weight:    runWeight,
			TotalCost: state.Stats.TotalCost,
			Expanded:  state.Stats.Expanded,
			Runtime:   state.Stats.Runtime,
			Artifacts: names,
		}

		if err := s.registry.Commit(ctx, rec); err != nil {
			return names, fmt.Errorf("recording run: %w", err)
		}
	}

	return names, nil
}
