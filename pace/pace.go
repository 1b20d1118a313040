// Package pace throttles a search worker so a run that could finish in
// milliseconds stretches to a target wall-clock duration. The model
// estimates how many nodes the run will expand from the straight-line
// start-goal distance, derives a per-batch delay from the target runtime,
// and applies a small proportional correction while the run is in a stable
// measurement window. Clamps on both the estimate and the delay keep the
// controller from ever diverging.
package pace

import (
	"context"
	"math"
	"time"

	"golang.org/x/time/rate"
)

// Defaults for Config fields left zero.
const (
	DefaultTargetRuntime     = 12 * time.Second
	DefaultBatchSize         = 20
	DefaultMinDelay          = time.Millisecond
	DefaultMaxDelay          = 200 * time.Millisecond
	DefaultMinEstimatedNodes = 300
	DefaultMaxEstimatedNodes = 3000
	DefaultDistanceFactor    = 5.0
)

// Correction tuning. The elapsed/ideal ratio is measured only between 10%
// and 90% of estimated progress; outside that window the signal is too
// noisy. Within it, running under the fast band raises the delay by the
// gain, running over the slow band lowers it.
const (
	correctionWindowLow  = 0.1
	correctionWindowHigh = 0.9
	fastBand             = 0.8
	slowBand             = 1.2
	correctionGain       = 0.05
)

// Config holds pacing parameters.
type Config struct {
	// TargetRuntime is how long the run should visibly last. If 0, defaults
	// to DefaultTargetRuntime; if negative, pacing is disabled entirely.
	TargetRuntime time.Duration

	// BatchSize is the number of nodes expanded between delays.
	// If 0, defaults to DefaultBatchSize.
	BatchSize int

	// MinDelay and MaxDelay clamp the per-batch delay.
	MinDelay time.Duration
	MaxDelay time.Duration

	// MinEstimatedNodes and MaxEstimatedNodes clamp the node estimate, so
	// short paths still play back smoothly and trivial searches never crawl.
	MinEstimatedNodes int
	MaxEstimatedNodes int

	// DistanceFactor scales straight-line distance to estimated nodes.
	DistanceFactor float64
}

func (cfg Config) withDefaults() Config {
	if cfg.TargetRuntime == 0 {
		cfg.TargetRuntime = DefaultTargetRuntime
	}

	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}

	if cfg.MinDelay <= 0 {
		cfg.MinDelay = DefaultMinDelay
	}

	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = DefaultMaxDelay
	}

	if cfg.MaxDelay < cfg.MinDelay {
		cfg.MaxDelay = cfg.MinDelay
	}

	if cfg.MinEstimatedNodes <= 0 {
		cfg.MinEstimatedNodes = DefaultMinEstimatedNodes
	}

	if cfg.MaxEstimatedNodes <= 0 {
		cfg.MaxEstimatedNodes = DefaultMaxEstimatedNodes
	}

	if cfg.MaxEstimatedNodes < cfg.MinEstimatedNodes {
		cfg.MaxEstimatedNodes = cfg.MinEstimatedNodes
	}

	if cfg.DistanceFactor <= 0 {
		cfg.DistanceFactor = DefaultDistanceFactor
	}

	return cfg
}

// Normalized returns the config with defaults applied, exactly as a
// Controller resolves it. A negative TargetRuntime stays negative, meaning
// pacing is disabled.
func (cfg Config) Normalized() Config {
	return cfg.withDefaults()
}

// Controller paces one run. Create it when the run starts; it is owned by
// the worker goroutine and not safe for concurrent use.
type Controller struct {
	cfg Config

	estimated int
	delay     time.Duration
	limiter   *rate.Limiter
	disabled  bool

	start time.Time
	now   func() time.Time
}

// NewController plans pacing for a run whose endpoints are straightLineDist
// apart (same unit the DistanceFactor was tuned for, meters by default).
func NewController(cfg Config, straightLineDist float64) *Controller {
	cfg = cfg.withDefaults()

	c := &Controller{
		cfg: cfg,
		now: time.Now,
	}

	if cfg.TargetRuntime < 0 {
		c.disabled = true
		c.limiter = rate.NewLimiter(rate.Inf, 1)
		c.start = c.now()

		return c
	}

	// A degenerate same-node query has no distance to drive the rate model;
	// it plays back at the minimum delay.
	if straightLineDist <= 0 {
		c.estimated = 0
		c.delay = cfg.MinDelay
	} else {
		c.estimated = clampInt(int(straightLineDist*cfg.DistanceFactor), cfg.MinEstimatedNodes, cfg.MaxEstimatedNodes)

		batches := math.Ceil(float64(c.estimated) / float64(cfg.BatchSize))
		c.delay = clampDelay(time.Duration(float64(cfg.TargetRuntime)/batches), cfg.MinDelay, cfg.MaxDelay)
	}

	c.limiter = rate.NewLimiter(delayToLimit(c.delay), 1)
	c.start = c.now()

	return c
}

// EstimatedNodes returns the clamped node estimate for the run.
func (c *Controller) EstimatedNodes() int { return c.estimated }

// Delay returns the current per-batch delay.
func (c *Controller) Delay() time.Duration { return c.delay }

// Wait blocks until the next batch may start, or until ctx ends. Time spent
// computing the batch counts against the delay, so the pace reflects
// wall-clock intervals, not pure sleep.
func (c *Controller) Wait(ctx context.Context) error {
	return c.limiter.Wait(ctx)
}

// Observe feeds back the number of nodes expanded so far and adjusts the
// delay when the run is inside the measurement window. The adjustment is a
// fixed-gain proportional step, re-clamped on every call.
func (c *Controller) Observe(nodesExplored int) {
	if c.disabled || c.estimated <= 0 {
		return
	}

	ratio := float64(nodesExplored) / float64(c.estimated)
	if ratio < correctionWindowLow || ratio > correctionWindowHigh {
		return
	}

	ideal := float64(c.cfg.TargetRuntime) * ratio
	if ideal <= 0 {
		return
	}

	timeRatio := float64(c.now().Sub(c.start)) / ideal

	switch {
	case timeRatio < fastBand:
		c.delay = time.Duration(float64(c.delay) * (1 + correctionGain))
	case timeRatio > slowBand:
		c.delay = time.Duration(float64(c.delay) * (1 - correctionGain))
	default:
		return
	}

	c.delay = clampDelay(c.delay, c.cfg.MinDelay, c.cfg.MaxDelay)
	c.limiter.SetLimit(delayToLimit(c.delay))
}

// Percent estimates run completion in [0, 99]. It derives from the node
// estimate, not ground truth, so it is capped below 100 until the run
// actually completes.
func (c *Controller) Percent(nodesExplored int) float64 {
	if c.estimated <= 0 {
		return 0
	}

	p := 100 * float64(nodesExplored) / float64(c.estimated)
	if p > 99 {
		p = 99
	}

	return p
}

func delayToLimit(d time.Duration) rate.Limit {
	if d <= 0 {
		return rate.Inf
	}

	return rate.Every(d)
}

func clampDelay(d, min, max time.Duration) time.Duration {
	if d < min {
		return min
	}

	if d > max {
		return max
	}

	return d
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}

	if v > max {
		return max
	}

	return v
}
