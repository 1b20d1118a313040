package pace

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateClamps(t *testing.T) {
	tests := []struct {
		name     string
		dist     float64
		expected int
	}{
		{"ShortPathFloor", 10, 300},
		{"MidRange", 100, 500},
		{"LongPathCeiling", 1e6, 3000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(Config{}, tt.dist)
			assert.Equal(t, tt.expected, c.EstimatedNodes())
		})
	}
}

func TestInitialDelay(t *testing.T) {
	// 500 estimated nodes in batches of 20 is 25 batches; 12s / 25 = 480ms,
	// clamped to the 200ms ceiling.
	c := NewController(Config{}, 100)
	assert.Equal(t, DefaultMaxDelay, c.Delay())

	// 3000 nodes / 20 = 150 batches; 12s / 150 = 80ms, inside the range.
	c = NewController(Config{}, 1e6)
	assert.Equal(t, 80*time.Millisecond, c.Delay())
}

func TestDelayNeverLeavesRange(t *testing.T) {
	cfg := Config{
		TargetRuntime: time.Second,
		MinDelay:      5 * time.Millisecond,
		MaxDelay:      50 * time.Millisecond,
	}

	c := NewController(cfg, 1e9)
	c.start = time.Unix(1000, 0)

	// Extremely slow run: corrections push the delay down on every batch.
	c.now = func() time.Time { return c.start.Add(time.Hour) }
	for i := 0; i < 200; i++ {
		c.Observe(c.EstimatedNodes() / 2)
		assert.GreaterOrEqual(t, c.Delay(), cfg.MinDelay)
		assert.LessOrEqual(t, c.Delay(), cfg.MaxDelay)
	}

	assert.Equal(t, cfg.MinDelay, c.Delay())

	// Extremely fast run: corrections push the delay up.
	c = NewController(cfg, 1e9)
	c.start = time.Unix(1000, 0)
	c.now = func() time.Time { return c.start.Add(time.Nanosecond) }
	for i := 0; i < 200; i++ {
		c.Observe(c.EstimatedNodes() / 2)
	}

	assert.Equal(t, cfg.MaxDelay, c.Delay())
}

func TestCorrectionWindow(t *testing.T) {
	cfg := Config{TargetRuntime: 10 * time.Second}

	c := NewController(cfg, 1e6) // estimate 3000
	c.start = time.Unix(1000, 0)
	c.now = func() time.Time { return c.start.Add(time.Nanosecond) }

	initial := c.Delay()

	// Below 10% progress the signal is ignored.
	c.Observe(100)
	assert.Equal(t, initial, c.Delay())

	// Above 90% progress likewise.
	c.Observe(2900)
	assert.Equal(t, initial, c.Delay())

	// Inside the window a fast run raises the delay by 5%.
	c.Observe(1500)
	assert.Equal(t, time.Duration(float64(initial)*1.05), c.Delay())
}

func TestCorrectionDirection(t *testing.T) {
	cfg := Config{TargetRuntime: 10 * time.Second}

	// Half the nodes expanded at the ideal halfway time: no change.
	c := NewController(cfg, 1e6)
	c.start = time.Unix(1000, 0)
	c.now = func() time.Time { return c.start.Add(5 * time.Second) }

	initial := c.Delay()
	c.Observe(1500)
	assert.Equal(t, initial, c.Delay())

	// Running behind: delay decreases.
	c.now = func() time.Time { return c.start.Add(8 * time.Second) }
	c.Observe(1500)
	assert.Equal(t, time.Duration(float64(initial)*0.95), c.Delay())
}

func TestDegenerateQuery(t *testing.T) {
	c := NewController(Config{}, 0)

	assert.Equal(t, 0, c.EstimatedNodes())
	assert.Equal(t, DefaultMinDelay, c.Delay())
	assert.InDelta(t, 0, c.Percent(50), 1e-9)

	// No corrections apply without an estimate.
	c.Observe(100)
	assert.Equal(t, DefaultMinDelay, c.Delay())
}

func TestPercent(t *testing.T) {
	c := NewController(Config{}, 1e6) // estimate 3000

	assert.InDelta(t, 0, c.Percent(0), 1e-9)
	assert.InDelta(t, 50, c.Percent(1500), 1e-9)
	assert.InDelta(t, 99, c.Percent(2970), 1e-9)

	// Estimates overshoot on easy searches; the cap keeps the figure honest.
	assert.InDelta(t, 99, c.Percent(100000), 1e-9)
}

func TestDisabledPacing(t *testing.T) {
	c := NewController(Config{TargetRuntime: -1}, 1e6)

	start := time.Now()
	for i := 0; i < 100; i++ {
		require.NoError(t, c.Wait(context.Background()))
	}

	assert.Less(t, time.Since(start), time.Second)
}

func TestWaitHonorsContext(t *testing.T) {
	cfg := Config{
		TargetRuntime: time.Hour,
		MinDelay:      time.Minute,
		MaxDelay:      time.Hour,
	}

	c := NewController(cfg, 1e6)

	// Burn the initial token, then cancel during the wait for the next one.
	require.NoError(t, c.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.Wait(ctx)
	assert.Error(t, err)
}
