package testutil

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pathgo/progress"
)

// CollectRun drains a stream until the producer closes it, folding every
// event through a fresh reducer. It returns the raw event sequence and the
// final state, and fails the test if the stream does not finish within
// timeout.
func CollectRun(tb testing.TB, s *progress.Stream, timeout time.Duration) ([]progress.Event, *progress.RunState) {
	tb.Helper()

	reducer := progress.NewReducer(0)
	deadline := time.Now().Add(timeout)

	var events []progress.Event

	for {
		ev, err := s.Poll(20 * time.Millisecond)
		if errors.Is(err, progress.ErrStreamClosed) {
			break
		}

		if errors.Is(err, progress.ErrPollTimeout) {
			require.False(tb, time.Now().After(deadline), "stream did not finish within %s", timeout)
			continue
		}

		require.NoError(tb, err)

		events = append(events, ev)
		require.NoError(tb, reducer.Apply(ev))
	}

	return events, reducer.State()
}
