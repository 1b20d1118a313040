package progress

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamSendPoll(t *testing.T) {
	s := NewStream(8)

	require.NoError(t, s.Send(context.Background(), VisitedBatch{Nodes: []int64{1, 2}}))
	require.NoError(t, s.Send(context.Background(), Progress{Percent: 10}))

	ev, err := s.Poll(time.Second)
	require.NoError(t, err)
	batch, ok := ev.(VisitedBatch)
	require.True(t, ok)
	assert.Equal(t, []int64{1, 2}, batch.Nodes)

	ev, err = s.Poll(time.Second)
	require.NoError(t, err)
	assert.IsType(t, Progress{}, ev)
}

func TestStreamPollTimeout(t *testing.T) {
	s := NewStream(8)

	start := time.Now()
	_, err := s.Poll(30 * time.Millisecond)
	assert.ErrorIs(t, err, ErrPollTimeout)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestStreamTryPoll(t *testing.T) {
	s := NewStream(8)

	_, ok := s.TryPoll()
	assert.False(t, ok)

	require.True(t, s.TrySend(Progress{Percent: 1}))

	ev, ok := s.TryPoll()
	require.True(t, ok)
	assert.IsType(t, Progress{}, ev)
}

func TestStreamCloseSendDrains(t *testing.T) {
	s := NewStream(8)

	require.NoError(t, s.Send(context.Background(), VisitedBatch{Nodes: []int64{1}}))
	require.NoError(t, s.Send(context.Background(), Complete{}))

	s.CloseSend()

	// Buffered events survive the close.
	_, err := s.Poll(time.Second)
	require.NoError(t, err)
	_, err = s.Poll(time.Second)
	require.NoError(t, err)

	_, err = s.Poll(10 * time.Millisecond)
	assert.ErrorIs(t, err, ErrStreamClosed)

	_, err = s.Poll(0)
	assert.ErrorIs(t, err, ErrStreamClosed)
}

func TestStreamSendAfterCloseSend(t *testing.T) {
	s := NewStream(8)
	s.CloseSend()

	err := s.Send(context.Background(), Progress{})
	assert.ErrorIs(t, err, ErrStreamClosed)
	assert.False(t, s.TrySend(Progress{}))
}

func TestStreamBackpressure(t *testing.T) {
	s := NewStream(1)

	require.True(t, s.TrySend(Progress{Percent: 1}))
	assert.False(t, s.TrySend(Progress{Percent: 2}))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := s.Send(ctx, Progress{Percent: 3})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStreamCloseUnblocksProducer(t *testing.T) {
	s := NewStream(1)
	require.True(t, s.TrySend(Progress{Percent: 1}))

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Send(context.Background(), Progress{Percent: 2})
	}()

	// The producer is stuck on the full buffer until the consumer abandons
	// the stream.
	select {
	case err := <-errCh:
		t.Fatalf("send returned early: %v", err)
	case <-time.After(30 * time.Millisecond):
	}

	s.Close()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrStreamClosed)
	case <-time.After(time.Second):
		t.Fatal("send not unblocked by Close")
	}
}

func TestStreamSendAfterConsumerClose(t *testing.T) {
	s := NewStream(8)
	s.Close()

	err := s.Send(context.Background(), Progress{})
	assert.ErrorIs(t, err, ErrStreamClosed)
}

func TestStreamPendingAndStats(t *testing.T) {
	s := NewStream(4)

	assert.Equal(t, 0, s.Pending())

	require.NoError(t, s.Send(context.Background(), Progress{}))
	require.NoError(t, s.Send(context.Background(), Progress{}))
	assert.Equal(t, 2, s.Pending())

	_, err := s.Poll(time.Second)
	require.NoError(t, err)

	stats := s.Stats()
	assert.Equal(t, 4, stats.Capacity)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 2, stats.HighWater)
	assert.Equal(t, int64(2), stats.Sent)
	assert.Equal(t, int64(1), stats.Received)

	// The mark holds the deepest fill, not the current one.
	_, err = s.Poll(time.Second)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Stats().HighWater)
	assert.Equal(t, 0, s.Stats().Pending)
}

func TestStreamDefaultCapacity(t *testing.T) {
	s := NewStream(0)
	assert.Equal(t, DefaultStreamCapacity, s.Stats().Capacity)
}
