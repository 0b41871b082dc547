package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWithTimeout_ReturnsResult(t *testing.T) {
	t.Parallel()

	v, err := WithTimeout(context.Background(), time.Second, func(context.Context) (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	require.Equal(t, 7, v)
}

func TestWithTimeout_PropagatesError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	_, err := WithTimeout(context.Background(), time.Second, func(context.Context) (int, error) {
		return 0, boom
	})
	require.ErrorIs(t, err, boom)
}

func TestWithTimeout_AbandonsSlowOperation(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	finished := make(chan struct{})
	start := time.Now()
	_, err := WithTimeout(context.Background(), 20*time.Millisecond, func(context.Context) (int, error) {
		defer close(finished)
		<-release
		return 1, nil
	})
	require.ErrorIs(t, err, ErrTimeout)
	require.Less(t, time.Since(start), time.Second)

	// The abandoned operation can still complete without blocking.
	close(release)
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("abandoned operation did not finish")
	}
}

func TestWithTimeout_OperationSeesCancellation(t *testing.T) {
	t.Parallel()

	_, err := WithTimeout(context.Background(), 10*time.Millisecond, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	require.Error(t, err)
	require.Equal(t, KindTimeout, Classify(err).Kind)
}

func TestWithTimeout_ParentCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := WithTimeout(ctx, time.Second, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestWithTimeout_ZeroLimitDisablesDeadline(t *testing.T) {
	t.Parallel()

	v, err := WithTimeout(context.Background(), 0, func(ctx context.Context) (string, error) {
		_, ok := ctx.Deadline()
		require.False(t, ok)
		return "done", nil
	})
	require.NoError(t, err)
	require.Equal(t, "done", v)
}
