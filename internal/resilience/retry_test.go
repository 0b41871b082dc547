package resilience

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *recordingSleeper) Sleep(_ context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return nil
}

func (s *recordingSleeper) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.delays)
}

type recordingObserver struct {
	mu     sync.Mutex
	events []*Error
}

func (r *recordingObserver) ObserveAttempt(_ string, _ int, err *Error, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, err)
}

func newTestOrchestrator(t *testing.T, maxAttempts int, sleeper *recordingSleeper) *Orchestrator {
	t.Helper()
	o, err := New(Options{
		MaxAttempts: maxAttempts,
		Timeout:     time.Second,
		Backoff:     Backoff{Base: time.Millisecond, JitterMax: time.Millisecond},
		Sleep:       sleeper.Sleep,
	})
	require.NoError(t, err)
	return o
}

func TestNew_RejectsZeroAttempts(t *testing.T) {
	_, err := New(Options{MaxAttempts: 0})
	require.Error(t, err)

	_, err = New(Options{MaxAttempts: -1})
	require.Error(t, err)
}

func TestExecute_SucceedsFirstAttempt(t *testing.T) {
	t.Parallel()

	sleeper := &recordingSleeper{}
	o := newTestOrchestrator(t, 3, sleeper)

	res := Execute(context.Background(), o, "test", func(context.Context) (string, error) {
		return "ok", nil
	})
	require.True(t, res.OK())
	require.Equal(t, "ok", res.Value)
	require.Equal(t, 1, res.Attempts)
	require.Zero(t, sleeper.Count())
}

func TestExecute_RetriesTransient(t *testing.T) {
	t.Parallel()

	sleeper := &recordingSleeper{}
	o := newTestOrchestrator(t, 3, sleeper)

	calls := 0
	res := Execute(context.Background(), o, "test", func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("503 service unavailable")
		}
		return 42, nil
	})
	require.True(t, res.OK())
	require.Equal(t, 42, res.Value)
	require.Equal(t, 3, calls)
	require.Equal(t, 2, sleeper.Count())
}

func TestExecute_ExhaustsRetryable(t *testing.T) {
	t.Parallel()

	sleeper := &recordingSleeper{}
	obs := &recordingObserver{}
	o, err := New(Options{
		MaxAttempts: 3,
		Backoff:     Backoff{Base: time.Millisecond},
		Sleep:       sleeper.Sleep,
		Observer:    obs,
	})
	require.NoError(t, err)

	calls := 0
	res := Execute(context.Background(), o, "test", func(context.Context) (string, error) {
		calls++
		return "", errors.New("500 internal error")
	})
	require.False(t, res.OK())
	require.Empty(t, res.Value)
	require.Equal(t, KindServerUnavailable, res.Err.Kind)
	require.Equal(t, 3, calls)
	require.Equal(t, 3, res.Attempts)
	// No sleep after the final attempt.
	require.Equal(t, 2, sleeper.Count())
	require.Len(t, obs.events, 3)
}

func TestExecute_NonRetryableShortCircuits(t *testing.T) {
	t.Parallel()

	sleeper := &recordingSleeper{}
	o := newTestOrchestrator(t, 5, sleeper)

	calls := 0
	res := Execute(context.Background(), o, "test", func(context.Context) (string, error) {
		calls++
		return "", errors.New("403 forbidden")
	})
	require.False(t, res.OK())
	require.Equal(t, KindInvalidCredential, res.Err.Kind)
	require.False(t, res.Err.Retryable)
	require.Equal(t, 1, calls)
	require.Zero(t, sleeper.Count())
}

func TestExecute_TimesOutSlowAttempt(t *testing.T) {
	t.Parallel()

	sleeper := &recordingSleeper{}
	o, err := New(Options{
		MaxAttempts: 2,
		Timeout:     10 * time.Millisecond,
		Sleep:       sleeper.Sleep,
	})
	require.NoError(t, err)

	release := make(chan struct{})
	defer close(release)

	var calls atomic.Int32
	res := Execute(context.Background(), o, "test", func(context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "late", nil
	})
	require.False(t, res.OK())
	require.Equal(t, KindTimeout, res.Err.Kind)
	require.Equal(t, 2, res.Attempts)
	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, time.Millisecond)
}

func TestExecute_StopsOnCanceledContext(t *testing.T) {
	t.Parallel()

	sleeper := &recordingSleeper{}
	o := newTestOrchestrator(t, 3, sleeper)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	res := Execute(ctx, o, "test", func(context.Context) (string, error) {
		calls++
		return "x", nil
	})
	require.False(t, res.OK())
	require.Zero(t, calls)
}

func TestExecuteProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("never exceeds max attempts", prop.ForAll(
		func(maxAttempts int) bool {
			sleeper := &recordingSleeper{}
			o, err := New(Options{MaxAttempts: maxAttempts, Sleep: sleeper.Sleep})
			if err != nil {
				return false
			}
			calls := 0
			res := Execute(context.Background(), o, "prop", func(context.Context) (int, error) {
				calls++
				return 0, errors.New("network unreachable")
			})
			return !res.OK() && calls == maxAttempts && sleeper.Count() == maxAttempts-1
		},
		gen.IntRange(1, 10),
	))

	properties.Property("non-retryable error is attempted once", prop.ForAll(
		func(maxAttempts int) bool {
			sleeper := &recordingSleeper{}
			o, err := New(Options{MaxAttempts: maxAttempts, Sleep: sleeper.Sleep})
			if err != nil {
				return false
			}
			calls := 0
			res := Execute(context.Background(), o, "prop", func(context.Context) (int, error) {
				calls++
				return 0, errors.New("RESOURCE_EXHAUSTED")
			})
			return !res.OK() && calls == 1 && sleeper.Count() == 0
		},
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t)
}
