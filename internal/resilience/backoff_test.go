package resilience

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

func TestBackoff_DeterministicWithoutJitter(t *testing.T) {
	b := Backoff{Base: 100 * time.Millisecond}
	require.Equal(t, 100*time.Millisecond, b.DelayFor(0))
	require.Equal(t, 200*time.Millisecond, b.DelayFor(1))
	require.Equal(t, 400*time.Millisecond, b.DelayFor(2))
	require.Equal(t, 100*time.Millisecond, b.DelayFor(-1))
}

func TestBackoff_CapsExponentialTerm(t *testing.T) {
	b := Backoff{Base: time.Second, Max: 3 * time.Second}
	require.Equal(t, 2*time.Second, b.DelayFor(1))
	require.Equal(t, 3*time.Second, b.DelayFor(2))
	require.Equal(t, 3*time.Second, b.DelayFor(40))
}

func TestBackoff_JitterAddedAfterCap(t *testing.T) {
	b := Backoff{
		Base:      time.Second,
		Max:       2 * time.Second,
		JitterMax: 500 * time.Millisecond,
		jitter:    func(n int64) int64 { return n - 1 },
	}
	require.Equal(t, 2*time.Second+500*time.Millisecond-1, b.DelayFor(5))
}

func TestBackoff_LargeAttemptDoesNotOverflow(t *testing.T) {
	b := Backoff{Base: time.Second}
	require.Positive(t, b.DelayFor(1000))
}

func TestBackoff_UncappedDelaySaturates(t *testing.T) {
	// 20s<<30 exceeds int64 nanoseconds; a wrapped product would come out near 3s.
	b := Backoff{Base: 20 * time.Second}
	require.Equal(t, time.Duration(math.MaxInt64), b.DelayFor(30))

	b.JitterMax = time.Second
	b.jitter = func(n int64) int64 { return n - 1 }
	require.Equal(t, time.Duration(math.MaxInt64), b.DelayFor(30))

	b.Max = time.Minute
	require.Equal(t, time.Minute+time.Second-1, b.DelayFor(30))
}

func TestBackoffProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	b := DefaultBackoff()
	b.Max = 0

	properties.Property("delay stays within [base*2^n, base*2^n+jitter)", prop.ForAll(
		func(n int) bool {
			floor := b.Base * time.Duration(1<<uint(n))
			d := b.DelayFor(n)
			return d >= floor && d < floor+b.JitterMax
		},
		gen.IntRange(0, 12),
	))

	properties.Property("delay grows strictly with attempt", prop.ForAll(
		func(n int) bool {
			return b.DelayFor(n) < b.DelayFor(n+1)
		},
		gen.IntRange(0, 12),
	))

	properties.Property("delay never shrinks as attempts grow, for any base", prop.ForAll(
		func(base int64, n int) bool {
			u := Backoff{Base: time.Duration(base)}
			return u.DelayFor(n) <= u.DelayFor(n+1)
		},
		gen.Int64Range(1, int64(time.Hour)),
		gen.IntRange(0, 70),
	))

	properties.Property("first delay is at least the base", prop.ForAll(
		func(_ int) bool {
			return b.DelayFor(0) >= b.Base
		},
		gen.Int(),
	))

	properties.TestingRun(t)
}
