package resilience

import (
	"math"
	"math/rand/v2"
	"time"
)

// maxShift is the largest exponent for which 1<<attempt fits in int64.
const maxShift = 62

// Backoff computes the sleep before a retry: Base * 2^attempt, capped at Max,
// plus a uniform jitter in [0, JitterMax).
type Backoff struct {
	Base      time.Duration
	JitterMax time.Duration

	// Max caps the exponential term. Zero leaves it uncapped.
	Max time.Duration

	// jitter returns a value in [0, n). Nil uses math/rand/v2.
	jitter func(n int64) int64
}

// DefaultBackoff matches the provider defaults: 1s base, 500ms jitter, 30s cap.
func DefaultBackoff() Backoff {
	return Backoff{
		Base:      time.Second,
		JitterMax: 500 * time.Millisecond,
		Max:       30 * time.Second,
	}
}

// DelayFor returns the delay before retry number attempt (0-based).
func (b Backoff) DelayFor(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > maxShift {
		attempt = maxShift
	}
	// Saturate instead of letting Base<<attempt wrap.
	delay := time.Duration(math.MaxInt64)
	if b.Base <= delay>>uint(attempt) {
		delay = b.Base << uint(attempt)
	}
	if b.Max > 0 && delay > b.Max {
		delay = b.Max
	}
	if b.JitterMax <= 0 {
		return delay
	}
	jitter := b.jitter
	if jitter == nil {
		jitter = rand.Int64N
	}
	j := time.Duration(jitter(int64(b.JitterMax)))
	if delay > math.MaxInt64-j {
		return math.MaxInt64
	}
	return delay + j
}
