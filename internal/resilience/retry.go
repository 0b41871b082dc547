// Package resilience wraps provider calls with failure classification, bounded
// retries, jittered exponential backoff and per-attempt timeouts.
package resilience

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/arpita1049/Prashikshan-final/internal/util"
)

// Options configures an Orchestrator.
type Options struct {
	// MaxAttempts is the total number of attempts, including the first. Must be >= 1.
	MaxAttempts int
	// Timeout bounds each attempt. <= 0 disables the per-attempt deadline.
	Timeout time.Duration
	Backoff Backoff

	// RateLimitRPS is a process-wide limit on attempts. Set to <=0 to disable.
	RateLimitRPS float64

	Classifier Classifier
	Observer   Observer
	Logger     *slog.Logger

	// Sleep waits between attempts. Nil uses a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultOptions returns 3 attempts, a 30s per-attempt timeout and DefaultBackoff.
func DefaultOptions() Options {
	return Options{
		MaxAttempts: 3,
		Timeout:     30 * time.Second,
		Backoff:     DefaultBackoff(),
	}
}

// Observer receives one event per attempt. err is nil on success.
type Observer interface {
	ObserveAttempt(label string, attempt int, err *Error, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveAttempt(string, int, *Error, time.Duration) {}

// Orchestrator drives bounded retries of a single provider operation.
// It is safe for concurrent use.
type Orchestrator struct {
	maxAttempts int
	timeout     time.Duration
	backoff     Backoff
	limiter     *rate.Limiter
	classifier  Classifier
	observer    Observer
	logger      *slog.Logger
	sleep       func(ctx context.Context, d time.Duration) error
}

// New validates opts and constructs an Orchestrator.
func New(opts Options) (*Orchestrator, error) {
	if opts.MaxAttempts < 1 {
		return nil, fmt.Errorf("max attempts must be >= 1, got %d", opts.MaxAttempts)
	}
	o := &Orchestrator{
		maxAttempts: opts.MaxAttempts,
		timeout:     opts.Timeout,
		backoff:     opts.Backoff,
		classifier:  opts.Classifier,
		observer:    opts.Observer,
		logger:      opts.Logger,
		sleep:       opts.Sleep,
	}
	if opts.RateLimitRPS > 0 {
		o.limiter = rate.NewLimiter(rate.Limit(opts.RateLimitRPS), 1)
	}
	if o.classifier == nil {
		o.classifier = DefaultClassifier
	}
	if o.observer == nil {
		o.observer = nopObserver{}
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.sleep == nil {
		o.sleep = sleepCtx
	}
	return o, nil
}

// MaxAttempts reports the configured attempt bound.
func (o *Orchestrator) MaxAttempts() int {
	return o.maxAttempts
}

// Result is the outcome of Execute: either a value or a classified error, never both.
type Result[T any] struct {
	Value    T
	Err      *Error
	Attempts int
}

// OK reports whether the result holds a value.
func (r Result[T]) OK() bool {
	return r.Err == nil
}

func success[T any](v T, attempts int) Result[T] {
	return Result[T]{Value: v, Attempts: attempts}
}

func failure[T any](err *Error, attempts int) Result[T] {
	return Result[T]{Err: err, Attempts: attempts}
}

// Execute runs op up to MaxAttempts times. Each attempt runs under the timeout guard;
// failures are classified, and only retryable ones are retried after a backoff sleep.
// A non-retryable failure returns immediately without sleeping.
func Execute[T any](ctx context.Context, o *Orchestrator, label string, op func(context.Context) (T, error)) Result[T] {
	var lastErr *Error
	for attempt := 0; attempt < o.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return failure[T](o.classifier.Classify(err), attempt)
		}
		if o.limiter != nil {
			if err := o.limiter.Wait(ctx); err != nil {
				return failure[T](o.classifier.Classify(err), attempt)
			}
		}

		start := time.Now()
		v, err := WithTimeout(ctx, o.timeout, op)
		elapsed := time.Since(start)
		if err == nil {
			o.observer.ObserveAttempt(label, attempt+1, nil, elapsed)
			return success(v, attempt+1)
		}

		lastErr = o.classifier.Classify(err)
		o.observer.ObserveAttempt(label, attempt+1, lastErr, elapsed)

		last := attempt == o.maxAttempts-1
		if !lastErr.Retryable || last || ctx.Err() != nil {
			o.logger.Warn("provider attempt failed",
				"label", label,
				"attempt", attempt+1,
				"max_attempts", o.maxAttempts,
				"kind", string(lastErr.Kind),
				"retryable", lastErr.Retryable,
				"error", util.RedactSecrets(err.Error()),
			)
			return failure[T](lastErr, attempt+1)
		}

		delay := o.backoff.DelayFor(attempt)
		o.logger.Warn("provider attempt failed, retrying",
			"label", label,
			"attempt", attempt+1,
			"max_attempts", o.maxAttempts,
			"kind", string(lastErr.Kind),
			"retryable", true,
			"delay", delay.Round(time.Millisecond),
			"error", util.RedactSecrets(err.Error()),
		)
		if err := o.sleep(ctx, delay); err != nil {
			return failure[T](lastErr, attempt+1)
		}
	}
	return failure[T](lastErr, o.maxAttempts)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
