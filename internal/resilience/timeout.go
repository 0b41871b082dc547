package resilience

import (
	"context"
	"errors"
	"time"
)

const timeoutSentinel = "REQUEST_TIMEOUT"

// ErrTimeout is returned by WithTimeout when the operation does not finish in time.
var ErrTimeout = errors.New(timeoutSentinel)

// WithTimeout runs op and returns its result, or ErrTimeout once limit elapses.
//
// op receives a context that is canceled at the deadline, but WithTimeout does not
// wait for op to observe it: a late completion is dropped. Callers must treat side
// effects of an abandoned op as benign. A limit <= 0 disables the deadline.
func WithTimeout[T any](ctx context.Context, limit time.Duration, op func(context.Context) (T, error)) (T, error) {
	if limit <= 0 {
		return op(ctx)
	}

	opCtx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	type outcome struct {
		val T
		err error
	}
	// Buffered so an abandoned op can still deliver and exit.
	done := make(chan outcome, 1)
	go func() {
		v, err := op(opCtx)
		done <- outcome{val: v, err: err}
	}()

	var zero T
	select {
	case out := <-done:
		return out.val, out.err
	case <-opCtx.Done():
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		return zero, ErrTimeout
	}
}
