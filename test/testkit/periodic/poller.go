package periodic

import (
	"context"
	"fmt"
	"time"
)

// Result is the outcome of a Poll invocation. On success, State holds the
// first observation that satisfied the predicate; on timeout, the last
// observation made before the deadline.
type Result[T any] struct {
	State    T
	Attempts int
	Elapsed  time.Duration
}

// TimeoutError reports that the deadline elapsed with no satisfying
// observation. It carries enough to distinguish "never happened" from
// "happened too slowly" without rerunning.
type TimeoutError struct {
	Deadline  time.Duration
	Elapsed   time.Duration
	Attempts  int
	LastState any
	LastErr   error
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("condition not satisfied after %d attempts in %v (deadline %v), last observed state: %v",
		e.Attempts, e.Elapsed.Round(time.Millisecond), e.Deadline, e.LastState)
	if e.LastErr != nil {
		msg += fmt.Sprintf(", last observation error: %v", e.LastErr)
	}

	return msg
}

func (e *TimeoutError) Unwrap() error {
	return e.LastErr
}

// Options control a poll loop. Zero values fall back to the package
// defaults.
type Options struct {
	Interval time.Duration
	Timeout  time.Duration
}

func (o Options) withDefaults() Options {
	if o.Interval == 0 {
		o.Interval = DefaultInterval
	}

	if o.Timeout == 0 {
		o.Timeout = EventuallyTimeout
	}

	return o
}

// Poll repeatedly calls observe and evaluates satisfied on the result until
// the predicate holds or the deadline elapses. The interval is fixed, not
// backed off: the systems under test emit on a short periodic schedule, so
// backoff only adds latency.
//
// Observation errors count as unsatisfied attempts; the external state may
// simply not be reachable yet. Context cancellation aborts immediately with
// the context's error. On deadline expiry the returned error is a
// *TimeoutError carrying the last observed state.
func Poll[T any](ctx context.Context, opts Options, observe func(context.Context) (T, error), satisfied func(T) bool) (Result[T], error) {
	opts = opts.withDefaults()
	start := time.Now()
	deadline := start.Add(opts.Timeout)

	var (
		result  Result[T]
		lastErr error
	)

	for {
		state, err := observe(ctx)
		result.Attempts++
		result.Elapsed = time.Since(start)
		lastErr = err

		if err == nil {
			result.State = state
			if satisfied(state) {
				return result, nil
			}
		}

		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		if !time.Now().Add(opts.Interval).Before(deadline) {
			return result, &TimeoutError{
				Deadline:  opts.Timeout,
				Elapsed:   time.Since(start),
				Attempts:  result.Attempts,
				LastState: result.State,
				LastErr:   lastErr,
			}
		}

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(opts.Interval):
		}
	}
}

// PollAboveBaseline handles monotonically increasing counters: it records
// the current value, runs act (the action whose side effect is being
// verified), then polls until an observation strictly exceeds the baseline.
// Protects against false positives when the counter was already nonzero
// before the action occurred. act may be nil.
func PollAboveBaseline(ctx context.Context, opts Options, observe func(context.Context) (float64, error), act func(context.Context) error) (Result[float64], error) {
	baseline, err := observe(ctx)
	if err != nil {
		return Result[float64]{}, fmt.Errorf("failed to record baseline: %w", err)
	}

	if act != nil {
		if err := act(ctx); err != nil {
			return Result[float64]{}, fmt.Errorf("action after baseline failed: %w", err)
		}
	}

	return Poll(ctx, opts, observe, func(value float64) bool {
		return value > baseline
	})
}
