package retry

import "context"

// DoWithResultTyped is a type-safe wrapper around Retryer.DoWithResult.
// It propagates the final error to the caller.
//
// Usage:
//
//	val, err := retry.DoWithResultTyped[int](r, ctx, func() (int, error) {
//	    return 42, nil
//	})
func DoWithResultTyped[T any](r Retryer, ctx context.Context, fn func() (T, error)) (T, error) {
	result, err := r.DoWithResult(ctx, func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	v, _ := result.(T)
	return v, nil
}

// Outcome describes how a degrading call ended.
type Outcome struct {
	Attempts int   // number of times fn was invoked
	Degraded bool  // true when fallback was returned
	Err      error // last error when Degraded
}

// DoOrDegrade runs fn under r's policy and never fails: once retries are
// exhausted (or a non-retryable error occurs) it returns fallback.
func DoOrDegrade[T any](r Retryer, ctx context.Context, fallback T, fn func() (T, error)) (T, Outcome) {
	var out Outcome
	v, err := DoWithResultTyped(r, ctx, func() (T, error) {
		out.Attempts++
		return fn()
	})
	if err != nil {
		out.Degraded = true
		out.Err = err
		return fallback, out
	}
	return v, out
}
