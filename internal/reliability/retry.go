// Package reliability implements the "retry at the caller's discretion"
// policy spec §5/§7 leaves to the caller for solver_time_limit: "exceeding
// it maps to a recoverable time_limit error that either fails the week or
// triggers a retry with relaxed tolerances (policy set by caller)". The
// core (internal/driver) exposes the raw time_limit error; this package is
// the optional policy a caller wires in, grounded on the teacher's
// exponential-backoff reconnect loop in
// internal/clients/tradernet/websocket_client.go (reconnectLoop/
// calculateBackoff), adapted from network reconnection to solve retries.
package reliability

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/adequacy-core/internal/errs"
)

// RelaxedTimeLimit computes the widened per-pass time budget for retry
// attempt n (1-indexed), doubling the base budget each attempt up to max,
// matching the doubling backoff shape of calculateBackoff in the teacher's
// websocket client.
func RelaxedTimeLimit(base time.Duration, attempt int, max time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= max {
			return max
		}
	}
	if d > max {
		return max
	}
	return d
}

// SolveFunc performs one solve attempt with the given time limit.
type SolveFunc func(ctx context.Context, timeLimit time.Duration) error

// WithTimeLimitRetry calls solve once with baseTimeLimit, and on
// ErrSolverTimeLimit retries up to maxAttempts-1 additional times with a
// doubled time limit each attempt (capped at maxTimeLimit), per spec §5's
// "retry with relaxed tolerances" policy. Any other error, or a time_limit
// that persists through the last attempt, is returned unchanged.
func WithTimeLimitRetry(ctx context.Context, log zerolog.Logger, solve SolveFunc, baseTimeLimit, maxTimeLimit time.Duration, maxAttempts int) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		limit := RelaxedTimeLimit(baseTimeLimit, attempt, maxTimeLimit)
		lastErr = solve(ctx, limit)
		if lastErr == nil {
			return nil
		}
		if !errors.Is(lastErr, errs.ErrSolverTimeLimit) {
			return lastErr
		}
		log.Warn().
			Int("attempt", attempt).
			Dur("time_limit", limit).
			Msg("solve hit time limit, retrying with relaxed tolerance")
	}
	return lastErr
}
