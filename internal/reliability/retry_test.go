package reliability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/adequacy-core/internal/errs"
)

func TestRelaxedTimeLimit_DoublesUpToCap(t *testing.T) {
	base := 10 * time.Second
	max := 35 * time.Second
	assert.Equal(t, 10*time.Second, RelaxedTimeLimit(base, 1, max))
	assert.Equal(t, 20*time.Second, RelaxedTimeLimit(base, 2, max))
	assert.Equal(t, max, RelaxedTimeLimit(base, 3, max)) // 40s would exceed max
}

func TestWithTimeLimitRetry_SucceedsAfterRetry(t *testing.T) {
	calls := 0
	err := WithTimeLimitRetry(context.Background(), zerolog.Nop(), func(ctx context.Context, limit time.Duration) error {
		calls++
		if calls < 2 {
			return errs.ErrSolverTimeLimit
		}
		return nil
	}, time.Second, 10*time.Second, 3)

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestWithTimeLimitRetry_NonTimeLimitErrorStopsImmediately(t *testing.T) {
	calls := 0
	sentinel := errors.New("boom")
	err := WithTimeLimitRetry(context.Background(), zerolog.Nop(), func(ctx context.Context, limit time.Duration) error {
		calls++
		return sentinel
	}, time.Second, 10*time.Second, 3)

	require.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, calls)
}

func TestWithTimeLimitRetry_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := WithTimeLimitRetry(context.Background(), zerolog.Nop(), func(ctx context.Context, limit time.Duration) error {
		calls++
		return errs.ErrSolverTimeLimit
	}, time.Second, 10*time.Second, 3)

	require.ErrorIs(t, err, errs.ErrSolverTimeLimit)
	assert.Equal(t, 3, calls)
}
