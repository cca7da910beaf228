package resultstore_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/adequacy-core/internal/resultstore"
	"github.com/aristath/adequacy-core/internal/weekly"
)

func openTestStore(t *testing.T) *resultstore.Store {
	t.Helper()
	dir := t.TempDir()
	s, err := resultstore.Open(filepath.Join(dir, "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestWriteWeek_ThenLatestForWeekRoundTrips(t *testing.T) {
	s := openTestStore(t)

	p := &weekly.Problem{
		RunID: uuid.New(),
		Year:  2031,
		Week:  9,
		Pass1: weekly.PassResult{Status: weekly.StatusOptimal, ObjValue: 1234.5, SolveTime: 2 * time.Second},
		Pass2: weekly.PassResult{Status: weekly.StatusOptimal, ObjValue: 1200.0, SolveTime: time.Second},
	}

	require.NoError(t, s.WriteWeek(context.Background(), p))

	got, err := s.LatestForWeek(context.Background(), 2031, 9)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, weekly.StatusOptimal, got.Pass2Status)
	assert.Equal(t, 1200.0, got.Pass2ObjValue)
}

func TestLatestForWeek_NoRowsReturnsNil(t *testing.T) {
	s := openTestStore(t)
	got, err := s.LatestForWeek(context.Background(), 1999, 1)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestWriteWeek_UpsertsOnSameRunID(t *testing.T) {
	s := openTestStore(t)
	id := uuid.New()

	p := &weekly.Problem{RunID: id, Year: 2031, Week: 3, Pass2: weekly.PassResult{Status: weekly.StatusInfeasible}}
	require.NoError(t, s.WriteWeek(context.Background(), p))

	p.Pass2.Status = weekly.StatusOptimal
	p.Pass2.ObjValue = 42
	require.NoError(t, s.WriteWeek(context.Background(), p))

	got, err := s.LatestForWeek(context.Background(), 2031, 3)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, weekly.StatusOptimal, got.Pass2Status)
	assert.Equal(t, 42.0, got.Pass2ObjValue)
}
