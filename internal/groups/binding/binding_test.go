package binding_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/adequacy-core/internal/domain"
	"github.com/aristath/adequacy-core/internal/groups/binding"
	"github.com/aristath/adequacy-core/internal/indexmaps"
	"github.com/aristath/adequacy-core/internal/lpmatrix"
)

func runPasses(t *testing.T, constraints []*domain.BindingConstraint, horizon int) (*lpmatrix.Matrix, *indexmaps.Table) {
	t.Helper()
	cols := indexmaps.NewSizingTable()
	rows := indexmaps.NewSizingTable()
	matrix := lpmatrix.New()

	sb := lpmatrix.NewSizingBuilder(matrix)
	binding.Build(sb, cols, rows, constraints, horizon)

	matrix.SetColumnCount(cols.Len())
	matrix.Freeze()
	cols.Freeze()
	rows.Freeze()

	eb := lpmatrix.NewEmitBuilder(matrix)
	require.NotPanics(t, func() {
		binding.Build(eb, cols, rows, constraints, horizon)
	})
	return matrix, rows
}

func TestBuild_Hourly_OneRowPerHour(t *testing.T) {
	const horizon = 10
	bc := &domain.BindingConstraint{
		Name:  "flow-cap",
		Sense: domain.BindingLessEqual,
		Scope: domain.ScopeHourly,
		RHS:   make([]float64, horizon),
		Terms: []domain.BindingTerm{{InterconnectionIndex: 0, ThermalClusterIndex: -1, Weight: 1}},
	}
	_, rows := runPasses(t, []*domain.BindingConstraint{bc}, horizon)
	assert.Equal(t, horizon, rows.Len())
}

func TestBuild_Weekly_OneRowTotal(t *testing.T) {
	const horizon = 168
	bc := &domain.BindingConstraint{
		Name:  "weekly-budget",
		Sense: domain.BindingGreaterEqual,
		Scope: domain.ScopeWeekly,
		RHS:   []float64{0},
		Terms: []domain.BindingTerm{{InterconnectionIndex: -1, ThermalClusterIndex: 0, Weight: -1}},
	}
	_, rows := runPasses(t, []*domain.BindingConstraint{bc}, horizon)
	assert.Equal(t, 1, rows.Len())
}

func TestBuild_Daily_OneRowPerDay(t *testing.T) {
	const horizon = 72
	bc := &domain.BindingConstraint{
		Name:  "daily-cap",
		Sense: domain.BindingLessEqual,
		Scope: domain.ScopeDaily,
		RHS:   []float64{1, 2, 3},
		Terms: []domain.BindingTerm{{InterconnectionIndex: 0, ThermalClusterIndex: -1, Weight: 1}},
	}
	_, rows := runPasses(t, []*domain.BindingConstraint{bc}, horizon)
	assert.Equal(t, 3, rows.Len())
}

func TestBuild_HourlyOffsetWrapsAtBoundary(t *testing.T) {
	const horizon = 5
	bc := &domain.BindingConstraint{
		Name:  "lagged",
		Sense: domain.BindingEqual,
		Scope: domain.ScopeHourly,
		RHS:   make([]float64, horizon),
		Terms: []domain.BindingTerm{
			{InterconnectionIndex: 0, ThermalClusterIndex: -1, Weight: 1, TimeOffset: -1},
		},
	}
	matrix, rows := runPasses(t, []*domain.BindingConstraint{bc}, horizon)
	assert.Equal(t, horizon, rows.Len())
	// every hour's term wraps instead of dropping, so every row carries the
	// interconnection's two flow columns (direct and indirect), including
	// t=0 (offset -1 -> wraps to horizon-1).
	for h := 0; h < horizon; h++ {
		assert.Equal(t, matrix.RowStart[h]+2, matrix.RowStart[h+1])
	}
}
