package ststorage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/adequacy-core/internal/domain"
	"github.com/aristath/adequacy-core/internal/groups/ststorage"
	"github.com/aristath/adequacy-core/internal/indexmaps"
	"github.com/aristath/adequacy-core/internal/lpmatrix"
)

func runPasses(t *testing.T, areas []*domain.Area, horizon int) (*lpmatrix.Matrix, *indexmaps.Table) {
	t.Helper()
	cols := indexmaps.NewSizingTable()
	rows := indexmaps.NewSizingTable()
	matrix := lpmatrix.New()

	sb := lpmatrix.NewSizingBuilder(matrix)
	ststorage.Build(sb, cols, rows, areas, horizon)

	matrix.SetColumnCount(cols.Len())
	matrix.Freeze()
	cols.Freeze()
	rows.Freeze()

	eb := lpmatrix.NewEmitBuilder(matrix)
	require.NotPanics(t, func() {
		ststorage.Build(eb, cols, rows, areas, horizon)
	})
	return matrix, rows
}

func TestBuild_BaseRowCount(t *testing.T) {
	const horizon = 24
	cluster := &domain.ShortTermStorageCluster{
		Name:                 "battery1",
		GlobalIndex:          0,
		InjectionEfficiency:  0.9,
		WithdrawalEfficiency: 0.9,
	}
	areas := []*domain.Area{{Name: "north", STStorageClusters: []*domain.ShortTermStorageCluster{cluster}}}

	matrix, rows := runPasses(t, areas, horizon)

	assert.Equal(t, horizon*3, rows.Len())
	assert.Equal(t, horizon*3, matrix.NRows)
}

func TestBuild_AdditionalConstraintsAddRows(t *testing.T) {
	const horizon = 24
	cluster := &domain.ShortTermStorageCluster{
		Name:                 "battery1",
		GlobalIndex:          0,
		InjectionEfficiency:  0.9,
		WithdrawalEfficiency: 0.9,
		AdditionalConstraints: []domain.AdditionalConstraintsBlock{
			{
				Name:      "peak-netting",
				ClusterID: "battery1",
				Variable:  domain.VariableNetting,
				Operator:  domain.OperatorLess,
				Groups: []domain.HourGroup{
					{Hours: []int{1, 2, 3}},
					{Hours: []int{4, 5, 6}},
				},
				RHS: []float64{10, 10},
			},
		},
	}
	areas := []*domain.Area{{Name: "north", STStorageClusters: []*domain.ShortTermStorageCluster{cluster}}}

	matrix, rows := runPasses(t, areas, horizon)

	assert.Equal(t, horizon*3+2, rows.Len())
	assert.Equal(t, horizon*3+2, matrix.NRows)
}

func TestBuild_ZeroWithdrawalEfficiencyDoesNotPanic(t *testing.T) {
	cluster := &domain.ShortTermStorageCluster{Name: "degenerate", GlobalIndex: 0}
	areas := []*domain.Area{{Name: "north", STStorageClusters: []*domain.ShortTermStorageCluster{cluster}}}
	assert.NotPanics(t, func() {
		runPasses(t, areas, 4)
	})
}
