package hydro_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/adequacy-core/internal/domain"
	"github.com/aristath/adequacy-core/internal/groups/hydro"
	"github.com/aristath/adequacy-core/internal/indexmaps"
	"github.com/aristath/adequacy-core/internal/lpmatrix"
)

func sampleAreas(mode domain.WaterValueMode) []*domain.Area {
	return []*domain.Area{{
		GlobalIndex: 0,
		Name:        "alps",
		HydroReservoir: &domain.HydroReservoir{
			Area:            "alps",
			CapacityMWh:     1000,
			InitialLevelMWh: 500,
			PumpingRatio:    0.75,
			WaterValueMode:  mode,
		},
	}}
}

func runPasses(t *testing.T, areas []*domain.Area, horizon int) (*lpmatrix.Matrix, *indexmaps.Table, *indexmaps.Table) {
	t.Helper()
	cols := indexmaps.NewSizingTable()
	rows := indexmaps.NewSizingTable()
	matrix := lpmatrix.New()

	sb := lpmatrix.NewSizingBuilder(matrix)
	hydro.Build(sb, cols, rows, areas, horizon)

	matrix.SetColumnCount(cols.Len())
	matrix.Freeze()
	cols.Freeze()
	rows.Freeze()

	eb := lpmatrix.NewEmitBuilder(matrix)
	require.NotPanics(t, func() {
		hydro.Build(eb, cols, rows, areas, horizon)
	})
	return matrix, cols, rows
}

func TestBuild_SimpleMode_RowCount(t *testing.T) {
	const horizon = 48
	areas := sampleAreas(domain.WaterValueSimple)
	matrix, _, rows := runPasses(t, areas, horizon)

	// 1 weekly budget + 2 daily budgets + per-hour (pmax, pmin, pmax_pump, level).
	expected := 1 + 2 + horizon*4
	assert.Equal(t, expected, rows.Len())
	assert.Equal(t, expected, matrix.NRows)
}

func TestBuild_AccurateMode_AddsFinalValueSlices(t *testing.T) {
	const horizon = 24
	areas := sampleAreas(domain.WaterValueAccurate)
	matrix, _, rows := runPasses(t, areas, horizon)

	base := 1 + 1 + horizon*4
	assert.Equal(t, base+hydro.FinalValueSlices, rows.Len())
	assert.Equal(t, base+hydro.FinalValueSlices, matrix.NRows)
}

func TestBuild_NoReservoirSkipsArea(t *testing.T) {
	areas := []*domain.Area{{Name: "thermal-only"}}
	_, _, rows := runPasses(t, areas, 24)
	assert.Equal(t, 0, rows.Len())
}
