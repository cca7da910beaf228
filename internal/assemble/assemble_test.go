package assemble_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/adequacy-core/internal/assemble"
	"github.com/aristath/adequacy-core/internal/domain"
	"github.com/aristath/adequacy-core/internal/groups/balance"
	"github.com/aristath/adequacy-core/internal/groups/hydro"
	"github.com/aristath/adequacy-core/internal/groups/reserve"
	"github.com/aristath/adequacy-core/internal/groups/thermal"
	"github.com/aristath/adequacy-core/internal/indexmaps"
	"github.com/aristath/adequacy-core/internal/lpmatrix"
)

func buildStudy() ([]*domain.Area, []*domain.Interconnection) {
	cluster := &domain.ThermalCluster{
		Area:               "north",
		Name:               "ccgt1",
		MinStablePowerMW:   10,
		NominalCapacityMW:  100,
		MarginalCostPerMWh: 40,
		StartupCost:        500,
		AvailableUnits:     []float64{2, 2, 2, 2},
		InitialUnitsOn:     1,
		GlobalIndex:        0,
	}
	area := &domain.Area{
		GlobalIndex:        0,
		Name:               "north",
		Demand:             []float64{80, 90, 100, 70},
		ShortageCostPerMWh: 3000,
		SurplusCostPerMWh:  1,
		ThermalClusters:    []*domain.ThermalCluster{cluster},
		HydroReservoir: &domain.HydroReservoir{
			Area:            "north",
			CapacityMWh:     500,
			InitialLevelMWh: 200,
			InflowMWh:       []float64{10, 10, 10, 10},
			PumpingRatio:    0.8,
			PmaxTurbineMW:   []float64{50, 50, 50, 50},
		},
	}
	return []*domain.Area{area}, nil
}

func TestFullPipeline_SizingEmitAndFreezeAgree(t *testing.T) {
	const horizon = 4
	areas, links := buildStudy()

	cols := indexmaps.NewSizingTable()
	rows := indexmaps.NewSizingTable()
	matrix := lpmatrix.New()

	sb := lpmatrix.NewSizingBuilder(matrix)
	thermal.Build(sb, cols, rows, areas, horizon)
	hydro.Build(sb, cols, rows, areas, horizon)
	balance.Build(sb, cols, rows, areas, links, horizon)

	matrix.SetColumnCount(cols.Len())
	matrix.Freeze()
	cols.Freeze()
	rows.Freeze()

	eb := lpmatrix.NewEmitBuilder(matrix)
	require.NotPanics(t, func() {
		thermal.Build(eb, cols, rows, areas, horizon)
		hydro.Build(eb, cols, rows, areas, horizon)
		balance.Build(eb, cols, rows, areas, links, horizon)
	})

	assemble.Bounds(matrix, cols, areas, links, horizon, false)
	assemble.Costs(matrix, cols, areas, horizon)
	assemble.RHS(matrix, rows, areas, nil, horizon)

	assert.Equal(t, matrix.NNZ, matrix.RowStart[matrix.NRows])

	demandRow := rows.MustGet(indexmaps.Key{Kind: "area_balance", EntityID: 0, Timestep: 0})
	assert.Equal(t, areas[0].Demand[0], matrix.RHS[demandRow])

	pmaxCol := cols.MustGet(indexmaps.Key{Kind: "thermal_power", EntityID: 0, Timestep: 0})
	assert.True(t, math.IsInf(matrix.XMax[pmaxCol], 1))
}

func TestBackPointers_WriteBackReachesDomainResult(t *testing.T) {
	const horizon = 4
	areas, links := buildStudy()
	domain.EnsureResults(areas, links, nil, horizon)

	cols := indexmaps.NewSizingTable()
	rows := indexmaps.NewSizingTable()
	matrix := lpmatrix.New()

	sb := lpmatrix.NewSizingBuilder(matrix)
	thermal.Build(sb, cols, rows, areas, horizon)
	hydro.Build(sb, cols, rows, areas, horizon)
	balance.Build(sb, cols, rows, areas, links, horizon)

	matrix.SetColumnCount(cols.Len())
	matrix.Freeze()
	cols.Freeze()
	rows.Freeze()

	eb := lpmatrix.NewEmitBuilder(matrix)
	thermal.Build(eb, cols, rows, areas, horizon)
	hydro.Build(eb, cols, rows, areas, horizon)
	balance.Build(eb, cols, rows, areas, links, horizon)
	require.NoError(t, eb.Validate())

	assemble.Bounds(matrix, cols, areas, links, horizon, false)
	assemble.Costs(matrix, cols, areas, horizon)
	assemble.RHS(matrix, rows, areas, nil, horizon)

	primal := make([]float64, matrix.NCols)
	powerCol := cols.MustGet(indexmaps.Key{Kind: "thermal_power", EntityID: 0, Timestep: 2})
	primal[powerCol] = 42

	dual := make([]float64, matrix.NRows)
	balanceRow := rows.MustGet(indexmaps.Key{Kind: "area_balance", EntityID: 0, Timestep: 2})
	dual[balanceRow] = 7.5

	matrix.WriteBack(primal, dual)

	assert.Equal(t, 42.0, areas[0].ThermalClusters[0].Result.Power[2])
	assert.Equal(t, 7.5, areas[0].Result.MarginalPrice[2])
}

func TestBounds_ReserveParticipationScaledByActivationRatio(t *testing.T) {
	const horizon = 2
	sts := &domain.ReserveParticipation{ClusterName: "battery1", ClusterKind: domain.ClusterSTStorage, MaxTurbiningMW: 10, GlobalIndex: 0}
	res := &domain.CapacityReservation{
		Area:               "north",
		ReserveName:        "aFRR",
		MaxActivationRatio: 0.4,
		STStorageParticipants: []*domain.ReserveParticipation{sts},
	}
	areas := []*domain.Area{{GlobalIndex: 0, Name: "north", ReserveUp: []*domain.CapacityReservation{res}}}

	cols := indexmaps.NewSizingTable()
	matrix := lpmatrix.New()
	sb := lpmatrix.NewSizingBuilder(matrix)
	reserve.Build(sb, cols, indexmaps.NewSizingTable(), areas, horizon)
	matrix.SetColumnCount(cols.Len())
	matrix.Freeze()
	cols.Freeze()

	assemble.Bounds(matrix, cols, areas, nil, horizon, false)

	col := cols.MustGet(indexmaps.Key{Kind: "reserve_st_storage", EntityID: sts.GlobalIndex, Timestep: 0})
	// 10 MW capped at 40% activation ratio, not the raw 10 MW ceiling.
	assert.InDelta(t, 4.0, matrix.XMax[col], 1e-9)
}

func TestRHS_ReserveStockLevelWindowIsNotTriviallyZero(t *testing.T) {
	const horizon = 6
	sts := &domain.ReserveParticipation{ClusterName: "battery1", ClusterKind: domain.ClusterSTStorage, MaxTurbiningMW: 5, GlobalIndex: 0, StorageClusterIndex: 0}
	sc := &domain.ShortTermStorageCluster{Area: "north", Name: "battery1", GlobalIndex: 0, ReservoirCapacityMWh: 20}
	res := &domain.CapacityReservation{
		Area:                       "north",
		ReserveName:                "aFRR",
		MaxActivationDurationHours: 2,
		MaxEnergyActivationRatio:   0.5,
		STStorageParticipants:      []*domain.ReserveParticipation{sts},
	}
	areas := []*domain.Area{{
		GlobalIndex:       0,
		Name:              "north",
		STStorageClusters: []*domain.ShortTermStorageCluster{sc},
		ReserveDown:       []*domain.CapacityReservation{res},
	}}

	cols := indexmaps.NewSizingTable()
	rows := indexmaps.NewSizingTable()
	matrix := lpmatrix.New()
	sb := lpmatrix.NewSizingBuilder(matrix)
	reserve.Build(sb, cols, rows, areas, horizon)
	matrix.SetColumnCount(cols.Len())
	matrix.Freeze()
	cols.Freeze()
	rows.Freeze()

	eb := lpmatrix.NewEmitBuilder(matrix)
	reserve.Build(eb, cols, rows, areas, horizon)
	require.NoError(t, eb.Validate())

	assemble.RHS(matrix, rows, areas, nil, horizon)

	row := rows.MustGet(indexmaps.Key{Kind: "reserve_stock_level", EntityID: sts.GlobalIndex, Timestep: 0})
	// a reserve-down (charging) window row is bounded by the cluster's
	// headroom up to capacity; before this fix it stayed at the default
	// RHS of 0, which forced all storage reserve participation to zero
	// whenever an activation duration was configured.
	assert.Equal(t, 20.0, matrix.RHS[row])
}
