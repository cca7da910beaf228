package assemble

import (
	"github.com/aristath/adequacy-core/internal/domain"
	"github.com/aristath/adequacy-core/internal/groups/reserve"
	"github.com/aristath/adequacy-core/internal/indexmaps"
	"github.com/aristath/adequacy-core/internal/lpmatrix"
	"github.com/aristath/adequacy-core/internal/varkind"
)

// RHS sets the right-hand side of every row a constraint group registered,
// including the constant terms (initial unit counts, initial reservoir
// levels, availability ceilings) that groups fold out of the matrix
// because they're not variables.
func RHS(m *lpmatrix.Matrix, rows *indexmaps.Table, areas []*domain.Area, binding []*domain.BindingConstraint, horizon int) {
	for _, area := range areas {
		rhsThermal(m, rows, area, horizon)
		rhsHydro(m, rows, area, horizon)
		rhsSTStorage(m, rows, area, horizon)
		rhsReserve(m, rows, area, horizon)
		rhsBalance(m, rows, area, horizon)
	}
	rhsBinding(m, rows, binding, horizon)
}

func rhsBalance(m *lpmatrix.Matrix, rows *indexmaps.Table, area *domain.Area, horizon int) {
	for t := 0; t < horizon; t++ {
		setRHSWithResult(m, rows, indexmaps.Key{Kind: varkind.RowAreaBalance, EntityID: area.GlobalIndex, Timestep: t}, valueAt(area.Demand, t, 0),
			func(v float64) { area.Result.MarginalPrice[t] = v })
	}
}

func setRHS(m *lpmatrix.Matrix, rows *indexmaps.Table, key indexmaps.Key, value float64) {
	idx := rows.Get(key)
	if idx == indexmaps.Unset {
		return
	}
	m.RHS[idx] = value
}

// setRHSWithResult is setRHS plus registering bp as the row's back-pointer
// (spec §4.5: "the back-pointer where marginal prices ... should be
// written"), called by Matrix.WriteBack with the row's dual value.
func setRHSWithResult(m *lpmatrix.Matrix, rows *indexmaps.Table, key indexmaps.Key, value float64, bp lpmatrix.BackPointer) {
	idx := rows.Get(key)
	if idx == indexmaps.Unset {
		return
	}
	m.RHS[idx] = value
	m.RowBackPointers[idx] = bp
}

func rhsThermal(m *lpmatrix.Matrix, rows *indexmaps.Table, area *domain.Area, horizon int) {
	for _, c := range area.ThermalClusters {
		id := c.GlobalIndex
		// unit-count consistency at t=0 carries N(-1) = InitialUnitsOn.
		setRHS(m, rows, indexmaps.Key{Kind: varkind.RowThermalUnitCount, EntityID: id, Timestep: 0}, c.InitialUnitsOn)

		for t := 0; t < horizon; t++ {
			nmax := 0.0
			if t < len(c.AvailableUnits) {
				nmax = c.AvailableUnits[t]
			}
			// min-down row reads -N(t) - sum A(tau) >= -Nmax(t).
			setRHS(m, rows, indexmaps.Key{Kind: varkind.RowThermalMinDown, EntityID: id, Timestep: t}, -nmax)
		}
	}
}

func rhsHydro(m *lpmatrix.Matrix, rows *indexmaps.Table, area *domain.Area, horizon int) {
	r := area.HydroReservoir
	if r == nil {
		return
	}
	id := area.GlobalIndex

	weeklyBudget := 0.0
	for t := 0; t < horizon; t++ {
		weeklyBudget += valueAt(r.InflowMWh, t, 0)
	}
	setRHS(m, rows, indexmaps.Key{Kind: varkind.RowHydroWeeklyBudget, EntityID: id, Timestep: 0}, weeklyBudget)

	for day := 0; day*24 < horizon; day++ {
		start, end := day*24, day*24+24
		if end > horizon {
			break
		}
		dailyBudget := 0.0
		for t := start; t < end; t++ {
			dailyBudget += valueAt(r.InflowMWh, t, 0)
		}
		setRHS(m, rows, indexmaps.Key{Kind: varkind.RowHydroDailyBudget, EntityID: id, Timestep: day}, dailyBudget)
	}

	// level recursion at t=0 carries L(-1) = InitialLevelMWh on the RHS;
	// every other hour's RHS is the raw inflow the group's row already
	// expects (inflow(t) on the right, level/turbine/pump/overflow terms
	// on the left).
	for t := 0; t < horizon; t++ {
		inflow := valueAt(r.InflowMWh, t, 0)
		if t == 0 {
			inflow += r.InitialLevelMWh
		}
		setRHS(m, rows, indexmaps.Key{Kind: varkind.RowHydroLevel, EntityID: id, Timestep: t}, inflow)

		// Per-hour turbine/pump limits. With no Pmax series the weekly
		// budget, which already caps every hour's turbining, stands in so
		// the RHS stays finite.
		setRHS(m, rows, indexmaps.Key{Kind: varkind.RowHydroPmaxTurbine, EntityID: id, Timestep: t}, valueAt(r.PmaxTurbineMW, t, weeklyBudget))
		setRHS(m, rows, indexmaps.Key{Kind: varkind.RowHydroPminTurbine, EntityID: id, Timestep: t}, valueAt(r.MinGeneration, t, 0))
		setRHS(m, rows, indexmaps.Key{Kind: varkind.RowHydroPmaxPump, EntityID: id, Timestep: t}, valueAt(r.PmaxPumpMW, t, 0))
	}
}

func rhsSTStorage(m *lpmatrix.Matrix, rows *indexmaps.Table, area *domain.Area, horizon int) {
	for _, c := range area.STStorageClusters {
		id := c.GlobalIndex
		setRHS(m, rows, indexmaps.Key{Kind: varkind.RowSTSLevel, EntityID: id, Timestep: 0}, c.InitialLevelMWh)

		for t := 0; t < horizon; t++ {
			setRHS(m, rows, indexmaps.Key{Kind: varkind.RowSTSInjectionCap, EntityID: id, Timestep: t}, c.InjectionNominalMW*valueAt(c.ModulationInjection, t, 1))
			setRHS(m, rows, indexmaps.Key{Kind: varkind.RowSTSWithdrawalCap, EntityID: id, Timestep: t}, c.WithdrawalNominalMW*valueAt(c.ModulationWithdrawal, t, 1))
		}

		for gi, block := range c.AdditionalConstraints {
			for groupIdx := range block.Groups {
				rhs := 0.0
				if groupIdx < len(block.RHS) {
					rhs = block.RHS[groupIdx]
				}
				setRHS(m, rows, indexmaps.Key{Kind: varkind.RowSTSAdditional, EntityID: id, Timestep: gi*1000 + groupIdx}, rhs)
			}
		}
	}
}

func rhsReserve(m *lpmatrix.Matrix, rows *indexmaps.Table, area *domain.Area, horizon int) {
	clusterByIndex := make(map[int]*domain.ThermalCluster, len(area.ThermalClusters))
	for _, c := range area.ThermalClusters {
		clusterByIndex[c.GlobalIndex] = c
	}
	stsByIndex := make(map[int]*domain.ShortTermStorageCluster, len(area.STStorageClusters))
	for _, c := range area.STStorageClusters {
		stsByIndex[c.GlobalIndex] = c
	}
	for _, res := range area.ReserveUp {
		rhsReservation(m, rows, res, domain.ReserveUp, clusterByIndex, stsByIndex, area.HydroReservoir, horizon)
	}
	for _, res := range area.ReserveDown {
		rhsReservation(m, rows, res, domain.ReserveDown, clusterByIndex, stsByIndex, area.HydroReservoir, horizon)
	}
}

// stockLevelHeadroom returns the [lower, upper] rule-curve bound a storage
// reserve participant's level column is held within: the short-term
// storage cluster's own [0, capacity] range, or the owning area's hydro
// reservoir rule curve at t for long-term storage.
func stockLevelHeadroom(p *domain.ReserveParticipation, stsByIndex map[int]*domain.ShortTermStorageCluster, hydro *domain.HydroReservoir, t int) (lower, upper float64) {
	switch p.ClusterKind {
	case domain.ClusterSTStorage:
		if c, ok := stsByIndex[p.StorageClusterIndex]; ok {
			return 0, c.ReservoirCapacityMWh
		}
	case domain.ClusterLTStorage:
		if hydro != nil {
			return valueAt(hydro.RuleCurveLower, t, 0), valueAt(hydro.RuleCurveUpper, t, hydro.CapacityMWh)
		}
	}
	return 0, 0
}

func rhsReservation(m *lpmatrix.Matrix, rows *indexmaps.Table, res *domain.CapacityReservation, dir domain.ReserveDirection,
	clusterByIndex map[int]*domain.ThermalCluster, stsByIndex map[int]*domain.ShortTermStorageCluster, hydro *domain.HydroReservoir, horizon int) {
	resID := reserve.ReservationID(res, dir)
	var totalNeed float64
	for t := 0; t < horizon; t++ {
		need := valueAt(res.Need, t, 0)
		totalNeed += need
		setRHSWithResult(m, rows, indexmaps.Key{Kind: varkind.RowReserveNeed, EntityID: resID, Timestep: t}, need,
			func(v float64) { res.Result.MarginalPrice[t] = v })
	}
	if res.MaxEnergyActivationRatio > 0 {
		setRHS(m, rows, indexmaps.Key{Kind: varkind.RowReserveGlobalStock, EntityID: resID, Timestep: 0}, totalNeed*res.MaxEnergyActivationRatio)
	}

	// Stock-level window RHS (spec §4.4): discharging (up) is bounded by
	// how far the level can fall towards the rule curve's lower bound;
	// charging (down) by how far it can rise towards the upper bound. With
	// no energy-activation-ratio coupling to the level column, fall back to
	// the reservoir's full swing (upper-lower) as the window's budget.
	if res.MaxActivationDurationHours > 0 {
		window := res.MaxActivationDurationHours
		storageParticipants := append(append([]*domain.ReserveParticipation{}, res.STStorageParticipants...), res.LTStorageParticipants...)
		for _, p := range storageParticipants {
			for start := 0; start+window <= horizon; start++ {
				lower, upper := stockLevelHeadroom(p, stsByIndex, hydro, start)
				var rhs float64
				switch {
				case res.MaxEnergyActivationRatio > 0 && dir == domain.ReserveUp:
					rhs = -lower
				case res.MaxEnergyActivationRatio > 0:
					rhs = upper
				default:
					rhs = upper - lower
				}
				setRHS(m, rows, indexmaps.Key{Kind: varkind.RowReserveStockLevel, EntityID: p.GlobalIndex, Timestep: start}, rhs)
			}
		}
	}

	// Max-off row RHS: MaxPowerOffMW*Nmax(t), the off-unit participation
	// ceiling scaled by how many units could possibly be available to
	// stand idle (opt_gestion_second_membre_reserves.cpp's
	// nbOffGroupUnitsParticipatingToReservesInThermalClusterConstraintIndex,
	// whose RHS is the cluster's max-running-units series). RowReserveMaxOn
	// and RowReserveComposition default to RHS 0, already correct.
	for _, p := range res.ThermalParticipants {
		if !reserve.ThermalOffParticipating(p, dir) {
			continue
		}
		c := clusterByIndex[p.ThermalClusterIndex]
		for t := 0; t < horizon; t++ {
			nmax := 0.0
			if c != nil && t < len(c.AvailableUnits) {
				nmax = c.AvailableUnits[t]
			}
			setRHS(m, rows, indexmaps.Key{Kind: varkind.RowReserveMaxOff, EntityID: p.GlobalIndex, Timestep: t}, p.MaxPowerOffMW*nmax)
		}
	}
}

func rhsBinding(m *lpmatrix.Matrix, rows *indexmaps.Table, constraints []*domain.BindingConstraint, horizon int) {
	for bcIdx, bc := range constraints {
		switch bc.Scope {
		case domain.ScopeHourly:
			for t := 0; t < horizon; t++ {
				setRHSWithResult(m, rows, indexmaps.Key{Kind: varkind.RowBinding, EntityID: bcIdx, Timestep: t}, valueAt(bc.RHS, t, 0),
					func(v float64) { bc.Result.MarginalPrice[t] = v })
			}
		case domain.ScopeDaily:
			for day := 0; day*24 < horizon; day++ {
				setRHSWithResult(m, rows, indexmaps.Key{Kind: varkind.RowBinding, EntityID: bcIdx, Timestep: day}, valueAt(bc.RHS, day, 0),
					func(v float64) { bc.Result.MarginalPrice[day] = v })
			}
		case domain.ScopeWeekly:
			setRHSWithResult(m, rows, indexmaps.Key{Kind: varkind.RowBinding, EntityID: bcIdx, Timestep: 0}, valueAt(bc.RHS, 0, 0),
				func(v float64) { bc.Result.MarginalPrice[0] = v })
		}
	}
}
