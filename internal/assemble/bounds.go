// Package assemble fills in a frozen Matrix's bounds, costs, RHS values and
// back-pointers once the sizing pass has reserved every column and row
// (spec §4.5 "VariableBoundsSetter / CostAssembler / RhsAssembler"). Unlike
// the constraint groups, these walkers don't need to agree on row/column
// counts between passes — they only run once, against an already-frozen
// Matrix, using the same indexmaps.Table to resolve the exact slot a
// constraint group reserved earlier.
package assemble

import (
	"math"

	"github.com/aristath/adequacy-core/internal/domain"
	"github.com/aristath/adequacy-core/internal/groups/reserve"
	"github.com/aristath/adequacy-core/internal/indexmaps"
	"github.com/aristath/adequacy-core/internal/lpmatrix"
	"github.com/aristath/adequacy-core/internal/varkind"
)

// Bounds sets XMin/XMax/IsInteger for every column a constraint group
// registered, plus the back-pointer used to write the solved value into
// the matching domain result slot when the caller supplies one.
func Bounds(m *lpmatrix.Matrix, cols *indexmaps.Table, areas []*domain.Area, interconnections []*domain.Interconnection, horizon int, integer bool) {
	for _, area := range areas {
		boundsThermal(m, cols, area, horizon, integer)
		boundsHydro(m, cols, area, horizon)
		boundsSTStorage(m, cols, area, horizon)
		boundsArea(m, cols, area, horizon)
	}
	for i, link := range interconnections {
		boundsInterconnection(m, cols, i, link, horizon)
	}
}

func setBound(m *lpmatrix.Matrix, cols *indexmaps.Table, key indexmaps.Key, lo, hi float64) {
	idx := cols.Get(key)
	if idx == indexmaps.Unset {
		return
	}
	m.XMin[idx] = lo
	m.XMax[idx] = hi
}

// setBoundWithResult is setBound plus registering bp as the column's
// back-pointer (spec §4.5: "a back-pointer where each optimized value
// should be written into result structures"). bp is called with the
// solved value by Matrix.WriteBack after each solve.
func setBoundWithResult(m *lpmatrix.Matrix, cols *indexmaps.Table, key indexmaps.Key, lo, hi float64, bp lpmatrix.BackPointer) {
	idx := cols.Get(key)
	if idx == indexmaps.Unset {
		return
	}
	m.XMin[idx] = lo
	m.XMax[idx] = hi
	m.ColBackPointers[idx] = bp
}

func setInteger(m *lpmatrix.Matrix, cols *indexmaps.Table, key indexmaps.Key, integer bool) {
	idx := cols.Get(key)
	if idx == indexmaps.Unset {
		return
	}
	m.IsInteger[idx] = integer
}

func boundsThermal(m *lpmatrix.Matrix, cols *indexmaps.Table, area *domain.Area, horizon int, integer bool) {
	for _, c := range area.ThermalClusters {
		id := c.GlobalIndex
		for t := 0; t < horizon; t++ {
			nmax := 0.0
			if t < len(c.AvailableUnits) {
				nmax = c.AvailableUnits[t]
			}
			setBoundWithResult(m, cols, indexmaps.Key{Kind: varkind.ColThermalPower, EntityID: id, Timestep: t}, 0, math.Inf(1),
				func(v float64) { c.Result.Power[t] = v })
			setBoundWithResult(m, cols, indexmaps.Key{Kind: varkind.ColThermalUnitsOn, EntityID: id, Timestep: t}, 0, nmax,
				func(v float64) { c.Result.UnitsOn[t] = v })
			setBound(m, cols, indexmaps.Key{Kind: varkind.ColThermalStarted, EntityID: id, Timestep: t}, 0, nmax)
			setBound(m, cols, indexmaps.Key{Kind: varkind.ColThermalStopped, EntityID: id, Timestep: t}, 0, nmax)
			setBound(m, cols, indexmaps.Key{Kind: varkind.ColThermalFellOut, EntityID: id, Timestep: t}, 0, nmax)

			if integer {
				setInteger(m, cols, indexmaps.Key{Kind: varkind.ColThermalUnitsOn, EntityID: id, Timestep: t}, true)
				setInteger(m, cols, indexmaps.Key{Kind: varkind.ColThermalStarted, EntityID: id, Timestep: t}, true)
				setInteger(m, cols, indexmaps.Key{Kind: varkind.ColThermalStopped, EntityID: id, Timestep: t}, true)
			}
		}
	}
}

func boundsHydro(m *lpmatrix.Matrix, cols *indexmaps.Table, area *domain.Area, horizon int) {
	r := area.HydroReservoir
	if r == nil {
		return
	}
	id := area.GlobalIndex
	for t := 0; t < horizon; t++ {
		pmaxTurbine := valueAt(r.PmaxTurbineMW, t, math.Inf(1))
		pmaxPump := valueAt(r.PmaxPumpMW, t, 0)
		minGen := valueAt(r.MinGeneration, t, 0)
		lower := valueAt(r.RuleCurveLower, t, 0)
		upper := valueAt(r.RuleCurveUpper, t, r.CapacityMWh)

		setBoundWithResult(m, cols, indexmaps.Key{Kind: varkind.ColHydroTurbine, EntityID: id, Timestep: t}, minGen, pmaxTurbine,
			func(v float64) { r.Result.Turbine[t] = v })
		setBoundWithResult(m, cols, indexmaps.Key{Kind: varkind.ColHydroPump, EntityID: id, Timestep: t}, 0, pmaxPump,
			func(v float64) { r.Result.Pump[t] = v })
		setBoundWithResult(m, cols, indexmaps.Key{Kind: varkind.ColHydroLevel, EntityID: id, Timestep: t}, lower, upper,
			func(v float64) { r.Result.Level[t] = v })
		setBoundWithResult(m, cols, indexmaps.Key{Kind: varkind.ColHydroOverflow, EntityID: id, Timestep: t}, 0, math.Inf(1),
			func(v float64) { r.Result.Overflow[t] = v })
	}
}

func boundsSTStorage(m *lpmatrix.Matrix, cols *indexmaps.Table, area *domain.Area, horizon int) {
	for _, c := range area.STStorageClusters {
		id := c.GlobalIndex
		for t := 0; t < horizon; t++ {
			injCap := c.InjectionNominalMW * valueAt(c.ModulationInjection, t, 1)
			wdrCap := c.WithdrawalNominalMW * valueAt(c.ModulationWithdrawal, t, 1)
			setBoundWithResult(m, cols, indexmaps.Key{Kind: varkind.ColSTSInjection, EntityID: id, Timestep: t}, 0, injCap,
				func(v float64) { c.Result.Injection[t] = v })
			setBoundWithResult(m, cols, indexmaps.Key{Kind: varkind.ColSTSWithdraw, EntityID: id, Timestep: t}, 0, wdrCap,
				func(v float64) { c.Result.Withdrawal[t] = v })
			setBoundWithResult(m, cols, indexmaps.Key{Kind: varkind.ColSTSLevel, EntityID: id, Timestep: t}, 0, c.ReservoirCapacityMWh,
				func(v float64) { c.Result.Level[t] = v })
		}
	}
}

func boundsArea(m *lpmatrix.Matrix, cols *indexmaps.Table, area *domain.Area, horizon int) {
	id := area.GlobalIndex
	for t := 0; t < horizon; t++ {
		setBoundWithResult(m, cols, indexmaps.Key{Kind: varkind.ColAreaShortage, EntityID: id, Timestep: t}, 0, math.Inf(1),
			func(v float64) { area.Result.Shortage[t] = v })
		setBoundWithResult(m, cols, indexmaps.Key{Kind: varkind.ColAreaSpillage, EntityID: id, Timestep: t}, 0, math.Inf(1),
			func(v float64) { area.Result.Spillage[t] = v })
	}

	for _, res := range area.ReserveUp {
		boundsReservation(m, cols, res, domain.ReserveUp, horizon)
	}
	for _, res := range area.ReserveDown {
		boundsReservation(m, cols, res, domain.ReserveDown, horizon)
	}
}

func boundsReservation(m *lpmatrix.Matrix, cols *indexmaps.Table, res *domain.CapacityReservation, dir domain.ReserveDirection, horizon int) {
	resID := reserve.ReservationID(res, dir)
	for t := 0; t < horizon; t++ {
		setBoundWithResult(m, cols, indexmaps.Key{Kind: varkind.ColReserveShortage, EntityID: resID, Timestep: t}, 0, math.Inf(1),
			func(v float64) { res.Result.Shortage[t] = v })
		setBoundWithResult(m, cols, indexmaps.Key{Kind: varkind.ColReserveExcess, EntityID: resID, Timestep: t}, 0, math.Inf(1),
			func(v float64) { res.Result.Excess[t] = v })
	}
	for _, p := range res.ThermalParticipants {
		for t := 0; t < horizon; t++ {
			// P_on/P_off/P are all left open above 0; the actual ceiling is
			// enforced by the max-on/max-off rows coupling them to N(t),
			// not by a flat column bound (opt_gestion_des_bornes_reserves.cpp
			// sets Xmax=+inf on these three variables themselves).
			setBound(m, cols, indexmaps.Key{Kind: varkind.ColReserveThermalOn, EntityID: p.GlobalIndex, Timestep: t}, 0, math.Inf(1))
			setBound(m, cols, indexmaps.Key{Kind: varkind.ColReserveThermalTotal, EntityID: p.GlobalIndex, Timestep: t}, 0, math.Inf(1))
			if reserve.ThermalOffParticipating(p, dir) {
				setBound(m, cols, indexmaps.Key{Kind: varkind.ColReserveThermalOff, EntityID: p.GlobalIndex, Timestep: t}, 0, math.Inf(1))
			}
		}
	}
	ratio := res.MaxActivationRatio
	if ratio <= 0 {
		ratio = 1
	}
	for _, p := range res.STStorageParticipants {
		max := p.MaxTurbiningMW
		if dir == domain.ReserveDown {
			max = p.MaxPumpingMW
		}
		for t := 0; t < horizon; t++ {
			setBound(m, cols, indexmaps.Key{Kind: varkind.ColReserveSTStorage, EntityID: p.GlobalIndex, Timestep: t}, 0, max*ratio)
		}
	}
	for _, p := range res.LTStorageParticipants {
		max := p.MaxTurbiningMW
		if dir == domain.ReserveDown {
			max = p.MaxPumpingMW
		}
		for t := 0; t < horizon; t++ {
			setBound(m, cols, indexmaps.Key{Kind: varkind.ColReserveLTStorage, EntityID: p.GlobalIndex, Timestep: t}, 0, max*ratio)
		}
	}
}

func boundsInterconnection(m *lpmatrix.Matrix, cols *indexmaps.Table, idx int, link *domain.Interconnection, horizon int) {
	for t := 0; t < horizon; t++ {
		ntcDirect := valueAt(link.NTCDirect, t, math.Inf(1))
		ntcIndirect := valueAt(link.NTCIndirect, t, math.Inf(1))
		setBoundWithResult(m, cols, indexmaps.Key{Kind: varkind.ColInterconnectionFlowDirect, EntityID: idx, Timestep: t}, 0, ntcDirect,
			func(v float64) { link.Result.FlowDirect[t] = v })
		setBoundWithResult(m, cols, indexmaps.Key{Kind: varkind.ColInterconnectionFlowIndirect, EntityID: idx, Timestep: t}, 0, ntcIndirect,
			func(v float64) { link.Result.FlowIndirect[t] = v })
	}
}

func valueAt(series []float64, t int, fallback float64) float64 {
	if t < len(series) {
		return series[t]
	}
	return fallback
}
