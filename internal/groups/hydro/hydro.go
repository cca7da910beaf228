// Package hydro assembles the hydro reservoir constraint family (spec
// §4.5): weekly/daily energy budget bounds, per-hour turbine/pump caps, the
// level trajectory recursion, rule-curve level bounds and, in accurate
// water-value mode, the piecewise final-level expression.
package hydro

import (
	"github.com/aristath/adequacy-core/internal/domain"
	"github.com/aristath/adequacy-core/internal/indexmaps"
	"github.com/aristath/adequacy-core/internal/lpmatrix"
	"github.com/aristath/adequacy-core/internal/varkind"
)

// FinalValueSlices is the number of piecewise-linear segments used to
// approximate the end-of-horizon water value in accurate mode (spec §4.5).
const FinalValueSlices = 100

// Build walks every area with a hydro reservoir and every timestep in
// [0,horizon), appending rows to b.
func Build(b *lpmatrix.Builder, cols, rows *indexmaps.Table, areas []*domain.Area, horizon int) {
	for _, area := range areas {
		if area.HydroReservoir == nil {
			continue
		}
		buildReservoir(b, cols, rows, area.GlobalIndex, area.HydroReservoir, horizon)
	}
}

func buildReservoir(b *lpmatrix.Builder, cols, rows *indexmaps.Table, id int, r *domain.HydroReservoir, horizon int) {
	turbine := func(t int) indexmaps.Key { return indexmaps.Key{Kind: varkind.ColHydroTurbine, EntityID: id, Timestep: t} }
	pump := func(t int) indexmaps.Key { return indexmaps.Key{Kind: varkind.ColHydroPump, EntityID: id, Timestep: t} }
	level := func(t int) indexmaps.Key { return indexmaps.Key{Kind: varkind.ColHydroLevel, EntityID: id, Timestep: t} }
	overflow := func(t int) indexmaps.Key { return indexmaps.Key{Kind: varkind.ColHydroOverflow, EntityID: id, Timestep: t} }

	// Weekly energy budget: sum_t H(t) <= weekly inflow budget (RHS supplied
	// by the assembler from sum of InflowMWh). A single row covering the
	// whole horizon.
	for t := 0; t < horizon; t++ {
		b.SetHour(t)
		b.TermAt(cols, turbine(t), 1)
	}
	rows.Index(indexmaps.Key{Kind: varkind.RowHydroWeeklyBudget, EntityID: id, Timestep: 0})
	b.LessThan()

	// Daily energy budgets, one row per 24h block fully contained in the
	// horizon.
	for day := 0; day*24 < horizon; day++ {
		start := day * 24
		end := start + 24
		if end > horizon {
			break
		}
		for t := start; t < end; t++ {
			b.SetHour(t)
			b.TermAt(cols, turbine(t), 1)
		}
		rows.Index(indexmaps.Key{Kind: varkind.RowHydroDailyBudget, EntityID: id, Timestep: day})
		b.LessThan()
	}

	for t := 0; t < horizon; t++ {
		b.SetHour(t)

		// H(t) <= Pmax_turbine(t)
		b.TermAt(cols, turbine(t), 1)
		rows.Index(indexmaps.Key{Kind: varkind.RowHydroPmaxTurbine, EntityID: id, Timestep: t})
		b.LessThan()

		// H(t) >= MinGeneration(t)
		b.TermAt(cols, turbine(t), 1)
		rows.Index(indexmaps.Key{Kind: varkind.RowHydroPminTurbine, EntityID: id, Timestep: t})
		b.GreaterThan()

		// pump(t) <= Pmax_pump(t)
		b.TermAt(cols, pump(t), 1)
		rows.Index(indexmaps.Key{Kind: varkind.RowHydroPmaxPump, EntityID: id, Timestep: t})
		b.LessThan()

		// L(t) - L(t-1) + H(t) - pump(t)*ratio + overflow(t) = inflow(t).
		// L(-1) is the constant InitialLevelMWh, folded into RHS by the
		// assembler using the same row key.
		b.TermAt(cols, level(t), 1)
		if t > 0 {
			b.TermAt(cols, level(t-1), -1)
		}
		b.TermAt(cols, turbine(t), 1).TermAt(cols, pump(t), -r.PumpingRatio).TermAt(cols, overflow(t), 1)
		rows.Index(indexmaps.Key{Kind: varkind.RowHydroLevel, EntityID: id, Timestep: t})
		b.EqualTo()

		// RuleCurveLower(t) <= L(t) <= RuleCurveUpper(t) is expressed as
		// bounds on the level column itself by the assembler, not a row
		// here — levels are plain bounded variables.
	}

	if r.WaterValueMode == domain.WaterValueAccurate {
		// Piecewise final-level value: FinalValueSlices rows, each bounding
		// a slice of the end-of-horizon level against a segment of the
		// water-value curve. The segment breakpoints/slopes are supplied by
		// the assembler (cost/RHS only); here we just reserve the rows so
		// column/row numbering stays deterministic between passes.
		for slice := 0; slice < FinalValueSlices; slice++ {
			b.SetHour(horizon - 1)
			b.TermAt(cols, level(horizon-1), 1)
			rows.Index(indexmaps.Key{Kind: varkind.RowHydroFinalValue, EntityID: id, Timestep: slice})
			b.LessThan()
		}
	}
}
