// Package thermal assembles the thermal unit-commitment constraint family
// (spec §4.4): power-vs-running-units coupling, unit-count consistency,
// outage-capacity bounding and the min-up/min-down time windows. Build is
// called once per pass with a sizing Builder+Table pair and once with an
// emit Builder+frozen Table pair; identical traversal order is what makes
// the two counts agree (spec §8).
package thermal

import (
	"github.com/aristath/adequacy-core/internal/domain"
	"github.com/aristath/adequacy-core/internal/indexmaps"
	"github.com/aristath/adequacy-core/internal/lpmatrix"
	"github.com/aristath/adequacy-core/internal/varkind"
)

// Build walks every area's thermal clusters and every timestep in
// [0,horizon), appending rows to b. cols and rows must be in the same mode
// as b (both sizing, or both frozen/emit).
func Build(b *lpmatrix.Builder, cols, rows *indexmaps.Table, areas []*domain.Area, horizon int) {
	for _, area := range areas {
		for _, c := range area.ThermalClusters {
			buildCluster(b, cols, rows, c, horizon)
		}
	}
}

func buildCluster(b *lpmatrix.Builder, cols, rows *indexmaps.Table, c *domain.ThermalCluster, horizon int) {
	id := c.GlobalIndex

	power := func(t int) indexmaps.Key { return indexmaps.Key{Kind: varkind.ColThermalPower, EntityID: id, Timestep: t} }
	unitsOn := func(t int) indexmaps.Key { return indexmaps.Key{Kind: varkind.ColThermalUnitsOn, EntityID: id, Timestep: t} }
	started := func(t int) indexmaps.Key { return indexmaps.Key{Kind: varkind.ColThermalStarted, EntityID: id, Timestep: t} }
	stopped := func(t int) indexmaps.Key { return indexmaps.Key{Kind: varkind.ColThermalStopped, EntityID: id, Timestep: t} }
	fellOut := func(t int) indexmaps.Key { return indexmaps.Key{Kind: varkind.ColThermalFellOut, EntityID: id, Timestep: t} }

	for t := 0; t < horizon; t++ {
		// P(t) - Pmin(t)*N(t) >= 0
		b.SetHour(t)
		b.TermAt(cols, power(t), 1).TermAt(cols, unitsOn(t), -c.EffectivePmin(t))
		rows.Index(indexmaps.Key{Kind: varkind.RowThermalPmin, EntityID: id, Timestep: t})
		b.GreaterThan()

		// P(t) - Pmax(t)*N(t) <= 0
		b.TermAt(cols, power(t), 1).TermAt(cols, unitsOn(t), -c.EffectivePmax(t))
		rows.Index(indexmaps.Key{Kind: varkind.RowThermalPmax, EntityID: id, Timestep: t})
		b.LessThan()

		// N(t) - N(t-1) - S(t) + A(t) + F(t) = 0. At t==0 the N(t-1) term is
		// dropped; InitialUnitsOn is folded into the row's RHS instead (by
		// the assembler, which resolves the same row key).
		b.TermAt(cols, unitsOn(t), 1)
		if t > 0 {
			b.TermAt(cols, unitsOn(t-1), -1)
		}
		b.TermAt(cols, started(t), -1).TermAt(cols, stopped(t), 1).TermAt(cols, fellOut(t), 1)
		rows.Index(indexmaps.Key{Kind: varkind.RowThermalUnitCount, EntityID: id, Timestep: t})
		b.EqualTo()

		// F(t) - sum_{tau=0}^{t} S(tau) <= 0
		b.TermAt(cols, fellOut(t), 1)
		for tau := 0; tau <= t; tau++ {
			b.TermAt(cols, started(tau), -1)
		}
		rows.Index(indexmaps.Key{Kind: varkind.RowThermalOutageCap, EntityID: id, Timestep: t})
		b.LessThan()

		// N(t) - sum_{tau in minUp window} S(tau) >= 0
		if c.MinUpTimeHours > 1 {
			b.TermAt(cols, unitsOn(t), 1)
			for tau := windowStart(t, c.MinUpTimeHours); tau <= t; tau++ {
				b.TermAt(cols, started(tau), -1)
			}
			rows.Index(indexmaps.Key{Kind: varkind.RowThermalMinUp, EntityID: id, Timestep: t})
			b.GreaterThan()
		}

		// Nmax(t) - N(t) - sum_{tau in minDown window} A(tau) >= 0. Nmax(t) is
		// constant (AvailableUnits[t]) and folded into RHS by the assembler.
		if c.MinDownTimeHours > 1 {
			b.TermAt(cols, unitsOn(t), -1)
			for tau := windowStart(t, c.MinDownTimeHours); tau <= t; tau++ {
				b.TermAt(cols, stopped(tau), -1)
			}
			rows.Index(indexmaps.Key{Kind: varkind.RowThermalMinDown, EntityID: id, Timestep: t})
			b.GreaterThan()
		}
	}
}

// windowStart clamps a min-up/min-down lookback window to the horizon's
// start; offsets never wrap to the previous week (spec §4.3 ordering note).
func windowStart(t, windowHours int) int {
	s := t - windowHours + 1
	if s < 0 {
		return 0
	}
	return s
}
