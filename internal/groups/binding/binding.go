// Package binding assembles user-defined BindingConstraint rows, coupling
// interconnection flows and thermal dispatch across entities and,
// optionally, across timesteps (spec §4.3 "horizon-offset variants").
package binding

import (
	"github.com/aristath/adequacy-core/internal/domain"
	"github.com/aristath/adequacy-core/internal/indexmaps"
	"github.com/aristath/adequacy-core/internal/lpmatrix"
	"github.com/aristath/adequacy-core/internal/varkind"
)

// Build walks every binding constraint, appending one row per applicable
// period (hourly: one row per hour; daily: one row per 24h block; weekly:
// one row for the whole horizon).
func Build(b *lpmatrix.Builder, cols, rows *indexmaps.Table, constraints []*domain.BindingConstraint, horizon int) {
	for bcIdx, bc := range constraints {
		switch bc.Scope {
		case domain.ScopeHourly:
			buildHourly(b, cols, rows, bcIdx, bc, horizon)
		case domain.ScopeDaily:
			buildPeriod(b, cols, rows, bcIdx, bc, horizon, 24)
		case domain.ScopeWeekly:
			buildPeriod(b, cols, rows, bcIdx, bc, horizon, horizon)
		}
	}
}

func buildHourly(b *lpmatrix.Builder, cols, rows *indexmaps.Table, bcIdx int, bc *domain.BindingConstraint, horizon int) {
	for t := 0; t < horizon; t++ {
		b.SetHour(t)
		for _, term := range bc.Terms {
			// Hourly-scope offsets wrap modulo the week length rather than
			// dropping at the boundary (spec §3); daily/weekly scopes never
			// carry an offset at all (domain.ValidateBindingConstraint).
			te := ((t+term.TimeOffset)%horizon + horizon) % horizon
			addTerm(b, cols, term, te)
		}
		rows.Index(indexmaps.Key{Kind: varkind.RowBinding, EntityID: bcIdx, Timestep: t})
		finish(b, bc.Sense)
	}
}

func buildPeriod(b *lpmatrix.Builder, cols, rows *indexmaps.Table, bcIdx int, bc *domain.BindingConstraint, horizon, periodLen int) {
	for start := 0; start < horizon; start += periodLen {
		end := start + periodLen
		if end > horizon {
			end = horizon
		}
		b.SetHour(start)
		for t := start; t < end; t++ {
			for _, term := range bc.Terms {
				addTerm(b, cols, term, t)
			}
		}
		rows.Index(indexmaps.Key{Kind: varkind.RowBinding, EntityID: bcIdx, Timestep: start / periodLen})
		finish(b, bc.Sense)
	}
}

func addTerm(b *lpmatrix.Builder, cols *indexmaps.Table, term domain.BindingTerm, t int) {
	switch {
	case term.InterconnectionIndex >= 0:
		b.TermAt(cols, indexmaps.Key{Kind: varkind.ColInterconnectionFlowDirect, EntityID: term.InterconnectionIndex, Timestep: t}, term.Weight)
		b.TermAt(cols, indexmaps.Key{Kind: varkind.ColInterconnectionFlowIndirect, EntityID: term.InterconnectionIndex, Timestep: t}, -term.Weight)
	case term.ThermalClusterIndex >= 0:
		b.TermAt(cols, indexmaps.Key{Kind: varkind.ColThermalPower, EntityID: term.ThermalClusterIndex, Timestep: t}, term.Weight)
	}
}

func finish(b *lpmatrix.Builder, sense domain.BindingSense) {
	switch sense {
	case domain.BindingLessEqual:
		b.LessThan()
	case domain.BindingEqual:
		b.EqualTo()
	case domain.BindingGreaterEqual:
		b.GreaterThan()
	}
}
