// Package balance assembles the one row per area per hour that ties every
// other group's production and flow variables to demand: supply minus
// demand equals zero, with shortage/spillage slack columns absorbing any
// gap the rest of the system can't otherwise close.
package balance

import (
	"github.com/aristath/adequacy-core/internal/domain"
	"github.com/aristath/adequacy-core/internal/indexmaps"
	"github.com/aristath/adequacy-core/internal/lpmatrix"
	"github.com/aristath/adequacy-core/internal/varkind"
)

// Build appends one equality row per area per timestep coupling thermal
// power, hydro turbine/pump, short-term storage withdrawal/injection,
// shortage/spillage and interconnection flows incident to the area.
func Build(b *lpmatrix.Builder, cols, rows *indexmaps.Table, areas []*domain.Area, interconnections []*domain.Interconnection, horizon int) {
	for _, area := range areas {
		buildArea(b, cols, rows, area, interconnections, horizon)
	}
}

func buildArea(b *lpmatrix.Builder, cols, rows *indexmaps.Table, area *domain.Area, interconnections []*domain.Interconnection, horizon int) {
	aid := area.GlobalIndex

	for t := 0; t < horizon; t++ {
		b.SetHour(t)

		for _, c := range area.ThermalClusters {
			b.TermAt(cols, indexmaps.Key{Kind: varkind.ColThermalPower, EntityID: c.GlobalIndex, Timestep: t}, 1)
		}

		if area.HydroReservoir != nil {
			b.TermAt(cols, indexmaps.Key{Kind: varkind.ColHydroTurbine, EntityID: aid, Timestep: t}, 1)
			b.TermAt(cols, indexmaps.Key{Kind: varkind.ColHydroPump, EntityID: aid, Timestep: t}, -1)
		}

		for _, sts := range area.STStorageClusters {
			b.TermAt(cols, indexmaps.Key{Kind: varkind.ColSTSWithdraw, EntityID: sts.GlobalIndex, Timestep: t}, 1)
			b.TermAt(cols, indexmaps.Key{Kind: varkind.ColSTSInjection, EntityID: sts.GlobalIndex, Timestep: t}, -1)
		}

		for i, link := range interconnections {
			switch area.Name {
			case link.Origin:
				b.TermAt(cols, indexmaps.Key{Kind: varkind.ColInterconnectionFlowDirect, EntityID: i, Timestep: t}, -1)
				b.TermAt(cols, indexmaps.Key{Kind: varkind.ColInterconnectionFlowIndirect, EntityID: i, Timestep: t}, 1)
			case link.Extremity:
				b.TermAt(cols, indexmaps.Key{Kind: varkind.ColInterconnectionFlowDirect, EntityID: i, Timestep: t}, 1)
				b.TermAt(cols, indexmaps.Key{Kind: varkind.ColInterconnectionFlowIndirect, EntityID: i, Timestep: t}, -1)
			}
		}

		b.TermAt(cols, indexmaps.Key{Kind: varkind.ColAreaShortage, EntityID: aid, Timestep: t}, 1)
		b.TermAt(cols, indexmaps.Key{Kind: varkind.ColAreaSpillage, EntityID: aid, Timestep: t}, -1)

		rows.Index(indexmaps.Key{Kind: varkind.RowAreaBalance, EntityID: aid, Timestep: t})
		b.EqualTo()
	}
}
