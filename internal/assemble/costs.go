package assemble

import (
	"github.com/aristath/adequacy-core/internal/domain"
	"github.com/aristath/adequacy-core/internal/groups/reserve"
	"github.com/aristath/adequacy-core/internal/indexmaps"
	"github.com/aristath/adequacy-core/internal/lpmatrix"
	"github.com/aristath/adequacy-core/internal/varkind"
)

// Costs sets the objective coefficient of every column a constraint group
// registered. Columns a group never visited keep a zero cost, which is
// correct for purely structural variables (e.g. unused slack columns).
func Costs(m *lpmatrix.Matrix, cols *indexmaps.Table, areas []*domain.Area, horizon int) {
	for _, area := range areas {
		costsThermal(m, cols, area, horizon)
		costsArea(m, cols, area, horizon)
	}
}

func setCost(m *lpmatrix.Matrix, cols *indexmaps.Table, key indexmaps.Key, cost float64) {
	idx := cols.Get(key)
	if idx == indexmaps.Unset {
		return
	}
	m.Cost[idx] = cost
}

func costsThermal(m *lpmatrix.Matrix, cols *indexmaps.Table, area *domain.Area, horizon int) {
	for _, c := range area.ThermalClusters {
		id := c.GlobalIndex
		for t := 0; t < horizon; t++ {
			setCost(m, cols, indexmaps.Key{Kind: varkind.ColThermalPower, EntityID: id, Timestep: t}, c.MarginalCostPerMWh+c.MarketBidCost)
			setCost(m, cols, indexmaps.Key{Kind: varkind.ColThermalUnitsOn, EntityID: id, Timestep: t}, c.FixedCostPerHour)
			setCost(m, cols, indexmaps.Key{Kind: varkind.ColThermalStarted, EntityID: id, Timestep: t}, c.StartupCost)
		}
	}
}

func costsArea(m *lpmatrix.Matrix, cols *indexmaps.Table, area *domain.Area, horizon int) {
	id := area.GlobalIndex
	for t := 0; t < horizon; t++ {
		setCost(m, cols, indexmaps.Key{Kind: varkind.ColAreaShortage, EntityID: id, Timestep: t}, area.ShortageCostPerMWh)
		setCost(m, cols, indexmaps.Key{Kind: varkind.ColAreaSpillage, EntityID: id, Timestep: t}, area.SurplusCostPerMWh)
	}

	for _, res := range area.ReserveUp {
		costsReservation(m, cols, res, domain.ReserveUp, horizon)
	}
	for _, res := range area.ReserveDown {
		costsReservation(m, cols, res, domain.ReserveDown, horizon)
	}
}

func costsReservation(m *lpmatrix.Matrix, cols *indexmaps.Table, res *domain.CapacityReservation, dir domain.ReserveDirection, horizon int) {
	resID := reserve.ReservationID(res, dir)
	for t := 0; t < horizon; t++ {
		setCost(m, cols, indexmaps.Key{Kind: varkind.ColReserveShortage, EntityID: resID, Timestep: t}, res.FailureCostPerMWh)
		setCost(m, cols, indexmaps.Key{Kind: varkind.ColReserveExcess, EntityID: resID, Timestep: t}, res.SpillageCostPerMWh)
	}
	for _, p := range allReservationParticipants(res) {
		for t := 0; t < horizon; t++ {
			setCost(m, cols, indexmaps.Key{Kind: varkind.ColReserveThermalOn, EntityID: p.GlobalIndex, Timestep: t}, p.ParticipationCost)
			setCost(m, cols, indexmaps.Key{Kind: varkind.ColReserveThermalOff, EntityID: p.GlobalIndex, Timestep: t}, p.ParticipationCost)
			setCost(m, cols, indexmaps.Key{Kind: varkind.ColReserveSTStorage, EntityID: p.GlobalIndex, Timestep: t}, p.ParticipationCost)
			setCost(m, cols, indexmaps.Key{Kind: varkind.ColReserveLTStorage, EntityID: p.GlobalIndex, Timestep: t}, p.ParticipationCost)
		}
	}
}

func allReservationParticipants(res *domain.CapacityReservation) []*domain.ReserveParticipation {
	all := make([]*domain.ReserveParticipation, 0, len(res.ThermalParticipants)+len(res.STStorageParticipants)+len(res.LTStorageParticipants))
	all = append(all, res.ThermalParticipants...)
	all = append(all, res.STStorageParticipants...)
	all = append(all, res.LTStorageParticipants...)
	return all
}
