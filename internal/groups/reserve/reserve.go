// Package reserve assembles the operating-reserve participation family
// (spec §4.6, redesign flag §9): one function parameterized over the
// {up,down} x {thermal,st_storage,lt_storage} tagged variant instead of the
// seven near-duplicate families the original models separately. Build
// walks both directions of every area's capacity reservations.
package reserve

import (
	"github.com/aristath/adequacy-core/internal/domain"
	"github.com/aristath/adequacy-core/internal/indexmaps"
	"github.com/aristath/adequacy-core/internal/lpmatrix"
	"github.com/aristath/adequacy-core/internal/varkind"
)

// Build walks every area's up and down capacity reservations and every
// timestep in [0,horizon), appending rows to b.
func Build(b *lpmatrix.Builder, cols, rows *indexmaps.Table, areas []*domain.Area, horizon int) {
	for _, area := range areas {
		for _, res := range area.ReserveUp {
			buildReservation(b, cols, rows, res, domain.ReserveUp, horizon)
		}
		for _, res := range area.ReserveDown {
			buildReservation(b, cols, rows, res, domain.ReserveDown, horizon)
		}
	}
}

// participationKeys returns the column kinds for one participant in one
// direction, i.e. the columns the Need row sums.
// Thermal participants contribute through their composed total P, which
// the composition row below ties to P_on (+P_off); every other family
// contributes through its single column directly.
func participationKeys(p *domain.ReserveParticipation, dir domain.ReserveDirection) []string {
	switch p.ClusterKind {
	case domain.ClusterThermal:
		return []string{varkind.ColReserveThermalTotal}
	case domain.ClusterSTStorage:
		return []string{varkind.ColReserveSTStorage}
	default:
		return []string{varkind.ColReserveLTStorage}
	}
}

// ThermalOffParticipating reports whether a thermal participant's
// off-unit column exists for this direction: only the up direction, and
// only when MaxPowerOffMW is set (ThermalReserveParticipation.cpp's
// offUnitParticipating).
func ThermalOffParticipating(p *domain.ReserveParticipation, dir domain.ReserveDirection) bool {
	return dir == domain.ReserveUp && p.MaxPowerOffMW > 0
}

func buildReservation(b *lpmatrix.Builder, cols, rows *indexmaps.Table, res *domain.CapacityReservation, dir domain.ReserveDirection, horizon int) {
	resID := ReservationID(res, dir)

	excess := func(t int) indexmaps.Key { return indexmaps.Key{Kind: varkind.ColReserveExcess, EntityID: resID, Timestep: t} }
	shortage := func(t int) indexmaps.Key { return indexmaps.Key{Kind: varkind.ColReserveShortage, EntityID: resID, Timestep: t} }

	participants := allParticipants(res)

	// Need row: sum of every participant's contribution columns, plus
	// shortage, minus excess, equals the reservation's need at t.
	for t := 0; t < horizon; t++ {
		b.SetHour(t)
		for _, p := range participants {
			for _, kind := range participationKeys(p, dir) {
				b.TermAt(cols, indexmaps.Key{Kind: kind, EntityID: p.GlobalIndex, Timestep: t}, 1)
			}
		}
		b.TermAt(cols, shortage(t), 1).TermAt(cols, excess(t), -1)
		rows.Index(indexmaps.Key{Kind: varkind.RowReserveNeed, EntityID: resID, Timestep: t})
		b.EqualTo()
	}

	// Thermal composition and participation-ceiling rows (spec §8 "reserve
	// participation accounting"; ThermalReserveParticipation.cpp and
	// opt_gestion_des_bornes_reserves.cpp): the composed total P ties to
	// P_on (+P_off when off-units participate), and each of P_on/P_off is
	// in turn capped relative to the cluster's running-unit count N(t)
	// rather than by a flat bound, since how many units are running (or
	// idle) limits how much reserve they can actually offer.
	for _, p := range res.ThermalParticipants {
		total := func(t int) indexmaps.Key {
			return indexmaps.Key{Kind: varkind.ColReserveThermalTotal, EntityID: p.GlobalIndex, Timestep: t}
		}
		on := func(t int) indexmaps.Key {
			return indexmaps.Key{Kind: varkind.ColReserveThermalOn, EntityID: p.GlobalIndex, Timestep: t}
		}
		off := func(t int) indexmaps.Key {
			return indexmaps.Key{Kind: varkind.ColReserveThermalOff, EntityID: p.GlobalIndex, Timestep: t}
		}
		unitsOn := func(t int) indexmaps.Key {
			return indexmaps.Key{Kind: varkind.ColThermalUnitsOn, EntityID: p.ThermalClusterIndex, Timestep: t}
		}
		offParticipating := ThermalOffParticipating(p, dir)

		for t := 0; t < horizon; t++ {
			// P - P_on - P_off = 0 (P_off term only when off-units participate).
			b.SetHour(t)
			b.TermAt(cols, total(t), 1).TermAt(cols, on(t), -1)
			if offParticipating {
				b.TermAt(cols, off(t), -1)
			}
			rows.Index(indexmaps.Key{Kind: varkind.RowReserveComposition, EntityID: p.GlobalIndex, Timestep: t})
			b.EqualTo()

			// P_on - MaxPowerOnMW*N(t) <= 0
			b.SetHour(t)
			b.TermAt(cols, on(t), 1).TermAt(cols, unitsOn(t), -p.MaxPowerOnMW)
			rows.Index(indexmaps.Key{Kind: varkind.RowReserveMaxOn, EntityID: p.GlobalIndex, Timestep: t})
			b.LessThan()

			if offParticipating {
				// P_off + MaxPowerOffMW*N(t) <= MaxPowerOffMW*Nmax(t)
				b.SetHour(t)
				b.TermAt(cols, off(t), 1).TermAt(cols, unitsOn(t), p.MaxPowerOffMW)
				rows.Index(indexmaps.Key{Kind: varkind.RowReserveMaxOff, EntityID: p.GlobalIndex, Timestep: t})
				b.LessThan()
			}
		}
	}

	// Stock-level coupling (spec §4.4): over the activation window, the
	// sum of participation power x MaxActivationRatio, plus/minus the
	// window-start level x MaxEnergyActivationRatio, is bounded by the
	// reservoir's rule curve: discharging (up) draws the level down
	// towards its lower curve, charging (down) pushes it up towards its
	// upper curve. A storage participant can't sustain activation longer
	// than its MaxActivationDurationHours window without depleting or
	// overfilling its stock faster than the rule curve allows.
	if res.MaxActivationDurationHours > 0 {
		powerRatio := res.MaxActivationRatio
		if powerRatio <= 0 {
			powerRatio = 1
		}
		for _, p := range participants {
			if p.ClusterKind == domain.ClusterThermal {
				continue
			}
			kind := participationKeys(p, dir)[0]
			levelKind := varkind.ColSTSLevel
			if p.ClusterKind == domain.ClusterLTStorage {
				levelKind = varkind.ColHydroLevel
			}
			window := res.MaxActivationDurationHours
			for start := 0; start+window <= horizon; start++ {
				b.SetHour(start)
				for t := start; t < start+window; t++ {
					b.TermAt(cols, indexmaps.Key{Kind: kind, EntityID: p.GlobalIndex, Timestep: t}, powerRatio)
				}
				if res.MaxEnergyActivationRatio > 0 {
					levelCoeff := res.MaxEnergyActivationRatio
					if dir == domain.ReserveUp {
						levelCoeff = -levelCoeff
					}
					b.TermAt(cols, indexmaps.Key{Kind: levelKind, EntityID: p.StorageClusterIndex, Timestep: start}, levelCoeff)
				}
				rows.Index(indexmaps.Key{Kind: varkind.RowReserveStockLevel, EntityID: p.GlobalIndex, Timestep: start})
				b.LessThan()
			}
		}
	}

	// Global stock-energy constraint: total activation across the whole
	// horizon capped at MaxEnergyActivationRatio of the summed need.
	if res.MaxEnergyActivationRatio > 0 {
		b.SetHour(0)
		for _, p := range participants {
			for _, kind := range participationKeys(p, dir) {
				for t := 0; t < horizon; t++ {
					b.TermAt(cols, indexmaps.Key{Kind: kind, EntityID: p.GlobalIndex, Timestep: t}, 1)
				}
			}
		}
		rows.Index(indexmaps.Key{Kind: varkind.RowReserveGlobalStock, EntityID: resID, Timestep: 0})
		b.LessThan()
	}
}

func allParticipants(res *domain.CapacityReservation) []*domain.ReserveParticipation {
	all := make([]*domain.ReserveParticipation, 0, len(res.ThermalParticipants)+len(res.STStorageParticipants)+len(res.LTStorageParticipants))
	all = append(all, res.ThermalParticipants...)
	all = append(all, res.STStorageParticipants...)
	all = append(all, res.LTStorageParticipants...)
	return all
}

// ReservationID folds a reservation's area+name+direction into a stable
// small integer distinguishing it from every other reservation in the
// study, since CapacityReservation itself carries no GlobalIndex field (it
// is keyed structurally by its owning area's ReserveUp/ReserveDown slot
// instead). Exported so the bounds/cost/RHS assembler can address the same
// columns and rows this group reserved.
func ReservationID(res *domain.CapacityReservation, dir domain.ReserveDirection) int {
	h := 2166136261
	for i := 0; i < len(res.Area); i++ {
		h = (h ^ int(res.Area[i])) * 16777619
	}
	for i := 0; i < len(res.ReserveName); i++ {
		h = (h ^ int(res.ReserveName[i])) * 16777619
	}
	if dir == domain.ReserveDown {
		h ^= 1
	}
	if h < 0 {
		h = -h
	}
	return h
}
