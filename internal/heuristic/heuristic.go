// Package heuristic implements the thermal heuristic that runs between the
// two optimization passes: it takes pass 1's relaxed/integer unit-count
// solution and derives a tighter per-hour minimum stable power bound for
// pass 2, so the continuous relaxation can't dispatch power below what the
// committed unit count can actually sustain.
package heuristic

import (
	"github.com/aristath/adequacy-core/internal/domain"
)

// ApplyMinStablePower recomputes PminOverride for every thermal cluster
// from its solved per-hour running-unit count (primal, already written
// back by the solver), so that pass 2's Pmin row uses
// MinStablePowerMW*N(t) with N(t) pinned to pass 1's committed value
// instead of being re-optimized.
func ApplyMinStablePower(areas []*domain.Area, horizon int) {
	for _, area := range areas {
		for _, c := range area.ThermalClusters {
			override := make([]float64, horizon)
			for t := 0; t < horizon; t++ {
				units := c.EffectiveUnitsOn(t)
				override[t] = units * c.MinStablePowerMW
			}
			c.PminOverride = override
		}
	}
}

// ExpandMinUpDown widens a cluster's committed running-unit trajectory
// ahead of pass 2 so that any unit started within the last MinUpTimeHours
// stays committed. Only this min-up side is applied: MinDownTimeHours is
// not read, and stopped units are not held off. It mutates UnitsOnSolved
// in place and is idempotent.
func ExpandMinUpDown(areas []*domain.Area, horizon int) {
	for _, area := range areas {
		for _, c := range area.ThermalClusters {
			if c.UnitsOnSolved == nil {
				continue
			}
			expandCluster(c, horizon)
		}
	}
}

func expandCluster(c *domain.ThermalCluster, horizon int) {
	floor := make([]float64, horizon)
	copy(floor, c.UnitsOnSolved)

	for t := 1; t < horizon; t++ {
		started := c.UnitsOnSolved[t] - c.UnitsOnSolved[t-1]
		if started <= 0 {
			continue
		}
		end := t + c.MinUpTimeHours
		if end > horizon {
			end = horizon
		}
		for tau := t; tau < end; tau++ {
			if floor[tau] < c.UnitsOnSolved[t] {
				floor[tau] = c.UnitsOnSolved[t]
			}
		}
	}

	c.UnitsOnSolved = floor
}
