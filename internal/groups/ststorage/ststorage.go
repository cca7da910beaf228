// Package ststorage assembles the short-term storage constraint family:
// level recursion, injection/withdrawal capacity, and the per-cluster
// AdditionalConstraints side constraints that sum a variable family over
// named hour groups.
package ststorage

import (
	"github.com/aristath/adequacy-core/internal/domain"
	"github.com/aristath/adequacy-core/internal/indexmaps"
	"github.com/aristath/adequacy-core/internal/lpmatrix"
	"github.com/aristath/adequacy-core/internal/varkind"
)

// Build walks every area's short-term storage clusters and every timestep
// in [0,horizon), appending rows to b.
func Build(b *lpmatrix.Builder, cols, rows *indexmaps.Table, areas []*domain.Area, horizon int) {
	for _, area := range areas {
		for _, c := range area.STStorageClusters {
			buildCluster(b, cols, rows, c, horizon)
		}
	}
}

func buildCluster(b *lpmatrix.Builder, cols, rows *indexmaps.Table, c *domain.ShortTermStorageCluster, horizon int) {
	id := c.GlobalIndex

	inj := func(t int) indexmaps.Key { return indexmaps.Key{Kind: varkind.ColSTSInjection, EntityID: id, Timestep: t} }
	wdr := func(t int) indexmaps.Key { return indexmaps.Key{Kind: varkind.ColSTSWithdraw, EntityID: id, Timestep: t} }
	lvl := func(t int) indexmaps.Key { return indexmaps.Key{Kind: varkind.ColSTSLevel, EntityID: id, Timestep: t} }

	for t := 0; t < horizon; t++ {
		b.SetHour(t)

		// injection(t) <= InjectionNominalMW * modulation(t) — the assembler
		// also applies this cap as the column's upper bound; the row is
		// emitted every hour regardless, kept for symmetry with withdrawal
		// and to give the group a place to attach a back-pointer per hour.
		b.TermAt(cols, inj(t), 1)
		rows.Index(indexmaps.Key{Kind: varkind.RowSTSInjectionCap, EntityID: id, Timestep: t})
		b.LessThan()

		b.TermAt(cols, wdr(t), 1)
		rows.Index(indexmaps.Key{Kind: varkind.RowSTSWithdrawalCap, EntityID: id, Timestep: t})
		b.LessThan()

		// L(t) - L(t-1) - injection(t)*injEff + withdrawal(t)/wdrEff = 0.
		// L(-1) folded into RHS as InitialLevelMWh by the assembler.
		b.TermAt(cols, lvl(t), 1)
		if t > 0 {
			b.TermAt(cols, lvl(t-1), -1)
		}
		b.TermAt(cols, inj(t), -c.InjectionEfficiency)
		if c.WithdrawalEfficiency != 0 {
			b.TermAt(cols, wdr(t), 1/c.WithdrawalEfficiency)
		} else {
			b.TermAt(cols, wdr(t), 0)
		}
		rows.Index(indexmaps.Key{Kind: varkind.RowSTSLevel, EntityID: id, Timestep: t})
		b.EqualTo()
	}

	for gi, block := range c.AdditionalConstraints {
		buildAdditional(b, cols, rows, id, gi, block)
	}
}

func buildAdditional(b *lpmatrix.Builder, cols, rows *indexmaps.Table, clusterID, blockIndex int, block domain.AdditionalConstraintsBlock) {
	inj := func(t int) indexmaps.Key { return indexmaps.Key{Kind: varkind.ColSTSInjection, EntityID: clusterID, Timestep: t} }
	wdr := func(t int) indexmaps.Key { return indexmaps.Key{Kind: varkind.ColSTSWithdraw, EntityID: clusterID, Timestep: t} }

	for groupIdx, group := range block.Groups {
		// hour-of-week is 1-based in the group; timesteps are 0-based.
		b.SetHour(group.Min() - 1)
		for _, hour := range group.Hours {
			t := hour - 1
			switch block.Variable {
			case domain.VariableInjection:
				b.TermAt(cols, inj(t), 1)
			case domain.VariableWithdrawal:
				b.TermAt(cols, wdr(t), 1)
			case domain.VariableNetting:
				b.TermAt(cols, inj(t), 1).TermAt(cols, wdr(t), -1)
			}
		}

		rows.Index(indexmaps.Key{Kind: varkind.RowSTSAdditional, EntityID: clusterID, Timestep: blockIndex*1000 + groupIdx})

		switch block.Operator {
		case domain.OperatorLess:
			b.LessThan()
		case domain.OperatorEqual:
			b.EqualTo()
		case domain.OperatorGreater:
			b.GreaterThan()
		}
	}
}
