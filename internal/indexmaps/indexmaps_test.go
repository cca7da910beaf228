package indexmaps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_SizingThenBinding(t *testing.T) {
	tbl := NewSizingTable()

	k1 := Key{Kind: "thermal_p", EntityID: 1, Timestep: 0}
	k2 := Key{Kind: "thermal_p", EntityID: 1, Timestep: 1}

	idx1 := tbl.Reserve(k1)
	idx2 := tbl.Reserve(k2)
	assert.Equal(t, 0, idx1)
	assert.Equal(t, 1, idx2)

	// Reserving the same key twice returns the same slot.
	assert.Equal(t, idx1, tbl.Reserve(k1))
	assert.Equal(t, 2, tbl.Len())

	tbl.Freeze()
	assert.Equal(t, idx1, tbl.Get(k1))
	assert.Equal(t, idx2, tbl.MustGet(k2))

	missing := Key{Kind: "thermal_p", EntityID: 99, Timestep: 0}
	assert.Equal(t, Unset, tbl.Get(missing))
}

func TestTable_ReserveAfterFreezePanics(t *testing.T) {
	tbl := NewSizingTable()
	tbl.Freeze()
	assert.Panics(t, func() {
		tbl.Reserve(Key{Kind: "x", EntityID: 0, Timestep: 0})
	})
}

func TestTable_MustGetUnsetPanics(t *testing.T) {
	tbl := NewSizingTable()
	tbl.Freeze()
	assert.Panics(t, func() {
		tbl.MustGet(Key{Kind: "x", EntityID: 0, Timestep: 0})
	})
}

func TestTable_Reset(t *testing.T) {
	tbl := NewSizingTable()
	tbl.Reserve(Key{Kind: "x", EntityID: 0, Timestep: 0})
	tbl.Freeze()
	require.Equal(t, 1, tbl.Len())

	tbl.Reset()
	assert.Equal(t, 0, tbl.Len())
	// Back in sizing mode.
	idx := tbl.Reserve(Key{Kind: "y", EntityID: 0, Timestep: 0})
	assert.Equal(t, 0, idx)
}

func TestMaps_FreezeAndReset(t *testing.T) {
	m := NewMaps()
	m.Columns.Reserve(Key{Kind: "p", EntityID: 0, Timestep: 0})
	m.Rows.Reserve(Key{Kind: "balance", EntityID: 0, Timestep: 0})
	m.Freeze()

	assert.Panics(t, func() { m.Columns.Reserve(Key{Kind: "p", EntityID: 1, Timestep: 0}) })

	m.Reset()
	assert.Equal(t, 0, m.Columns.Len())
	assert.Equal(t, 0, m.Rows.Len())
}
