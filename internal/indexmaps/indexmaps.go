// Package indexmaps provides the dense sparse-index tables that map
// (entity, timestep) pairs to column/row numbers in the weekly LP, per
// spec §4.1.
//
// A Table has two modes. In sizing mode, Reserve returns a freshly assigned
// slot and bumps the running total; in binding mode, indices have already
// been fixed by a prior sizing pass and Get returns the stored value,
// panicking (via the returned ok=false contract below, see MustGet) only
// when the caller explicitly demands a present entry.
package indexmaps

import "fmt"

// Unset is the sentinel value read back for a key that was never
// registered in the current pass: "not present this pass".
const Unset = -1

// Key identifies one (entity kind, entity id, timestep) triple. EntityID is
// a caller-defined identifier (cluster global index, area name hash via a
// small int id, etc.) kept as a plain int so Table stays domain-agnostic.
type Key struct {
	Kind      string
	EntityID  int
	Timestep  int
}

// Table is a single column (or row) index: Key -> int.
type Table struct {
	entries map[Key]int
	next    int
	sizing  bool
}

// NewSizingTable creates a table in sizing mode: each new Reserve call
// assigns the next available slot.
func NewSizingTable() *Table {
	return &Table{entries: make(map[Key]int), sizing: true}
}

// Freeze switches the table from sizing to binding mode. Once frozen,
// Reserve panics; use Get/MustGet instead.
func (t *Table) Freeze() {
	t.sizing = false
}

// Reserve assigns (if not already assigned) the next column/row number to
// key and returns it. Only valid while the table is in sizing mode.
func (t *Table) Reserve(key Key) int {
	if !t.sizing {
		panic("indexmaps: Reserve called on a frozen table")
	}
	if idx, ok := t.entries[key]; ok {
		return idx
	}
	idx := t.next
	t.entries[key] = idx
	t.next++
	return idx
}

// Index returns the slot for key regardless of mode: while sizing, it
// reserves (assigning the next slot on first use); once frozen, it fetches
// the previously-reserved slot. Because the emit pass is required to visit
// every (entity, timestep) in the exact same order as the sizing pass
// (spec §5), a single call site using Index in both passes is guaranteed to
// see the same index both times — this is what keeps a constraint group's
// sizing branch and emit branch mechanically in sync instead of needing two
// hand-maintained copies of the traversal.
func (t *Table) Index(key Key) int {
	if t.sizing {
		return t.Reserve(key)
	}
	return t.MustGet(key)
}

// Get returns the index stored for key, or Unset if the key was never
// registered (e.g. a reserve-direction variable that only exists for "up").
func (t *Table) Get(key Key) int {
	if idx, ok := t.entries[key]; ok {
		return idx
	}
	return Unset
}

// MustGet returns the index stored for key. Accessing an unset key in
// binding mode is a programmer error and is treated as fatal, per spec
// §4.1.
func (t *Table) MustGet(key Key) int {
	idx, ok := t.entries[key]
	if !ok {
		panic(fmt.Sprintf("indexmaps: key %+v not present in binding table", key))
	}
	return idx
}

// Len returns the total number of assigned slots (columns or rows).
func (t *Table) Len() int {
	return t.next
}

// Reset clears the table back to an empty sizing table, for reuse across
// weeks (WeeklyProblem's reinit semantics).
func (t *Table) Reset() {
	t.entries = make(map[Key]int)
	t.next = 0
	t.sizing = true
}

// Maps bundles the column table and the row table a weekly assembly pass
// needs. Two tables (not one) because columns and rows are independent
// counters that both start at zero each week.
type Maps struct {
	Columns *Table
	Rows    *Table
}

// NewMaps creates a fresh pair of sizing tables.
func NewMaps() *Maps {
	return &Maps{Columns: NewSizingTable(), Rows: NewSizingTable()}
}

// Freeze freezes both tables, transitioning from the sizing pass to the
// binding (emit) pass.
func (m *Maps) Freeze() {
	m.Columns.Freeze()
	m.Rows.Freeze()
}

// Reset clears both tables for the next week.
func (m *Maps) Reset() {
	m.Columns.Reset()
	m.Rows.Reset()
}
