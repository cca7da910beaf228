// Package lpmatrix holds the CSR-like sparse constraint matrix and the
// ConstraintBuilder fluent surface used to assemble it one row at a time,
// per spec §3-4.3.
package lpmatrix

// Sense is a constraint's comparison operator.
type Sense byte

const (
	LessEqual Sense = iota
	Equal
	GreaterEqual
)

// BackPointer identifies where an optimized primal value or a row's dual
// price should be written back into a caller-owned result structure. It is
// deliberately an opaque function rather than a raw pointer so the matrix
// package never needs to know about area/result-cell types; nil means "no
// user-visible output" (spec §4.5).
type BackPointer func(value float64)

// Matrix is the long-lived CSR-like sparse matrix for one week's LP,
// reused across weeks via Reset. It owns the row-starts/column-indices/
// coefficients plus the parallel sense, RHS, bounds, cost, and
// back-pointer vectors that spec §3 groups under "LpMatrix".
type Matrix struct {
	NCols int
	NRows int
	NNZ   int

	// CSR storage, valid only after Freeze + a completed emit pass.
	RowStart []int // len NRows+1
	ColIndex []int // len NNZ
	Coeff    []float64

	Sense []Sense
	RHS   []float64

	XMin       []float64
	XMax       []float64
	Cost       []float64
	IsInteger  []bool

	ColBackPointers []BackPointer
	RowBackPointers []BackPointer // dual/marginal price sink, per row

	ColNames []string
	RowNames []string

	sizingCols int
	sizingRows int
	sizingNNZ  int
	frozen     bool
}

// New creates an empty matrix in sizing mode.
func New() *Matrix {
	return &Matrix{}
}

// Reset returns the matrix to a fresh sizing-mode state, for reuse at the
// start of the next week (WeeklyProblem's reinit semantics).
func (m *Matrix) Reset() {
	*m = Matrix{}
}

// SetColumnCount records the total number of columns, as counted by the
// column IndexMaps table during the sizing pass (indexmaps.Table.Len()
// after the sizing pass completes). Columns are sized independently of
// rows: every (entity, timestep) pair that VariableBoundsSetter walks
// reserves its column through IndexMaps directly, so the matrix itself
// never needs to re-derive the count — it just needs to be told it, once,
// before Freeze.
func (m *Matrix) SetColumnCount(n int) {
	m.sizingCols = n
}

// AnnounceRow bumps the sizing row/non-zero counters for a row of
// termCount terms, without emitting anything. Mirrors FinishRow exactly in
// shape; a constraint group's sizing branch and emit branch must produce
// equal counts here (spec §8 "sizing equivalence") or assembly is aborted
// with ErrInconsistentSizing once the emit builder's Validate runs.
func (m *Matrix) AnnounceRow(termCount int) int {
	idx := m.sizingRows
	m.sizingRows++
	m.sizingNNZ += termCount
	return idx
}

// Freeze ends the sizing pass, allocating every vector to its final size.
// After Freeze, SetColumnCount/AnnounceRow must no longer be called; the
// emit pass runs instead.
func (m *Matrix) Freeze() {
	m.NCols = m.sizingCols
	m.NRows = m.sizingRows
	m.NNZ = m.sizingNNZ

	m.RowStart = make([]int, m.NRows+1)
	m.ColIndex = make([]int, m.NNZ)
	m.Coeff = make([]float64, m.NNZ)
	m.Sense = make([]Sense, m.NRows)
	m.RHS = make([]float64, m.NRows)

	m.XMin = make([]float64, m.NCols)
	m.XMax = make([]float64, m.NCols)
	m.Cost = make([]float64, m.NCols)
	m.IsInteger = make([]bool, m.NCols)
	m.ColBackPointers = make([]BackPointer, m.NCols)
	m.RowBackPointers = make([]BackPointer, m.NRows)
	m.ColNames = make([]string, m.NCols)
	m.RowNames = make([]string, m.NRows)

	m.frozen = true
}

// Frozen reports whether Freeze has run.
func (m *Matrix) Frozen() bool {
	return m.frozen
}

// WriteBack invokes every non-nil column back-pointer with its primal
// value and every non-nil row back-pointer with its dual value. Called by
// the SolverDriver after a successful solve.
func (m *Matrix) WriteBack(primal, dual []float64) {
	for i, bp := range m.ColBackPointers {
		if bp != nil && i < len(primal) {
			bp(primal[i])
		}
	}
	for i, bp := range m.RowBackPointers {
		if bp != nil && i < len(dual) {
			bp(dual[i])
		}
	}
}
