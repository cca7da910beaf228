package lpmatrix

import (
	"fmt"

	"github.com/aristath/adequacy-core/internal/errs"
	"github.com/aristath/adequacy-core/internal/indexmaps"
)

// Builder is the stateful fluent surface that appends one linear term at a
// time to a growing row, finalizes it with a sense, and bumps the row
// counter (spec §4.3). It borrows a Matrix and nothing else — no back-edge
// to WeeklyProblem (spec §9 "no back-edges").
//
// A Builder runs in one of two modes, selected by NewSizingBuilder /
// NewEmitBuilder: sizing only counts rows and non-zeros; emit writes them
// into the matrix's CSR arrays. Every constraint group is written so that
// calling the same sequence of Term/FinishRow calls in both modes produces
// identical counts — this is enforced by Validate comparing the sizing
// totals Matrix.Freeze recorded against what the emit pass actually wrote.
type Builder struct {
	matrix *Matrix
	sizing bool

	hour int

	pendingCols   []int
	pendingCoeffs []float64

	rowCursor int
	nnzCursor int
}

// NewSizingBuilder returns a Builder that only counts rows/non-zeros.
func NewSizingBuilder(m *Matrix) *Builder {
	return &Builder{matrix: m, sizing: true}
}

// NewEmitBuilder returns a Builder that writes into m's CSR arrays. m must
// already be frozen.
func NewEmitBuilder(m *Matrix) *Builder {
	if !m.Frozen() {
		panic("lpmatrix: NewEmitBuilder called on a matrix that has not been Frozen")
	}
	return &Builder{matrix: m, sizing: false}
}

// SetHour sets the timestep cursor used by column lookups performed by the
// calling constraint group (the builder itself does not look up columns;
// it only records the hour so callers building per-group helper methods
// can read it back without threading an extra parameter everywhere).
func (b *Builder) SetHour(h int) *Builder {
	b.hour = h
	return b
}

// Hour returns the current timestep cursor.
func (b *Builder) Hour() int {
	return b.hour
}

// Term appends one (column, coefficient) pair to the row currently being
// built. In sizing mode, col is ignored (it still must be computed by the
// caller via IndexMaps.Index so that column numbering agrees between
// passes, but the builder itself only needs the count).
func (b *Builder) Term(col int, coeff float64) *Builder {
	b.pendingCols = append(b.pendingCols, col)
	b.pendingCoeffs = append(b.pendingCoeffs, coeff)
	return b
}

// TermAt resolves key through cols (reserving it in sizing mode, fetching
// its fixed slot in emit mode) and appends the resulting column with
// coeff. This is the one line every per-variable-family term appender
// (thermal, running_thermal, hydro_level, ...) boils down to.
func (b *Builder) TermAt(cols *indexmaps.Table, key indexmaps.Key, coeff float64) *Builder {
	return b.Term(cols.Index(key), coeff)
}

// NumberOfVariables returns the number of terms appended since the last
// row was finalized. Groups use this to skip would-be-empty rows.
func (b *Builder) NumberOfVariables() int {
	return len(b.pendingCols)
}

// LessThan, EqualTo and GreaterThan terminate the current row with a
// sense, bump the row counter, and reset the pending term buffer. Each
// returns the row index that was assigned.
func (b *Builder) LessThan() int    { return b.finish(LessEqual) }
func (b *Builder) EqualTo() int     { return b.finish(Equal) }
func (b *Builder) GreaterThan() int { return b.finish(GreaterEqual) }

func (b *Builder) finish(sense Sense) int {
	n := len(b.pendingCols)
	var rowIdx int
	if b.sizing {
		rowIdx = b.matrix.AnnounceRow(n)
	} else {
		rowIdx = b.rowCursor
		start := b.nnzCursor
		copy(b.matrix.ColIndex[start:start+n], b.pendingCols)
		copy(b.matrix.Coeff[start:start+n], b.pendingCoeffs)
		b.matrix.RowStart[rowIdx] = start
		b.matrix.Sense[rowIdx] = sense
		b.nnzCursor += n
		b.rowCursor++
		if b.rowCursor == b.matrix.NRows {
			b.matrix.RowStart[b.rowCursor] = b.nnzCursor
		}
	}
	b.pendingCols = b.pendingCols[:0]
	b.pendingCoeffs = b.pendingCoeffs[:0]
	return rowIdx
}

// Validate checks, for an emit-mode builder, that the number of rows and
// non-zeros actually written matches what the sizing pass announced (spec
// §8 "sizing equivalence" / §7 "inconsistent_sizing: always fatal"). Every
// constraint group's caller must invoke this once after its emit pass
// completes; a mismatch here means some group's sizing branch and emit
// branch diverged.
func (b *Builder) Validate() error {
	if b.sizing {
		return nil
	}
	if b.rowCursor != b.matrix.NRows {
		return fmt.Errorf("%w: emit pass wrote %d rows, sizing pass announced %d", errs.ErrInconsistentSizing, b.rowCursor, b.matrix.NRows)
	}
	if b.nnzCursor != b.matrix.NNZ {
		return fmt.Errorf("%w: emit pass wrote %d non-zeros, sizing pass announced %d", errs.ErrInconsistentSizing, b.nnzCursor, b.matrix.NNZ)
	}
	return nil
}

// Sizing reports whether this builder is in the counting-only pass.
// Constraint groups use it to decide whether to resolve real column
// indices (emit) or dummy placeholders (sizing) when a lookup would
// otherwise be wasted work.
func (b *Builder) Sizing() bool {
	return b.sizing
}
