package solver

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/aristath/adequacy-core/internal/lpmatrix"
)

// standardForm is a matrix translated into gonum's lp.Simplex shape:
// minimize c'x subject to Ax = b, x >= 0. Every original column is
// shifted by its lower bound (x = x' + lo) and, where it carries a finite
// upper bound, gets a paired slack row (x' + slack = hi - lo). Every
// inequality row gets its own slack/surplus column. lowerShift/boundRow
// record the per-column shift and bound row needed to map a solution back.
type standardForm struct {
	A    *mat.Dense
	b    []float64
	c    []float64
	nVar int // total standard-form variable count, including slacks

	lowerShift []float64 // len NCols, the lo subtracted from each original column
	boundRow   []int     // len NCols, row index of the upper-bound slack row, or -1
}

func buildStandardForm(m *lpmatrix.Matrix) standardForm {
	nCols := m.NCols
	lowerShift := make([]float64, nCols)
	boundRow := make([]int, nCols)
	for i := range boundRow {
		boundRow[i] = -1
	}

	extraRows := 0
	for i := 0; i < nCols; i++ {
		lo := m.XMin[i]
		if math.IsInf(lo, -1) {
			lo = 0 // unbounded-below columns are clamped at 0; see DESIGN.md.
		}
		lowerShift[i] = lo
		if !math.IsInf(m.XMax[i], 1) {
			boundRow[i] = m.NRows + extraRows
			extraRows++
		}
	}

	totalRows := m.NRows + extraRows
	slackStart := nCols
	nSlack := 0
	for r := 0; r < m.NRows; r++ {
		if m.Sense[r] != lpmatrix.Equal {
			nSlack++
		}
	}
	nSlack += extraRows
	nVar := nCols + nSlack

	a := mat.NewDense(totalRows, nVar, nil)
	b := make([]float64, totalRows)
	c := make([]float64, nVar)
	copy(c, m.Cost)

	// Cost is unaffected by the shift for the linear term itself; the
	// constant c_i*lo_i offset is dropped since it doesn't change the
	// optimal x, only the reported objective value.

	slackCol := slackStart
	for r := 0; r < m.NRows; r++ {
		start, end := m.RowStart[r], m.RowStart[r+1]
		rhs := m.RHS[r]
		for k := start; k < end; k++ {
			col := m.ColIndex[k]
			coeff := m.Coeff[k]
			a.Set(r, col, coeff)
			rhs -= coeff * lowerShift[col]
		}
		switch m.Sense[r] {
		case lpmatrix.LessEqual:
			a.Set(r, slackCol, 1)
			slackCol++
		case lpmatrix.GreaterEqual:
			a.Set(r, slackCol, -1)
			slackCol++
		}
		b[r] = rhs
	}

	for i := 0; i < nCols; i++ {
		if boundRow[i] == -1 {
			continue
		}
		r := boundRow[i]
		a.Set(r, i, 1)
		a.Set(r, slackCol, 1)
		slackCol++
		b[r] = m.XMax[i] - lowerShift[i]
	}

	return standardForm{A: a, b: b, c: c, nVar: nVar, lowerShift: lowerShift, boundRow: boundRow}
}

// primal extracts the original-space solution from a standard-form
// solution vector.
func (f standardForm) primal(x []float64, nCols int) []float64 {
	out := make([]float64, nCols)
	for i := 0; i < nCols; i++ {
		v := 0.0
		if i < len(x) {
			v = x[i]
		}
		out[i] = v + f.lowerShift[i]
	}
	return out
}

// rowDuals recovers the marginal price of every original row (spec §4.9
// "dual/marginal-cost vector") by solving the dual of the standard-form
// program: max b'y s.t. A'y <= c, y free. gonum's lp.Simplex only returns
// a primal solution and no basis, so the one way to recover shadow prices
// without vendoring a tableau-tracking simplex of our own is to solve the
// dual as its own LP (see DESIGN.md). The dual's own standard form splits
// the free variable y into y=yplus-yminus and adds one slack per
// constraint; solving it is a second, independent Simplex call.
//
// Returns nil (never fatal) if the dual solve itself fails; a missing dual
// degrades to an all-zero marginal price for this week rather than
// aborting the solve that already has a usable primal answer.
func rowDuals(sf standardForm, nOrigRows int) []float64 {
	totalRows, nVar := sf.A.Dims()
	if totalRows == 0 || nVar == 0 {
		return nil
	}

	// Dual standard form variables: [yplus(totalRows) | yminus(totalRows) | slack(nVar)].
	dualVars := 2*totalRows + nVar
	dualA := mat.NewDense(nVar, dualVars, nil)
	dualB := make([]float64, nVar)
	dualC := make([]float64, dualVars)

	for j := 0; j < nVar; j++ {
		dualB[j] = sf.c[j]
		dualA.Set(j, 2*totalRows+j, 1)
	}
	for k := 0; k < totalRows; k++ {
		dualC[k] = -sf.b[k]
		dualC[totalRows+k] = sf.b[k]
		for j := 0; j < nVar; j++ {
			coeff := sf.A.At(k, j)
			if coeff == 0 {
				continue
			}
			dualA.Set(j, k, coeff)
			dualA.Set(j, totalRows+k, -coeff)
		}
	}

	_, y, err := lp.Simplex(dualC, dualA, dualB, 0, nil)
	if err != nil || len(y) < 2*totalRows {
		return nil
	}

	duals := make([]float64, nOrigRows)
	for k := 0; k < nOrigRows && k < totalRows; k++ {
		duals[k] = y[k] - y[totalRows+k]
	}
	return duals
}
