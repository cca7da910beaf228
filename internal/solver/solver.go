// Package solver wraps gonum's simplex implementation to solve one week's
// frozen Matrix, optionally with a branch-and-bound layer over the
// integer-constrained unit-commitment columns (spec §3/§6 "two-pass
// solve": pass 1 integer-or-relaxed, pass 2 always continuous).
package solver

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/aristath/adequacy-core/internal/errs"
	"github.com/aristath/adequacy-core/internal/lpmatrix"
)

// Outcome mirrors weekly.Status but lives here to keep solver free of a
// dependency on the weekly package (no back-edges, spec §9).
type Outcome struct {
	Optimal      bool
	ObjValue     float64
	Primal       []float64
	Dual         []float64
	ReducedCosts []float64
	SolveTime    time.Duration
}

// Options configures one solve call.
type Options struct {
	Integer   bool
	TimeLimit time.Duration
}

// Solve runs gonum's simplex against m (which must be frozen) and, when
// opts.Integer is set, branches on every column flagged IsInteger until the
// search tree is exhausted or the time limit expires, returning the best
// integer-feasible incumbent found.
func Solve(ctx context.Context, m *lpmatrix.Matrix, opts Options, log zerolog.Logger) (Outcome, error) {
	started := time.Now()
	if opts.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.TimeLimit)
		defer cancel()
	}

	if !opts.Integer {
		out, err := solveRelaxation(m, nil, nil)
		out.SolveTime = time.Since(started)
		return out, err
	}

	out, err := branchAndBound(ctx, m, started)
	out.SolveTime = time.Since(started)
	log.Debug().Dur("solve_time", out.SolveTime).Float64("objective", out.ObjValue).Msg("integer solve finished")
	return out, err
}

// solveRelaxation solves the continuous relaxation of m, with lowerOverride/upperOverride
// optionally narrowing specific columns' bounds below/above normal (used by
// branch-and-bound to explore a subproblem without mutating m).
func solveRelaxation(m *lpmatrix.Matrix, lowerOverride, upperOverride map[int]float64) (Outcome, error) {
	original := buildStandardForm(m)
	sf := withOverrides(m, original, lowerOverride, upperOverride)

	c := sf.c
	obj, x, err := lp.Simplex(c, sf.A, sf.b, 0, nil)
	if err != nil {
		return Outcome{}, classify(err)
	}

	primal := sf.primal(x, m.NCols)
	objective := obj
	for i, cost := range m.Cost {
		objective += cost * sf.lowerShift[i]
	}

	dual := rowDuals(sf, m.NRows)

	return Outcome{Optimal: true, ObjValue: objective, Primal: primal, Dual: dual}, nil
}

func withOverrides(m *lpmatrix.Matrix, base standardForm, lower, upper map[int]float64) standardForm {
	if len(lower) == 0 && len(upper) == 0 {
		return base
	}
	clone := *m
	clone.XMin = append([]float64(nil), m.XMin...)
	clone.XMax = append([]float64(nil), m.XMax...)
	for col, v := range lower {
		clone.XMin[col] = v
	}
	for col, v := range upper {
		clone.XMax[col] = v
	}
	return buildStandardForm(&clone)
}

// classify maps gonum's untyped simplex errors onto the sentinel outcomes
// the rest of the system branches on. gonum's lp package doesn't export
// distinct error values, only error strings, so matching substrings is the
// only option short of vendoring our own simplex (see DESIGN.md).
func classify(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "infeasible"):
		return errs.ErrSolverInfeasible
	case strings.Contains(msg, "unbounded"):
		return errs.ErrSolverUnbounded
	default:
		return errs.ErrSolverNumerical
	}
}

// branchAndBound performs a depth-first, best-bound search over the
// IsInteger-flagged columns. It's intentionally simple (no cuts, no
// warm-starting between nodes) since the LP relaxations here are small
// per-week problems, not the kind of MIP that needs a dedicated solver.
func branchAndBound(ctx context.Context, m *lpmatrix.Matrix, started time.Time) (Outcome, error) {
	type node struct {
		lower, upper map[int]float64
	}

	best := Outcome{}
	haveIncumbent := false
	stack := []node{{}}

	for len(stack) > 0 {
		select {
		case <-ctx.Done():
			if haveIncumbent {
				return best, nil
			}
			return Outcome{}, errs.ErrSolverTimeLimit
		default:
		}

		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		out, err := solveRelaxation(m, n.lower, n.upper)
		if err != nil {
			continue // infeasible/unbounded branch, prune
		}
		if haveIncumbent && out.ObjValue >= best.ObjValue {
			continue // bound: can't beat the incumbent even if integral
		}

		col, frac := mostFractional(m, out.Primal, n.lower, n.upper)
		if col == -1 {
			best = out
			haveIncumbent = true
			continue
		}

		floorChild := node{lower: cloneMap(n.lower), upper: cloneMap(n.upper)}
		floorChild.upper[col] = math.Floor(frac)
		ceilChild := node{lower: cloneMap(n.lower), upper: cloneMap(n.upper)}
		ceilChild.lower[col] = math.Ceil(frac)

		stack = append(stack, floorChild, ceilChild)
	}

	if !haveIncumbent {
		return Outcome{}, errs.ErrSolverInfeasible
	}
	return best, nil
}

func mostFractional(m *lpmatrix.Matrix, primal []float64, lower, upper map[int]float64) (col int, value float64) {
	best := -1
	bestDist := 0.0
	for i, isInt := range m.IsInteger {
		if !isInt {
			continue
		}
		if lo, hasLo := lower[i]; hasLo {
			if hi, hasHi := upper[i]; hasHi && lo >= hi {
				continue // already pinned to a single integer value
			}
		}
		v := primal[i]
		frac := v - math.Floor(v)
		dist := math.Min(frac, 1-frac)
		if dist > 1e-6 && dist > bestDist {
			bestDist = dist
			best = i
			value = v
		}
	}
	return best, value
}

func cloneMap(m map[int]float64) map[int]float64 {
	if m == nil {
		return map[int]float64{}
	}
	out := make(map[int]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
