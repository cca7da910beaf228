// Package errs defines the error kinds shared across the weekly optimization
// core, as sentinel values that callers can match with errors.Is.
package errs

import "errors"

// Sentinel error kinds. Every error surfaced by this module wraps one of
// these with fmt.Errorf("...: %w", ...) so it carries structural context
// (week, area, cluster, reserve, timestep) while remaining matchable.
var (
	// ErrInvalidInput marks configuration that cannot make a model: an
	// unknown cluster referenced, an hour out of range, conflicting bounds.
	ErrInvalidInput = errors.New("invalid_input")

	// ErrInconsistentSizing marks a sizing pass / emit pass disagreement on
	// non-zeros or rows. Always fatal; never retried.
	ErrInconsistentSizing = errors.New("inconsistent_sizing")

	// ErrSolverInfeasible, ErrSolverUnbounded, ErrSolverTimeLimit and
	// ErrSolverNumerical are the solver failure kinds from spec §4.9.
	ErrSolverInfeasible = errors.New("solver_infeasible")
	ErrSolverUnbounded  = errors.New("solver_unbounded")
	ErrSolverTimeLimit  = errors.New("solver_time_limit")
	ErrSolverNumerical  = errors.New("solver_numerical")

	// ErrIO marks a result-writer failure.
	ErrIO = errors.New("io_error")

	// ErrInternal is the sentinel for unreachable paths.
	ErrInternal = errors.New("internal")
)
