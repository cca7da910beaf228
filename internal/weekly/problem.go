// Package weekly holds WeeklyProblem, the long-lived per-worker state
// container that is reused across simulated weeks via Reset (spec §3,
// component #12). WeeklyProblem owns the LpMatrix, the index maps and the
// result vectors exclusively; constraint groups only ever borrow a
// *lpmatrix.Builder plus the small per-group context slice they need (spec
// §9: "no back-edges").
package weekly

import (
	"time"

	"github.com/google/uuid"

	"github.com/aristath/adequacy-core/internal/domain"
	"github.com/aristath/adequacy-core/internal/indexmaps"
	"github.com/aristath/adequacy-core/internal/lpmatrix"
	"github.com/aristath/adequacy-core/internal/nametag"
)

// Horizon selects the optimization horizon length.
type Horizon int

const (
	HorizonDaily  Horizon = 24
	HorizonWeekly Horizon = 168
)

// Options mirrors the process-interface option enumeration from spec §6.
type Options struct {
	OptimizationHorizon Horizon
	StartupCosts        bool
	IntegerVariables    bool
	WaterValueAccurate  bool
	ExportMPS           ExportMode
	ExportStructure     bool
	ExportRawResults    bool
	AdequacyPatch       bool
	BestEffort          bool
	SolverTimeLimit     time.Duration
}

// ExportMode controls when the MPS matrix dump is produced.
type ExportMode int

const (
	ExportNone ExportMode = iota
	ExportOnError
	ExportAlways
)

// Status summarizes one pass's solver outcome.
type Status int

const (
	StatusNotRun Status = iota
	StatusOptimal
	StatusInfeasible
	StatusUnbounded
	StatusTimeLimit
	StatusNumericalFailure
)

// PassResult captures one solve pass's bookkeeping (spec §3 "solve times,
// best costs of pass 1 & 2").
type PassResult struct {
	Status      Status
	ObjValue    float64
	SolveTime   time.Duration
	UpdateTime  time.Duration
}

// Problem is the per-week container. Created once per worker, reset at
// each week boundary (spec §5: single-threaded per weekly problem, no
// shared mutable state between workers).
type Problem struct {
	RunID uuid.UUID

	Year int
	Week int

	Areas               []*domain.Area
	Interconnections    []*domain.Interconnection
	BindingConstraints  []*domain.BindingConstraint

	Horizon Horizon

	Maps   *indexmaps.Maps
	Matrix *lpmatrix.Matrix
	Tagger *nametag.Tagger

	Options Options

	Pass1 PassResult
	Pass2 PassResult

	// Primal/dual/reduced-cost/basis are populated by the SolverDriver and
	// consumed via Matrix's back-pointers in WriteBack; they're kept here
	// too so exports (export_raw_results) can dump the raw vectors.
	Primal       []float64
	Dual         []float64
	ReducedCosts []float64
	Basis        []int
}

// New creates a Problem for one worker. The entity slices (areas,
// interconnections, binding constraints) are supplied once by the caller
// and are not owned by Problem — they belong to the surrounding study and
// stay constant for the run's lifetime.
func New(areas []*domain.Area, interconnections []*domain.Interconnection, binding []*domain.BindingConstraint, opts Options) *Problem {
	return &Problem{
		Areas:              areas,
		Interconnections:   interconnections,
		BindingConstraints: binding,
		Options:            opts,
		Maps:               indexmaps.NewMaps(),
		Matrix:             lpmatrix.New(),
		Tagger:             nametag.New(opts.ExportStructure || opts.ExportRawResults),
	}
}

// Reinit resets per-week state ahead of assembling a new week's LP: new
// run id, fresh index maps, fresh matrix, fresh name vectors. Entity
// pointers and Options survive.
func (p *Problem) Reinit(year, week int, horizon Horizon) {
	p.RunID = uuid.New()
	p.Year = year
	p.Week = week
	p.Horizon = horizon
	p.Maps.Reset()
	p.Matrix.Reset()
	p.Tagger.Reset()
	p.Tagger = p.Tagger.WithRunID(p.RunID)
	p.Pass1 = PassResult{}
	p.Pass2 = PassResult{}
	p.Primal = nil
	p.Dual = nil
	p.ReducedCosts = nil
	p.Basis = nil
}

// HorizonHours returns the number of timesteps in the current pass.
func (p *Problem) HorizonHours() int {
	return int(p.Horizon)
}
