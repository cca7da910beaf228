// Package driver orchestrates one week's full solve: assemble, solve pass
// 1 (relaxed or integer per Options), run the thermal heuristic, assemble
// again, solve pass 2 (always continuous), then run HydroRemix over the
// solved hydro trajectory. Grounded on the teacher's queue.Scheduler
// lifecycle (component-scoped logger, explicit Start, WaitGroup-tracked
// goroutines) but single-shot rather than ticking, since one Problem is
// solved to completion per call.
package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/adequacy-core/internal/assemble"
	"github.com/aristath/adequacy-core/internal/domain"
	"github.com/aristath/adequacy-core/internal/errs"
	"github.com/aristath/adequacy-core/internal/groups/balance"
	"github.com/aristath/adequacy-core/internal/groups/binding"
	"github.com/aristath/adequacy-core/internal/groups/hydro"
	"github.com/aristath/adequacy-core/internal/groups/reserve"
	"github.com/aristath/adequacy-core/internal/groups/ststorage"
	"github.com/aristath/adequacy-core/internal/groups/thermal"
	"github.com/aristath/adequacy-core/internal/heuristic"
	"github.com/aristath/adequacy-core/internal/indexmaps"
	"github.com/aristath/adequacy-core/internal/lpmatrix"
	"github.com/aristath/adequacy-core/internal/remix"
	"github.com/aristath/adequacy-core/internal/snapshot"
	"github.com/aristath/adequacy-core/internal/solver"
	"github.com/aristath/adequacy-core/internal/sysmetrics"
	"github.com/aristath/adequacy-core/internal/varkind"
	"github.com/aristath/adequacy-core/internal/weekly"
)

// ResultWriter persists one week's solve outcome; resultstore.Store
// implements this against sqlite.
type ResultWriter interface {
	WriteWeek(ctx context.Context, p *weekly.Problem) error
}

// Observer is notified as a week moves through assembly/solve/remix;
// observer.Broadcaster implements this over a websocket.
type Observer interface {
	Notify(event string, p *weekly.Problem)
}

// Archiver ships export artifacts off-box; archive.Store implements this
// against S3-compatible storage. Optional: a nil Archiver just means
// export_mps/export_structure stay local (or are skipped, if no exportDir
// either).
type Archiver interface {
	UploadMPS(ctx context.Context, year, week int, runID string, data []byte) error
	UploadInfeasibilityReport(ctx context.Context, year, week int, runID string, data []byte) error
}

// Driver solves one weekly.Problem at a time.
type Driver struct {
	log       zerolog.Logger
	writer    ResultWriter
	observer  Observer
	archiver  Archiver
	exportDir string
}

// New returns a Driver. writer and observer may be nil (no persistence, no
// streaming), which is the common case for tests.
func New(log zerolog.Logger, writer ResultWriter, observer Observer) *Driver {
	return &Driver{
		log:      log.With().Str("component", "weekly_driver").Logger(),
		writer:   writer,
		observer: observer,
	}
}

// SetArchiver attaches an optional off-box export destination (spec §6
// export_mps / export_structure, when the deployment has object storage
// configured).
func (d *Driver) SetArchiver(a Archiver) *Driver {
	d.archiver = a
	return d
}

// SetExportDir attaches an optional local directory for export_structure
// and export_raw_results dumps. Without it, those two dumps are skipped;
// the archiver is not used for them.
func (d *Driver) SetExportDir(dir string) *Driver {
	d.exportDir = dir
	return d
}

// SolveWeek runs the full size -> emit -> bounds/costs/rhs -> solve pass 1
// -> heuristic -> solve pass 2 -> remix pipeline against p, which must
// already have been Reinit'd by the caller for this week. A panic raised
// by an inconsistent_sizing or internal failure deep in assembly is
// recovered here and turned into a regular error (spec §7: those two kinds
// are "always fatal" but are never allowed to crash the process outside
// this boundary).
func (d *Driver) SolveWeek(ctx context.Context, p *weekly.Problem) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic during week %d/%d assembly: %v", errs.ErrInternal, p.Year, p.Week, r)
			d.log.Error().Interface("panic", r).Int("year", p.Year).Int("week", p.Week).Msg("weekly solve panicked")
		}
	}()

	horizon := p.HorizonHours()
	d.notify("assembling", p)

	if err := assembleMatrix(p, horizon); err != nil {
		return fmt.Errorf("weekly assemble pass 1: %w", err)
	}
	d.exportStructure(p)

	pass1Start := time.Now()
	pass1Timer := sysmetrics.NewTimer("pass1", d.log)
	out1, err := solver.Solve(ctx, p.Matrix, solver.Options{
		Integer:   p.Options.IntegerVariables,
		TimeLimit: p.Options.SolverTimeLimit,
	}, d.log)
	pass1Timer.Stop()
	p.Pass1.SolveTime = time.Since(pass1Start)
	if err != nil {
		p.Pass1.Status = statusFor(err)
		d.log.Error().Err(err).Msg("pass 1 solve failed")
		d.exportOnFailure(ctx, p, err)
		if !p.Options.BestEffort {
			return fmt.Errorf("weekly solve pass 1: %w", err)
		}
		return nil
	}
	p.Pass1.Status = weekly.StatusOptimal
	p.Pass1.ObjValue = out1.ObjValue
	p.Primal = out1.Primal
	writeBackUnitsOn(p, out1.Primal)
	d.exportRaw(p, "pass1")

	d.notify("pass1_solved", p)

	heuristic.ApplyMinStablePower(p.Areas, horizon)
	heuristic.ExpandMinUpDown(p.Areas, horizon)

	p.Maps.Reset()
	p.Matrix.Reset()
	if err := assembleMatrix(p, horizon); err != nil {
		return fmt.Errorf("weekly assemble pass 2: %w", err)
	}

	pass2Start := time.Now()
	pass2Timer := sysmetrics.NewTimer("pass2", d.log)
	out2, err := solver.Solve(ctx, p.Matrix, solver.Options{
		Integer:   false,
		TimeLimit: p.Options.SolverTimeLimit,
	}, d.log)
	pass2Timer.Stop()
	p.Pass2.SolveTime = time.Since(pass2Start)
	if err != nil {
		p.Pass2.Status = statusFor(err)
		d.log.Error().Err(err).Msg("pass 2 solve failed")
		d.exportOnFailure(ctx, p, err)
		if !p.Options.BestEffort {
			return fmt.Errorf("weekly solve pass 2: %w", err)
		}
		return nil
	}
	p.Pass2.Status = weekly.StatusOptimal
	p.Pass2.ObjValue = out2.ObjValue
	p.Primal = out2.Primal
	p.Dual = out2.Dual
	p.Matrix.WriteBack(out2.Primal, out2.Dual)
	d.exportRaw(p, "pass2")

	d.notify("pass2_solved", p)

	if err := d.remixHydro(p, horizon); err != nil {
		d.log.Warn().Err(err).Msg("hydro remix skipped")
	} else {
		d.notify("remixed", p)
	}

	if p.Options.ExportMPS == weekly.ExportAlways {
		d.exportMPS(ctx, p)
	}

	if d.writer != nil {
		if err := d.writer.WriteWeek(ctx, p); err != nil {
			d.log.Warn().Err(err).Msg("result write failed")
		}
	}
	d.notify("week_complete", p)
	return nil
}

func assembleMatrix(p *weekly.Problem, horizon int) error {
	cols, rows := p.Maps.Columns, p.Maps.Rows

	domain.EnsureResults(p.Areas, p.Interconnections, p.BindingConstraints, horizon)

	sizeUp := func(b *lpmatrix.Builder) {
		thermal.Build(b, cols, rows, p.Areas, horizon)
		hydro.Build(b, cols, rows, p.Areas, horizon)
		ststorage.Build(b, cols, rows, p.Areas, horizon)
		reserve.Build(b, cols, rows, p.Areas, horizon)
		balance.Build(b, cols, rows, p.Areas, p.Interconnections, horizon)
		binding.Build(b, cols, rows, p.BindingConstraints, horizon)
	}

	sizeUp(lpmatrix.NewSizingBuilder(p.Matrix))
	p.Matrix.SetColumnCount(cols.Len())
	p.Matrix.Freeze()
	cols.Freeze()
	rows.Freeze()

	emit := lpmatrix.NewEmitBuilder(p.Matrix)
	sizeUp(emit)
	if err := emit.Validate(); err != nil {
		return err
	}

	assemble.Bounds(p.Matrix, cols, p.Areas, p.Interconnections, horizon, p.Options.IntegerVariables)
	assemble.Costs(p.Matrix, cols, p.Areas, horizon)
	assemble.RHS(p.Matrix, rows, p.Areas, p.BindingConstraints, horizon)
	return nil
}

// exportStructure writes the CSR index and column/row name map for post-
// mortem inspection (spec §6 export_structure) once assembly completes, so
// it's available even if the solve itself fails.
func (d *Driver) exportStructure(p *weekly.Problem) {
	if !p.Options.ExportStructure || d.exportDir == "" {
		return
	}
	path := fmt.Sprintf("%s/%04d_%02d_%s_structure.txt", d.exportDir, p.Year, p.Week, p.RunID.String())
	if err := snapshot.WriteText(path, p); err != nil {
		d.log.Warn().Err(err).Msg("export_structure write failed")
	}
}

// exportRaw dumps the primal/dual vectors produced by one pass (spec §6
// export_raw_results) to a local binary snapshot.
func (d *Driver) exportRaw(p *weekly.Problem, tag string) {
	if !p.Options.ExportRawResults || d.exportDir == "" {
		return
	}
	path := fmt.Sprintf("%s/%04d_%02d_%s_%s.bin", d.exportDir, p.Year, p.Week, p.RunID.String(), tag)
	if err := snapshot.WriteBinary(path, p); err != nil {
		d.log.Warn().Err(err).Msg("export_raw_results write failed")
	}
}

// exportMPS renders and ships a full MPS dump of the assembled matrix (spec
// §6 export_mps: "a portable textual form for external inspection").
func (d *Driver) exportMPS(ctx context.Context, p *weekly.Problem) {
	data := snapshot.FormatMPS(p)
	if d.exportDir != "" {
		path := fmt.Sprintf("%s/%04d_%02d_%s.mps", d.exportDir, p.Year, p.Week, p.RunID.String())
		if err := os.WriteFile(path, data, 0644); err != nil {
			d.log.Warn().Err(err).Msg("export_mps local write failed")
		}
	}
	if d.archiver != nil {
		if err := d.archiver.UploadMPS(ctx, p.Year, p.Week, p.RunID.String(), data); err != nil {
			d.log.Warn().Err(err).Msg("export_mps upload failed")
		}
	}
}

// exportOnFailure triggers the infeasibility post-mortem dump (spec §4.9:
// "infeasibility triggers an optional matrix dump for post-mortem") when
// export_mps is set to on_error or always.
func (d *Driver) exportOnFailure(ctx context.Context, p *weekly.Problem, solveErr error) {
	if p.Options.ExportMPS == weekly.ExportNone {
		return
	}
	d.exportMPS(ctx, p)
	if d.archiver == nil {
		return
	}
	report := []byte(fmt.Sprintf("year=%d week=%d run_id=%s error=%v\n", p.Year, p.Week, p.RunID, solveErr))
	if err := d.archiver.UploadInfeasibilityReport(ctx, p.Year, p.Week, p.RunID.String(), report); err != nil {
		d.log.Warn().Err(err).Msg("infeasibility report upload failed")
	}
}

// remixHydro runs HydroRemix over every area's solved hydro trajectory
// (spec §4.7, §4.8 "an in-memory post-solve 'remix hydro' redispatch").
// G is read back as the area's total solved thermal dispatch; S is the
// area's solved spillage (an already-spilled must-run floor) and DTGMrg
// the area's thermal headroom (EffectivePmax*N(t) - P(t) summed over
// clusters), since neither is carried as its own LP column.
func (d *Driver) remixHydro(p *weekly.Problem, horizon int) error {
	cols := p.Maps.Columns
	primal := p.Primal

	get := func(kind string, id, t int) float64 {
		idx := cols.Get(indexmaps.Key{Kind: kind, EntityID: id, Timestep: t})
		if idx == indexmaps.Unset || idx >= len(primal) {
			return 0
		}
		return primal[idx]
	}

	for _, area := range p.Areas {
		r := area.HydroReservoir
		if r == nil {
			continue
		}
		aid := area.GlobalIndex

		in := remix.Input{
			G:         make([]float64, horizon),
			H:         make([]float64, horizon),
			D:         make([]float64, horizon),
			Pmax:      sliceOrZero(r.PmaxTurbineMW, horizon),
			Pmin:      sliceOrZero(r.MinGeneration, horizon),
			InitLevel: r.InitialLevelMWh,
			Capacity:  r.CapacityMWh,
			Inflow:    sliceOrZero(r.InflowMWh, horizon),
			Overflow:  make([]float64, horizon),
			Pump:      make([]float64, horizon),
			S:         make([]float64, horizon),
			DTGMrg:    make([]float64, horizon),
		}

		for t := 0; t < horizon; t++ {
			in.H[t] = get(varkind.ColHydroTurbine, aid, t)
			in.D[t] = get(varkind.ColAreaShortage, aid, t)
			in.Overflow[t] = get(varkind.ColHydroOverflow, aid, t)
			in.Pump[t] = get(varkind.ColHydroPump, aid, t)
			in.S[t] = get(varkind.ColAreaSpillage, aid, t)

			var thermal, headroom float64
			for _, c := range area.ThermalClusters {
				power := get(varkind.ColThermalPower, c.GlobalIndex, t)
				units := get(varkind.ColThermalUnitsOn, c.GlobalIndex, t)
				thermal += power
				headroom += c.EffectivePmax(t)*units - power
			}
			in.G[t] = thermal
			in.DTGMrg[t] = headroom
		}

		out, err := remix.Run(in)
		if err != nil {
			return fmt.Errorf("remix area %s: %w", area.Name, err)
		}
		r.RemixedTurbineMW = out.H
		r.RemixedLevelMWh = out.Level
		for t := 0; t < horizon; t++ {
			idx := cols.Get(indexmaps.Key{Kind: varkind.ColAreaShortage, EntityID: aid, Timestep: t})
			if idx != indexmaps.Unset && idx < len(p.Primal) {
				p.Primal[idx] = out.D[t]
			}
		}
	}
	return nil
}

func sliceOrZero(s []float64, n int) []float64 {
	if len(s) >= n {
		return s[:n]
	}
	out := make([]float64, n)
	copy(out, s)
	return out
}

func writeBackUnitsOn(p *weekly.Problem, primal []float64) {
	cols := p.Maps.Columns
	horizon := p.HorizonHours()
	for _, area := range p.Areas {
		for _, c := range area.ThermalClusters {
			solved := make([]float64, horizon)
			for t := 0; t < horizon; t++ {
				idx := cols.Get(indexmaps.Key{Kind: varkind.ColThermalUnitsOn, EntityID: c.GlobalIndex, Timestep: t})
				if idx != indexmaps.Unset && idx < len(primal) {
					solved[t] = primal[idx]
				}
			}
			c.UnitsOnSolved = solved
		}
	}
}

func statusFor(err error) weekly.Status {
	switch {
	case errors.Is(err, errs.ErrSolverInfeasible):
		return weekly.StatusInfeasible
	case errors.Is(err, errs.ErrSolverUnbounded):
		return weekly.StatusUnbounded
	case errors.Is(err, errs.ErrSolverTimeLimit):
		return weekly.StatusTimeLimit
	default:
		return weekly.StatusNumericalFailure
	}
}

func (d *Driver) notify(event string, p *weekly.Problem) {
	if d.observer != nil {
		d.observer.Notify(event, p)
	}
}
