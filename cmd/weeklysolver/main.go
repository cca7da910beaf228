// Command weeklysolver is the process entry point around the weekly
// optimization core (spec §6: "the core exposes one entry point
// solve_week(weekly_problem, options, result_writer, observer)"). It wires
// configuration, logging, the sqlite result store, the websocket observer
// and periodic export-artifact housekeeping the way the teacher's
// cmd/server/main.go wires its own database/service/server stack, then
// solves one synthetic demonstration week end to end.
//
// A real deployment replaces demoStudy with areas/interconnections/binding
// constraints loaded by the out-of-scope collaborators spec §1 names (INI/
// YAML/time-series loaders, the model-library parser) and calls SolveWeek
// once per simulated week instead of once at startup.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/aristath/adequacy-core/internal/archive"
	"github.com/aristath/adequacy-core/internal/config"
	"github.com/aristath/adequacy-core/internal/domain"
	"github.com/aristath/adequacy-core/internal/driver"
	"github.com/aristath/adequacy-core/internal/housekeep"
	"github.com/aristath/adequacy-core/internal/logging"
	"github.com/aristath/adequacy-core/internal/observer"
	"github.com/aristath/adequacy-core/internal/reliability"
	"github.com/aristath/adequacy-core/internal/resultstore"
	"github.com/aristath/adequacy-core/internal/weekly"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New(logging.Config{Level: "info", Pretty: true}).Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logging.New(logging.Config{Level: cfg.LogLevel, Pretty: cfg.DevMode})
	log.Info().Str("data_dir", cfg.DataDir).Msg("starting weekly solver")

	store, err := resultstore.Open(cfg.DataDir + "/weekly_results.db")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open result store")
	}
	defer store.Close()

	broadcaster := observer.New(log)
	httpServer := &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.Port),
		Handler: broadcaster.Router(),
	}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("observer http server stopped")
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	janitor := housekeep.New(cfg.DataDir, 30*24*time.Hour, log)
	if err := janitor.Start("0 3 * * *"); err != nil {
		log.Warn().Err(err).Msg("failed to start export-artifact housekeeping")
	} else {
		defer janitor.Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d := driver.New(log, store, broadcaster).SetExportDir(cfg.DataDir)
	if cfg.S3Bucket != "" {
		archiveStore, err := archive.New(ctx, cfg.S3Region, cfg.S3Bucket, log)
		if err != nil {
			log.Warn().Err(err).Msg("archive store unavailable, export artifacts stay local")
		} else {
			d.SetArchiver(archiveStore)
		}
	}

	areas, interconnections, binding := demoStudy()
	p := weekly.New(areas, interconnections, binding, weekly.Options{
		OptimizationHorizon: weekly.HorizonDaily,
		IntegerVariables:    true,
		SolverTimeLimit:     cfg.SolverTimeLimit,
		BestEffort:          true,
		ExportStructure:     true,
		ExportMPS:           weekly.ExportOnError,
	})

	year, week := 2026, 31
	p.Reinit(year, week, p.Options.OptimizationHorizon)

	err = reliability.WithTimeLimitRetry(ctx, log, func(ctx context.Context, limit time.Duration) error {
		p.Options.SolverTimeLimit = limit
		return d.SolveWeek(ctx, p)
	}, cfg.SolverTimeLimit, 4*cfg.SolverTimeLimit, 3)

	if err != nil {
		log.Error().Err(err).Int("year", year).Int("week", week).Msg("weekly solve failed")
		os.Exit(1)
	}

	log.Info().
		Str("pass1_status", statusName(p.Pass1.Status)).
		Str("pass2_status", statusName(p.Pass2.Status)).
		Float64("pass2_objective", p.Pass2.ObjValue).
		Msg("weekly solve complete")
}

// demoStudy returns a single-area, single-thermal-cluster study, just
// enough for SolveWeek to exercise the full assemble/solve/remix pipeline
// without a file loader. Production callers supply the real study.
func demoStudy() ([]*domain.Area, []*domain.Interconnection, []*domain.BindingConstraint) {
	cluster := &domain.ThermalCluster{
		Area:               "demo",
		Name:               "ccgt1",
		MinStablePowerMW:   5,
		MinUpTimeHours:     2,
		MinDownTimeHours:   2,
		NominalCapacityMW:  80,
		MarginalCostPerMWh: 42,
		StartupCost:        500,
		AvailableUnits:     constantSeries(1, 24),
		GlobalIndex:        0,
	}
	area := &domain.Area{
		GlobalIndex:        0,
		Name:               "demo",
		Demand:             []float64{30, 28, 26, 25, 24, 26, 35, 48, 55, 58, 56, 54, 52, 53, 55, 58, 62, 68, 64, 56, 48, 40, 35, 32},
		ShortageCostPerMWh: 10000,
		SurplusCostPerMWh:  1,
		ThermalClusters:    []*domain.ThermalCluster{cluster},
	}
	return []*domain.Area{area}, nil, nil
}

func constantSeries(v float64, n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = v
	}
	return s
}

func statusName(s weekly.Status) string {
	switch s {
	case weekly.StatusOptimal:
		return "optimal"
	case weekly.StatusInfeasible:
		return "infeasible"
	case weekly.StatusUnbounded:
		return "unbounded"
	case weekly.StatusTimeLimit:
		return "time_limit"
	case weekly.StatusNumericalFailure:
		return "numerical_failure"
	default:
		return "not_run"
	}
}

