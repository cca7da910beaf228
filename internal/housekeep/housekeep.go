// Package housekeep periodically garbage-collects old export artifacts
// (matrix dumps, infeasibility reports) from the local data directory,
// grounded on the teacher's cron-driven scheduler pattern.
package housekeep

import (
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Janitor removes files older than MaxAge from Dir on a cron schedule.
type Janitor struct {
	Dir    string
	MaxAge time.Duration
	log    zerolog.Logger
	cron   *cron.Cron
}

// New builds a Janitor that has not yet started running.
func New(dir string, maxAge time.Duration, log zerolog.Logger) *Janitor {
	return &Janitor{
		Dir:    dir,
		MaxAge: maxAge,
		log:    log.With().Str("component", "housekeep").Logger(),
		cron:   cron.New(),
	}
}

// Start schedules a sweep at spec (standard 5-field cron syntax) and
// returns immediately; the cron library runs sweeps on its own goroutine.
func (j *Janitor) Start(spec string) error {
	_, err := j.cron.AddFunc(spec, j.sweepAndLog)
	if err != nil {
		return err
	}
	j.cron.Start()
	return nil
}

// Stop halts the schedule and waits for any in-flight sweep to finish.
func (j *Janitor) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
}

func (j *Janitor) sweepAndLog() {
	removed, err := j.Sweep()
	if err != nil {
		j.log.Error().Err(err).Msg("housekeeping sweep failed")
		return
	}
	j.log.Info().Int("removed", removed).Msg("housekeeping sweep complete")
}

// Sweep deletes every regular file under Dir whose modification time is
// older than MaxAge, returning the count removed.
func (j *Janitor) Sweep() (int, error) {
	cutoff := time.Now().Add(-j.MaxAge)
	removed := 0

	err := filepath.Walk(j.Dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return removed, err
	}
	return removed, nil
}
