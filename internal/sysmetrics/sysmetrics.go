// Package sysmetrics samples process CPU and memory usage around a solve
// call, in the teacher's Timer style: a value created at the start of an
// operation, stopped at the end, logging a warning if the operation ran
// long or consumed unexpectedly much memory.
package sysmetrics

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/process"
)

// Sample is one point-in-time reading of the current process's resource
// usage.
type Sample struct {
	CPUPercent float64
	RSSBytes   uint64
}

// Timer measures one solve call's wall time plus the RSS delta across it,
// logging a warning if either crosses a threshold worth noticing.
type Timer struct {
	name    string
	start   time.Time
	startRSS uint64
	log     zerolog.Logger
}

// NewTimer starts measuring name. Sampling failures are logged and
// otherwise ignored — metrics are observability, never a reason to fail a
// solve.
func NewTimer(name string, log zerolog.Logger) *Timer {
	t := &Timer{name: name, start: time.Now(), log: log}
	if s, err := currentProcessSample(); err == nil {
		t.startRSS = s.RSSBytes
	}
	return t
}

// Stop reports the elapsed duration and RSS delta, logging a warning if
// the operation took unusually long or grew memory unusually much.
func (t *Timer) Stop() (time.Duration, int64) {
	duration := time.Since(t.start)
	var rssDelta int64

	if s, err := currentProcessSample(); err == nil {
		rssDelta = int64(s.RSSBytes) - int64(t.startRSS)
	}

	ev := t.log.Debug().Str("operation", t.name).Dur("duration", duration).Int64("rss_delta_bytes", rssDelta)
	ev.Msg("solve resource usage")

	if duration > 30*time.Second {
		t.log.Warn().Str("operation", t.name).Dur("duration", duration).Msg("slow solve detected (>30s)")
	}
	if rssDelta > 512*1024*1024 {
		t.log.Warn().Str("operation", t.name).Int64("rss_delta_bytes", rssDelta).Msg("large memory growth during solve")
	}

	return duration, rssDelta
}

func currentProcessSample() (Sample, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return Sample{}, err
	}
	cpu, err := p.CPUPercent()
	if err != nil {
		return Sample{}, err
	}
	mem, err := p.MemoryInfo()
	if err != nil {
		return Sample{}, err
	}
	return Sample{CPUPercent: cpu, RSSBytes: mem.RSS}, nil
}
