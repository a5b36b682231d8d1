// Package observability exposes a point-in-time snapshot of the running
// process for the status command and the debug page.
package observability

import (
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/process"
)

// Status aggregates process-level figures for display.
type Status struct {
	RSSMb      float64   `json:"rss_mb"`
	CPUPercent float64   `json:"cpu_percent"`
	AllocMemMb uint64    `json:"alloc_mem_mb"`
	NumGC      uint32    `json:"num_gc"`
	Goroutines int       `json:"goroutines"`
	StartedAt  time.Time `json:"started_at"`
	Uptime     string    `json:"uptime"`
}

type Monitor struct {
	log       *slog.Logger
	proc      *process.Process
	startedAt time.Time
}

func NewMonitor(log *slog.Logger) *Monitor {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Warn("process self-inspection unavailable", "error", err)
	}
	return &Monitor{log: log, proc: proc, startedAt: time.Now()}
}

// Snapshot collects current process figures. OS-level probes that fail
// leave their fields at zero rather than erroring the whole snapshot.
func (m *Monitor) Snapshot() Status {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	status := Status{
		AllocMemMb: memStats.Alloc / 1024 / 1024,
		NumGC:      memStats.NumGC,
		Goroutines: runtime.NumGoroutine(),
		StartedAt:  m.startedAt,
		Uptime:     time.Since(m.startedAt).Round(time.Second).String(),
	}

	if m.proc != nil {
		if mem, err := m.proc.MemoryInfo(); err == nil {
			status.RSSMb = float64(mem.RSS) / 1024 / 1024
		}
		if cpu, err := m.proc.CPUPercent(); err == nil {
			status.CPUPercent = cpu
		}
	}
	return status
}

// Fields renders the snapshot as a loose map for the debug page stats
// provider.
func (m *Monitor) Fields() map[string]any {
	s := m.Snapshot()
	return map[string]any{
		"RSS (MB)":   s.RSSMb,
		"CPU (%)":    s.CPUPercent,
		"Alloc (MB)": s.AllocMemMb,
		"GC cycles":  s.NumGC,
		"Goroutines": s.Goroutines,
		"Uptime":     s.Uptime,
	}
}
