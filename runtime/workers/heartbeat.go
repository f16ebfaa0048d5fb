package workers

import (
	"cam-guard/observability"
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// GraceCounter exposes how many grace periods are currently pending.
type GraceCounter interface {
	Len() int
}

// GatewayStatus reports whether the platform session is ready.
type GatewayStatus interface {
	Online() bool
}

type HeartbeatWorker struct {
	log      *slog.Logger
	interval time.Duration
	tracker  GraceCounter
	gateway  GatewayStatus
}

func NewHeartbeatWorker(log *slog.Logger, interval time.Duration, tracker GraceCounter, gateway GatewayStatus) *HeartbeatWorker {
	return &HeartbeatWorker{
		log:      log,
		interval: interval,
		tracker:  tracker,
		gateway:  gateway,
	}
}

// Run logs the guard's own health every interval and refreshes the gauges.
func (w *HeartbeatWorker) Run(ctx context.Context) error {
	w.log.Info("Starting heartbeat worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.beat(p)
		}
	}
}

func (w *HeartbeatWorker) beat(p *process.Process) {
	online := w.gateway.Online()
	pending := w.tracker.Len()
	observability.BoolGauge(observability.GatewayOnline, online)
	observability.GracePeriodsPending.Set(float64(pending))

	rss, cpu, err := selfStats(p)
	if err != nil {
		w.log.Warn("Failed to collect self stats", "err", err)
		return
	}
	w.log.Info("Heartbeat",
		"online", online,
		"pending_grace_periods", pending,
		"rss_bytes", rss,
		"cpu_percent", cpu)
}

// selfStats retrieves memory and CPU usage for the given process.
func selfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpuPercent, nil
}
