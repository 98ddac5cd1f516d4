package workers

import (
	"context"
	"log/slog"
	"os"
	"time"
	"whatsapp-clone/observability"

	"github.com/shirou/gopsutil/process"
)

// HeartbeatWorker samples the health of the server process at a fixed interval:
// CPU, memory, live sessions and queue fill levels.
type HeartbeatWorker struct {
	log            *slog.Logger
	monitoring     *observability.MonitoringManager
	channels       []NamedChannel
	sessions       func() int
	metricInterval time.Duration
}

func NewHeartbeatWorker(
	log *slog.Logger,
	monitoring *observability.MonitoringManager,
	channels []NamedChannel,
	sessions func() int,
	metricInterval time.Duration,
) *HeartbeatWorker {
	return &HeartbeatWorker{
		log:            log,
		monitoring:     monitoring,
		channels:       channels,
		sessions:       sessions,
		metricInterval: metricInterval,
	}
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping heartbeat")
			return nil
		case <-ticker.C:
			w.monitoring.Update(w.sample(p))
		}
	}
}

func (w *HeartbeatWorker) sample(p *process.Process) observability.Sample {
	sample := observability.Sample{Channels: channelLoads(w.log, w.channels)}
	if w.sessions != nil {
		sample.ActiveSessions = w.sessions()
	}
	rss, cpu, status, err := getSelfStats(p)
	if err != nil {
		w.log.Error("Failed to collect self stats", "error", err)
		return sample
	}
	sample.RSSBytes = rss
	sample.CPUPercent = cpu
	sample.Status = status
	return sample
}

// getSelfStats retrieves technical metrics (Memory, CPU, and OS Status) for the given process.
func getSelfStats(p *process.Process) (uint64, float64, string, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, "", err
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, "", err
	}

	status, err := p.Status()
	if err != nil {
		return 0, 0, "", err
	}
	return memInfo.RSS, cpuPercent, status, nil
}
