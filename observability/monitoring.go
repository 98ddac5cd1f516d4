// Package observability keeps the latest runtime health of the server for the debug dashboard.
package observability

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// ChannelLoad is the fill level of an internal queue at sampling time.
type ChannelLoad struct {
	Name     string `json:"name"`
	Length   int    `json:"length"`
	Capacity int    `json:"capacity"`
}

// Sample is what a health worker collects at each tick.
type Sample struct {
	CPUPercent     float64
	RSSBytes       uint64
	Status         string
	ActiveSessions int
	Channels       []ChannelLoad
}

// MonitoringStats aggregates every metric shown on the dashboard.
type MonitoringStats struct {
	// --- TRAFFIC ---
	MessagesPosted uint64 `json:"messages_posted"`
	ChatsCreated   uint64 `json:"chats_created"`
	ChatsDeleted   uint64 `json:"chats_deleted"`
	ActiveSessions int    `json:"active_sessions"`

	// --- PROCESS ---
	CPUPercent float64 `json:"cpu_percent"`
	RSSBytes   uint64  `json:"rss_bytes"`
	Status     string  `json:"status"`

	// --- GO RUNTIME ---
	AllocMemMb uint64        `json:"alloc_mem_mb"`
	NumGC      uint32        `json:"num_gc"`
	Goroutines int           `json:"goroutines"`
	Channels   []ChannelLoad `json:"channels"`
	SampledAt  time.Time     `json:"sampled_at"`
}

type MonitoringManager struct {
	log         *slog.Logger
	mu          sync.RWMutex
	latestStats MonitoringStats

	messagesPosted atomic.Uint64
	chatsCreated   atomic.Uint64
	chatsDeleted   atomic.Uint64
}

func NewMonitoringManager(log *slog.Logger) *MonitoringManager {
	return &MonitoringManager{log: log}
}

func (mm *MonitoringManager) IncrMessagesPosted() {
	mm.messagesPosted.Add(1)
}

func (mm *MonitoringManager) IncrChatsCreated() {
	mm.chatsCreated.Add(1)
}

func (mm *MonitoringManager) IncrChatsDeleted() {
	mm.chatsDeleted.Add(1)
}

// Update records a new sample along with the Go runtime memory statistics.
func (mm *MonitoringManager) Update(sample Sample) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.latestStats.CPUPercent = sample.CPUPercent
	mm.latestStats.RSSBytes = sample.RSSBytes
	mm.latestStats.Status = sample.Status
	mm.latestStats.ActiveSessions = sample.ActiveSessions
	mm.latestStats.Channels = sample.Channels
	mm.latestStats.AllocMemMb = m.Alloc / 1024 / 1024
	mm.latestStats.NumGC = m.NumGC
	mm.latestStats.Goroutines = runtime.NumGoroutine()
	mm.latestStats.SampledAt = time.Now().UTC()

	mm.log.Debug("Stats updated",
		"cpu_percent", sample.CPUPercent,
		"rss_bytes", sample.RSSBytes,
		"sessions", sample.ActiveSessions,
		"mem_mb", mm.latestStats.AllocMemMb,
	)
}

// GetLatest returns the last sample together with the live counters.
func (mm *MonitoringManager) GetLatest() MonitoringStats {
	mm.mu.RLock()
	stats := mm.latestStats
	mm.mu.RUnlock()
	stats.Channels = append([]ChannelLoad(nil), stats.Channels...)
	stats.MessagesPosted = mm.messagesPosted.Load()
	stats.ChatsCreated = mm.chatsCreated.Load()
	stats.ChatsDeleted = mm.chatsDeleted.Load()
	return stats
}
