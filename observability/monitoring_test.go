package observability_test

import (
	"log/slog"
	"testing"
	"whatsapp-clone/observability"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestMonitoringManager(t *testing.T) {
	req := require.New(t)
	mm := observability.NewMonitoringManager(logs.GetLoggerFromLevel(slog.LevelDebug))

	// Given some traffic
	mm.IncrMessagesPosted()
	mm.IncrMessagesPosted()
	mm.IncrChatsCreated()

	// When a sample is recorded
	mm.Update(observability.Sample{
		CPUPercent:     12.5,
		RSSBytes:       2048,
		Status:         "R",
		ActiveSessions: 3,
		Channels:       []observability.ChannelLoad{{Name: "commands", Length: 1, Capacity: 10}},
	})
	stats := mm.GetLatest()

	// Then counters and sample are merged
	req.Equal(uint64(2), stats.MessagesPosted)
	req.Equal(uint64(1), stats.ChatsCreated)
	req.Zero(stats.ChatsDeleted)
	req.Equal(3, stats.ActiveSessions)
	req.Equal(12.5, stats.CPUPercent)
	req.Len(stats.Channels, 1)
	req.Positive(stats.Goroutines)
	req.False(stats.SampledAt.IsZero())

	// And the returned snapshot is not shared
	stats.Channels[0].Length = 99
	req.Equal(1, mm.GetLatest().Channels[0].Length)
}
