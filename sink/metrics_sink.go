package sink

import (
	"context"
	"whatsapp-clone/contract"
	"whatsapp-clone/domain/event"
	"whatsapp-clone/observability"
)

var _ contract.EventSink = MetricsSink{}

// MetricsSink counts the traffic shown on the debug dashboard.
type MetricsSink struct {
	monitoring *observability.MonitoringManager
}

func NewMetricsSink(monitoring *observability.MonitoringManager) MetricsSink {
	return MetricsSink{monitoring: monitoring}
}

func (s MetricsSink) Consume(_ context.Context, e event.DomainEvent) error {
	switch e.(type) {
	case event.MessagePosted:
		s.monitoring.IncrMessagesPosted()
	case event.ChatCreated:
		s.monitoring.IncrChatsCreated()
	case event.ChatDeleted:
		s.monitoring.IncrChatsDeleted()
	}
	return nil
}
