package sink

import (
	"context"
	"log/slog"
	"whatsapp-clone/contract"
	"whatsapp-clone/domain/event"
)

var _ contract.EventSink = (*StreamSink)(nil)

// StreamSink buffers the events of one live session.
// Consume is called by fanout, the gRPC handler owning the stream drains Events.
type StreamSink struct {
	Events chan event.DomainEvent
	log    *slog.Logger
}

func NewStreamSink(log *slog.Logger, bufferSize int) *StreamSink {
	return &StreamSink{Events: make(chan event.DomainEvent, bufferSize), log: log}
}

// Consume waits for room in the buffer until the delivery deadline of ctx.
func (s *StreamSink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		s.log.Warn("Stream buffer full, event lost", "error", ctx.Err())
		return ctx.Err()
	}
}
