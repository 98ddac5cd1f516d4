package workers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"whatsapp-clone/contract"
	"whatsapp-clone/domain/event"
)

var _ contract.Worker = (*EventFanout)(nil)

// EventFanout broadcasts domain events to the permanent sinks and to the live sessions
// listening to the topics of the event.
//
// Permanent sinks (storage, presence) are consumed first and in order, so that a session
// notified of a message can already read it back. Live sessions are then served concurrently.
// Every delivery is bounded by the sink timeout: a slow stream never stalls the pipeline.
//
// It provides best-effort delivery with no retries. EventFanout is not a message broker.
type EventFanout struct {
	log            *slog.Logger
	permanentSinks []contract.EventSink
	registry       contract.IRegistry
	events         <-chan event.DomainEvent
	sinkTimeout    time.Duration
}

func NewEventFanout(log *slog.Logger,
	permanentSinks []contract.EventSink,
	registry contract.IRegistry,
	events <-chan event.DomainEvent,
	sinkTimeout time.Duration) *EventFanout {
	return &EventFanout{
		log:            log,
		permanentSinks: permanentSinks,
		registry:       registry,
		events:         events,
		sinkTimeout:    sinkTimeout,
	}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping fanout")
			return nil
		case evt, ok := <-w.events:
			if !ok {
				w.log.Debug("Event channel is closed")
				return nil
			}
			w.Fanout(ctx, evt)
		}
	}
}

// Fanout delivers one event and returns once every sink was served or timed out.
func (w *EventFanout) Fanout(ctx context.Context, evt event.DomainEvent) {
	for _, sink := range w.permanentSinks {
		w.deliver(ctx, sink, evt)
	}

	sinks := w.registry.GetSinksForTopics(evt.Topics()...)
	var wg sync.WaitGroup
	for _, sink := range sinks {
		wg.Add(1)
		go func(sink contract.EventSink) {
			defer wg.Done()
			w.deliver(ctx, sink, evt)
		}(sink)
	}
	wg.Wait()
}

func (w *EventFanout) deliver(ctx context.Context, sink contract.EventSink, evt event.DomainEvent) {
	sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
	defer cancel()
	if err := sink.Consume(sinkCtx, evt); err != nil {
		w.log.Warn("Sink failed to consume event",
			"sink", fmt.Sprintf("%T", sink),
			"event", fmt.Sprintf("%T", evt),
			"error", err)
	}
}
