// Package runtime handles command intake, event propagation and live subscriptions.
// It orchestrates the system without containing business logic or domain rules.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"whatsapp-clone/contract"
	"whatsapp-clone/domain/chat"
	"whatsapp-clone/domain/event"
	"whatsapp-clone/errors"
	"whatsapp-clone/runtime/workers"
)

var _ contract.IOrchestrator = (*Orchestrator)(nil)

type Orchestrator struct {
	mu             sync.Mutex
	log            *slog.Logger
	numWorkers     int
	permanentSinks []contract.EventSink
	supervisor     contract.ISupervisor
	registry       contract.IRegistry
	commands       chan chat.Command
	rawEvents      chan event.DomainEvent
	events         chan event.DomainEvent
	censor         contract.Censor
	sinkTimeout    time.Duration
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor,
	registry contract.IRegistry, numWorkers, bufferSize int,
	sinkTimeout time.Duration) *Orchestrator {
	return &Orchestrator{
		log:         log,
		numWorkers:  numWorkers,
		supervisor:  supervisor,
		registry:    registry,
		commands:    make(chan chat.Command, bufferSize),
		rawEvents:   make(chan event.DomainEvent, bufferSize),
		events:      make(chan event.DomainEvent, bufferSize),
		sinkTimeout: sinkTimeout,
	}
}

// RegisterSinks adds sinks receiving every event, before any live session.
// Must be called before Start.
func (o *Orchestrator) RegisterSinks(sinks ...contract.EventSink) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.permanentSinks = append(o.permanentSinks, sinks...)
}

// SetCensor puts a moderation stage between the pool workers and the fanout.
// Must be called before Start.
func (o *Orchestrator) SetCensor(censor contract.Censor) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.censor = censor
}

// Dispatch enqueues a command without blocking.
// A full command channel rejects the command instead of stalling the caller.
func (o *Orchestrator) Dispatch(cmd chat.Command) error {
	select {
	case o.commands <- cmd:
		return nil
	default:
		o.log.Warn(fmt.Sprintf("Command channel full for chat %s, dropping command", cmd.ChatID()))
		return errors.ErrCommandDropped
	}
}

// Publish hands an event produced outside the worker pool to the fanout.
func (o *Orchestrator) Publish(ctx context.Context, evt event.DomainEvent) error {
	select {
	case o.events <- evt:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *Orchestrator) Subscribe(sessionID string, topics []event.Topic, sink contract.EventSink) {
	o.registry.Subscribe(sessionID, topics, sink)
}

func (o *Orchestrator) Unsubscribe(sessionID string) {
	o.registry.Unsubscribe(sessionID)
}

// Start registers the pool workers and the fanout to the supervisor and blocks
// until the supervised workers stopped.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	sinks := append([]contract.EventSink(nil), o.permanentSinks...)
	censor := o.censor
	o.mu.Unlock()

	if o.numWorkers <= 0 {
		return fmt.Errorf("orchestrator needs at least one worker, got %d", o.numWorkers)
	}

	// Posted messages go through moderation first when a censor is set
	posted := o.events
	if censor != nil {
		posted = o.rawEvents
		o.supervisor.Add(workers.NewModerationWorker(censor, o.rawEvents, o.events, o.log))
	}
	for i := 0; i < o.numWorkers; i++ {
		o.supervisor.Add(workers.NewPoolUnitWorker(o.commands, posted, o.log))
	}
	o.supervisor.Add(workers.NewEventFanout(o.log, sinks, o.registry, o.events, o.sinkTimeout))

	o.log.Info("Starting orchestrator and all supervised workers", "workers", o.numWorkers)
	o.supervisor.Run(ctx)
	return nil
}

// Channels exposes the internal queues for load sampling.
func (o *Orchestrator) Channels() []workers.NamedChannel {
	channels := []workers.NamedChannel{
		{Name: "commands", Channel: o.commands},
		{Name: "events", Channel: o.events},
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.censor != nil {
		channels = append(channels, workers.NamedChannel{Name: "moderation", Channel: o.rawEvents})
	}
	return channels
}

// Stop initiates a graceful shutdown of the orchestrator by canceling the supervised workers.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}
