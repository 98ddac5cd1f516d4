//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
	"whatsapp-clone/domain/chat"
	"whatsapp-clone/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// Used for logging during supervision, so workers don't need to name themselves.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IRegistry tracks live sessions (open watch streams) and the topics they listen to.
type IRegistry interface {
	GetSinksForTopics(topics ...event.Topic) []EventSink
	Subscribe(sessionID string, topics []event.Topic, sink EventSink)
	Unsubscribe(sessionID string)
}

type IOrchestrator interface {
	RegisterSinks(sinks ...EventSink)
	Dispatch(cmd chat.Command) error
	Publish(ctx context.Context, evt event.DomainEvent) error
	Subscribe(sessionID string, topics []event.Topic, sink EventSink)
	Unsubscribe(sessionID string)
	Start(ctx context.Context) error
	Stop()
}

// Censor masks the forbidden words of a message and returns the words it found.
type Censor interface {
	Censor(content string) (string, []string)
}
