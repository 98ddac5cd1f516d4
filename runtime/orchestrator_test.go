package runtime_test

import (
	"context"
	"log/slog"
	"testing"
	"time"
	"whatsapp-clone/domain/chat"
	"whatsapp-clone/domain/event"
	"whatsapp-clone/errors"
	"whatsapp-clone/mocks"
	"whatsapp-clone/moderation"
	"whatsapp-clone/runtime"
	"whatsapp-clone/runtime/workers"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type recordingSink struct {
	events chan event.DomainEvent
}

func (s recordingSink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case s.events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func newOrchestrator(t *testing.T, bufferSize int) *runtime.Orchestrator {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	orchestrator := runtime.NewOrchestrator(log,
		workers.NewSupervisor(log, 50*time.Millisecond),
		runtime.NewRegistry(), 2, bufferSize, time.Second)
	return orchestrator
}

func Test_Orchestrator_Dispatches_Messages_To_Sinks_And_Sessions(t *testing.T) {
	req := require.New(t)
	orchestrator := newOrchestrator(t, 10)
	permanent := recordingSink{events: make(chan event.DomainEvent, 1)}
	session := recordingSink{events: make(chan event.DomainEvent, 1)}
	outsider := recordingSink{events: make(chan event.DomainEvent, 1)}
	orchestrator.RegisterSinks(permanent)

	// Given bob watches the chat and carol watches her own chat list
	orchestrator.Subscribe(uuid.NewString(), []event.Topic{event.ChatTopic("c1")}, session)
	orchestrator.Subscribe(uuid.NewString(), []event.Topic{event.UserTopic("carol@x.com")}, outsider)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		req.NoError(orchestrator.Start(ctx))
		close(stopped)
	}()
	t.Cleanup(func() {
		cancel()
		<-stopped
	})

	// When alice sends a message
	req.NoError(orchestrator.Dispatch(chat.SendMessageCommand{
		Chat:      "c1",
		Users:     []string{"alice@x.com", "bob@x.com"},
		Sender:    "alice@x.com",
		Content:   "hello",
		CreatedAt: time.Now().UTC(),
	}))

	// Then storage and the watching session get it
	for _, sink := range []recordingSink{permanent, session} {
		select {
		case evt := <-sink.events:
			posted, ok := evt.(event.MessagePosted)
			req.True(ok)
			req.Equal("hello", posted.Content)
		case <-time.After(2 * time.Second):
			req.Fail("Timeout: event never delivered")
		}
	}

	// And the outsider did not
	select {
	case evt := <-outsider.events:
		req.Failf("Unexpected delivery", "%v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func Test_Orchestrator_Publish(t *testing.T) {
	req := require.New(t)
	orchestrator := newOrchestrator(t, 10)
	session := recordingSink{events: make(chan event.DomainEvent, 1)}
	sessionID := uuid.NewString()
	orchestrator.Subscribe(sessionID, []event.Topic{event.UserTopic("bob@x.com")}, session)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = orchestrator.Start(ctx)
	}()

	created := event.ChatCreated{Chat: chat.Chat{ID: "c1", Users: []string{"alice@x.com", "bob@x.com"}}}
	req.NoError(orchestrator.Publish(ctx, created))

	select {
	case evt := <-session.events:
		req.Equal(created, evt)
	case <-time.After(2 * time.Second):
		req.Fail("Timeout: event never delivered")
	}

	orchestrator.Unsubscribe(sessionID)
	orchestrator.Stop()
}

func Test_Orchestrator_Dispatch_Full_Channel(t *testing.T) {
	req := require.New(t)
	// Given a stopped orchestrator with a single slot
	orchestrator := newOrchestrator(t, 1)
	cmd := chat.SendMessageCommand{Chat: "c1", Sender: "alice@x.com", Content: "hello"}

	req.NoError(orchestrator.Dispatch(cmd))

	// When the slot is taken
	err := orchestrator.Dispatch(cmd)

	// Then the command is rejected instead of blocking
	req.ErrorIs(err, errors.ErrCommandDropped)
}

func Test_Orchestrator_Start_Registers_Workers(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	supervisor := mocks.NewMockISupervisor(ctrl)
	registry := mocks.NewMockIRegistry(ctrl)
	log := slog.Default()
	orchestrator := runtime.NewOrchestrator(log, supervisor, registry, 3, 10, time.Second)

	// Then three pool workers and one fanout are supervised
	supervisor.EXPECT().Add(gomock.Any()).Return(supervisor).Times(4)
	supervisor.EXPECT().Run(gomock.Any()).Times(1)

	req.NoError(orchestrator.Start(context.Background()))

	none := runtime.NewOrchestrator(log, supervisor, registry, 0, 10, time.Second)
	req.Error(none.Start(context.Background()))

	// Given a censor, a moderation worker is supervised too
	censored := runtime.NewOrchestrator(log, supervisor, registry, 1, 10, time.Second)
	censored.SetCensor(mocks.NewMockCensor(ctrl))
	supervisor.EXPECT().Add(gomock.Any()).Return(supervisor).Times(3)
	supervisor.EXPECT().Run(gomock.Any()).Times(1)
	req.NoError(censored.Start(context.Background()))
}

func Test_Orchestrator_Censors_Messages(t *testing.T) {
	req := require.New(t)
	orchestrator := newOrchestrator(t, 10)
	moderator, err := moderation.NewModerator([]string{"snake"}, '#', slog.Default())
	req.NoError(err)
	orchestrator.SetCensor(moderator)
	req.Len(orchestrator.Channels(), 3)

	session := recordingSink{events: make(chan event.DomainEvent, 1)}
	orchestrator.Subscribe(uuid.NewString(), []event.Topic{event.ChatTopic("c1")}, session)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = orchestrator.Start(ctx)
	}()

	req.NoError(orchestrator.Dispatch(chat.SendMessageCommand{
		Chat:    "c1",
		Users:   []string{"alice@x.com", "bob@x.com"},
		Sender:  "alice@x.com",
		Content: "a snake!",
	}))

	select {
	case evt := <-session.events:
		posted, ok := evt.(event.MessagePosted)
		req.True(ok)
		req.Equal("a #####!", posted.Content)
	case <-time.After(2 * time.Second):
		req.Fail("Timeout: event never delivered")
	}
}
