package sink_test

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"testing"
	"time"
	"whatsapp-clone/domain/chat"
	"whatsapp-clone/domain/event"
	"whatsapp-clone/errors"
	"whatsapp-clone/mocks"
	"whatsapp-clone/observability"
	"whatsapp-clone/repositories"
	"whatsapp-clone/sink"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func posted() event.MessagePosted {
	return event.MessagePosted{
		ID:       uuid.New(),
		Chat:     "c1",
		Users:    []string{"alice@x.com", "bob@x.com"},
		Sender:   "alice@x.com",
		Content:  "hello",
		PhotoURL: "https://img/alice.png",
		At:       time.Now().UTC(),
	}
}

func TestDiskSink_Consume(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	mockRepo := mocks.NewMockIMessageRepository(ctrl)
	mockChats := mocks.NewMockIChatRepository(ctrl)
	// Silencing logs for clean test output
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	diskSink := sink.NewDiskSink(mockRepo, mockChats, logger)
	evt := posted()

	mockChats.EXPECT().GetChat(chat.ChatID("c1")).Return(chat.Chat{ID: "c1", Users: evt.Users}, nil)
	mockRepo.EXPECT().StoreMessage(repositories.DiskMessage{
		ID:       evt.ID,
		Chat:     evt.Chat,
		Author:   "alice@x.com",
		Content:  "hello",
		PhotoURL: "https://img/alice.png",
		At:       evt.At,
	}).Return(nil).Times(1)

	req.NoError(diskSink.Consume(context.Background(), evt))

	// Other events are not stored
	req.NoError(diskSink.Consume(context.Background(), event.ChatCreated{Chat: chat.Chat{ID: "c1"}}))
}

func TestDiskSink_Consume_Deleted_Chat(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	mockRepo := mocks.NewMockIMessageRepository(ctrl)
	mockChats := mocks.NewMockIChatRepository(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	diskSink := sink.NewDiskSink(mockRepo, mockChats, logger)

	// Given the chat was deleted while the message was in flight
	mockChats.EXPECT().GetChat(chat.ChatID("c1")).Return(chat.Chat{}, errors.ErrChatNotFound)

	// Then the message is dropped without error
	mockRepo.EXPECT().StoreMessage(gomock.Any()).Times(0)
	req.NoError(diskSink.Consume(context.Background(), posted()))

	// And a storage failure is reported to the fanout
	lookupErr := stderrors.New("badger closed")
	mockChats.EXPECT().GetChat(chat.ChatID("c1")).Return(chat.Chat{}, lookupErr)
	req.ErrorIs(diskSink.Consume(context.Background(), posted()), lookupErr)
}

func TestPresenceSink_Consume(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	mockRepo := mocks.NewMockIUserRepository(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	presenceSink := sink.NewPresenceSink(mockRepo, logger)
	evt := posted()

	t.Run("sender is touched", func(t *testing.T) {
		mockRepo.EXPECT().TouchLastSeen("alice@x.com", evt.At).Return(nil).Times(1)
		req.NoError(presenceSink.Consume(context.Background(), evt))
	})

	t.Run("unknown sender is ignored", func(t *testing.T) {
		mockRepo.EXPECT().TouchLastSeen("alice@x.com", evt.At).Return(errors.ErrUserNotFound).Times(1)
		req.NoError(presenceSink.Consume(context.Background(), evt))
	})

	t.Run("storage failure is reported", func(t *testing.T) {
		mockRepo.EXPECT().TouchLastSeen("alice@x.com", evt.At).Return(io.ErrUnexpectedEOF).Times(1)
		req.ErrorIs(presenceSink.Consume(context.Background(), evt), io.ErrUnexpectedEOF)
	})

	t.Run("chat events are ignored", func(t *testing.T) {
		req.NoError(presenceSink.Consume(context.Background(), event.ChatDeleted{}))
	})
}

func TestStreamSink_Consume(t *testing.T) {
	req := require.New(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	streamSink := sink.NewStreamSink(logger, 1)
	evt := posted()

	// Given room in the buffer, the event is queued
	req.NoError(streamSink.Consume(context.Background(), evt))
	req.Equal(event.DomainEvent(evt), <-streamSink.Events)

	// Given a full buffer, the delivery gives up at the deadline
	req.NoError(streamSink.Consume(context.Background(), evt))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	req.ErrorIs(streamSink.Consume(ctx, evt), context.DeadlineExceeded)
}

func TestMetricsSink_Consume(t *testing.T) {
	req := require.New(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	monitoring := observability.NewMonitoringManager(logger)
	metricsSink := sink.NewMetricsSink(monitoring)
	ctx := context.Background()

	req.NoError(metricsSink.Consume(ctx, posted()))
	req.NoError(metricsSink.Consume(ctx, posted()))
	req.NoError(metricsSink.Consume(ctx, event.ChatCreated{}))
	req.NoError(metricsSink.Consume(ctx, event.ChatDeleted{}))

	stats := monitoring.GetLatest()
	req.Equal(uint64(2), stats.MessagesPosted)
	req.Equal(uint64(1), stats.ChatsCreated)
	req.Equal(uint64(1), stats.ChatsDeleted)
}
