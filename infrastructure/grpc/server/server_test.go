package server_test

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
	"whatsapp-clone/auth"
	"whatsapp-clone/contract"
	"whatsapp-clone/domain/chat"
	"whatsapp-clone/domain/event"
	"whatsapp-clone/domain/user"
	"whatsapp-clone/errors"
	"whatsapp-clone/infrastructure/grpc/api"
	"whatsapp-clone/infrastructure/grpc/server"
	"whatsapp-clone/mocks"
	"whatsapp-clone/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// fakeStream records what a handler pushes to a server stream.
type fakeStream[T any] struct {
	grpc.ServerStream
	ctx  context.Context
	mu   sync.Mutex
	sent []*T
}

func (f *fakeStream[T]) Context() context.Context { return f.ctx }

func (f *fakeStream[T]) Send(m *T) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, m)
	return nil
}

func (f *fakeStream[T]) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func asAlice() context.Context {
	return auth.WithClaims(context.Background(), &auth.CustomClaims{UserID: "u1", Email: "alice@x.com"})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var aliceBob = chat.Chat{ID: "c1", Users: []string{"alice@x.com", "bob@x.com"}, CreatedAt: time.Now().UTC()}

func newChatServer(t *testing.T) (*server.ChatServer, *mocks.MockIChatService, *mocks.MockIUserService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	chatService := mocks.NewMockIChatService(ctrl)
	userService := mocks.NewMockIUserService(ctrl)
	return server.NewChatServer(discardLogger(), chatService, userService, 10), chatService, userService
}

func TestChatServer_Requires_Viewer(t *testing.T) {
	req := require.New(t)
	chatServer, _, _ := newChatServer(t)

	_, err := chatServer.CreateChat(context.Background(), &api.CreateChatRequest{RecipientEmail: "bob@x.com"})

	req.Equal(codes.Unauthenticated, status.Code(err))
}

func TestChatServer_CreateChat(t *testing.T) {
	ctx := asAlice()

	t.Run("returns the chat seen from the viewer", func(t *testing.T) {
		req := require.New(t)
		chatServer, chatService, _ := newChatServer(t)
		lastSeen := time.Now().Add(-time.Minute)
		chatService.EXPECT().CreateChat(ctx, "alice@x.com", "bob@x.com").Return(services.ChatOverview{
			Chat:              aliceBob,
			Recipient:         chat.ResolveRecipient(aliceBob.Users, "alice@x.com"),
			Label:             "Bob",
			RecipientProfile:  &user.Profile{Email: "bob@x.com", Username: "Bob", LastSeen: lastSeen},
			RecipientPresence: user.Presence{Online: true, LastSeen: lastSeen},
		}, nil)

		resp, err := chatServer.CreateChat(ctx, &api.CreateChatRequest{RecipientEmail: "bob@x.com"})

		req.NoError(err)
		req.Equal("c1", resp.Chat.ID)
		req.Equal("bob@x.com", resp.Chat.Recipient)
		req.Equal("Bob", resp.Chat.Label)
		req.NotNil(resp.Chat.RecipientProfile)
		req.True(resp.Chat.RecipientProfile.Online)
		req.Equal(lastSeen, *resp.Chat.RecipientProfile.LastSeen)
		req.Nil(resp.Chat.LastMessage)
	})

	t.Run("duplicate carries the existing chat id", func(t *testing.T) {
		req := require.New(t)
		chatServer, chatService, _ := newChatServer(t)
		chatService.EXPECT().CreateChat(ctx, "alice@x.com", "bob@x.com").
			Return(services.ChatOverview{}, &chat.Rejection{Reason: errors.ErrChatAlreadyExists, ChatID: "c1"})

		_, err := chatServer.CreateChat(ctx, &api.CreateChatRequest{RecipientEmail: "bob@x.com"})

		req.Equal(codes.AlreadyExists, status.Code(err))
		decoded := errors.FromGRPCError(err)
		req.ErrorIs(decoded, errors.ErrChatAlreadyExists)
		var rejection *errors.RemoteRejection
		req.True(stderrors.As(decoded, &rejection))
		req.Equal("c1", rejection.ChatID)
	})

	t.Run("validation failures are invalid arguments", func(t *testing.T) {
		req := require.New(t)
		chatServer, chatService, _ := newChatServer(t)
		chatService.EXPECT().CreateChat(ctx, "alice@x.com", "alice@x.com").
			Return(services.ChatOverview{}, &chat.Rejection{Reason: errors.ErrSelfChat})

		_, err := chatServer.CreateChat(ctx, &api.CreateChatRequest{RecipientEmail: "alice@x.com"})

		req.Equal(codes.InvalidArgument, status.Code(err))
		req.ErrorIs(errors.FromGRPCError(err), errors.ErrSelfChat)
	})
}

func TestChatServer_GetMessages(t *testing.T) {
	req := require.New(t)
	chatServer, chatService, _ := newChatServer(t)
	ctx := asAlice()
	cursor := "next"
	message := chat.Message{ID: uuid.New(), Chat: "c1", Sender: "bob@x.com", Content: "hi", CreatedAt: time.Now().UTC()}

	chatService.EXPECT().
		GetMessages(chat.GetMessagesCommand{Chat: "c1", Viewer: "alice@x.com", Cursor: &cursor}).
		Return([]chat.Message{message}, nil, nil)

	resp, err := chatServer.GetMessages(ctx, &api.GetMessagesRequest{ChatID: "c1", Cursor: &cursor})

	req.NoError(err)
	req.Nil(resp.Cursor)
	req.Len(resp.Messages, 1)
	req.Equal(message.ID.String(), resp.Messages[0].ID)
	req.Equal("hi", resp.Messages[0].Content)
}

func TestChatServer_SendMessage_Queue_Full(t *testing.T) {
	req := require.New(t)
	chatServer, chatService, _ := newChatServer(t)
	ctx := asAlice()
	chatService.EXPECT().SendMessage("alice@x.com", chat.ChatID("c1"), "hi", "").Return(errors.ErrCommandDropped)

	_, err := chatServer.SendMessage(ctx, &api.SendMessageRequest{ChatID: "c1", Content: "hi"})

	req.Equal(codes.ResourceExhausted, status.Code(err))
}

func TestChatServer_WatchChat(t *testing.T) {
	req := require.New(t)
	chatServer, chatService, _ := newChatServer(t)
	stream := &fakeStream[api.ChatEvent]{ctx: asAlice()}
	unsubscribed := false

	chatService.EXPECT().WatchChat("alice@x.com", chat.ChatID("c1"), gomock.Any()).
		DoAndReturn(func(_ string, _ chat.ChatID, sink contract.EventSink) (func(), error) {
			// Given a message then the deletion of the chat
			go func() {
				ctx := context.Background()
				_ = sink.Consume(ctx, event.MessagePosted{ID: uuid.New(), Chat: "c1", Sender: "bob@x.com", Content: "hi"})
				_ = sink.Consume(ctx, event.ChatDeleted{Chat: aliceBob, By: "bob@x.com"})
			}()
			return func() { unsubscribed = true }, nil
		})

	// Then the stream ends on its own after the deletion
	req.NoError(chatServer.WatchChat(&api.WatchChatRequest{ChatID: "c1"}, stream))
	req.True(unsubscribed)
	req.Len(stream.sent, 2)
	req.Equal("hi", stream.sent[0].Message.Content)
	req.True(stream.sent[1].Deleted)
}

func TestChatServer_WatchChat_Not_A_Member(t *testing.T) {
	req := require.New(t)
	chatServer, chatService, _ := newChatServer(t)
	stream := &fakeStream[api.ChatEvent]{ctx: asAlice()}
	chatService.EXPECT().WatchChat("alice@x.com", chat.ChatID("c9"), gomock.Any()).Return(nil, errors.ErrChatNotFound)

	err := chatServer.WatchChat(&api.WatchChatRequest{ChatID: "c9"}, stream)

	req.Equal(codes.NotFound, status.Code(err))
}

func TestChatServer_WatchChats(t *testing.T) {
	req := require.New(t)
	chatServer, chatService, userService := newChatServer(t)
	ctx, cancel := context.WithCancel(asAlice())
	defer cancel()
	stream := &fakeStream[api.ChatListSnapshot]{ctx: ctx}
	var sink contract.EventSink
	subscribed := make(chan struct{})

	userService.EXPECT().Touch("alice@x.com").Return(nil)
	chatService.EXPECT().WatchChats("alice@x.com", gomock.Any()).
		DoAndReturn(func(_ string, s contract.EventSink) (func(), error) {
			sink = s
			close(subscribed)
			return func() {}, nil
		})
	chatService.EXPECT().ListChats("alice@x.com", "bo").
		Return([]services.ChatOverview{{Chat: aliceBob, Label: "bob@x.com"}}, nil).MinTimes(2)

	done := make(chan error, 1)
	go func() {
		done <- chatServer.WatchChats(&api.WatchChatsRequest{Query: "bo"}, stream)
	}()

	// When a chat of alice changes after the first snapshot
	<-subscribed
	req.Eventually(func() bool { return stream.count() == 1 }, time.Second, 10*time.Millisecond)
	req.NoError(sink.Consume(context.Background(), event.ChatCreated{Chat: aliceBob}))

	// Then a fresh snapshot is pushed
	req.Eventually(func() bool { return stream.count() == 2 }, time.Second, 10*time.Millisecond)
	cancel()
	req.NoError(<-done)
}

func TestAuthServer(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	authService := mocks.NewMockIAuthService(ctrl)
	authServer := server.NewAuthServer(authService)

	authService.EXPECT().Register("alice@x.com", "ComplexPass123!", "Alice").Return(services.Token("jwt"), nil)
	resp, err := authServer.Register(context.Background(), &api.RegisterRequest{
		Email:    "alice@x.com",
		Password: "ComplexPass123!",
		Username: "Alice",
	})
	req.NoError(err)
	req.Equal("jwt", resp.Token)

	authService.EXPECT().Login("alice@x.com", "nope").Return(services.Token(""), errors.ErrInvalidCredentials)
	_, err = authServer.Login(context.Background(), &api.LoginRequest{Email: "alice@x.com", Password: "nope"})
	req.Equal(codes.Unauthenticated, status.Code(err))
}

func TestUserServer_GetProfile(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	userService := mocks.NewMockIUserService(ctrl)
	userServer := server.NewUserServer(userService)

	// Without an email the viewer gets its own profile
	userService.EXPECT().GetProfile("alice@x.com").
		Return(user.Profile{Email: "alice@x.com", Username: "Alice"}, user.Presence{}, nil)
	resp, err := userServer.GetProfile(asAlice(), &api.GetProfileRequest{})
	req.NoError(err)
	req.Equal("Alice", resp.Profile.Username)
	req.Nil(resp.Profile.LastSeen)

	userService.EXPECT().GetProfile("ghost@x.com").Return(user.Profile{}, user.Presence{}, errors.ErrUserNotFound)
	_, err = userServer.GetProfile(asAlice(), &api.GetProfileRequest{Email: "ghost@x.com"})
	req.Equal(codes.NotFound, status.Code(err))
}
