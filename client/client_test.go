package client_test

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"
	"whatsapp-clone/auth"
	"whatsapp-clone/client"
	"whatsapp-clone/domain/chat"
	"whatsapp-clone/domain/user"
	"whatsapp-clone/errors"
	grpc2 "whatsapp-clone/grpc"
	"whatsapp-clone/mocks"
	"whatsapp-clone/services"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
)

const password = "ComplexPass123!"

type fixture struct {
	auth   *mocks.MockIAuthService
	chats  *mocks.MockIChatService
	users  *mocks.MockIUserService
	client *client.Client
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := fixture{
		auth:  mocks.NewMockIAuthService(ctrl),
		chats: mocks.NewMockIChatService(ctrl),
		users: mocks.NewMockIUserService(ctrl),
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := auth.NewTokenManager("client-test-secret", time.Hour)
	s := grpc2.NewServer(log, tokens, grpc2.Services{Auth: f.auth, Chat: f.chats, User: f.users}, 4)

	listener := bufconn.Listen(1 << 20)
	go func() {
		_ = s.Serve(listener)
	}()
	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
		s.Stop()
	})

	token, err := tokens.GenerateToken("u1", "alice@x.com", []string{"user"})
	require.NoError(t, err)
	f.auth.EXPECT().Login("alice@x.com", password).Return(services.Token(token), nil).AnyTimes()
	f.client = client.New(conn)
	return f
}

func TestClient_Login_Keeps_Session(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctx := context.Background()

	// Given no session, authenticated calls are refused
	_, err := f.client.ListChats(ctx, "")
	req.ErrorIs(err, errors.ErrUnauthenticated)

	// When alice logs in
	req.NoError(f.client.Login(ctx, "alice@x.com", password))
	token, email := f.client.Session()
	req.NotEmpty(token)
	req.Equal("alice@x.com", email)
	req.Equal("alice@x.com", f.client.Email())

	// Then the token is sent along
	f.chats.EXPECT().ListChats("alice@x.com", "bob").Return(nil, nil).Times(1)
	chats, err := f.client.ListChats(ctx, "bob")
	req.NoError(err)
	req.Empty(chats)
}

func TestClient_Resume(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctx := context.Background()
	req.NoError(f.client.Login(ctx, "alice@x.com", password))
	token, email := f.client.Session()

	// Given a client resumed from a saved session
	other := f.client
	other.Resume(token, email)

	f.chats.EXPECT().DeleteChat(gomock.Any(), "alice@x.com", chat.ChatID("c1")).Return(nil).Times(1)
	req.NoError(other.DeleteChat(ctx, "c1"))

	// And a forged token is refused
	other.Resume("forged", email)
	req.ErrorIs(other.DeleteChat(ctx, "c1"), errors.ErrUnauthenticated)
}

func TestClient_CreateChat_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.client.Login(ctx, "alice@x.com", password))

	tests := []struct {
		name   string
		reason error
		chatID chat.ChatID
	}{
		{name: "empty input", reason: errors.ErrEmptyInput},
		{name: "invalid email", reason: errors.ErrInvalidEmailFormat},
		{name: "self chat", reason: errors.ErrSelfChat},
		{name: "duplicate", reason: errors.ErrChatAlreadyExists, chatID: "c1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			f.chats.EXPECT().CreateChat(gomock.Any(), "alice@x.com", "bob@x.com").
				Return(services.ChatOverview{}, &chat.Rejection{Reason: tt.reason, ChatID: tt.chatID}).Times(1)

			_, err := f.client.CreateChat(ctx, "bob@x.com")

			req.ErrorIs(err, tt.reason)
			// Only a duplicate points at an existing chat
			var rejection *errors.RemoteRejection
			req.Equal(tt.chatID != "", stderrors.As(err, &rejection))
			if tt.chatID != "" {
				req.Equal(string(tt.chatID), rejection.ChatID)
			}
		})
	}
}

func TestClient_GetProfile_Not_Found(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctx := context.Background()
	req.NoError(f.client.Login(ctx, "alice@x.com", password))

	f.users.EXPECT().GetProfile("carol@x.com").Return(user.Profile{}, user.Presence{}, errors.ErrUserNotFound).Times(1)

	_, err := f.client.GetProfile(ctx, "carol@x.com")
	req.ErrorIs(err, errors.ErrUserNotFound)
}
