// Package client is a typed client of the chat backend.
// It keeps the session token and turns gRPC statuses back into domain errors.
package client

import (
	"context"
	"fmt"
	"io"
	"sync"
	"whatsapp-clone/errors"
	"whatsapp-clone/infrastructure/grpc/api"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

type Client struct {
	closer io.Closer
	auth   api.AuthServiceClient
	chats  api.ChatServiceClient
	users  api.UserServiceClient

	mu    sync.RWMutex
	token string
	email string
}

// Dial connects to the server at address without transport security.
func Dial(address string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(address, opts...)
	if err != nil {
		return nil, fmt.Errorf("could not connect to server at %s: %w", address, err)
	}
	c := New(conn)
	c.closer = conn
	return c, nil
}

// New wraps an existing connection, which stays owned by the caller.
func New(conn grpc.ClientConnInterface) *Client {
	return &Client{
		auth:  api.NewAuthServiceClient(conn),
		chats: api.NewChatServiceClient(conn),
		users: api.NewUserServiceClient(conn),
	}
}

func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

// Email is the address of the signed in user, empty before Login or Register.
func (c *Client) Email() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.email
}

func (c *Client) Register(ctx context.Context, email, password, username string) error {
	resp, err := c.auth.Register(ctx, &api.RegisterRequest{Email: email, Password: password, Username: username})
	if err != nil {
		return errors.FromGRPCError(err)
	}
	c.setSession(resp)
	return nil
}

func (c *Client) Login(ctx context.Context, email, password string) error {
	resp, err := c.auth.Login(ctx, &api.LoginRequest{Email: email, Password: password})
	if err != nil {
		return errors.FromGRPCError(err)
	}
	c.setSession(resp)
	return nil
}

// CreateChat opens a chat with the recipient. A duplicate is reported as an
// error wrapping errors.ErrChatAlreadyExists that also exposes the existing chat id.
func (c *Client) CreateChat(ctx context.Context, recipientEmail string) (api.Chat, error) {
	resp, err := c.chats.CreateChat(c.authorized(ctx), &api.CreateChatRequest{RecipientEmail: recipientEmail})
	if err != nil {
		return api.Chat{}, errors.FromGRPCError(err)
	}
	return resp.Chat, nil
}

func (c *Client) ListChats(ctx context.Context, query string) ([]api.Chat, error) {
	resp, err := c.chats.ListChats(c.authorized(ctx), &api.ListChatsRequest{Query: query})
	if err != nil {
		return nil, errors.FromGRPCError(err)
	}
	return resp.Chats, nil
}

func (c *Client) GetChat(ctx context.Context, chatID string) (api.Chat, error) {
	resp, err := c.chats.GetChat(c.authorized(ctx), &api.GetChatRequest{ChatID: chatID})
	if err != nil {
		return api.Chat{}, errors.FromGRPCError(err)
	}
	return resp.Chat, nil
}

func (c *Client) DeleteChat(ctx context.Context, chatID string) error {
	_, err := c.chats.DeleteChat(c.authorized(ctx), &api.DeleteChatRequest{ChatID: chatID})
	return errors.FromGRPCError(err)
}

// SendMessage returns once the server accepted the message.
// The message itself comes back through WatchChat.
func (c *Client) SendMessage(ctx context.Context, chatID, content, photoURL string) error {
	_, err := c.chats.SendMessage(c.authorized(ctx), &api.SendMessageRequest{
		ChatID:   chatID,
		Content:  content,
		PhotoURL: photoURL,
	})
	return errors.FromGRPCError(err)
}

// GetMessages returns a page in ascending order and the cursor of the previous page, if any.
func (c *Client) GetMessages(ctx context.Context, chatID string, cursor *string) ([]api.Message, *string, error) {
	resp, err := c.chats.GetMessages(c.authorized(ctx), &api.GetMessagesRequest{ChatID: chatID, Cursor: cursor})
	if err != nil {
		return nil, nil, errors.FromGRPCError(err)
	}
	return resp.Messages, resp.Cursor, nil
}

// WatchChat streams the new messages of a chat until ctx is canceled or the chat is deleted.
func (c *Client) WatchChat(ctx context.Context, chatID string) (api.WatchChatClient, error) {
	stream, err := c.chats.WatchChat(c.authorized(ctx), &api.WatchChatRequest{ChatID: chatID})
	if err != nil {
		return nil, errors.FromGRPCError(err)
	}
	return stream, nil
}

// WatchChats streams snapshots of the chat list, the first one right away.
func (c *Client) WatchChats(ctx context.Context, query string) (api.WatchChatsClient, error) {
	stream, err := c.chats.WatchChats(c.authorized(ctx), &api.WatchChatsRequest{Query: query})
	if err != nil {
		return nil, errors.FromGRPCError(err)
	}
	return stream, nil
}

// GetProfile returns the profile of email, or of the signed in user when email is empty.
func (c *Client) GetProfile(ctx context.Context, email string) (api.Profile, error) {
	resp, err := c.users.GetProfile(c.authorized(ctx), &api.GetProfileRequest{Email: email})
	if err != nil {
		return api.Profile{}, errors.FromGRPCError(err)
	}
	return resp.Profile, nil
}

// Session returns the token and the email of the signed in user.
func (c *Client) Session() (token, email string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token, c.email
}

// Resume restores a session obtained by an earlier Login, the token is checked by the server on the next call.
func (c *Client) Resume(token, email string) {
	c.setSession(&api.TokenResponse{Token: token, Email: email})
}

func (c *Client) setSession(resp *api.TokenResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = resp.Token
	c.email = resp.Email
}

// authorized attaches the session token, if any, to the outgoing metadata.
func (c *Client) authorized(ctx context.Context) context.Context {
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
}
