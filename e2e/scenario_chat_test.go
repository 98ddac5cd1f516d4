package e2e

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"
	"whatsapp-clone/client"
	"whatsapp-clone/errors"
	"whatsapp-clone/infrastructure/grpc/api"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

const password = "ComplexPass123!"

type testChatSuite struct {
	BaseGrpcSuite
	alice, bob           *client.Client
	aliceEmail, bobEmail string
}

func TestChatSuite(t *testing.T) {
	suite.Run(t, &testChatSuite{})
}

func (s *testChatSuite) SetupTest() {
	run := uuid.NewString()[:8]
	s.aliceEmail = fmt.Sprintf("alice-%s@e2e.test", run)
	s.bobEmail = fmt.Sprintf("bob-%s@e2e.test", run)
	s.alice = s.Dial(s.T(), "alice")
	s.bob = s.Dial(s.T(), "bob")
}

func (s *testChatSuite) TearDownTest() {
	_ = s.alice.Close()
	_ = s.bob.Close()
}

func (s *testChatSuite) TestFullConversationFlow() {
	var chatID string

	// --- STEP 0: ACCOUNTS ---
	s.Run("Step 0: Register both users", func() {
		s.WithClient(s.alice, "alice registers", func(ctx context.Context, c *client.Client) {
			s.Require().NoError(c.Register(ctx, s.aliceEmail, password, "Alice"))
		})
		s.WithClient(s.bob, "bob registers", func(ctx context.Context, c *client.Client) {
			s.Require().NoError(c.Register(ctx, s.bobEmail, password, "Bob"))
		})
	})

	// --- STEP 1: NEW CHAT GATE ---
	s.Run("Step 1: Invalid recipients are rejected in order", func() {
		s.WithClient(s.alice, "alice tries bad recipients", func(ctx context.Context, c *client.Client) {
			_, err := c.CreateChat(ctx, "  ")
			s.Require().ErrorIs(err, errors.ErrEmptyInput)
			_, err = c.CreateChat(ctx, "bob")
			s.Require().ErrorIs(err, errors.ErrInvalidEmailFormat)
			_, err = c.CreateChat(ctx, s.aliceEmail)
			s.Require().ErrorIs(err, errors.ErrSelfChat)
		})
	})

	s.Run("Step 2: Create the chat then refuse a duplicate", func() {
		s.WithClient(s.alice, "alice opens a chat with bob", func(ctx context.Context, c *client.Client) {
			created, err := c.CreateChat(ctx, s.bobEmail)
			s.Require().NoError(err)
			s.Require().Equal(s.bobEmail, created.Recipient)
			s.Require().Equal("Bob", created.Label)
			chatID = created.ID

			_, err = c.CreateChat(ctx, s.bobEmail)
			s.Require().ErrorIs(err, errors.ErrChatAlreadyExists)
			var rejection *errors.RemoteRejection
			s.Require().True(stderrors.As(err, &rejection))
			s.Require().Equal(chatID, rejection.ChatID)
		})
	})

	// --- STEP 3: LIVE DELIVERY ---
	s.Run("Step 3: A sent message reaches the watching recipient", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		stream, err := s.bob.WatchChat(ctx, chatID)
		s.Require().NoError(err)

		received := make(chan *api.ChatEvent, 1)
		go func() {
			evt, err := stream.Recv()
			if err == nil {
				received <- evt
			}
		}()

		// The subscription is registered once the stream is open on the server side
		time.Sleep(200 * time.Millisecond)
		s.WithClient(s.alice, "alice says hello", func(ctx context.Context, c *client.Client) {
			s.Require().NoError(c.SendMessage(ctx, chatID, "hello bob", ""))
		})

		select {
		case evt := <-received:
			s.Require().NotNil(evt.Message)
			s.Require().Equal("hello bob", evt.Message.Content)
			s.Require().Equal(s.aliceEmail, evt.Message.Sender)
		case <-ctx.Done():
			s.Fail("Timeout: message never delivered")
		}
	})

	// --- STEP 4: HISTORY & LIST ---
	s.Run("Step 4: Both sides see the chat and its history", func() {
		s.WithClient(s.bob, "bob reads his chats", func(ctx context.Context, c *client.Client) {
			chats, err := c.ListChats(ctx, "alice")
			s.Require().NoError(err)
			s.Require().Len(chats, 1)
			s.Require().Equal(s.aliceEmail, chats[0].Recipient)
			s.Require().NotNil(chats[0].LastMessage)

			messages, _, err := c.GetMessages(ctx, chatID, nil)
			s.Require().NoError(err)
			s.Require().Len(messages, 1)
		})
	})

	// --- STEP 5: DELETION ---
	s.Run("Step 5: Deleting the chat removes it for both", func() {
		s.WithClient(s.bob, "bob deletes the chat", func(ctx context.Context, c *client.Client) {
			s.Require().NoError(c.DeleteChat(ctx, chatID))
		})
		s.WithClient(s.alice, "alice no longer sees it", func(ctx context.Context, c *client.Client) {
			_, err := c.GetChat(ctx, chatID)
			s.Require().ErrorIs(err, errors.ErrChatNotFound)
		})
	})
}
