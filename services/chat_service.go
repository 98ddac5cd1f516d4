//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"
	"whatsapp-clone/contract"
	"whatsapp-clone/domain/chat"
	"whatsapp-clone/domain/event"
	"whatsapp-clone/domain/user"
	"whatsapp-clone/errors"
	"whatsapp-clone/repositories"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// UnknownRecipientLabel is shown in place of a recipient that cannot be resolved.
const UnknownRecipientLabel = "Unknown contact"

type IChatService interface {
	CreateChat(ctx context.Context, viewer, recipientEmail string) (ChatOverview, error)
	ListChats(viewer, query string) ([]ChatOverview, error)
	GetChat(viewer string, id chat.ChatID) (ChatOverview, error)
	DeleteChat(ctx context.Context, viewer string, id chat.ChatID) error
	SendMessage(viewer string, id chat.ChatID, content, photoURL string) error
	GetMessages(cmd chat.GetMessagesCommand) ([]chat.Message, *string, error)
	WatchChat(viewer string, id chat.ChatID, sink contract.EventSink) (func(), error)
	WatchChats(viewer string, sink contract.EventSink) (func(), error)
}

// ChatOverview is a chat as displayed to the viewer: the sidebar entry or the contact panel.
type ChatOverview struct {
	Chat              chat.Chat
	Recipient         chat.Recipient
	Label             string
	RecipientProfile  *user.Profile
	RecipientPresence user.Presence
	LastMessage       *chat.Message
}

type ChatService struct {
	log               *slog.Logger
	orchestrator      contract.IOrchestrator
	chatRepository    repositories.IChatRepository
	messageRepository repositories.IMessageRepository
	userRepository    repositories.IUserRepository
	maxContentLength  int
	presenceWindow    time.Duration
	now               func() time.Time
}

func NewChatService(log *slog.Logger, orchestrator contract.IOrchestrator,
	chatRepository repositories.IChatRepository,
	messageRepository repositories.IMessageRepository,
	userRepository repositories.IUserRepository,
	maxContentLength int, presenceWindow time.Duration) *ChatService {
	return &ChatService{
		log:               log,
		orchestrator:      orchestrator,
		chatRepository:    chatRepository,
		messageRepository: messageRepository,
		userRepository:    userRepository,
		maxContentLength:  maxContentLength,
		presenceWindow:    presenceWindow,
		now:               time.Now,
	}
}

// CreateChat opens a chat between the viewer and the recipient.
// The candidate is checked against the chats the viewer already has: a duplicate
// is rejected with the id of the existing chat. The repository repeats the check
// atomically for requests racing on the same pair.
func (s *ChatService) CreateChat(ctx context.Context, viewer, recipientEmail string) (ChatOverview, error) {
	if viewer == "" {
		return ChatOverview{}, errors.ErrUnauthenticated
	}
	existing, err := s.chatRepository.ListChatsByParticipant(viewer)
	if err != nil {
		return ChatOverview{}, err
	}

	pair, err := chat.ValidateNewChatInput(recipientEmail, viewer, chat.Summaries(existing))
	if err != nil {
		return ChatOverview{}, err
	}

	created, err := s.chatRepository.CreateChat(pair.Users())
	if err != nil {
		return ChatOverview{}, err
	}
	s.log.Debug("Chat created", "chat_id", created.ID, "viewer", viewer)

	if err := s.orchestrator.Publish(ctx, event.ChatCreated{Chat: created}); err != nil {
		s.log.Warn("Chat created event not published", "chat_id", created.ID, "error", err)
	}
	return s.overview(created, viewer)
}

// ListChats returns the chats of the viewer in creation order, filtered by query
// over the participant emails.
func (s *ChatService) ListChats(viewer, query string) ([]ChatOverview, error) {
	if viewer == "" {
		return nil, errors.ErrUnauthenticated
	}
	chats, err := s.chatRepository.ListChatsByParticipant(viewer)
	if err != nil {
		return nil, err
	}

	kept := lo.SliceToMap(chat.FilterSummaries(chat.Summaries(chats), query),
		func(item chat.Summary) (chat.ChatID, struct{}) {
			return item.ID, struct{}{}
		})

	overviews := make([]ChatOverview, 0, len(kept))
	for _, c := range chats {
		if _, ok := kept[c.ID]; !ok {
			continue
		}
		overview, err := s.overview(c, viewer)
		if err != nil {
			return nil, err
		}
		overviews = append(overviews, overview)
	}
	return overviews, nil
}

func (s *ChatService) GetChat(viewer string, id chat.ChatID) (ChatOverview, error) {
	c, err := s.chatOf(viewer, id)
	if err != nil {
		return ChatOverview{}, err
	}
	return s.overview(c, viewer)
}

// DeleteChat removes the chat and its thread for both participants.
func (s *ChatService) DeleteChat(ctx context.Context, viewer string, id chat.ChatID) error {
	c, err := s.chatOf(viewer, id)
	if err != nil {
		return err
	}
	// Messages before the chat, a failure never orphans a thread
	if err := s.messageRepository.DeleteMessages(id); err != nil {
		return err
	}
	if err := s.chatRepository.DeleteChat(id); err != nil {
		return err
	}
	evt := event.ChatDeleted{Chat: c, By: viewer, At: s.now().UTC()}
	if err := s.orchestrator.Publish(ctx, evt); err != nil {
		s.log.Warn("Chat deleted event not published", "chat_id", id, "error", err)
	}
	return nil
}

// SendMessage accepts a message asynchronously.
// The sender receives it back through its watch stream like any other participant.
func (s *ChatService) SendMessage(viewer string, id chat.ChatID, content, photoURL string) error {
	normalized, err := chat.NormalizeContent(content, s.maxContentLength)
	if err != nil {
		return err
	}
	c, err := s.chatOf(viewer, id)
	if err != nil {
		return err
	}
	if !c.IsWellFormed() {
		s.log.Warn("Message refused on malformed chat", "chat_id", c.ID, "users", c.Users)
		return errors.ErrMalformedChat
	}
	return s.orchestrator.Dispatch(chat.SendMessageCommand{
		Chat:      c.ID,
		Users:     c.Users,
		Sender:    viewer,
		Content:   normalized,
		PhotoURL:  photoURL,
		CreatedAt: s.now().UTC(),
	})
}

// GetMessages returns a page of the thread in ascending order.
// The cursor, when present, leads to older messages.
func (s *ChatService) GetMessages(cmd chat.GetMessagesCommand) ([]chat.Message, *string, error) {
	if _, err := s.chatOf(cmd.Viewer, cmd.Chat); err != nil {
		return nil, nil, err
	}
	diskMessages, cursor, err := s.messageRepository.GetMessages(cmd.Chat, cmd.Cursor)
	if err != nil {
		return nil, nil, err
	}
	return lo.Reverse(lo.Map(diskMessages, func(item repositories.DiskMessage, _ int) chat.Message {
		return fromDiskMessage(item)
	})), cursor, nil
}

// WatchChat subscribes the sink to the thread of a chat until the returned function is called.
func (s *ChatService) WatchChat(viewer string, id chat.ChatID, sink contract.EventSink) (func(), error) {
	if _, err := s.chatOf(viewer, id); err != nil {
		return nil, err
	}
	return s.subscribe([]event.Topic{event.ChatTopic(id)}, sink), nil
}

// WatchChats subscribes the sink to every change of the viewer's chat list.
func (s *ChatService) WatchChats(viewer string, sink contract.EventSink) (func(), error) {
	if viewer == "" {
		return nil, errors.ErrUnauthenticated
	}
	return s.subscribe([]event.Topic{event.UserTopic(viewer)}, sink), nil
}

func (s *ChatService) subscribe(topics []event.Topic, sink contract.EventSink) func() {
	sessionID := uuid.NewString()
	s.orchestrator.Subscribe(sessionID, topics, sink)
	return func() {
		s.orchestrator.Unsubscribe(sessionID)
	}
}

// chatOf loads a chat the viewer takes part in.
// A chat of other users is reported as not found.
func (s *ChatService) chatOf(viewer string, id chat.ChatID) (chat.Chat, error) {
	if viewer == "" {
		return chat.Chat{}, errors.ErrUnauthenticated
	}
	c, err := s.chatRepository.GetChat(id)
	if err != nil {
		return chat.Chat{}, err
	}
	if !c.HasParticipant(viewer) {
		return chat.Chat{}, errors.ErrChatNotFound
	}
	return c, nil
}

func (s *ChatService) overview(c chat.Chat, viewer string) (ChatOverview, error) {
	recipient := c.Recipient(viewer)
	overview := ChatOverview{
		Chat:      c,
		Recipient: recipient,
		Label:     recipient.Label(UnknownRecipientLabel),
	}
	if !c.IsWellFormed() {
		s.log.Warn("Malformed chat", "chat_id", c.ID, "users", c.Users)
	}

	if !recipient.IsUnknown() {
		stored, err := s.userRepository.GetUserByEmail(recipient.Email())
		switch {
		case err == nil:
			profile := stored.Profile()
			overview.RecipientProfile = &profile
			overview.RecipientPresence = profile.Presence(s.now(), s.presenceWindow)
			overview.Label = profile.DisplayName()
		case !stderrors.Is(err, errors.ErrUserNotFound):
			return ChatOverview{}, fmt.Errorf("recipient profile of chat %s: %w", c.ID, err)
		}
	}

	last, err := s.messageRepository.LastMessage(c.ID)
	if err != nil {
		return ChatOverview{}, fmt.Errorf("last message of chat %s: %w", c.ID, err)
	}
	if last != nil {
		message := fromDiskMessage(*last)
		overview.LastMessage = &message
	}
	return overview, nil
}

func fromDiskMessage(item repositories.DiskMessage) chat.Message {
	return chat.Message{
		ID:              item.ID,
		Chat:            item.Chat,
		Sender:          item.Author,
		Content:         item.Content,
		PhotoURL:        item.PhotoURL,
		ReceiverHasRead: item.ReceiverHasRead,
		CreatedAt:       item.At,
	}
}
