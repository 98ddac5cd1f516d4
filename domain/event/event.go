package event

import (
	"time"
	"whatsapp-clone/domain/chat"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Topic names a live subscription: the thread of one chat, or the chat list of one user.
type Topic string

func ChatTopic(id chat.ChatID) Topic {
	return Topic("chat:" + id.String())
}

func UserTopic(email string) Topic {
	return Topic("user:" + email)
}

// DomainEvent is routed by the fanout to every subscription of its topics.
type DomainEvent interface {
	Topics() []Topic
}

// MessagePosted is emitted once a message was accepted by a pool worker.
type MessagePosted struct {
	ID       uuid.UUID
	Chat     chat.ChatID
	Users    []string
	Sender   string
	Content  string
	PhotoURL string
	At       time.Time
}

func (e MessagePosted) Topics() []Topic {
	return append([]Topic{ChatTopic(e.Chat)}, userTopics(e.Users)...)
}

func (e MessagePosted) Message() chat.Message {
	return chat.Message{
		ID:        e.ID,
		Chat:      e.Chat,
		Sender:    e.Sender,
		Content:   e.Content,
		PhotoURL:  e.PhotoURL,
		CreatedAt: e.At,
	}
}

type ChatCreated struct {
	Chat chat.Chat
}

func (e ChatCreated) Topics() []Topic {
	return userTopics(e.Chat.Users)
}

type ChatDeleted struct {
	Chat chat.Chat
	By   string
	At   time.Time
}

func (e ChatDeleted) Topics() []Topic {
	return append([]Topic{ChatTopic(e.Chat.ID)}, userTopics(e.Chat.Users)...)
}

func userTopics(users []string) []Topic {
	return lo.Map(lo.Uniq(users), func(item string, _ int) Topic {
		return UserTopic(item)
	})
}
