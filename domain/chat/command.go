package chat

import (
	"time"
)

type Command interface {
	ChatID() ChatID
}

type SendMessageCommand struct {
	Chat      ChatID
	Users     []string
	Sender    string
	Content   string
	PhotoURL  string
	CreatedAt time.Time
}

func (c SendMessageCommand) ChatID() ChatID {
	return c.Chat
}

type GetMessagesCommand struct {
	Chat   ChatID
	Viewer string
	Cursor *string
}

func (c GetMessagesCommand) ChatID() ChatID {
	return c.Chat
}
