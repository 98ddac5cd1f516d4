// Package chat contains the core concepts of a one-to-one conversation.
// It decides who the other party of a chat is and whether a new chat may be created.
// No runtime, network, or storage logic should be added here.
package chat

import (
	"time"

	"github.com/samber/lo"
)

// ParticipantsPerChat is the number of users of every chat.
const ParticipantsPerChat = 2

type ChatID string

func (id ChatID) String() string {
	return string(id)
}

// Chat is a two-party conversation. Its participant list never changes after creation.
type Chat struct {
	ID        ChatID
	Users     []string
	CreatedAt time.Time
}

// Summary is the participant projection of a chat, as returned by a
// "users contains viewer" query.
type Summary struct {
	ID    ChatID
	Users []string
}

func (c Chat) Summary() Summary {
	return Summary{ID: c.ID, Users: c.Users}
}

func (c Chat) HasParticipant(email string) bool {
	return email != "" && lo.Contains(c.Users, email)
}

// IsWellFormed reports whether the chat has exactly two distinct, non-empty participants.
func (c Chat) IsWellFormed() bool {
	if len(c.Users) != ParticipantsPerChat {
		return false
	}
	return c.Users[0] != "" && c.Users[1] != "" && c.Users[0] != c.Users[1]
}

// Recipient resolves the other party of the chat for the given viewer.
func (c Chat) Recipient(viewerEmail string) Recipient {
	return ResolveRecipient(c.Users, viewerEmail)
}

func Summaries(chats []Chat) []Summary {
	return lo.Map(chats, func(item Chat, _ int) Summary {
		return item.Summary()
	})
}
