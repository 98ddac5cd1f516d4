package chat

import (
	"strings"
	"time"
	"unicode/utf8"
	"whatsapp-clone/errors"

	"github.com/google/uuid"
)

// Message is an immutable entry of a chat thread.
type Message struct {
	ID              uuid.UUID
	Chat            ChatID
	Sender          string
	Content         string
	PhotoURL        string
	ReceiverHasRead bool
	CreatedAt       time.Time
}

// NormalizeContent trims the content and checks it is neither empty nor longer than maxLength runes.
// A maxLength of zero disables the length check.
func NormalizeContent(content string, maxLength int) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", errors.ErrEmptyMessage
	}
	if maxLength > 0 && utf8.RuneCountInString(trimmed) > maxLength {
		return "", errors.ErrMessageTooLong
	}
	return trimmed, nil
}
