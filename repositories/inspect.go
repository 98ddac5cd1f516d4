package repositories

import (
	"fmt"
	"strings"
	"time"
)

// Entry is a readable view of a stored record, shown by the debug dashboard.
type Entry struct {
	Kind   string
	ID     string
	Chat   string
	Detail string
	At     time.Time
}

// Describe decodes a raw key/value pair of any repository.
// Unknown or corrupted records are reported as RAW with their size.
func Describe(key string, value []byte) Entry {
	raw := Entry{Kind: "RAW", ID: key, Detail: fmt.Sprintf("Size: %d bytes", len(value))}
	switch {
	case strings.HasPrefix(key, userPrefix):
		u, err := unmarshalUser(value)
		if err != nil {
			return raw
		}
		return Entry{
			Kind:   "USER",
			ID:     u.Email,
			Detail: fmt.Sprintf("%s roles=%s", u.Profile().DisplayName(), strings.Join(u.Roles, ",")),
			At:     u.LastSeen,
		}
	case strings.HasPrefix(key, chatPrefix):
		c, err := unmarshalChat(value)
		if err != nil {
			return raw
		}
		return Entry{
			Kind:   "CHAT",
			ID:     c.ID.String(),
			Chat:   c.ID.String(),
			Detail: strings.Join(c.Users, " / "),
			At:     c.CreatedAt,
		}
	case strings.HasPrefix(key, memberPrefix):
		rest := strings.TrimPrefix(key, memberPrefix)
		cut := strings.LastIndex(rest, ":")
		if cut < 0 {
			return raw
		}
		return Entry{Kind: "MEMBER", ID: rest[:cut], Chat: rest[cut+1:], Detail: "index"}
	case strings.HasPrefix(key, pairPrefix):
		return Entry{
			Kind:   "PAIR",
			ID:     strings.TrimPrefix(key, pairPrefix),
			Chat:   string(value),
			Detail: "index",
		}
	case strings.HasPrefix(key, messagePrefix):
		m, err := unmarshalMessage(value)
		if err != nil {
			return raw
		}
		return Entry{
			Kind:   "MESSAGE",
			ID:     m.ID.String(),
			Chat:   m.Chat.String(),
			Detail: fmt.Sprintf("%s: %s", m.Author, m.Content),
			At:     m.At,
		}
	}
	return raw
}
