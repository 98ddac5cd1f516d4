package chat

import (
	"strings"

	"github.com/samber/lo"
)

// FilterSummaries keeps the chats having at least one participant whose email
// contains query, ignoring case. An empty query keeps everything.
func FilterSummaries(chats []Summary, query string) []Summary {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return chats
	}
	return lo.Filter(chats, func(item Summary, _ int) bool {
		return lo.SomeBy(item.Users, func(user string) bool {
			return strings.Contains(strings.ToLower(user), needle)
		})
	})
}
