// Package projection builds local timelines from observed messages.
// Handles ordering and deduplication between history pages and live streams.
// Does not emit events or talk to the server.
package projection

import (
	"sort"
	"whatsapp-clone/infrastructure/grpc/api"
)

// Timeline holds the messages of one chat as seen by Owner.
type Timeline struct {
	Owner    string
	Messages []api.Message
	seen     map[string]struct{}
}

func NewTimeline(owner string) *Timeline {
	return &Timeline{
		Owner: owner,
		seen:  make(map[string]struct{}),
	}
}

// Add merges messages into the timeline and returns the ones it did not know yet,
// in ascending order. A message delivered by both the history and the stream is kept once.
func (t *Timeline) Add(messages ...api.Message) []api.Message {
	var added []api.Message
	for _, m := range messages {
		if _, ok := t.seen[m.ID]; ok {
			continue
		}
		t.seen[m.ID] = struct{}{}
		added = append(added, m)
	}
	if len(added) == 0 {
		return nil
	}
	byTime := func(list []api.Message) func(i, j int) bool {
		return func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) }
	}
	sort.SliceStable(added, byTime(added))
	t.Messages = append(t.Messages, added...)
	sort.SliceStable(t.Messages, byTime(t.Messages))
	return added
}

// Mine tells whether the message was sent by the owner of the timeline.
func (t *Timeline) Mine(m api.Message) bool {
	return m.Sender == t.Owner
}
