package projection

import (
	"testing"
	"time"
	"whatsapp-clone/infrastructure/grpc/api"

	"github.com/stretchr/testify/require"
)

func TestTimeline_Add(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline("bob@x.com")
	now := time.Now()

	first := api.Message{ID: "m1", Sender: "alice@x.com", Content: "Hello Bob", CreatedAt: now}
	second := api.Message{ID: "m2", Sender: "bob@x.com", Content: "Hi Alice", CreatedAt: now.Add(time.Second)}
	third := api.Message{ID: "m3", Sender: "alice@x.com", Content: "How are you?", CreatedAt: now.Add(2 * time.Second)}

	// Given a history page received out of order
	added := timeline.Add(second, first)
	req.Equal([]api.Message{first, second}, added)

	// When the stream delivers a known message and a new one
	added = timeline.Add(second, third)

	// Then only the new one is reported
	req.Equal([]api.Message{third}, added)
	req.Equal([]api.Message{first, second, third}, timeline.Messages)
	req.Nil(timeline.Add(first))

	req.True(timeline.Mine(second))
	req.False(timeline.Mine(first))
}

func TestTimeline_Late_Message(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline("bob@x.com")
	now := time.Now()

	late := api.Message{ID: "m0", Sender: "alice@x.com", CreatedAt: now.Add(-time.Minute)}
	recent := api.Message{ID: "m1", Sender: "alice@x.com", CreatedAt: now}

	timeline.Add(recent)
	timeline.Add(late)

	req.Equal([]api.Message{late, recent}, timeline.Messages)
}
