package runtime

import (
	"context"
	"testing"
	"whatsapp-clone/contract"
	"whatsapp-clone/domain/event"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type Sink struct {
	name string
}

func (s Sink) Consume(_ context.Context, _ event.DomainEvent) error {
	return nil
}

func TestRegistry_Subscribe_One_Topic_One_Session(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sessionID := uuid.NewString()
	topic := event.ChatTopic("c1")
	sink := Sink{name: "alice"}

	// Given nobody is connected
	req.Empty(registry.sessions)
	req.Empty(registry.topicMembers)

	// When a session subscribes a topic
	registry.Subscribe(sessionID, []event.Topic{topic}, sink)

	// Then
	req.Len(registry.sessions, 1)
	req.Equal(sink, registry.sessions[sessionID])
	req.Len(registry.topicMembers, 1)
	req.Contains(registry.topicMembers[topic], sessionID)

	req.Len(registry.GetSinksForTopics(topic), 1)
	req.Contains(registry.GetSinksForTopics(topic), sink)
}

func TestRegistry_Subscribe_One_Topic_Multiple_Sessions(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	topic := event.ChatTopic("c1")
	sink1 := Sink{name: "alice"}
	sink2 := Sink{name: "bob"}

	registry.Subscribe(uuid.NewString(), []event.Topic{topic}, sink1)
	registry.Subscribe(uuid.NewString(), []event.Topic{topic}, sink2)

	req.Len(registry.sessions, 2)
	req.Len(registry.topicMembers[topic], 2)
	req.ElementsMatch([]contract.EventSink{sink1, sink2}, registry.GetSinksForTopics(topic))
}

func TestRegistry_Session_On_Several_Topics_Is_Returned_Once(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	chatTopic := event.ChatTopic("c1")
	userTopic := event.UserTopic("alice@x.com")
	sink := Sink{name: "alice"}

	// Given a session listening to both the chat thread and its chat list
	registry.Subscribe(uuid.NewString(), []event.Topic{chatTopic, userTopic}, sink)

	// When an event targets both topics
	sinks := registry.GetSinksForTopics(chatTopic, userTopic)

	// Then the sink is delivered once
	req.Len(sinks, 1)
	req.Nil(registry.GetSinksForTopics(event.UserTopic("bob@x.com")))
}

func TestRegistry_Unsubscribe(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	session1 := uuid.NewString()
	session2 := uuid.NewString()
	topic := event.ChatTopic("c1")
	sink1 := Sink{name: "alice"}
	sink2 := Sink{name: "bob"}

	registry.Subscribe(session1, []event.Topic{topic, event.UserTopic("alice@x.com")}, sink1)
	registry.Subscribe(session2, []event.Topic{topic}, sink2)

	// When the first session leaves
	registry.Unsubscribe(session1)

	// Then only the second one is left and no empty topic remains
	req.Equal(1, registry.Sessions())
	req.Len(registry.topicMembers, 1)
	req.Equal([]contract.EventSink{sink2}, registry.GetSinksForTopics(topic))

	// When the last session leaves
	registry.Unsubscribe(session2)
	req.Zero(registry.Sessions())
	req.Empty(registry.sessionTopics)
	req.Empty(registry.topicMembers)
	req.Nil(registry.GetSinksForTopics(topic))
}

func TestRegistry_Resubscribe_Replaces_Topics(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sessionID := uuid.NewString()
	sink := Sink{name: "alice"}

	registry.Subscribe(sessionID, []event.Topic{event.ChatTopic("c1")}, sink)
	registry.Subscribe(sessionID, []event.Topic{event.ChatTopic("c2")}, sink)

	req.Nil(registry.GetSinksForTopics(event.ChatTopic("c1")))
	req.Len(registry.GetSinksForTopics(event.ChatTopic("c2")), 1)
}
