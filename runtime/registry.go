package runtime

import (
	"sync"
	"whatsapp-clone/contract"
	"whatsapp-clone/domain/event"
)

type Set map[string]struct{}

type Registry struct {
	mu            sync.RWMutex
	sessions      map[string]contract.EventSink // map session -> Sink
	sessionTopics map[string][]event.Topic      // map session -> listened topics
	topicMembers  map[event.Topic]Set           // map topic -> sessions
}

func NewRegistry() *Registry {
	return &Registry{
		sessions:      make(map[string]contract.EventSink),
		sessionTopics: make(map[string][]event.Topic),
		topicMembers:  make(map[event.Topic]Set),
	}
}

// GetSinksForTopics retrieves the sinks of every session listening to at least one of the topics.
// A session listening to several of them is returned once, so an event is never delivered twice
// to the same stream.
// Returns nil when nobody listens.
func (r *Registry) GetSinksForTopics(topics ...event.Topic) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(Set)
	var activeSinks []contract.EventSink
	for _, topic := range topics {
		for sessionID := range r.topicMembers[topic] {
			if _, ok := seen[sessionID]; ok {
				continue
			}
			seen[sessionID] = struct{}{}
			if sink, exists := r.sessions[sessionID]; exists {
				activeSinks = append(activeSinks, sink)
			}
		}
	}
	return activeSinks
}

// Subscribe registers the sink of a session on a set of topics.
// Subscribing an existing session replaces its sink and its topics.
func (r *Registry) Subscribe(sessionID string, topics []event.Topic, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.removeLocked(sessionID)

	r.sessions[sessionID] = sink
	r.sessionTopics[sessionID] = topics
	for _, topic := range topics {
		if _, ok := r.topicMembers[topic]; !ok {
			r.topicMembers[topic] = make(Set)
		}
		r.topicMembers[topic][sessionID] = struct{}{}
	}
}

// Unsubscribe removes a session and leaves no empty topic behind.
func (r *Registry) Unsubscribe(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(sessionID)
}

func (r *Registry) removeLocked(sessionID string) {
	for _, topic := range r.sessionTopics[sessionID] {
		if members, ok := r.topicMembers[topic]; ok {
			delete(members, sessionID)
			if len(members) == 0 {
				delete(r.topicMembers, topic)
			}
		}
	}
	delete(r.sessionTopics, sessionID)
	delete(r.sessions, sessionID)
}

// Sessions counts the live sessions.
func (r *Registry) Sessions() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
