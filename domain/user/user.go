// Package user defines profiles and presence of chat users.
package user

import "time"

// Profile is the public part of a user, shown next to chats and in the contact panel.
type Profile struct {
	ID       string
	Email    string
	Username string
	PhotoURL string
	LastSeen time.Time
}

// Presence is derived from LastSeen: a user active within the online window is online.
type Presence struct {
	Online   bool
	LastSeen time.Time
}

func (p Profile) DisplayName() string {
	if p.Username != "" {
		return p.Username
	}
	return p.Email
}

func (p Profile) Presence(now time.Time, window time.Duration) Presence {
	if p.LastSeen.IsZero() {
		return Presence{}
	}
	return Presence{
		Online:   now.Sub(p.LastSeen) <= window,
		LastSeen: p.LastSeen,
	}
}
