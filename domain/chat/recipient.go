package chat

import "github.com/samber/lo"

// Recipient is the participant of a chat that is not the viewer.
// The zero value is UnknownRecipient.
type Recipient string

// UnknownRecipient is returned when no other party can be derived: the viewer
// is not authenticated, the chat has no participants, or every participant is the viewer.
const UnknownRecipient Recipient = ""

func (r Recipient) IsUnknown() bool {
	return r == UnknownRecipient
}

func (r Recipient) Email() string {
	return string(r)
}

// Label returns the recipient email, or fallback when the recipient is unknown.
func (r Recipient) Label(fallback string) string {
	if r.IsUnknown() {
		return fallback
	}
	return string(r)
}

// ResolveRecipient returns the first participant that differs from viewerEmail.
// An empty viewerEmail means the viewer is not authenticated yet.
// It never fails: malformed participant lists yield UnknownRecipient.
func ResolveRecipient(participants []string, viewerEmail string) Recipient {
	if viewerEmail == "" || len(participants) == 0 {
		return UnknownRecipient
	}
	other, found := lo.Find(participants, func(p string) bool {
		return p != viewerEmail
	})
	if !found {
		return UnknownRecipient
	}
	return Recipient(other)
}
