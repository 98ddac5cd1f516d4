package chat

import (
	"fmt"
	"strings"
	"whatsapp-clone/errors"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var validate = validator.New()

// Pair is a validated participant set, ready to be persisted as a new chat.
type Pair struct {
	Viewer    string
	Recipient string
}

func (p Pair) Users() []string {
	return []string{p.Viewer, p.Recipient}
}

// Rejection explains why a new chat request was refused.
// Reason is one of the new chat sentinels of the errors package.
// ChatID is only set for errors.ErrChatAlreadyExists.
type Rejection struct {
	Reason error
	ChatID ChatID
}

func (r *Rejection) Error() string {
	if r.ChatID != "" {
		return fmt.Sprintf("%s: %s", r.Reason, r.ChatID)
	}
	return r.Reason.Error()
}

func (r *Rejection) Unwrap() error {
	return r.Reason
}

// ExistingChatID is the chat the caller should navigate to instead of creating a duplicate.
func (r *Rejection) ExistingChatID() string {
	return string(r.ChatID)
}

// ValidateNewChatInput gates the creation of a chat between viewerEmail and candidateEmail.
// The checks run in order and stop at the first failure:
//  1. the trimmed candidate is not empty
//  2. it is a syntactically valid email address
//  3. it is not the viewer (case-sensitive, as stored)
//  4. no existing chat of the viewer already contains it
//
// The returned error is always a *Rejection. The function is pure.
func ValidateNewChatInput(candidateEmail, viewerEmail string, existingChats []Summary) (Pair, error) {
	candidate := strings.TrimSpace(candidateEmail)
	if candidate == "" {
		return Pair{}, &Rejection{Reason: errors.ErrEmptyInput}
	}
	if err := validate.Var(candidate, "email"); err != nil {
		return Pair{}, &Rejection{Reason: errors.ErrInvalidEmailFormat}
	}
	if candidate == viewerEmail {
		return Pair{}, &Rejection{Reason: errors.ErrSelfChat}
	}
	existing, found := lo.Find(existingChats, func(item Summary) bool {
		return lo.Contains(item.Users, candidate)
	})
	if found {
		return Pair{}, &Rejection{Reason: errors.ErrChatAlreadyExists, ChatID: existing.ID}
	}
	return Pair{Viewer: viewerEmail, Recipient: candidate}, nil
}
