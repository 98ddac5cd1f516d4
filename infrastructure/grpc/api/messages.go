package api

import "time"

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

type Profile struct {
	Email    string     `json:"email"`
	Username string     `json:"username,omitempty"`
	PhotoURL string     `json:"photo_url,omitempty"`
	Online   bool       `json:"online"`
	LastSeen *time.Time `json:"last_seen,omitempty"`
}

type Message struct {
	ID              string    `json:"id"`
	ChatID          string    `json:"chat_id"`
	Sender          string    `json:"sender"`
	Content         string    `json:"content"`
	PhotoURL        string    `json:"photo_url,omitempty"`
	ReceiverHasRead bool      `json:"receiver_has_read"`
	CreatedAt       time.Time `json:"created_at"`
}

// Chat is one entry of the chat list, seen from the viewer.
// Recipient is empty when no participant differs from the viewer, Label is then a fallback.
type Chat struct {
	ID               string    `json:"id"`
	Users            []string  `json:"users"`
	Recipient        string    `json:"recipient,omitempty"`
	Label            string    `json:"label"`
	RecipientProfile *Profile  `json:"recipient_profile,omitempty"`
	LastMessage      *Message  `json:"last_message,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

type CreateChatRequest struct {
	RecipientEmail string `json:"recipient_email"`
}

type ChatResponse struct {
	Chat Chat `json:"chat"`
}

type ListChatsRequest struct {
	Query string `json:"query,omitempty"`
}

type ListChatsResponse struct {
	Chats []Chat `json:"chats"`
}

type GetChatRequest struct {
	ChatID string `json:"chat_id"`
}

type DeleteChatRequest struct {
	ChatID string `json:"chat_id"`
}

type DeleteChatResponse struct{}

type SendMessageRequest struct {
	ChatID   string `json:"chat_id"`
	Content  string `json:"content"`
	PhotoURL string `json:"photo_url,omitempty"`
}

type SendMessageResponse struct {
	Accepted bool `json:"accepted"`
}

type GetMessagesRequest struct {
	ChatID string  `json:"chat_id"`
	Cursor *string `json:"cursor,omitempty"`
}

type GetMessagesResponse struct {
	Messages []Message `json:"messages"`
	Cursor   *string   `json:"cursor,omitempty"`
}

type WatchChatRequest struct {
	ChatID string `json:"chat_id"`
}

// ChatEvent carries either a new message or the deletion of the watched chat.
type ChatEvent struct {
	Message *Message `json:"message,omitempty"`
	Deleted bool     `json:"deleted,omitempty"`
}

type WatchChatsRequest struct {
	Query string `json:"query,omitempty"`
}

type ChatListSnapshot struct {
	Chats []Chat `json:"chats"`
}

type GetProfileRequest struct {
	Email string `json:"email"`
}

type ProfileResponse struct {
	Profile Profile `json:"profile"`
}
