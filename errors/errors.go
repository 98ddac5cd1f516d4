package errors

import "fmt"

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")
	ErrEmptyWords  = fmt.Errorf("no censored words found")

	// New chat rejections, checked in this order.
	ErrEmptyInput         = fmt.Errorf("recipient email is empty")
	ErrInvalidEmailFormat = fmt.Errorf("recipient email is not a valid address")
	ErrSelfChat           = fmt.Errorf("cannot start a chat with yourself")
	ErrChatAlreadyExists  = fmt.Errorf("a chat with this recipient already exists")

	ErrChatNotFound       = fmt.Errorf("chat not found")
	ErrMalformedChat      = fmt.Errorf("chat participants are malformed")
	ErrEmptyMessage       = fmt.Errorf("message content is empty")
	ErrMessageTooLong     = fmt.Errorf("message content is too long")
	ErrInvalidCursor      = fmt.Errorf("invalid pagination cursor")
	ErrCommandDropped     = fmt.Errorf("command queue is full")
	ErrUnauthenticated    = fmt.Errorf("viewer is not authenticated")
	ErrUserNotFound       = fmt.Errorf("user not found")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("invalid password")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
)
