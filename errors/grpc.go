package errors

import (
	stderrors "errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	errorDomain = "whatsapp-clone"
	// ChatIDMetadataKey holds the existing chat id on an AlreadyExists status.
	ChatIDMetadataKey = "chat_id"
)

type mapping struct {
	err    error
	code   codes.Code
	reason string
}

// Order matters: the first matching sentinel wins.
var mappings = []mapping{
	{ErrEmptyInput, codes.InvalidArgument, "EMPTY_INPUT"},
	{ErrInvalidEmailFormat, codes.InvalidArgument, "INVALID_EMAIL_FORMAT"},
	{ErrSelfChat, codes.InvalidArgument, "SELF_CHAT"},
	{ErrChatAlreadyExists, codes.AlreadyExists, "CHAT_ALREADY_EXISTS"},
	{ErrChatNotFound, codes.NotFound, "CHAT_NOT_FOUND"},
	{ErrMalformedChat, codes.FailedPrecondition, "MALFORMED_CHAT"},
	{ErrEmptyMessage, codes.InvalidArgument, "EMPTY_MESSAGE"},
	{ErrMessageTooLong, codes.InvalidArgument, "MESSAGE_TOO_LONG"},
	{ErrInvalidCursor, codes.InvalidArgument, "INVALID_CURSOR"},
	{ErrCommandDropped, codes.ResourceExhausted, "COMMAND_DROPPED"},
	{ErrUnauthenticated, codes.Unauthenticated, "UNAUTHENTICATED"},
	{ErrUserNotFound, codes.NotFound, "USER_NOT_FOUND"},
	{ErrUserAlreadyExists, codes.AlreadyExists, "USER_ALREADY_EXISTS"},
	{ErrInvalidCredentials, codes.Unauthenticated, "INVALID_CREDENTIALS"},
	{ErrInvalidPassword, codes.InvalidArgument, "INVALID_PASSWORD"},
	{ErrTokenGeneration, codes.Internal, "TOKEN_GENERATION"},
}

// existingChat is implemented by rejections that point at a chat the caller
// should navigate to instead of creating a duplicate.
type existingChat interface {
	ExistingChatID() string
}

// MapToGRPCError converts a domain error into a gRPC status error.
// Errors that already carry a status are returned untouched, unknown errors become Internal.
func MapToGRPCError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	for _, m := range mappings {
		if !stderrors.Is(err, m.err) {
			continue
		}
		info := &errdetails.ErrorInfo{Reason: m.reason, Domain: errorDomain}
		var ref existingChat
		if stderrors.As(err, &ref) && ref.ExistingChatID() != "" {
			info.Metadata = map[string]string{ChatIDMetadataKey: ref.ExistingChatID()}
		}
		st, detailErr := status.New(m.code, err.Error()).WithDetails(info)
		if detailErr != nil {
			return status.Error(m.code, err.Error())
		}
		return st.Err()
	}
	return status.Error(codes.Internal, err.Error())
}

// FromGRPCError is the client-side inverse of MapToGRPCError: it returns the
// sentinel matching the status reason, or the original error when none matches.
func FromGRPCError(err error) error {
	if err == nil {
		return nil
	}
	info, ok := errorInfo(err)
	if !ok {
		return err
	}
	for _, m := range mappings {
		if m.reason == info.GetReason() {
			if chatID, found := info.GetMetadata()[ChatIDMetadataKey]; found {
				return &RemoteRejection{Reason: m.err, ChatID: chatID}
			}
			return m.err
		}
	}
	return err
}

// RemoteRejection is a rejection decoded from a status that carried an existing chat id.
type RemoteRejection struct {
	Reason error
	ChatID string
}

func (r *RemoteRejection) Error() string          { return r.Reason.Error() }
func (r *RemoteRejection) Unwrap() error          { return r.Reason }
func (r *RemoteRejection) ExistingChatID() string { return r.ChatID }

func errorInfo(err error) (*errdetails.ErrorInfo, bool) {
	st, ok := status.FromError(err)
	if !ok {
		return nil, false
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok && info.GetDomain() == errorDomain {
			return info, true
		}
	}
	return nil, false
}
