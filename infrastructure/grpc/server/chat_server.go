package server

import (
	"context"
	"log/slog"
	"whatsapp-clone/auth"
	"whatsapp-clone/domain/chat"
	"whatsapp-clone/domain/event"
	"whatsapp-clone/errors"
	"whatsapp-clone/infrastructure/grpc/api"
	"whatsapp-clone/services"
	"whatsapp-clone/sink"
)

var _ api.ChatServiceServer = (*ChatServer)(nil)

type ChatServer struct {
	chatService          services.IChatService
	userService          services.IUserService
	connectionBufferSize int
	log                  *slog.Logger
}

func NewChatServer(log *slog.Logger, chatService services.IChatService,
	userService services.IUserService, connectionBufferSize int) *ChatServer {
	return &ChatServer{
		chatService:          chatService,
		userService:          userService,
		connectionBufferSize: connectionBufferSize,
		log:                  log,
	}
}

func (s *ChatServer) CreateChat(ctx context.Context, req *api.CreateChatRequest) (*api.ChatResponse, error) {
	viewer, err := auth.ViewerFromContext(ctx)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	overview, err := s.chatService.CreateChat(ctx, viewer, req.RecipientEmail)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &api.ChatResponse{Chat: toChat(overview)}, nil
}

func (s *ChatServer) ListChats(ctx context.Context, req *api.ListChatsRequest) (*api.ListChatsResponse, error) {
	viewer, err := auth.ViewerFromContext(ctx)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	overviews, err := s.chatService.ListChats(viewer, req.Query)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &api.ListChatsResponse{Chats: toChats(overviews)}, nil
}

func (s *ChatServer) GetChat(ctx context.Context, req *api.GetChatRequest) (*api.ChatResponse, error) {
	viewer, err := auth.ViewerFromContext(ctx)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	overview, err := s.chatService.GetChat(viewer, chat.ChatID(req.ChatID))
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &api.ChatResponse{Chat: toChat(overview)}, nil
}

func (s *ChatServer) DeleteChat(ctx context.Context, req *api.DeleteChatRequest) (*api.DeleteChatResponse, error) {
	viewer, err := auth.ViewerFromContext(ctx)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	if err := s.chatService.DeleteChat(ctx, viewer, chat.ChatID(req.ChatID)); err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &api.DeleteChatResponse{}, nil
}

// SendMessage handles an incoming message sending intent.
// The message is dispatched to the pool but not echoed in this call:
// the sender receives it via its WatchChat stream like any other participant.
func (s *ChatServer) SendMessage(ctx context.Context, req *api.SendMessageRequest) (*api.SendMessageResponse, error) {
	viewer, err := auth.ViewerFromContext(ctx)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	if err := s.chatService.SendMessage(viewer, chat.ChatID(req.ChatID), req.Content, req.PhotoURL); err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &api.SendMessageResponse{Accepted: true}, nil
}

func (s *ChatServer) GetMessages(ctx context.Context, req *api.GetMessagesRequest) (*api.GetMessagesResponse, error) {
	viewer, err := auth.ViewerFromContext(ctx)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	messages, cursor, err := s.chatService.GetMessages(chat.GetMessagesCommand{
		Chat:   chat.ChatID(req.ChatID),
		Viewer: viewer,
		Cursor: req.Cursor,
	})
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &api.GetMessagesResponse{Messages: toMessages(messages), Cursor: cursor}, nil
}

// WatchChat streams the new messages of one chat.
// It blocks until the client disconnects or the chat is deleted.
func (s *ChatServer) WatchChat(req *api.WatchChatRequest, stream api.WatchChatServer) error {
	ctx := stream.Context()
	viewer, err := auth.ViewerFromContext(ctx)
	if err != nil {
		return errors.MapToGRPCError(err)
	}
	chatID := chat.ChatID(req.ChatID)
	streamSink := sink.NewStreamSink(s.log, s.connectionBufferSize)
	unsubscribe, err := s.chatService.WatchChat(viewer, chatID, streamSink)
	if err != nil {
		return errors.MapToGRPCError(err)
	}
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			s.log.Debug("Watcher left chat", "viewer", viewer, "chat_id", chatID)
			return nil
		case evt := <-streamSink.Events:
			switch e := evt.(type) {
			case event.MessagePosted:
				message := toMessage(e.Message())
				if err := stream.Send(&api.ChatEvent{Message: &message}); err != nil {
					s.log.Error("Failed to push event to stream",
						"viewer", viewer,
						"chat_id", chatID,
						"error", err)
					return err
				}
			case event.ChatDeleted:
				return stream.Send(&api.ChatEvent{Deleted: true})
			}
		}
	}
}

// WatchChats streams the chat list of the viewer: a first snapshot, then a new one
// whenever a chat of the viewer is created, deleted or receives a message.
// Opening the stream counts as activity of the viewer.
func (s *ChatServer) WatchChats(req *api.WatchChatsRequest, stream api.WatchChatsServer) error {
	ctx := stream.Context()
	viewer, err := auth.ViewerFromContext(ctx)
	if err != nil {
		return errors.MapToGRPCError(err)
	}
	if err := s.userService.Touch(viewer); err != nil {
		s.log.Warn("Failed to update last seen", "viewer", viewer, "error", err)
	}

	streamSink := sink.NewStreamSink(s.log, s.connectionBufferSize)
	unsubscribe, err := s.chatService.WatchChats(viewer, streamSink)
	if err != nil {
		return errors.MapToGRPCError(err)
	}
	defer unsubscribe()

	if err := s.sendSnapshot(stream, viewer, req.Query); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			s.log.Debug("Watcher left chat list", "viewer", viewer)
			return nil
		case <-streamSink.Events:
			drain(streamSink.Events)
			if err := s.sendSnapshot(stream, viewer, req.Query); err != nil {
				return err
			}
		}
	}
}

func (s *ChatServer) sendSnapshot(stream api.WatchChatsServer, viewer, query string) error {
	overviews, err := s.chatService.ListChats(viewer, query)
	if err != nil {
		return errors.MapToGRPCError(err)
	}
	if err := stream.Send(&api.ChatListSnapshot{Chats: toChats(overviews)}); err != nil {
		s.log.Error("Failed to push snapshot to stream", "viewer", viewer, "error", err)
		return err
	}
	return nil
}

// drain discards the events already queued: a single snapshot covers them all.
func drain(events <-chan event.DomainEvent) {
	for {
		select {
		case <-events:
		default:
			return
		}
	}
}
