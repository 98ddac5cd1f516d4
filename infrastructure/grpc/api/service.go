package api

import (
	"context"

	"google.golang.org/grpc"
)

const (
	AuthServiceName = "whatsapp.v1.AuthService"
	ChatServiceName = "whatsapp.v1.ChatService"
	UserServiceName = "whatsapp.v1.UserService"

	MethodRegister    = "/" + AuthServiceName + "/Register"
	MethodLogin       = "/" + AuthServiceName + "/Login"
	MethodCreateChat  = "/" + ChatServiceName + "/CreateChat"
	MethodListChats   = "/" + ChatServiceName + "/ListChats"
	MethodGetChat     = "/" + ChatServiceName + "/GetChat"
	MethodDeleteChat  = "/" + ChatServiceName + "/DeleteChat"
	MethodSendMessage = "/" + ChatServiceName + "/SendMessage"
	MethodGetMessages = "/" + ChatServiceName + "/GetMessages"
	MethodWatchChat   = "/" + ChatServiceName + "/WatchChat"
	MethodWatchChats  = "/" + ChatServiceName + "/WatchChats"
	MethodGetProfile  = "/" + UserServiceName + "/GetProfile"
)

type (
	WatchChatServer  = grpc.ServerStreamingServer[ChatEvent]
	WatchChatsServer = grpc.ServerStreamingServer[ChatListSnapshot]
	WatchChatClient  = grpc.ServerStreamingClient[ChatEvent]
	WatchChatsClient = grpc.ServerStreamingClient[ChatListSnapshot]
)

type AuthServiceServer interface {
	Register(ctx context.Context, req *RegisterRequest) (*TokenResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*TokenResponse, error)
}

type ChatServiceServer interface {
	CreateChat(ctx context.Context, req *CreateChatRequest) (*ChatResponse, error)
	ListChats(ctx context.Context, req *ListChatsRequest) (*ListChatsResponse, error)
	GetChat(ctx context.Context, req *GetChatRequest) (*ChatResponse, error)
	DeleteChat(ctx context.Context, req *DeleteChatRequest) (*DeleteChatResponse, error)
	SendMessage(ctx context.Context, req *SendMessageRequest) (*SendMessageResponse, error)
	GetMessages(ctx context.Context, req *GetMessagesRequest) (*GetMessagesResponse, error)
	WatchChat(req *WatchChatRequest, stream WatchChatServer) error
	WatchChats(req *WatchChatsRequest, stream WatchChatsServer) error
}

type UserServiceServer interface {
	GetProfile(ctx context.Context, req *GetProfileRequest) (*ProfileResponse, error)
}

var AuthServiceDesc = grpc.ServiceDesc{
	ServiceName: AuthServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unaryHandler(MethodRegister, AuthServiceServer.Register)},
		{MethodName: "Login", Handler: unaryHandler(MethodLogin, AuthServiceServer.Login)},
	},
	Metadata: "whatsapp/v1/auth",
}

var ChatServiceDesc = grpc.ServiceDesc{
	ServiceName: ChatServiceName,
	HandlerType: (*ChatServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateChat", Handler: unaryHandler(MethodCreateChat, ChatServiceServer.CreateChat)},
		{MethodName: "ListChats", Handler: unaryHandler(MethodListChats, ChatServiceServer.ListChats)},
		{MethodName: "GetChat", Handler: unaryHandler(MethodGetChat, ChatServiceServer.GetChat)},
		{MethodName: "DeleteChat", Handler: unaryHandler(MethodDeleteChat, ChatServiceServer.DeleteChat)},
		{MethodName: "SendMessage", Handler: unaryHandler(MethodSendMessage, ChatServiceServer.SendMessage)},
		{MethodName: "GetMessages", Handler: unaryHandler(MethodGetMessages, ChatServiceServer.GetMessages)},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchChat",
			Handler:       serverStreamHandler(ChatServiceServer.WatchChat),
			ServerStreams: true,
		},
		{
			StreamName:    "WatchChats",
			Handler:       serverStreamHandler(ChatServiceServer.WatchChats),
			ServerStreams: true,
		},
	},
	Metadata: "whatsapp/v1/chat",
}

var UserServiceDesc = grpc.ServiceDesc{
	ServiceName: UserServiceName,
	HandlerType: (*UserServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetProfile", Handler: unaryHandler(MethodGetProfile, UserServiceServer.GetProfile)},
	},
	Metadata: "whatsapp/v1/user",
}

func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&AuthServiceDesc, srv)
}

func RegisterChatServiceServer(s grpc.ServiceRegistrar, srv ChatServiceServer) {
	s.RegisterService(&ChatServiceDesc, srv)
}

func RegisterUserServiceServer(s grpc.ServiceRegistrar, srv UserServiceServer) {
	s.RegisterService(&UserServiceDesc, srv)
}

// unaryHandler adapts a typed server method to the descriptor signature,
// decoding the request and running the interceptor chain.
func unaryHandler[Srv any, Req any, Resp any](fullMethod string,
	call func(Srv, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(Srv), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(Srv), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// serverStreamHandler reads the single request of a server stream then hands
// a typed stream to the server method.
func serverStreamHandler[Srv any, Req any, Resp any](
	call func(Srv, *Req, grpc.ServerStreamingServer[Resp]) error) grpc.StreamHandler {
	return func(srv any, stream grpc.ServerStream) error {
		in := new(Req)
		if err := stream.RecvMsg(in); err != nil {
			return err
		}
		return call(srv.(Srv), in, &grpc.GenericServerStream[Req, Resp]{ServerStream: stream})
	}
}
