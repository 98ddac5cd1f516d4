package api

import (
	"context"

	"google.golang.org/grpc"
)

type AuthServiceClient interface {
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*TokenResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*TokenResponse, error)
}

type ChatServiceClient interface {
	CreateChat(ctx context.Context, in *CreateChatRequest, opts ...grpc.CallOption) (*ChatResponse, error)
	ListChats(ctx context.Context, in *ListChatsRequest, opts ...grpc.CallOption) (*ListChatsResponse, error)
	GetChat(ctx context.Context, in *GetChatRequest, opts ...grpc.CallOption) (*ChatResponse, error)
	DeleteChat(ctx context.Context, in *DeleteChatRequest, opts ...grpc.CallOption) (*DeleteChatResponse, error)
	SendMessage(ctx context.Context, in *SendMessageRequest, opts ...grpc.CallOption) (*SendMessageResponse, error)
	GetMessages(ctx context.Context, in *GetMessagesRequest, opts ...grpc.CallOption) (*GetMessagesResponse, error)
	WatchChat(ctx context.Context, in *WatchChatRequest, opts ...grpc.CallOption) (WatchChatClient, error)
	WatchChats(ctx context.Context, in *WatchChatsRequest, opts ...grpc.CallOption) (WatchChatsClient, error)
}

type UserServiceClient interface {
	GetProfile(ctx context.Context, in *GetProfileRequest, opts ...grpc.CallOption) (*ProfileResponse, error)
}

type authServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAuthServiceClient(cc grpc.ClientConnInterface) AuthServiceClient {
	return &authServiceClient{cc: cc}
}

func (c *authServiceClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c.cc, MethodRegister, in, opts)
}

func (c *authServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c.cc, MethodLogin, in, opts)
}

type chatServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewChatServiceClient(cc grpc.ClientConnInterface) ChatServiceClient {
	return &chatServiceClient{cc: cc}
}

func (c *chatServiceClient) CreateChat(ctx context.Context, in *CreateChatRequest, opts ...grpc.CallOption) (*ChatResponse, error) {
	return invoke[ChatResponse](ctx, c.cc, MethodCreateChat, in, opts)
}

func (c *chatServiceClient) ListChats(ctx context.Context, in *ListChatsRequest, opts ...grpc.CallOption) (*ListChatsResponse, error) {
	return invoke[ListChatsResponse](ctx, c.cc, MethodListChats, in, opts)
}

func (c *chatServiceClient) GetChat(ctx context.Context, in *GetChatRequest, opts ...grpc.CallOption) (*ChatResponse, error) {
	return invoke[ChatResponse](ctx, c.cc, MethodGetChat, in, opts)
}

func (c *chatServiceClient) DeleteChat(ctx context.Context, in *DeleteChatRequest, opts ...grpc.CallOption) (*DeleteChatResponse, error) {
	return invoke[DeleteChatResponse](ctx, c.cc, MethodDeleteChat, in, opts)
}

func (c *chatServiceClient) SendMessage(ctx context.Context, in *SendMessageRequest, opts ...grpc.CallOption) (*SendMessageResponse, error) {
	return invoke[SendMessageResponse](ctx, c.cc, MethodSendMessage, in, opts)
}

func (c *chatServiceClient) GetMessages(ctx context.Context, in *GetMessagesRequest, opts ...grpc.CallOption) (*GetMessagesResponse, error) {
	return invoke[GetMessagesResponse](ctx, c.cc, MethodGetMessages, in, opts)
}

func (c *chatServiceClient) WatchChat(ctx context.Context, in *WatchChatRequest, opts ...grpc.CallOption) (WatchChatClient, error) {
	return serverStream[WatchChatRequest, ChatEvent](ctx, c.cc, &ChatServiceDesc.Streams[0], MethodWatchChat, in, opts)
}

func (c *chatServiceClient) WatchChats(ctx context.Context, in *WatchChatsRequest, opts ...grpc.CallOption) (WatchChatsClient, error) {
	return serverStream[WatchChatsRequest, ChatListSnapshot](ctx, c.cc, &ChatServiceDesc.Streams[1], MethodWatchChats, in, opts)
}

type userServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewUserServiceClient(cc grpc.ClientConnInterface) UserServiceClient {
	return &userServiceClient{cc: cc}
}

func (c *userServiceClient) GetProfile(ctx context.Context, in *GetProfileRequest, opts ...grpc.CallOption) (*ProfileResponse, error) {
	return invoke[ProfileResponse](ctx, c.cc, MethodGetProfile, in, opts)
}

func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface,
	method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, method, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func serverStream[Req any, Resp any](ctx context.Context, cc grpc.ClientConnInterface,
	desc *grpc.StreamDesc, method string, in *Req, opts []grpc.CallOption) (grpc.ServerStreamingClient[Resp], error) {
	stream, err := cc.NewStream(ctx, desc, method, withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[Req, Resp]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
