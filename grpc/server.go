// Package grpc assembles the gRPC server of the chat backend.
package grpc

import (
	"log/slog"
	"time"
	"whatsapp-clone/auth"
	"whatsapp-clone/infrastructure/grpc/api"
	"whatsapp-clone/infrastructure/grpc/server"
	"whatsapp-clone/services"

	grpc3 "github.com/mama165/sdk-go/grpc"
	"google.golang.org/grpc"
)

// Services bundles what the gRPC handlers serve.
type Services struct {
	Auth services.IAuthService
	Chat services.IChatService
	User services.IUserService
}

// NewServer registers the auth, chat and user services behind the logging
// and JWT interceptors. Login and Register are the only public methods.
func NewServer(log *slog.Logger, tokens auth.TokenManager, svc Services,
	connectionBufferSize int, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts,
		grpc.ChainUnaryInterceptor(
			grpc3.UnaryLoggingInterceptor(log),
			auth.UnaryInterceptor(tokens),
		),
		grpc.ChainStreamInterceptor(
			streamLoggingInterceptor(log),
			auth.StreamInterceptor(tokens),
		),
	)
	s := grpc.NewServer(opts...)
	api.RegisterAuthServiceServer(s, server.NewAuthServer(svc.Auth))
	api.RegisterChatServiceServer(s, server.NewChatServer(log, svc.Chat, svc.User, connectionBufferSize))
	api.RegisterUserServiceServer(s, server.NewUserServer(svc.User))
	return s
}

// streamLoggingInterceptor logs how long each stream stayed open.
func streamLoggingInterceptor(log *slog.Logger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		err := handler(srv, ss)
		log.Debug("Stream closed", "method", info.FullMethod, "duration", time.Since(start), "error", err)
		return err
	}
}
