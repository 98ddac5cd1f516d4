package auth

import (
	"context"
	"fmt"
	"strings"
	"whatsapp-clone/errors"
	"whatsapp-clone/infrastructure/grpc/api"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// Methods that do not require JWT authentication.
var publicMethods = map[string]struct{}{
	api.MethodLogin:    {},
	api.MethodRegister: {},
}

// UnaryInterceptor handles JWT validation for incoming unary calls.
func UnaryInterceptor(tokens TokenManager) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any,
		info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if isPublicMethod(info.FullMethod) {
			return handler(ctx, req)
		}
		newCtx, err := authenticate(ctx, tokens)
		if err != nil {
			return nil, err
		}
		return handler(newCtx, req)
	}
}

// StreamInterceptor handles JWT validation for incoming streams.
func StreamInterceptor(tokens TokenManager) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream,
		info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if isPublicMethod(info.FullMethod) {
			return handler(srv, ss)
		}
		newCtx, err := authenticate(ss.Context(), tokens)
		if err != nil {
			return err
		}
		return handler(srv, &authenticatedStream{ServerStream: ss, ctx: newCtx})
	}
}

// authenticate validates the "authorization: Bearer <token>" header
// and injects the user identity into the context.
func authenticate(ctx context.Context, tokens TokenManager) (context.Context, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil, unauthenticated("metadata is missing")
	}

	values := md.Get("authorization")
	if len(values) == 0 {
		return nil, unauthenticated("authorization token is missing")
	}

	tokenStr := strings.TrimPrefix(values[0], "Bearer ")
	claims, err := tokens.ValidateToken(tokenStr)
	if err != nil {
		return nil, unauthenticated("invalid or expired token")
	}
	return WithClaims(ctx, claims), nil
}

func isPublicMethod(method string) bool {
	_, ok := publicMethods[method]
	return ok
}

type authenticatedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *authenticatedStream) Context() context.Context {
	return s.ctx
}

// unauthenticated carries the domain reason so that clients can match errors.ErrUnauthenticated.
func unauthenticated(detail string) error {
	return errors.MapToGRPCError(fmt.Errorf("%w: %s", errors.ErrUnauthenticated, detail))
}
