package server

import (
	"context"
	"strings"
	"whatsapp-clone/errors"
	"whatsapp-clone/infrastructure/grpc/api"
	"whatsapp-clone/services"
)

var _ api.AuthServiceServer = (*AuthServer)(nil)

type AuthServer struct {
	authService services.IAuthService
}

// NewAuthServer creates a new gRPC server for authentication.
func NewAuthServer(authService services.IAuthService) *AuthServer {
	return &AuthServer{authService: authService}
}

// Register handles user registration by validating input, hashing password and issuing a token.
func (s *AuthServer) Register(_ context.Context, in *api.RegisterRequest) (*api.TokenResponse, error) {
	token, err := s.authService.Register(in.Email, in.Password, in.Username)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &api.TokenResponse{Token: token.String(), Email: strings.TrimSpace(in.Email)}, nil
}

// Login verifies credentials and returns a session token.
func (s *AuthServer) Login(_ context.Context, in *api.LoginRequest) (*api.TokenResponse, error) {
	token, err := s.authService.Login(in.Email, in.Password)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &api.TokenResponse{Token: token.String(), Email: strings.TrimSpace(in.Email)}, nil
}
