package server

import (
	"context"
	"whatsapp-clone/auth"
	"whatsapp-clone/errors"
	"whatsapp-clone/infrastructure/grpc/api"
	"whatsapp-clone/services"
)

var _ api.UserServiceServer = (*UserServer)(nil)

type UserServer struct {
	userService services.IUserService
}

func NewUserServer(userService services.IUserService) *UserServer {
	return &UserServer{userService: userService}
}

// GetProfile feeds the contact panel. Without an email the caller gets its own profile.
func (s *UserServer) GetProfile(ctx context.Context, req *api.GetProfileRequest) (*api.ProfileResponse, error) {
	email := req.Email
	if email == "" {
		viewer, err := auth.ViewerFromContext(ctx)
		if err != nil {
			return nil, errors.MapToGRPCError(err)
		}
		email = viewer
	}
	profile, presence, err := s.userService.GetProfile(email)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &api.ProfileResponse{Profile: toProfile(profile, presence)}, nil
}
