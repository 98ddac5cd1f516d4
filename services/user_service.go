//go:generate go run go.uber.org/mock/mockgen -source=user_service.go -destination=../mocks/mock_user_service.go -package=mocks
package services

import (
	"strings"
	"time"
	"whatsapp-clone/domain/user"
	"whatsapp-clone/errors"
	"whatsapp-clone/repositories"
)

type IUserService interface {
	GetProfile(email string) (user.Profile, user.Presence, error)
	Touch(email string) error
}

type UserService struct {
	userRepository repositories.IUserRepository
	presenceWindow time.Duration
	now            func() time.Time
}

func NewUserService(repo repositories.IUserRepository, presenceWindow time.Duration) *UserService {
	return &UserService{userRepository: repo, presenceWindow: presenceWindow, now: time.Now}
}

// GetProfile returns the public profile of a user and whether they are online right now.
func (s *UserService) GetProfile(email string) (user.Profile, user.Presence, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return user.Profile{}, user.Presence{}, errors.ErrUserNotFound
	}
	stored, err := s.userRepository.GetUserByEmail(email)
	if err != nil {
		return user.Profile{}, user.Presence{}, err
	}
	profile := stored.Profile()
	return profile, profile.Presence(s.now(), s.presenceWindow), nil
}

// Touch records activity of the user now.
func (s *UserService) Touch(email string) error {
	return s.userRepository.TouchLastSeen(email, s.now().UTC())
}
