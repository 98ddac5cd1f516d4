//go:generate go run go.uber.org/mock/mockgen -source=auth_service.go -destination=../mocks/mock_auth_service.go -package=mocks
package services

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
	"whatsapp-clone/auth"
	"whatsapp-clone/errors"
	"whatsapp-clone/repositories"
)

type IAuthService interface {
	Login(email, password string) (Token, error)
	Register(email, password, username string) (Token, error)
}

type AuthService struct {
	log            *slog.Logger
	userRepository repositories.IUserRepository
	tokens         auth.TokenManager
	now            func() time.Time
}

type Token string

func (t Token) String() string {
	return string(t)
}

func NewAuthService(log *slog.Logger, repo repositories.IUserRepository, tokens auth.TokenManager) IAuthService {
	return &AuthService{log: log, userRepository: repo, tokens: tokens, now: time.Now}
}

func (s *AuthService) Register(email, password, username string) (Token, error) {
	email = strings.TrimSpace(email)

	// 1. Validate business rules before any expensive cryptographic operation.
	if err := auth.ValidateRegister(auth.RegisterRequest{
		Email:    email,
		Password: password,
		Username: username,
	}); err != nil {
		return "", err
	}

	// 2. Hash here so the repository never sees plain passwords.
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hashing failed: %w", err)
	}

	// 3. Propagates ErrUserAlreadyExists if the email is taken
	userID, err := s.userRepository.CreateUser(repositories.NewUser{
		Email:        email,
		PasswordHash: hashedPassword,
		Username:     username,
	})
	if err != nil {
		return "", err
	}

	token, err := s.tokens.GenerateToken(userID, email, []string{"user"})
	if err != nil {
		return "", errors.ErrTokenGeneration
	}
	return Token(token), nil
}

func (s *AuthService) Login(email, password string) (Token, error) {
	user, err := s.userRepository.GetUserByEmail(strings.TrimSpace(email))
	if err != nil {
		// Generic error to prevent user enumeration attacks
		return "", errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return "", errors.ErrInvalidCredentials
	}

	// A sign-in counts as activity
	if err := s.userRepository.TouchLastSeen(user.Email, s.now().UTC()); err != nil {
		s.log.Warn("Failed to update last seen on login", "email", user.Email, "error", err)
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.Roles)
	if err != nil {
		return "", errors.ErrTokenGeneration
	}
	return Token(token), nil
}
