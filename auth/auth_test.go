package auth

import (
	"strings"
	"testing"
	"time"
	"whatsapp-clone/errors"

	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	req := require.New(t)
	password := "MyPasswordIsTr0pSur!"

	hash, err := HashPassword(password)
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	match, err := ComparePassword(password, hash)
	req.NoError(err)
	req.True(match)

	match, err = ComparePassword("WrongPassword", hash)
	req.NoError(err)
	req.False(match)

	_, err = ComparePassword(password, "not-a-hash")
	req.Error(err)
}

func TestRegistrationValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr error
	}{
		{"Valid request", RegisterRequest{"test@example.com", "ComplexPass123!", "Test"}, nil},
		{"Invalid email", RegisterRequest{"notanemail", "ComplexPass123!", ""}, errors.ErrInvalidEmailFormat},
		{"Password too short", RegisterRequest{"test@example.com", "Short1!", ""}, errors.ErrInvalidPassword},
		{"Missing digit", RegisterRequest{"test@example.com", "NoDigitPass!", ""}, errors.ErrInvalidPassword},
		{"Missing special char", RegisterRequest{"test@example.com", "NoSpecialChar123", ""}, errors.ErrInvalidPassword},
		{"Missing uppercase", RegisterRequest{"test@example.com", "nouppercase123!", ""}, errors.ErrInvalidPassword},
		{"Password too long", RegisterRequest{"test@example.com", strings.Repeat("a", 73), ""}, errors.ErrInvalidPassword},
		{"Username too long", RegisterRequest{"test@example.com", "ComplexPass123!", strings.Repeat("u", 65)}, errors.ErrInvalidPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			err := ValidateRegister(tt.req)
			if tt.wantErr == nil {
				req.NoError(err)
				return
			}
			req.ErrorIs(err, tt.wantErr)
		})
	}
}

func TestTokenManager(t *testing.T) {
	req := require.New(t)
	tokens := NewTokenManager("a-test-secret", time.Hour)

	token, err := tokens.GenerateToken("user-123", "alice@x.com", []string{"user"})
	req.NoError(err)

	claims, err := tokens.ValidateToken(token)
	req.NoError(err)
	req.Equal("user-123", claims.UserID)
	req.Equal("alice@x.com", claims.Email)
	req.Equal([]string{"user"}, claims.Roles)

	// Given another secret, the signature is rejected
	_, err = NewTokenManager("another-secret", time.Hour).ValidateToken(token)
	req.Error(err)

	// Given an expired token
	expired, err := NewTokenManager("a-test-secret", -time.Minute).GenerateToken("user-123", "alice@x.com", nil)
	req.NoError(err)
	_, err = tokens.ValidateToken(expired)
	req.Error(err)
}

func BenchmarkHashPassword(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = HashPassword("A-very-long-and-complex-password-for-bench-123!")
	}
}
