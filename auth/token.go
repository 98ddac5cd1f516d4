package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "whatsapp-clone"

// CustomClaims defines the structure of the data stored inside the JWT.
type CustomClaims struct {
	UserID string   `json:"user_id"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenManager signs and validates session tokens with a shared secret.
type TokenManager struct {
	secret   []byte
	duration time.Duration
}

func NewTokenManager(secret string, duration time.Duration) TokenManager {
	return TokenManager{secret: []byte(secret), duration: duration}
}

// GenerateToken creates a signed JWT for a specific user.
func (m TokenManager) GenerateToken(userID, email string, roles []string) (string, error) {
	now := time.Now()
	claims := &CustomClaims{
		UserID: userID,
		Email:  email,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	// HS256 (HMAC with SHA256)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken parses and validates the signature and expiration of a JWT string.
func (m TokenManager) ValidateToken(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{},
		func(token *jwt.Token) (interface{}, error) {
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
	)
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*CustomClaims); ok && token.Valid && claims.Email != "" {
		return claims, nil
	}
	return nil, jwt.ErrTokenInvalidClaims
}
