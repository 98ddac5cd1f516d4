package auth

import (
	"context"
	"whatsapp-clone/errors"
)

type contextKey string

const (
	UserIDKey contextKey = "user_id"
	EmailKey  contextKey = "email"
	RolesKey  contextKey = "roles"
)

// WithClaims injects the identity of a validated token into ctx.
func WithClaims(ctx context.Context, claims *CustomClaims) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
	ctx = context.WithValue(ctx, EmailKey, claims.Email)
	return context.WithValue(ctx, RolesKey, claims.Roles)
}

// ViewerFromContext returns the email of the authenticated caller.
func ViewerFromContext(ctx context.Context) (string, error) {
	email, ok := ctx.Value(EmailKey).(string)
	if !ok || email == "" {
		return "", errors.ErrUnauthenticated
	}
	return email, nil
}
