package auth

import (
	"context"

	"github.com/fitpulse-dev/fitpulse/pkg/storage"
)

// principalKey is a private type for the principal context key.
type principalKey struct{}

// SetPrincipal stores the authenticated user in the context.
func SetPrincipal(ctx context.Context, u *storage.User) context.Context {
	return context.WithValue(ctx, principalKey{}, u)
}

// PrincipalFromContext retrieves the authenticated user.
// Returns nil if no principal is set (unauthenticated request).
func PrincipalFromContext(ctx context.Context) *storage.User {
	if v, ok := ctx.Value(principalKey{}).(*storage.User); ok {
		return v
	}
	return nil
}
