package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fitpulse-dev/fitpulse/pkg/auth/token"
	"github.com/fitpulse-dev/fitpulse/pkg/storage"
)

// ErrUnauthorized is the single externally observable authentication
// failure. Token problems and orphaned or inactive subjects all map here.
var ErrUnauthorized = errors.New("unauthorized")

// UserLookup resolves a token subject to a principal. Implementations
// return storage.ErrNotFound when no matching user exists.
type UserLookup func(ctx context.Context, username string) (*storage.User, error)

// Resolver reconstructs the authenticated principal from a raw bearer
// token, or fails closed. Resolution is stateless and idempotent: no
// mutation, no caching, no retry.
type Resolver struct {
	tokens *token.Service
	lookup UserLookup
}

// NewResolver creates a Resolver from a token service and a user lookup.
func NewResolver(tokens *token.Service, lookup UserLookup) *Resolver {
	return &Resolver{tokens: tokens, lookup: lookup}
}

// Resolve verifies rawToken and looks up its subject.
//
// On verification failure the store is never consulted. A valid token
// whose subject has no matching user, or whose user has been deactivated,
// fails with the same ErrUnauthorized as a bad token: outside observers
// must not be able to distinguish the two.
func (r *Resolver) Resolve(ctx context.Context, rawToken string) (*storage.User, error) {
	subject, err := r.tokens.Verify(rawToken)
	if err != nil {
		slog.Debug("token verification failed", "error", err)
		return nil, ErrUnauthorized
	}

	user, err := r.lookup(ctx, subject)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			// Store trouble is not an auth decision, but the request
			// cannot be authenticated either way.
			return nil, fmt.Errorf("looking up principal: %w", err)
		}
		slog.Debug("token subject has no matching user", "subject", subject)
		return nil, ErrUnauthorized
	}

	if !user.IsActive {
		slog.Debug("token subject is deactivated", "subject", subject)
		return nil, ErrUnauthorized
	}

	return user, nil
}
