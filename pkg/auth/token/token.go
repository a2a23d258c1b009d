// Package token implements the access-token service: issuance and
// verification of signed, time-limited bearer tokens carrying a subject.
//
// Tokens are JWTs signed with a process-wide symmetric secret using an
// HS256-family algorithm. Validity is purely a function of signature and
// expiry; there is no server-side token record, so a token cannot be
// revoked before its natural expiry.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification failure kinds. Callers are expected to collapse both into a
// single unauthorized outcome; the distinction exists for logging only.
var (
	// ErrInvalid covers signature mismatch, decode failure, and expiry.
	ErrInvalid = errors.New("invalid token")

	// ErrMalformed covers structurally valid tokens without a usable
	// subject claim.
	ErrMalformed = errors.New("token missing subject")
)

// Config holds the token service settings, fixed at process startup.
type Config struct {
	// Secret is the symmetric signing key. Required.
	Secret string

	// Algorithm is the HMAC signing algorithm: HS256, HS384, or HS512.
	// Default: HS256.
	Algorithm string

	// DefaultTTL is the lifetime applied by Issue. Default: 30 minutes.
	DefaultTTL time.Duration
}

// Service issues and verifies access tokens. The secret is read-only after
// construction and safe for unsynchronized concurrent use.
type Service struct {
	secret     []byte
	method     *jwt.SigningMethodHMAC
	defaultTTL time.Duration
	now        func() time.Time
}

// NewService creates a token service. A missing secret or a non-HMAC
// algorithm is a configuration error.
func NewService(cfg Config) (*Service, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token: signing secret is required")
	}

	alg := cfg.Algorithm
	if alg == "" {
		alg = "HS256"
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("token: unsupported signing algorithm %q", alg)
	}

	ttl := cfg.DefaultTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}

	return &Service{
		secret:     []byte(cfg.Secret),
		method:     method,
		defaultTTL: ttl,
		now:        time.Now,
	}, nil
}

// Issue creates a signed token for subject using the configured default TTL.
func (s *Service) Issue(subject string) (string, error) {
	return s.IssueWithTTL(subject, s.defaultTTL)
}

// IssueWithTTL creates a signed token for subject expiring after ttl.
// A zero or negative ttl produces an already-expired token.
func (s *Service) IssueWithTTL(subject string, ttl time.Duration) (string, error) {
	now := s.now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify decodes tokenStr, checks its signature against the secret and its
// expiry against the current UTC time, and returns the subject.
//
// Returns ErrInvalid when decoding, signature verification, or the expiry
// check fails; ErrMalformed when the token verifies but carries no
// non-empty subject.
func (s *Service) Verify(tokenStr string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		// The signing method is pinned; a token claiming any other
		// algorithm never reaches signature verification.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if claims.Subject == "" {
		return "", ErrMalformed
	}
	return claims.Subject, nil
}
