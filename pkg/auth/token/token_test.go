package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-key-for-token-tests"

func newTestService(t *testing.T, cfg Config) *Service {
	t.Helper()
	if cfg.Secret == "" {
		cfg.Secret = testSecret
	}
	svc, err := NewService(cfg)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestNewService_Validation(t *testing.T) {
	if _, err := NewService(Config{}); err == nil {
		t.Error("NewService with empty secret = nil error, want error")
	}
	if _, err := NewService(Config{Secret: "s", Algorithm: "RS256"}); err == nil {
		t.Error("NewService with RS256 = nil error, want error (asymmetric not supported)")
	}
	if _, err := NewService(Config{Secret: "s", Algorithm: "none"}); err == nil {
		t.Error("NewService with alg none = nil error, want error")
	}
	for _, alg := range []string{"", "HS256", "HS384", "HS512"} {
		if _, err := NewService(Config{Secret: "s", Algorithm: alg}); err != nil {
			t.Errorf("NewService(alg=%q) = %v, want nil", alg, err)
		}
	}
}

func TestIssueVerify_Roundtrip(t *testing.T) {
	svc := newTestService(t, Config{})

	for _, subject := range []string{"alice", "user-42", "ünïcode"} {
		tok, err := svc.IssueWithTTL(subject, time.Hour)
		if err != nil {
			t.Fatalf("IssueWithTTL(%q): %v", subject, err)
		}

		got, err := svc.Verify(tok)
		if err != nil {
			t.Fatalf("Verify: %v", err)
		}
		if got != subject {
			t.Errorf("Verify = %q, want %q", got, subject)
		}
	}
}

func TestIssue_UsesDefaultTTL(t *testing.T) {
	svc := newTestService(t, Config{DefaultTTL: time.Hour})

	tok, err := svc.Issue("alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := svc.Verify(tok); err != nil {
		t.Errorf("Verify = %v, want nil", err)
	}
}

func TestVerify_Expired(t *testing.T) {
	svc := newTestService(t, Config{})

	tests := []struct {
		name string
		ttl  time.Duration
	}{
		{"zero ttl", 0},
		{"past expiry", -time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := svc.IssueWithTTL("alice", tt.ttl)
			if err != nil {
				t.Fatalf("IssueWithTTL: %v", err)
			}

			// Advance the clock one second past issuance so even a
			// same-second expiry is unambiguously in the past.
			svc.now = func() time.Time { return time.Now().Add(time.Second) }
			defer func() { svc.now = time.Now }()

			if _, err := svc.Verify(tok); !errors.Is(err, ErrInvalid) {
				t.Errorf("Verify = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestVerify_ExpiryBoundary(t *testing.T) {
	svc := newTestService(t, Config{})

	tok, err := svc.IssueWithTTL("alice", 2*time.Second)
	if err != nil {
		t.Fatalf("IssueWithTTL: %v", err)
	}

	// Just before expiry the token is still good.
	if _, err := svc.Verify(tok); err != nil {
		t.Fatalf("Verify before expiry = %v, want nil", err)
	}

	// Just after, it is not.
	svc.now = func() time.Time { return time.Now().Add(3 * time.Second) }
	defer func() { svc.now = time.Now }()

	if _, err := svc.Verify(tok); !errors.Is(err, ErrInvalid) {
		t.Errorf("Verify after expiry = %v, want ErrInvalid", err)
	}
}

func TestVerify_Tampered(t *testing.T) {
	svc := newTestService(t, Config{})

	tok, err := svc.IssueWithTTL("alice", time.Hour)
	if err != nil {
		t.Fatalf("IssueWithTTL: %v", err)
	}

	// Flip one byte in each segment of the token.
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("token has %d segments, want 3", len(parts))
	}
	for i := range parts {
		mutated := make([]string, 3)
		copy(mutated, parts)

		seg := []byte(mutated[i])
		if seg[0] == 'A' {
			seg[0] = 'B'
		} else {
			seg[0] = 'A'
		}
		mutated[i] = string(seg)

		if _, err := svc.Verify(strings.Join(mutated, ".")); !errors.Is(err, ErrInvalid) {
			t.Errorf("Verify with tampered segment %d = %v, want ErrInvalid", i, err)
		}
	}
}

func TestVerify_Garbage(t *testing.T) {
	svc := newTestService(t, Config{})

	for _, tok := range []string{"", "not-a-token", "a.b.c", "ey.ey.ey"} {
		if _, err := svc.Verify(tok); !errors.Is(err, ErrInvalid) {
			t.Errorf("Verify(%q) = %v, want ErrInvalid", tok, err)
		}
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	svc := newTestService(t, Config{})
	other := newTestService(t, Config{Secret: "a-completely-different-secret"})

	tok, err := other.IssueWithTTL("alice", time.Hour)
	if err != nil {
		t.Fatalf("IssueWithTTL: %v", err)
	}

	if _, err := svc.Verify(tok); !errors.Is(err, ErrInvalid) {
		t.Errorf("Verify with wrong secret = %v, want ErrInvalid", err)
	}
}

func TestVerify_AlgorithmConfusion(t *testing.T) {
	// A token signed with HS512 must not verify against a service pinned
	// to HS256, even though the secret matches.
	hs512 := newTestService(t, Config{Algorithm: "HS512"})
	hs256 := newTestService(t, Config{Algorithm: "HS256"})

	tok, err := hs512.IssueWithTTL("alice", time.Hour)
	if err != nil {
		t.Fatalf("IssueWithTTL: %v", err)
	}

	if _, err := hs256.Verify(tok); !errors.Is(err, ErrInvalid) {
		t.Errorf("Verify HS512 token on HS256 service = %v, want ErrInvalid", err)
	}
}

func TestVerify_MissingSubject(t *testing.T) {
	svc := newTestService(t, Config{})

	// Hand-craft tokens that are validly signed but carry no usable sub.
	mk := func(claims jwt.MapClaims) string {
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
			SignedString([]byte(testSecret))
		if err != nil {
			t.Fatalf("signing crafted token: %v", err)
		}
		return signed
	}

	exp := time.Now().Add(time.Hour).Unix()
	tests := []struct {
		name string
		tok  string
	}{
		{"no sub claim", mk(jwt.MapClaims{"exp": exp})},
		{"empty sub", mk(jwt.MapClaims{"sub": "", "exp": exp})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Verify(tt.tok); !errors.Is(err, ErrMalformed) {
				t.Errorf("Verify = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestVerify_MissingExpiry(t *testing.T) {
	svc := newTestService(t, Config{})

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice",
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("signing crafted token: %v", err)
	}

	if _, err := svc.Verify(signed); !errors.Is(err, ErrInvalid) {
		t.Errorf("Verify without exp = %v, want ErrInvalid", err)
	}
}
