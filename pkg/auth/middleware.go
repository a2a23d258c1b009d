package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fitpulse-dev/fitpulse/pkg/api"
	"github.com/fitpulse-dev/fitpulse/pkg/observability"
)

// Middleware creates HTTP middleware that requires a valid bearer token.
// On success the resolved principal is injected into the request context;
// on any failure the request is rejected with 401 and a Bearer challenge.
func Middleware(resolver *Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				writeUnauthorized(w)
				return
			}

			principal, err := resolver.Resolve(r.Context(), raw)
			if err != nil {
				slog.Warn("authentication failed",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				observability.AuthFailuresTotal.Inc()
				writeUnauthorized(w)
				return
			}

			slog.Debug("authentication succeeded",
				"subject", principal.Username,
				"path", r.URL.Path,
			)

			next.ServeHTTP(w, r.WithContext(SetPrincipal(r.Context(), principal)))
		})
	}
}

// bearerToken extracts the token from the Authorization header.
// Returns false for a missing header, a non-Bearer scheme, or an empty token.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	scheme, tok, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	tok = strings.TrimSpace(tok)
	if tok == "" {
		return "", false
	}
	return tok, true
}

// writeUnauthorized writes the collapsed 401 response with the bearer
// challenge required by RFC 6750.
func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(api.ErrorResponse{Error: api.NewUnauthorizedError()})
}
