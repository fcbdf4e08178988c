// ABOUTME: HTTP middleware validating bearer tokens on every protected request
// ABOUTME: Missing header passes through anonymous; invalid token short-circuits with 401

package auth

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// BearerPrefix is the expected Authorization header prefix.
const BearerPrefix = "Bearer "

// extractBearerToken extracts a bearer token from the Authorization header.
// Returns the token and an error message (empty if successful).
func extractBearerToken(authHeader string) (string, string) {
	if authHeader == "" {
		return "", "missing authorization header"
	}
	if !strings.HasPrefix(authHeader, BearerPrefix) {
		return "", "invalid authorization header format"
	}
	token := strings.TrimPrefix(authHeader, BearerPrefix)
	if token == "" {
		return "", "empty token"
	}
	return token, ""
}

// TokenValidation creates an HTTP middleware that validates bearer tokens.
// Requests without an Authorization header (or with a non-bearer one) pass
// through unauthenticated; the route policy decides whether that is allowed.
// Requests that do present a token must present a valid one: any verification
// failure ends the request with 401 before the handler runs. On success the
// reconstructed Principal is attached to the request context for the duration
// of the request.
func TokenValidation(codec *TokenCodec, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "token-validation")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, errMsg := extractBearerToken(r.Header.Get("Authorization"))
			if errMsg != "" {
				// Anonymous request; authorization policy rejects it later
				// if the route requires authentication.
				next.ServeHTTP(w, r)
				return
			}

			principal, err := codec.Verify(token, time.Now())
			if err != nil {
				logger.Debug("token rejected", "path", r.URL.Path, "error", err)
				WriteUnauthenticated(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}
