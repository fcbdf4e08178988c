// ABOUTME: End-to-end scenarios for the authentication pipeline
// ABOUTME: Covers login issuance, failure hygiene, role denial, and expiry

package server

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liftlog/liftlog/internal/auth"
)

// TestScenario_LoginIssuesToken logs in with valid credentials and inspects
// the issued token's wire format and claims.
func TestScenario_LoginIssuesToken(t *testing.T) {
	srv := setupTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/login", "", `{"username":"alice","password":"correct"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// Token is returned both in the body and as an Authorization header.
	var resp auth.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice", resp.Subject)
	assert.Equal(t, auth.BearerPrefix+resp.Token, rec.Header().Get("Authorization"))

	// Three dot-separated base64url segments, no padding.
	segments := strings.Split(resp.Token, ".")
	require.Len(t, segments, 3)
	assert.NotContains(t, resp.Token, "=")

	payload, err := base64.RawURLEncoding.DecodeString(segments[1])
	require.NoError(t, err)

	var claims struct {
		Sub         string   `json:"sub"`
		Authorities []string `json:"authorities"`
		Iat         int64    `json:"iat"`
		Exp         int64    `json:"exp"`
	}
	require.NoError(t, json.Unmarshal(payload, &claims))
	assert.Equal(t, "alice", claims.Sub)
	assert.Equal(t, []string{"USER"}, claims.Authorities)
	assert.Equal(t, time.Hour, time.Duration(claims.Exp-claims.Iat)*time.Second)
}

// TestScenario_LoginFailuresAreUniform checks that an unknown user, a wrong
// password, and a disabled account produce byte-identical responses.
func TestScenario_LoginFailuresAreUniform(t *testing.T) {
	srv := setupTestServer(t)

	attempts := []struct {
		name string
		body string
	}{
		{"unknown user", `{"username":"nobody","password":"whatever"}`},
		{"wrong password", `{"username":"alice","password":"incorrect"}`},
		{"disabled account", `{"username":"dave","password":"davepw"}`},
	}

	var bodies []string
	for _, a := range attempts {
		rec := do(t, srv, http.MethodPost, "/api/login", "", a.body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, a.name)
		assert.Empty(t, rec.Header().Get("Authorization"), a.name)
		assert.NotContains(t, rec.Body.String(), "disabled", a.name)
		assert.NotContains(t, rec.Body.String(), "not found", a.name)
		bodies = append(bodies, rec.Body.String())
	}
	assert.Equal(t, bodies[0], bodies[1])
	assert.Equal(t, bodies[1], bodies[2])
}

// TestScenario_RoleDenied sends a valid USER token to an admin-only route.
func TestScenario_RoleDenied(t *testing.T) {
	srv := setupTestServer(t)
	alice := login(t, srv, "alice", "correct")

	rec := do(t, srv, http.MethodPost, "/api/exercises", alice, `{"name":"Deadlift"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"insufficient permissions"}`, rec.Body.String())

	// The denial must not reveal which roles the route requires.
	assert.NotContains(t, rec.Body.String(), "ADMIN")
}

// TestScenario_ExpiredToken presents a token whose expiry has passed and
// expects rejection before any handler or policy decision.
func TestScenario_ExpiredToken(t *testing.T) {
	srv := setupTestServer(t)

	codec, err := auth.NewTokenCodec([]byte(testSecret), time.Hour)
	require.NoError(t, err)
	expired, err := codec.Issue(&auth.Principal{Subject: "alice", Roles: []string{"USER"}}, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	for _, path := range []string{"/api/me", "/api/workouts"} {
		rec := do(t, srv, http.MethodGet, path, expired, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
		assert.JSONEq(t, `{"error":"authentication required"}`, rec.Body.String(), path)
	}

	// A stale header must not lock the caller out of login or health.
	rec := do(t, srv, http.MethodGet, "/health", expired, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, srv, http.MethodPost, "/api/login", expired, `{"username":"alice","password":"correct"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// TestScenario_TamperedToken flips a payload byte of a freshly issued token.
func TestScenario_TamperedToken(t *testing.T) {
	srv := setupTestServer(t)
	token := login(t, srv, "alice", "correct")

	segments := strings.Split(token, ".")
	require.Len(t, segments, 3)
	payload := []byte(segments[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := fmt.Sprintf("%s.%s.%s", segments[0], payload, segments[2])

	rec := do(t, srv, http.MethodGet, "/api/me", tampered, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
