// ABOUTME: Tests for the bearer token validation middleware
// ABOUTME: Covers anonymous pass-through, valid tokens, and 401 short-circuits

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func runMiddleware(t *testing.T, codec *TokenCodec, authHeader string) (*httptest.ResponseRecorder, *Principal, bool) {
	t.Helper()

	var gotPrincipal *Principal
	handlerRan := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerRan = true
		gotPrincipal = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/workouts", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()

	TokenValidation(codec, nil)(handler).ServeHTTP(rec, req)
	return rec, gotPrincipal, handlerRan
}

func TestTokenValidation_ValidToken(t *testing.T) {
	codec := newTestCodec(t, time.Hour)
	token, err := codec.Issue(&Principal{Subject: "alice", Roles: []string{"USER"}}, time.Now())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	rec, principal, ran := runMiddleware(t, codec, BearerPrefix+token)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if !ran {
		t.Fatal("handler did not run")
	}
	if principal == nil {
		t.Fatal("expected Principal in request context")
	}
	if principal.Subject != "alice" {
		t.Errorf("Subject = %q, want %q", principal.Subject, "alice")
	}
	if len(principal.Roles) != 1 || principal.Roles[0] != "USER" {
		t.Errorf("Roles = %v, want [USER]", principal.Roles)
	}
}

func TestTokenValidation_NoHeader_PassesThroughAnonymous(t *testing.T) {
	codec := newTestCodec(t, time.Hour)

	rec, principal, ran := runMiddleware(t, codec, "")

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if !ran {
		t.Error("handler should run for anonymous requests")
	}
	if principal != nil {
		t.Errorf("expected no Principal, got %+v", principal)
	}
}

func TestTokenValidation_WrongPrefix_PassesThroughAnonymous(t *testing.T) {
	codec := newTestCodec(t, time.Hour)

	rec, principal, ran := runMiddleware(t, codec, "Basic dXNlcjpwYXNz")

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if !ran {
		t.Error("handler should run when no bearer token is present")
	}
	if principal != nil {
		t.Errorf("expected no Principal, got %+v", principal)
	}
}

func TestTokenValidation_InvalidToken_ShortCircuits(t *testing.T) {
	codec := newTestCodec(t, time.Hour)

	tests := []struct {
		name   string
		header string
	}{
		{
			name:   "garbage token",
			header: BearerPrefix + "garbage",
		},
		{
			name: "expired token",
			header: func() string {
				token, _ := codec.Issue(&Principal{Subject: "alice", Roles: []string{"USER"}}, time.Now().Add(-2*time.Hour))
				return BearerPrefix + token
			}(),
		},
		{
			name: "wrong signature",
			header: func() string {
				other, _ := NewTokenCodec([]byte("a-completely-different-secret-32"), time.Hour)
				token, _ := other.Issue(&Principal{Subject: "alice", Roles: []string{"USER"}}, time.Now())
				return BearerPrefix + token
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _, ran := runMiddleware(t, codec, tt.header)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
			if ran {
				t.Error("handler must not run for an invalid token")
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}
			// All token failures produce the identical body
			want := `{"error":"authentication required"}` + "\n"
			if rec.Body.String() != want {
				t.Errorf("body = %q, want %q", rec.Body.String(), want)
			}
		})
	}
}
