// ABOUTME: Login endpoint exchanging username/password credentials for a signed token
// ABOUTME: Exempt from token validation; all credential failures produce one generic 401

package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// LoginRequest is the JSON request body for POST /api/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the JSON response for a successful login.
type LoginResponse struct {
	Token   string `json:"token"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// loginFailureResponse is the JSON response for a failed login. The body is
// identical for unknown user, wrong password, and disabled account.
type loginFailureResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// LoginHandler handles the credential login endpoint. It is the only
// endpoint that creates tokens rather than consuming them, and is therefore
// mounted outside the token validation filter.
type LoginHandler struct {
	authenticator *Authenticator
	codec         *TokenCodec
	logger        *slog.Logger
}

// NewLoginHandler creates a LoginHandler.
func NewLoginHandler(authenticator *Authenticator, codec *TokenCodec, logger *slog.Logger) *LoginHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoginHandler{
		authenticator: authenticator,
		codec:         codec,
		logger:        logger.With("component", "login"),
	}
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, loginFailureResponse{
			Message: "login failed",
			Error:   "invalid request body",
		})
		return
	}

	principal, err := h.authenticator.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrBadCredentials) || errors.Is(err, ErrAccountDisabled) {
			h.writeLoginFailure(w)
			return
		}
		// Identity store failure; not a credential problem.
		h.logger.Error("login failed: identity lookup error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	token, err := h.codec.Issue(principal, time.Now())
	if err != nil {
		h.logger.Error("login failed: token issuance error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	h.logger.Info("login successful", "subject", principal.Subject)

	w.Header().Set("Authorization", BearerPrefix+token)
	writeJSON(w, http.StatusOK, LoginResponse{
		Token:   token,
		Subject: principal.Subject,
		Message: "login successful",
	})
}

// writeLoginFailure emits the single generic credential-failure response.
// It deliberately does not say which check failed.
func (h *LoginHandler) writeLoginFailure(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, loginFailureResponse{
		Message: "login failed",
		Error:   "invalid username or password",
	})
}
