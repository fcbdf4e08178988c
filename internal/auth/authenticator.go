// ABOUTME: Credential authentication against the user store
// ABOUTME: Collapses unknown-user, wrong-password, and disabled-account failures

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/liftlog/liftlog/internal/store"
)

// Credential failure sentinels. Callers must present both identically to the
// client; the distinction exists for internal logging only.
var (
	ErrBadCredentials  = errors.New("bad credentials")
	ErrAccountDisabled = errors.New("account disabled")
)

// dummyHash is a bcrypt hash compared against when the user does not exist,
// so unknown-username and wrong-password take the same time.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserLookup is the slice of the user store the authenticator needs.
type UserLookup interface {
	GetUserByUsername(ctx context.Context, username string) (*store.User, error)
}

// Authenticator verifies username/password credentials and produces a Principal.
// It is read-only: authentication has no side effects and is never retried.
type Authenticator struct {
	users  UserLookup
	hasher PasswordHasher
	logger *slog.Logger
}

// NewAuthenticator creates an Authenticator backed by the given user lookup
// and password hasher.
func NewAuthenticator(users UserLookup, hasher PasswordHasher, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{
		users:  users,
		hasher: hasher,
		logger: logger.With("component", "authenticator"),
	}
}

// Authenticate verifies the credential pair and returns the matching Principal.
// Unknown username and wrong password both return ErrBadCredentials; a correct
// password on a disabled account returns ErrAccountDisabled. Store failures
// other than not-found are returned wrapped and indicate an upstream problem,
// not a credential problem.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (*Principal, error) {
	user, err := a.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn the same bcrypt cost as a real comparison so unknown
			// usernames are not distinguishable by timing.
			a.hasher.Verify(password, dummyHash)
			a.logger.Debug("authentication failed: unknown user", "username", username)
			return nil, ErrBadCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if !a.hasher.Verify(password, user.PasswordHash) {
		a.logger.Debug("authentication failed: wrong password", "username", username)
		return nil, ErrBadCredentials
	}

	if !user.Enabled {
		a.logger.Info("authentication failed: account disabled", "username", username)
		return nil, ErrAccountDisabled
	}

	return &Principal{Subject: user.Username, Roles: user.Roles}, nil
}
