// ABOUTME: Principal type and request-context propagation for authenticated identity
// ABOUTME: Provides WithPrincipal/FromContext for threading identity through handlers

package auth

import (
	"context"
	"slices"
)

// Principal holds the verified identity associated with the current request.
// It is reconstructed per request from a validated token (or a freshly
// authenticated credential) and lives only for the duration of that request.
type Principal struct {
	Subject string   // username of the authenticated user
	Roles   []string // roles assigned to this user, e.g. "USER", "ADMIN"
}

// HasAnyRole returns true if the principal holds at least one of the given roles.
func (p *Principal) HasAnyRole(roles ...string) bool {
	for _, want := range roles {
		if slices.Contains(p.Roles, want) {
			return true
		}
	}
	return false
}

// principalContextKey is the key type for storing a Principal in context.Context.
type principalContextKey struct{}

// WithPrincipal returns a new context with the Principal attached.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// FromContext retrieves the Principal from the context, returning nil if not present.
func FromContext(ctx context.Context) *Principal {
	val := ctx.Value(principalContextKey{})
	if val == nil {
		return nil
	}
	p, ok := val.(*Principal)
	if !ok {
		return nil
	}
	return p
}

// MustFromContext retrieves the Principal from the context, panicking if not present.
func MustFromContext(ctx context.Context) *Principal {
	p := FromContext(ctx)
	if p == nil {
		panic("auth: Principal not found in context")
	}
	return p
}
