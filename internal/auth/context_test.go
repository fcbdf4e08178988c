// ABOUTME: Tests for Principal context propagation and role checks
// ABOUTME: Covers WithPrincipal/FromContext/MustFromContext and HasAnyRole

package auth

import (
	"context"
	"testing"
)

func TestWithPrincipal_FromContext(t *testing.T) {
	principal := &Principal{
		Subject: "alice",
		Roles:   []string{"USER", "ADMIN"},
	}

	ctx := WithPrincipal(context.Background(), principal)
	got := FromContext(ctx)

	if got == nil {
		t.Fatal("FromContext() returned nil")
	}
	if got.Subject != "alice" {
		t.Errorf("Subject = %q, want %q", got.Subject, "alice")
	}
	if len(got.Roles) != 2 {
		t.Errorf("Roles = %v, want 2 roles", got.Roles)
	}
}

func TestFromContext_Empty(t *testing.T) {
	got := FromContext(context.Background())
	if got != nil {
		t.Errorf("FromContext() = %+v, want nil", got)
	}
}

func TestMustFromContext_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("MustFromContext() should panic on empty context")
		}
	}()
	MustFromContext(context.Background())
}

func TestMustFromContext_ReturnsPrincipal(t *testing.T) {
	principal := &Principal{Subject: "alice"}
	ctx := WithPrincipal(context.Background(), principal)

	got := MustFromContext(ctx)
	if got.Subject != "alice" {
		t.Errorf("Subject = %q, want %q", got.Subject, "alice")
	}
}

func TestHasAnyRole(t *testing.T) {
	tests := []struct {
		name  string
		roles []string
		check []string
		want  bool
	}{
		{
			name:  "has role",
			roles: []string{"USER"},
			check: []string{"USER"},
			want:  true,
		},
		{
			name:  "has one of several",
			roles: []string{"USER"},
			check: []string{"ADMIN", "USER"},
			want:  true,
		},
		{
			name:  "disjoint",
			roles: []string{"USER"},
			check: []string{"ADMIN"},
			want:  false,
		},
		{
			name:  "no roles",
			roles: nil,
			check: []string{"USER"},
			want:  false,
		},
		{
			name:  "empty check",
			roles: []string{"USER"},
			check: nil,
			want:  false,
		},
		{
			name:  "case sensitive",
			roles: []string{"user"},
			check: []string{"USER"},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Principal{Subject: "alice", Roles: tt.roles}
			if got := p.HasAnyRole(tt.check...); got != tt.want {
				t.Errorf("HasAnyRole(%v) = %v, want %v", tt.check, got, tt.want)
			}
		})
	}
}
