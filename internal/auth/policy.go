// ABOUTME: Declarative route-to-requirement authorization policy
// ABOUTME: Rules load once at startup from TOML and are evaluated most-specific-first

package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// Rule maps a path pattern (and optionally a method list) to an access
// requirement. A pattern ending in "/" matches the whole subtree; any other
// pattern matches exactly. An empty method list matches every method.
//
// Exactly one requirement applies per rule:
//   - Public true: no authentication needed
//   - Roles non-empty: principal must hold at least one listed role
//   - neither: any authenticated principal
type Rule struct {
	Path    string   `toml:"path"`
	Methods []string `toml:"methods"`
	Public  bool     `toml:"public"`
	Roles   []string `toml:"roles"`
}

// matches reports whether the rule applies to the given method and path.
func (r *Rule) matches(method, path string) bool {
	if len(r.Methods) > 0 && !slices.Contains(r.Methods, method) {
		return false
	}
	if strings.HasSuffix(r.Path, "/") {
		return strings.HasPrefix(path, r.Path) || path == strings.TrimSuffix(r.Path, "/")
	}
	return path == r.Path
}

// Policy holds the static route rules. Rules are loaded once at startup and
// never mutated, so a Policy is safe for concurrent use.
type Policy struct {
	rules []Rule
}

// policyFile is the TOML document shape for LoadPolicy.
type policyFile struct {
	Rules []Rule `toml:"rule"`
}

// NewPolicy validates and compiles a rule list into a Policy.
func NewPolicy(rules []Rule) (*Policy, error) {
	for i, r := range rules {
		if r.Path == "" {
			return nil, fmt.Errorf("rule %d: path is required", i)
		}
		if !strings.HasPrefix(r.Path, "/") {
			return nil, fmt.Errorf("rule %d: path %q must start with /", i, r.Path)
		}
		if r.Public && len(r.Roles) > 0 {
			return nil, fmt.Errorf("rule %d: public and roles are mutually exclusive", i)
		}
		for _, m := range r.Methods {
			if m != strings.ToUpper(m) {
				return nil, fmt.Errorf("rule %d: method %q must be upper-case", i, m)
			}
		}
	}
	return &Policy{rules: rules}, nil
}

// LoadPolicy reads a TOML rule table from the given path:
//
//	[[rule]]
//	path = "/api/exercises"
//	methods = ["POST", "PUT", "DELETE"]
//	roles = ["ADMIN"]
func LoadPolicy(path string) (*Policy, error) {
	var file policyFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("parsing policy file: %w", err)
	}
	policy, err := NewPolicy(file.Rules)
	if err != nil {
		return nil, fmt.Errorf("validating policy file: %w", err)
	}
	return policy, nil
}

// Match returns the most specific rule for the request, or nil if no rule
// matches. Specificity is pattern length: an exact or longer-prefix rule
// beats a shorter prefix rule. Callers treat nil as "authenticated any".
func (p *Policy) Match(method, path string) *Rule {
	var best *Rule
	for i := range p.rules {
		r := &p.rules[i]
		if !r.matches(method, path) {
			continue
		}
		if best == nil || len(r.Path) > len(best.Path) {
			best = r
		}
	}
	return best
}

// Enforce creates an HTTP middleware applying the policy. It must run after
// TokenValidation so the request context carries the Principal when a valid
// token was presented. Anonymous requests to non-public routes get 401;
// authenticated requests lacking a required role get 403.
func (p *Policy) Enforce(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "authorization")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rule := p.Match(r.Method, r.URL.Path)
			if rule != nil && rule.Public {
				next.ServeHTTP(w, r)
				return
			}

			principal := FromContext(r.Context())
			if principal == nil {
				WriteUnauthenticated(w)
				return
			}

			if rule != nil && len(rule.Roles) > 0 && !principal.HasAnyRole(rule.Roles...) {
				logger.Debug("denied by role requirement",
					"path", r.URL.Path,
					"method", r.Method,
					"subject", principal.Subject,
				)
				WriteForbidden(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
