// Package auth provides the stateless authentication and authorization
// pipeline for liftlog.
//
// # Pipeline
//
// Every protected request flows through a statically composed chain:
//
//	TokenValidation -> Policy.Enforce -> resource handler
//
// TokenValidation extracts and verifies the bearer token, attaching a
// Principal to the request context when one is present and valid. Requests
// without a token pass through anonymous; requests with a bad token stop
// with 401. Policy.Enforce then matches the route against the policy table
// and rejects anonymous callers (401) or principals lacking a required
// role (403).
//
// The login endpoint is the one exception: it creates tokens instead of
// consuming them and is mounted outside the chain.
//
// # Tokens
//
// Tokens are HS256 signed JWTs carrying:
//
//   - sub: the authenticated username
//   - authorities: sorted role list
//   - exp: issuance time plus the configured TTL
//
// The signing secret is fixed for the process lifetime and never serialized
// or logged. No token state is kept server-side; a token is valid until it
// expires.
//
// # Failure Hygiene
//
// Credential failures (unknown user, wrong password, disabled account) are
// indistinguishable to the caller, down to a dummy bcrypt comparison for
// unknown usernames so response timing matches. Token failures (malformed,
// bad signature, expired, missing claims) likewise collapse into one 401
// body. Only the authenticated-but-unauthorized case is distinct (403).
// Specific causes are logged server-side for operability.
//
// # Roles
//
// Roles are free-form upper-case strings ("USER", "ADMIN") by application
// convention. The policy table grants access when the principal holds any
// of a rule's listed roles.
package auth
