// ABOUTME: JWT token issuance and verification for the stateless auth pipeline
// ABOUTME: Uses HS256 signing with a process-wide secret key and configurable TTL

package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the minimum signing key length in bytes.
const MinSecretLength = 32

// Token errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrMissingClaim = errors.New("missing required claim")
)

// TokenCodec issues and verifies HS256 signed JWTs carrying a Principal.
// The secret is immutable after construction, so a single codec is safe to
// share across any number of concurrent requests.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenCodec creates a codec with the given signing secret and token TTL.
// The secret must be at least MinSecretLength bytes.
func NewTokenCodec(secret []byte, ttl time.Duration) (*TokenCodec, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("signing secret must be at least %d bytes, got %d", MinSecretLength, len(secret))
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token TTL must be positive, got %v", ttl)
	}
	return &TokenCodec{secret: secret, ttl: ttl}, nil
}

// GenerateSecret returns a random signing secret of MinSecretLength bytes.
// Used when no secret is configured; tokens signed with it do not survive
// a process restart.
func GenerateSecret() ([]byte, error) {
	secret := make([]byte, MinSecretLength)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generating signing secret: %w", err)
	}
	return secret, nil
}

// TTL returns the configured token lifetime.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue creates a signed token for the given principal. Claims are
// "sub" (subject), "authorities" (sorted role list), "iat", and "exp"
// (now + TTL).
func (c *TokenCodec) Issue(p *Principal, now time.Time) (string, error) {
	authorities := make([]string, len(p.Roles))
	copy(authorities, p.Roles)
	sort.Strings(authorities)

	claims := jwt.MapClaims{
		"sub":         p.Subject,
		"authorities": authorities,
		"iat":         now.Unix(),
		"exp":         now.Add(c.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify validates the token signature and expiry against the given time and
// reconstructs the Principal from its claims. Signature and format problems
// return ErrInvalidToken, expiry returns ErrExpiredToken, and absent sub or
// authorities claims return ErrMissingClaim.
func (c *TokenCodec) Verify(tokenString string, now time.Time) (*Principal, error) {
	token, err := jwt.Parse(tokenString,
		func(token *jwt.Token) (interface{}, error) {
			// Validate the signing method is HS256
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return c.secret, nil
		},
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
		// Reject non-canonical base64 so any mutation of a segment,
		// including its trailing bits, invalidates the token.
		jwt.WithStrictDecoding(),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, fmt.Errorf("%w: sub", ErrMissingClaim)
	}

	rawAuthorities, ok := claims["authorities"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: authorities", ErrMissingClaim)
	}

	roles := make([]string, 0, len(rawAuthorities))
	for _, raw := range rawAuthorities {
		role, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: authorities", ErrMissingClaim)
		}
		roles = append(roles, role)
	}

	return &Principal{Subject: sub, Roles: roles}, nil
}
