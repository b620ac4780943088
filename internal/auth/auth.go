// Package auth validates bearer tokens and exposes the resulting claims to
// request handlers.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Config holds signer verification parameters.
type Config struct {
	Secret string
	Issuer string
}

// Claims represents the payload extracted from a JWT. StableID scopes every
// request to one facility, the platform's tenancy unit.
type Claims struct {
	Subject   string
	StableID  string
	Scopes    map[string]struct{}
	ExpiresAt time.Time
}

// ErrMissingToken is returned when the Authorization header is absent.
var ErrMissingToken = errors.New("missing bearer token")

// ErrInvalidToken wraps parsing/validation errors.
var ErrInvalidToken = errors.New("invalid bearer token")

// tokenClaims is the raw JWT payload. The identity service issues scopes
// either as a space-joined string or a list, so the field carries a custom
// decoder.
type tokenClaims struct {
	StableID string    `json:"stable_id"`
	Scopes   scopeList `json:"scopes"`
	jwt.RegisteredClaims
}

type scopeList []string

func (s *scopeList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = list
		return nil
	}

	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return err
	}
	*s = strings.Fields(joined)
	return nil
}

// Parse validates a signed token and returns normalized claims. Tokens must
// be HS256, carry the configured issuer, an expiry, a subject, and the
// stable binding.
func Parse(token string, cfg Config) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}

	var raw tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &raw,
		func(t *jwt.Token) (any, error) { return []byte(cfg.Secret), nil },
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || raw.Subject == "" || raw.StableID == "" {
		return nil, ErrInvalidToken
	}

	scopes := make(map[string]struct{}, len(raw.Scopes))
	for _, scope := range raw.Scopes {
		if scope != "" {
			scopes[scope] = struct{}{}
		}
	}

	return &Claims{
		Subject:   raw.Subject,
		StableID:  raw.StableID,
		Scopes:    scopes,
		ExpiresAt: raw.ExpiresAt.Time,
	}, nil
}

// HasScope reports whether the claim set includes the provided scope.
func (c *Claims) HasScope(scope string) bool {
	if c == nil {
		return false
	}
	_, ok := c.Scopes[scope]
	return ok
}
