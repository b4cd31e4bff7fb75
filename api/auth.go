package api

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// DefaultSessionTTL is the validity window of issued session tokens.
const DefaultSessionTTL = 7 * 24 * time.Hour

// Identity is the explicit result of resolving a session token. The zero
// value means unauthenticated.
type Identity struct {
	userID string
}

// Authenticated reports whether the token resolved to a user identifier.
func (i Identity) Authenticated() bool { return i.userID != "" }

// UserID returns the resolved user identifier, empty when unauthenticated.
func (i Identity) UserID() string { return i.userID }

// Auth issues and validates HS256 session tokens.
type Auth struct {
	secret []byte
	ttl    time.Duration
	parser *jwt.Parser
}

// NewAuth creates an Auth signing with the given secret. A non-positive ttl
// falls back to DefaultSessionTTL.
func NewAuth(secret []byte, ttl time.Duration) *Auth {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Auth{
		secret: secret,
		ttl:    ttl,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{"HS256"})),
	}
}

// TTL returns the session validity window.
func (a *Auth) TTL() time.Duration { return a.ttl }

// Issue mints a session token bound to the user identifier.
func (a *Auth) Issue(userID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(a.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Resolve turns a session token into an Identity. It fails open: missing,
// malformed, expired, or otherwise invalid tokens all yield the zero
// Identity, and the reason is never surfaced to the caller.
func (a *Auth) Resolve(token string) Identity {
	if token == "" {
		return Identity{}
	}
	parsed, err := a.parser.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return a.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Identity{}
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return Identity{}
	}
	return Identity{userID: sub}
}
