// Package auth verifies the bearer tokens issued by the identity provider and
// turns them into the opaque identity signal the services work with.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrNoSubject    = errors.New("token has no subject")
	ErrNoSecret     = errors.New("no signing secret configured")
)

// Identity is who is calling: an authenticated user, or an anonymous
// browser session. Nothing else about the user is known to the services.
type Identity struct {
	Authenticated bool
	UserID        string
	SessionID     string
}

// Anonymous builds an identity for an unauthenticated session.
func Anonymous(sessionID string) Identity {
	return Identity{SessionID: sessionID}
}

// User builds an identity for an authenticated user.
func User(userID, sessionID string) Identity {
	return Identity{Authenticated: true, UserID: userID, SessionID: sessionID}
}

// Namespace is the storage namespace for per-identity state such as carts.
func (i Identity) Namespace() string {
	if i.Authenticated {
		return "user:" + i.UserID
	}
	return "anon:" + i.SessionID
}

// Actor is the name recorded in audit trails.
func (i Identity) Actor() string {
	if i.Authenticated {
		return i.UserID
	}
	return "anonymous"
}

type ctxKey struct{}

// WithIdentity stores the identity in ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity stored in ctx.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

type claims struct {
	jwtlib.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// Verifier validates HS256 tokens signed with a shared secret.
type Verifier struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewVerifier creates a verifier. With an empty secret no token verifies
// and none can be issued.
func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(strings.TrimSpace(secret)), issuer: issuer, now: time.Now}
}

// Verify returns the subject of a valid token.
func (v *Verifier) Verify(token string) (string, error) {
	if len(v.secret) == 0 {
		return "", ErrInvalidToken
	}
	c := &claims{}
	opts := []jwtlib.ParserOption{
		jwtlib.WithValidMethods([]string{"HS256"}),
		jwtlib.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		opts = append(opts, jwtlib.WithIssuer(v.issuer))
	}

	parsed, err := jwtlib.ParseWithClaims(token, c, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}

	sub, err := c.GetSubject()
	if err != nil || strings.TrimSpace(sub) == "" {
		return "", ErrNoSubject
	}
	return sub, nil
}

// Issue signs a token for subject. The identity provider normally does this;
// it exists for local tooling and tests.
func (v *Verifier) Issue(subject string, ttl time.Duration) (string, error) {
	if len(v.secret) == 0 {
		return "", ErrNoSecret
	}
	now := v.now().UTC()
	c := claims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   subject,
			Issuer:    v.issuer,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, c).SignedString(v.secret)
}
