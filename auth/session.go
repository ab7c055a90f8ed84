// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidSession = errors.New("invalid session")
	ErrSessionRevoked = errors.New("session revoked")
	ErrWrongScope     = errors.New("session scope not allowed")
)

// Session is the decoded form of a signed session token.
type Session struct {
	ID        string
	Scope     string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type claims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// IssueSession signs a new session token for subject within scope.
func IssueSession(secret, scope, subject string, ttl time.Duration) (string, Session, error) {
	now := time.Now().Truncate(time.Second)
	sess := Session{
		ID:        uuid.NewString(),
		Scope:     scope,
		Subject:   subject,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(sess.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	})

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", Session{}, fmt.Errorf("failed to sign session: %w", err)
	}
	return signed, sess, nil
}

// ParseSession verifies the signature and expiry of a session token.
func ParseSession(secret, tokenStr string) (Session, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenStr, &c, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	sess := Session{
		ID:      c.ID,
		Scope:   c.Scope,
		Subject: c.Subject,
	}
	if c.IssuedAt != nil {
		sess.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		sess.ExpiresAt = c.ExpiresAt.Time
	}
	return sess, nil
}

// RevocationChecker reports whether a session ID has been logged out.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Verifier validates tokens and checks them against the revocation list.
type Verifier struct {
	Secret  string
	Revoked RevocationChecker
}

// Verify parses the token, requires the given scope, and rejects revoked sessions.
func (v Verifier) Verify(ctx context.Context, tokenStr, scope string) (Session, error) {
	sess, err := ParseSession(v.Secret, tokenStr)
	if err != nil {
		return Session{}, err
	}
	if sess.Scope != scope {
		return Session{}, ErrWrongScope
	}
	if v.Revoked != nil {
		revoked, err := v.Revoked.IsRevoked(ctx, sess.ID)
		if err != nil {
			return Session{}, err
		}
		if revoked {
			return Session{}, ErrSessionRevoked
		}
	}
	return sess, nil
}

type contextKey struct{}

// WithSession stores the session in the context.
func WithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, contextKey{}, sess)
}

// FromContext returns the session stored by WithSession.
func FromContext(ctx context.Context) (Session, bool) {
	sess, ok := ctx.Value(contextKey{}).(Session)
	return sess, ok
}
