// Package auth issues and validates the signed, expiring bearer tokens
// handed out on login.
package auth

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// MinTTL is the shortest token lifetime. Token timestamps have one-second
// precision, so anything shorter could produce exp == iat.
const MinTTL = time.Second

// TokenCodec creates and validates bearer tokens carrying a subject claim.
type TokenCodec interface {
	Issue(subject string, ttl time.Duration) (string, error)
	Validate(token string) (string, error)
}

// JWTCodec is a TokenCodec producing HS256-signed JWTs with sub, iat and exp.
type JWTCodec struct {
	secret []byte
	now    func() time.Time
}

// Option configures a JWTCodec.
type Option func(*JWTCodec)

// WithClock replaces time.Now as the codec's notion of the current time.
func WithClock(now func() time.Time) Option {
	return func(c *JWTCodec) { c.now = now }
}

// NewJWTCodec returns a codec signing with a private copy of secret.
func NewJWTCodec(secret []byte, opts ...Option) *JWTCodec {
	c := &JWTCodec{secret: bytes.Clone(secret), now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Issue signs a token for subject that expires ttl after now.
func (c *JWTCodec) Issue(subject string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("%w: token subject cannot be empty", common.ErrorValidation)
	}
	if ttl < MinTTL {
		return "", fmt.Errorf("%w: token ttl must be at least %s", common.ErrorValidation, MinTTL)
	}

	now := c.now().Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})

	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("error signing token: %w", err)
	}

	return tokenString, nil
}

// Validate checks the signature, then the expiry, then returns the subject.
// Every failure wraps one of common.ErrTokenMalformed, ErrTokenBadSignature,
// ErrTokenExpired or ErrTokenMissingSubject.
func (c *JWTCodec) Validate(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
		jwt.WithStrictDecoding(),
	)
	if err != nil {
		return "", classify(tokenString, err)
	}

	if claims.Subject == "" {
		return "", common.ErrTokenMissingSubject
	}

	return claims.Subject, nil
}

func classify(tokenString string, err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable), badSignatureSegment(tokenString, err):
		return fmt.Errorf("%w: %w", common.ErrTokenBadSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", common.ErrTokenExpired, err)
	default:
		return fmt.Errorf("%w: %w", common.ErrTokenMalformed, err)
	}
}

// badSignatureSegment reports a decode failure confined to the signature:
// header and claims are canonical base64url but whatever follows the second
// dot is not.
func badSignatureSegment(tokenString string, err error) bool {
	if !errors.Is(err, jwt.ErrTokenMalformed) {
		return false
	}
	parts := strings.SplitN(tokenString, ".", 3)
	if len(parts) != 3 {
		return false
	}
	strict := base64.RawURLEncoding.Strict()
	for _, seg := range parts[:2] {
		if _, derr := strict.DecodeString(seg); derr != nil {
			return false
		}
	}
	_, derr := strict.DecodeString(parts[2])
	return derr != nil
}
