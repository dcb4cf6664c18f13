// Package common defines shared constants and sentinel errors used across
// the server, the transports and the CLI client. Callers should use errors.Is
// to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal         = errors.New("internal error")
	ErrorUnauthorized     = errors.New("unauthorized")
	ErrorValidation       = errors.New("validation error")
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrInvalidToken is the parent of every token validation failure.
	ErrInvalidToken = errors.New("invalid token")

	// Token validation failures. Each one wraps ErrInvalidToken.
	ErrTokenMalformed      = fmt.Errorf("%w: malformed", ErrInvalidToken)
	ErrTokenBadSignature   = fmt.Errorf("%w: bad signature", ErrInvalidToken)
	ErrTokenExpired        = fmt.Errorf("%w: expired", ErrInvalidToken)
	ErrTokenMissingSubject = fmt.Errorf("%w: missing subject", ErrInvalidToken)
)
