// Package cryptox holds the password hashing primitives: a bcrypt-backed
// PasswordHasher and a HashPool that bounds how many hashes run at once.
package cryptox

import (
	"fmt"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordLength is the bcrypt input limit. Longer passwords are rejected
// rather than silently truncated.
const MaxPasswordLength = 72

// PasswordHasher hashes passwords one-way and verifies candidates against a
// stored hash.
type PasswordHasher interface {
	// Hash returns a salted hash of password. The salt is embedded in the result.
	Hash(password string) (string, error)

	// Verify reports whether password matches hash. Malformed or foreign hashes
	// simply do not match.
	Verify(password, hash string) bool
}

// BcryptHasher implements PasswordHasher with bcrypt at a fixed cost.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher using cost, which must be within
// [bcrypt.MinCost, bcrypt.MaxCost].
func NewBcryptHasher(cost int) (*BcryptHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%w: bcrypt cost %d out of range [%d, %d]",
			common.ErrorValidation, cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &BcryptHasher{cost: cost}, nil
}

// Hash generates a bcrypt hash of password with a fresh random salt.
func (h *BcryptHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: password cannot be empty", common.ErrorValidation)
	}
	if len(password) > MaxPasswordLength {
		return "", fmt.Errorf("%w: password must be %d bytes or fewer", common.ErrorValidation, MaxPasswordLength)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify recomputes the hash with the embedded salt and cost and compares in
// constant time.
func (h *BcryptHasher) Verify(password, hash string) bool {
	if len(password) > MaxPasswordLength {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
