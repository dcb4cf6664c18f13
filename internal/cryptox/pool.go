package cryptox

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// HashPool runs a PasswordHasher with at most size concurrent operations, so a
// burst of signups or logins cannot take every CPU away from other requests.
type HashPool struct {
	hasher PasswordHasher
	sem    *semaphore.Weighted
}

// NewHashPool wraps hasher. A non-positive size means runtime.NumCPU().
func NewHashPool(hasher PasswordHasher, size int) *HashPool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	return &HashPool{hasher: hasher, sem: semaphore.NewWeighted(int64(size))}
}

// HashContext hashes password once a slot is free. It returns ctx.Err() if the
// context ends while waiting.
func (p *HashPool) HashContext(ctx context.Context, password string) (string, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer p.sem.Release(1)

	return p.hasher.Hash(password)
}

// VerifyContext checks password against hash once a slot is free.
func (p *HashPool) VerifyContext(ctx context.Context, password, hash string) (bool, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer p.sem.Release(1)

	return p.hasher.Verify(password, hash), nil
}
