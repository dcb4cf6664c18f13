// Package metadata is the CLI's local key/value cache, used to keep the
// signed-in username and access token between runs.
package metadata

import (
	"context"
)

// Repository is a small key/value store. Get returns (nil, nil) for a
// missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// SetMany upserts every pair; run it in a transaction to make it atomic.
	SetMany(ctx context.Context, values map[string][]byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
