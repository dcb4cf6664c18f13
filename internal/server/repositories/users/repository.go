// Package users is the credential store: a concurrency-safe mapping from
// username to account record, with in-memory, PostgreSQL and SQLite backends.
package users

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// Repository stores accounts keyed by username.
//
// Create is an atomic check-then-insert: of any number of concurrent calls
// for one username at most one succeeds, the rest get common.ErrorAlreadyExists.
// GetByUsername returns common.ErrorNotFound for unknown usernames and never
// hands out a pointer into the store's own state.
type Repository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
}
