// Package repomanager picks the credential store backend from the configured
// DSN, opens it and applies the embedded goose migrations.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

// RepositoryManager vends repositories bound to one storage backend.
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Users() users.Repository
	Close() error
}

// Backend identifies a storage implementation.
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendPostgres Backend = "postgres"
	BackendSQLite   Backend = "sqlite"
)

// ParseDSN maps a DSN to its backend and the connection string the driver
// expects. An empty DSN selects the in-memory store.
func ParseDSN(dsn string) (Backend, string, error) {
	switch {
	case dsn == "":
		return BackendMemory, "", nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return BackendPostgres, dsn, nil
	case strings.HasPrefix(dsn, "sqlite://"):
		path := strings.TrimPrefix(dsn, "sqlite://")
		if path == "" {
			return "", "", fmt.Errorf("%w: sqlite dsn has no path", common.ErrorValidation)
		}
		return BackendSQLite, path, nil
	case strings.HasPrefix(dsn, "file:"):
		return BackendSQLite, dsn, nil
	default:
		return "", "", fmt.Errorf("%w: unsupported database dsn scheme", common.ErrorValidation)
	}
}

// New opens the backend selected by dsn. SQL connections are verified with a
// ping; migrations are left to RunMigrations.
func New(ctx context.Context, dsn string) (RepositoryManager, error) {
	backend, conn, err := ParseDSN(dsn)
	if err != nil {
		return nil, err
	}

	switch backend {
	case BackendMemory:
		return NewMemoryRepositoryManager(), nil
	case BackendPostgres:
		db, err := openDB(ctx, "pgx", conn)
		if err != nil {
			return nil, err
		}
		return NewPostgresRepositoryManager(db)
	default:
		db, err := openDB(ctx, "sqlite", conn)
		if err != nil {
			return nil, err
		}
		return NewSQLiteRepositoryManager(db)
	}
}

func openDB(ctx context.Context, driver, conn string) (*sql.DB, error) {
	db, err := sql.Open(driver, conn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}
