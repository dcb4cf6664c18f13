package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, account *models.Account) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (username, email, password_hash, disabled, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(username) DO NOTHING
	`, account.Username, account.Email, account.PasswordHash, account.Disabled, account.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorAlreadyExists
	}

	return nil
}

func (r *SQLiteRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	account := &models.Account{}
	err := r.db.QueryRowContext(ctx, `
		SELECT username, email, password_hash, disabled, created_at FROM users
		WHERE username = ?
	`, username).Scan(&account.Username, &account.Email, &account.PasswordHash, &account.Disabled, &account.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}
