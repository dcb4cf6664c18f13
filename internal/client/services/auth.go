// Package services contains application services for the authkeeper CLI.
// This file defines the authentication service: sign-up, login with a cached
// session, whoami and logout.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authkeeper/internal/client/client"
	"github.com/dmitrijs2005/authkeeper/internal/client/models"
	"github.com/dmitrijs2005/authkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
)

// Metadata keys of the cached session.
const (
	KeyUsername    = "username"
	KeyAccessToken = "access_token"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Signup: create a new account on the server.
//   - Login: exchange credentials for a token and cache the session locally.
//   - Whoami: resolve the cached token to the account it identifies.
//   - Logout: forget the cached session.
//   - CurrentUser: report the username of the cached session, if any.
type AuthService interface {
	Signup(ctx context.Context, username string, password []byte, email string) (*models.Account, error)
	Login(ctx context.Context, username string, password []byte) error
	Whoami(ctx context.Context) (*models.Account, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (string, error)
	Close(ctx context.Context) error
}

// authService is the concrete AuthService backed by a remote Client
// and a local SQL database holding the session.
type authService struct {
	client client.Client
	db     *sql.DB
}

// NewAuthService constructs an AuthService bound to the given API client and DB.
func NewAuthService(client client.Client, db *sql.DB) AuthService {
	return &authService{client: client, db: db}
}

func (a *authService) getMetadataRepo(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

func (a *authService) Signup(ctx context.Context, username string, password []byte, email string) (*models.Account, error) {
	return a.client.Signup(ctx, username, string(password), email)
}

// Login authenticates against the server and stores username and token in a
// single transaction.
func (a *authService) Login(ctx context.Context, username string, password []byte) error {
	token, err := a.client.Login(ctx, username, string(password))
	if err != nil {
		return fmt.Errorf("login error: %w", err)
	}

	if err := a.saveSession(ctx, username, token); err != nil {
		return fmt.Errorf("session saving error: %w", err)
	}
	return nil
}

func (a *authService) saveSession(ctx context.Context, username, token string) error {
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return a.getMetadataRepo(tx).SetMany(ctx, map[string][]byte{
			KeyUsername:    []byte(username),
			KeyAccessToken: []byte(token),
		})
	})
}

// Whoami asks the server who the cached token belongs to. A token the server
// rejects is dropped from the cache.
func (a *authService) Whoami(ctx context.Context) (*models.Account, error) {
	repo := a.getMetadataRepo(a.db)

	token, err := repo.Get(ctx, KeyAccessToken)
	if err != nil {
		return nil, err
	}
	if len(token) == 0 {
		return nil, client.ErrNotLoggedIn
	}

	a.client.SetAccessToken(string(token))
	acc, err := a.client.Me(ctx)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			if cerr := repo.Clear(ctx); cerr != nil {
				return nil, errors.Join(err, cerr)
			}
		}
		return nil, err
	}
	return acc, nil
}

// Logout wipes the cached session.
func (a *authService) Logout(ctx context.Context) error {
	a.client.SetAccessToken("")
	return a.getMetadataRepo(a.db).Clear(ctx)
}

// CurrentUser returns the cached username, or "" when nobody is logged in.
func (a *authService) CurrentUser(ctx context.Context) (string, error) {
	v, err := a.getMetadataRepo(a.db).Get(ctx, KeyUsername)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// Close releases resources held by the underlying client.
func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
