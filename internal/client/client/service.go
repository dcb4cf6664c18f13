package client

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/client/models"
)

// Client is the transport used by the CLI services.
type Client interface {
	Close() error
	Signup(ctx context.Context, username, password, email string) (*models.Account, error)
	// Login returns the issued access token and uses it for later calls.
	Login(ctx context.Context, username, password string) (string, error)
	Me(ctx context.Context) (*models.Account, error)
	SetAccessToken(token string)
}
