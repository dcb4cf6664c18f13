package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
)

// SessionResolver turns a bearer token back into the account it was issued for.
type SessionResolver struct {
	users users.Repository
	codec auth.TokenCodec
	log   logging.Logger
}

func NewSessionResolver(repo users.Repository, codec auth.TokenCodec, log logging.Logger) *SessionResolver {
	return &SessionResolver{users: repo, codec: codec, log: log}
}

// Resolve validates token and loads its subject. Any token failure, and a
// subject with no account behind it, returns an error wrapping
// common.ErrorUnauthorized; the underlying cause stays in the chain for logs.
// Store failures return common.ErrorInternal.
func (r *SessionResolver) Resolve(ctx context.Context, token string) (*models.PublicAccount, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, common.ErrTokenMalformed)
	}

	username, err := r.codec.Validate(token)
	if err != nil {
		r.log.Debug(ctx, "token rejected", "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
	}

	account, err := r.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			r.log.Info(ctx, "token subject has no account", "username", username)
			return nil, fmt.Errorf("%w: account not found", common.ErrorUnauthorized)
		}
		r.log.Error(ctx, "error looking up account", "username", username, "error", err)
		return nil, common.ErrorInternal
	}

	return account.Public(), nil
}
