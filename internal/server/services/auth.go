// Package services contains the server's business logic: account signup,
// password login and resolving bearer tokens back to accounts.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
)

// Hasher is the context-aware password hashing the services depend on.
// cryptox.HashPool implements it.
type Hasher interface {
	HashContext(ctx context.Context, password string) (string, error)
	VerifyContext(ctx context.Context, password, hash string) (bool, error)
}

const dummyPassword = "authkeeper-dummy-password"

// AuthService registers accounts and exchanges credentials for access tokens.
type AuthService struct {
	users     users.Repository
	hasher    Hasher
	codec     auth.TokenCodec
	tokenTTL  time.Duration
	dummyHash string
	log       logging.Logger
	now       func() time.Time
}

// NewAuthService builds an AuthService. It hashes a throwaway password up
// front so failed lookups can burn the same verification time as real ones.
func NewAuthService(repo users.Repository, hasher Hasher, codec auth.TokenCodec, tokenTTL time.Duration, log logging.Logger) (*AuthService, error) {
	dummy, err := hasher.HashContext(context.Background(), dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("error preparing dummy hash: %w", err)
	}
	return &AuthService{
		users:     repo,
		hasher:    hasher,
		codec:     codec,
		tokenTTL:  tokenTTL,
		dummyHash: dummy,
		log:       log,
		now:       time.Now,
	}, nil
}

// Signup creates an account and returns its public view. Duplicate usernames
// yield common.ErrorAlreadyExists and leave the existing account untouched.
func (s *AuthService) Signup(ctx context.Context, username, password, email string) (*models.PublicAccount, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", common.ErrorValidation)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", common.ErrorValidation)
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	hash, err := s.hasher.HashContext(ctx, password)
	if err != nil {
		if errors.Is(err, common.ErrorValidation) {
			return nil, err
		}
		s.log.Error(ctx, "password hashing failed", "error", err)
		return nil, common.ErrorInternal
	}

	account := &models.Account{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.users.Create(ctx, account); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			s.log.Info(ctx, "signup rejected, username taken", "username", username)
			return nil, common.ErrorAlreadyExists
		}
		s.log.Error(ctx, "error creating account", "username", username, "error", err)
		return nil, common.ErrorInternal
	}

	s.log.Info(ctx, "account created", "username", username)
	return account.Public(), nil
}

// Login verifies the credentials and issues an access token. An unknown
// username and a wrong password both return common.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	account, err := s.users.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		s.log.Error(ctx, "error looking up account", "username", username, "error", err)
		return "", common.ErrorInternal
	}

	hash := s.dummyHash
	if account != nil {
		hash = account.PasswordHash
	}

	ok, err := s.hasher.VerifyContext(ctx, password, hash)
	if err != nil {
		s.log.Error(ctx, "password verification failed", "error", err)
		return "", common.ErrorInternal
	}
	if account == nil || !ok {
		s.log.Info(ctx, "login failed", "username", username)
		return "", common.ErrInvalidCredentials
	}

	token, err := s.codec.Issue(account.Username, s.tokenTTL)
	if err != nil {
		s.log.Error(ctx, "error issuing token", "username", username, "error", err)
		return "", common.ErrorInternal
	}

	s.log.Info(ctx, "login succeeded", "username", username)
	return token, nil
}

// validateEmail accepts a bare address only, no display name.
func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", common.ErrorValidation)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: invalid email address", common.ErrorValidation)
	}
	return nil
}
