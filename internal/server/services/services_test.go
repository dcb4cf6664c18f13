package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/cryptox"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type fixture struct {
	repo     *users.MemoryRepository
	codec    *auth.JWTCodec
	auth     *AuthService
	resolver *SessionResolver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	hasher, err := cryptox.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)

	repo := users.NewMemoryRepository()
	codec := auth.NewJWTCodec(testSecret)
	pool := cryptox.NewHashPool(hasher, 4)

	svc, err := NewAuthService(repo, pool, codec, 30*time.Minute, logging.Nop())
	require.NoError(t, err)

	return &fixture{
		repo:     repo,
		codec:    codec,
		auth:     svc,
		resolver: NewSessionResolver(repo, codec, logging.Nop()),
	}
}

// failingRepo returns fixed errors from every call.
type failingRepo struct {
	createErr error
	getErr    error
	got       *models.Account
}

func (f *failingRepo) Create(context.Context, *models.Account) error { return f.createErr }

func (f *failingRepo) GetByUsername(context.Context, string) (*models.Account, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.got, nil
}

// stubHasher lets tests force hashing outcomes.
type stubHasher struct {
	hash      string
	hashErr   error
	verifyOK  bool
	verifyErr error

	mu       sync.Mutex
	verified []string
}

func (s *stubHasher) HashContext(context.Context, string) (string, error) {
	return s.hash, s.hashErr
}

func (s *stubHasher) VerifyContext(_ context.Context, _ string, hash string) (bool, error) {
	s.mu.Lock()
	s.verified = append(s.verified, hash)
	s.mu.Unlock()
	return s.verifyOK, s.verifyErr
}

var errBoom = errors.New("boom")
