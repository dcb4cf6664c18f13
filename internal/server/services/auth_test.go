package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignup_ReturnsPublicAccount(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.auth.Signup(ctx, "alice", "pw123", "a@x.com")
	require.NoError(t, err)

	want := &models.PublicAccount{Username: "alice", Email: "a@x.com", Disabled: false}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Signup mismatch (-want +got):\n%s", diff)
	}

	stored, err := f.repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "pw123", stored.PasswordHash)
	assert.True(t, strings.HasPrefix(stored.PasswordHash, "$2a$"))
	assert.False(t, stored.CreatedAt.IsZero())
}

func TestSignup_Validation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	tests := []struct {
		name                      string
		username, password, email string
	}{
		{name: "empty username", password: "pw", email: "a@x.com"},
		{name: "empty password", username: "alice", email: "a@x.com"},
		{name: "empty email", username: "alice", password: "pw"},
		{name: "bad email", username: "alice", password: "pw", email: "not-an-email"},
		{name: "display name email", username: "alice", password: "pw", email: "Alice <a@x.com>"},
		{name: "password too long", username: "alice", password: strings.Repeat("p", 73), email: "a@x.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.auth.Signup(context.Background(), tt.username, tt.password, tt.email)
			assert.ErrorIs(t, err, common.ErrorValidation)
		})
	}

	_, err := f.repo.GetByUsername(context.Background(), "alice")
	assert.ErrorIs(t, err, common.ErrorNotFound, "rejected signups must not store anything")
}

func TestSignup_DuplicateKeepsOriginal(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Signup(ctx, "alice", "pw123", "a@x.com")
	require.NoError(t, err)
	before, err := f.repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)

	_, err = f.auth.Signup(ctx, "alice", "other", "b@x.com")
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	after, err := f.repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, before, after)

	_, err = f.auth.Login(ctx, "alice", "pw123")
	assert.NoError(t, err)
}

func TestSignup_ConcurrentSameUsername(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	const n = 16
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.auth.Signup(context.Background(), "alice", fmt.Sprintf("pw%d", i), fmt.Sprintf("u%d@x.com", i))
		}(i)
	}
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, common.ErrorAlreadyExists):
			dup++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, dup)
}

func TestSignup_StoreFailureIsInternal(t *testing.T) {
	t.Parallel()

	svc, err := NewAuthService(&failingRepo{createErr: errBoom}, &stubHasher{hash: "h"}, auth.NewJWTCodec(testSecret), time.Minute, logging.Nop())
	require.NoError(t, err)

	_, err = svc.Signup(context.Background(), "alice", "pw", "a@x.com")
	assert.ErrorIs(t, err, common.ErrorInternal)
	assert.NotErrorIs(t, err, errBoom)
}

func TestSignup_HashFailureIsInternal(t *testing.T) {
	t.Parallel()

	h := &stubHasher{hash: "h"}
	svc, err := NewAuthService(&failingRepo{}, h, auth.NewJWTCodec(testSecret), time.Minute, logging.Nop())
	require.NoError(t, err)
	h.hashErr = context.DeadlineExceeded

	_, err = svc.Signup(context.Background(), "alice", "pw", "a@x.com")
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestNewAuthService_DummyHashFailure(t *testing.T) {
	t.Parallel()

	_, err := NewAuthService(&failingRepo{}, &stubHasher{hashErr: errBoom}, auth.NewJWTCodec(testSecret), time.Minute, logging.Nop())
	assert.ErrorIs(t, err, errBoom)
}

func TestLogin_IssuesTokenForSubject(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Signup(ctx, "alice", "pw123", "a@x.com")
	require.NoError(t, err)

	token, err := f.auth.Login(ctx, "alice", "pw123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	sub, err := f.codec.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", sub)
}

func TestLogin_IdenticalFailures(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Signup(ctx, "alice", "pw123", "a@x.com")
	require.NoError(t, err)

	_, unknownErr := f.auth.Login(ctx, "nobody", "anything")
	_, wrongErr := f.auth.Login(ctx, "alice", "wrong")

	assert.Equal(t, common.ErrInvalidCredentials, unknownErr)
	assert.Equal(t, unknownErr, wrongErr)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestLogin_UnknownUserVerifiesAgainstDummyHash(t *testing.T) {
	t.Parallel()

	h := &stubHasher{hash: "dummy-hash", verifyOK: true}
	svc, err := NewAuthService(&failingRepo{getErr: common.ErrorNotFound}, h, auth.NewJWTCodec(testSecret), time.Minute, logging.Nop())
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "nobody", "anything")
	assert.Equal(t, common.ErrInvalidCredentials, err)
	assert.Equal(t, []string{"dummy-hash"}, h.verified)
}

func TestLogin_StoreAndHasherFailures(t *testing.T) {
	t.Parallel()

	t.Run("store", func(t *testing.T) {
		svc, err := NewAuthService(&failingRepo{getErr: errBoom}, &stubHasher{}, auth.NewJWTCodec(testSecret), time.Minute, logging.Nop())
		require.NoError(t, err)
		_, err = svc.Login(context.Background(), "alice", "pw")
		assert.ErrorIs(t, err, common.ErrorInternal)
	})

	t.Run("hasher", func(t *testing.T) {
		repo := &failingRepo{got: &models.Account{Username: "alice", PasswordHash: "h"}}
		svc, err := NewAuthService(repo, &stubHasher{verifyErr: context.Canceled}, auth.NewJWTCodec(testSecret), time.Minute, logging.Nop())
		require.NoError(t, err)
		_, err = svc.Login(context.Background(), "alice", "pw")
		assert.ErrorIs(t, err, common.ErrorInternal)
	})

	t.Run("codec", func(t *testing.T) {
		repo := &failingRepo{got: &models.Account{Username: "alice", PasswordHash: "h"}}
		svc, err := NewAuthService(repo, &stubHasher{verifyOK: true}, auth.NewJWTCodec(testSecret), 0, logging.Nop())
		require.NoError(t, err)
		_, err = svc.Login(context.Background(), "alice", "pw")
		assert.ErrorIs(t, err, common.ErrorInternal)
	})
}
