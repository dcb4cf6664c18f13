package services

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_ReturnsAccount(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Signup(ctx, "alice", "pw123", "a@x.com")
	require.NoError(t, err)
	token, err := f.auth.Login(ctx, "alice", "pw123")
	require.NoError(t, err)

	got, err := f.resolver.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, &models.PublicAccount{Username: "alice", Email: "a@x.com"}, got)
}

func TestResolve_TokenFailuresAreUnauthorized(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Signup(ctx, "alice", "pw123", "a@x.com")
	require.NoError(t, err)
	token, err := f.auth.Login(ctx, "alice", "pw123")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	require.NoError(t, err)
	sig[0] ^= 0x01
	tampered := parts[0] + "." + parts[1] + "." + base64.RawURLEncoding.EncodeToString(sig)

	expired, err := auth.NewJWTCodec(testSecret, auth.WithClock(func() time.Time {
		return time.Now().Add(-time.Hour)
	})).Issue("alice", time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		cause error
	}{
		{name: "empty", token: "", cause: common.ErrTokenMalformed},
		{name: "garbage", token: "garbage", cause: common.ErrTokenMalformed},
		{name: "tampered", token: tampered, cause: common.ErrTokenBadSignature},
		{name: "expired", token: expired, cause: common.ErrTokenExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.resolver.Resolve(ctx, tt.token)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, common.ErrorUnauthorized)
			assert.ErrorIs(t, err, tt.cause)
		})
	}
}

func TestResolve_AccountGone(t *testing.T) {
	t.Parallel()
	codec := auth.NewJWTCodec(testSecret)
	token, err := codec.Issue("ghost", time.Minute)
	require.NoError(t, err)

	r := NewSessionResolver(&failingRepo{getErr: common.ErrorNotFound}, codec, logging.Nop())

	_, err = r.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
	assert.NotErrorIs(t, err, common.ErrorNotFound)
}

func TestResolve_StoreFailureIsInternal(t *testing.T) {
	t.Parallel()
	codec := auth.NewJWTCodec(testSecret)
	token, err := codec.Issue("alice", time.Minute)
	require.NoError(t, err)

	r := NewSessionResolver(&failingRepo{getErr: errBoom}, codec, logging.Nop())

	_, err = r.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, common.ErrorInternal)
}
