package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/tokend/internal/apperrors"
)

func Test_NewCodec(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c, err := NewCodec(CodecConfig{SecretKey: "test-secret-key"})

		require.NoError(t, err)
		require.Equal(t, "HS256", c.alg.Alg(), "default signing method should be HS256")
		require.Equal(t, 15*time.Minute, c.accessTTL)
		require.Equal(t, 7*24*time.Hour, c.refreshTTL)
	})

	t.Run("empty secret fails", func(t *testing.T) {
		_, err := NewCodec(CodecConfig{})
		require.Error(t, err)
	})

	t.Run("unknown algorithm fails", func(t *testing.T) {
		_, err := NewCodec(CodecConfig{SecretKey: "test-secret-key", Alg: "XX666"})
		require.Error(t, err)
	})
}

func Test_TokenCodec(t *testing.T) {
	newCodec := func(t *testing.T, cfg CodecConfig) *TokenCodec {
		t.Helper()
		if cfg.SecretKey == "" {
			cfg.SecretKey = "test-secret-key"
		}
		c, err := NewCodec(cfg)
		require.NoError(t, err)
		return c
	}

	now := time.Now()

	t.Run("access token round trip", func(t *testing.T) {
		c := newCodec(t, CodecConfig{})

		token, err := c.IssueAccess("u@x.com", now)
		require.NoError(t, err)

		claims, err := c.Parse(token.Value)

		require.NoError(t, err)
		assert.Equal(t, "u@x.com", claims.Subject)
		assert.False(t, claims.IsRefresh(), "access token must not carry the refresh kind")
		assert.WithinDuration(t, now.UTC().Add(15*time.Minute), token.ExpiresAt, time.Second)
	})

	t.Run("refresh token round trip", func(t *testing.T) {
		c := newCodec(t, CodecConfig{RefreshTTL: 48 * time.Hour})

		token, err := c.IssueRefresh("u@x.com", now)
		require.NoError(t, err)

		claims, err := c.Parse(token.Value)

		require.NoError(t, err)
		assert.Equal(t, "u@x.com", claims.Subject)
		assert.True(t, claims.IsRefresh(), "refresh token must carry the refresh kind")
		assert.WithinDuration(t, now.UTC().Add(48*time.Hour), token.ExpiresAt, time.Second)
		assert.WithinDuration(t, token.ExpiresAt, claims.ExpiresAt.Time, 0, "returned expiry must match the embedded claim")
	})

	t.Run("expiry is utc", func(t *testing.T) {
		c := newCodec(t, CodecConfig{})

		token, err := c.IssueAccess("u@x.com", now)

		require.NoError(t, err)
		require.Equal(t, time.UTC, token.ExpiresAt.Location())
	})

	t.Run("issued tokens are unique", func(t *testing.T) {
		// Same subject and same second still differ thanks to jti
		c := newCodec(t, CodecConfig{})

		first, err := c.IssueAccess("u@x.com", now)
		require.NoError(t, err)
		second, err := c.IssueAccess("u@x.com", now)
		require.NoError(t, err)

		require.NotEqual(t, first.Value, second.Value)
	})

	t.Run("tampered token rejected", func(t *testing.T) {
		c := newCodec(t, CodecConfig{})
		other := newCodec(t, CodecConfig{SecretKey: "other-secret-key"})

		token, err := other.IssueAccess("u@x.com", now)
		require.NoError(t, err)

		_, err = c.Parse(token.Value)

		require.Error(t, err)
		require.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})

	t.Run("malformed token rejected", func(t *testing.T) {
		c := newCodec(t, CodecConfig{})

		_, err := c.Parse("not-even-a-jwt")

		require.Error(t, err)
		require.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})

	t.Run("unexpected algorithm rejected", func(t *testing.T) {
		c := newCodec(t, CodecConfig{})
		signedDifferently := newCodec(t, CodecConfig{Alg: "HS512"})

		token, err := signedDifferently.IssueAccess("u@x.com", now)
		require.NoError(t, err)

		_, err = c.Parse(token.Value)

		require.Error(t, err)
		require.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})

	t.Run("expired token", func(t *testing.T) {
		c := newCodec(t, CodecConfig{})

		// Issue in the past so the token is already expired
		token, err := c.IssueAccess("u@x.com", now.Add(-time.Hour))
		require.NoError(t, err)

		claims, err := c.Parse(token.Value)

		require.Error(t, err)
		require.ErrorIs(t, err, apperrors.ErrRefreshTokenExpired)
		require.Equal(t, "u@x.com", claims.Subject, "claims must survive expiry for ledger cleanup")
	})
}
