package auth

import (
	"testing"
	"time"

	"github.com/desertthunder/toplist/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestTokenCache(t *testing.T) {
	expiry := time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC)

	t.Run("empty cache", func(t *testing.T) {
		rec, err := NewTokenCache(mapKV{}).Token()
		require.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("store and read", func(t *testing.T) {
		kv := mapKV{}
		cache := NewTokenCache(kv)
		want := &TokenRecord{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer", ExpiresAt: expiry, Scope: "user-top-read"}
		require.NoError(t, cache.Store(want))

		got, err := cache.Token()
		require.NoError(t, err)
		assert.Equal(t, want.AccessToken, got.AccessToken)
		assert.Equal(t, want.RefreshToken, got.RefreshToken)
		assert.True(t, want.ExpiresAt.Equal(got.ExpiresAt))
		assert.Equal(t, want.Scope, got.Scope)
		assert.Len(t, kv, 1, "the cache should use a single key")
	})

	t.Run("store overwrites", func(t *testing.T) {
		cache := NewTokenCache(mapKV{})
		require.NoError(t, cache.Store(&TokenRecord{AccessToken: "a", RefreshToken: "r", Scope: "s"}))
		require.NoError(t, cache.Store(&TokenRecord{AccessToken: "b"}))

		got, err := cache.Token()
		require.NoError(t, err)
		assert.Equal(t, "b", got.AccessToken)
		assert.Empty(t, got.RefreshToken, "records are replaced, never merged")
		assert.Empty(t, got.Scope)
	})

	t.Run("store rejects empty token", func(t *testing.T) {
		cache := NewTokenCache(mapKV{})
		require.ErrorIs(t, cache.Store(nil), shared.ErrInvalidToken)
		require.ErrorIs(t, cache.Store(&TokenRecord{}), shared.ErrInvalidToken)
	})

	t.Run("clear", func(t *testing.T) {
		kv := mapKV{"other": "kept"}
		cache := NewTokenCache(kv)
		require.NoError(t, cache.Store(&TokenRecord{AccessToken: "a"}))
		cache.Clear()
		cache.Clear()

		rec, err := cache.Token()
		require.NoError(t, err)
		assert.Nil(t, rec)
		assert.Equal(t, "kept", kv["other"])
	})

	t.Run("corrupt record", func(t *testing.T) {
		_, err := NewTokenCache(mapKV{tokenKey: "{not json"}).Token()
		require.ErrorIs(t, err, shared.ErrInvalidToken)
	})
}

func TestTokenRecord(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("ExpiresWithin", func(t *testing.T) {
		rec := &TokenRecord{AccessToken: "a", ExpiresAt: now.Add(30 * time.Second)}
		assert.True(t, rec.ExpiresWithin(now, time.Minute))
		assert.False(t, rec.ExpiresWithin(now, 10*time.Second))
		assert.False(t, (&TokenRecord{AccessToken: "a"}).ExpiresWithin(now, time.Hour))
	})

	t.Run("oauth2 conversion", func(t *testing.T) {
		tok := (&oauth2.Token{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer", Expiry: now}).
			WithExtra(map[string]any{"scope": "user-top-read"})

		rec := NewTokenRecord(tok, "fallback")
		assert.Equal(t, "user-top-read", rec.Scope)
		assert.Equal(t, "fallback", NewTokenRecord(&oauth2.Token{AccessToken: "a"}, "fallback").Scope)

		back := rec.OAuth2()
		assert.Equal(t, "a", back.AccessToken)
		assert.Equal(t, "r", back.RefreshToken)
		assert.True(t, back.Expiry.Equal(now))
	})
}
