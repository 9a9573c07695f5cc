package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKeys(t *testing.T) {
	hashKey, blockKey, err := DeriveKeys([]byte("correct horse battery staple"))
	require.NoError(t, err)
	assert.Len(t, hashKey, 32)
	assert.Len(t, blockKey, 32)
	assert.NotEqual(t, hashKey, blockKey)

	again, _, err := DeriveKeys([]byte("correct horse battery staple"))
	require.NoError(t, err)
	assert.Equal(t, hashKey, again, "derivation is deterministic")

	other, _, err := DeriveKeys([]byte("another secret"))
	require.NoError(t, err)
	assert.NotEqual(t, hashKey, other)

	_, _, err = DeriveKeys(nil)
	require.Error(t, err)
}

func TestDerivedKeysEncryptCookie(t *testing.T) {
	hashKey, blockKey, err := DeriveKeys([]byte("secret"))
	require.NoError(t, err)

	m, err := NewManager(ManagerOpts{Store: NewMemoryStore(), MaxAge: time.Hour, HashKey: hashKey, BlockKey: blockKey})
	require.NoError(t, err)

	s, err := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	s.Set("k", "v")

	rec := httptest.NewRecorder()
	require.NoError(t, m.Save(context.Background(), rec, s))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	loaded, err := m.Load(req)
	require.NoError(t, err)
	assert.Equal(t, s.ID, loaded.ID)

	t.Run("signing key alone cannot read it", func(t *testing.T) {
		signOnly, err := NewManager(ManagerOpts{Store: m.store, MaxAge: time.Hour, HashKey: hashKey})
		require.NoError(t, err)

		loaded, err := signOnly.Load(req)
		require.NoError(t, err)
		assert.True(t, loaded.IsNew)
		assert.NotEqual(t, s.ID, loaded.ID)
	})
}
