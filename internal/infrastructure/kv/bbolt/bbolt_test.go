package bbolt

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBBoltStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.db")
	s, err := Open(path)
	require.NoError(t, err)

	t.Run("PutGet", func(t *testing.T) {
		require.NoError(t, s.Put(map[string]string{"token": "abc", "expires_at": "1700000000000"}))
		got, err := s.Get("token", "expires_at", "missing")
		require.NoError(t, err)
		assert.Equal(t, "abc", got["token"])
		assert.Equal(t, "1700000000000", got["expires_at"])
		assert.NotContains(t, got, "missing")
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, s.Delete("token", "expires_at"))
		got, err := s.Get("token", "expires_at")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("Reopen", func(t *testing.T) {
		require.NoError(t, s.Put(map[string]string{"token": "persisted"}))
		require.NoError(t, s.Close())

		reopened, err := Open(path)
		require.NoError(t, err)
		defer reopened.Close()

		got, err := reopened.Get("token")
		require.NoError(t, err)
		assert.Equal(t, "persisted", got["token"])
	})
}
