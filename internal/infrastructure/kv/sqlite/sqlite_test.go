package sqlite

import (
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.sqlite")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put(map[string]string{"token": "abc", "expires_at": "1"}))
	require.NoError(t, s.Put(map[string]string{"token": "def", "expires_at": "2"}))

	got, err := s.Get("token", "expires_at", "missing")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"token": "def", "expires_at": "2"}, got)

	require.NoError(t, s.Delete("token", "expires_at"))
	got, err = s.Get("token", "expires_at")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteStoreReadsPairTogether(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.sqlite")
	reader, err := Open(path)
	require.NoError(t, err)
	defer reader.Close()
	writer, err := Open(path)
	require.NoError(t, err)
	defer writer.Close()

	require.NoError(t, writer.Put(map[string]string{"token": "t0", "expires_at": "0"}))

	done := make(chan error, 1)
	go func() {
		for i := 1; i <= 100; i++ {
			n := strconv.Itoa(i)
			if err := writer.Put(map[string]string{"token": "t" + n, "expires_at": n}); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	for {
		got, err := reader.Get("token", "expires_at")
		require.NoError(t, err)
		require.Equal(t, got["expires_at"], strings.TrimPrefix(got["token"], "t"), "mixed pair %v", got)

		select {
		case err := <-done:
			require.NoError(t, err)
			return
		default:
		}
	}
}
