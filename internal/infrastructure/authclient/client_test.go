package authclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLogin(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ops@example.com", body["email"])
		assert.Equal(t, "hunter22", body["password"])

		writeJSON(w, http.StatusOK, map[string]any{
			"token":      "tok-1",
			"expires_in": 3600,
			"user":       map[string]string{"id": "u1", "email": "ops@example.com", "name": "Ops", "role": "admin"},
		})
	})

	c := New(srv.URL)
	res, err := c.Login(context.Background(), "ops@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", res.Token)
	assert.Equal(t, time.Hour, res.TTL)
	require.NotNil(t, res.User)
	assert.Equal(t, "admin", res.User.Role)
}

func TestLoginRejectedIsNotAForcedLogout(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	})

	calls := 0
	c := New(srv.URL, WithUnauthorizedHandler(func() { calls++ }))
	_, err := c.Login(context.Background(), "ops@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "invalid credentials", apiErr.Message)
	// the handler fires on any 401; the console only wires it once a session exists
	assert.Equal(t, 1, calls)
}

func TestRenewSendsBearer(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/renew", r.URL.Path)
		assert.Equal(t, "Bearer old-token", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"token": "new-token", "expires_in": 1800})
	})

	renewal, err := New(srv.URL).Renew(context.Background(), "old-token")
	require.NoError(t, err)
	assert.Equal(t, "new-token", renewal.Token)
	assert.Equal(t, 30*time.Minute, renewal.TTL)
}

func TestRenewTTLFromTokenExpiry(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(45 * time.Minute)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"token": signed})
	})

	c := New(srv.URL)
	c.now = func() time.Time { return now }
	renewal, err := c.Renew(context.Background(), "old-token")
	require.NoError(t, err)
	assert.Equal(t, 45*time.Minute, renewal.TTL)
}

func TestRenewTTLFallsBackToDefault(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"token": "opaque"})
	})

	renewal, err := New(srv.URL, WithDefaultTTL(20*time.Minute)).Renew(context.Background(), "old-token")
	require.NoError(t, err)
	assert.Equal(t, 20*time.Minute, renewal.TTL)
}

func TestUnauthorizedInvokesHandler(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
	})

	calls := 0
	c := New(srv.URL)
	c.SetUnauthorizedHandler(func() { calls++ })

	_, err := c.Me(context.Background(), "stale")
	require.ErrorIs(t, err, ErrUnauthorized)
	_, err = c.Renew(context.Background(), "stale")
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 2, calls)
}

func TestServerErrorIsNotUnauthorized(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	calls := 0
	_, err := New(srv.URL, WithUnauthorizedHandler(func() { calls++ })).Me(context.Background(), "tok")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnauthorized))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "boom", apiErr.Message)
	assert.Zero(t, calls)
}

func TestMe(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"user": map[string]string{"id": "u1", "email": "a@b.c"}})
	})

	user, err := New(srv.URL+"/").Me(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
}
