package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"backoffice/console/internal/config"
	authdomain "backoffice/console/internal/domain/auth"
	"backoffice/console/internal/infrastructure/token"
	"backoffice/console/internal/logging"
	authusecase "backoffice/console/internal/usecase/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userTable struct {
	mu    sync.Mutex
	users map[string]*authdomain.User
}

func (u *userTable) Create(_ context.Context, user *authdomain.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	copy := *user
	u.users[user.ID] = &copy
	return nil
}

func (u *userTable) GetByEmail(_ context.Context, email string) (*authdomain.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, user := range u.users {
		if user.Email == email {
			copy := *user
			return &copy, nil
		}
	}
	return nil, authdomain.ErrUserNotFound
}

func (u *userTable) GetByID(_ context.Context, id string) (*authdomain.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	user, ok := u.users[id]
	if !ok {
		return nil, authdomain.ErrUserNotFound
	}
	copy := *user
	return &copy, nil
}

func (u *userTable) remove(id string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.users, id)
}

type testAPI struct {
	handler http.Handler
	users   *userTable
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	users := &userTable{users: map[string]*authdomain.User{}}
	svc := authusecase.NewService(users, token.NewJWTManager("test-secret", time.Hour, "backoffice"))
	srv := NewServer(config.Config{HTTPPort: "0", AllowedOrigins: []string{"*"}}, svc, logging.Discard())
	return &testAPI{handler: srv.Handler(), users: users}
}

func (a *testAPI) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (a *testAPI) login(t *testing.T) (string, map[string]any) {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email": "ops@example.com", "password": "hunter22", "name": "Ops",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = a.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "ops@example.com", "password": "hunter22",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	return body["token"].(string), body
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestHealthReportsFailingDependency(t *testing.T) {
	users := &userTable{users: map[string]*authdomain.User{}}
	svc := authusecase.NewService(users, token.NewJWTManager("test-secret", time.Hour, "backoffice"))
	srv := NewServer(config.Config{HTTPPort: "0"}, svc, logging.Discard(),
		WithHealthCheck(func(context.Context) error { return errors.New("connection refused") }))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLoginReturnsExpiry(t *testing.T) {
	api := newTestAPI(t)
	tok, body := api.login(t)

	assert.NotEmpty(t, tok)
	assert.InDelta(t, 3600, body["expires_in"], 1)
	user := body["user"].(map[string]any)
	assert.Equal(t, "ops@example.com", user["email"])
	assert.NotContains(t, user, "password_hash")
	assert.NotContains(t, user, "PasswordHash")
}

func TestLoginWrongPassword(t *testing.T) {
	api := newTestAPI(t)
	api.login(t)

	rec := api.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "ops@example.com", "password": "nope",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRenewWithBearer(t *testing.T) {
	api := newTestAPI(t)
	tok, _ := api.login(t)

	rec := api.do(t, http.MethodPost, "/auth/renew", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.NotEmpty(t, body["token"])
	assert.InDelta(t, 3600, body["expires_in"], 1)
	assert.NotContains(t, body, "user")
}

func TestRenewWithBodyToken(t *testing.T) {
	api := newTestAPI(t)
	tok, _ := api.login(t)

	rec := api.do(t, http.MethodPost, "/auth/renew", "", map[string]string{"token": tok})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRenewRejections(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/auth/renew", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPost, "/auth/renew", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))

	rec = api.do(t, http.MethodGet, "/auth/renew", "garbage", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRenewAfterUserRemovedIsUnauthorized(t *testing.T) {
	api := newTestAPI(t)
	tok, body := api.login(t)
	api.users.remove(body["user"].(map[string]any)["id"].(string))

	rec := api.do(t, http.MethodPost, "/auth/renew", tok, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMe(t *testing.T) {
	api := newTestAPI(t)
	tok, _ := api.login(t)

	rec := api.do(t, http.MethodGet, "/auth/me", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	user := decode(t, rec)["user"].(map[string]any)
	assert.Equal(t, "ops@example.com", user["email"])

	rec = api.do(t, http.MethodGet, "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodGet, "/auth/me", tok+"x", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	api := newTestAPI(t)
	req := httptest.NewRequest(http.MethodOptions, "/auth/renew", nil)
	req.Header.Set("Origin", "https://backoffice.example.com")
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://backoffice.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestExtractBearerToken(t *testing.T) {
	assert.Equal(t, "abc", extractBearerToken("Bearer abc"))
	assert.Equal(t, "abc", extractBearerToken("bearer  abc "))
	assert.Empty(t, extractBearerToken("Basic abc"))
	assert.Empty(t, extractBearerToken(""))
}
