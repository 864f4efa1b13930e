// Package authclient talks to the backoffice authentication endpoints and
// reports every authentication rejection to an injected handler.
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"backoffice/console/internal/usecase/session"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Client is an HTTP client for the backoffice API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// DefaultTTL is assumed when a response states neither expires_in nor a JWT exp claim.
	DefaultTTL time.Duration

	onUnauthorized func()
	logger         *slog.Logger
	now            func() time.Time
}

var _ session.Renewer = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTPClient = hc }
}

// WithUnauthorizedHandler registers fn to run whenever any request is
// rejected with 401.
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithDefaultTTL sets the fallback token lifetime.
func WithDefaultTTL(d time.Duration) Option {
	return func(c *Client) { c.DefaultTTL = d }
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		DefaultTTL: session.DefaultTTL,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetUnauthorizedHandler replaces the 401 handler after construction.
func (c *Client) SetUnauthorizedHandler(fn func()) {
	c.onUnauthorized = fn
}

// User is the public profile returned by the API.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// LoginResult is an issued token with its lifetime.
type LoginResult struct {
	Token string
	TTL   time.Duration
	User  *User
}

type tokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
	User      *User  `json:"user"`
}

// Login exchanges email and password for a token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	payload := map[string]string{"email": email, "password": password}
	var resp tokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", payload, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("login response carried no token")
	}
	return &LoginResult{Token: resp.Token, TTL: c.ttlOf(resp), User: resp.User}, nil
}

// Renew exchanges a still-valid token for a new one.
func (c *Client) Renew(ctx context.Context, token string) (session.Renewal, error) {
	var resp tokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/renew", token, nil, &resp); err != nil {
		return session.Renewal{}, err
	}
	return session.Renewal{Token: resp.Token, TTL: c.ttlOf(resp)}, nil
}

// Me returns the user the token belongs to.
func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	var resp struct {
		User *User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/me", token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// ttlOf prefers the explicit expires_in, then the JWT exp claim.
func (c *Client) ttlOf(resp tokenResponse) time.Duration {
	if resp.ExpiresIn > 0 {
		return time.Duration(resp.ExpiresIn) * time.Second
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(resp.Token, &claims); err == nil && claims.ExpiresAt != nil {
		if ttl := claims.ExpiresAt.Time.Sub(c.now()); ttl > 0 {
			return ttl
		}
	}
	return c.DefaultTTL
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: errorMessage(bodyBytes)}
		c.logger.Debug("api request rejected", "method", method, "path", path, "status", resp.StatusCode)
		if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func errorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(body))
}
