package authclient

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized matches any APIError carrying HTTP 401.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-success response from the backoffice API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("api request failed with status %d: %s", e.StatusCode, e.Message)
}

// Unwrap lets errors.Is(err, ErrUnauthorized) match 401 responses.
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}
