package httpserver

import (
	"encoding/json"
	"net/http"
	"strings"

	authdomain "backoffice/console/internal/domain/auth"
)

type errorResponse struct {
	Error string `json:"error"`
}

// tokenResponse is the body of login and renew. expires_in is whole seconds.
type tokenResponse struct {
	Token     string           `json:"token"`
	ExpiresIn int64            `json:"expires_in"`
	User      *authdomain.User `json:"user,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="backoffice"`)
	}
	writeJSON(w, status, errorResponse{Error: message})
}

func writeMethodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
