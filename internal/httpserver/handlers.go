package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	authdomain "backoffice/console/internal/domain/auth"
	"backoffice/console/internal/logging"
)

func (s *Server) registerRoutes() {
	s.router.Handle("/health", http.HandlerFunc(s.handleHealth))
	s.router.Handle("/auth/register", http.HandlerFunc(s.handleRegister))
	s.router.Handle("/auth/login", http.HandlerFunc(s.handleLogin))
	s.router.Handle("/auth/renew", http.HandlerFunc(s.handleRenewToken))

	authenticated := s.authMiddleware
	s.router.Handle("/auth/me", authenticated(http.HandlerFunc(s.handleMe)))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.healthCheck != nil {
		if err := s.healthCheck(r.Context()); err != nil {
			logging.FromContext(r.Context()).Warn("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}

	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	user, err := s.authService.Register(r.Context(), payload.Email, payload.Password, payload.Name)
	if err != nil {
		switch {
		case errors.Is(err, authdomain.ErrEmailExists):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"user": user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}

	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	sess, err := s.authService.Login(r.Context(), authdomain.Credentials{
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, authdomain.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "invalid email or password")
		default:
			logging.FromContext(r.Context()).Error("login failed", "error", err)
			writeError(w, http.StatusInternalServerError, "login failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		Token:     sess.Token,
		ExpiresIn: s.authService.ExpiresIn(sess),
		User:      sess.User,
	})
}

// handleRenewToken exchanges a still-valid token for a fresh one. The token
// comes from the bearer header, or from a {"token": ...} body.
func (s *Server) handleRenewToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}

	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		var payload struct {
			Token string `json:"token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			if errors.Is(err, io.EOF) {
				writeError(w, http.StatusBadRequest, "token required")
			} else {
				writeError(w, http.StatusBadRequest, "invalid JSON payload")
			}
			return
		}
		token = strings.TrimSpace(payload.Token)
	}
	if token == "" {
		writeError(w, http.StatusBadRequest, "token required")
		return
	}

	sess, err := s.authService.RenewToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, authdomain.ErrTokenInvalid) {
			writeError(w, http.StatusUnauthorized, err.Error())
		} else {
			logging.FromContext(r.Context()).Error("token renewal failed", "error", err)
			writeError(w, http.StatusInternalServerError, "token renewal failed")
		}
		return
	}

	logging.FromContext(r.Context()).Info("token renewed", "user_id", sess.User.ID)
	writeJSON(w, http.StatusOK, tokenResponse{
		Token:     sess.Token,
		ExpiresIn: s.authService.ExpiresIn(sess),
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	user, ok := currentUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}
