package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"backoffice/console/internal/config"
	authusecase "backoffice/console/internal/usecase/auth"
)

// Server wraps the HTTP server lifecycle.
type Server struct {
	httpServer     *http.Server
	router         *http.ServeMux
	authService    *authusecase.Service
	allowedOrigins []string
	addr           string
	logger         *slog.Logger
	healthCheck    func(context.Context) error
}

// Option configures a Server.
type Option func(*Server)

// WithHealthCheck makes /health report 503 while check fails.
func WithHealthCheck(check func(context.Context) error) Option {
	return func(s *Server) { s.healthCheck = check }
}

// NewServer constructs a new Server with configured dependencies.
func NewServer(cfg config.Config, authService *authusecase.Service, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()
	addr := cfg.HTTPPort
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	srv := &Server{
		router:         mux,
		authService:    authService,
		allowedOrigins: cfg.AllowedOrigins,
		addr:           addr,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(srv)
	}
	srv.httpServer = &http.Server{
		Addr:         addr,
		Handler:      srv.Handler(),
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSec) * time.Second,
		IdleTimeout:  time.Duration(cfg.IdleTimeoutSec) * time.Second,
	}
	srv.registerRoutes()
	return srv
}

// Handler returns the router wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return withLogging(withCORS(s.router, s.allowedOrigins), s.logger)
}

// Start bootstraps the HTTP server on the provided address.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the configured network address for the HTTP server.
func (s *Server) Addr() string {
	return s.addr
}
