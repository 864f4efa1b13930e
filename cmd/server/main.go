package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"backoffice/console/internal/config"
	"backoffice/console/internal/httpserver"
	"backoffice/console/internal/infrastructure/postgres"
	"backoffice/console/internal/infrastructure/token"
	"backoffice/console/internal/logging"
	authusecase "backoffice/console/internal/usecase/auth"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New(logging.Config{Service: "auth"}, os.Stderr).Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(logging.Config{
		Service: "auth",
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	}, os.Stdout)

	rootCtx := context.Background()
	db, err := postgres.New(rootCtx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Migrate(rootCtx); err != nil {
		logger.Error("failed to run database migrations", "error", err)
		os.Exit(1)
	}

	tokenManager := token.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiry, cfg.JWTIssuer)
	authService := authusecase.NewService(postgres.NewUserRepository(db.Pool), tokenManager)

	server := httpserver.NewServer(cfg, authService, logger, httpserver.WithHealthCheck(db.Ping))
	logger.Info("HTTP server listening", "addr", server.Addr(), "token_ttl", cfg.JWTExpiry)

	go func() {
		if err := server.Start(); err != nil {
			if errors.Is(err, http.ErrServerClosed) {
				logger.Info("HTTP server closed")
				return
			}
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	} else {
		logger.Info("graceful shutdown completed")
	}
}
