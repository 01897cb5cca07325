package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/cmdstash/cmdstash/internal/api"
	"github.com/cmdstash/cmdstash/internal/auth"
	"github.com/cmdstash/cmdstash/internal/command"
	"github.com/cmdstash/cmdstash/internal/config"
	"github.com/cmdstash/cmdstash/internal/database"
	"github.com/cmdstash/cmdstash/internal/devicecode"
	"github.com/cmdstash/cmdstash/internal/learned"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		cancel()
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		cancel()
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	authRepo := auth.NewRepository(db.Pool())
	authService := auth.NewService(authRepo, cfg.BcryptCost)

	adminToken := cfg.AdminAPIToken
	if adminToken == "" {
		adminToken = uuid.NewString()
	}
	if err := authService.EnsureAdminToken(ctx, adminToken); err != nil {
		cancel()
		slog.Error("failed to seed admin token", "error", err)
		os.Exit(1)
	}
	cancel()

	broker := devicecode.NewBroker(devicecode.NewRepository(db.Pool()), authRepo)

	router := api.NewRouter(api.RouterDeps{
		AuthService: authService,
		Commands:    command.NewRepository(db.Pool()),
		Learned:     learned.NewRepository(db.Pool()),
		Broker:      broker,
		DBPinger:    db,
		Version:     cfg.Version,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting cmdstash server", "port", cfg.Port, "version", cfg.Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	case err := <-serverErr:
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
