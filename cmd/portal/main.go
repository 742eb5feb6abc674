// Command portal serves the programme portal over HTTP.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/target/programme-portal/config"
	"github.com/target/programme-portal/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}
	logStartupInfo(ctx, logger, &cfg)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	portal, err := bootstrap.NewPortal(ctx, bootstrap.PortalDeps{Config: &cfg, Logger: logger})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := portal.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close portal resources failed", "error", cerr)
		}
	}()

	return bootstrap.ServeHTTP(ctx, bootstrap.HTTPServerConfig{
		HTTP:    cfg.HTTP,
		Handler: portal.Handler,
		Logger:  logger,
	})
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	logger.InfoContext(ctx, "starting programme portal",
		"addr", cfg.HTTP.Addr,
		"auth_mode", cfg.Auth.Mode,
		"role_directory", cfg.RoleDirectoryEnabled(),
		"role_cache", cfg.RoleCacheEnabled(),
		"sealed_cookies", cfg.Session.Sealed(),
		"dev", cfg.IsDev)
}
