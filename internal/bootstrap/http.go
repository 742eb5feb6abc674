package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/target/programme-portal/config"
	"golang.org/x/sync/errgroup"
)

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	HTTP    config.HTTPConfig
	Handler http.Handler
	Logger  *slog.Logger
}

func newServer(cfg HTTPServerConfig) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           cfg.Handler,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// ServeHTTP listens on cfg.HTTP.Addr and serves until ctx is canceled, then
// shuts down gracefully within cfg.HTTP.ShutdownTimeout.
func ServeHTTP(ctx context.Context, cfg HTTPServerConfig) error {
	ln, err := net.Listen("tcp", cfg.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.HTTP.Addr, err)
	}
	return Serve(ctx, ln, cfg)
}

// Serve is ServeHTTP on an existing listener.
func Serve(ctx context.Context, ln net.Listener, cfg HTTPServerConfig) error {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	server := newServer(cfg)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.InfoContext(gctx, "starting HTTP server", "addr", ln.Addr().String())
		if serveErr := server.Serve(ln); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", serveErr)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
			return fmt.Errorf("shutdown http server: %w", shutdownErr)
		}
		logger.Info("HTTP server stopped")
		return nil
	})
	return g.Wait()
}
