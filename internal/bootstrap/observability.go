package bootstrap

import (
	"log/slog"

	"github.com/target/programme-portal/config"
	"github.com/target/programme-portal/internal/observability/statsd"
)

// BuildMetrics returns a statsd client. A dial failure is logged and yields a
// disabled client so metrics never block startup.
func BuildMetrics(cfg config.ObservabilityMetricsConfig, logger *slog.Logger) *statsd.Client {
	if logger == nil {
		logger = slog.Default()
	}
	client, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.IsEnabled(),
		Address: cfg.StatsdAddress,
		Prefix:  cfg.Prefix,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to initialise statsd client", "error", err)
		disabled, _ := statsd.NewClient(statsd.Config{Prefix: cfg.Prefix, Logger: logger})
		return disabled
	}
	return client
}
