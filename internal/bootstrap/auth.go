package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/target/programme-portal/config"
	"github.com/target/programme-portal/internal/adapters/authroles"
	"github.com/target/programme-portal/internal/adapters/devauth"
	"github.com/target/programme-portal/internal/adapters/oidc"
	"github.com/target/programme-portal/internal/data"
	"github.com/target/programme-portal/internal/ports"
)

// BuildVerifier creates the credential verifier for the configured auth mode.
//
//nolint:ireturn // callers only need the port.
func BuildVerifier(ctx context.Context, cfg config.AuthConfig, logger *slog.Logger) (ports.CredentialVerifier, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Mode {
	case config.AuthModeOIDC:
		v, err := oidc.NewPasswordVerifier(ctx, oidc.VerifierConfig{
			ClientID:      cfg.OIDC.ClientID,
			ClientSecret:  cfg.OIDC.ClientSecret,
			Scope:         cfg.OIDC.Scope,
			DiscoveryURL:  cfg.OIDC.DiscoveryURL,
			UsernameClaim: cfg.OIDC.UsernameClaim,
		})
		if err != nil {
			return nil, fmt.Errorf("oidc verifier: %w", err)
		}
		logger.InfoContext(ctx, "credential verifier ready", "mode", cfg.Mode)
		return v, nil

	case config.AuthModeStub, "":
		v := devauth.NewVerifier(devauth.Config{SharedSecret: cfg.Stub.SharedSecret})
		if !v.Verifies() {
			logger.WarnContext(ctx, "stub auth mode accepts any non-empty secret; do not use in production")
		}
		return v, nil

	default:
		return nil, fmt.Errorf("unsupported auth mode %q", cfg.Mode)
	}
}

// RolePolicyDeps groups what BuildRolePolicy may wire in.
type RolePolicyDeps struct {
	Auth   config.AuthConfig
	DB     *sql.DB               // required when Auth.RoleDirectory is set
	Redis  redis.UniversalClient // optional cache for directory lookups
	Logger *slog.Logger
}

// BuildRolePolicy layers the role sources: the policy table always, the
// Postgres directory in front of it when enabled, and a Redis cache in front of
// the directory when a client is supplied.
//
//nolint:ireturn // callers only need the port.
func BuildRolePolicy(deps RolePolicyDeps) (ports.RolePolicy, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	table := authroles.DefaultTable()
	if deps.Auth.RolePolicyFile != "" {
		loaded, err := authroles.LoadTable(deps.Auth.RolePolicyFile)
		if err != nil {
			return nil, err
		}
		table = loaded
		logger.Info("role policy loaded", "file", deps.Auth.RolePolicyFile, "entries", len(table.Entries))
	}
	if !deps.Auth.RoleDirectory {
		return table, nil
	}

	if deps.DB == nil {
		return nil, errors.New("role directory enabled but no database connection")
	}
	var policy ports.RolePolicy = authroles.NewDirectoryPolicy(data.NewRoleAssignmentRepo(deps.DB), table)
	if deps.Redis != nil && deps.Auth.RoleCacheTTL > 0 {
		policy = authroles.NewCachedPolicy(authroles.CachedPolicyOptions{
			Next:   policy,
			Cache:  data.NewRedisCacheRepo(deps.Redis),
			TTL:    deps.Auth.RoleCacheTTL,
			Logger: logger,
		})
		logger.Info("role directory cache enabled", "ttl", deps.Auth.RoleCacheTTL)
	}
	return policy, nil
}
