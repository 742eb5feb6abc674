package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/target/programme-portal/config"
	"github.com/target/programme-portal/internal/adapters/cookiestore"
	"github.com/target/programme-portal/internal/data"
	httpx "github.com/target/programme-portal/internal/http"
	"github.com/target/programme-portal/internal/observability/statsd"
)

// Portal holds the wired application and the connections it owns.
type Portal struct {
	Config  *config.AppConfig
	Handler http.Handler
	Metrics *statsd.Client
	DB      *sql.DB               // nil unless the role directory is enabled
	Redis   redis.UniversalClient // nil unless the role cache is enabled
}

// PortalDeps groups dependencies for NewPortal. DB and Redis are connected
// from Config when nil and required. The Portal owns them either way.
type PortalDeps struct {
	Config *config.AppConfig
	DB     *sql.DB
	Redis  redis.UniversalClient
	Logger *slog.Logger
}

// NewPortal connects infrastructure, builds the auth stack and the router.
func NewPortal(ctx context.Context, deps PortalDeps) (p *Portal, err error) {
	if deps.Config == nil {
		return nil, errors.New("config is required")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	p = &Portal{Config: cfg, DB: deps.DB, Redis: deps.Redis}
	defer func() {
		if err != nil {
			err = errors.Join(err, p.Close())
			p = nil
		}
	}()

	if err = p.connect(ctx, logger); err != nil {
		return p, err
	}

	codec, err := BuildSessionCodec(cfg.Session, logger)
	if err != nil {
		return p, err
	}
	verifier, err := BuildVerifier(ctx, cfg.Auth, logger)
	if err != nil {
		return p, err
	}
	roles, err := BuildRolePolicy(RolePolicyDeps{Auth: cfg.Auth, DB: p.DB, Redis: p.Redis, Logger: logger})
	if err != nil {
		return p, err
	}
	p.Metrics = BuildMetrics(cfg.Observability.Metrics, logger)

	scope, err := httpx.NewSessionScope(httpx.SessionScopeConfig{
		Codec: codec,
		Cookie: cookiestore.Options{
			Name:        cfg.Session.CookieName,
			Domain:      cfg.HTTP.CookieDomain,
			MaxAge:      cfg.Session.MaxAge,
			ForceSecure: cfg.HTTP.SecureCookies,
		},
		Verifier:     verifier,
		Roles:        roles,
		StoreTimeout: cfg.Auth.StoreTimeout,
		Metrics:      p.Metrics,
		Logger:       logger,
	})
	if err != nil {
		return p, fmt.Errorf("session scope: %w", err)
	}

	services := httpx.RouterServices{
		Sessions:   scope,
		SystemInfo: SystemInfo(cfg),
		CSRF: httpx.CSRFConfig{
			CookieDomain: cfg.HTTP.CookieDomain,
			ForceSecure:  cfg.HTTP.SecureCookies,
		},
		Metrics: p.Metrics,
		Logger:  logger,
	}
	if p.DB != nil {
		services.Roles = data.NewRoleAssignmentRepo(p.DB)
	}
	if p.Handler, err = httpx.NewRouter(services); err != nil {
		return p, fmt.Errorf("router: %w", err)
	}
	return p, nil
}

func (p *Portal) connect(ctx context.Context, logger *slog.Logger) error {
	cfg := p.Config
	if cfg.RoleDirectoryEnabled() && p.DB == nil {
		db, err := ConnectDB(ctx, DatabaseConfig{DBConfig: cfg.Postgres, Logger: logger})
		if err != nil {
			return fmt.Errorf("connect db: %w", err)
		}
		p.DB = db
		if cfg.Postgres.RunMigrationsOnStart {
			if err = RunMigrations(ctx, db, logger); err != nil {
				return err
			}
		} else {
			logger.InfoContext(ctx, "skipping database migrations on startup", "reason", "disabled via config")
		}
	}
	if cfg.RoleCacheEnabled() && p.Redis == nil {
		client, err := ConnectRedis(ctx, DatabaseConfig{RedisConfig: cfg.Redis, Logger: logger})
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		p.Redis = client
	}
	return nil
}

// Close releases connections the portal holds.
func (p *Portal) Close() error {
	var errs []error
	if p.Metrics != nil {
		errs = append(errs, p.Metrics.Close())
	}
	if p.Redis != nil {
		if err := p.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if p.DB != nil {
		if err := p.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}

// SystemInfo is the non-secret runtime summary shown to superadmins.
func SystemInfo(cfg *config.AppConfig) map[string]string {
	onOff := func(b bool) string {
		if b {
			return "enabled"
		}
		return "disabled"
	}
	info := map[string]string{
		"auth_mode":      string(cfg.Auth.Mode),
		"store_timeout":  cfg.Auth.StoreTimeout.String(),
		"role_directory": onOff(cfg.RoleDirectoryEnabled()),
		"role_cache":     onOff(cfg.RoleCacheEnabled()),
		"session_cookie": cfg.Session.CookieName,
		"cookie_sealing": onOff(cfg.Session.Sealed()),
		"metrics":        onOff(cfg.Observability.Metrics.IsEnabled()),
	}
	if cfg.Auth.RolePolicyFile != "" {
		info["role_policy_file"] = cfg.Auth.RolePolicyFile
	}
	return info
}
