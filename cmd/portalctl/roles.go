package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/target/programme-portal/internal/adapters/authroles"
	"github.com/target/programme-portal/internal/bootstrap"
	"github.com/target/programme-portal/internal/data"
	domainauth "github.com/target/programme-portal/internal/domain/auth"
	"github.com/target/programme-portal/internal/migrate"
)

const (
	defaultMigrationTimeout = 5 * time.Minute
	defaultRolesTimeout     = 30 * time.Second
)

type migrateOptions struct {
	Timeout time.Duration
	Status  bool
}

func parseMigrateFlags(args []string, stderr io.Writer) (migrateOptions, error) {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := migrateOptions{Timeout: defaultMigrationTimeout}
	fs.DurationVar(&opts.Timeout, "timeout", defaultMigrationTimeout,
		"Maximum duration to wait for migrations to complete")
	fs.BoolVar(&opts.Status, "status", false, "List migrations and whether they are applied, without applying")

	if err := fs.Parse(args); err != nil {
		return migrateOptions{}, err
	}
	if opts.Timeout <= 0 {
		return migrateOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func runMigrations(cmdCtx *commandContext, args []string) error {
	opts, err := parseMigrateFlags(args, cmdCtx.Stderr)
	if err != nil {
		return err
	}
	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		if opts.Status {
			rows, listErr := migrate.List(ctx, db)
			if listErr != nil {
				return listErr
			}
			return printMigrationStatus(cmdCtx.Stdout, rows)
		}
		if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
			return migrateErr
		}
		return writeln(cmdCtx.Stdout, "Migrations applied")
	})
}

func printMigrationStatus(out io.Writer, rows []migrate.Status) error {
	for _, row := range rows {
		state := "pending"
		if row.Applied {
			state = "applied"
		}
		if err := writef(out, "%s\t%s\n", row.Version, state); err != nil {
			return err
		}
	}
	return nil
}

// withDatabase connects to the role directory for the lifetime of f and
// cancels on SIGINT/SIGTERM or after timeout.
func withDatabase(
	cmdCtx *commandContext,
	timeout time.Duration,
	f func(context.Context, *sql.DB) error,
) error {
	ctx, stop := signal.NotifyContext(cmdCtx.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	db, err := bootstrap.ConnectDB(ctx, bootstrap.DatabaseConfig{
		DBConfig: cmdCtx.Config.Postgres,
		Logger:   cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			cmdCtx.Logger.Warn("db close failed", "error", cerr)
		}
	}()
	return f(ctx, db)
}

type grantOptions struct {
	Username  string
	Role      domainauth.Role
	GrantedBy string
}

func parseGrantFlags(args []string, stderr io.Writer) (grantOptions, error) {
	fs := flag.NewFlagSet("roles-grant", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		opts grantOptions
		role string
	)
	fs.StringVar(&opts.Username, "user", "", "Username to assign")
	fs.StringVar(&role, "role", "", "Role: user, admin or superadmin")
	fs.StringVar(&opts.GrantedBy, "by", os.Getenv("USER"), "Operator recorded as granting the role")

	if err := fs.Parse(args); err != nil {
		return grantOptions{}, err
	}
	if opts.Username == "" {
		return grantOptions{}, errors.New("-user is required")
	}
	parsed, err := domainauth.ParseRole(role)
	if err != nil {
		return grantOptions{}, err
	}
	opts.Role = parsed
	if opts.GrantedBy == "" {
		opts.GrantedBy = "portalctl"
	}
	return opts, nil
}

func runRolesGrant(cmdCtx *commandContext, args []string) error {
	opts, err := parseGrantFlags(args, cmdCtx.Stderr)
	if err != nil {
		return err
	}
	return withDatabase(cmdCtx, defaultRolesTimeout, func(ctx context.Context, db *sql.DB) error {
		if assignErr := data.NewRoleAssignmentRepo(db).Assign(ctx, opts.Username, opts.Role, opts.GrantedBy); assignErr != nil {
			return assignErr
		}
		invalidateCachedRole(ctx, cmdCtx, opts.Username)
		return writef(cmdCtx.Stdout, "Granted %s to %s\n", opts.Role, opts.Username)
	})
}

func parseRevokeFlags(args []string, stderr io.Writer) (string, error) {
	fs := flag.NewFlagSet("roles-revoke", flag.ContinueOnError)
	fs.SetOutput(stderr)
	username := fs.String("user", "", "Username to remove")
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if *username == "" {
		return "", errors.New("-user is required")
	}
	return *username, nil
}

func runRolesRevoke(cmdCtx *commandContext, args []string) error {
	username, err := parseRevokeFlags(args, cmdCtx.Stderr)
	if err != nil {
		return err
	}
	return withDatabase(cmdCtx, defaultRolesTimeout, func(ctx context.Context, db *sql.DB) error {
		if revokeErr := data.NewRoleAssignmentRepo(db).Revoke(ctx, username); revokeErr != nil {
			if errors.Is(revokeErr, data.ErrRoleAssignmentNotFound) {
				return fmt.Errorf("%s has no directory assignment", username)
			}
			return revokeErr
		}
		invalidateCachedRole(ctx, cmdCtx, username)
		return writef(cmdCtx.Stdout, "Revoked directory role for %s\n", username)
	})
}

func parseListFlags(args []string, stderr io.Writer) (domainauth.Role, error) {
	fs := flag.NewFlagSet("roles-list", flag.ContinueOnError)
	fs.SetOutput(stderr)
	role := fs.String("role", "", "Only list assignments with this role")
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if *role == "" {
		return "", nil
	}
	return domainauth.ParseRole(*role)
}

func runRolesList(cmdCtx *commandContext, args []string) error {
	role, err := parseListFlags(args, cmdCtx.Stderr)
	if err != nil {
		return err
	}
	return withDatabase(cmdCtx, defaultRolesTimeout, func(ctx context.Context, db *sql.DB) error {
		rows, listErr := data.NewRoleAssignmentRepo(db).List(ctx, role)
		if listErr != nil {
			return listErr
		}
		return printAssignments(cmdCtx.Stdout, rows)
	})
}

func printAssignments(out io.Writer, rows []data.RoleAssignment) error {
	if len(rows) == 0 {
		return writeln(out, "No role assignments")
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	if err := writeln(w, "USERNAME\tROLE\tGRANTED BY\tUPDATED"); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		if err := writef(w, "%s\t%s\t%s\t%s\n", r.Username, r.Role, r.GrantedBy, r.UpdatedAt.UTC().Format(time.RFC3339)); err != nil {
			return fmt.Errorf("write row %q: %w", r.Username, err)
		}
	}
	return w.Flush()
}

// invalidateCachedRole drops a cached lookup so the change applies at the next sign-in.
func invalidateCachedRole(ctx context.Context, cmdCtx *commandContext, username string) {
	cfg := cmdCtx.Config
	if !cfg.RoleCacheEnabled() {
		return
	}
	client, err := bootstrap.ConnectRedis(ctx, bootstrap.DatabaseConfig{RedisConfig: cfg.Redis})
	if err != nil {
		cmdCtx.Logger.Warn("role cache not invalidated", "username", username, "error", err)
		return
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			cmdCtx.Logger.Warn("redis close failed", "error", cerr)
		}
	}()
	cached := authroles.NewCachedPolicy(authroles.CachedPolicyOptions{
		Cache:  data.NewRedisCacheRepo(client),
		TTL:    cfg.Auth.RoleCacheTTL,
		Logger: cmdCtx.Logger,
	})
	if invErr := cached.Invalidate(ctx, username); invErr != nil {
		cmdCtx.Logger.Warn("role cache not invalidated", "username", username, "error", invErr)
	}
}
