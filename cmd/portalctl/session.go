package main

import (
	"bufio"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/target/programme-portal/internal/adapters/filestore"
	"github.com/target/programme-portal/internal/bootstrap"
	domainauth "github.com/target/programme-portal/internal/domain/auth"
	"github.com/target/programme-portal/internal/service"
	"golang.org/x/term"
)

// localSession is an auth context over the local state file.
type localSession struct {
	auth  *service.AuthContext
	path  string
	db    *sql.DB
	redis redis.UniversalClient
}

func (s *localSession) Close() error {
	var errs []error
	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}
	return errors.Join(errs...)
}

func statePath(cmdCtx *commandContext) (string, error) {
	if p := cmdCtx.Config.PortalctlStateFile; p != "" {
		return p, nil
	}
	return filestore.DefaultPath()
}

// openSession builds the same provider stack the server uses, with the state
// file standing in for the cookie. Role sources are connected only when
// withRoles is set, since restoring and forgetting a session never consult them.
func openSession(cmdCtx *commandContext, withRoles bool) (*localSession, error) {
	cfg := cmdCtx.Config
	path, err := statePath(cmdCtx)
	if err != nil {
		return nil, fmt.Errorf("state file: %w", err)
	}
	codec, err := bootstrap.BuildSessionCodec(cfg.Session, cmdCtx.Logger)
	if err != nil {
		return nil, err
	}
	store, err := filestore.New(path, codec, cmdCtx.Logger)
	if err != nil {
		return nil, err
	}

	s := &localSession{path: path}
	deps := bootstrap.RolePolicyDeps{Logger: cmdCtx.Logger}
	if withRoles {
		deps.Auth = cfg.Auth
		if cfg.RoleDirectoryEnabled() {
			if s.db, err = bootstrap.ConnectDB(cmdCtx.Ctx, bootstrap.DatabaseConfig{DBConfig: cfg.Postgres}); err != nil {
				return nil, fmt.Errorf("connect db: %w", err)
			}
		}
		if cfg.RoleCacheEnabled() {
			if s.redis, err = bootstrap.ConnectRedis(cmdCtx.Ctx, bootstrap.DatabaseConfig{RedisConfig: cfg.Redis}); err != nil {
				return nil, errors.Join(fmt.Errorf("connect redis: %w", err), s.Close())
			}
		}
		deps.DB, deps.Redis = s.db, s.redis
	}
	roles, err := bootstrap.BuildRolePolicy(deps)
	if err != nil {
		return nil, errors.Join(err, s.Close())
	}

	verifier, err := bootstrap.BuildVerifier(cmdCtx.Ctx, cfg.Auth, cmdCtx.Logger)
	if err != nil {
		return nil, errors.Join(err, s.Close())
	}
	provider, err := service.NewIdentityProvider(service.IdentityProviderOptions{
		Verifier:     verifier,
		Roles:        roles,
		Store:        store,
		StoreTimeout: cfg.Auth.StoreTimeout,
		Logger:       cmdCtx.Logger,
	})
	if err != nil {
		return nil, errors.Join(err, s.Close())
	}
	s.auth = service.NewAuthContext(service.AuthContextOptions{
		Provider:  provider,
		Logger:    cmdCtx.Logger,
		Observers: []service.Observer{service.AuditObserver(cmdCtx.Logger)},
	})
	s.auth.Initialize(cmdCtx.Ctx)
	return s, nil
}

func withSession(cmdCtx *commandContext, withRoles bool, f func(*localSession) error) error {
	s, err := openSession(cmdCtx, withRoles)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil {
			cmdCtx.Logger.Warn("close role sources failed", "error", cerr)
		}
	}()
	return f(s)
}

type loginOptions struct {
	Username string
}

func parseLoginFlags(args []string, stderr io.Writer) (loginOptions, error) {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts loginOptions
	fs.StringVar(&opts.Username, "u", "", "Username to sign in as")

	if err := fs.Parse(args); err != nil {
		return loginOptions{}, err
	}
	if opts.Username == "" && fs.NArg() > 0 {
		opts.Username = fs.Arg(0)
	}
	if strings.TrimSpace(opts.Username) == "" {
		return loginOptions{}, errors.New("-u username is required")
	}
	return opts, nil
}

func runLogin(cmdCtx *commandContext, args []string) error {
	opts, err := parseLoginFlags(args, cmdCtx.Stderr)
	if err != nil {
		return err
	}
	secret, err := readSecret(cmdCtx)
	if err != nil {
		return err
	}

	return withSession(cmdCtx, true, func(s *localSession) error {
		if loginErr := s.auth.Login(cmdCtx.Ctx, opts.Username, secret); loginErr != nil {
			if errors.Is(loginErr, service.ErrInvalidCredentials) {
				return errors.New("invalid username or password")
			}
			return loginErr
		}
		id, _ := s.auth.Identity()
		return writef(cmdCtx.Stdout, "Signed in as %s (%s)\n", id.Username, id.Role)
	})
}

// readSecret prompts without echo on a terminal and reads one line otherwise.
func readSecret(cmdCtx *commandContext) (string, error) {
	if f, ok := cmdCtx.Stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if err := writef(cmdCtx.Stderr, "Password: "); err != nil {
			return "", err
		}
		b, err := term.ReadPassword(int(f.Fd()))
		if writeErr := writeln(cmdCtx.Stderr); writeErr != nil {
			cmdCtx.Logger.Debug("write newline failed", "error", writeErr)
		}
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(cmdCtx.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func runLogout(cmdCtx *commandContext, _ []string) error {
	return withSession(cmdCtx, false, func(s *localSession) error {
		s.auth.Logout(cmdCtx.Ctx)
		return writeln(cmdCtx.Stdout, "Signed out")
	})
}

func runWhoami(cmdCtx *commandContext, _ []string) error {
	return withSession(cmdCtx, false, func(s *localSession) error {
		id, ok := s.auth.Identity()
		if !ok {
			return writeln(cmdCtx.Stdout, "Not signed in")
		}
		return writef(cmdCtx.Stdout, "%s (%s)\n", id.Username, id.Role)
	})
}

func parseCheckFlags(args []string, stderr io.Writer) (domainauth.Role, error) {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	role := fs.String("role", "user", "Minimum role: user, admin or superadmin")
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	return domainauth.ParseRole(*role)
}

func runCheck(cmdCtx *commandContext, args []string) error {
	minimum, err := parseCheckFlags(args, cmdCtx.Stderr)
	if err != nil {
		return err
	}
	return withSession(cmdCtx, false, func(s *localSession) error {
		d := s.auth.Check(domainauth.NewGate(minimum))
		if d.Admitted() {
			return writef(cmdCtx.Stdout, "admitted: %s (%s) meets %s\n", d.Identity.Username, d.Identity.Role, minimum)
		}
		if err := writef(cmdCtx.Stdout, "denied: %s\n", d.Reason); err != nil {
			return err
		}
		return errAccessDenied
	})
}

