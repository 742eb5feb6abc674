// Command portalctl signs in to the programme portal from a terminal and
// administers the role directory.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/target/programme-portal/config"
	"github.com/target/programme-portal/internal/bootstrap"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
	exitDenied  = 3
)

// errAccessDenied makes check exit with exitDenied.
var errAccessDenied = errors.New("access denied")

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	code := run(context.Background(), os.Args[1:], &commandContext{
		Logger: logger,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}, bootstrap.LoadConfig)
	os.Exit(code) //nolint:forbidigo // CLI must propagate its status to shell scripts
}

func run(ctx context.Context, args []string, cmdCtx *commandContext, load func() (config.AppConfig, error)) int {
	if len(args) < 1 {
		if err := printUsage(cmdCtx.Stderr); err != nil {
			cmdCtx.Logger.Error("print usage failed", "error", err)
		}
		return exitUsage
	}

	cmdName := args[0]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(cmdCtx.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			cmdCtx.Logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(cmdCtx.Stderr); err != nil {
			cmdCtx.Logger.Error("print usage failed", "error", err)
		}
		return exitUsage
	}

	cfg, err := load()
	if err != nil {
		cmdCtx.Logger.ErrorContext(ctx, "load config", "error", err)
		return exitFailure
	}
	cmdCtx.Ctx = ctx
	cmdCtx.Config = cfg

	if runErr := cmd.run(cmdCtx, args[1:]); runErr != nil {
		if errors.Is(runErr, errAccessDenied) {
			return exitDenied
		}
		cmdCtx.Logger.ErrorContext(ctx, "command failed", "command", cmdName, "error", runErr)
		if writeErr := writef(cmdCtx.Stderr, "portalctl %s: %v\n", cmdName, runErr); writeErr != nil {
			cmdCtx.Logger.Error("print failure message failed", "error", writeErr)
		}
		return exitFailure
	}
	return exitOK
}

func commands() map[string]command {
	return map[string]command{
		"login": {
			name:        "login",
			description: "Sign in and remember the session locally",
			run:         runLogin,
		},
		"logout": {
			name:        "logout",
			description: "Forget the local session",
			run:         runLogout,
		},
		"whoami": {
			name:        "whoami",
			description: "Show the signed-in identity",
			run:         runWhoami,
		},
		"check": {
			name:        "check",
			description: "Exit 0 when the signed-in identity meets -role, 3 otherwise",
			run:         runCheck,
		},
		"migrate": {
			name:        "migrate",
			description: "Run role directory migrations (-status lists them)",
			run:         runMigrations,
		},
		"roles-grant": {
			name:        "roles-grant",
			description: "Assign a role to a username in the role directory",
			run:         runRolesGrant,
		},
		"roles-revoke": {
			name:        "roles-revoke",
			description: "Remove a username from the role directory",
			run:         runRolesRevoke,
		},
		"roles-list": {
			name:        "roles-list",
			description: "List role directory assignments",
			run:         runRolesList,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: portalctl <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(w, "Available commands:\n"); err != nil {
		return err
	}
	names := make([]string, 0, len(commands()))
	for name := range commands() {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c := commands()[name]
		if err := writef(w, "  %-14s %s\n", c.name, c.description); err != nil {
			return err
		}
	}
	return nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}
