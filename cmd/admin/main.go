// Command admin runs operator tasks against the configured database.
//
//	admin seed-roles
//	admin lockout-status -email user@example.com
//	admin unlock -email user@example.com
//	admin reset-password -email user@example.com   (password from the terminal or stdin)
//	admin verify-email -email user@example.com
//	admin dedupe-applications [-dry-run]
//	admin purge-sessions
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/user"
	"strings"
	"time"

	"golang.org/x/term"

	"internship_backend/internal/app/di"
	adminusecase "internship_backend/internal/feature/admin/usecase"
	authadapters "internship_backend/internal/feature/auth/adapters"
	internshipadapters "internship_backend/internal/feature/internship/adapters"
	"internship_backend/internal/platform/audit"
	"internship_backend/internal/platform/config"
	"internship_backend/internal/platform/db"
	"internship_backend/internal/platform/logging"
	infraredis "internship_backend/internal/platform/redis"
)

// Operator is what the subcommands call.
type Operator interface {
	SeedRoles(ctx context.Context) (int64, error)
	LockoutStatus(ctx context.Context, email string) (*adminusecase.LockoutStatus, error)
	Unlock(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, password string) error
	VerifyEmail(ctx context.Context, email string) error
	DedupeApplications(ctx context.Context, dryRun bool) (int64, error)
	PurgeSessions(ctx context.Context) (int64, error)
}

var errUsage = errors.New("usage: admin <seed-roles|lockout-status|unlock|reset-password|verify-email|dedupe-applications|purge-sessions> [flags]")

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.New(os.Stderr, cfg.Log)
	slog.SetDefault(log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	gdb, err := db.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	rdb, err := infraredis.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		// Redis のセッションはSQLへ切り替えると見えなくなるので中止する
		return fmt.Errorf("redis: %w", err)
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	op := adminusecase.NewAdminUsecase(
		actor(),
		authadapters.NewRoleGorm(gdb),
		authadapters.NewUserGorm(gdb),
		di.NewSessionRepository(rdb, gdb),
		internshipadapters.NewApplicationGorm(gdb),
		audit.NewGormRecorder(gdb, log),
		di.NewIdentityResolver(rdb, gdb, cfg.Auth.IdentityCacheTTL),
	)
	return dispatch(ctx, op, args, os.Stdin, os.Stdout)
}

func actor() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return "cli:" + u.Username
	}
	return "cli:unknown"
}

func emailFlag(fs *flag.FlagSet) *string {
	return fs.String("email", "", "account email address")
}

func parse(fs *flag.FlagSet, args []string, email *string) error {
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%s: %w", fs.Name(), err)
	}
	if email != nil && strings.TrimSpace(*email) == "" {
		return fmt.Errorf("%s: -email is required", fs.Name())
	}
	return nil
}

// dispatch runs one subcommand and prints its result to out.
func dispatch(ctx context.Context, op Operator, args []string, in io.Reader, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	name, rest := args[0], args[1:]
	fs := flag.NewFlagSet(name, flag.ContinueOnError)

	switch name {
	case "seed-roles":
		if err := parse(fs, rest, nil); err != nil {
			return err
		}
		n, err := op.SeedRoles(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "roles seeded: %d inserted\n", n)

	case "lockout-status":
		email := emailFlag(fs)
		if err := parse(fs, rest, email); err != nil {
			return err
		}
		st, err := op.LockoutStatus(ctx, *email)
		if err != nil {
			return err
		}
		until := "-"
		if st.LockoutUntil != nil {
			until = st.LockoutUntil.Format(time.RFC3339)
		}
		fmt.Fprintf(out, "email=%s locked=%t failed_attempts=%d lockout_until=%s email_verified=%t\n",
			st.Email, st.Locked, st.FailedLoginAttempts, until, st.EmailVerified)

	case "unlock":
		email := emailFlag(fs)
		if err := parse(fs, rest, email); err != nil {
			return err
		}
		if err := op.Unlock(ctx, *email); err != nil {
			return err
		}
		fmt.Fprintf(out, "unlocked %s\n", *email)

	case "reset-password":
		email := emailFlag(fs)
		if err := parse(fs, rest, email); err != nil {
			return err
		}
		password, err := readPassword(in, out)
		if err != nil {
			return err
		}
		if err := op.ResetPassword(ctx, *email, password); err != nil {
			return err
		}
		fmt.Fprintf(out, "password reset for %s; all sessions revoked\n", *email)

	case "verify-email":
		email := emailFlag(fs)
		if err := parse(fs, rest, email); err != nil {
			return err
		}
		if err := op.VerifyEmail(ctx, *email); err != nil {
			return err
		}
		fmt.Fprintf(out, "email verified for %s\n", *email)

	case "dedupe-applications":
		dryRun := fs.Bool("dry-run", false, "only count duplicates")
		if err := parse(fs, rest, nil); err != nil {
			return err
		}
		n, err := op.DedupeApplications(ctx, *dryRun)
		if err != nil {
			return err
		}
		if *dryRun {
			fmt.Fprintf(out, "duplicate applications: %d (dry run, nothing deleted)\n", n)
		} else {
			fmt.Fprintf(out, "duplicate applications deleted: %d\n", n)
		}

	case "purge-sessions":
		if err := parse(fs, rest, nil); err != nil {
			return err
		}
		n, err := op.PurgeSessions(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "expired sessions purged: %d\n", n)

	default:
		return fmt.Errorf("unknown command %q\n%w", name, errUsage)
	}
	return nil
}

// readPassword prompts without echo on a terminal and reads one line otherwise.
func readPassword(in io.Reader, out io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(out, "new password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("read password: empty input")
	}
	return line, nil
}
