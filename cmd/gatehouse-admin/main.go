package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ticketlab/gatehouse/config"
	"github.com/ticketlab/gatehouse/internal/bootstrap"
	"github.com/ticketlab/gatehouse/internal/data"
	"github.com/ticketlab/gatehouse/internal/devseed"
	"github.com/ticketlab/gatehouse/internal/domain/model"
	"github.com/ticketlab/gatehouse/internal/domain/principal"
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
}

const defaultMigrationTimeout = 5 * time.Minute

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		Config: cfg,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"migrate": {
			name:        "migrate",
			description: "Run database migrations",
			run:         runMigrations,
		},
		"db-seed": {
			name:        "db-seed",
			description: "Run database migrations and seed development accounts",
			run:         runDBSeed,
		},
		"create-admin": {
			name:        "create-admin",
			description: "Create a back-office administrator account",
			run:         runCreateAdmin,
		},
		"set-admin-role": {
			name:        "set-admin-role",
			description: "Change an administrator's role and permission grant",
			run:         runSetAdminRole,
		},
		"deactivate-admin": {
			name:        "deactivate-admin",
			description: "Deactivate (or reactivate) an administrator account",
			run:         runDeactivateAdmin,
		},
		"list-admins": {
			name:        "list-admins",
			description: "List administrator accounts",
			run:         runListAdmins,
		},
		"clear-slots": {
			name:        "clear-slots",
			description: "Remove persisted session slots from Redis",
			run:         runClearSlots,
		},
	}
}

func printUsage() error {
	if err := writef(os.Stdout, "Usage: gatehouse-admin <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(os.Stdout, "Available commands:\n"); err != nil {
		return err
	}
	for _, c := range commands() {
		if err := writef(os.Stdout, "  %-20s %s\n", c.name, c.description); err != nil {
			return err
		}
	}
	return nil
}

type migrateOptions struct {
	Timeout time.Duration
}

type dbSeedOptions struct {
	Timeout     time.Duration
	AllowRemote bool
}

type createAdminOptions struct {
	Email       string
	FirstName   string
	LastName    string
	Role        string
	Password    string
	Permissions []string
}

type setRoleOptions struct {
	Email       string
	Role        string
	Permissions []string
}

type deactivateOptions struct {
	Email    string
	Activate bool
}

type listAdminsOptions struct {
	Limit  int
	Offset int
}

type clearSlotsOptions struct {
	DryRun bool
}

func runMigrations(cmdCtx *commandContext, args []string) error {
	opts, err := parseMigrateFlags(args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		cmdCtx.Logger.Info("running database migrations")
		if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
			return fmt.Errorf("run migrations: %w", migrateErr)
		}
		cmdCtx.Logger.Info("migrations completed successfully")
		return nil
	})
}

func runDBSeed(cmdCtx *commandContext, args []string) error {
	opts, err := parseDBSeedFlags(args)
	if err != nil {
		return err
	}

	if guardErr := guardRemoteHost(cmdCtx, opts.AllowRemote); guardErr != nil {
		return guardErr
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		cmdCtx.Logger.Info("ensuring database migrations are current")
		if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
			return fmt.Errorf("run migrations: %w", migrateErr)
		}

		cmdCtx.Logger.Info("seeding development accounts")
		if seedErr := devseed.Run(ctx, devseed.NewServices(db), cmdCtx.Logger); seedErr != nil {
			return fmt.Errorf("seed data: %w", seedErr)
		}
		return nil
	})
}

func runCreateAdmin(cmdCtx *commandContext, args []string) error {
	opts, err := parseCreateAdminFlags(args)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(opts.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return withDatabase(cmdCtx, time.Minute, func(ctx context.Context, db *sql.DB) error {
		repo := data.NewAdminAccountRepo(db)
		account, createErr := repo.Create(ctx, &model.CreateAdminAccountRequest{
			Email:        opts.Email,
			FirstName:    opts.FirstName,
			LastName:     opts.LastName,
			Role:         opts.Role,
			Permissions:  opts.Permissions,
			PasswordHash: string(hash),
		})
		if createErr != nil {
			return fmt.Errorf("create admin account: %w", createErr)
		}

		cmdCtx.Logger.Info("admin account created",
			"id", account.ID,
			"email", account.Email,
			"role", account.Role)
		return nil
	})
}

func runSetAdminRole(cmdCtx *commandContext, args []string) error {
	opts, err := parseSetRoleFlags(args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, time.Minute, func(ctx context.Context, db *sql.DB) error {
		repo := data.NewAdminAccountRepo(db)
		if setErr := repo.SetRole(ctx, opts.Email, opts.Role, opts.Permissions); setErr != nil {
			return fmt.Errorf("set admin role: %w", setErr)
		}
		cmdCtx.Logger.Info("admin role updated", "email", opts.Email, "role", opts.Role)
		return nil
	})
}

func runDeactivateAdmin(cmdCtx *commandContext, args []string) error {
	opts, err := parseDeactivateFlags(args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, time.Minute, func(ctx context.Context, db *sql.DB) error {
		repo := data.NewAdminAccountRepo(db)
		if setErr := repo.SetActive(ctx, opts.Email, opts.Activate); setErr != nil {
			return fmt.Errorf("set admin active flag: %w", setErr)
		}
		cmdCtx.Logger.Info("admin active flag updated", "email", opts.Email, "active", opts.Activate)
		return nil
	})
}

func runListAdmins(cmdCtx *commandContext, args []string) error {
	opts, err := parseListAdminsFlags(args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, time.Minute, func(ctx context.Context, db *sql.DB) error {
		repo := data.NewAdminAccountRepo(db)
		accounts, listErr := repo.List(ctx, opts.Limit, opts.Offset)
		if listErr != nil {
			return fmt.Errorf("list admin accounts: %w", listErr)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		if writeErr := writeln(w, "Email\tRole\tActive\tLast Login"); writeErr != nil {
			return fmt.Errorf("write list header: %w", writeErr)
		}
		for _, account := range accounts {
			lastLogin := "never"
			if account.LastLoginAt != nil {
				lastLogin = account.LastLoginAt.Format(time.RFC3339)
			}
			if writeErr := writef(w, "%s\t%s\t%t\t%s\n",
				account.Email, account.Role, account.IsActive, lastLogin); writeErr != nil {
				return fmt.Errorf("write list row: %w", writeErr)
			}
		}
		if flushErr := w.Flush(); flushErr != nil {
			return fmt.Errorf("flush list output: %w", flushErr)
		}
		return nil
	})
}

func runClearSlots(cmdCtx *commandContext, args []string) error {
	opts, err := parseClearSlotsFlags(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, 2*time.Minute)
	defer cancel()

	redisClient, err := bootstrap.ConnectRedis(bootstrap.DatabaseConfig{
		RedisConfig: cmdCtx.Config.Redis,
		Logger:      cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() {
		if closeErr := redisClient.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("redis close failed", "error", closeErr)
		}
	}()

	pattern := cmdCtx.Config.Auth.Slots.Prefix + "*"
	cmdCtx.Logger.Info("scanning redis", "pattern", pattern, "dry_run", opts.DryRun)

	iter := redisClient.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if iterErr := iter.Err(); iterErr != nil {
		return fmt.Errorf("redis scan: %w", iterErr)
	}

	if len(keys) == 0 {
		return writeln(os.Stdout, "No session slot keys found")
	}

	if opts.DryRun {
		for _, key := range keys {
			if writeErr := writef(os.Stdout, "  %s\n", key); writeErr != nil {
				return fmt.Errorf("print slot key: %w", writeErr)
			}
		}
		return writef(os.Stdout, "Dry-run: would delete %d keys\n", len(keys))
	}

	deleted, err := redisClient.Del(ctx, keys...).Result()
	if err != nil {
		return fmt.Errorf("delete slot keys: %w", err)
	}
	return writef(os.Stdout, "Deleted %d/%d keys\n", deleted, len(keys))
}

func parseMigrateFlags(args []string) (migrateOptions, error) {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := migrateOptions{Timeout: defaultMigrationTimeout}
	fs.DurationVar(&opts.Timeout, "timeout", defaultMigrationTimeout,
		"Maximum duration to wait for migrations to complete")

	if err := fs.Parse(args); err != nil {
		return migrateOptions{}, err
	}
	if opts.Timeout <= 0 {
		return migrateOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func parseDBSeedFlags(args []string) (dbSeedOptions, error) {
	fs := flag.NewFlagSet("db-seed", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := dbSeedOptions{Timeout: defaultMigrationTimeout}
	fs.DurationVar(&opts.Timeout, "timeout", defaultMigrationTimeout,
		"Maximum duration to wait for seeding to complete")
	fs.BoolVar(&opts.AllowRemote, "allow-remote", false,
		"Permit running against database hosts that do not look local")

	if err := fs.Parse(args); err != nil {
		return dbSeedOptions{}, err
	}
	if opts.Timeout <= 0 {
		return dbSeedOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func parseCreateAdminFlags(args []string) (createAdminOptions, error) {
	fs := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts createAdminOptions
	var permsCSV string
	fs.StringVar(&opts.Email, "email", "", "Administrator email (required)")
	fs.StringVar(&opts.FirstName, "first-name", "", "First name")
	fs.StringVar(&opts.LastName, "last-name", "", "Last name")
	fs.StringVar(&opts.Role, "role", string(principal.RoleSupportAgent), "Administrator role")
	fs.StringVar(&opts.Password, "password", "", "Initial password (required)")
	fs.StringVar(&permsCSV, "permissions", "",
		"Comma-separated permission grant (defaults to the role's baseline)")

	if err := fs.Parse(args); err != nil {
		return createAdminOptions{}, err
	}

	opts.Email = strings.TrimSpace(opts.Email)
	if opts.Email == "" {
		return createAdminOptions{}, errors.New("--email is required")
	}
	if opts.Password == "" {
		return createAdminOptions{}, errors.New("--password is required")
	}
	if !principal.AdminRole(opts.Role).Valid() {
		return createAdminOptions{}, fmt.Errorf("unknown role %q", opts.Role)
	}
	opts.Permissions = parsePermissionsCSV(permsCSV)

	return opts, nil
}

func parseSetRoleFlags(args []string) (setRoleOptions, error) {
	fs := flag.NewFlagSet("set-admin-role", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts setRoleOptions
	var permsCSV string
	fs.StringVar(&opts.Email, "email", "", "Administrator email (required)")
	fs.StringVar(&opts.Role, "role", "", "New role (required)")
	fs.StringVar(&permsCSV, "permissions", "",
		"Comma-separated permission grant (defaults to the role's baseline)")

	if err := fs.Parse(args); err != nil {
		return setRoleOptions{}, err
	}

	opts.Email = strings.TrimSpace(opts.Email)
	if opts.Email == "" {
		return setRoleOptions{}, errors.New("--email is required")
	}
	if !principal.AdminRole(opts.Role).Valid() {
		return setRoleOptions{}, fmt.Errorf("unknown role %q", opts.Role)
	}
	opts.Permissions = parsePermissionsCSV(permsCSV)

	return opts, nil
}

func parseDeactivateFlags(args []string) (deactivateOptions, error) {
	fs := flag.NewFlagSet("deactivate-admin", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts deactivateOptions
	fs.StringVar(&opts.Email, "email", "", "Administrator email (required)")
	fs.BoolVar(&opts.Activate, "activate", false, "Reactivate instead of deactivating")

	if err := fs.Parse(args); err != nil {
		return deactivateOptions{}, err
	}

	opts.Email = strings.TrimSpace(opts.Email)
	if opts.Email == "" {
		return deactivateOptions{}, errors.New("--email is required")
	}
	return opts, nil
}

func parseListAdminsFlags(args []string) (listAdminsOptions, error) {
	fs := flag.NewFlagSet("list-admins", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts listAdminsOptions
	fs.IntVar(&opts.Limit, "limit", 50, "Maximum rows to display")
	fs.IntVar(&opts.Offset, "offset", 0, "Offset for paging")

	if err := fs.Parse(args); err != nil {
		return listAdminsOptions{}, err
	}
	if opts.Limit <= 0 {
		return listAdminsOptions{}, errors.New("--limit must be greater than zero")
	}
	return opts, nil
}

func parseClearSlotsFlags(args []string) (clearSlotsOptions, error) {
	fs := flag.NewFlagSet("clear-slots", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts clearSlotsOptions
	fs.BoolVar(&opts.DryRun, "dry-run", false, "Print actions without executing")

	if err := fs.Parse(args); err != nil {
		return clearSlotsOptions{}, err
	}
	return opts, nil
}

// parsePermissionsCSV splits a comma-separated grant into canonical
// permission tokens. An empty input yields nil so callers fall back to
// the role's baseline.
func parsePermissionsCSV(csv string) []string {
	raw := strings.Split(csv, ",")
	trimmed := make([]string, 0, len(raw))
	for _, token := range raw {
		if t := strings.TrimSpace(token); t != "" {
			trimmed = append(trimmed, t)
		}
	}
	if len(trimmed) == 0 {
		return nil
	}

	canonical := principal.CanonicalizeAll(trimmed)
	out := make([]string, len(canonical))
	for i, p := range canonical {
		out[i] = string(p)
	}
	return out
}

func withDatabase(
	cmdCtx *commandContext,
	timeout time.Duration,
	f func(context.Context, *sql.DB) error,
) error {
	ctx, stop := signal.NotifyContext(cmdCtx.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	db, err := bootstrap.ConnectDB(bootstrap.DatabaseConfig{
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

func guardRemoteHost(cmdCtx *commandContext, allow bool) error {
	if !isLikelyRemoteHost(cmdCtx.Config.Postgres.Host) {
		return nil
	}
	if !allow {
		return fmt.Errorf(
			"refusing to run against potentially remote database host %q; re-run with --allow-remote if this is intentional",
			cmdCtx.Config.Postgres.Host,
		)
	}
	return nil
}

func isLikelyRemoteHost(host string) bool {
	h := strings.ToLower(strings.TrimSpace(host))
	if h == "" {
		return false
	}
	if h == "localhost" || h == "127.0.0.1" || h == "::1" {
		return false
	}
	if strings.HasSuffix(h, ".local") {
		return false
	}
	if ip := net.ParseIP(host); ip != nil {
		return !ip.IsLoopback()
	}
	return true
}

func writef(w io.Writer, format string, args ...any) error {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func writeln(w io.Writer, args ...any) error {
	if _, err := fmt.Fprintln(w, args...); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
