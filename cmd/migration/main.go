package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/clubsync/internal/config"
	"github.com/riskibarqy/clubsync/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/clubsync/internal/platform/logging"
)

var errUsage = errors.New("usage")

// defaultMigrationDirs are tried when MIGRATIONS_DIR is unset: the repo
// layout first, then the container image layout.
var defaultMigrationDirs = []string{"./db/migrations", "/app/db/migrations"}

type env struct {
	logger *logging.Logger
	m      *migrate.Migrate
	dsn    string
	out    io.Writer
	source string
}

type command struct {
	args string
	run  func(e env, args []string) error
}

var commands = map[string]command{
	"up":      {run: cmdUp},
	"down":    {args: "[steps]", run: cmdDown},
	"version": {run: cmdVersion},
	"force":   {args: "<version>", run: cmdForce},
	"goto":    {args: "<version>", run: cmdGoto},
	"seed":    {run: cmdSeed},
}

func main() {
	logger := logging.NewConsole(logging.LevelInfo)
	defer func() { _ = logger.Sync() }()

	name := ""
	if len(os.Args) > 1 {
		name = os.Args[1]
	}
	err := run(logger, name, os.Args[min(2, len(os.Args)):])
	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		printUsage(os.Stderr, filepath.Base(os.Args[0]))
		os.Exit(2)
	default:
		logger.Error("migration command failed", "command", name, "error", err)
		os.Exit(1)
	}
}

func run(logger *logging.Logger, name string, args []string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "migrate" {
		name = "goto"
	}
	cmd, ok := commands[name]
	if !ok {
		return errUsage
	}

	dbCfg, err := config.LoadDatabase()
	if err != nil {
		return err
	}
	dir, err := findMigrationsDir(dbCfg.MigrationsDir)
	if err != nil {
		return err
	}

	source := "file://" + filepath.ToSlash(dir)
	m, err := migrate.New(source, dbCfg.DSN())
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if err := errors.Join(srcErr, dbErr); err != nil {
			logger.Warn("close migrator", "error", err)
		}
	}()

	return cmd.run(env{logger: logger, m: m, dsn: dbCfg.DSN(), out: os.Stdout, source: source}, args)
}

func cmdUp(e env, _ []string) error {
	if err := applied(e.logger, e.m.Up()); err != nil {
		return err
	}
	e.logger.Info("migrations applied", "source", e.source)
	return nil
}

func cmdDown(e env, args []string) error {
	steps := 1
	if len(args) > 0 {
		n, err := parseCount(args[0])
		if err != nil {
			return fmt.Errorf("down steps: %w", err)
		}
		steps = n
	}
	if err := applied(e.logger, e.m.Steps(-steps)); err != nil {
		return err
	}
	e.logger.Info("migrations rolled back", "steps", steps)
	return nil
}

func cmdVersion(e env, _ []string) error {
	version, dirty, err := e.m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		_, err = fmt.Fprintln(e.out, "version: none\ndirty: false")
		return err
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	}
	_, err = fmt.Fprintf(e.out, "version: %d\ndirty: %t\n", version, dirty)
	return err
}

func cmdForce(e env, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("force requires a version argument")
	}
	version, err := parseVersion(args[0])
	if err != nil {
		return err
	}
	if err := e.m.Force(int(version)); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	e.logger.Info("forced migration version", "version", version)
	return nil
}

func cmdGoto(e env, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("goto requires a target version argument")
	}
	version, err := parseVersion(args[0])
	if err != nil {
		return err
	}
	if err := applied(e.logger, e.m.Migrate(version)); err != nil {
		return err
	}
	e.logger.Info("migrated", "version", version)
	return nil
}

// cmdSeed brings the schema up and inserts the demo teams when the teams
// table is empty.
func cmdSeed(e env, args []string) error {
	if err := cmdUp(e, args); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, "postgres", e.dsn)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	if err := postgres.BootstrapSeed(ctx, db); err != nil {
		return err
	}
	e.logger.Info("demo teams seeded")
	return nil
}

func applied(logger *logging.Logger, err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migration changes")
		return nil
	}
	return err
}

func parseCount(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", raw, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be > 0, got %d", n)
	}
	return n, nil
}

// parseVersion accepts migration versions that fit both the uint used by
// Migrate and the int used by Force.
func parseVersion(raw string) (uint, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(raw), 10, strconv.IntSize-1)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", raw, err)
	}
	return uint(v), nil
}

func findMigrationsDir(explicit string) (string, error) {
	candidates := defaultMigrationDirs
	if explicit != "" {
		candidates = []string{explicit}
	}
	for _, candidate := range candidates {
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			return abs, nil
		}
	}
	return "", fmt.Errorf("migration directory not found, checked %s", strings.Join(candidates, ", "))
}

func printUsage(w io.Writer, prog string) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(w, "usage: %s <%s> [args]\n", prog, strings.Join(names, "|"))
	for _, name := range names {
		fmt.Fprintf(w, "  %s %s %s\n", prog, name, commands[name].args)
	}
}
