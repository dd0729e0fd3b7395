// Command migrate manages the sales schema. Migrations are compiled into the
// binary; -path reads them from a directory instead, which is also where
// create writes new ones.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/fieldsales/backend/internal/infrastructure/config"
	"github.com/fieldsales/backend/internal/infrastructure/logger"
	"github.com/fieldsales/backend/internal/infrastructure/migration"
	"github.com/fieldsales/backend/migrations"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultDir = "migrations"

var errUsage = errors.New("usage")

// dbCommand runs against an open Migrator
type dbCommand struct {
	args string
	help string
	run  func(m *migration.Migrator, args []string, log *zap.Logger) error
}

var dbCommands = map[string]dbCommand{
	"up": {help: "Apply all pending migrations", run: func(m *migration.Migrator, _ []string, _ *zap.Logger) error {
		return m.Up()
	}},
	"down": {help: "Roll back all migrations", run: func(m *migration.Migrator, _ []string, _ *zap.Logger) error {
		return m.Down()
	}},
	"step": {args: "<n>", help: "Apply n migrations, rolling back when n is negative", run: func(m *migration.Migrator, args []string, _ *zap.Logger) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid step count %q", args[0])
		}
		return m.Steps(n)
	}},
	"goto": {args: "<version>", help: "Migrate up or down to version", run: func(m *migration.Migrator, args []string, _ *zap.Logger) error {
		v, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		return m.GoTo(uint(v))
	}},
	"force": {args: "<version>", help: "Mark version applied and clean after a failed migration was repaired", run: func(m *migration.Migrator, args []string, _ *zap.Logger) error {
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		return m.Force(v)
	}},
	"drop": {args: "-confirm", help: "Drop every table, sales facts included", run: func(m *migration.Migrator, args []string, _ *zap.Logger) error {
		if !slices.Contains(args, "-confirm") && !slices.Contains(args, "--confirm") {
			return errors.New("drop needs -confirm")
		}
		return m.Drop()
	}},
	"version": {help: "Show the applied version", run: func(m *migration.Migrator, _ []string, log *zap.Logger) error {
		v, dirty, err := m.Version()
		if err != nil {
			return err
		}
		log.Info("Schema version", zap.Uint("version", v), zap.Bool("dirty", dirty))
		return nil
	}},
	"status": {help: "Compare the applied version with the newest migration", run: status},
}

// status also checks the unique indexes ingestion relies on once the
// schema is current
func status(m *migration.Migrator, _ []string, log *zap.Logger) error {
	s, err := m.Status()
	if err != nil {
		return err
	}
	log.Info("Schema status",
		zap.Uint("current", s.Current),
		zap.Uint("latest", s.Latest),
		zap.Bool("dirty", s.Dirty),
		zap.Bool("pending", s.Pending()),
	)
	if s.Dirty {
		return fmt.Errorf("version %d is dirty; repair it and run force", s.Current)
	}
	if s.Pending() {
		return nil
	}
	return m.VerifySchema(context.Background())
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, "migrate:", err)
		}
		os.Exit(1)
	}
}

func run(argv []string) error {
	flags := flag.NewFlagSet("migrate", flag.ContinueOnError)
	dir := flags.String("path", "", "read migrations from this directory instead of the embedded set")
	logLevel := flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.Usage = func() { usage(flags) }
	if err := flags.Parse(argv); err != nil {
		return errUsage
	}
	args := flags.Args()
	if len(args) == 0 {
		usage(flags)
		return errUsage
	}

	log, err := logger.New(logger.Config{Level: *logLevel, Format: "console", Service: "fieldsales-migrate"})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	log = log.Named(logger.ComponentMigrate)

	name, rest := args[0], args[1:]
	switch name {
	case "create":
		return create(*dir, rest, log)
	case "list":
		return list(*dir, log)
	}

	cmd, ok := dbCommands[name]
	if !ok {
		usage(flags)
		return fmt.Errorf("unknown command %q", name)
	}
	if cmd.args != "" && len(rest) == 0 {
		return fmt.Errorf("%s needs %s", name, cmd.args)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to reach database: %w", err)
	}

	m, err := migration.Open(db, migrations.FS, *dir, log)
	if err != nil {
		_ = db.Close()
		return err
	}
	defer m.Close()

	log.Info("Running migration command",
		zap.String("command", name),
		zap.String("source", source(*dir)),
	)
	return cmd.run(m, rest, log)
}

func source(dir string) string {
	if dir == "" {
		return "embedded"
	}
	return dir
}

func create(dir string, args []string, log *zap.Logger) error {
	if len(args) == 0 {
		return errors.New("create needs <name> [description]")
	}
	if dir == "" {
		dir = defaultDir
	}
	description := ""
	if len(args) > 1 {
		description = args[1]
	}
	mf, err := migration.CreateMigration(dir, args[0], description)
	if err != nil {
		return err
	}
	log.Info("Migration created",
		zap.String("version", mf.Version),
		zap.String("up_file", mf.UpPath),
		zap.String("down_file", mf.DownPath),
	)
	return nil
}

func list(dir string, log *zap.Logger) error {
	var files fs.FS = migrations.FS
	if dir != "" {
		files = os.DirFS(dir)
	}
	names, err := migration.ListMigrationsFS(files)
	if err != nil {
		return err
	}
	log.Info("Available migrations", zap.Int("count", len(names)), zap.String("source", source(dir)))
	for _, n := range names {
		fmt.Println("  -", n)
	}
	return nil
}

func usage(flags *flag.FlagSet) {
	out := flags.Output()
	fmt.Fprintln(out, "Usage: migrate [flags] <command> [arguments]")
	fmt.Fprintln(out, "\nCommands:")
	names := make([]string, 0, len(dbCommands))
	for name := range dbCommands {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		c := dbCommands[name]
		fmt.Fprintf(out, "  %-18s %s\n", name+" "+c.args, c.help)
	}
	fmt.Fprintf(out, "  %-18s %s\n", "create <name>", "Write a new up/down pair into -path (default ./migrations)")
	fmt.Fprintf(out, "  %-18s %s\n", "list", "List the available migrations")
	fmt.Fprintln(out, "\nFlags:")
	flags.PrintDefaults()
	fmt.Fprintln(out, "\nThe database is read from FSR_DATABASE_* variables or config.toml.")
}
