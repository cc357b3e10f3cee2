package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/safar/chat-storefront/internal/config"
	"github.com/safar/chat-storefront/internal/database"
	"github.com/safar/chat-storefront/internal/logger"
	"go.uber.org/zap"
)

func main() {
	var (
		migrationsPath string
		logLevel       string
		useAdmin       bool
	)
	flag.StringVar(&migrationsPath, "path", "", "Path to migrations directory (default: MIGRATIONS_PATH or ./migrations)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.BoolVar(&useAdmin, "admin", false, "Connect with ADMIN_DATABASE_URL")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: logLevel, Format: "console"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	if migrationsPath == "" {
		migrationsPath = cfg.MigrationsPath
	}

	url := cfg.Database.URL
	if useAdmin {
		if !cfg.Admin.Enabled() {
			log.Fatal("ADMIN_DATABASE_URL is not set")
		}
		url = cfg.Admin.DatabaseURL
	}

	db, err := database.NewConnection(url, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	m, err := database.NewMigrator(db, migrationsPath, log)
	if err != nil {
		db.Close()
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()

	if err := execute(m, args, log); err != nil {
		log.Error("Migration command failed", zap.String("command", args[0]), zap.Error(err))
		os.Exit(1)
	}
}

func execute(m *database.Migrator, args []string, log *zap.Logger) error {
	switch args[0] {
	case "up":
		return m.Up()

	case "down":
		return m.Down()

	case "step":
		if len(args) < 2 {
			return fmt.Errorf("step count required: migrate step <n>")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid step count %q", args[1])
		}
		return m.Steps(n)

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		if version == 0 {
			log.Info("No migrations applied")
			return nil
		}
		log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return nil

	case "force":
		if len(args) < 2 {
			return fmt.Errorf("version required: migrate force <version>")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[1])
		}
		return m.Force(version)
	}

	printUsage()
	return fmt.Errorf("unknown command %q", args[0])
}

func printUsage() {
	fmt.Println(`Storefront database migration tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                Apply all pending migrations
  down              Roll back all migrations
  step <n>          Apply n migrations (negative rolls back)
  version           Show current migration version
  force <version>   Force set migration version

Flags:
  -path string       Path to migrations directory
  -log-level string  Log level (default: info)
  -admin             Connect with ADMIN_DATABASE_URL

Environment Variables:
  DATABASE_URL, ADMIN_DATABASE_URL, MIGRATIONS_PATH`)
}
