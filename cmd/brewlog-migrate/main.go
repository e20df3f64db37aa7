// Package main is the entry point for the Brewlog database migration tool.
// It manages schema migrations for both the SQLite and PostgreSQL backends.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/tapline/brewlog/internal/config"
	"github.com/tapline/brewlog/internal/repository/postgres"
	"github.com/tapline/brewlog/internal/repository/sqlite"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// migrator is the per-backend surface this tool needs.
type migrator interface {
	Migrate(ctx context.Context) error
	Version(ctx context.Context) (int, error)
	Close() error
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version":
		fmt.Printf("Brewlog Migration Tool\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "up", "status":
		if err := runMigrateCommand(command, os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runMigrateCommand(command string, args []string) error {
	fs := flag.NewFlagSet(command, flag.ExitOnError)
	configPath := fs.String("config", "", "path to configuration file")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logger := zerolog.New(os.Stderr).Level(zerolog.InfoLevel).With().Timestamp().Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	db, err := openDB(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	switch command {
	case "up":
		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		version, err := db.Version(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Migrations applied, schema version %d\n", version)
		return nil

	case "status":
		version, err := db.Version(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Driver: %s\n", cfg.Database.Driver)
		fmt.Printf("Schema version: %d\n", version)
		return nil
	}

	return nil
}

func openDB(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (migrator, error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		return db, nil
	case "sqlite":
		db, err := sqlite.NewDB(ctx, sqlite.DefaultConfig(cfg.Database.Path), logger)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite database: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
}

func printUsage() {
	fmt.Println(`Brewlog Migration Tool

Usage:
  brewlog-migrate <command> [arguments]

Commands:
  up          Run all pending migrations
  status      Show current schema version
  version     Print version information
  help        Show this help message

Configuration:
  The database connection comes from the same configuration as the server:
  a config file (--config) or BREWLOG_* environment variables.

Examples:
  brewlog-migrate up
  brewlog-migrate up --config /etc/brewlog/config.yaml
  brewlog-migrate status`)
}
