// Package main is the entry point for the Brewlog admin CLI.
// This tool provides administrative commands for managing users and sessions.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tapline/brewlog/internal/config"
	"github.com/tapline/brewlog/internal/repository"
	"github.com/tapline/brewlog/internal/repository/postgres"
	"github.com/tapline/brewlog/internal/repository/sqlite"
	"github.com/tapline/brewlog/internal/service"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version":
		fmt.Printf("Brewlog Admin CLI\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "user":
		if err := runUserCommand(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "session":
		if err := runSessionCommand(os.Args[2:]); err != nil {
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

func runUserCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("user command requires a subcommand: create, list, delete")
	}

	switch args[0] {
	case "create":
		fs := flag.NewFlagSet("user create", flag.ExitOnError)
		username := fs.String("username", "", "username for the new account")
		password := fs.String("password", "", "password for the new account")
		configPath := fs.String("config", "", "path to configuration file")
		fs.Parse(args[1:])

		if *username == "" || *password == "" {
			return fmt.Errorf("--username and --password are required")
		}

		return withServices(*configPath, func(ctx context.Context, users *service.UserService, _ *service.SessionService) error {
			user, err := users.Register(ctx, service.RegisterInput{
				Username: *username,
				Password: *password,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Created user %q (id %d)\n", user.Username, user.ID)
			return nil
		})

	case "list":
		fs := flag.NewFlagSet("user list", flag.ExitOnError)
		limit := fs.Int("limit", 20, "maximum number of users to list")
		offset := fs.Int("offset", 0, "number of users to skip")
		configPath := fs.String("config", "", "path to configuration file")
		fs.Parse(args[1:])

		return withServices(*configPath, func(ctx context.Context, users *service.UserService, _ *service.SessionService) error {
			out, err := users.List(ctx, service.ListUsersInput{Limit: *limit, Offset: *offset})
			if err != nil {
				return err
			}
			fmt.Printf("%-8s %-32s %s\n", "ID", "USERNAME", "CREATED")
			for _, u := range out.Users {
				fmt.Printf("%-8d %-32s %s\n", u.ID, u.Username, u.CreatedAt.Format(time.RFC3339))
			}
			fmt.Printf("\n%d of %d users\n", len(out.Users), out.TotalCount)
			return nil
		})

	case "delete":
		fs := flag.NewFlagSet("user delete", flag.ExitOnError)
		id := fs.Int64("id", 0, "ID of the user to delete")
		configPath := fs.String("config", "", "path to configuration file")
		fs.Parse(args[1:])

		if *id == 0 {
			return fmt.Errorf("--id is required")
		}

		return withServices(*configPath, func(ctx context.Context, users *service.UserService, _ *service.SessionService) error {
			if err := users.Delete(ctx, *id); err != nil {
				return err
			}
			fmt.Printf("Deleted user %d\n", *id)
			return nil
		})

	default:
		return fmt.Errorf("unknown user subcommand: %s", args[0])
	}
}

func runSessionCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("session command requires a subcommand: purge")
	}

	switch args[0] {
	case "purge":
		fs := flag.NewFlagSet("session purge", flag.ExitOnError)
		configPath := fs.String("config", "", "path to configuration file")
		fs.Parse(args[1:])

		return withServices(*configPath, func(ctx context.Context, _ *service.UserService, sessions *service.SessionService) error {
			deleted, err := sessions.DeleteExpired(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Purged %d expired sessions\n", deleted)
			return nil
		})

	default:
		return fmt.Errorf("unknown session subcommand: %s", args[0])
	}
}

// withServices opens the configured database, builds the services and runs fn.
func withServices(configPath string, fn func(ctx context.Context, users *service.UserService, sessions *service.SessionService) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// CLI output goes to stdout; keep service logs out of the way.
	logger := zerolog.New(os.Stderr).Level(zerolog.WarnLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var repos *repository.Repositories
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return fmt.Errorf("connecting to postgres: %w", err)
		}
		defer db.Close()
		repos = postgres.NewRepositories(db)
	case "sqlite":
		db, err := sqlite.NewDB(ctx, sqlite.DefaultConfig(cfg.Database.Path), logger)
		if err != nil {
			return fmt.Errorf("opening sqlite database: %w", err)
		}
		defer db.Close()
		repos = sqlite.NewRepositories(db)
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}

	users := service.NewUserService(repos.User, logger)
	sessions := service.NewSessionService(repos.Session, noopCache{}, cfg.Session.TTL, logger)

	return fn(ctx, users, sessions)
}

// noopCache satisfies the cache dependency for one-shot CLI invocations.
type noopCache struct{}

func (noopCache) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, repository.ErrCacheMiss
}
func (noopCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}
func (noopCache) Delete(ctx context.Context, key string) error { return nil }
func (noopCache) Exists(ctx context.Context, key string) (bool, error) {
	return false, nil
}

func printUsage() {
	fmt.Println(strings.TrimSpace(`
Brewlog Admin CLI

Usage:
  brewlog-admin <command> [arguments]

Commands:
  user        Manage users (create, list, delete)
  session     Manage sessions (purge expired)
  version     Print version information
  help        Show this help message

Examples:
  brewlog-admin user create --username alice --password secret
  brewlog-admin user list --limit 50
  brewlog-admin user delete --id 3
  brewlog-admin session purge

Use "brewlog-admin <command> <subcommand> --help" for flag details.
`))
}
