// Package main is the entry point for the Bronte schema migration tool.
// It applies the embedded migrations for the configured database driver.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/bronte-blog/internal/config"
	"github.com/prn-tf/bronte-blog/internal/repository/postgres"
	"github.com/prn-tf/bronte-blog/internal/repository/sqlite"
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

	fs := flag.NewFlagSet(command, flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	_ = fs.Parse(os.Args[2:])

	switch command {
	case "version":
		fmt.Printf("Bronte Migration Tool\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "up":
		if err := runUp(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("migrations applied")

	case "status":
		if err := runStatus(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "status failed: %v\n", err)
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

// runUp applies all pending migrations for the configured driver.
func runUp(configPath string) error {
	cfg, logger, err := load(configPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		return db.Migrate(ctx)

	default:
		db, err := sqlite.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		return db.Migrate(ctx)
	}
}

// runStatus prints the recorded schema version.
func runStatus(configPath string) error {
	cfg, logger, err := load(configPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var version int
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		err = db.Pool.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version)
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}

	default:
		db, err := sqlite.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		row := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`)
		if err := row.Scan(&version); err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}
	}

	fmt.Printf("driver: %s\nschema version: %d\n", cfg.Database.Driver, version)
	return nil
}

func load(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, err
	}
	logger := zerolog.New(os.Stderr).Level(zerolog.WarnLevel).With().Timestamp().Logger()
	return cfg, logger, nil
}

func printUsage() {
	fmt.Println(`Bronte Migration Tool

Usage:
  bronte-migrate <command> [arguments]

Commands:
  up          Apply all pending migrations
  status      Show the recorded schema version
  version     Print version information
  help        Show this help message

Flags:
  -config     Path to the config file (defaults to config.yaml lookup)

Environment Variables:
  BRONTE_DATABASE_DRIVER    "postgres" or "sqlite"
  BRONTE_DATABASE_PATH      SQLite database file path
  BRONTE_DATABASE_HOST      PostgreSQL host

Examples:
  bronte-migrate up
  bronte-migrate up -config /etc/bronte/config.yaml
  bronte-migrate status`)
}
