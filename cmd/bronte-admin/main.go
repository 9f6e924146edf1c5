// Package main is the entry point for the Bronte admin CLI.
// It provides operational commands for managing accounts: listing users and
// granting or revoking the administrator role.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/bronte-blog/internal/config"
	"github.com/prn-tf/bronte-blog/internal/domain"
	"github.com/prn-tf/bronte-blog/internal/repository"
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

	switch command {
	case "version":
		fmt.Printf("Bronte Admin CLI\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "user":
		if err := runUser(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
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

// runUser dispatches the user subcommands.
func runUser(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("user subcommand required: list, promote or demote")
	}

	sub := args[0]
	fs := flag.NewFlagSet("user "+sub, flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	email := fs.String("email", "", "account email address")
	_ = fs.Parse(args[1:])

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users, cleanup, err := openUserRepository(ctx, *configPath)
	if err != nil {
		return err
	}
	defer cleanup()

	switch sub {
	case "list":
		return listUsers(ctx, users)
	case "promote":
		return setRole(ctx, users, *email, domain.RoleAdministrator)
	case "demote":
		return setRole(ctx, users, *email, domain.RoleStandard)
	default:
		return fmt.Errorf("unknown user subcommand: %s", sub)
	}
}

// listUsers prints every account in a table.
func listUsers(ctx context.Context, users repository.UserRepository) error {
	result, err := users.List(ctx, repository.ListOptions{Limit: 1000})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tNAME\tROLE\tFEDERATED\tCREATED")
	for _, u := range result.Items {
		role := "standard"
		if u.IsAdmin() {
			role = "admin"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%t\t%s\n",
			u.ID, u.Username, u.Email, u.Name, role, u.Federated, u.CreatedAt.Format(time.RFC3339))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d user(s)\n", result.Total)
	return nil
}

// setRole updates the role of the account with the given email.
func setRole(ctx context.Context, users repository.UserRepository, email string, role domain.Role) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fmt.Errorf("-email is required")
	}

	user, err := users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	if user.Role == role {
		fmt.Printf("%s already has that role\n", user.Email)
		return nil
	}

	user.Role = role
	if err := users.Update(ctx, user); err != nil {
		return err
	}

	fmt.Printf("updated %s (role=%d)\n", user.Email, role)
	return nil
}

// openUserRepository connects the configured database and returns the user
// repository for its driver.
func openUserRepository(ctx context.Context, configPath string) (repository.UserRepository, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	logger := zerolog.New(os.Stderr).Level(zerolog.WarnLevel).With().Timestamp().Logger()

	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewUserRepository(db), func() { db.Close() }, nil

	default:
		db, err := sqlite.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, err
		}
		return sqlite.NewUserRepository(db), func() { db.Close() }, nil
	}
}

func printUsage() {
	fmt.Println(`Bronte Admin CLI

Usage:
  bronte-admin <command> [arguments]

Commands:
  user list                      List all accounts
  user promote -email <email>    Grant the administrator role
  user demote -email <email>     Revoke the administrator role
  version                        Print version information
  help                           Show this help message

Flags:
  -config     Path to the config file (defaults to config.yaml lookup)

Examples:
  bronte-admin user list
  bronte-admin user promote -email editor@example.com
  bronte-admin user demote -email editor@example.com -config /etc/bronte/config.yaml`)
}
