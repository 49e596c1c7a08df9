// Package cli implements the command-line subcommands.
package cli

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/openshelf/openshelf/internal/config"
	"github.com/openshelf/openshelf/internal/migrations"
)

// MigrateCommand applies, reverts, or inspects schema revisions without
// starting the server.
type MigrateCommand struct {
	DatabasePath string
	Direction    string
	Steps        int
	Verbose      bool
}

func NewMigrateCommand() *MigrateCommand {
	return &MigrateCommand{}
}

func (cmd *MigrateCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.StringVar(&cmd.Direction, "direction", "up", "Migration direction: up, down, steps, or version")
	fs.IntVar(&cmd.Steps, "steps", 0, "Number of revisions to apply (negative to revert); only used with -direction steps")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s migrate [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Manage the database schema without starting the server.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Apply all pending revisions:\n")
		fmt.Fprintf(os.Stderr, "  %s migrate -db ./openshelf.db\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Revert the most recent revision:\n")
		fmt.Fprintf(os.Stderr, "  %s migrate -direction steps -steps -1\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Show the current revision:\n")
		fmt.Fprintf(os.Stderr, "  %s migrate -direction version\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	switch cmd.Direction {
	case "up", "down", "version":
	case "steps":
		if cmd.Steps == 0 {
			return fmt.Errorf("-direction steps requires a non-zero -steps value")
		}
	default:
		return fmt.Errorf("unknown direction %q (expected up, down, steps, or version)", cmd.Direction)
	}

	return nil
}

func (cmd *MigrateCommand) Run() error {
	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}
	cmd.DatabasePath = absDBPath

	if cmd.Verbose {
		fmt.Printf("Database: %s\n", cmd.DatabasePath)
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", cmd.DatabasePath)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer sqlDB.Close()

	migrator, err := migrations.New(sqlDB)
	if err != nil {
		return err
	}

	switch cmd.Direction {
	case "up":
		if err := migrator.Up(); err != nil {
			return err
		}
		fmt.Println("Migrations applied")
	case "down":
		if err := migrator.Down(); err != nil {
			return err
		}
		fmt.Println("Migrations reverted")
	case "steps":
		if err := migrator.Steps(cmd.Steps); err != nil {
			return err
		}
		fmt.Printf("Stepped %+d revisions\n", cmd.Steps)
	case "version":
		version, dirty, applied, err := migrator.Version()
		if err != nil {
			return err
		}
		if !applied {
			fmt.Println("No revisions applied")
			return nil
		}
		fmt.Printf("Revision: %d (dirty: %v)\n", version, dirty)
	}

	return nil
}
