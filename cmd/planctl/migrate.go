package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/urfave/cli/v2"
)

func newMigrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply SQL migrations to the database",
		Flags: []cli.Flag{
			newDBURLFlag(),
			&cli.StringFlag{
				Name:    "migrations-dir",
				Usage:   "Directory containing numbered .sql migration files",
				Value:   "./scripts/migrations",
				EnvVars: []string{"MIGRATIONS_DIR"},
			},
		},
		Action: runMigrate,
	}
}

func runMigrate(c *cli.Context) error {
	dbURL := c.String("db-url")
	if dbURL == "" {
		return fmt.Errorf("db-url is required")
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(c.Context); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return runMigrations(c.Context, db, c.String("migrations-dir"))
}

// runMigrations applies every .sql file in the directory in filename
// order. Migrations are written to be re-runnable, so no applied-version
// table is kept.
func runMigrations(ctx context.Context, db *sql.DB, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	if len(files) == 0 {
		return fmt.Errorf("no .sql migrations found in %s", dir)
	}

	for _, name := range files {
		path := filepath.Join(dir, name)
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}

		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", name, err)
		}

		log.Printf("Applied migration %s", name)
	}

	log.Printf("Applied %d migration(s)", len(files))
	return nil
}
