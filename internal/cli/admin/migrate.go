package admin

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"github.com/cloo-solutions/reposcope/internal/config"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
)

const defaultMigrationsDir = "migrations"

// MigrateCmd returns the migrate command
func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate [up|down|version]",
		Short: "Manage database migrations",
		Long:  "Apply all pending migrations (default), roll back with down, or print the current version",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMigrate,
	}

	cmd.Flags().String("migrations", defaultMigrationsDir, "Directory holding the SQL migrations")
	cmd.Flags().Int("steps", 1, "Number of migrations to roll back with down")

	return cmd
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	migrationsDir, _ := cmd.Flags().GetString("migrations")

	action := "up"
	if len(args) == 1 {
		action = args[0]
	}

	switch action {
	case "up":
		return runMigrations(cfg.DatabaseURL, migrationsDir)
	case "down":
		steps, _ := cmd.Flags().GetInt("steps")
		return withMigrator(cfg.DatabaseURL, migrationsDir, func(m *migrate.Migrate) error {
			if steps <= 0 {
				return fmt.Errorf("steps must be positive")
			}
			if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return fmt.Errorf("failed to roll back migrations: %w", err)
			}
			return reportVersion(cmd, m)
		})
	case "version":
		return withMigrator(cfg.DatabaseURL, migrationsDir, func(m *migrate.Migrate) error {
			return reportVersion(cmd, m)
		})
	}

	return fmt.Errorf("unknown migrate action %q (expected up, down or version)", action)
}

// migrationsSourceURL turns a directory into a file:// source URL.
func migrationsSourceURL(dir string) (string, error) {
	if dir == "" {
		dir = defaultMigrationsDir
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve migrations dir: %w", err)
	}
	return "file://" + filepath.ToSlash(abs), nil
}

func withMigrator(databaseURL, migrationsDir string, fn func(m *migrate.Migrate) error) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	sourceURL, err := migrationsSourceURL(migrationsDir)
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance(sourceURL, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return fn(m)
}

func runMigrations(databaseURL, migrationsDir string) error {
	return withMigrator(databaseURL, migrationsDir, func(m *migrate.Migrate) error {
		upErr := m.Up()
		if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
			return fmt.Errorf("failed to apply migrations: %w", upErr)
		}

		version, dirty, err := m.Version()
		switch {
		case errors.Is(err, migrate.ErrNilVersion):
			log.Println("migrations: database is up to date (no migrations applied)")
		case err != nil:
			return fmt.Errorf("failed to get migration version: %w", err)
		case dirty:
			return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
		case errors.Is(upErr, migrate.ErrNoChange):
			log.Printf("migrations: database is up to date (version %d)", version)
		default:
			log.Printf("migrations: applied successfully (version %d)", version)
		}
		return nil
	})
}

func reportVersion(cmd *cobra.Command, m *migrate.Migrate) error {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Fprintln(cmd.OutOrStdout(), "no migrations applied")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
	return nil
}
