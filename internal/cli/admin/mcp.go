package admin

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/cloo-solutions/reposcope/internal/config"
	"github.com/cloo-solutions/reposcope/internal/mcp"
	"github.com/spf13/cobra"
)

// MCPCmd returns the mcp command
func MCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server on stdio",
		Long:  "Expose list_projects, get_project, generate_review and upload_text as MCP tools over stdio",
		RunE:  runMCP,
	}

	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")
	cmd.Flags().String("migrations", defaultMigrationsDir, "Directory holding the SQL migrations")

	return cmd
}

func runMCP(cmd *cobra.Command, args []string) error {
	// stdout carries the protocol
	log.SetOutput(os.Stderr)

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	shutdownTelemetry := initTelemetry(cfg)
	defer shutdownTelemetry()

	pool, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		migrationsDir, _ := cmd.Flags().GetString("migrations")
		if err := runMigrations(cfg.DatabaseURL, migrationsDir); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	a, err := newApp(ctx, cfg, pool)
	if err != nil {
		return err
	}

	return mcp.NewServer(a.projects, a.reviews, a.ingest).Serve()
}
