package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/reposcope/internal/cli"
	"github.com/cloo-solutions/reposcope/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "reposcope",
		Short: "Reposcope CLI - upload code and run reviews",
		Long: `Reposcope CLI uploads source files and runs retrieval-backed code reviews.

Environment variables:
  REPOSCOPE_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.UploadCmd())
	rootCmd.AddCommand(client.ReviewCmd())
	rootCmd.AddCommand(client.ProjectsCmd())
	rootCmd.AddCommand(client.ProjectCmd())
	rootCmd.AddCommand(client.ConfigCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
