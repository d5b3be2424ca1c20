package client

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// ConfigCmd creates the config command group.
func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the CLI configuration",
		Long:  "Show, set or reset the API URL stored in the global config file.",
	}

	cmd.AddCommand(ConfigSetURLCmd())
	cmd.AddCommand(ConfigShowCmd())
	cmd.AddCommand(ConfigResetCmd())

	return cmd
}

func ConfigSetURLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-url <api_url>",
		Short: "Store the API URL in the global config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSetURL(cmd.OutOrStdout(), args[0])
		},
	}
}

func ConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective API URL and where it comes from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			flagURL, _ := cmd.Flags().GetString("api-url")
			return runConfigShow(cmd.OutOrStdout(), flagURL, outputJSON)
		},
	}
}

func ConfigResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete the global config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigReset(cmd.OutOrStdout())
		},
	}
}

func runConfigSetURL(w io.Writer, apiURL string) error {
	if !IsValidAPIURL(apiURL) {
		return fmt.Errorf("invalid API URL %q (expected http:// or https://)", apiURL)
	}

	if err := SaveGlobalConfig(&GlobalConfig{APIURL: apiURL}); err != nil {
		return err
	}

	configPath, _ := GetConfigPath()
	fmt.Fprintf(w, "API URL saved to %s\n", configPath)
	return nil
}

func runConfigShow(w io.Writer, flagURL string, outputJSON bool) error {
	source, apiURL, err := ResolveAPIURL(flagURL)
	if err != nil {
		return err
	}

	if outputJSON {
		return printJSON(w, map[string]string{
			"source":  string(source),
			"api_url": apiURL,
		})
	}

	fmt.Fprintf(w, "Source: %s\n", source)
	fmt.Fprintf(w, "API URL: %s\n", apiURL)
	return nil
}

func runConfigReset(w io.Writer) error {
	if err := DeleteGlobalConfig(); err != nil {
		return err
	}
	fmt.Fprintln(w, "Global config removed")
	return nil
}
