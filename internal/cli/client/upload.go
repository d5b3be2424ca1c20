package client

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// UploadCmd creates the upload command.
func UploadCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a source file as a new project",
		Long:  "Uploads one source file. The file is chunked, embedded and indexed; the new project id is printed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			return runUpload(cmd.OutOrStdout(), api, args[0], name, outputJSON)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Project name (defaults to the file name without extension)")

	return cmd
}

func runUpload(w io.Writer, api *APIClient, path, name string, outputJSON bool) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	resp, err := api.UploadMultipart("/upload", filepath.Base(path), file, map[string]string{
		"projectName": name,
	})
	if err != nil {
		return fmt.Errorf("failed to upload: %w", err)
	}

	var result UploadResult
	if err := resp.Decode(&result, "upload result"); err != nil {
		return err
	}

	if outputJSON {
		return printJSON(w, result)
	}

	fmt.Fprintf(w, "Uploaded %s\n", filepath.Base(path))
	fmt.Fprintf(w, "Project ID: %s\n", result.ProjectID)
	fmt.Fprintf(w, "Chunks: %d\n", result.ChunkCount)
	return nil
}
