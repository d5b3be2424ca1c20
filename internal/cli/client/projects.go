package client

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// ProjectsCmd creates the projects command.
func ProjectsCmd() *cobra.Command {
	var (
		limit  int
		cursor string
	)

	cmd := &cobra.Command{
		Use:     "projects",
		Short:   "List uploaded projects",
		Long:    "Lists uploaded projects, newest first. Use --cursor with the value printed at the end of a page to continue.",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			return runProjects(cmd.OutOrStdout(), api, limit, cursor, outputJSON)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of projects to return (max 100)")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from a previous page")

	return cmd
}

func runProjects(w io.Writer, api *APIClient, limit int, cursor string, outputJSON bool) error {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if cursor != "" {
		query.Set("cursor", cursor)
	}

	path := "/projects"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	resp, err := api.Get(path)
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}

	var page ProjectPage
	if err := resp.Decode(&page, "projects"); err != nil {
		return err
	}

	if outputJSON {
		return printJSON(w, page)
	}

	if len(page.Items) == 0 {
		fmt.Fprintln(w, "No projects found.")
		return nil
	}

	fmt.Fprintf(w, "Found %d projects:\n\n", len(page.Items))
	for i, p := range page.Items {
		fmt.Fprintf(w, "%d. %s [%s]\n", i+1, p.Name, p.Status)
		fmt.Fprintf(w, "   Source: %s, Chunks: %d, Reviews: %d\n", p.SourceName, p.ChunkCount, p.ReviewCount)
		fmt.Fprintf(w, "   Created: %s\n", p.CreatedAt)
		fmt.Fprintf(w, "   ID: %s\n", p.ID)
	}

	if page.HasMore && page.Cursor != "" {
		fmt.Fprintf(w, "\n%s\n", strings.Repeat("-", 40))
		fmt.Fprintf(w, "More results available. Use --cursor %s\n", page.Cursor)
	}
	return nil
}

// ProjectCmd creates the project command.
func ProjectCmd() *cobra.Command {
	var download string

	cmd := &cobra.Command{
		Use:   "project <project_id>",
		Short: "Show a project and its reviews",
		Long:  "Shows a project with its reviews, most recent first. --download saves the archived source.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			if download != "" {
				return runDownloadSource(cmd.OutOrStdout(), api, args[0], download)
			}
			return runProject(cmd.OutOrStdout(), api, args[0], outputJSON)
		},
	}

	cmd.Flags().StringVar(&download, "download", "", "Save the archived source to this path")

	return cmd
}

func runProject(w io.Writer, api *APIClient, projectID string, outputJSON bool) error {
	resp, err := api.Get("/projects/" + url.PathEscape(projectID))
	if err != nil {
		return fmt.Errorf("failed to get project: %w", err)
	}

	var project Project
	if err := resp.Decode(&project, "project"); err != nil {
		return err
	}

	if outputJSON {
		return printJSON(w, project)
	}

	fmt.Fprintf(w, "Name: %s\n", project.Name)
	fmt.Fprintf(w, "ID: %s\n", project.ID)
	fmt.Fprintf(w, "Source: %s\n", project.SourceName)
	fmt.Fprintf(w, "Status: %s\n", project.Status)
	fmt.Fprintf(w, "Chunks: %d\n", project.ChunkCount)
	fmt.Fprintf(w, "Created: %s\n", project.CreatedAt)

	if len(project.Reviews) == 0 {
		fmt.Fprintln(w, "\nNo reviews yet.")
		return nil
	}

	fmt.Fprintf(w, "\nReviews (%d):\n", len(project.Reviews))
	for _, r := range project.Reviews {
		fmt.Fprintf(w, "\n%s  %s  %q\n", r.CreatedAt, r.ID, r.Query)
		printFindings(w, r.Findings)
	}
	return nil
}

type sourceURLResponse struct {
	URL string `json:"url"`
}

func runDownloadSource(w io.Writer, api *APIClient, projectID, outputPath string) error {
	resp, err := api.Get("/projects/" + url.PathEscape(projectID) + "/source")
	if err != nil {
		return fmt.Errorf("failed to get source URL: %w", err)
	}

	var source sourceURLResponse
	if err := resp.Decode(&source, "source URL"); err != nil {
		return err
	}

	if err := api.DownloadFile(source.URL, outputPath, nil); err != nil {
		return err
	}

	fmt.Fprintf(w, "Saved source to %s\n", outputPath)
	return nil
}
