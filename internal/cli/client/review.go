package client

import (
	"fmt"
	"io"
	"strings"

	"github.com/cloo-solutions/reposcope/internal/domain"
	"github.com/spf13/cobra"
)

// ReviewCmd creates the review command.
func ReviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review <project_id> [query...]",
		Short: "Run a review against an uploaded project",
		Long:  "Runs a retrieval-backed review. Without a query the server runs a general health review.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			return runReview(cmd.OutOrStdout(), api, args[0], strings.Join(args[1:], " "), outputJSON)
		},
	}

	return cmd
}

type reviewRequest struct {
	ProjectID string `json:"projectId"`
	Query     string `json:"query"`
}

func runReview(w io.Writer, api *APIClient, projectID, query string, outputJSON bool) error {
	resp, err := api.Post("/review", reviewRequest{ProjectID: projectID, Query: query})
	if err != nil {
		return fmt.Errorf("failed to run review: %w", err)
	}

	var review Review
	if err := resp.Decode(&review, "review"); err != nil {
		return err
	}

	if outputJSON {
		return printJSON(w, review)
	}

	fmt.Fprintf(w, "Review %s for project %s\n", review.ID, review.ProjectID)
	fmt.Fprintf(w, "Query: %s\n", review.Query)
	fmt.Fprintf(w, "Findings: %d%s\n", len(review.Findings), severitySummary(review.Findings))
	printFindings(w, review.Findings)
	return nil
}

// summaryOrder lists severities from most to least urgent.
var summaryOrder = []domain.Severity{
	domain.SeverityCritical,
	domain.SeverityHigh,
	domain.SeverityError,
	domain.SeverityMedium,
	domain.SeverityWarning,
	domain.SeverityLow,
	domain.SeverityInfo,
	domain.SeverityOther,
}

// severitySummary renders " (high: 1, info: 2)" for the non-empty groups.
func severitySummary(findings []Finding) string {
	if len(findings) == 0 {
		return ""
	}
	parsed := make([]domain.ReviewFinding, len(findings))
	for i, f := range findings {
		parsed[i] = domain.ReviewFinding{Severity: domain.ParseSeverity(f.Severity)}
	}
	counts := domain.CountBySeverity(parsed)

	parts := make([]string, 0, len(counts))
	for _, sev := range summaryOrder {
		if n := counts[sev]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", sev, n))
		}
	}
	return " (" + strings.Join(parts, ", ") + ")"
}
