package client

import (
	"encoding/json"
	"fmt"
	"io"
)

// ProjectSummary is one entry of the project listing.
type ProjectSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	SourceName  string `json:"sourceName"`
	CreatedAt   string `json:"createdAt"`
	ChunkCount  int    `json:"chunkCount"`
	Status      string `json:"status"`
	ReviewCount int    `json:"reviewCount"`
}

// ProjectPage is a page of project summaries.
type ProjectPage struct {
	Items   []ProjectSummary `json:"items"`
	Cursor  string           `json:"cursor,omitempty"`
	HasMore bool             `json:"has_more"`
}

// Finding is one issue reported by a review.
type Finding struct {
	Severity   string `json:"severity"`
	File       string `json:"file"`
	Line       int    `json:"line"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Review is one review result.
type Review struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	CreatedAt string    `json:"createdAt"`
	Query     string    `json:"query"`
	Findings  []Finding `json:"findings"`
}

// Project is the full project document without chunk bodies.
type Project struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	SourceName string    `json:"sourceName"`
	SourceKey  string    `json:"sourceKey,omitempty"`
	CreatedAt  string    `json:"createdAt"`
	ChunkCount int       `json:"chunkCount"`
	Status     string    `json:"status"`
	Reviews    []*Review `json:"reviews"`
}

// UploadResult is returned by the upload endpoint.
type UploadResult struct {
	ProjectID  string `json:"projectId"`
	ChunkCount int    `json:"chunkCount"`
}

func printJSON(w io.Writer, v interface{}) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	fmt.Fprintln(w, string(output))
	return nil
}

func printFindings(w io.Writer, findings []Finding) {
	for _, f := range findings {
		fmt.Fprintf(w, "  [%s] %s:%d %s\n", f.Severity, f.File, f.Line, f.Message)
		if f.Suggestion != "" {
			fmt.Fprintf(w, "      suggestion: %s\n", f.Suggestion)
		}
	}
}
