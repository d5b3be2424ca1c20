package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

func listProjectsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_projects",
		Description: "List uploaded projects, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of projects to return (1-100)",
					"default":     20,
					"minimum":     1,
					"maximum":     100,
				},
				"cursor": map[string]interface{}{
					"type":        "string",
					"description": "Cursor returned by a previous call",
				},
			},
		},
	}
}

func getProjectTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_project",
		Description: "Get a project summary together with its reviews, most recent first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"project_id": map[string]interface{}{
					"type":        "string",
					"description": "Project id returned by upload_text or list_projects",
				},
			},
			Required: []string{"project_id"},
		},
	}
}

func generateReviewTool() mcp.Tool {
	return mcp.Tool{
		Name:        "generate_review",
		Description: "Review the chunks of a project most relevant to a query and record the result",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"project_id": map[string]interface{}{
					"type":        "string",
					"description": "Project to review",
				},
				"query": map[string]interface{}{
					"type":        "string",
					"description": "What to look for, e.g. 'security issues in the api layer'",
				},
			},
			Required: []string{"project_id"},
		},
	}
}

func uploadTextTool() mcp.Tool {
	return mcp.Tool{
		Name:        "upload_text",
		Description: "Upload source text as a new project and index it",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"content": map[string]interface{}{
					"type":        "string",
					"description": "Source text to ingest",
				},
				"filename": map[string]interface{}{
					"type":        "string",
					"description": "File name used for language detection",
					"default":     "upload.txt",
				},
				"project_name": map[string]interface{}{
					"type":        "string",
					"description": "Project name, derived from filename when empty",
				},
			},
			Required: []string{"content"},
		},
	}
}
