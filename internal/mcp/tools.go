package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/cloo-solutions/reposcope/internal/domain"
	"github.com/cloo-solutions/reposcope/internal/service"
)

// MCP error codes
const (
	ErrorCodeInvalidParams   = -32602
	ErrorCodeInternalError   = -32603
	ErrorCodeProjectNotFound = -32001
	ErrorCodeUnavailable     = -32002
)

func (s *Server) handleListProjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}

	limit := getIntDefault(args, "limit", 0)
	if limit < 0 || limit > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	page, err := s.projects.ListProjects(ctx, service.ListProjectsInput{
		Cursor: getStringDefault(args, "cursor", ""),
		Limit:  limit,
	})
	if err != nil {
		return nil, toMCPError(err)
	}

	return mcp.NewToolResultText(formatJSON(page)), nil
}

func (s *Server) handleGetProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}

	projectID, err := requiredString(args, "project_id")
	if err != nil {
		return nil, err
	}

	project, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return nil, toMCPError(err)
	}

	response := map[string]interface{}{
		"project": project.Summary(),
		"reviews": project.Reviews,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

func (s *Server) handleGenerateReview(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}

	projectID, err := requiredString(args, "project_id")
	if err != nil {
		return nil, err
	}

	query := strings.TrimSpace(getStringDefault(args, "query", ""))
	if query == "" {
		query = service.HealthReviewQuery
	}

	review, err := s.reviews.GenerateReview(ctx, service.GenerateReviewInput{
		ProjectID: projectID,
		Query:     query,
	})
	if err != nil {
		return nil, toMCPError(err)
	}

	return mcp.NewToolResultText(formatJSON(review)), nil
}

func (s *Server) handleUploadText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}

	content, err := requiredString(args, "content")
	if err != nil {
		return nil, err
	}

	result, err := s.uploads.Upload(ctx, service.UploadInput{
		Filename:    getStringDefault(args, "filename", ""),
		ProjectName: getStringDefault(args, "project_name", ""),
		Content:     content,
	})
	if err != nil {
		return nil, toMCPError(err)
	}

	return mcp.NewToolResultText(formatJSON(result)), nil
}

func arguments(request mcp.CallToolRequest) (map[string]interface{}, error) {
	if request.Params.Arguments == nil {
		return map[string]interface{}{}, nil
	}
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	return args, nil
}

func requiredString(args map[string]interface{}, key string) (string, error) {
	val, ok := args[key].(string)
	if !ok || strings.TrimSpace(val) == "" {
		return "", newMCPError(ErrorCodeInvalidParams, key+" parameter is required", map[string]interface{}{
			"param":  key,
			"reason": "missing or empty",
		})
	}
	return strings.TrimSpace(val), nil
}

// toMCPError maps domain errors onto MCP error codes.
func toMCPError(err error) error {
	var domainErr *domain.DomainError
	if !errors.As(err, &domainErr) {
		return newMCPError(ErrorCodeInternalError, "internal error", nil)
	}

	switch domainErr.Code {
	case domain.ErrCodeNotFound:
		return newMCPError(ErrorCodeProjectNotFound, domainErr.Message, nil)
	case domain.ErrCodeValidation, domain.ErrCodeInvalidOperation:
		return newMCPError(ErrorCodeInvalidParams, domainErr.Message, nil)
	case domain.ErrCodeUnavailable:
		return newMCPError(ErrorCodeUnavailable, domainErr.Message, nil)
	}
	return newMCPError(ErrorCodeInternalError, domainErr.Message, nil)
}

func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

func formatJSON(data interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
