// Package mcp exposes project upload and review as MCP tools over stdio.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/cloo-solutions/reposcope/internal/domain"
	"github.com/cloo-solutions/reposcope/internal/pagination"
	"github.com/cloo-solutions/reposcope/internal/service"
)

const (
	// ServerName is the MCP server name
	ServerName = "reposcope"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

type ProjectReader interface {
	ListProjects(ctx context.Context, input service.ListProjectsInput) (*pagination.PageResult[domain.ProjectSummary], error)
	GetProject(ctx context.Context, id string) (*domain.Project, error)
}

type ReviewGenerator interface {
	GenerateReview(ctx context.Context, input service.GenerateReviewInput) (*domain.ReviewResult, error)
}

type Uploader interface {
	Upload(ctx context.Context, input service.UploadInput) (*service.UploadResult, error)
}

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	projects ProjectReader
	reviews  ReviewGenerator
	uploads  Uploader
}

// NewServer creates an MCP server with every tool registered
func NewServer(projects ProjectReader, reviews ReviewGenerator, uploads Uploader) *Server {
	s := &Server{
		mcp:      server.NewMCPServer(ServerName, ServerVersion),
		projects: projects,
		reviews:  reviews,
		uploads:  uploads,
	}
	s.registerTools()
	return s
}

// Serve runs the server on stdio and blocks until stdin closes
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(listProjectsTool(), s.handleListProjects)
	s.mcp.AddTool(getProjectTool(), s.handleGetProject)
	s.mcp.AddTool(generateReviewTool(), s.handleGenerateReview)
	s.mcp.AddTool(uploadTextTool(), s.handleUploadText)
}
