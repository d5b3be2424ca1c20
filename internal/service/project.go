package service

import (
	"context"
	"time"

	"github.com/cloo-solutions/reposcope/internal/domain"
	"github.com/cloo-solutions/reposcope/internal/pagination"
	"github.com/cloo-solutions/reposcope/internal/telemetry"
	"github.com/google/uuid"
)

const (
	defaultProjectListLimit = 20
	maxProjectListLimit     = 100
)

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// Clock returns the current time (for testing)
type Clock func() time.Time

func utcNow() time.Time {
	return time.Now().UTC()
}

// ProjectService serves read access to stored projects
type ProjectService struct {
	repo    ProjectRepositoryInterface
	archive SourceArchive
}

// NewProjectService creates a ProjectService. archive may be nil.
func NewProjectService(repo ProjectRepositoryInterface, archive SourceArchive) *ProjectService {
	return &ProjectService{
		repo:    repo,
		archive: archive,
	}
}

type ListProjectsInput struct {
	Cursor string
	Limit  int
}

// ListProjects returns project summaries, newest first
func (s *ProjectService) ListProjects(ctx context.Context, input ListProjectsInput) (*pagination.PageResult[domain.ProjectSummary], error) {
	ctx, span := telemetry.StartSpan(ctx, "ProjectService.ListProjects", telemetry.SpanAttributes{
		Operation: "list",
	})
	defer span.End()

	cursor, err := pagination.DecodeCursor(input.Cursor)
	if err != nil {
		return nil, domain.ErrInvalidCursor.WithCause(err)
	}

	limit := pagination.ClampLimit(input.Limit, defaultProjectListLimit, maxProjectListLimit)
	return s.repo.ListWithCursor(ctx, cursor, limit)
}

// GetProject returns the full project document
func (s *ProjectService) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	ctx, span := telemetry.StartSpan(ctx, "ProjectService.GetProject", telemetry.SpanAttributes{
		ProjectID: id,
		Operation: "get",
	})
	defer span.End()

	return s.repo.FindByID(ctx, id)
}

// ListReviews returns the project's reviews, most recent first
func (s *ProjectService) ListReviews(ctx context.Context, id string) ([]*domain.ReviewResult, error) {
	project, err := s.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.Reviews == nil {
		return []*domain.ReviewResult{}, nil
	}
	return project.Reviews, nil
}

// SourceURL returns a presigned download URL for the archived source
func (s *ProjectService) SourceURL(ctx context.Context, id string) (string, error) {
	if s.archive == nil {
		return "", domain.ErrStorageNotConfigured
	}

	project, err := s.GetProject(ctx, id)
	if err != nil {
		return "", err
	}
	if project.SourceKey == "" {
		return "", domain.ErrSourceNotArchived
	}

	url, err := s.archive.GenerateDownloadURL(ctx, project.SourceKey)
	if err != nil {
		return "", domain.ErrStorageOperationFail.WithCause(err)
	}
	return url, nil
}
