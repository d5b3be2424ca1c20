package service

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/cloo-solutions/reposcope/internal/domain"
	"github.com/cloo-solutions/reposcope/internal/telemetry"
	"github.com/cloo-solutions/reposcope/internal/vectorindex"
)

const (
	// DefaultReviewQuery is embedded when a review is requested without a
	// query. The stored review keeps the query as given.
	DefaultReviewQuery = "general review"
	// HealthReviewQuery is what the HTTP and MCP surfaces send for an empty query.
	HealthReviewQuery  = "Run a general health review of this codebase."

	reviewSearchLimit   = 8
	maxFindingsPerChunk = 6
	longLineThreshold   = 140
)

var (
	anyTypePattern = regexp.MustCompile(`(?i)\bany\b`)
	varDeclPattern = regexp.MustCompile(`var\s+\w+`)
)

// noFindings is reported when no rule fires on any retrieved chunk.
var noFindings = domain.ReviewFinding{
	Severity: domain.SeverityInfo,
	File:     "general",
	Line:     0,
	Message:  "No obvious issues detected in sampled chunks. Run a deeper review for certainty.",
}

// ProjectStore loads and persists project documents.
type ProjectStore interface {
	FindByID(ctx context.Context, id string) (*domain.Project, error)
	Save(ctx context.Context, project *domain.Project) error
}

// ReviewService runs retrieval-backed reviews against stored projects
type ReviewService struct {
	projects ProjectStore
	embedder EmbeddingClient
	index    vectorindex.VectorIndex
	advisor  ReviewAdvisor
	uuidGen  UUIDGenerator
	now      Clock
}

// NewReviewService creates a ReviewService. advisor may be nil.
func NewReviewService(projects ProjectStore, embedder EmbeddingClient, index vectorindex.VectorIndex, advisor ReviewAdvisor) *ReviewService {
	return &ReviewService{
		projects: projects,
		embedder: embedder,
		index:    index,
		advisor:  advisor,
		uuidGen:  &DefaultUUIDGenerator{},
		now:      utcNow,
	}
}

type GenerateReviewInput struct {
	ProjectID string
	Query     string
}

// GenerateReview retrieves the chunks closest to the query, scans them and
// records the result as the project's most recent review. Unknown projects
// fail with domain.ErrProjectNotFound and nothing is written.
func (s *ReviewService) GenerateReview(ctx context.Context, input GenerateReviewInput) (*domain.ReviewResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "ReviewService.GenerateReview", telemetry.SpanAttributes{
		ProjectID: input.ProjectID,
		Operation: "review",
	})
	defer span.End()

	project, err := s.projects.FindByID(ctx, input.ProjectID)
	if err != nil {
		return nil, err
	}

	query := input.Query
	if query == "" {
		query = DefaultReviewQuery
	}

	queryVec, err := s.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	collection := domain.CollectionName(project.ID)
	hits, err := s.index.Search(ctx, collection, queryVec, project.Chunks, reviewSearchLimit)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("failed to search %s: %w", collection, err)
	}

	var findings []domain.ReviewFinding
	for _, hit := range hits {
		findings = append(findings, HeuristicScan(hit.Chunk)...)
	}

	if s.advisor != nil {
		advice, err := s.advisor.Advise(ctx, AdviceRequest{
			Query:  query,
			Intent: ParseIntent(query),
			Hits:   hits,
		})
		if err != nil {
			log.Printf("review advisor failed for project %s, keeping heuristic findings: %v", project.ID, err)
		} else {
			findings = append(findings, advice...)
		}
	}

	if len(findings) == 0 {
		findings = []domain.ReviewFinding{noFindings}
	}

	review := domain.NewReviewResult(s.uuidGen.NewString(), project.ID, input.Query, findings, s.now())
	if err := domain.ValidateReviewResult(review); err != nil {
		span.SetError(err)
		return nil, domain.ErrInvalidReview.WithCause(err)
	}
	project.PrependReview(review)

	if err := s.projects.Save(ctx, project); err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("failed to save review: %w", err)
	}

	return review, nil
}

// HeuristicScan applies the line rules to a chunk in order and keeps the
// first 6 findings. Line numbers are absolute within the source file.
func HeuristicScan(chunk domain.CodeChunk) []domain.ReviewFinding {
	var findings []domain.ReviewFinding

	add := func(severity domain.Severity, line int, message string) {
		findings = append(findings, domain.ReviewFinding{
			Severity: severity,
			File:     chunk.Path,
			Line:     line,
			Message:  message,
		})
	}

	for idx, line := range strings.Split(chunk.Text, "\n") {
		lineNo := chunk.StartLine + idx
		lower := strings.ToLower(line)

		if strings.Contains(lower, "todo") || strings.Contains(lower, "fixme") {
			add(domain.SeverityInfo, lineNo, "TODO/FIXME left in code; track or resolve before release.")
		}
		if strings.Contains(lower, "console.log") {
			add(domain.SeverityWarning, lineNo, "Console log present; consider removing or gating behind debug flag.")
		}
		if anyTypePattern.MatchString(line) {
			add(domain.SeverityWarning, lineNo, "Usage of 'any' weakens type safety; replace with precise types.")
		}
		if varDeclPattern.MatchString(line) {
			add(domain.SeverityWarning, lineNo, "Avoid 'var'; prefer 'const' or 'let' for block scoping.")
		}
		if utf8.RuneCountInString(line) > longLineThreshold {
			add(domain.SeverityInfo, lineNo, "Line is very long; consider breaking for readability.")
		}
	}

	if len(findings) > maxFindingsPerChunk {
		findings = findings[:maxFindingsPerChunk]
	}
	return findings
}
