package service

import (
	"context"
	"log"
	"strings"

	"github.com/cloo-solutions/reposcope/internal/domain"
	"github.com/cloo-solutions/reposcope/internal/storage"
	"github.com/cloo-solutions/reposcope/internal/telemetry"
	"github.com/cloo-solutions/reposcope/internal/vectorindex"
)

const sourceContentType = "text/plain; charset=utf-8"

// IngestService turns uploaded sources into stored, indexed projects
type IngestService struct {
	txRunner TxRunner
	jobs     IndexJobRepositoryInterface
	index    vectorindex.VectorIndex
	archive  SourceArchive
	uuidGen  UUIDGenerator
	now      Clock
}

// NewIngestService creates an IngestService. archive may be nil.
func NewIngestService(txRunner TxRunner, jobs IndexJobRepositoryInterface, index vectorindex.VectorIndex, archive SourceArchive) *IngestService {
	return &IngestService{
		txRunner: txRunner,
		jobs:     jobs,
		index:    index,
		archive:  archive,
		uuidGen:  &DefaultUUIDGenerator{},
		now:      utcNow,
	}
}

type UploadInput struct {
	Filename    string
	ProjectName string
	Content     string
}

type UploadResult struct {
	ProjectID  string `json:"projectId"`
	ChunkCount int    `json:"chunkCount"`
}

// Upload chunks and embeds the content, stores the project together with a
// pending index job, then pushes the vectors. An indexing failure leaves the
// job pending for the background worker and does not fail the upload.
func (s *IngestService) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "IngestService.Upload", telemetry.SpanAttributes{
		Operation: "upload",
	})
	defer span.End()

	normalized := NormalizeContent(input.Content)
	if normalized == "" {
		return nil, domain.ErrEmptyContent
	}

	projectID := s.uuidGen.NewString()
	name := strings.TrimSpace(input.ProjectName)
	if name == "" {
		name = GuessProjectName(input.Filename)
	}
	sourceName := SourceNameOrDefault(input.Filename)

	parsed := ParseRepository(projectID, sourceName, normalized)
	now := s.now()
	project := domain.NewProject(projectID, name, sourceName, parsed.Chunks, now)
	if err := domain.ValidateProject(project); err != nil {
		span.SetError(err)
		return nil, domain.ErrInvalidProject.WithCause(err)
	}

	if s.archive != nil {
		key := storage.SourceKey(projectID, sourceName)
		if err := s.archive.PutObject(ctx, key, []byte(normalized), sourceContentType); err != nil {
			log.Printf("failed to archive source for project %s: %v", projectID, err)
		} else {
			project.SourceKey = key
		}
	}

	job := domain.NewIndexJob(s.uuidGen.NewString(), projectID, now)
	err := s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Projects().Save(ctx, project); err != nil {
			return err
		}
		return repos.IndexJobs().Create(ctx, job)
	})
	if err != nil {
		span.SetError(err)
		s.discardArchive(ctx, project)
		return nil, err
	}

	// The worker may claim the job while this upsert runs. Both sides write
	// the same points and both end by completing the job, so the overlap is
	// harmless.
	collection := domain.CollectionName(projectID)
	if err := s.index.Upsert(ctx, collection, project.Chunks); err != nil {
		log.Printf("failed to index %s, leaving job %s for retry: %v", collection, job.ID, err)
	} else if err := s.jobs.UpdateStatus(ctx, job.ID, domain.IndexJobStatusCompleted, ""); err != nil {
		log.Printf("failed to complete index job %s: %v", job.ID, err)
	}

	return &UploadResult{
		ProjectID:  projectID,
		ChunkCount: project.ChunkCount,
	}, nil
}

func (s *IngestService) discardArchive(ctx context.Context, project *domain.Project) {
	if s.archive == nil || project.SourceKey == "" {
		return
	}
	if err := s.archive.DeleteObject(ctx, project.SourceKey); err != nil {
		log.Printf("failed to remove archived source %s: %v", project.SourceKey, err)
	}
}
