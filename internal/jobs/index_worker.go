package jobs

import (
	"context"
	"fmt"
	"log"

	"github.com/cloo-solutions/reposcope/internal/domain"
)

const (
	// MaxRetries is the maximum number of attempts for an index job
	MaxRetries = 3
	// ClaimBatchSize bounds the number of jobs claimed per poll
	ClaimBatchSize = 50
)

// IndexJobRepository defines the interface for index job persistence
type IndexJobRepository interface {
	// ClaimPending moves pending jobs to processing and returns them
	ClaimPending(ctx context.Context, limit int) ([]*domain.IndexJob, error)

	// UpdateStatus updates the status of an index job
	UpdateStatus(ctx context.Context, id string, status domain.IndexJobStatus, errMsg string) error

	// IncrementRetries increments the retry count for a job
	IncrementRetries(ctx context.Context, id string) error
}

// ProjectLoader loads the project whose chunks a job pushes
type ProjectLoader interface {
	FindByID(ctx context.Context, id string) (*domain.Project, error)
}

// ChunkIndexer writes chunk vectors into a collection
type ChunkIndexer interface {
	Upsert(ctx context.Context, collection string, chunks []domain.CodeChunk) error
}

// IndexWorker pushes stored chunks to the vector index for jobs that could
// not be completed at upload time
type IndexWorker struct {
	repo     IndexJobRepository
	projects ProjectLoader
	index    ChunkIndexer
}

// NewIndexWorker creates a new IndexWorker instance
func NewIndexWorker(repo IndexJobRepository, projects ProjectLoader, index ChunkIndexer) *IndexWorker {
	return &IndexWorker{
		repo:     repo,
		projects: projects,
		index:    index,
	}
}

// ProcessJobs implements the JobProcessor interface
func (w *IndexWorker) ProcessJobs(ctx context.Context) error {
	jobs, err := w.repo.ClaimPending(ctx, ClaimBatchSize)
	if err != nil {
		return fmt.Errorf("failed to fetch pending jobs: %w", err)
	}

	if len(jobs) == 0 {
		return nil
	}

	log.Printf("Processing %d pending index jobs", len(jobs))

	for _, job := range jobs {
		if err := w.processJob(ctx, job); err != nil {
			log.Printf("Error processing job %s: %v", job.ID, err)
		}
	}

	return nil
}

func (w *IndexWorker) processJob(ctx context.Context, job *domain.IndexJob) error {
	log.Printf("Processing job %s for project %s", job.ID, job.ProjectID)

	if err := w.syncProject(ctx, job); err != nil {
		return w.handleJobFailure(ctx, job, err)
	}

	if err := w.repo.UpdateStatus(ctx, job.ID, domain.IndexJobStatusCompleted, ""); err != nil {
		return fmt.Errorf("failed to update job status to completed: %w", err)
	}

	log.Printf("Job %s completed successfully", job.ID)
	return nil
}

func (w *IndexWorker) syncProject(ctx context.Context, job *domain.IndexJob) error {
	project, err := w.projects.FindByID(ctx, job.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to load project: %w", err)
	}

	collection := job.Collection
	if collection == "" {
		collection = domain.CollectionName(project.ID)
	}

	return w.index.Upsert(ctx, collection, project.Chunks)
}

// handleJobFailure re-queues the job until MaxRetries attempts have failed
func (w *IndexWorker) handleJobFailure(ctx context.Context, job *domain.IndexJob, jobErr error) error {
	log.Printf("Job %s failed: %v", job.ID, jobErr)

	if err := w.repo.IncrementRetries(ctx, job.ID); err != nil {
		return fmt.Errorf("failed to increment retries: %w", err)
	}

	if job.Retries+1 >= MaxRetries {
		log.Printf("Job %s exceeded max retries (%d), marking as failed", job.ID, MaxRetries)
		errMsg := fmt.Sprintf("max retries exceeded: %v", jobErr)
		if err := w.repo.UpdateStatus(ctx, job.ID, domain.IndexJobStatusFailed, errMsg); err != nil {
			return fmt.Errorf("failed to update job status to failed: %w", err)
		}
		return nil
	}

	log.Printf("Job %s will be retried (attempt %d/%d)", job.ID, job.Retries+1, MaxRetries)
	errMsg := fmt.Sprintf("retry %d: %v", job.Retries+1, jobErr)
	if err := w.repo.UpdateStatus(ctx, job.ID, domain.IndexJobStatusPending, errMsg); err != nil {
		return fmt.Errorf("failed to reset job status to pending: %w", err)
	}

	return nil
}
