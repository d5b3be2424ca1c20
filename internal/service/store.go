package service

import (
	"context"

	"github.com/cloo-solutions/reposcope/internal/domain"
	"github.com/cloo-solutions/reposcope/internal/pagination"
)

// ProjectRepositoryInterface persists whole project documents.
type ProjectRepositoryInterface interface {
	Save(ctx context.Context, project *domain.Project) error
	FindByID(ctx context.Context, id string) (*domain.Project, error)
	ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*pagination.PageResult[domain.ProjectSummary], error)
}

// IndexJobRepositoryInterface records vector index work that still has to
// reach the remote backend.
type IndexJobRepositoryInterface interface {
	Create(ctx context.Context, job *domain.IndexJob) error
	UpdateStatus(ctx context.Context, id string, status domain.IndexJobStatus, errMsg string) error
}

// SourceArchive keeps the raw uploaded bytes in object storage.
type SourceArchive interface {
	PutObject(ctx context.Context, key string, content []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, key string) (string, error)
	DeleteObject(ctx context.Context, key string) error
}

// TxRepositories are repositories sharing one transaction. A project and
// its index job are written through them together.
type TxRepositories interface {
	Projects() ProjectRepositoryInterface
	IndexJobs() IndexJobRepositoryInterface
}

// TxRunner runs fn in a transaction and commits only if fn returns nil.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(repos TxRepositories) error) error
}
