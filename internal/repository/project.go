package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cloo-solutions/reposcope/internal/domain"
	"github.com/cloo-solutions/reposcope/internal/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultProjectPageSize = 20

// ProjectRepository persists each project as one JSONB document. The
// scalar columns mirror the document for listing and ordering.
type ProjectRepository struct {
	db dbtx
}

func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{db: pool}
}

func NewProjectRepositoryWithTx(tx pgx.Tx) *ProjectRepository {
	return &ProjectRepository{db: tx}
}

// Save inserts the project or replaces the stored document.
func (r *ProjectRepository) Save(ctx context.Context, project *domain.Project) error {
	doc, err := json.Marshal(project)
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}

	var sourceKey *string
	if project.SourceKey != "" {
		sourceKey = &project.SourceKey
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO projects (id, name, source_name, source_key, status, chunk_count, review_count, document, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		 ON CONFLICT (id) DO UPDATE
		 SET name = EXCLUDED.name,
		     source_name = EXCLUDED.source_name,
		     source_key = EXCLUDED.source_key,
		     status = EXCLUDED.status,
		     chunk_count = EXCLUDED.chunk_count,
		     review_count = EXCLUDED.review_count,
		     document = EXCLUDED.document,
		     updated_at = NOW()`,
		project.ID, project.Name, project.SourceName, sourceKey, project.Status,
		project.ChunkCount, len(project.Reviews), doc, project.CreatedAt,
	)
	return err
}

func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	var doc []byte
	err := r.db.QueryRow(ctx,
		`SELECT document FROM projects WHERE id = $1`,
		id,
	).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}

	var project domain.Project
	if err := json.Unmarshal(doc, &project); err != nil {
		return nil, fmt.Errorf("failed to decode project %s: %w", id, err)
	}
	return &project, nil
}

// ListWithCursor returns summaries newest first, keyset-paginated on (created_at, id).
func (r *ProjectRepository) ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*pagination.PageResult[domain.ProjectSummary], error) {
	if limit <= 0 {
		limit = defaultProjectPageSize
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT id, name, source_name, created_at, chunk_count, status, review_count
			 FROM projects
			 WHERE (created_at, id) < ($1, $2)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $3`,
			cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT id, name, source_name, created_at, chunk_count, status, review_count
			 FROM projects
			 ORDER BY created_at DESC, id DESC
			 LIMIT $1`,
			limit+1,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.ProjectSummary{}
	for rows.Next() {
		var s domain.ProjectSummary
		var createdAt pgtype.Timestamptz
		if err := rows.Scan(&s.ID, &s.Name, &s.SourceName, &createdAt, &s.ChunkCount, &s.Status, &s.ReviewCount); err != nil {
			return nil, err
		}
		s.CreatedAt = createdAt.Time.UTC()
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return pagination.NewPage(items, limit, func(s domain.ProjectSummary) (string, time.Time) {
		return s.ID, s.CreatedAt
	}), nil
}
