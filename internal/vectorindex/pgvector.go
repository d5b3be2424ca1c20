package vectorindex

import (
	"context"
	"fmt"

	"github.com/cloo-solutions/reposcope/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// PgVectorIndex stores points in Postgres using the pgvector extension.
// Tables come from the migrations; a collection is a row in vector_collections.
type PgVectorIndex struct {
	pool *pgxpool.Pool
}

func NewPgVectorIndex(pool *pgxpool.Pool) *PgVectorIndex {
	return &PgVectorIndex{pool: pool}
}

func (p *PgVectorIndex) EnsureCollection(ctx context.Context, name string) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO vector_collections (name, dimensions, distance)
		 VALUES ($1, $2, 'cosine')
		 ON CONFLICT (name) DO NOTHING`,
		name, domain.EmbeddingDimensions,
	)
	if err != nil {
		return fmt.Errorf("failed to ensure collection %s: %w", name, err)
	}
	return nil
}

func (p *PgVectorIndex) Upsert(ctx context.Context, collection string, chunks []domain.CodeChunk) error {
	if err := p.EnsureCollection(ctx, collection); err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, c := range chunks {
		batch.Queue(
			`INSERT INTO chunk_vectors (collection, id, embedding, path, start_line, end_line, lang)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (collection, id) DO UPDATE
			 SET embedding = EXCLUDED.embedding,
			     path = EXCLUDED.path,
			     start_line = EXCLUDED.start_line,
			     end_line = EXCLUDED.end_line,
			     lang = EXCLUDED.lang`,
			collection, c.ID, pgvector.NewVector(c.Embedding), c.Path, c.StartLine, c.EndLine, c.Lang,
		)
	}

	if err := p.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to upsert chunk vectors: %w", err)
	}
	return nil
}

func (p *PgVectorIndex) Search(ctx context.Context, collection string, query []float32, candidates []domain.CodeChunk, limit int) ([]SearchHit, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, path, start_line, end_line, COALESCE(lang, ''), 1 - (embedding <=> $2) AS score
		 FROM chunk_vectors
		 WHERE collection = $1
		 ORDER BY embedding <=> $2
		 LIMIT $3`,
		collection, pgvector.NewVector(query), normalizeLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunk vectors: %w", err)
	}
	defer rows.Close()

	known := indexByID(candidates)
	var hits []SearchHit
	for rows.Next() {
		var id string
		var payload pointPayload
		var score float64
		if err := rows.Scan(&id, &payload.Path, &payload.StartLine, &payload.EndLine, &payload.Lang, &score); err != nil {
			return nil, err
		}
		hits = append(hits, SearchHit{Chunk: resolveChunk(id, payload, known, query), Score: score})
	}
	return hits, rows.Err()
}
