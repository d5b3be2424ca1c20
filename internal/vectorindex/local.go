package vectorindex

import (
	"context"
	"sort"

	"github.com/cloo-solutions/reposcope/internal/domain"
)

// LocalBruteForceIndex scores candidates in memory. It keeps no state, so
// EnsureCollection and Upsert are no-ops.
type LocalBruteForceIndex struct{}

func NewLocalBruteForceIndex() *LocalBruteForceIndex {
	return &LocalBruteForceIndex{}
}

func (l *LocalBruteForceIndex) EnsureCollection(_ context.Context, _ string) error {
	return nil
}

func (l *LocalBruteForceIndex) Upsert(_ context.Context, _ string, _ []domain.CodeChunk) error {
	return nil
}

// Search ranks every candidate by cosine similarity, highest first. Ties keep
// candidate order.
func (l *LocalBruteForceIndex) Search(_ context.Context, _ string, query []float32, candidates []domain.CodeChunk, limit int) ([]SearchHit, error) {
	return rankLocal(query, candidates, normalizeLimit(limit)), nil
}

func rankLocal(query []float32, candidates []domain.CodeChunk, limit int) []SearchHit {
	hits := make([]SearchHit, 0, len(candidates))
	for _, c := range candidates {
		hits = append(hits, SearchHit{Chunk: c, Score: CosineSimilarity(query, c.Embedding)})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}
