// Package vectorindex stores chunk vectors and answers nearest-neighbor
// queries, preferring a remote store and degrading to local brute force.
package vectorindex

import (
	"context"
	"math"

	"github.com/cloo-solutions/reposcope/internal/domain"
)

// DefaultSearchLimit is used when Search is called with a non-positive limit.
const DefaultSearchLimit = 6

// SearchHit pairs a chunk with its similarity to the query.
type SearchHit struct {
	Chunk domain.CodeChunk `json:"chunk"`
	Score float64          `json:"score"`
}

// VectorIndex is the capability shared by the remote and local indexes.
// Candidates are the locally known chunks of the collection; remote indexes
// use them to resolve returned ids, the local index scores them directly.
type VectorIndex interface {
	EnsureCollection(ctx context.Context, name string) error
	Upsert(ctx context.Context, collection string, chunks []domain.CodeChunk) error
	Search(ctx context.Context, collection string, query []float32, candidates []domain.CodeChunk, limit int) ([]SearchHit, error)
}

// CosineSimilarity returns dot(a,b)/(|a||b|), or 0 when either vector is
// empty or zero, or their lengths differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// pointPayload is stored next to every remote vector.
type pointPayload struct {
	Path      string `json:"path"`
	StartLine int    `json:"startLine"`
	EndLine   int    `json:"endLine"`
	Lang      string `json:"lang,omitempty"`
}

func payloadFor(c domain.CodeChunk) pointPayload {
	return pointPayload{
		Path:      c.Path,
		StartLine: c.StartLine,
		EndLine:   c.EndLine,
		Lang:      c.Lang,
	}
}

// resolveChunk maps a remote hit back to a known chunk, synthesizing a
// placeholder from the payload when the id is unknown.
func resolveChunk(id string, payload pointPayload, known map[string]domain.CodeChunk, query []float32) domain.CodeChunk {
	if chunk, ok := known[id]; ok {
		return chunk
	}
	return domain.CodeChunk{
		ID:        id,
		ProjectID: "unknown",
		Path:      payload.Path,
		StartLine: payload.StartLine,
		EndLine:   payload.EndLine,
		Text:      "",
		Embedding: query,
	}
}

func indexByID(chunks []domain.CodeChunk) map[string]domain.CodeChunk {
	known := make(map[string]domain.CodeChunk, len(chunks))
	for _, c := range chunks {
		known[c.ID] = c
	}
	return known
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultSearchLimit
	}
	return limit
}
