package vectorindex

import (
	"context"
	"log"

	"github.com/cloo-solutions/reposcope/internal/domain"
	"github.com/cloo-solutions/reposcope/internal/telemetry"
)

// FallbackIndex prefers a remote index. Without one it behaves exactly like
// the local index; a remote search error is logged and answered locally.
// Ensure and upsert errors from the remote are returned to the caller.
type FallbackIndex struct {
	remote VectorIndex
	local  *LocalBruteForceIndex
}

// NewFallbackIndex wraps remote, which may be nil.
func NewFallbackIndex(remote VectorIndex) *FallbackIndex {
	return &FallbackIndex{
		remote: remote,
		local:  NewLocalBruteForceIndex(),
	}
}

// HasRemote reports whether a remote index is configured.
func (f *FallbackIndex) HasRemote() bool {
	return f.remote != nil
}

func (f *FallbackIndex) EnsureCollection(ctx context.Context, name string) error {
	if f.remote == nil {
		return nil
	}
	return f.remote.EnsureCollection(ctx, name)
}

func (f *FallbackIndex) Upsert(ctx context.Context, collection string, chunks []domain.CodeChunk) error {
	if f.remote == nil {
		return nil
	}
	return f.remote.Upsert(ctx, collection, chunks)
}

func (f *FallbackIndex) Search(ctx context.Context, collection string, query []float32, candidates []domain.CodeChunk, limit int) ([]SearchHit, error) {
	if f.remote != nil {
		hits, err := f.remote.Search(ctx, collection, query, candidates, limit)
		if err == nil {
			return hits, nil
		}
		log.Printf("vector search failed for %s, falling back to local similarity: %v", collection, err)
		telemetry.AddBreadcrumb(ctx, "vectorindex", "remote search failed for "+collection)
	}
	return f.local.Search(ctx, collection, query, candidates, limit)
}
