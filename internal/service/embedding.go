package service

import (
	"context"
	"fmt"
	"math"

	"github.com/cloo-solutions/reposcope/internal/domain"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	embeddingWindow  = 16
	embeddingModulus = 997
)

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// EmbedText returns a deterministic, unit-length fingerprint of text. It is a
// placeholder for a semantic model: text is cut into 16-character windows,
// each window hashes to sum(ord(ch) * position) mod 997, and the hash is added
// into slot window%32.
func EmbedText(text string) []float32 {
	acc := make([]float64, domain.EmbeddingDimensions)

	runes := []rune(text)
	for idx := 0; idx*embeddingWindow < len(runes); idx++ {
		start := idx * embeddingWindow
		end := start + embeddingWindow
		if end > len(runes) {
			end = len(runes)
		}

		hash := 0
		for i, ch := range runes[start:end] {
			hash += int(ch) * (i + 1)
		}
		acc[idx%domain.EmbeddingDimensions] += float64(hash % embeddingModulus)
	}

	var sum float64
	for _, v := range acc {
		sum += v * v
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		norm = 1
	}

	vector := make([]float32, domain.EmbeddingDimensions)
	for i, v := range acc {
		vector[i] = float32(v / norm)
	}
	return vector
}

// HashEmbedder adapts EmbedText to the EmbeddingClient interface.
type HashEmbedder struct{}

func NewHashEmbedder() *HashEmbedder {
	return &HashEmbedder{}
}

func (e *HashEmbedder) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	return EmbedText(text), nil
}

// CachedEmbedder memoizes another EmbeddingClient in a fixed-size LRU.
type CachedEmbedder struct {
	client EmbeddingClient
	cache  *lru.Cache[string, []float32]
}

// NewCachedEmbedder wraps client with an LRU of the given size.
func NewCachedEmbedder(client EmbeddingClient, size int) (*CachedEmbedder, error) {
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding cache: %w", err)
	}
	return &CachedEmbedder{client: client, cache: cache}, nil
}

func (e *CachedEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := e.cache.Get(text); ok {
		return cached, nil
	}

	embedding, err := e.client.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, err
	}

	e.cache.Add(text, embedding)
	return embedding, nil
}

// Len reports the number of cached embeddings.
func (e *CachedEmbedder) Len() int {
	return e.cache.Len()
}

// NewQueryEmbedder returns the hash embedder, cached when cacheSize > 0.
func NewQueryEmbedder(cacheSize int) (EmbeddingClient, error) {
	if cacheSize <= 0 {
		return NewHashEmbedder(), nil
	}
	return NewCachedEmbedder(NewHashEmbedder(), cacheSize)
}
