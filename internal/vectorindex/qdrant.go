package vectorindex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cloo-solutions/reposcope/internal/domain"
)

// QdrantConfig holds configuration for RemoteVectorIndex
type QdrantConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// RemoteVectorIndex is a minimal REST client for Qdrant. Collections use
// cosine distance and domain.EmbeddingDimensions dimensions.
type RemoteVectorIndex struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewRemoteVectorIndex creates a Qdrant-backed index
func NewRemoteVectorIndex(cfg QdrantConfig) *RemoteVectorIndex {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &RemoteVectorIndex{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// qdrantError is returned for non-2xx responses.
type qdrantError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *qdrantError) Error() string {
	return fmt.Sprintf("qdrant %s %s failed (%d): %s", e.Method, e.Path, e.Status, e.Body)
}

// EnsureCollection creates the collection when it does not exist yet.
func (q *RemoteVectorIndex) EnsureCollection(ctx context.Context, name string) error {
	path := "/collections/" + url.PathEscape(name)

	err := q.do(ctx, http.MethodGet, path, nil, nil)
	if err == nil {
		return nil
	}
	var qe *qdrantError
	if !errors.As(err, &qe) || qe.Status != http.StatusNotFound {
		return fmt.Errorf("failed to look up collection %s: %w", name, err)
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     domain.EmbeddingDimensions,
			"distance": "Cosine",
		},
	}
	if err := q.do(ctx, http.MethodPut, path, body, nil); err != nil {
		return fmt.Errorf("failed to create collection %s: %w", name, err)
	}
	return nil
}

type qdrantPoint struct {
	ID      string       `json:"id"`
	Vector  []float32    `json:"vector"`
	Payload pointPayload `json:"payload"`
}

// Upsert writes every chunk as a point and waits for the write to apply.
func (q *RemoteVectorIndex) Upsert(ctx context.Context, collection string, chunks []domain.CodeChunk) error {
	if err := q.EnsureCollection(ctx, collection); err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	points := make([]qdrantPoint, 0, len(chunks))
	for _, c := range chunks {
		points = append(points, qdrantPoint{ID: c.ID, Vector: c.Embedding, Payload: payloadFor(c)})
	}

	path := "/collections/" + url.PathEscape(collection) + "/points?wait=true"
	if err := q.do(ctx, http.MethodPut, path, map[string]any{"points": points}, nil); err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}
	return nil
}

type qdrantSearchResponse struct {
	Result []struct {
		ID      json.RawMessage `json:"id"`
		Score   *float64        `json:"score"`
		Payload pointPayload    `json:"payload"`
	} `json:"result"`
}

// Search queries the collection and maps hits back onto candidates.
func (q *RemoteVectorIndex) Search(ctx context.Context, collection string, query []float32, candidates []domain.CodeChunk, limit int) ([]SearchHit, error) {
	body := map[string]any{
		"vector":       query,
		"limit":        normalizeLimit(limit),
		"with_payload": true,
	}

	var resp qdrantSearchResponse
	path := "/collections/" + url.PathEscape(collection) + "/points/search"
	if err := q.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, fmt.Errorf("failed to search points: %w", err)
	}

	known := indexByID(candidates)
	hits := make([]SearchHit, 0, len(resp.Result))
	for _, r := range resp.Result {
		score := 0.0
		if r.Score != nil {
			score = *r.Score
		}
		chunk := resolveChunk(pointIDString(r.ID), r.Payload, known, query)
		hits = append(hits, SearchHit{Chunk: chunk, Score: score})
	}
	return hits, nil
}

// pointIDString renders a Qdrant point id, which is a uuid string or an unsigned integer.
func pointIDString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

func (q *RemoteVectorIndex) do(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, q.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}

	resp, err := q.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &qdrantError{Method: method, Path: path, Status: resp.StatusCode, Body: string(msg)}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
