package domain

import "fmt"

// EmbeddingDimensions is the fixed length of every chunk and query vector.
const EmbeddingDimensions = 32

// CodeChunk is a contiguous, 1-based inclusive line range of one file.
type CodeChunk struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	Path      string    `json:"path"`
	StartLine int       `json:"startLine"`
	EndLine   int       `json:"endLine"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding"`
	Lang      string    `json:"lang,omitempty"`
}

// ValidateChunk validates a CodeChunk instance
func ValidateChunk(c *CodeChunk) error {
	if c == nil {
		return fmt.Errorf("chunk cannot be nil")
	}

	if c.ID == "" {
		return fmt.Errorf("chunk ID is required")
	}

	if c.Path == "" {
		return fmt.Errorf("chunk Path is required")
	}

	if c.StartLine < 1 {
		return fmt.Errorf("chunk StartLine must be at least 1, got %d", c.StartLine)
	}

	if c.EndLine < c.StartLine {
		return fmt.Errorf("chunk EndLine %d is before StartLine %d", c.EndLine, c.StartLine)
	}

	if len(c.Embedding) != 0 && len(c.Embedding) != EmbeddingDimensions {
		return fmt.Errorf("chunk Embedding must have %d dimensions, got %d", EmbeddingDimensions, len(c.Embedding))
	}

	return nil
}
