package service

import (
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/cloo-solutions/reposcope/internal/domain"
	"github.com/google/uuid"
)

const (
	// DefaultChunkChars is the per-chunk character budget for ChunkCode.
	DefaultChunkChars = 320
	// UploadChunkChars is the budget used when parsing uploaded sources.
	UploadChunkChars = 640
)

// ChunkInput describes one file to split into line-bounded chunks.
type ChunkInput struct {
	ProjectID string
	Path      string
	Text      string
	StartLine int // defaults to 1
	MaxTokens int // character budget, defaults to DefaultChunkChars
}

// ChunkCode splits text into contiguous line ranges whose joined length stays
// within MaxTokens characters. A single line longer than the budget becomes
// its own chunk and is never split.
func ChunkCode(in ChunkInput) []domain.CodeChunk {
	if in.Text == "" {
		return nil
	}
	startLine := in.StartLine
	if startLine <= 0 {
		startLine = 1
	}
	maxChars := in.MaxTokens
	if maxChars <= 0 {
		maxChars = DefaultChunkChars
	}

	lang := DetectLang(in.Path)
	lines := strings.Split(in.Text, "\n")
	chunks := make([]domain.CodeChunk, 0, 4)

	var current []string
	currentLen := 0
	currentStart := startLine

	flush := func(endLine int) {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, domain.CodeChunk{
			ID:        uuid.NewString(),
			ProjectID: in.ProjectID,
			Path:      in.Path,
			StartLine: currentStart,
			EndLine:   endLine,
			Text:      strings.Join(current, "\n"),
			Embedding: []float32{},
			Lang:      lang,
		})
		current = nil
		currentLen = 0
	}

	for idx, line := range lines {
		lineLen := utf8.RuneCountInString(line)
		tentative := lineLen
		if len(current) > 0 {
			tentative = currentLen + 1 + lineLen
		}

		if tentative > maxChars {
			flush(currentStart + len(current) - 1)
			current = []string{line}
			currentLen = lineLen
			currentStart = startLine + idx
			continue
		}

		current = append(current, line)
		currentLen = tentative
	}

	flush(startLine + len(lines) - 1)
	return chunks
}

// DetectLang infers a language tag from the file extension.
func DetectLang(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".tsx":
		return "typescript"
	case ".js", ".jsx":
		return "javascript"
	case ".py":
		return "python"
	case ".go":
		return "go"
	case ".rs":
		return "rust"
	}
	return ""
}
