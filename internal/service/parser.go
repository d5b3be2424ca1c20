package service

import (
	"path/filepath"
	"strings"

	"github.com/cloo-solutions/reposcope/internal/domain"
)

const (
	defaultSourceName  = "upload.txt"
	defaultProjectName = "uploaded-project"
)

// ParsedFile is one virtual file extracted from an upload.
type ParsedFile struct {
	Path    string
	Content string
}

// ParseResult holds the files and embedded chunks of one upload.
type ParseResult struct {
	Files  []ParsedFile
	Chunks []domain.CodeChunk
}

// ParseRepository treats content as a single virtual file, chunks it and
// embeds every chunk. Archives are not expanded.
func ParseRepository(projectID, sourceName, content string) ParseResult {
	file := ParsedFile{
		Path:    SourceNameOrDefault(sourceName),
		Content: NormalizeContent(content),
	}

	chunks := ChunkCode(ChunkInput{
		ProjectID: projectID,
		Path:      file.Path,
		Text:      file.Content,
		MaxTokens: UploadChunkChars,
	})
	for i := range chunks {
		chunks[i].Embedding = EmbedText(chunks[i].Text)
	}

	return ParseResult{
		Files:  []ParsedFile{file},
		Chunks: chunks,
	}
}

// NormalizeContent strips NUL bytes, converts CRLF to LF and trims surrounding whitespace.
func NormalizeContent(text string) string {
	text = strings.ReplaceAll(text, "\x00", "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.TrimSpace(text)
}

// SourceNameOrDefault returns name, or upload.txt when it is empty.
func SourceNameOrDefault(name string) string {
	if name == "" {
		return defaultSourceName
	}
	return name
}

// GuessProjectName derives a project name from an upload's file name.
func GuessProjectName(filename string) string {
	if filename == "" {
		return defaultProjectName
	}
	base := filepath.Base(filename)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" {
		return defaultProjectName
	}
	return name
}
