package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cloo-solutions/reposcope/internal/domain"
	"github.com/cloo-solutions/reposcope/internal/vectorindex"
)

const advisorSnippetChars = 400

// ErrUnparseableAdvice is returned when the model answer holds no JSON object.
var ErrUnparseableAdvice = errors.New("advisor returned no parseable JSON")

// ReviewAdvisor produces additional findings for a set of retrieved chunks.
type ReviewAdvisor interface {
	Advise(ctx context.Context, req AdviceRequest) ([]domain.ReviewFinding, error)
}

// ChatCompleter sends one system and user prompt pair to a chat model.
type ChatCompleter interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

type AdviceRequest struct {
	Query  string
	Intent ReviewIntent
	Hits   []vectorindex.SearchHit
}

// LLMAdvisor asks a chat model for structured findings.
type LLMAdvisor struct {
	chat ChatCompleter
}

func NewLLMAdvisor(chat ChatCompleter) *LLMAdvisor {
	return &LLMAdvisor{chat: chat}
}

const advisorSystemPrompt = `You are an AI code reviewer performing a repository-level review.
Analyze the provided code context and return structured findings.
Context snippets may come from multiple files. Always reference file paths and line ranges.
If an issue spans multiple files, set cross_file=true.
Respond ONLY with JSON of the form {"findings":[{"file":"a.ts","line":12,"lines":[12,13],"severity":"warning","message":"...","explanation":"...","suggestion":"...","optional_patch":"...","cross_file":false}]}.
Severity is one of info, warning, error, low, medium, high, critical.`

var advisorChecks = []string{
	"credentials validated before login success",
	"authentication flags/configs enforced",
	"tokens are validated and expired",
	"security utilities are used",
	"cross-file data flows are consistent",
}

func (a *LLMAdvisor) Advise(ctx context.Context, req AdviceRequest) ([]domain.ReviewFinding, error) {
	raw, err := a.chat.Complete(ctx, advisorSystemPrompt, BuildAdvicePrompt(req))
	if err != nil {
		return nil, err
	}
	return ParseAdvice(raw)
}

// BuildAdvicePrompt renders the query, intent and retrieved context.
func BuildAdvicePrompt(req AdviceRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Review query:\n%s\n\n", req.Query)
	fmt.Fprintf(&b, "Intent focus (non-exhaustive):\ncategories: %s\npaths: %s\nlanguages: %s\n\n",
		strings.Join(req.Intent.Categories, ", "),
		strings.Join(req.Intent.FocusPaths, ", "),
		strings.Join(req.Intent.Languages, ", "),
	)

	b.WriteString("Intent checks to verify:\n")
	for _, c := range advisorChecks {
		fmt.Fprintf(&b, "- %s\n", c)
	}

	b.WriteString("\nContext:\n")
	for _, hit := range req.Hits {
		fmt.Fprintf(&b, "\nFile: %s lines %d-%d (score %.3f)\n%s\n",
			hit.Chunk.Path, hit.Chunk.StartLine, hit.Chunk.EndLine, hit.Score, truncateRunes(hit.Chunk.Text, advisorSnippetChars))
	}

	return b.String()
}

type adviceFinding struct {
	File          string    `json:"file"`
	Files         []string  `json:"files"`
	Line          float64   `json:"line"`
	Lines         []float64 `json:"lines"`
	Severity      string    `json:"severity"`
	Message       string    `json:"message"`
	Issue         string    `json:"issue"`
	Explanation   string    `json:"explanation"`
	Suggestion    string    `json:"suggestion"`
	OptionalPatch string    `json:"optional_patch"`
	CrossFile     bool      `json:"cross_file"`
}

type adviceResponse struct {
	Findings []adviceFinding `json:"findings"`
}

// ParseAdvice decodes a model answer. When the answer is not pure JSON the
// outermost {...} block is tried.
func ParseAdvice(raw string) ([]domain.ReviewFinding, error) {
	var resp adviceResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		start := strings.Index(raw, "{")
		end := strings.LastIndex(raw, "}")
		if start == -1 || end <= start {
			return nil, ErrUnparseableAdvice
		}
		if err := json.Unmarshal([]byte(raw[start:end+1]), &resp); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnparseableAdvice, err)
		}
	}

	findings := make([]domain.ReviewFinding, 0, len(resp.Findings))
	for _, f := range resp.Findings {
		findings = append(findings, f.toDomain())
	}
	return findings, nil
}

func (f adviceFinding) toDomain() domain.ReviewFinding {
	file := f.File
	if file == "" && len(f.Files) > 0 {
		file = f.Files[0]
	}
	if file == "" {
		file = "unknown"
	}

	message := f.Message
	if message == "" {
		message = f.Issue
	}

	var lines []int
	for _, l := range f.Lines {
		lines = append(lines, int(l))
	}

	severity := f.Severity
	if severity == "" {
		severity = "info"
	}

	return domain.ReviewFinding{
		Severity:      domain.ParseSeverity(severity),
		File:          file,
		Line:          int(f.Line),
		Lines:         lines,
		Message:       message,
		Explanation:   f.Explanation,
		Suggestion:    f.Suggestion,
		OptionalPatch: f.OptionalPatch,
		CrossFile:     f.CrossFile || len(f.Files) > 1,
	}
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
