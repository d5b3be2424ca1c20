package domain

import (
	"fmt"
	"strings"
	"time"
)

// Severity is the closed set of finding severities. Values outside the set
// parse to SeverityOther.
type Severity int

const (
	SeverityOther Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
	SeverityCritical
	SeverityHigh
	SeverityMedium
	SeverityLow
)

var severityNames = map[Severity]string{
	SeverityOther:    "other",
	SeverityInfo:     "info",
	SeverityWarning:  "warning",
	SeverityError:    "error",
	SeverityCritical: "critical",
	SeverityHigh:     "high",
	SeverityMedium:   "medium",
	SeverityLow:      "low",
}

// ParseSeverity maps a severity label to its variant, case-insensitively.
func ParseSeverity(s string) Severity {
	label := strings.ToLower(strings.TrimSpace(s))
	for sev, name := range severityNames {
		if name == label {
			return sev
		}
	}
	return SeverityOther
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return severityNames[SeverityOther]
}

// MarshalText implements encoding.TextMarshaler
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Severity) UnmarshalText(text []byte) error {
	*s = ParseSeverity(string(text))
	return nil
}

// ReviewFinding is one detected issue. The heuristic scanner only fills
// severity, file, line and message; the rest comes from richer reviewers.
type ReviewFinding struct {
	Severity      Severity `json:"severity"`
	File          string   `json:"file"`
	Line          int      `json:"line"`
	Lines         []int    `json:"lines,omitempty"`
	Message       string   `json:"message"`
	Explanation   string   `json:"explanation,omitempty"`
	Suggestion    string   `json:"suggestion,omitempty"`
	OptionalPatch string   `json:"optional_patch,omitempty"`
	CrossFile     bool     `json:"cross_file,omitempty"`
}

// ReviewResult is the output of one review invocation. Findings keep
// retrieval order.
type ReviewResult struct {
	ID        string          `json:"id"`
	ProjectID string          `json:"projectId"`
	CreatedAt time.Time       `json:"createdAt"`
	Query     string          `json:"query"`
	Findings  []ReviewFinding `json:"findings"`
}

// NewReviewResult creates a new ReviewResult instance
func NewReviewResult(id, projectID, query string, findings []ReviewFinding, createdAt time.Time) *ReviewResult {
	return &ReviewResult{
		ID:        id,
		ProjectID: projectID,
		CreatedAt: createdAt,
		Query:     query,
		Findings:  findings,
	}
}

// CountBySeverity groups findings by severity.
func CountBySeverity(findings []ReviewFinding) map[Severity]int {
	counts := make(map[Severity]int)
	for _, f := range findings {
		counts[f.Severity]++
	}
	return counts
}

// ValidateReviewResult validates a ReviewResult instance
func ValidateReviewResult(r *ReviewResult) error {
	if r == nil {
		return fmt.Errorf("review cannot be nil")
	}

	if r.ID == "" {
		return fmt.Errorf("review ID is required")
	}

	if r.ProjectID == "" {
		return fmt.Errorf("review ProjectID is required")
	}

	if len(r.Findings) == 0 {
		return fmt.Errorf("review must contain at least one finding")
	}

	return nil
}
