package domain

import (
	"fmt"
	"time"
)

// ProjectStatus represents the lifecycle state of an uploaded project
type ProjectStatus string

const (
	ProjectStatusReady      ProjectStatus = "ready"
	ProjectStatusProcessing ProjectStatus = "processing"
	ProjectStatusFailed     ProjectStatus = "failed"
)

// Project is one uploaded source blob together with its chunks and the
// reviews generated against it. It is persisted as a single document.
type Project struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	SourceName string          `json:"sourceName"`
	SourceKey  string          `json:"sourceKey,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
	ChunkCount int             `json:"chunkCount"`
	Status     ProjectStatus   `json:"status"`
	Chunks     []CodeChunk     `json:"chunks"`
	Reviews    []*ReviewResult `json:"reviews"`
}

// ProjectSummary is the listing view of a project without chunks or reviews.
type ProjectSummary struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	SourceName  string        `json:"sourceName"`
	CreatedAt   time.Time     `json:"createdAt"`
	ChunkCount  int           `json:"chunkCount"`
	Status      ProjectStatus `json:"status"`
	ReviewCount int           `json:"reviewCount"`
}

// NewProject creates a ready Project holding the given chunks
func NewProject(id, name, sourceName string, chunks []CodeChunk, createdAt time.Time) *Project {
	if chunks == nil {
		chunks = []CodeChunk{}
	}
	return &Project{
		ID:         id,
		Name:       name,
		SourceName: sourceName,
		CreatedAt:  createdAt,
		ChunkCount: len(chunks),
		Status:     ProjectStatusReady,
		Chunks:     chunks,
		Reviews:    []*ReviewResult{},
	}
}

// Summary returns the listing view of the project
func (p *Project) Summary() ProjectSummary {
	return ProjectSummary{
		ID:          p.ID,
		Name:        p.Name,
		SourceName:  p.SourceName,
		CreatedAt:   p.CreatedAt,
		ChunkCount:  p.ChunkCount,
		Status:      p.Status,
		ReviewCount: len(p.Reviews),
	}
}

// PrependReview records review as the most recent one.
func (p *Project) PrependReview(review *ReviewResult) {
	reviews := make([]*ReviewResult, 0, len(p.Reviews)+1)
	reviews = append(reviews, review)
	p.Reviews = append(reviews, p.Reviews...)
}

// CollectionName returns the vector collection that holds the project's chunks
func CollectionName(projectID string) string {
	return "project-" + projectID
}

// ValidateProject validates a Project instance
func ValidateProject(p *Project) error {
	if p == nil {
		return fmt.Errorf("project cannot be nil")
	}

	if p.ID == "" {
		return fmt.Errorf("project ID is required")
	}

	if p.Name == "" {
		return fmt.Errorf("project Name is required")
	}

	if !isValidProjectStatus(p.Status) {
		return fmt.Errorf("project Status is invalid: %s", p.Status)
	}

	if p.ChunkCount != len(p.Chunks) {
		return fmt.Errorf("project ChunkCount %d does not match %d chunks", p.ChunkCount, len(p.Chunks))
	}

	return nil
}

func isValidProjectStatus(s ProjectStatus) bool {
	switch s {
	case ProjectStatusReady, ProjectStatusProcessing, ProjectStatusFailed:
		return true
	}
	return false
}
