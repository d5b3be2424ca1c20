//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/cloo-solutions/reposcope/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexJobRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)
	projects := NewProjectRepository(pool)
	jobs := NewIndexJobRepository(pool)

	project := newTestProject("worker", time.Now().UTC())
	require.NoError(t, projects.Save(ctx, project))

	job := domain.NewIndexJob(uuid.NewString(), project.ID, time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, jobs.Create(ctx, job))

	found, err := jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.IndexJobStatusPending, found.Status)
	assert.Equal(t, domain.CollectionName(project.ID), found.Collection)
	assert.Nil(t, found.ProcessedAt)

	claimed, err := jobs.ClaimPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, domain.IndexJobStatusProcessing, claimed[0].Status)

	again, err := jobs.ClaimPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, again)

	require.NoError(t, jobs.IncrementRetries(ctx, job.ID))
	require.NoError(t, jobs.UpdateStatus(ctx, job.ID, domain.IndexJobStatusFailed, "qdrant unavailable"))

	found, err = jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.IndexJobStatusFailed, found.Status)
	assert.Equal(t, int32(1), found.Retries)
	assert.Equal(t, "qdrant unavailable", found.Error)
	assert.NotNil(t, found.ProcessedAt)
}

func TestIndexJobRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)
	jobs := NewIndexJobRepository(pool)

	_, err := jobs.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrIndexJobNotFound)

	assert.ErrorIs(t, jobs.UpdateStatus(ctx, "missing", domain.IndexJobStatusCompleted, ""), domain.ErrIndexJobNotFound)
	assert.ErrorIs(t, jobs.IncrementRetries(ctx, "missing"), domain.ErrIndexJobNotFound)
}
