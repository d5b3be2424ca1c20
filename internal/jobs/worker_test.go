package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cloo-solutions/reposcope/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockJobProcessor is a mock implementation of JobProcessor
type MockJobProcessor struct {
	mock.Mock
}

func (m *MockJobProcessor) ProcessJobs(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockIndexJobRepository is a mock implementation of IndexJobRepository
type MockIndexJobRepository struct {
	mock.Mock
}

func (m *MockIndexJobRepository) ClaimPending(ctx context.Context, limit int) ([]*domain.IndexJob, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.IndexJob), args.Error(1)
}

func (m *MockIndexJobRepository) UpdateStatus(ctx context.Context, id string, status domain.IndexJobStatus, errMsg string) error {
	args := m.Called(ctx, id, status, errMsg)
	return args.Error(0)
}

func (m *MockIndexJobRepository) IncrementRetries(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockProjectLoader is a mock implementation of ProjectLoader
type MockProjectLoader struct {
	mock.Mock
}

func (m *MockProjectLoader) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Project), args.Error(1)
}

// MockChunkIndexer is a mock implementation of ChunkIndexer
type MockChunkIndexer struct {
	mock.Mock
}

func (m *MockChunkIndexer) Upsert(ctx context.Context, collection string, chunks []domain.CodeChunk) error {
	args := m.Called(ctx, collection, chunks)
	return args.Error(0)
}

func testProject(id string) *domain.Project {
	chunks := []domain.CodeChunk{{ID: "c1", ProjectID: id, Path: "a.ts", StartLine: 1, EndLine: 1, Text: "x"}}
	return domain.NewProject(id, "demo", "a.ts", chunks, time.Now().UTC())
}

func TestWorker_StartStop(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(nil)

	worker := NewWorker(mockProcessor, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(250 * time.Millisecond)

	worker.Stop()
	wg.Wait()

	mockProcessor.AssertCalled(t, "ProcessJobs", mock.Anything)
}

func TestWorker_ContextCancellation(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(nil)

	worker := NewWorker(mockProcessor, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(150 * time.Millisecond)

	cancel()
	wg.Wait()

	// Stop after cancellation must not block or panic
	worker.Stop()
	worker.Stop()

	mockProcessor.AssertCalled(t, "ProcessJobs", mock.Anything)
}

func TestNewWorker_DefaultInterval(t *testing.T) {
	worker := NewWorker(new(MockJobProcessor), 0)
	assert.Equal(t, DefaultPollInterval, worker.pollInterval)
}

func TestWorker_SweepsImmediately(t *testing.T) {
	swept := make(chan struct{}, 1)
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Run(func(mock.Arguments) {
		select {
		case swept <- struct{}{}:
		default:
		}
	}).Return(nil)

	worker := NewWorker(mockProcessor, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Start(ctx)

	select {
	case <-swept:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not sweep on start")
	}
	worker.Stop()
}

func TestWorker_NextDelayBacksOff(t *testing.T) {
	worker := NewWorker(new(MockJobProcessor), time.Second)

	assert.Equal(t, time.Second, worker.nextDelay(0))
	assert.Equal(t, 2*time.Second, worker.nextDelay(1))
	assert.Equal(t, 4*time.Second, worker.nextDelay(2))
	assert.Equal(t, 8*time.Second, worker.nextDelay(3))
	assert.Equal(t, 8*time.Second, worker.nextDelay(10))
}

func TestIndexWorker_ProcessJobs_NoPendingJobs(t *testing.T) {
	mockRepo := new(MockIndexJobRepository)
	mockProjects := new(MockProjectLoader)
	mockIndex := new(MockChunkIndexer)

	mockRepo.On("ClaimPending", mock.Anything, ClaimBatchSize).Return([]*domain.IndexJob{}, nil)

	worker := NewIndexWorker(mockRepo, mockProjects, mockIndex)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockIndex.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
}

func TestIndexWorker_ProcessJobs_Success(t *testing.T) {
	mockRepo := new(MockIndexJobRepository)
	mockProjects := new(MockProjectLoader)
	mockIndex := new(MockChunkIndexer)

	project := testProject("p1")
	job := domain.NewIndexJob("job-1", "p1", time.Now().UTC())

	mockRepo.On("ClaimPending", mock.Anything, ClaimBatchSize).Return([]*domain.IndexJob{job}, nil)
	mockProjects.On("FindByID", mock.Anything, "p1").Return(project, nil)
	mockIndex.On("Upsert", mock.Anything, "project-p1", project.Chunks).Return(nil)
	mockRepo.On("UpdateStatus", mock.Anything, "job-1", domain.IndexJobStatusCompleted, "").Return(nil)

	worker := NewIndexWorker(mockRepo, mockProjects, mockIndex)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockProjects.AssertExpectations(t)
	mockIndex.AssertExpectations(t)
}

func TestIndexWorker_ProcessJobs_FailureWithRetry(t *testing.T) {
	mockRepo := new(MockIndexJobRepository)
	mockProjects := new(MockProjectLoader)
	mockIndex := new(MockChunkIndexer)

	job := domain.NewIndexJob("job-1", "p1", time.Now().UTC())

	mockRepo.On("ClaimPending", mock.Anything, ClaimBatchSize).Return([]*domain.IndexJob{job}, nil)
	mockProjects.On("FindByID", mock.Anything, "p1").Return(testProject("p1"), nil)
	mockIndex.On("Upsert", mock.Anything, "project-p1", mock.Anything).Return(errors.New("qdrant unavailable"))
	mockRepo.On("IncrementRetries", mock.Anything, "job-1").Return(nil)
	mockRepo.On("UpdateStatus", mock.Anything, "job-1", domain.IndexJobStatusPending, mock.MatchedBy(func(msg string) bool {
		return msg != ""
	})).Return(nil)

	worker := NewIndexWorker(mockRepo, mockProjects, mockIndex)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockIndex.AssertExpectations(t)
}

func TestIndexWorker_ProcessJobs_MaxRetriesExceeded(t *testing.T) {
	mockRepo := new(MockIndexJobRepository)
	mockProjects := new(MockProjectLoader)
	mockIndex := new(MockChunkIndexer)

	job := domain.NewIndexJob("job-1", "p1", time.Now().UTC())
	job.Retries = 2

	mockRepo.On("ClaimPending", mock.Anything, ClaimBatchSize).Return([]*domain.IndexJob{job}, nil)
	mockProjects.On("FindByID", mock.Anything, "p1").Return(testProject("p1"), nil)
	mockIndex.On("Upsert", mock.Anything, "project-p1", mock.Anything).Return(errors.New("qdrant unavailable"))
	mockRepo.On("IncrementRetries", mock.Anything, "job-1").Return(nil)
	mockRepo.On("UpdateStatus", mock.Anything, "job-1", domain.IndexJobStatusFailed, mock.MatchedBy(func(msg string) bool {
		return msg != ""
	})).Return(nil)

	worker := NewIndexWorker(mockRepo, mockProjects, mockIndex)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestIndexWorker_ProcessJobs_MissingProjectCountsAsFailure(t *testing.T) {
	mockRepo := new(MockIndexJobRepository)
	mockProjects := new(MockProjectLoader)
	mockIndex := new(MockChunkIndexer)

	job := domain.NewIndexJob("job-1", "gone", time.Now().UTC())

	mockRepo.On("ClaimPending", mock.Anything, ClaimBatchSize).Return([]*domain.IndexJob{job}, nil)
	mockProjects.On("FindByID", mock.Anything, "gone").Return(nil, domain.ErrProjectNotFound)
	mockRepo.On("IncrementRetries", mock.Anything, "job-1").Return(nil)
	mockRepo.On("UpdateStatus", mock.Anything, "job-1", domain.IndexJobStatusPending, mock.Anything).Return(nil)

	worker := NewIndexWorker(mockRepo, mockProjects, mockIndex)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockIndex.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
}

func TestIndexWorker_ProcessJobs_MultipleJobs(t *testing.T) {
	mockRepo := new(MockIndexJobRepository)
	mockProjects := new(MockProjectLoader)
	mockIndex := new(MockChunkIndexer)

	jobs := []*domain.IndexJob{
		domain.NewIndexJob("job-1", "p1", time.Now().UTC()),
		domain.NewIndexJob("job-2", "p2", time.Now().UTC()),
	}

	mockRepo.On("ClaimPending", mock.Anything, ClaimBatchSize).Return(jobs, nil)

	mockProjects.On("FindByID", mock.Anything, "p1").Return(testProject("p1"), nil)
	mockIndex.On("Upsert", mock.Anything, "project-p1", mock.Anything).Return(nil)
	mockRepo.On("UpdateStatus", mock.Anything, "job-1", domain.IndexJobStatusCompleted, "").Return(nil)

	mockProjects.On("FindByID", mock.Anything, "p2").Return(testProject("p2"), nil)
	mockIndex.On("Upsert", mock.Anything, "project-p2", mock.Anything).Return(nil)
	mockRepo.On("UpdateStatus", mock.Anything, "job-2", domain.IndexJobStatusCompleted, "").Return(nil)

	worker := NewIndexWorker(mockRepo, mockProjects, mockIndex)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockIndex.AssertExpectations(t)
}

func TestIndexWorker_ProcessJobs_RepositoryError(t *testing.T) {
	mockRepo := new(MockIndexJobRepository)

	mockRepo.On("ClaimPending", mock.Anything, ClaimBatchSize).Return(nil, errors.New("database error"))

	worker := NewIndexWorker(mockRepo, new(MockProjectLoader), new(MockChunkIndexer))
	err := worker.ProcessJobs(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch pending jobs")
	mockRepo.AssertExpectations(t)
}
