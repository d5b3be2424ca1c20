package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cloo-solutions/reposcope/internal/api/handlers"
	"github.com/cloo-solutions/reposcope/internal/domain"
	"github.com/cloo-solutions/reposcope/internal/pagination"
	"github.com/cloo-solutions/reposcope/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, input service.UploadInput) (*service.UploadResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UploadResult), args.Error(1)
}

type MockReviewGenerator struct {
	mock.Mock
}

func (m *MockReviewGenerator) GenerateReview(ctx context.Context, input service.GenerateReviewInput) (*domain.ReviewResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReviewResult), args.Error(1)
}

type MockProjectReader struct {
	mock.Mock
}

func (m *MockProjectReader) ListProjects(ctx context.Context, input service.ListProjectsInput) (*pagination.PageResult[domain.ProjectSummary], error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pagination.PageResult[domain.ProjectSummary]), args.Error(1)
}

func (m *MockProjectReader) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Project), args.Error(1)
}

func (m *MockProjectReader) ListReviews(ctx context.Context, id string) ([]*domain.ReviewResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ReviewResult), args.Error(1)
}

func (m *MockProjectReader) SourceURL(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func setupRouter(maxBody int64) (http.Handler, *MockUploader, *MockReviewGenerator, *MockProjectReader) {
	uploader := new(MockUploader)
	reviewer := new(MockReviewGenerator)
	projects := new(MockProjectReader)

	router := NewRouter(RouterConfig{
		UploadHandler:  handlers.NewUploadHandler(uploader),
		ReviewHandler:  handlers.NewReviewHandler(reviewer),
		ProjectHandler: handlers.NewProjectHandler(projects),
		MaxBodyBytes:   maxBody,
	})
	return router, uploader, reviewer, projects
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router, _, _, _ := setupRouter(0)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "ok", data["status"])
}

func TestRouter_Upload(t *testing.T) {
	router, uploader, _, _ := setupRouter(0)

	uploader.On("Upload", mock.Anything, mock.MatchedBy(func(input service.UploadInput) bool {
		return input.Filename == "app.js" && input.Content == "var x = 1"
	})).Return(&service.UploadResult{ProjectID: "p-1", ChunkCount: 1}, nil)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "app.js")
	require.NoError(t, err)
	_, err = part.Write([]byte("var x = 1"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	uploader.AssertExpectations(t)
}

func TestRouter_Upload_BodyTooLarge(t *testing.T) {
	router, uploader, _, _ := setupRouter(16)

	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(strings.Repeat("x", 64)))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	uploader.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestRouter_Review(t *testing.T) {
	router, _, reviewer, _ := setupRouter(0)

	review := domain.NewReviewResult("r-1", "p-1", "security", []domain.ReviewFinding{}, time.Now().UTC())
	reviewer.On("GenerateReview", mock.Anything, service.GenerateReviewInput{ProjectID: "p-1", Query: "security"}).Return(review, nil)

	req := httptest.NewRequest(http.MethodPost, "/review", strings.NewReader(`{"projectId":"p-1","query":"security"}`))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	reviewer.AssertExpectations(t)
}

func TestRouter_ProjectRoutes(t *testing.T) {
	router, _, _, projects := setupRouter(0)

	project := domain.NewProject("p-1", "demo", "main.go", nil, time.Now().UTC())
	projects.On("ListProjects", mock.Anything, service.ListProjectsInput{Limit: 2}).
		Return(&pagination.PageResult[domain.ProjectSummary]{Items: []domain.ProjectSummary{project.Summary()}}, nil)
	projects.On("GetProject", mock.Anything, "p-1").Return(project, nil)
	projects.On("ListReviews", mock.Anything, "p-1").Return([]*domain.ReviewResult{}, nil)
	projects.On("SourceURL", mock.Anything, "p-1").Return("", domain.ErrSourceNotArchived)

	tests := []struct {
		path       string
		wantStatus int
	}{
		{path: "/projects?limit=2", wantStatus: http.StatusOK},
		{path: "/projects/p-1", wantStatus: http.StatusOK},
		{path: "/projects/p-1/reviews", wantStatus: http.StatusOK},
		{path: "/projects/p-1/source", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
	projects.AssertExpectations(t)
}

func TestRouter_UnknownRoute(t *testing.T) {
	router, _, _, _ := setupRouter(0)

	req := httptest.NewRequest(http.MethodGet, "/knowledge", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
