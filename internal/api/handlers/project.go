package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/cloo-solutions/reposcope/internal/api"
	"github.com/cloo-solutions/reposcope/internal/domain"
	"github.com/cloo-solutions/reposcope/internal/pagination"
	"github.com/cloo-solutions/reposcope/internal/service"
	"github.com/go-chi/chi/v5"
)

type ProjectReader interface {
	ListProjects(ctx context.Context, input service.ListProjectsInput) (*pagination.PageResult[domain.ProjectSummary], error)
	GetProject(ctx context.Context, id string) (*domain.Project, error)
	ListReviews(ctx context.Context, id string) ([]*domain.ReviewResult, error)
	SourceURL(ctx context.Context, id string) (string, error)
}

type ProjectHandler struct {
	svc ProjectReader
}

func NewProjectHandler(svc ProjectReader) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

type SourceURLResponse struct {
	URL string `json:"url"`
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 0 {
			api.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	page, err := h.svc.ListProjects(r.Context(), service.ListProjectsInput{
		Cursor: r.URL.Query().Get("cursor"),
		Limit:  limit,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, page)
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	project, err := h.svc.GetProject(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, project)
}

func (h *ProjectHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	reviews, err := h.svc.ListReviews(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, reviews)
}

func (h *ProjectHandler) Source(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	url, err := h.svc.SourceURL(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, SourceURLResponse{URL: url})
}
