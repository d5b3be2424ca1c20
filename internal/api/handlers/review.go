package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/cloo-solutions/reposcope/internal/api"
	"github.com/cloo-solutions/reposcope/internal/domain"
	"github.com/cloo-solutions/reposcope/internal/service"
)

type ReviewGenerator interface {
	GenerateReview(ctx context.Context, input service.GenerateReviewInput) (*domain.ReviewResult, error)
}

type ReviewHandler struct {
	svc ReviewGenerator
}

func NewReviewHandler(svc ReviewGenerator) *ReviewHandler {
	return &ReviewHandler{svc: svc}
}

type ReviewRequest struct {
	ProjectID string `json:"projectId"`
	Query     string `json:"query"`
}

func (h *ReviewHandler) Review(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	projectID := strings.TrimSpace(req.ProjectID)
	if projectID == "" {
		api.Error(w, http.StatusBadRequest, "projectId is required")
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		query = service.HealthReviewQuery
	}

	review, err := h.svc.GenerateReview(r.Context(), service.GenerateReviewInput{
		ProjectID: projectID,
		Query:     query,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, review)
}
