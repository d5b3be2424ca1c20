package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloo-solutions/reposcope/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEnvelope[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestJSON_WritesBodyAndContentType(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, http.StatusAccepted, map[string]int{"chunks": 3})

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, 3, decodeEnvelope[map[string]int](t, w)["chunks"])
}

func TestJSON_NilBodyWritesHeadersOnly(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, http.StatusNoContent, nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestSuccess_WrapsInDataEnvelope(t *testing.T) {
	w := httptest.NewRecorder()

	Success(w, http.StatusCreated, domain.ProjectSummary{ID: "p1", Name: "demo"})

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decodeEnvelope[struct {
		Data domain.ProjectSummary `json:"data"`
	}](t, w)
	assert.Equal(t, "p1", body.Data.ID)
	assert.Equal(t, "demo", body.Data.Name)
}

func TestError_WrapsInErrorEnvelope(t *testing.T) {
	w := httptest.NewRecorder()

	Error(w, http.StatusBadRequest, "projectId is required")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "projectId is required", decodeEnvelope[ErrorResponse](t, w).Error)
}

func TestDomainErrorToHTTP(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, http.StatusOK},
		{"validation error", domain.NewDomainError(domain.ErrCodeValidation, "invalid"), http.StatusBadRequest},
		{"not found error", domain.ErrProjectNotFound, http.StatusNotFound},
		{"wrapped not found error", fmt.Errorf("load: %w", domain.ErrProjectNotFound), http.StatusNotFound},
		{"already exists error", domain.ErrProjectAlreadyExists, http.StatusConflict},
		{"unavailable error", domain.ErrStorageNotConfigured, http.StatusServiceUnavailable},
		{"invalid operation", domain.NewDomainError(domain.ErrCodeInvalidOperation, "nope"), http.StatusBadRequest},
		{"empty content", domain.ErrEmptyContent, http.StatusBadRequest},
		{"internal error", domain.NewDomainError(domain.ErrCodeInternalError, "internal"), http.StatusInternalServerError},
		{"unknown domain error", domain.NewDomainError("UNKNOWN", "unknown"), http.StatusInternalServerError},
		{"non-domain error", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DomainErrorToHTTP(tt.err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestHandleError(t *testing.T) {
	w := httptest.NewRecorder()

	HandleError(w, domain.ErrProjectNotFound)

	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, "project not found", decodeEnvelope[ErrorResponse](t, w).Error)
}

func TestHandleError_HidesInternalDetails(t *testing.T) {
	w := httptest.NewRecorder()

	HandleError(w, errors.New("pq: connection refused to 10.0.0.3"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	assert.Equal(t, internalErrorMessage, decodeEnvelope[ErrorResponse](t, w).Error)
}
