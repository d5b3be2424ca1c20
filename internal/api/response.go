package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/cloo-solutions/reposcope/internal/domain"
)

const internalErrorMessage = "internal server error"

// SuccessResponse is the {"data": ...} envelope.
type SuccessResponse struct {
	Data any `json:"data"`
}

// ErrorResponse is the {"error": "..."} envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

var statusByCode = map[string]int{
	domain.ErrCodeValidation:       http.StatusBadRequest,
	domain.ErrCodeInvalidOperation: http.StatusBadRequest,
	domain.ErrCodeNotFound:         http.StatusNotFound,
	domain.ErrCodeAlreadyExists:    http.StatusConflict,
	domain.ErrCodeUnavailable:      http.StatusServiceUnavailable,
	domain.ErrCodeInternalError:    http.StatusInternalServerError,
}

// JSON encodes body with the given status. A nil body writes headers only.
func JSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func Success(w http.ResponseWriter, status int, data any) {
	JSON(w, status, SuccessResponse{Data: data})
}

func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

// DomainErrorToHTTP returns 200 for nil, the mapped status for a known
// domain error code and 500 for everything else.
func DomainErrorToHTTP(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		if status, ok := statusByCode[domainErr.Code]; ok {
			return status
		}
	}
	return http.StatusInternalServerError
}

// HandleError writes err as an error envelope. Only domain error messages
// reach the client; other errors are logged and replaced.
func HandleError(w http.ResponseWriter, err error) {
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		Error(w, DomainErrorToHTTP(err), domainErr.Message)
		return
	}

	log.Printf("internal error: %v", err)
	Error(w, http.StatusInternalServerError, internalErrorMessage)
}
