package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/cloo-solutions/reposcope/internal/api"
	"github.com/cloo-solutions/reposcope/internal/service"
)

const multipartMemory = 8 << 20

type Uploader interface {
	Upload(ctx context.Context, input service.UploadInput) (*service.UploadResult, error)
}

type UploadHandler struct {
	svc Uploader
}

func NewUploadHandler(svc Uploader) *UploadHandler {
	return &UploadHandler{svc: svc}
}

// Upload accepts a multipart form with a required "file" part and an
// optional "projectName" field.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if isBodyTooLarge(err) {
			api.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		api.Error(w, http.StatusBadRequest, "file is required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		api.Error(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		if isBodyTooLarge(err) {
			api.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		api.Error(w, http.StatusBadRequest, "failed to read file")
		return
	}

	result, err := h.svc.Upload(r.Context(), service.UploadInput{
		Filename:    header.Filename,
		ProjectName: r.FormValue("projectName"),
		Content:     string(content),
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, result)
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
