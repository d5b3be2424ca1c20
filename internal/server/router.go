package server

import (
	"net/http"

	"github.com/cloo-solutions/reposcope/internal/api"
	"github.com/cloo-solutions/reposcope/internal/api/handlers"
	"github.com/cloo-solutions/reposcope/internal/api/middleware"
	"github.com/go-chi/chi/v5"
)

// DefaultMaxBodyBytes is the request body limit when none is configured.
const DefaultMaxBodyBytes int64 = 5 * 1024 * 1024

type RouterConfig struct {
	UploadHandler  *handlers.UploadHandler
	ReviewHandler  *handlers.ReviewHandler
	ProjectHandler *handlers.ProjectHandler
	MaxBodyBytes   int64
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	maxBodyBytes := cfg.MaxBodyBytes
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/upload", cfg.UploadHandler.Upload)
	r.Post("/review", cfg.ReviewHandler.Review)

	r.Route("/projects", func(r chi.Router) {
		r.Get("/", cfg.ProjectHandler.List)
		r.Get("/{id}", cfg.ProjectHandler.Get)
		r.Get("/{id}/reviews", cfg.ProjectHandler.Reviews)
		r.Get("/{id}/source", cfg.ProjectHandler.Source)
	})

	return r
}
