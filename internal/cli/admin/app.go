package admin

import (
	"context"
	"fmt"
	"log"

	"github.com/cloo-solutions/reposcope/internal/config"
	"github.com/cloo-solutions/reposcope/internal/database"
	"github.com/cloo-solutions/reposcope/internal/jobs"
	"github.com/cloo-solutions/reposcope/internal/openai"
	"github.com/cloo-solutions/reposcope/internal/repository"
	"github.com/cloo-solutions/reposcope/internal/service"
	"github.com/cloo-solutions/reposcope/internal/storage"
	"github.com/cloo-solutions/reposcope/internal/telemetry"
	"github.com/cloo-solutions/reposcope/internal/vectorindex"
	"github.com/jackc/pgx/v5/pgxpool"
)

// app holds the services shared by the HTTP server and the MCP server.
type app struct {
	projects *service.ProjectService
	reviews  *service.ReviewService
	ingest   *service.IngestService
	worker   *jobs.Worker
}

func newApp(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) (*app, error) {
	projectRepo := repository.NewProjectRepository(pool)
	indexJobRepo := repository.NewIndexJobRepository(pool)

	index := vectorindex.NewFallbackIndex(newRemoteIndex(cfg, pool))
	log.Printf("vector backend: %s", cfg.VectorBackend)

	archive, err := newSourceArchive(ctx, cfg)
	if err != nil {
		return nil, err
	}

	embedder, err := service.NewQueryEmbedder(cfg.EmbeddingCacheSize)
	if err != nil {
		return nil, err
	}

	var advisor service.ReviewAdvisor
	if cfg.HasOpenAI() {
		chat := openai.NewClientWithConfig(openai.Config{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
		})
		advisor = service.NewLLMAdvisor(chat)
		log.Printf("review advisor enabled (model %s)", chat.Model())
	}

	a := &app{
		projects: service.NewProjectService(projectRepo, archive),
		reviews:  service.NewReviewService(projectRepo, embedder, index, advisor),
		ingest:   service.NewIngestService(repository.NewTxRunner(pool), indexJobRepo, index, archive),
	}

	if index.HasRemote() {
		processor := jobs.NewIndexWorker(indexJobRepo, projectRepo, index)
		a.worker = jobs.NewWorker(processor, cfg.IndexPollInterval)
	}

	return a, nil
}

// newRemoteIndex returns the configured out-of-process index, or nil for the
// local backend.
func newRemoteIndex(cfg *config.Config, pool *pgxpool.Pool) vectorindex.VectorIndex {
	switch cfg.VectorBackend {
	case config.VectorBackendQdrant:
		return vectorindex.NewRemoteVectorIndex(vectorindex.QdrantConfig{
			URL:    cfg.QdrantURL,
			APIKey: cfg.QdrantAPIKey,
		})
	case config.VectorBackendPgVector:
		return vectorindex.NewPgVectorIndex(pool)
	}
	return nil
}

// newSourceArchive returns nil when S3 is not configured.
func newSourceArchive(ctx context.Context, cfg *config.Config) (service.SourceArchive, error) {
	if !cfg.HasS3() {
		return nil, nil
	}

	client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKey,
		SecretAccessKey: cfg.S3SecretKey,
		Bucket:          cfg.S3Bucket,
		UsePathStyle:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	if err := client.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure S3 bucket: %w", err)
	}
	log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
	return client, nil
}

// initTelemetry starts Sentry when a DSN is configured. The returned function
// flushes pending events and is always safe to call.
func initTelemetry(cfg *config.Config) func() {
	if cfg.SentryDSN == "" {
		return func() {}
	}

	sampleRate := 0.1
	if cfg.Environment == "development" {
		sampleRate = 1.0
	}

	shutdown, err := telemetry.Init(telemetry.Config{
		DSN:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		TracesSampleRate: sampleRate,
		Debug:            cfg.Debug,
	})
	if err != nil {
		log.Printf("telemetry init failed (continuing without tracing): %v", err)
		return func() {}
	}
	return shutdown
}

func connect(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("connected to database")
	return pool, nil
}
