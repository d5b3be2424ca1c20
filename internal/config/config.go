package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "REPOSCOPE"

// Vector backends accepted by VECTOR_BACKEND.
const (
	VectorBackendAuto     = "auto"
	VectorBackendQdrant   = "qdrant"
	VectorBackendPgVector = "pgvector"
	VectorBackendLocal    = "local"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	VectorBackend string `envconfig:"VECTOR_BACKEND" default:"auto"`
	QdrantURL     string `envconfig:"QDRANT_URL"`
	QdrantAPIKey  string `envconfig:"QDRANT_API_KEY"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"reposcope-sources"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`
	OpenAIModel  string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`

	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	IndexPollInterval  time.Duration `envconfig:"INDEX_POLL_INTERVAL" default:"10s"`
	EmbeddingCacheSize int           `envconfig:"EMBEDDING_CACHE_SIZE" default:"1024"`
	MaxUploadBytes     int64         `envconfig:"MAX_UPLOAD_BYTES" default:"5242880"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	backend, err := resolveVectorBackend(cfg.VectorBackend, cfg.QdrantURL)
	if err != nil {
		return nil, err
	}
	cfg.VectorBackend = backend

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// resolveVectorBackend turns "auto" into qdrant when a Qdrant URL is set and
// into local otherwise.
func resolveVectorBackend(backend, qdrantURL string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", VectorBackendAuto:
		if qdrantURL != "" {
			return VectorBackendQdrant, nil
		}
		return VectorBackendLocal, nil
	case VectorBackendQdrant:
		if qdrantURL == "" {
			return "", fmt.Errorf("vector backend %q requires QDRANT_URL", VectorBackendQdrant)
		}
		return VectorBackendQdrant, nil
	case VectorBackendPgVector:
		return VectorBackendPgVector, nil
	case VectorBackendLocal:
		return VectorBackendLocal, nil
	}
	return "", fmt.Errorf("unknown vector backend %q", backend)
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

// HasRemoteIndex reports whether vectors live outside the process.
func (c *Config) HasRemoteIndex() bool {
	return c.VectorBackend == VectorBackendQdrant || c.VectorBackend == VectorBackendPgVector
}
