package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Backend selectors, resolved once at wiring time.
	VectorBackend    string `envconfig:"VECTOR_BACKEND" default:"memory"`     // memory, qdrant, pgvector
	EmbeddingBackend string `envconfig:"EMBEDDING_BACKEND" default:"openai"`  // openai, deterministic
	StorageBackend   string `envconfig:"STORAGE_BACKEND" default:"local"`     // local, s3

	LocalStorageRoot string `envconfig:"LOCAL_STORAGE_ROOT" default:"./data/content"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"lessonforge-content"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	OpenAIAPIKey          string  `envconfig:"OPENAI_API_KEY"`
	OpenAIEndpoint        string  `envconfig:"OPENAI_ENDPOINT"`
	OpenAIModel           string  `envconfig:"OPENAI_EMBEDDING_MODEL" default:"text-embedding-3-small"`
	OpenAIChatModel       string  `envconfig:"OPENAI_CHAT_MODEL" default:"gpt-4o-mini"`
	OpenAITemperature     float32 `envconfig:"OPENAI_TEMPERATURE" default:"0.2"`
	OpenAIChatTemperature float32 `envconfig:"OPENAI_CHAT_TEMPERATURE" default:"0.3"`

	QdrantHost       string `envconfig:"QDRANT_HOST" default:"localhost"`
	QdrantPort       int    `envconfig:"QDRANT_PORT" default:"6334"`
	QdrantAPIKey     string `envconfig:"QDRANT_API_KEY"`
	QdrantCollection string `envconfig:"QDRANT_COLLECTION" default:"lessonforge_chunks"`
	QdrantVectorSize int    `envconfig:"QDRANT_VECTOR_SIZE" default:"1536"`

	ChunkSize    int `envconfig:"CHUNK_SIZE" default:"800"`
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"120"`
	DefaultTopK  int `envconfig:"DEFAULT_TOP_K" default:"6"`

	WorkerPollSeconds int `envconfig:"WORKER_POLL_SECONDS" default:"10"`

	SentryDSN         string  `envconfig:"SENTRY_DSN"`
	SentryEnvironment string  `envconfig:"SENTRY_ENVIRONMENT"`
	SentrySampleRate  float64 `envconfig:"SENTRY_TRACES_SAMPLE_RATE" default:"1.0"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("LESSONFORGE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasSentry() bool {
	return c.SentryDSN != ""
}
