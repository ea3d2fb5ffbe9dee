package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LESSONFORGE_DATABASE_URL", "postgres://localhost:5432/lessonforge")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "memory", cfg.VectorBackend)
	assert.Equal(t, "openai", cfg.EmbeddingBackend)
	assert.Equal(t, "local", cfg.StorageBackend)
	assert.Equal(t, 800, cfg.ChunkSize)
	assert.Equal(t, 120, cfg.ChunkOverlap)
	assert.Equal(t, 6, cfg.DefaultTopK)
	assert.Equal(t, "text-embedding-3-small", cfg.OpenAIModel)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIChatModel)
	assert.Equal(t, 1536, cfg.QdrantVectorSize)
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("LESSONFORGE_DATABASE_URL", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("LESSONFORGE_DATABASE_URL", "postgres://localhost:5432/lessonforge")
	t.Setenv("LESSONFORGE_VECTOR_BACKEND", "qdrant")
	t.Setenv("LESSONFORGE_EMBEDDING_BACKEND", "deterministic")
	t.Setenv("LESSONFORGE_CHUNK_SIZE", "400")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "qdrant", cfg.VectorBackend)
	assert.Equal(t, "deterministic", cfg.EmbeddingBackend)
	assert.Equal(t, 400, cfg.ChunkSize)
}

func TestHasPredicates(t *testing.T) {
	cfg := &Config{}
	assert.False(t, cfg.HasS3())
	assert.False(t, cfg.HasOpenAI())
	assert.False(t, cfg.HasSentry())

	cfg.S3Endpoint = "http://localhost:9000"
	cfg.S3AccessKey = "key"
	cfg.S3SecretKey = "secret"
	cfg.OpenAIAPIKey = "sk-test"
	cfg.SentryDSN = "https://key@sentry.example.com/1"

	assert.True(t, cfg.HasS3())
	assert.True(t, cfg.HasOpenAI())
	assert.True(t, cfg.HasSentry())
}
