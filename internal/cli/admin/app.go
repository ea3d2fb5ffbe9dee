// Package admin holds the lessonforged subcommands: the API server and
// the operational document/topic commands.
package admin

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	goopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/lessonforge/lessonforge/internal/chunking"
	"github.com/lessonforge/lessonforge/internal/config"
	"github.com/lessonforge/lessonforge/internal/domain"
	"github.com/lessonforge/lessonforge/internal/embedding"
	"github.com/lessonforge/lessonforge/internal/extract"
	"github.com/lessonforge/lessonforge/internal/openai"
	"github.com/lessonforge/lessonforge/internal/repository"
	"github.com/lessonforge/lessonforge/internal/service"
	"github.com/lessonforge/lessonforge/internal/storage"
	"github.com/lessonforge/lessonforge/internal/vectorstore"
)

// app wires the repositories, backends, and services from configuration.
// Backend selection happens once here; everything downstream sees only
// the interfaces.
type app struct {
	cfg    *config.Config
	pool   *pgxpool.Pool
	logger *zap.Logger

	documents *repository.DocumentRepository
	chunks    *repository.ChunkRepository
	courses   *repository.CourseRepository
	topics    *repository.TopicRepository

	content  storage.ContentStore
	store    vectorstore.Store
	embedder vectorstore.Embedder

	processing *service.ContentProcessingService
	topicSvc   *service.TopicService
	promptSvc  *service.PromptService
	execSvc    *service.PromptExecutionService
	searchSvc  *service.SearchService

	closers []func()
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	a := &app{
		cfg:       cfg,
		pool:      pool,
		logger:    logger,
		documents: repository.NewDocumentRepository(pool),
		chunks:    repository.NewChunkRepository(pool),
		courses:   repository.NewCourseRepository(pool),
		topics:    repository.NewTopicRepository(pool),
	}
	a.closers = append(a.closers, pool.Close)

	if err := a.wireContentStore(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.wireEmbedder(); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.wireVectorStore(); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.wireServices(); err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	_ = a.logger.Sync()
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func (a *app) wireContentStore(ctx context.Context) error {
	switch a.cfg.StorageBackend {
	case "s3":
		if !a.cfg.HasS3() {
			return fmt.Errorf("storage backend s3 requires S3_ENDPOINT, S3_ACCESS_KEY_ID, S3_SECRET_ACCESS_KEY")
		}
		client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        a.cfg.S3Endpoint,
			Region:          a.cfg.S3Region,
			AccessKeyID:     a.cfg.S3AccessKey,
			SecretAccessKey: a.cfg.S3SecretKey,
			Bucket:          a.cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		a.logger.Info("S3 bucket ready", zap.String("bucket", a.cfg.S3Bucket))
		a.content = client
		return nil
	case "local":
		store, err := storage.NewLocalStore(a.cfg.LocalStorageRoot)
		if err != nil {
			return fmt.Errorf("failed to open local content store: %w", err)
		}
		a.content = store
		return nil
	default:
		return fmt.Errorf("unknown storage backend %q", a.cfg.StorageBackend)
	}
}

func (a *app) wireEmbedder() error {
	switch a.cfg.EmbeddingBackend {
	case "deterministic":
		a.embedder = embedding.NewDeterministicClient(0)
		return nil
	case "openai":
		if !a.cfg.HasOpenAI() {
			return fmt.Errorf("embedding backend openai requires OPENAI_API_KEY")
		}
		a.embedder = openai.NewClientWithConfig(openai.Config{
			APIKey:         a.cfg.OpenAIAPIKey,
			BaseURL:        a.cfg.OpenAIEndpoint,
			EmbeddingModel: goopenai.EmbeddingModel(a.cfg.OpenAIModel),
		})
		return nil
	default:
		return fmt.Errorf("unknown embedding backend %q", a.cfg.EmbeddingBackend)
	}
}

func (a *app) wireVectorStore() error {
	switch a.cfg.VectorBackend {
	case "memory":
		a.store = vectorstore.NewMemoryStore(a.embedder)
		return nil
	case "pgvector":
		a.store = vectorstore.NewPgvectorStore(a.pool, a.embedder)
		return nil
	case "qdrant":
		store, err := vectorstore.NewQdrantStore(vectorstore.QdrantConfig{
			Host:       a.cfg.QdrantHost,
			Port:       a.cfg.QdrantPort,
			APIKey:     a.cfg.QdrantAPIKey,
			Collection: a.cfg.QdrantCollection,
			VectorSize: a.cfg.QdrantVectorSize,
		}, a.embedder)
		if err != nil {
			return fmt.Errorf("failed to connect to qdrant: %w", err)
		}
		a.closers = append(a.closers, func() { _ = store.Close() })
		a.store = store
		return nil
	default:
		return fmt.Errorf("unknown vector backend %q", a.cfg.VectorBackend)
	}
}

func (a *app) wireServices() error {
	chunker, err := chunking.New(chunking.Config{
		ChunkSize: a.cfg.ChunkSize,
		Overlap:   a.cfg.ChunkOverlap,
	})
	if err != nil {
		return fmt.Errorf("invalid chunking configuration: %w", err)
	}

	extractor := extract.NewPlainTextExtractor(a.content)

	a.processing = service.NewContentProcessingService(
		a.documents, a.chunks, a.content, extractor, chunker, a.embedder, a.store, a.logger,
	)

	var topicExtractor service.TopicExtractorInterface
	var chat service.ChatClientInterface
	if a.cfg.HasOpenAI() {
		topicExtractor, err = openai.NewTopicExtractor(openai.TopicExtractorConfig{
			APIKey:      a.cfg.OpenAIAPIKey,
			BaseURL:     a.cfg.OpenAIEndpoint,
			Model:       a.cfg.OpenAIChatModel,
			Temperature: a.cfg.OpenAIChatTemperature,
		})
		if err != nil {
			return fmt.Errorf("failed to create topic extractor: %w", err)
		}
		chatTemp := a.cfg.OpenAIChatTemperature
		chatClient, err := openai.NewChatClient(openai.ChatConfig{
			APIKey:          a.cfg.OpenAIAPIKey,
			BaseURL:         a.cfg.OpenAIEndpoint,
			ChatModel:       a.cfg.OpenAIChatModel,
			Temperature:     a.cfg.OpenAITemperature,
			ChatTemperature: &chatTemp,
		})
		if err != nil {
			return fmt.Errorf("failed to create chat client: %w", err)
		}
		chat = chatClient
	} else {
		topicExtractor = &unconfiguredTopicExtractor{}
		chat = &unconfiguredChatClient{}
	}

	a.topicSvc = service.NewTopicService(a.courses, a.chunks, a.topics, topicExtractor, a.logger)
	a.promptSvc = service.NewPromptService(a.topics, service.NewStructuredPromptBuilder(a.store), a.cfg.DefaultTopK)
	a.execSvc = service.NewPromptExecutionService(a.promptSvc, chat)
	a.searchSvc = service.NewSearchService(a.courses, a.store, a.cfg.DefaultTopK)

	return nil
}

// unconfiguredTopicExtractor stands in when no language-model credential
// is configured; prompt assembly still works, extraction does not.
type unconfiguredTopicExtractor struct{}

func (e *unconfiguredTopicExtractor) ExtractTopics(ctx context.Context, course *domain.Course, chunks []domain.Chunk) ([]domain.TopicSuggestion, error) {
	return nil, fmt.Errorf("topic extraction not configured: OPENAI_API_KEY required")
}

type unconfiguredChatClient struct{}

func (c *unconfiguredChatClient) GenerateCompletion(ctx context.Context, prompt string) (string, error) {
	return "", fmt.Errorf("prompt execution not configured: OPENAI_API_KEY required")
}
