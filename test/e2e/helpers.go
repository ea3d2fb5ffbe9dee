//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/lessonforge/lessonforge/internal/api/handlers"
	"github.com/lessonforge/lessonforge/internal/chunking"
	"github.com/lessonforge/lessonforge/internal/domain"
	"github.com/lessonforge/lessonforge/internal/embedding"
	"github.com/lessonforge/lessonforge/internal/extract"
	"github.com/lessonforge/lessonforge/internal/repository"
	"github.com/lessonforge/lessonforge/internal/server"
	"github.com/lessonforge/lessonforge/internal/service"
	"github.com/lessonforge/lessonforge/internal/storage"
	"github.com/lessonforge/lessonforge/internal/testutil"
	"github.com/lessonforge/lessonforge/internal/vectorstore"
)

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	PostgresC    *testutil.PostgresContainer
	Pool         *pgxpool.Pool
	ServerURL    string
	ServerCloser func()
	ContentDir   string
	Content      storage.ContentStore
	Courses      *repository.CourseRepository
	Documents    *repository.DocumentRepository
	HTTPClient   *http.Client
}

// SetupE2EEnv creates a full E2E test environment with a database
// container and an in-process server. The vector store is in-memory and
// the embedder is deterministic, so no external model is needed.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	contentDir, err := os.MkdirTemp("", "lessonforge-e2e-*")
	if err != nil {
		t.Fatalf("failed to create content dir: %v", err)
	}

	content, err := storage.NewLocalStore(contentDir)
	if err != nil {
		t.Fatalf("failed to create local store: %v", err)
	}

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}

	serverURL, serverCloser := startServer(t, pool, content, port)

	return &E2ETestEnv{
		T:            t,
		Ctx:          ctx,
		PostgresC:    pgC,
		Pool:         pool,
		ServerURL:    serverURL,
		ServerCloser: serverCloser,
		ContentDir:   contentDir,
		Content:      content,
		Courses:      repository.NewCourseRepository(pool),
		Documents:    repository.NewDocumentRepository(pool),
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
	if e.ContentDir != "" {
		os.RemoveAll(e.ContentDir)
	}
}

// SeedCourse inserts a course directly through the repository.
func (e *E2ETestEnv) SeedCourse(ownerID, title, description string) *domain.Course {
	course := &domain.Course{
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
	}
	if err := e.Courses.Create(e.Ctx, course); err != nil {
		e.T.Fatalf("failed to seed course: %v", err)
	}
	return course
}

// SeedDocument stores the content bytes and inserts a pending document
// row pointing at them.
func (e *E2ETestEnv) SeedDocument(course *domain.Course, fileName string, content []byte) *domain.Document {
	key := filepath.ToSlash(filepath.Join("uploads", fmt.Sprintf("%d", course.ID), fileName))
	if err := e.Content.Put(e.Ctx, key, "text/plain", bytes.NewReader(content)); err != nil {
		e.T.Fatalf("failed to store content: %v", err)
	}

	doc := &domain.Document{
		CourseID:  course.ID,
		FileName:  fileName,
		StoredKey: key,
		FileSize:  int64(len(content)),
	}
	if err := e.Documents.Create(e.Ctx, doc); err != nil {
		e.T.Fatalf("failed to seed document: %v", err)
	}
	return doc
}

// SeedDocumentWithoutContent inserts a document row whose stored key has
// no backing object.
func (e *E2ETestEnv) SeedDocumentWithoutContent(course *domain.Course, fileName string) *domain.Document {
	doc := &domain.Document{
		CourseID:  course.ID,
		FileName:  fileName,
		StoredKey: filepath.ToSlash(filepath.Join("uploads", fmt.Sprintf("%d", course.ID), fileName)),
		FileSize:  10,
	}
	if err := e.Documents.Create(e.Ctx, doc); err != nil {
		e.T.Fatalf("failed to seed document: %v", err)
	}
	return doc
}

// APIResponse represents a standard API response
type APIResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error,omitempty"`
}

// Get performs a GET request as the given user
func (e *E2ETestEnv) Get(path, userID string) (*APIResponse, error) {
	return e.doRequest("GET", path, nil, userID)
}

// Post performs a POST request as the given user
func (e *E2ETestEnv) Post(path string, body interface{}, userID string) (*APIResponse, error) {
	return e.doRequest("POST", path, body, userID)
}

func (e *E2ETestEnv) doRequest(method, path string, body interface{}, userID string) (*APIResponse, error) {
	url := e.ServerURL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}

	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
		}
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiResp.Error)
	}

	return &apiResp, nil
}

// startServer starts the HTTP server with all handlers
func startServer(t *testing.T, pool *pgxpool.Pool, content storage.ContentStore, port int) (string, func()) {
	documents := repository.NewDocumentRepository(pool)
	chunks := repository.NewChunkRepository(pool)
	courses := repository.NewCourseRepository(pool)
	topics := repository.NewTopicRepository(pool)

	embedder := embedding.NewDeterministicClient(0)
	store := vectorstore.NewMemoryStore(embedder)

	chunker, err := chunking.New(chunking.Config{ChunkSize: 800, Overlap: 120})
	if err != nil {
		t.Fatalf("failed to create chunker: %v", err)
	}

	extractor := extract.NewPlainTextExtractor(content)

	processing := service.NewContentProcessingService(
		documents, chunks, content, extractor, chunker, embedder, store, zap.NewNop(),
	)
	topicSvc := service.NewTopicService(courses, chunks, topics, &fixedTopicExtractor{}, zap.NewNop())
	promptSvc := service.NewPromptService(topics, service.NewStructuredPromptBuilder(store), service.DefaultPromptTopK)
	execSvc := service.NewPromptExecutionService(promptSvc, &echoChatClient{})
	searchSvc := service.NewSearchService(courses, store, service.DefaultPromptTopK)

	router := server.NewRouter(server.RouterConfig{
		DocumentHandler: handlers.NewDocumentHandler(processing, documents),
		TopicHandler:    handlers.NewTopicHandler(topicSvc),
		PromptHandler:   handlers.NewPromptHandler(promptSvc, execSvc),
		SearchHandler:   handlers.NewSearchHandler(searchSvc),
		Logger:          zap.NewNop(),
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Errorf("server failed: %v", err)
		}
	}()

	serverURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	waitForServer(t, serverURL)

	closer := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}

	return serverURL, closer
}

func waitForServer(t *testing.T, serverURL string) {
	client := &http.Client{Timeout: time.Second}
	for i := 0; i < 50; i++ {
		resp, err := client.Get(serverURL + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatal("server did not become ready")
}

func getFreePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// fixedTopicExtractor stands in for the language model and suggests one
// topic per chunk, so tests can assert on topic/chunk linkage without
// network calls.
type fixedTopicExtractor struct{}

func (f *fixedTopicExtractor) ExtractTopics(ctx context.Context, course *domain.Course, chunks []domain.Chunk) ([]domain.TopicSuggestion, error) {
	var suggestions []domain.TopicSuggestion
	for i := range chunks {
		if i >= 3 {
			break
		}
		suggestions = append(suggestions, domain.TopicSuggestion{
			Title:                  fmt.Sprintf("Topic %d of %s", i+1, course.Title),
			Confidence:             0.9 - float64(i)*0.1,
			SupportingChunkIndexes: []int{i},
		})
	}
	return suggestions, nil
}

// echoChatClient returns a canned lesson so prompt execution can be
// exercised end to end.
type echoChatClient struct{}

func (c *echoChatClient) GenerateCompletion(ctx context.Context, prompt string) (string, error) {
	return "Lesson based on prompt of " + fmt.Sprintf("%d", len(prompt)) + " characters", nil
}
