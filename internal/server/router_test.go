package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lessonforge/lessonforge/internal/api/handlers"
	"github.com/lessonforge/lessonforge/internal/domain"
	"github.com/lessonforge/lessonforge/internal/service"
	"github.com/lessonforge/lessonforge/internal/vectorstore"
)

type MockDocumentProcessingService struct {
	mock.Mock
}

func (m *MockDocumentProcessingService) ProcessDocument(ctx context.Context, documentID int64) error {
	args := m.Called(ctx, documentID)
	return args.Error(0)
}

func (m *MockDocumentProcessingService) ResetToPending(ctx context.Context, documentID int64) error {
	args := m.Called(ctx, documentID)
	return args.Error(0)
}

type MockDocumentReader struct {
	mock.Mock
}

func (m *MockDocumentReader) GetWithCourse(ctx context.Context, id int64) (*domain.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

type MockTopicManagementService struct {
	mock.Mock
}

func (m *MockTopicManagementService) GenerateTopics(ctx context.Context, courseID int64, ownerID string) ([]*domain.Topic, error) {
	args := m.Called(ctx, courseID, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Topic), args.Error(1)
}

func (m *MockTopicManagementService) CreateManualTopic(ctx context.Context, courseID int64, ownerID, title string) (*domain.Topic, error) {
	args := m.Called(ctx, courseID, ownerID, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Topic), args.Error(1)
}

func (m *MockTopicManagementService) SetTopicSelection(ctx context.Context, topicID int64, ownerID string, selected bool) (*domain.Topic, error) {
	args := m.Called(ctx, topicID, ownerID, selected)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Topic), args.Error(1)
}

func (m *MockTopicManagementService) DeleteTopic(ctx context.Context, topicID int64, ownerID string) error {
	args := m.Called(ctx, topicID, ownerID)
	return args.Error(0)
}

func (m *MockTopicManagementService) ListTopics(ctx context.Context, courseID int64, ownerID string) ([]*domain.Topic, error) {
	args := m.Called(ctx, courseID, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Topic), args.Error(1)
}

type MockPromptBuildService struct {
	mock.Mock
}

func (m *MockPromptBuildService) BuildPromptForTopic(ctx context.Context, topicID int64, ownerID, userName, userLevel string, topK int) (*service.PromptResult, error) {
	args := m.Called(ctx, topicID, ownerID, userName, userLevel, topK)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PromptResult), args.Error(1)
}

type MockPromptExecService struct {
	mock.Mock
}

func (m *MockPromptExecService) Execute(ctx context.Context, topicID int64, ownerID, userName, userLevel string, topK int) (*service.PromptExecutionResult, error) {
	args := m.Called(ctx, topicID, ownerID, userName, userLevel, topK)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PromptExecutionResult), args.Error(1)
}

type MockCourseSearchService struct {
	mock.Mock
}

func (m *MockCourseSearchService) Search(ctx context.Context, courseID int64, ownerID, query string, topK int) ([]vectorstore.SearchResult, error) {
	args := m.Called(ctx, courseID, ownerID, query, topK)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]vectorstore.SearchResult), args.Error(1)
}

func setupRouter() (http.Handler, *MockDocumentReader, *MockTopicManagementService) {
	docSvc := new(MockDocumentProcessingService)
	docs := new(MockDocumentReader)
	topicSvc := new(MockTopicManagementService)
	promptBuilder := new(MockPromptBuildService)
	promptExec := new(MockPromptExecService)
	searchSvc := new(MockCourseSearchService)

	cfg := RouterConfig{
		DocumentHandler: handlers.NewDocumentHandler(docSvc, docs),
		TopicHandler:    handlers.NewTopicHandler(topicSvc),
		PromptHandler:   handlers.NewPromptHandler(promptBuilder, promptExec),
		SearchHandler:   handlers.NewSearchHandler(searchSvc),
	}

	return NewRouter(cfg), docs, topicSvc
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router, _, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "ok", data["status"])
}

func TestRouter_RoutesRequireIdentity(t *testing.T) {
	router, _, _ := setupRouter()

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/documents/42"},
		{http.MethodPost, "/documents/42/process"},
		{http.MethodPost, "/documents/42/reset"},
		{http.MethodGet, "/courses/7/topics/"},
		{http.MethodPost, "/courses/7/topics/"},
		{http.MethodPost, "/courses/7/topics/generate"},
		{http.MethodDelete, "/topics/11/"},
		{http.MethodPost, "/topics/11/selection"},
		{http.MethodPost, "/topics/11/prompt"},
		{http.MethodPost, "/topics/11/lesson"},
		{http.MethodPost, "/search"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			req := httptest.NewRequest(route.method, route.path, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRouter_WithIdentity(t *testing.T) {
	router, docs, topicSvc := setupRouter()

	doc := &domain.Document{
		ID:       42,
		CourseID: 7,
		Course:   &domain.Course{ID: 7, OwnerID: "user-1"},
		FileName: "notes.txt",
		Status:   domain.DocumentStatusCompleted,
	}
	docs.On("GetWithCourse", mock.Anything, int64(42)).Return(doc, nil)
	topicSvc.On("ListTopics", mock.Anything, int64(7), "user-1").Return([]*domain.Topic{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/documents/42", nil)
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/courses/7/topics/", nil)
	req.Header.Set("X-User-ID", "user-1")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	docs.AssertExpectations(t)
	topicSvc.AssertExpectations(t)
}
