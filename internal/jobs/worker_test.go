package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/lessonforge/lessonforge/internal/domain"
)

// MockJobProcessor is a mock implementation of JobProcessor
type MockJobProcessor struct {
	mock.Mock
}

func (m *MockJobProcessor) ProcessJobs(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockPendingDocumentRepository is a mock implementation of PendingDocumentRepository
type MockPendingDocumentRepository struct {
	mock.Mock
}

func (m *MockPendingDocumentRepository) ListPending(ctx context.Context, limit int) ([]*domain.Document, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Document), args.Error(1)
}

// MockDocumentProcessor is a mock implementation of DocumentProcessor
type MockDocumentProcessor struct {
	mock.Mock
}

func (m *MockDocumentProcessor) ProcessDocument(ctx context.Context, documentID int64) error {
	args := m.Called(ctx, documentID)
	return args.Error(0)
}

// TestWorker_StartStop tests the worker start and stop functionality
func TestWorker_StartStop(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(nil)

	worker := NewWorker(mockProcessor, 100*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(250 * time.Millisecond)

	worker.Stop()
	wg.Wait()

	mockProcessor.AssertCalled(t, "ProcessJobs", mock.Anything)
}

// TestWorker_ContextCancellation tests worker stops on context cancellation
func TestWorker_ContextCancellation(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(nil)

	worker := NewWorker(mockProcessor, 100*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(150 * time.Millisecond)

	cancel()
	wg.Wait()

	mockProcessor.AssertCalled(t, "ProcessJobs", mock.Anything)
}

// TestDocumentWorker_NoPendingDocuments tests when there is nothing to pick up
func TestDocumentWorker_NoPendingDocuments(t *testing.T) {
	mockRepo := new(MockPendingDocumentRepository)
	mockProcessor := new(MockDocumentProcessor)

	mockRepo.On("ListPending", mock.Anything, DefaultBatchSize).Return([]*domain.Document{}, nil)

	worker := NewDocumentWorker(mockRepo, mockProcessor, nil)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockProcessor.AssertNotCalled(t, "ProcessDocument", mock.Anything, mock.Anything)
}

// TestDocumentWorker_ProcessesBatch tests that every pending document is handed
// to the pipeline even when one of them errors
func TestDocumentWorker_ProcessesBatch(t *testing.T) {
	mockRepo := new(MockPendingDocumentRepository)
	mockProcessor := new(MockDocumentProcessor)

	docs := []*domain.Document{
		{ID: 1, Status: domain.DocumentStatusPending},
		{ID: 2, Status: domain.DocumentStatusPending},
		{ID: 3, Status: domain.DocumentStatusPending},
	}

	mockRepo.On("ListPending", mock.Anything, DefaultBatchSize).Return(docs, nil)
	mockProcessor.On("ProcessDocument", mock.Anything, int64(1)).Return(nil)
	mockProcessor.On("ProcessDocument", mock.Anything, int64(2)).Return(errors.New("transient failure"))
	mockProcessor.On("ProcessDocument", mock.Anything, int64(3)).Return(nil)

	worker := NewDocumentWorker(mockRepo, mockProcessor, nil)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockProcessor.AssertExpectations(t)
}

// TestDocumentWorker_StopsOnCancellation tests that a cancelled context ends the batch
func TestDocumentWorker_StopsOnCancellation(t *testing.T) {
	mockRepo := new(MockPendingDocumentRepository)
	mockProcessor := new(MockDocumentProcessor)

	docs := []*domain.Document{
		{ID: 1, Status: domain.DocumentStatusPending},
		{ID: 2, Status: domain.DocumentStatusPending},
	}

	mockRepo.On("ListPending", mock.Anything, DefaultBatchSize).Return(docs, nil)
	mockProcessor.On("ProcessDocument", mock.Anything, int64(1)).Return(context.Canceled)

	worker := NewDocumentWorker(mockRepo, mockProcessor, nil)
	err := worker.ProcessJobs(context.Background())

	assert.ErrorIs(t, err, context.Canceled)
	mockProcessor.AssertNotCalled(t, "ProcessDocument", mock.Anything, int64(2))
}

// TestDocumentWorker_RepositoryError tests repository error handling
func TestDocumentWorker_RepositoryError(t *testing.T) {
	mockRepo := new(MockPendingDocumentRepository)
	mockProcessor := new(MockDocumentProcessor)

	mockRepo.On("ListPending", mock.Anything, DefaultBatchSize).Return(nil, errors.New("database error"))

	worker := NewDocumentWorker(mockRepo, mockProcessor, nil)
	err := worker.ProcessJobs(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch pending documents")
	mockRepo.AssertExpectations(t)
}
