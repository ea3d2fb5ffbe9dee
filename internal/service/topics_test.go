package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lessonforge/lessonforge/internal/domain"
)

// MockCourseRepository is a mock implementation of CourseRepositoryInterface
type MockCourseRepository struct {
	mock.Mock
}

func (m *MockCourseRepository) GetByID(ctx context.Context, id int64) (*domain.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Course), args.Error(1)
}

// MockCourseChunkRepository is a mock implementation of CourseChunkRepositoryInterface
type MockCourseChunkRepository struct {
	mock.Mock
}

func (m *MockCourseChunkRepository) ListByCourse(ctx context.Context, courseID int64) ([]domain.Chunk, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Chunk), args.Error(1)
}

// MockTopicRepository is a mock implementation of TopicRepositoryInterface
type MockTopicRepository struct {
	mock.Mock
}

func (m *MockTopicRepository) CreateBatch(ctx context.Context, topics []*domain.Topic) error {
	args := m.Called(ctx, topics)
	return args.Error(0)
}

func (m *MockTopicRepository) GetWithCourse(ctx context.Context, id int64) (*domain.Topic, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Topic), args.Error(1)
}

func (m *MockTopicRepository) ListByCourse(ctx context.Context, courseID int64) ([]*domain.Topic, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Topic), args.Error(1)
}

func (m *MockTopicRepository) SetSelection(ctx context.Context, id int64, selected bool) error {
	args := m.Called(ctx, id, selected)
	return args.Error(0)
}

func (m *MockTopicRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTopicRepository) DeleteExtractedByCourse(ctx context.Context, courseID int64) error {
	args := m.Called(ctx, courseID)
	return args.Error(0)
}

// MockTopicExtractor is a mock implementation of TopicExtractorInterface
type MockTopicExtractor struct {
	mock.Mock
}

func (m *MockTopicExtractor) ExtractTopics(ctx context.Context, course *domain.Course, chunks []domain.Chunk) ([]domain.TopicSuggestion, error) {
	args := m.Called(ctx, course, chunks)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TopicSuggestion), args.Error(1)
}

type topicFixture struct {
	courses   *MockCourseRepository
	chunks    *MockCourseChunkRepository
	topics    *MockTopicRepository
	extractor *MockTopicExtractor
	service   *TopicService
}

func newTopicFixture(t *testing.T) *topicFixture {
	t.Helper()
	f := &topicFixture{
		courses:   new(MockCourseRepository),
		chunks:    new(MockCourseChunkRepository),
		topics:    new(MockTopicRepository),
		extractor: new(MockTopicExtractor),
	}
	f.service = NewTopicService(f.courses, f.chunks, f.topics, f.extractor, nil)
	return f
}

func ownedCourse() *domain.Course {
	return &domain.Course{ID: 7, OwnerID: "user-1", Title: "Go Basics"}
}

func courseChunks() []domain.Chunk {
	return []domain.Chunk{
		{ID: "c0", CourseID: 7, OrderIndex: 0, RawText: "goroutines"},
		{ID: "c1", CourseID: 7, OrderIndex: 1, RawText: "channels"},
		{ID: "c2", CourseID: 7, OrderIndex: 2, RawText: "select"},
	}
}

func TestGenerateTopics(t *testing.T) {
	f := newTopicFixture(t)
	chunks := courseChunks()

	f.courses.On("GetByID", mock.Anything, int64(7)).Return(ownedCourse(), nil)
	f.chunks.On("ListByCourse", mock.Anything, int64(7)).Return(chunks, nil)
	f.extractor.On("ExtractTopics", mock.Anything, mock.Anything, chunks).Return([]domain.TopicSuggestion{
		{Title: "Concurrency", Confidence: 0.9, SupportingChunkIndexes: []int{0, 2}},
		{Title: "Channels", Confidence: 0.8, SupportingChunkIndexes: []int{1, 99}},
	}, nil)
	f.topics.On("DeleteExtractedByCourse", mock.Anything, int64(7)).Return(nil)
	f.topics.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)

	topics, err := f.service.GenerateTopics(context.Background(), 7, "user-1")

	require.NoError(t, err)
	require.Len(t, topics, 2)

	first := topics[0]
	assert.Equal(t, "Concurrency", first.Title)
	assert.Equal(t, TopicSourceExtracted, first.Source)
	assert.False(t, first.IsManual)
	assert.True(t, first.IsSelected)
	assert.Equal(t, 0.9, first.Confidence)
	assert.Equal(t, 0, first.Order)
	require.Len(t, first.Chunks, 2)
	assert.Equal(t, "c0", first.Chunks[0].ChunkID)
	assert.Equal(t, "c2", first.Chunks[1].ChunkID)
	assert.Equal(t, 0, first.Chunks[0].Order)
	assert.Equal(t, 1, first.Chunks[1].Order)

	// Index 99 points at no chunk and is dropped silently.
	second := topics[1]
	assert.Equal(t, 1, second.Order)
	require.Len(t, second.Chunks, 1)
	assert.Equal(t, "c1", second.Chunks[0].ChunkID)

	f.topics.AssertCalled(t, "DeleteExtractedByCourse", mock.Anything, int64(7))
}

func TestGenerateTopics_NoChunks(t *testing.T) {
	f := newTopicFixture(t)

	f.courses.On("GetByID", mock.Anything, int64(7)).Return(ownedCourse(), nil)
	f.chunks.On("ListByCourse", mock.Anything, int64(7)).Return([]domain.Chunk{}, nil)

	topics, err := f.service.GenerateTopics(context.Background(), 7, "user-1")

	require.NoError(t, err)
	assert.Empty(t, topics)
	f.extractor.AssertNotCalled(t, "ExtractTopics", mock.Anything, mock.Anything, mock.Anything)
	f.topics.AssertNotCalled(t, "DeleteExtractedByCourse", mock.Anything, mock.Anything)
}

func TestGenerateTopics_NotOwner(t *testing.T) {
	f := newTopicFixture(t)

	f.courses.On("GetByID", mock.Anything, int64(7)).Return(ownedCourse(), nil)

	_, err := f.service.GenerateTopics(context.Background(), 7, "someone-else")

	require.ErrorIs(t, err, domain.ErrNotCourseOwner)
	f.chunks.AssertNotCalled(t, "ListByCourse", mock.Anything, mock.Anything)
}

func TestCreateManualTopic(t *testing.T) {
	f := newTopicFixture(t)

	f.courses.On("GetByID", mock.Anything, int64(7)).Return(ownedCourse(), nil)
	f.topics.On("ListByCourse", mock.Anything, int64(7)).Return([]*domain.Topic{{}, {}}, nil)
	f.topics.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)

	topic, err := f.service.CreateManualTopic(context.Background(), 7, "user-1", "Error Handling")

	require.NoError(t, err)
	assert.Equal(t, "Error Handling", topic.Title)
	assert.Equal(t, TopicSourceManual, topic.Source)
	assert.True(t, topic.IsManual)
	assert.True(t, topic.IsSelected)
	assert.Equal(t, 2, topic.Order)
}

func TestCreateManualTopic_InvalidTitle(t *testing.T) {
	f := newTopicFixture(t)

	f.courses.On("GetByID", mock.Anything, int64(7)).Return(ownedCourse(), nil)

	_, err := f.service.CreateManualTopic(context.Background(), 7, "user-1", "   ")
	require.ErrorIs(t, err, domain.ErrEmptyTopicTitle)

	_, err = f.service.CreateManualTopic(context.Background(), 7, "user-1", strings.Repeat("a", 81))
	require.ErrorIs(t, err, domain.ErrTopicTitleTooLong)

	f.topics.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
}

func TestSetTopicSelection(t *testing.T) {
	f := newTopicFixture(t)
	topic := &domain.Topic{ID: 11, CourseID: 7, Course: ownedCourse(), Title: "Concurrency", IsSelected: true}

	f.topics.On("GetWithCourse", mock.Anything, int64(11)).Return(topic, nil)
	f.topics.On("SetSelection", mock.Anything, int64(11), false).Return(nil)

	updated, err := f.service.SetTopicSelection(context.Background(), 11, "user-1", false)

	require.NoError(t, err)
	assert.False(t, updated.IsSelected)
}

func TestSetTopicSelection_NotOwner(t *testing.T) {
	f := newTopicFixture(t)
	topic := &domain.Topic{ID: 11, CourseID: 7, Course: ownedCourse()}

	f.topics.On("GetWithCourse", mock.Anything, int64(11)).Return(topic, nil)

	_, err := f.service.SetTopicSelection(context.Background(), 11, "intruder", true)

	require.ErrorIs(t, err, domain.ErrNotCourseOwner)
	f.topics.AssertNotCalled(t, "SetSelection", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteTopic(t *testing.T) {
	f := newTopicFixture(t)
	topic := &domain.Topic{ID: 11, CourseID: 7, Course: ownedCourse(), Title: "Concurrency"}

	f.topics.On("GetWithCourse", mock.Anything, int64(11)).Return(topic, nil)
	f.topics.On("Delete", mock.Anything, int64(11)).Return(nil)

	err := f.service.DeleteTopic(context.Background(), 11, "user-1")

	require.NoError(t, err)
	f.topics.AssertCalled(t, "Delete", mock.Anything, int64(11))
}

func TestDeleteTopic_NotOwner(t *testing.T) {
	f := newTopicFixture(t)
	topic := &domain.Topic{ID: 11, CourseID: 7, Course: ownedCourse()}

	f.topics.On("GetWithCourse", mock.Anything, int64(11)).Return(topic, nil)

	err := f.service.DeleteTopic(context.Background(), 11, "intruder")

	require.ErrorIs(t, err, domain.ErrNotCourseOwner)
	f.topics.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeleteTopic_NotFound(t *testing.T) {
	f := newTopicFixture(t)

	f.topics.On("GetWithCourse", mock.Anything, int64(404)).Return(nil, domain.ErrTopicNotFound)

	err := f.service.DeleteTopic(context.Background(), 404, "user-1")

	require.ErrorIs(t, err, domain.ErrTopicNotFound)
}
