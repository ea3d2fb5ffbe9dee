package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/lessonforge/lessonforge/internal/domain"
)

// TopicSourceExtracted labels topics produced by the language model;
// TopicSourceManual labels topics the course owner created directly.
const (
	TopicSourceExtracted = "ai"
	TopicSourceManual    = "manual"
)

// CourseRepositoryInterface defines the repository interface for course lookups
type CourseRepositoryInterface interface {
	GetByID(ctx context.Context, id int64) (*domain.Course, error)
}

// CourseChunkRepositoryInterface lists a course's stored chunks
type CourseChunkRepositoryInterface interface {
	ListByCourse(ctx context.Context, courseID int64) ([]domain.Chunk, error)
}

// TopicRepositoryInterface defines the repository interface for topic persistence
type TopicRepositoryInterface interface {
	CreateBatch(ctx context.Context, topics []*domain.Topic) error
	GetWithCourse(ctx context.Context, id int64) (*domain.Topic, error)
	ListByCourse(ctx context.Context, courseID int64) ([]*domain.Topic, error)
	SetSelection(ctx context.Context, id int64, selected bool) error
	Delete(ctx context.Context, id int64) error
	DeleteExtractedByCourse(ctx context.Context, courseID int64) error
}

// TopicExtractorInterface proposes topic suggestions from course chunks
type TopicExtractorInterface interface {
	ExtractTopics(ctx context.Context, course *domain.Course, chunks []domain.Chunk) ([]domain.TopicSuggestion, error)
}

// TopicService manages a course's durable study topics: generated ones
// from the extractor and manual ones from the owner.
type TopicService struct {
	courses   CourseRepositoryInterface
	chunks    CourseChunkRepositoryInterface
	topics    TopicRepositoryInterface
	extractor TopicExtractorInterface
	logger    *zap.Logger
}

// NewTopicService creates a new TopicService instance
func NewTopicService(
	courses CourseRepositoryInterface,
	chunks CourseChunkRepositoryInterface,
	topics TopicRepositoryInterface,
	extractor TopicExtractorInterface,
	logger *zap.Logger,
) *TopicService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TopicService{
		courses:   courses,
		chunks:    chunks,
		topics:    topics,
		extractor: extractor,
		logger:    logger,
	}
}

// GenerateTopics extracts suggestions from the course's chunks and
// persists them, replacing previously extracted topics. Manual topics
// are untouched. A course with no processed content yields no topics
// and no model call.
func (s *TopicService) GenerateTopics(ctx context.Context, courseID int64, ownerID string) ([]*domain.Topic, error) {
	course, err := s.ownedCourse(ctx, courseID, ownerID)
	if err != nil {
		return nil, err
	}

	chunks, err := s.chunks.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return []*domain.Topic{}, nil
	}

	suggestions, err := s.extractor.ExtractTopics(ctx, course, chunks)
	if err != nil {
		return nil, fmt.Errorf("extracting topics for course %d: %w", courseID, err)
	}

	topics := suggestionsToTopics(courseID, suggestions, chunks)

	if err := s.topics.DeleteExtractedByCourse(ctx, courseID); err != nil {
		return nil, err
	}
	if err := s.topics.CreateBatch(ctx, topics); err != nil {
		return nil, err
	}

	s.logger.Info("generated topics",
		zap.Int64("courseId", courseID),
		zap.Int("count", len(topics)))
	return topics, nil
}

// CreateManualTopic adds an owner-authored topic at the end of the
// course's topic list.
func (s *TopicService) CreateManualTopic(ctx context.Context, courseID int64, ownerID, title string) (*domain.Topic, error) {
	if _, err := s.ownedCourse(ctx, courseID, ownerID); err != nil {
		return nil, err
	}
	if err := domain.ValidateTopicTitle(title); err != nil {
		return nil, err
	}

	existing, err := s.topics.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	topic := &domain.Topic{
		CourseID:   courseID,
		Title:      title,
		Source:     TopicSourceManual,
		IsManual:   true,
		IsSelected: true,
		Order:      len(existing),
	}
	if err := s.topics.CreateBatch(ctx, []*domain.Topic{topic}); err != nil {
		return nil, err
	}
	return topic, nil
}

// SetTopicSelection toggles whether a topic is part of the study set.
func (s *TopicService) SetTopicSelection(ctx context.Context, topicID int64, ownerID string, selected bool) (*domain.Topic, error) {
	topic, err := s.ownedTopic(ctx, topicID, ownerID)
	if err != nil {
		return nil, err
	}

	if err := s.topics.SetSelection(ctx, topicID, selected); err != nil {
		return nil, err
	}
	topic.IsSelected = selected
	return topic, nil
}

// DeleteTopic removes a topic and its chunk links.
func (s *TopicService) DeleteTopic(ctx context.Context, topicID int64, ownerID string) error {
	if _, err := s.ownedTopic(ctx, topicID, ownerID); err != nil {
		return err
	}
	return s.topics.Delete(ctx, topicID)
}

// ListTopics returns the course's topics in stored order.
func (s *TopicService) ListTopics(ctx context.Context, courseID int64, ownerID string) ([]*domain.Topic, error) {
	if _, err := s.ownedCourse(ctx, courseID, ownerID); err != nil {
		return nil, err
	}
	return s.topics.ListByCourse(ctx, courseID)
}

func (s *TopicService) ownedCourse(ctx context.Context, courseID int64, ownerID string) (*domain.Course, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course.OwnerID != ownerID {
		return nil, domain.ErrNotCourseOwner
	}
	return course, nil
}

func (s *TopicService) ownedTopic(ctx context.Context, topicID int64, ownerID string) (*domain.Topic, error) {
	topic, err := s.topics.GetWithCourse(ctx, topicID)
	if err != nil {
		return nil, err
	}
	if topic.Course == nil || topic.Course.OwnerID != ownerID {
		return nil, domain.ErrNotCourseOwner
	}
	return topic, nil
}

// suggestionsToTopics maps extractor output onto durable topics. The
// supporting chunk indexes refer to the order indexes the extractor put
// in its prompt, so they resolve against the same ordered sample.
func suggestionsToTopics(courseID int64, suggestions []domain.TopicSuggestion, chunks []domain.Chunk) []*domain.Topic {
	byOrderIndex := make(map[int]domain.Chunk, len(chunks))
	ordered := make([]domain.Chunk, len(chunks))
	copy(ordered, chunks)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].OrderIndex < ordered[j].OrderIndex
	})
	for _, chunk := range ordered {
		if _, seen := byOrderIndex[chunk.OrderIndex]; !seen {
			byOrderIndex[chunk.OrderIndex] = chunk
		}
	}

	topics := make([]*domain.Topic, 0, len(suggestions))
	for i, suggestion := range suggestions {
		topic := &domain.Topic{
			CourseID:   courseID,
			Title:      suggestion.Title,
			Source:     TopicSourceExtracted,
			IsSelected: true,
			Confidence: suggestion.Confidence,
			Order:      i,
		}
		for pos, index := range suggestion.SupportingChunkIndexes {
			chunk, ok := byOrderIndex[index]
			if !ok {
				continue
			}
			topic.Chunks = append(topic.Chunks, domain.TopicChunk{
				ChunkID:   chunk.ID,
				RawText:   chunk.RawText,
				Relevance: suggestion.Confidence,
				Order:     pos,
			})
		}
		topics = append(topics, topic)
	}
	return topics
}
