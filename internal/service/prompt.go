package service

import (
	"context"

	"github.com/lessonforge/lessonforge/internal/domain"
)

// DefaultPromptTopK is the reference count used when the caller does
// not ask for one; MaxPromptTopK is the ceiling a caller can request.
const (
	DefaultPromptTopK = 6
	MaxPromptTopK     = 10
)

// PromptBuilderInterface assembles a lesson prompt for a topic
type PromptBuilderInterface interface {
	Build(ctx context.Context, req PromptRequest) (*PromptResult, error)
}

// clampTopK bounds a reference count to [1, MaxPromptTopK], falling
// back to DefaultPromptTopK for non-positive values.
func clampTopK(topK int) int {
	if topK <= 0 {
		return DefaultPromptTopK
	}
	if topK > MaxPromptTopK {
		return MaxPromptTopK
	}
	return topK
}

// PromptService resolves a topic, enforces ownership, and delegates
// prompt assembly to the builder.
type PromptService struct {
	topics      TopicRepositoryInterface
	builder     PromptBuilderInterface
	defaultTopK int
}

// NewPromptService creates a new PromptService instance. defaultTopK is
// the configured reference count used when a caller does not ask for
// one; it is clamped at construction.
func NewPromptService(topics TopicRepositoryInterface, builder PromptBuilderInterface, defaultTopK int) *PromptService {
	return &PromptService{topics: topics, builder: builder, defaultTopK: clampTopK(defaultTopK)}
}

// BuildPromptForTopic assembles the lesson prompt for one topic. A
// non-positive topK falls back to the configured default; anything
// above the ceiling is clamped down to it.
func (s *PromptService) BuildPromptForTopic(ctx context.Context, topicID int64, ownerID, userName, userLevel string, topK int) (*PromptResult, error) {
	if topK <= 0 {
		topK = s.defaultTopK
	}
	if topK > MaxPromptTopK {
		topK = MaxPromptTopK
	}

	topic, err := s.topics.GetWithCourse(ctx, topicID)
	if err != nil {
		return nil, err
	}
	if topic.Course == nil {
		return nil, domain.ErrTopicNotFound
	}
	if topic.Course.OwnerID != ownerID {
		return nil, domain.ErrNotCourseOwner
	}

	return s.builder.Build(ctx, PromptRequest{
		Course:    topic.Course,
		Topic:     topic,
		UserName:  userName,
		UserLevel: userLevel,
		TopK:      topK,
	})
}
