package service

import (
	"context"
	"strings"

	"github.com/lessonforge/lessonforge/internal/domain"
	"github.com/lessonforge/lessonforge/internal/vectorstore"
)

// SearchService runs owner-checked semantic search over a course's
// indexed content.
type SearchService struct {
	courses     CourseRepositoryInterface
	store       vectorstore.Store
	defaultTopK int
}

// NewSearchService creates a new SearchService instance. defaultTopK is
// the configured result count used when a caller does not ask for one;
// it is clamped at construction.
func NewSearchService(courses CourseRepositoryInterface, store vectorstore.Store, defaultTopK int) *SearchService {
	return &SearchService{courses: courses, store: store, defaultTopK: clampTopK(defaultTopK)}
}

// Search returns the most similar chunks for a query, scoped to one
// course. topK follows the prompt clamp rules.
func (s *SearchService) Search(ctx context.Context, courseID int64, ownerID, query string, topK int) ([]vectorstore.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrEmptyQuery
	}
	if topK <= 0 {
		topK = s.defaultTopK
	}
	if topK > MaxPromptTopK {
		topK = MaxPromptTopK
	}

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course.OwnerID != ownerID {
		return nil, domain.ErrNotCourseOwner
	}

	return s.store.Search(ctx, courseID, query, topK)
}
