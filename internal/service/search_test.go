package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lessonforge/lessonforge/internal/domain"
	"github.com/lessonforge/lessonforge/internal/vectorstore"
)

func TestSearch(t *testing.T) {
	courses := new(MockCourseRepository)
	store := new(MockVectorStore)
	svc := NewSearchService(courses, store, DefaultPromptTopK)

	courses.On("GetByID", mock.Anything, int64(7)).Return(ownedCourse(), nil)
	store.On("Search", mock.Anything, int64(7), "goroutines", 5).Return([]vectorstore.SearchResult{
		{ChunkID: "c0", RawText: "goroutines", Score: 0.95},
	}, nil)

	results, err := svc.Search(context.Background(), 7, "user-1", "goroutines", 5)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "c0", results[0].ChunkID)
}

func TestSearch_ClampsTopK(t *testing.T) {
	courses := new(MockCourseRepository)
	store := new(MockVectorStore)
	svc := NewSearchService(courses, store, DefaultPromptTopK)

	courses.On("GetByID", mock.Anything, int64(7)).Return(ownedCourse(), nil)
	store.On("Search", mock.Anything, int64(7), "q", DefaultPromptTopK).
		Return([]vectorstore.SearchResult{}, nil)
	store.On("Search", mock.Anything, int64(7), "q", MaxPromptTopK).
		Return([]vectorstore.SearchResult{}, nil)

	_, err := svc.Search(context.Background(), 7, "user-1", "q", 0)
	require.NoError(t, err)

	_, err = svc.Search(context.Background(), 7, "user-1", "q", 50)
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestSearch_ConfiguredDefaultTopK(t *testing.T) {
	courses := new(MockCourseRepository)
	store := new(MockVectorStore)
	svc := NewSearchService(courses, store, 3)

	courses.On("GetByID", mock.Anything, int64(7)).Return(ownedCourse(), nil)
	store.On("Search", mock.Anything, int64(7), "q", 3).
		Return([]vectorstore.SearchResult{}, nil)

	_, err := svc.Search(context.Background(), 7, "user-1", "q", 0)
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestSearch_EmptyQuery(t *testing.T) {
	courses := new(MockCourseRepository)
	store := new(MockVectorStore)
	svc := NewSearchService(courses, store, DefaultPromptTopK)

	_, err := svc.Search(context.Background(), 7, "user-1", "   ", 5)

	require.ErrorIs(t, err, domain.ErrEmptyQuery)
	courses.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestSearch_NotOwner(t *testing.T) {
	courses := new(MockCourseRepository)
	store := new(MockVectorStore)
	svc := NewSearchService(courses, store, DefaultPromptTopK)

	courses.On("GetByID", mock.Anything, int64(7)).Return(ownedCourse(), nil)

	_, err := svc.Search(context.Background(), 7, "intruder", "goroutines", 5)

	require.ErrorIs(t, err, domain.ErrNotCourseOwner)
	store.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
