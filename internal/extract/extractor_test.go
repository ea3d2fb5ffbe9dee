package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lessonforge/lessonforge/internal/domain"
	"github.com/lessonforge/lessonforge/internal/storage"
)

func newStoreWith(t *testing.T, key, content string) *storage.LocalStore {
	t.Helper()
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Put(context.Background(), key, "text/plain", strings.NewReader(content)))
	return store
}

func TestPlainTextExtractor_Extract(t *testing.T) {
	store := newStoreWith(t, "courses/1/syllabus.txt", "Week 1: kinematics\nWeek 2: dynamics\n")
	extractor := NewPlainTextExtractor(store)

	text, err := extractor.Extract(context.Background(), "courses/1/syllabus.txt", "syllabus.txt")

	require.NoError(t, err)
	assert.Equal(t, "Week 1: kinematics\nWeek 2: dynamics\n", text)
}

func TestPlainTextExtractor_SupportedExtensions(t *testing.T) {
	extractor := NewPlainTextExtractor(nil)

	assert.True(t, extractor.Supported("notes.txt"))
	assert.True(t, extractor.Supported("README.md"))
	assert.True(t, extractor.Supported("guide.MARKDOWN"))
	assert.False(t, extractor.Supported("slides.pdf"))
	assert.False(t, extractor.Supported("archive.zip"))
	assert.False(t, extractor.Supported("noextension"))
}

func TestPlainTextExtractor_UnsupportedType(t *testing.T) {
	store := newStoreWith(t, "courses/1/slides.pdf", "%PDF-1.7")
	extractor := NewPlainTextExtractor(store)

	_, err := extractor.Extract(context.Background(), "courses/1/slides.pdf", "slides.pdf")

	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestPlainTextExtractor_MissingObject(t *testing.T) {
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	extractor := NewPlainTextExtractor(store)

	_, err = extractor.Extract(context.Background(), "gone.txt", "gone.txt")

	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
}
