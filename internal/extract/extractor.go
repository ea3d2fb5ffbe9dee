// Package extract pulls textual content out of stored documents.
package extract

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/lessonforge/lessonforge/internal/domain"
	"github.com/lessonforge/lessonforge/internal/storage"
)

// maxDocumentBytes caps how much of a stored object is read.
const maxDocumentBytes = 32 << 20

// Extractor produces the plain text of a stored document.
type Extractor interface {
	Extract(ctx context.Context, storedKey, fileName string) (string, error)
}

// PlainTextExtractor handles plain-text formats (.txt, .md, .markdown).
// Other extensions return domain.ErrUnsupportedFileType.
type PlainTextExtractor struct {
	store storage.ContentStore
}

// NewPlainTextExtractor reads document bytes from the given content store.
func NewPlainTextExtractor(store storage.ContentStore) *PlainTextExtractor {
	return &PlainTextExtractor{store: store}
}

// Supported reports whether the file name's extension can be extracted.
func (e *PlainTextExtractor) Supported(fileName string) bool {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".txt", ".md", ".markdown":
		return true
	}
	return false
}

// Extract returns the document's text content.
func (e *PlainTextExtractor) Extract(ctx context.Context, storedKey, fileName string) (string, error) {
	if !e.Supported(fileName) {
		return "", domain.ErrUnsupportedFileType
	}

	reader, err := e.store.Get(ctx, storedKey)
	if err != nil {
		return "", fmt.Errorf("reading stored document %s: %w", storedKey, err)
	}
	defer reader.Close()

	content, err := io.ReadAll(io.LimitReader(reader, maxDocumentBytes))
	if err != nil {
		return "", fmt.Errorf("reading stored document %s: %w", storedKey, err)
	}
	return string(content), nil
}

var _ Extractor = (*PlainTextExtractor)(nil)
