package jobs

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/lessonforge/lessonforge/internal/domain"
)

// DefaultBatchSize bounds how many pending documents one poll picks up.
const DefaultBatchSize = 10

// PendingDocumentRepository defines the interface for pending document lookups
type PendingDocumentRepository interface {
	ListPending(ctx context.Context, limit int) ([]*domain.Document, error)
}

// DocumentProcessor defines the interface for running the processing pipeline
type DocumentProcessor interface {
	ProcessDocument(ctx context.Context, documentID int64) error
}

// DocumentWorker picks up pending documents and runs them through the
// processing pipeline. Per-document failures are recorded by the
// pipeline itself, so one bad document never stalls the batch.
type DocumentWorker struct {
	repo      PendingDocumentRepository
	processor DocumentProcessor
	batchSize int
	logger    *zap.Logger
}

// NewDocumentWorker creates a new DocumentWorker instance
func NewDocumentWorker(repo PendingDocumentRepository, processor DocumentProcessor, logger *zap.Logger) *DocumentWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentWorker{
		repo:      repo,
		processor: processor,
		batchSize: DefaultBatchSize,
		logger:    logger,
	}
}

// ProcessJobs implements the JobProcessor interface
func (w *DocumentWorker) ProcessJobs(ctx context.Context) error {
	docs, err := w.repo.ListPending(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("failed to fetch pending documents: %w", err)
	}

	if len(docs) == 0 {
		return nil
	}

	w.logger.Info("processing pending documents", zap.Int("count", len(docs)))

	for _, doc := range docs {
		if err := w.processor.ProcessDocument(ctx, doc.ID); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			w.logger.Error("error processing document",
				zap.Int64("documentId", doc.ID), zap.Error(err))
		}
	}

	return nil
}
