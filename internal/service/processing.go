// Package service holds the business logic for content ingestion,
// topic curation, and prompt assembly.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lessonforge/lessonforge/internal/chunking"
	"github.com/lessonforge/lessonforge/internal/domain"
	"github.com/lessonforge/lessonforge/internal/vectorstore"
)

// DocumentRepositoryInterface defines the repository interface for document persistence
type DocumentRepositoryInterface interface {
	GetWithCourse(ctx context.Context, id int64) (*domain.Document, error)
	Save(ctx context.Context, d *domain.Document) error
}

// ChunkRepositoryInterface defines the repository interface for chunk persistence
type ChunkRepositoryInterface interface {
	DeleteByDocument(ctx context.Context, documentID int64) error
	AddChunks(ctx context.Context, chunks []domain.Chunk) error
	CountByDocument(ctx context.Context, documentID int64) (int, error)
}

// ContentStoreInterface is the slice of the content store the orchestrator uses
type ContentStoreInterface interface {
	Exists(ctx context.Context, key string) (bool, error)
}

// TextExtractorInterface extracts textual content from a stored document
type TextExtractorInterface interface {
	Extract(ctx context.Context, storedKey, fileName string) (string, error)
}

// EmbeddingClientInterface generates chunk embeddings
type EmbeddingClientInterface interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// ChunkerInterface splits extracted text into ordered windows
type ChunkerInterface interface {
	Split(text string) []string
}

// ContentProcessingService drives one document through
// extraction -> chunking -> embedding -> vector storage, maintaining the
// Pending -> Processing -> {Completed, Failed} state machine.
type ContentProcessingService struct {
	documents DocumentRepositoryInterface
	chunks    ChunkRepositoryInterface
	content   ContentStoreInterface
	extractor TextExtractorInterface
	chunker   ChunkerInterface
	embedder  EmbeddingClientInterface
	store     vectorstore.Store
	uuidGen   UUIDGenerator
	locks     *documentLocks
	logger    *zap.Logger
}

// NewContentProcessingService creates the orchestrator. A nil logger is
// replaced with a no-op one.
func NewContentProcessingService(
	documents DocumentRepositoryInterface,
	chunks ChunkRepositoryInterface,
	content ContentStoreInterface,
	extractor TextExtractorInterface,
	chunker ChunkerInterface,
	embedder EmbeddingClientInterface,
	store vectorstore.Store,
	logger *zap.Logger,
) *ContentProcessingService {
	if chunker == nil {
		chunker, _ = chunking.New(chunking.DefaultConfig())
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentProcessingService{
		documents: documents,
		chunks:    chunks,
		content:   content,
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		store:     store,
		uuidGen:   &DefaultUUIDGenerator{},
		locks:     newDocumentLocks(),
		logger:    logger,
	}
}

// ProcessDocument runs the full pipeline for one document. It holds the
// per-document lock for the whole run, so concurrent triggers for the
// same ID serialize and the second one hits the status guard.
//
// Cancellation propagates to the caller and leaves the document in
// Processing; every other pipeline failure lands in Failed with a
// truncated reason. ResetToPending recovers a cancelled run.
func (s *ContentProcessingService) ProcessDocument(ctx context.Context, documentID int64) error {
	s.locks.Lock(documentID)
	defer s.locks.Unlock(documentID)

	doc, err := s.documents.GetWithCourse(ctx, documentID)
	if err != nil {
		return err
	}

	if doc.Status == domain.DocumentStatusProcessing {
		s.logger.Info("document is already being processed", zap.Int64("documentId", documentID))
		return nil
	}

	if doc.Status == domain.DocumentStatusCompleted {
		count, err := s.chunks.CountByDocument(ctx, documentID)
		if err != nil {
			return err
		}
		if count > 0 {
			s.logger.Info("document already completed, skipping", zap.Int64("documentId", documentID))
			return nil
		}
	}

	exists, err := s.content.Exists(ctx, doc.StoredKey)
	if err != nil {
		return fmt.Errorf("checking stored content for document %d: %w", documentID, err)
	}
	if !exists {
		return s.markFailed(ctx, doc, fmt.Sprintf("File not found at path %s", doc.StoredKey))
	}

	doc.MarkProcessing()
	if err := s.documents.Save(ctx, doc); err != nil {
		return err
	}

	if err := s.runPipeline(ctx, doc); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			s.logger.Warn("processing was cancelled", zap.Int64("documentId", documentID))
			return err
		}
		s.logger.Error("processing failed", zap.Int64("documentId", documentID), zap.Error(err))
		return s.markFailed(ctx, doc, err.Error())
	}

	doc.MarkCompleted(time.Now().UTC())
	if err := s.documents.Save(ctx, doc); err != nil {
		return err
	}

	s.logger.Info("successfully processed document", zap.Int64("documentId", documentID))
	return nil
}

// runPipeline covers extraction through vector storage. It returns
// failedError values for the outcomes that must land verbatim in the
// document's failure reason.
func (s *ContentProcessingService) runPipeline(ctx context.Context, doc *domain.Document) error {
	text, err := s.extractor.Extract(ctx, doc.StoredKey, doc.FileName)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return failedError("No textual content could be extracted from the document.")
	}

	// Old chunks go first so reprocessing never duplicates.
	if err := s.chunks.DeleteByDocument(ctx, doc.ID); err != nil {
		return err
	}

	pieces := s.chunker.Split(text)
	if len(pieces) == 0 {
		return failedError("Chunking produced no output.")
	}

	chunks := make([]domain.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = domain.Chunk{
			ID:         s.uuidGen.NewString(),
			CourseID:   doc.CourseID,
			DocumentID: doc.ID,
			OrderIndex: i,
			RawText:    piece,
		}
	}
	if err := s.chunks.AddChunks(ctx, chunks); err != nil {
		return err
	}

	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}

		embedding, err := s.embedder.GenerateEmbedding(ctx, chunk.RawText)
		if err != nil {
			return fmt.Errorf("embedding chunk %d: %w", chunk.OrderIndex, err)
		}

		record := vectorstore.Record{
			ChunkID:    chunk.ID,
			CourseID:   chunk.CourseID,
			DocumentID: chunk.DocumentID,
			OrderIndex: chunk.OrderIndex,
			RawText:    chunk.RawText,
			Embedding:  embedding,
		}
		if err := s.store.Upsert(ctx, []vectorstore.Record{record}); err != nil {
			return fmt.Errorf("storing embedding for chunk %d: %w", chunk.OrderIndex, err)
		}
	}

	return nil
}

// ResetToPending recovers a document left in Processing by a cancelled
// run. Any other status is not resettable.
func (s *ContentProcessingService) ResetToPending(ctx context.Context, documentID int64) error {
	s.locks.Lock(documentID)
	defer s.locks.Unlock(documentID)

	doc, err := s.documents.GetWithCourse(ctx, documentID)
	if err != nil {
		return err
	}

	if doc.Status != domain.DocumentStatusProcessing {
		return domain.ErrDocumentNotResettable
	}

	doc.Status = domain.DocumentStatusPending
	doc.FailedReason = ""
	doc.ProcessedAt = nil
	if err := s.documents.Save(ctx, doc); err != nil {
		return err
	}

	s.logger.Info("document reset to pending", zap.Int64("documentId", documentID))
	return nil
}

// RemoveDocumentData deletes a document's chunks and vector records,
// keeping the two stores consistent.
func (s *ContentProcessingService) RemoveDocumentData(ctx context.Context, documentID int64) error {
	s.locks.Lock(documentID)
	defer s.locks.Unlock(documentID)

	if err := s.chunks.DeleteByDocument(ctx, documentID); err != nil {
		return err
	}
	return s.store.RemoveByDocument(ctx, documentID)
}

func (s *ContentProcessingService) markFailed(ctx context.Context, doc *domain.Document, reason string) error {
	doc.MarkFailed(reason)
	return s.documents.Save(ctx, doc)
}

// failedError is a pipeline outcome whose message is persisted verbatim
// as the document's failure reason.
type failedError string

func (e failedError) Error() string { return string(e) }
