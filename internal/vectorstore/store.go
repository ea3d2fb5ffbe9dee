// Package vectorstore provides the semantic index over content chunks.
package vectorstore

import (
	"context"
	"errors"
)

var (
	// ErrInvalidConfig is returned when a store configuration is incomplete
	ErrInvalidConfig = errors.New("invalid vector store configuration")
	// ErrEmbeddingFailed is returned when query embedding generation fails
	ErrEmbeddingFailed = errors.New("embedding generation failed")
)

// Embedder generates the query vector for semantic search.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// Record is one indexed chunk with its embedding and lookup metadata.
type Record struct {
	ChunkID    string
	CourseID   int64
	DocumentID int64
	OrderIndex int
	RawText    string
	Embedding  []float32
}

// SearchResult is a scored match returned by Search, higher is closer.
type SearchResult struct {
	ChunkID    string
	CourseID   int64
	DocumentID int64
	OrderIndex int
	RawText    string
	Score      float32
}

// Store indexes chunk embeddings and answers course-scoped similarity
// queries. Upsert replaces records that share a chunk ID.
type Store interface {
	Upsert(ctx context.Context, records []Record) error
	Search(ctx context.Context, courseID int64, query string, topK int) ([]SearchResult, error)
	RemoveByDocument(ctx context.Context, documentID int64) error
}
