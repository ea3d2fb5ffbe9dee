package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// MemoryStore is an in-process Store used for local development and tests.
// Records are deep-copied on the way in and out so callers cannot mutate
// indexed state.
type MemoryStore struct {
	embedder Embedder

	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(embedder Embedder) *MemoryStore {
	return &MemoryStore{
		embedder: embedder,
		records:  make(map[string]Record),
	}
}

// Upsert inserts or replaces records by chunk ID.
func (s *MemoryStore) Upsert(ctx context.Context, records []Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range records {
		s.records[record.ChunkID] = copyRecord(record)
	}
	return nil
}

// Search embeds the query and ranks the course's records by cosine
// similarity. Records whose embedding length differs from the query, or
// whose norm is zero, score 0.
func (s *MemoryStore) Search(ctx context.Context, courseID int64, query string, topK int) ([]SearchResult, error) {
	if topK <= 0 {
		return []SearchResult{}, nil
	}

	queryVector, err := s.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]SearchResult, 0, len(s.records))
	for _, record := range s.records {
		if record.CourseID != courseID {
			continue
		}
		results = append(results, SearchResult{
			ChunkID:    record.ChunkID,
			CourseID:   record.CourseID,
			DocumentID: record.DocumentID,
			OrderIndex: record.OrderIndex,
			RawText:    record.RawText,
			Score:      cosineSimilarity(queryVector, record.Embedding),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ChunkID < results[j].ChunkID
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// RemoveByDocument drops every record indexed for the document.
func (s *MemoryStore) RemoveByDocument(ctx context.Context, documentID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, record := range s.records {
		if record.DocumentID == documentID {
			delete(s.records, id)
		}
	}
	return nil
}

// Len reports how many records are indexed.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func copyRecord(record Record) Record {
	embedding := make([]float32, len(record.Embedding))
	copy(embedding, record.Embedding)
	record.Embedding = embedding
	return record
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

var _ Store = (*MemoryStore)(nil)
