package vectorstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// PgvectorStore is a Store backed by the vector_records table and the
// pgvector extension. Scores are cosine similarity (1 minus the `<=>`
// distance), matching the in-memory backend.
type PgvectorStore struct {
	pool     *pgxpool.Pool
	embedder Embedder
}

// NewPgvectorStore wraps an existing connection pool.
func NewPgvectorStore(pool *pgxpool.Pool, embedder Embedder) *PgvectorStore {
	return &PgvectorStore{pool: pool, embedder: embedder}
}

// Upsert inserts or replaces records by chunk ID.
func (s *PgvectorStore) Upsert(ctx context.Context, records []Record) error {
	for _, record := range records {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO vector_records (chunk_id, course_id, document_id, order_index, raw_text, embedding)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (chunk_id) DO UPDATE SET
				course_id = EXCLUDED.course_id,
				document_id = EXCLUDED.document_id,
				order_index = EXCLUDED.order_index,
				raw_text = EXCLUDED.raw_text,
				embedding = EXCLUDED.embedding`,
			record.ChunkID,
			record.CourseID,
			record.DocumentID,
			record.OrderIndex,
			record.RawText,
			pgvector.NewVector(record.Embedding),
		)
		if err != nil {
			return fmt.Errorf("upserting chunk %s: %w", record.ChunkID, err)
		}
	}
	return nil
}

// Search embeds the query and ranks the course's records by cosine distance.
func (s *PgvectorStore) Search(ctx context.Context, courseID int64, query string, topK int) ([]SearchResult, error) {
	if topK <= 0 {
		return []SearchResult{}, nil
	}

	queryVector, err := s.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT chunk_id, course_id, document_id, order_index, raw_text,
		        1 - (embedding <=> $1) AS score
		 FROM vector_records
		 WHERE course_id = $2
		 ORDER BY embedding <=> $1
		 LIMIT $3`,
		pgvector.NewVector(queryVector), courseID, topK,
	)
	if err != nil {
		return nil, fmt.Errorf("searching vector records: %w", err)
	}
	defer rows.Close()

	results := make([]SearchResult, 0, topK)
	for rows.Next() {
		var result SearchResult
		var score float64
		if err := rows.Scan(&result.ChunkID, &result.CourseID, &result.DocumentID,
			&result.OrderIndex, &result.RawText, &score); err != nil {
			return nil, err
		}
		result.Score = float32(score)
		results = append(results, result)
	}
	return results, rows.Err()
}

// RemoveByDocument drops every record indexed for the document.
func (s *PgvectorStore) RemoveByDocument(ctx context.Context, documentID int64) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM vector_records WHERE document_id = $1`, documentID)
	if err != nil {
		return fmt.Errorf("deleting vector records for document %d: %w", documentID, err)
	}
	return nil
}

var _ Store = (*PgvectorStore)(nil)
