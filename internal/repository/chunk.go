package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lessonforge/lessonforge/internal/domain"
)

// ChunkRepository handles persistence of content chunks.
type ChunkRepository struct {
	db dbtx
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: pool}
}

func NewChunkRepositoryWithTx(tx pgx.Tx) *ChunkRepository {
	return &ChunkRepository{db: tx}
}

// ReplaceByDocument deletes existing chunks for a document and inserts new
// ones, keeping reprocessing idempotent.
func (r *ChunkRepository) ReplaceByDocument(ctx context.Context, documentID int64, chunks []domain.Chunk) error {
	if err := r.DeleteByDocument(ctx, documentID); err != nil {
		return err
	}
	return r.AddChunks(ctx, chunks)
}

// AddChunks inserts a batch of chunks.
func (r *ChunkRepository) AddChunks(ctx context.Context, chunks []domain.Chunk) error {
	for _, c := range chunks {
		createdAt := c.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		_, err := r.db.Exec(ctx,
			`INSERT INTO chunks (id, course_id, document_id, order_index, raw_text, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			c.ID, c.CourseID, c.DocumentID, c.OrderIndex, c.RawText, createdAt,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// CountByDocument reports how many chunks a document currently has.
func (r *ChunkRepository) CountByDocument(ctx context.Context, documentID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM chunks WHERE document_id = $1`, documentID,
	).Scan(&count)
	return count, err
}

// DeleteByDocument removes every chunk of a document.
func (r *ChunkRepository) DeleteByDocument(ctx context.Context, documentID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM chunks WHERE document_id = $1`, documentID)
	return err
}

func (r *ChunkRepository) ListByDocument(ctx context.Context, documentID int64) ([]domain.Chunk, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, course_id, document_id, order_index, raw_text, created_at
		 FROM chunks WHERE document_id = $1 ORDER BY order_index ASC`,
		documentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanChunkRows(rows)
}

func (r *ChunkRepository) ListByCourse(ctx context.Context, courseID int64) ([]domain.Chunk, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, course_id, document_id, order_index, raw_text, created_at
		 FROM chunks WHERE course_id = $1 ORDER BY document_id ASC, order_index ASC`,
		courseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanChunkRows(rows)
}

func scanChunkRows(rows pgx.Rows) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	for rows.Next() {
		var c domain.Chunk
		if err := rows.Scan(&c.ID, &c.CourseID, &c.DocumentID, &c.OrderIndex, &c.RawText, &c.CreatedAt); err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}
