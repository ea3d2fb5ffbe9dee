package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lessonforge/lessonforge/internal/domain"
)

type DocumentRepository struct {
	db dbtx
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: pool}
}

func NewDocumentRepositoryWithTx(tx pgx.Tx) *DocumentRepository {
	return &DocumentRepository{db: tx}
}

func (r *DocumentRepository) Create(ctx context.Context, d *domain.Document) error {
	if d.UploadedAt.IsZero() {
		d.UploadedAt = time.Now().UTC()
	}
	if d.Status == "" {
		d.Status = domain.DocumentStatusPending
	}
	return r.db.QueryRow(ctx,
		`INSERT INTO documents (course_id, file_name, stored_key, file_size, status, uploaded_at, processed_at, failed_reason)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		d.CourseID, d.FileName, d.StoredKey, d.FileSize, d.Status,
		d.UploadedAt, d.ProcessedAt, nullableString(d.FailedReason),
	).Scan(&d.ID)
}

func (r *DocumentRepository) GetByID(ctx context.Context, id int64) (*domain.Document, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, course_id, file_name, stored_key, file_size, status, uploaded_at, processed_at, failed_reason
		 FROM documents WHERE id = $1`,
		id,
	)
	return scanDocument(row)
}

// GetWithCourse loads a document together with its owning course, which
// authorization and prompt building need in one round trip.
func (r *DocumentRepository) GetWithCourse(ctx context.Context, id int64) (*domain.Document, error) {
	var d domain.Document
	var c domain.Course
	var failedReason pgtype.Text
	err := r.db.QueryRow(ctx,
		`SELECT d.id, d.course_id, d.file_name, d.stored_key, d.file_size, d.status,
		        d.uploaded_at, d.processed_at, d.failed_reason,
		        c.id, c.owner_id, c.title, c.description, c.created_at
		 FROM documents d
		 JOIN courses c ON c.id = d.course_id
		 WHERE d.id = $1`,
		id,
	).Scan(&d.ID, &d.CourseID, &d.FileName, &d.StoredKey, &d.FileSize, &d.Status,
		&d.UploadedAt, &d.ProcessedAt, &failedReason,
		&c.ID, &c.OwnerID, &c.Title, &c.Description, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	if failedReason.Valid {
		d.FailedReason = failedReason.String
	}
	d.Course = &c
	return &d, nil
}

// Save persists the document's mutable processing state.
func (r *DocumentRepository) Save(ctx context.Context, d *domain.Document) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE documents
		 SET status = $1, processed_at = $2, failed_reason = $3
		 WHERE id = $4`,
		d.Status, d.ProcessedAt, nullableString(d.FailedReason), d.ID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// ListPending returns the oldest pending documents, up to limit.
func (r *DocumentRepository) ListPending(ctx context.Context, limit int) ([]*domain.Document, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, course_id, file_name, stored_key, file_size, status, uploaded_at, processed_at, failed_reason
		 FROM documents
		 WHERE status = $1
		 ORDER BY uploaded_at ASC
		 LIMIT $2`,
		domain.DocumentStatusPending, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var documents []*domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		documents = append(documents, doc)
	}
	return documents, rows.Err()
}

func (r *DocumentRepository) ListByCourse(ctx context.Context, courseID int64) ([]*domain.Document, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, course_id, file_name, stored_key, file_size, status, uploaded_at, processed_at, failed_reason
		 FROM documents
		 WHERE course_id = $1
		 ORDER BY uploaded_at ASC`,
		courseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var documents []*domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		documents = append(documents, doc)
	}
	return documents, rows.Err()
}

func scanDocument(row pgx.Row) (*domain.Document, error) {
	var d domain.Document
	var failedReason pgtype.Text
	err := row.Scan(&d.ID, &d.CourseID, &d.FileName, &d.StoredKey, &d.FileSize,
		&d.Status, &d.UploadedAt, &d.ProcessedAt, &failedReason)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	if failedReason.Valid {
		d.FailedReason = failedReason.String
	}
	return &d, nil
}
