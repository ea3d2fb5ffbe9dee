package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lessonforge/lessonforge/internal/domain"
)

type CourseRepository struct {
	db dbtx
}

func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{db: pool}
}

func NewCourseRepositoryWithTx(tx pgx.Tx) *CourseRepository {
	return &CourseRepository{db: tx}
}

func (r *CourseRepository) Create(ctx context.Context, c *domain.Course) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	return r.db.QueryRow(ctx,
		`INSERT INTO courses (owner_id, title, description, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		c.OwnerID, c.Title, c.Description, c.CreatedAt,
	).Scan(&c.ID)
}

func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*domain.Course, error) {
	var c domain.Course
	err := r.db.QueryRow(ctx,
		`SELECT id, owner_id, title, description, created_at
		 FROM courses WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.OwnerID, &c.Title, &c.Description, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCourseNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *CourseRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Course, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, owner_id, title, description, created_at
		 FROM courses WHERE owner_id = $1 ORDER BY created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []*domain.Course
	for rows.Next() {
		var c domain.Course
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Title, &c.Description, &c.CreatedAt); err != nil {
			return nil, err
		}
		courses = append(courses, &c)
	}
	return courses, rows.Err()
}
