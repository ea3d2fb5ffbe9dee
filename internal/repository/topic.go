package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lessonforge/lessonforge/internal/domain"
)

type TopicRepository struct {
	db dbtx
}

func NewTopicRepository(pool *pgxpool.Pool) *TopicRepository {
	return &TopicRepository{db: pool}
}

func NewTopicRepositoryWithTx(tx pgx.Tx) *TopicRepository {
	return &TopicRepository{db: tx}
}

// CreateBatch inserts topics with their chunk links in insertion order.
func (r *TopicRepository) CreateBatch(ctx context.Context, topics []*domain.Topic) error {
	for _, t := range topics {
		err := r.db.QueryRow(ctx,
			`INSERT INTO topics (course_id, title, source, is_manual, is_selected, confidence, sort_order)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 RETURNING id`,
			t.CourseID, t.Title, nullableString(t.Source), t.IsManual, t.IsSelected, t.Confidence, t.Order,
		).Scan(&t.ID)
		if err != nil {
			return err
		}

		for _, link := range t.Chunks {
			_, err := r.db.Exec(ctx,
				`INSERT INTO topic_chunks (topic_id, chunk_id, raw_text, relevance, sort_order)
				 VALUES ($1, $2, $3, $4, $5)`,
				t.ID, link.ChunkID, link.RawText, link.Relevance, link.Order,
			)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// GetWithCourse loads a topic with its owning course and its chunk links
// ordered by stored sort order.
func (r *TopicRepository) GetWithCourse(ctx context.Context, id int64) (*domain.Topic, error) {
	var t domain.Topic
	var c domain.Course
	var source *string
	err := r.db.QueryRow(ctx,
		`SELECT t.id, t.course_id, t.title, t.source, t.is_manual, t.is_selected, t.confidence, t.sort_order,
		        c.id, c.owner_id, c.title, c.description, c.created_at
		 FROM topics t
		 JOIN courses c ON c.id = t.course_id
		 WHERE t.id = $1`,
		id,
	).Scan(&t.ID, &t.CourseID, &t.Title, &source, &t.IsManual, &t.IsSelected, &t.Confidence, &t.Order,
		&c.ID, &c.OwnerID, &c.Title, &c.Description, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTopicNotFound
		}
		return nil, err
	}
	if source != nil {
		t.Source = *source
	}
	t.Course = &c

	rows, err := r.db.Query(ctx,
		`SELECT topic_id, chunk_id, raw_text, relevance, sort_order
		 FROM topic_chunks WHERE topic_id = $1 ORDER BY sort_order ASC`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var link domain.TopicChunk
		if err := rows.Scan(&link.TopicID, &link.ChunkID, &link.RawText, &link.Relevance, &link.Order); err != nil {
			return nil, err
		}
		t.Chunks = append(t.Chunks, link)
	}
	return &t, rows.Err()
}

func (r *TopicRepository) ListByCourse(ctx context.Context, courseID int64) ([]*domain.Topic, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, course_id, title, source, is_manual, is_selected, confidence, sort_order
		 FROM topics WHERE course_id = $1 ORDER BY sort_order ASC, id ASC`,
		courseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []*domain.Topic
	for rows.Next() {
		var t domain.Topic
		var source *string
		if err := rows.Scan(&t.ID, &t.CourseID, &t.Title, &source, &t.IsManual, &t.IsSelected, &t.Confidence, &t.Order); err != nil {
			return nil, err
		}
		if source != nil {
			t.Source = *source
		}
		topics = append(topics, &t)
	}
	return topics, rows.Err()
}

// SetSelection toggles whether a topic is part of the course's study set.
func (r *TopicRepository) SetSelection(ctx context.Context, id int64, selected bool) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE topics SET is_selected = $1 WHERE id = $2`,
		selected, id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrTopicNotFound
	}
	return nil
}

// Delete removes one topic; its chunk links cascade.
func (r *TopicRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM topics WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrTopicNotFound
	}
	return nil
}

// DeleteExtractedByCourse clears previously extracted topics so a fresh
// generation replaces them. Manual topics are kept.
func (r *TopicRepository) DeleteExtractedByCourse(ctx context.Context, courseID int64) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM topics WHERE course_id = $1 AND is_manual = FALSE`,
		courseID,
	)
	return err
}
