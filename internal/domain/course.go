package domain

import "time"

// Course groups uploaded documents, their chunks, and extracted topics
// under a single owner.
type Course struct {
	ID          int64
	OwnerID     string
	Title       string
	Description string
	CreatedAt   time.Time
}
