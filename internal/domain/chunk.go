package domain

import "time"

// Chunk is a fixed-window slice of a document's extracted text. OrderIndex
// is zero-based and unique per document; it is load-bearing for topic
// source-chunk lookups and for deterministic truncation.
type Chunk struct {
	ID         string
	CourseID   int64
	DocumentID int64
	OrderIndex int
	RawText    string
	CreatedAt  time.Time
}
