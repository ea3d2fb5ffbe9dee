package domain

import "strings"

// MaxTopicTitleLength bounds topic titles, both extracted and manual.
const MaxTopicTitleLength = 80

// Topic is a durable study topic for a course. Extracted topics carry the
// model's confidence and a source label; manual topics are created by the
// course owner directly.
type Topic struct {
	ID         int64
	CourseID   int64
	Course     *Course
	Title      string
	Source     string
	IsManual   bool
	IsSelected bool
	Confidence float64
	Order      int
	Chunks     []TopicChunk
}

// TopicChunk links a topic to a supporting content chunk with a relevance
// score and a stable ordering.
type TopicChunk struct {
	TopicID   int64
	ChunkID   string
	RawText   string
	Relevance float64
	Order     int
}

// TopicSuggestion is an ephemeral extraction result. It becomes a Topic
// only once the topic service persists it.
type TopicSuggestion struct {
	Title                  string
	Confidence             float64
	SupportingChunkIndexes []int
}

// ValidateTopicTitle checks a topic title against the domain bounds.
func ValidateTopicTitle(title string) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return ErrEmptyTopicTitle
	}
	if len([]rune(trimmed)) > MaxTopicTitleLength {
		return ErrTopicTitleTooLong
	}
	return nil
}
