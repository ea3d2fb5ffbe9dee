// Package chunking splits extracted document text into overlapping
// fixed-size windows suitable for embedding and retrieval.
package chunking

import (
	"strings"

	"github.com/lessonforge/lessonforge/internal/domain"
)

const (
	// DefaultChunkSize is the window length in runes.
	DefaultChunkSize = 800
	// DefaultOverlap is how many runes consecutive windows share.
	DefaultOverlap = 120
)

// Config controls fixed-window chunking.
type Config struct {
	ChunkSize int
	Overlap   int
}

// DefaultConfig provides the standard window geometry.
func DefaultConfig() Config {
	return Config{
		ChunkSize: DefaultChunkSize,
		Overlap:   DefaultOverlap,
	}
}

// FixedWindowChunker slides a window of ChunkSize runes over normalized
// text, advancing ChunkSize-Overlap runes each step.
type FixedWindowChunker struct {
	chunkSize int
	overlap   int
}

// New validates the configuration and returns a chunker.
func New(cfg Config) (*FixedWindowChunker, error) {
	if cfg.ChunkSize <= 0 {
		return nil, domain.ErrInvalidChunkConfig
	}
	if cfg.Overlap < 0 || cfg.Overlap >= cfg.ChunkSize {
		return nil, domain.ErrInvalidChunkConfig
	}
	return &FixedWindowChunker{
		chunkSize: cfg.ChunkSize,
		overlap:   cfg.Overlap,
	}, nil
}

// Split produces the chunk sequence for text. Empty or whitespace-only
// input yields no chunks; input shorter than the window yields exactly one.
// Each emitted chunk is trimmed and non-empty.
func (c *FixedWindowChunker) Split(text string) []string {
	normalized := normalizeLineEndings(text)
	buffer := []rune(strings.TrimSpace(normalized))
	if len(buffer) == 0 {
		return nil
	}

	step := c.chunkSize - c.overlap
	chunks := make([]string, 0, len(buffer)/step+1)
	position := 0

	for position < len(buffer) {
		length := c.chunkSize
		if position+length > len(buffer) {
			length = len(buffer) - position
		}

		chunk := strings.TrimSpace(string(buffer[position : position+length]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		if position+length >= len(buffer) {
			break
		}
		position += step
	}

	return chunks
}

func normalizeLineEndings(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
