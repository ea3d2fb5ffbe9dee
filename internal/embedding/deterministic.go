package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
)

// DefaultDeterministicDimensions keeps test vectors small while remaining
// collision-resistant through the underlying digest.
const DefaultDeterministicDimensions = 96

// DeterministicClient derives a stable vector from a SHA-256 digest of the
// input. The same text always yields a bit-identical vector, distinct
// texts overwhelmingly differ, and every component lies in [-1, 1]. Unlike
// the networked provider it accepts empty text and only fails on
// cancellation.
type DeterministicClient struct {
	dimensions int
}

// NewDeterministicClient returns a provider with the given vector length.
// Non-positive dimensions fall back to the default.
func NewDeterministicClient(dimensions int) *DeterministicClient {
	if dimensions <= 0 {
		dimensions = DefaultDeterministicDimensions
	}
	return &DeterministicClient{dimensions: dimensions}
}

// GenerateEmbedding hashes the UTF-8 bytes of text, tiles the digest to
// dimensions*4 bytes, and maps each 4-byte group into [-1, 1].
func (c *DeterministicClient) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	digest := sha256.Sum256([]byte(text))

	need := c.dimensions * 4
	buffer := make([]byte, 0, need+len(digest))
	for len(buffer) < need {
		buffer = append(buffer, digest[:]...)
	}

	vector := make([]float32, c.dimensions)
	for i := 0; i < c.dimensions; i++ {
		value := binary.BigEndian.Uint32(buffer[i*4 : i*4+4])
		vector[i] = float32(float64(value)/float64(math.MaxUint32))*2 - 1
	}
	return vector, nil
}

// Dimensions returns the configured vector length.
func (c *DeterministicClient) Dimensions() int {
	return c.dimensions
}
