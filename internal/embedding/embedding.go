// Package embedding defines the embedding provider contract and the
// deterministic reference implementation used for tests and offline runs.
package embedding

import "context"

// Client maps text to a fixed-length dense vector. Implementations are
// selected at wiring time: the deterministic hash provider for tests and
// offline use, the OpenAI-backed provider for real deployments.
type Client interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}
