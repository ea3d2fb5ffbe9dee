package embedding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterministicClient_PureFunctionOfInput(t *testing.T) {
	client := NewDeterministicClient(96)
	ctx := context.Background()

	first, err := client.GenerateEmbedding(ctx, "thermodynamics lecture notes")
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := client.GenerateEmbedding(ctx, "thermodynamics lecture notes")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestDeterministicClient_DistinctTextsDiffer(t *testing.T) {
	client := NewDeterministicClient(96)
	ctx := context.Background()

	a, err := client.GenerateEmbedding(ctx, "chapter one")
	require.NoError(t, err)
	b, err := client.GenerateEmbedding(ctx, "chapter two")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestDeterministicClient_DimensionAndBounds(t *testing.T) {
	ctx := context.Background()

	for _, dims := range []int{1, 7, 96, 1536} {
		client := NewDeterministicClient(dims)
		vector, err := client.GenerateEmbedding(ctx, "bounds check")
		require.NoError(t, err)
		require.Len(t, vector, dims)
		assert.Equal(t, dims, client.Dimensions())

		for _, v := range vector {
			assert.GreaterOrEqual(t, v, float32(-1))
			assert.LessOrEqual(t, v, float32(1))
		}
	}
}

func TestDeterministicClient_AcceptsEmptyText(t *testing.T) {
	client := NewDeterministicClient(32)

	vector, err := client.GenerateEmbedding(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, vector, 32)
}

func TestDeterministicClient_Cancellation(t *testing.T) {
	client := NewDeterministicClient(32)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GenerateEmbedding(ctx, "never computed")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewDeterministicClient_DefaultDimensions(t *testing.T) {
	client := NewDeterministicClient(0)
	assert.Equal(t, DefaultDeterministicDimensions, client.Dimensions())
}
