package ollama

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taipm/go-llm-gateway/llmerrors"
	"github.com/taipm/go-llm-gateway/types"
)

func TestEmbeddingTransformer_MultiInput(t *testing.T) {
	body, err := EmbeddingTransformer{}.TransformEmbedding(&types.EmbeddingRequest{
		Model: "nomic-embed-text",
		Input: []string{"a", "b"},
	})
	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", body["model"])
	assert.Equal(t, []string{"a", "b"}, body["input"])
}

func TestEmbeddingTransformer_MissingModel(t *testing.T) {
	_, err := EmbeddingTransformer{}.TransformEmbedding(&types.EmbeddingRequest{Input: []string{"a"}})
	require.Error(t, err)
	assert.True(t, llmerrors.IsInvalidInput(err))
}

func TestParseEmbedding_MultipleVectors(t *testing.T) {
	resp, err := ParseEmbedding([]byte(`{"embeddings":[[0.1,0.2],[0.3,0.4]]}`))
	require.NoError(t, err)
	require.Len(t, resp.Vectors, 2)
	assert.Equal(t, []float64{0.3, 0.4}, resp.Vectors[1])
}
