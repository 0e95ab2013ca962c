package embedding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOpenAIStyleEmbedding(t *testing.T) {
	body := []byte(`{
		"data": [{"embedding": [0.1, 0.2, 0.3]}, {"embedding": [0.4, 0.5, 0.6]}],
		"model": "text-embedding-3-small",
		"usage": {"prompt_tokens": 5, "total_tokens": 5}
	}`)
	resp, err := ParseOpenAIStyleEmbedding(body)
	assert.NoError(t, err)
	assert.Equal(t, "text-embedding-3-small", resp.Model)
	assert.Len(t, resp.Vectors, 2)
	assert.Equal(t, 5, resp.Usage.TotalTokens)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float64{1, 0}, []float64{1, 0}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.Equal(t, 0.0, CosineSimilarity([]float64{}, []float64{}))
	assert.Equal(t, 0.0, CosineSimilarity([]float64{1, 2}, []float64{1}))
	assert.Equal(t, 0.0, CosineSimilarity([]float64{0, 0}, []float64{1, 1}))
}

func TestPearsonCorrelation(t *testing.T) {
	assert.InDelta(t, 1.0, PearsonCorrelation([]float64{1, 2, 3}, []float64{2, 4, 6}), 1e-9)
	assert.Equal(t, 0.0, PearsonCorrelation([]float64{1}, []float64{1, 2}))
}
