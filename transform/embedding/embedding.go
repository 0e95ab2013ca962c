// Package embedding provides the shared embedding response shape and
// similarity helpers used across providers, grounded in the teacher's
// agent/tools/math.go numeric style and backed by gonum for the actual
// vector math rather than hand-rolled loops.
package embedding

import (
	"encoding/json"

	"github.com/taipm/go-llm-gateway/llmerrors"
	"github.com/taipm/go-llm-gateway/types"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type openAIEmbeddingWire struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	Model string `json:"model"`
	Usage struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

// ParseOpenAIStyleEmbedding parses the embeddings response shape shared by
// OpenAI and every OpenAI-compatible vendor.
func ParseOpenAIStyleEmbedding(body []byte) (*types.EmbeddingResponse, error) {
	var wire openAIEmbeddingWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, llmerrors.Wrap(llmerrors.KindParseError, "embedding: decode response", err)
	}
	resp := &types.EmbeddingResponse{
		Model: wire.Model,
		Usage: types.Usage{
			PromptTokens: wire.Usage.PromptTokens,
			TotalTokens:  wire.Usage.TotalTokens,
		},
	}
	for _, d := range wire.Data {
		resp.Vectors = append(resp.Vectors, d.Embedding)
	}
	return resp, nil
}

// CosineSimilarity reports the cosine similarity of two equal-length
// vectors in [-1, 1]. Returns 0 for a zero-magnitude vector.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	dot := floats.Dot(a, b)
	magA := floats.Norm(a, 2)
	magB := floats.Norm(b, 2)
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (magA * magB)
}

// PearsonCorrelation reports the Pearson correlation coefficient of two
// equal-length vectors, an alternate similarity metric some rerank
// pipelines prefer over raw cosine distance.
func PearsonCorrelation(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	return stat.Correlation(a, b, nil)
}
