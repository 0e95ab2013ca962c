package gemini

import (
	"encoding/json"

	"github.com/taipm/go-llm-gateway/llmerrors"
	"github.com/taipm/go-llm-gateway/types"
)

// EmbeddingTransformer renders an EmbeddingRequest into a Gemini
// :embedContent body. The providerspec EmbeddingURL addresses the
// single-content :embedContent method, so only req.Input[0] is embedded;
// a multi-input request needs :batchEmbedContents instead, which this
// transformer does not address.
type EmbeddingTransformer struct{}

func (EmbeddingTransformer) TransformEmbedding(req *types.EmbeddingRequest) (map[string]any, error) {
	if req.Model == "" {
		return nil, llmerrors.New(llmerrors.KindInvalidInput, "model is required")
	}
	if len(req.Input) == 0 {
		return nil, llmerrors.New(llmerrors.KindInvalidInput, "input is required")
	}

	model := NormalizeModelID(req.Model)
	return map[string]any{
		"model":   "models/" + model,
		"content": map[string]any{"parts": []map[string]any{{"text": req.Input[0]}}},
	}, nil
}

type embedContentWire struct {
	Embedding struct {
		Values []float64 `json:"values"`
	} `json:"embedding"`
}

// ParseEmbedding parses a Gemini :embedContent response.
func ParseEmbedding(body []byte) (*types.EmbeddingResponse, error) {
	var wire embedContentWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, llmerrors.Wrap(llmerrors.KindParseError, "gemini: decode embedContent", err)
	}
	return &types.EmbeddingResponse{Vectors: [][]float64{wire.Embedding.Values}}, nil
}
