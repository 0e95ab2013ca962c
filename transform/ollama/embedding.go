package ollama

import (
	"encoding/json"

	"github.com/taipm/go-llm-gateway/llmerrors"
	"github.com/taipm/go-llm-gateway/types"
)

// EmbeddingTransformer renders an EmbeddingRequest into an Ollama
// /api/embed body, which accepts a single string or an array under
// "input" and returns one vector per input.
type EmbeddingTransformer struct{}

func (EmbeddingTransformer) TransformEmbedding(req *types.EmbeddingRequest) (map[string]any, error) {
	if req.Model == "" {
		return nil, llmerrors.New(llmerrors.KindInvalidInput, "model is required")
	}
	if len(req.Input) == 0 {
		return nil, llmerrors.New(llmerrors.KindInvalidInput, "input is required")
	}

	body := map[string]any{
		"model": req.Model,
		"input": req.Input,
	}
	if opts := req.Options.Get("ollama"); opts != nil {
		for k, v := range opts {
			body[k] = v
		}
	}
	return body, nil
}

type embedWire struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// ParseEmbedding parses an Ollama /api/embed response.
func ParseEmbedding(body []byte) (*types.EmbeddingResponse, error) {
	var wire embedWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, llmerrors.Wrap(llmerrors.KindParseError, "ollama: decode embed response", err)
	}
	return &types.EmbeddingResponse{Vectors: wire.Embeddings}, nil
}
