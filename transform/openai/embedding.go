package openai

import (
	"github.com/taipm/go-llm-gateway/llmerrors"
	"github.com/taipm/go-llm-gateway/types"
)

// EmbeddingTransformer renders an EmbeddingRequest into an OpenAI
// /embeddings body, reused verbatim by transform/compat for every
// OpenAI-compatible vendor that speaks the same embeddings wire shape.
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
	if opts := req.Options.Get("openai"); opts != nil {
		for k, v := range opts {
			body[k] = v
		}
	}
	return body, nil
}
