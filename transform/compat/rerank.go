package compat

import (
	"encoding/json"

	"github.com/taipm/go-llm-gateway/llmerrors"
	"github.com/taipm/go-llm-gateway/types"
)

// RerankTransformer renders a RerankRequest into the {model, query,
// documents, top_n} body shared by the OpenAI-compatible rerank endpoints
// (spec §4.1: "rerank URL = {base}/rerank"; adapter-specific knobs like
// return_documents/max_chunks_per_doc/overlap_tokens ride in
// providerOptions[VendorKey] the same way chat/embedding knobs do).
type RerankTransformer struct {
	VendorKey string
}

func NewRerankTransformer(vendorKey string) RerankTransformer {
	return RerankTransformer{VendorKey: vendorKey}
}

func (r RerankTransformer) TransformRerank(req *types.RerankRequest) (map[string]any, error) {
	if req.Model == "" {
		return nil, llmerrors.New(llmerrors.KindInvalidInput, "model is required")
	}
	if req.Query == "" {
		return nil, llmerrors.New(llmerrors.KindInvalidInput, "query is required")
	}
	if len(req.Documents) == 0 {
		return nil, llmerrors.New(llmerrors.KindInvalidInput, "documents is required")
	}

	body := map[string]any{
		"model":     req.Model,
		"query":     req.Query,
		"documents": req.Documents,
	}
	if req.TopN > 0 {
		body["top_n"] = req.TopN
	}
	if opts := req.Options.Get(r.VendorKey); opts != nil {
		for k, v := range opts {
			body[k] = v
		}
	}
	return body, nil
}

type rerankWire struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
	Usage struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

// ParseRerank parses the {results:[{index, relevance_score}], usage} shape
// shared by the OpenAI-compatible rerank vendors.
func ParseRerank(body []byte) (*types.RerankResponse, error) {
	var wire rerankWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, llmerrors.Wrap(llmerrors.KindParseError, "rerank: decode response", err)
	}
	resp := &types.RerankResponse{
		Usage: types.Usage{
			PromptTokens: wire.Usage.PromptTokens,
			TotalTokens:  wire.Usage.TotalTokens,
		},
	}
	for _, r := range wire.Results {
		resp.Results = append(resp.Results, types.RerankResult{Index: r.Index, Score: r.RelevanceScore})
	}
	return resp, nil
}
