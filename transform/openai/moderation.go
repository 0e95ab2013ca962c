package openai

import (
	"encoding/json"

	"github.com/taipm/go-llm-gateway/llmerrors"
	"github.com/taipm/go-llm-gateway/types"
)

// ModerationTransformer renders a ModerationRequest into an OpenAI
// /moderations body.
type ModerationTransformer struct{}

func (ModerationTransformer) TransformModeration(req *types.ModerationRequest) (map[string]any, error) {
	if len(req.Input) == 0 {
		return nil, llmerrors.New(llmerrors.KindInvalidInput, "input is required")
	}

	body := map[string]any{"input": req.Input}
	if req.Model != "" {
		body["model"] = req.Model
	}
	if opts := req.Options.Get("openai"); opts != nil {
		for k, v := range opts {
			body[k] = v
		}
	}
	return body, nil
}

type moderationWire struct {
	Results []struct {
		Flagged        bool               `json:"flagged"`
		Categories     map[string]bool    `json:"categories"`
		CategoryScores map[string]float64 `json:"category_scores"`
	} `json:"results"`
}

// ParseModeration parses an OpenAI /moderations response. When several
// inputs were submitted, the results are folded: Flagged is true if any
// result flagged, and Categories/Scores report the union across results
// (a later true/higher-score wins on key collision).
func ParseModeration(body []byte) (*types.ModerationResponse, error) {
	var wire moderationWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, llmerrors.Wrap(llmerrors.KindParseError, "openai: decode moderation response", err)
	}

	resp := &types.ModerationResponse{
		Categories: map[string]bool{},
		Scores:     map[string]float64{},
	}
	for _, r := range wire.Results {
		if r.Flagged {
			resp.Flagged = true
		}
		for k, v := range r.Categories {
			if v {
				resp.Categories[k] = true
			} else if _, ok := resp.Categories[k]; !ok {
				resp.Categories[k] = false
			}
		}
		for k, v := range r.CategoryScores {
			if v > resp.Scores[k] {
				resp.Scores[k] = v
			}
		}
	}
	return resp, nil
}
