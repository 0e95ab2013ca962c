package gemini

import (
	"encoding/json"
	"strconv"

	"github.com/taipm/go-llm-gateway/llmerrors"
	"github.com/taipm/go-llm-gateway/types"
)

type generateContentWire struct {
	ModelVersion string `json:"modelVersion"`
	Candidates   []struct {
		Content struct {
			Parts []struct {
				Text             string          `json:"text"`
				FunctionCall     *functionCall   `json:"functionCall"`
				ExecutableCode   json.RawMessage `json:"executableCode"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
		CachedContentTokenCount int `json:"cachedContentTokenCount"`
		ThoughtsTokenCount   int `json:"thoughtsTokenCount"`
	} `json:"usageMetadata"`
}

type functionCall struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args"`
}

// ResponseTransformer parses a Gemini generateContent body.
type ResponseTransformer struct{}

func (ResponseTransformer) ParseChat(body []byte) (*types.ChatResponse, error) {
	var wire generateContentWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, llmerrors.Wrap(llmerrors.KindParseError, "gemini: decode generateContent", err)
	}

	resp := &types.ChatResponse{
		Model: wire.ModelVersion,
		Usage: types.Usage{
			PromptTokens:     wire.UsageMetadata.PromptTokenCount,
			CompletionTokens: wire.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      wire.UsageMetadata.TotalTokenCount,
		},
	}
	if wire.UsageMetadata.CachedContentTokenCount > 0 {
		v := wire.UsageMetadata.CachedContentTokenCount
		resp.Usage.CachedTokens = &v
	}
	if wire.UsageMetadata.ThoughtsTokenCount > 0 {
		v := wire.UsageMetadata.ThoughtsTokenCount
		resp.Usage.ReasoningTokens = &v
	}

	if len(wire.Candidates) == 0 {
		return resp, nil
	}
	cand := wire.Candidates[0]
	for i, part := range cand.Content.Parts {
		if part.FunctionCall != nil {
			resp.ToolCalls = append(resp.ToolCalls, types.ToolCall{
				ID:        syntheticCallID(wire.ModelVersion, i),
				Name:      part.FunctionCall.Name,
				Arguments: string(part.FunctionCall.Args),
			})
			continue
		}
		resp.Content += part.Text
	}
	resp.FinishReason = mapFinishReason(cand.FinishReason)

	return resp, nil
}

// syntheticCallID synthesizes a stable id for Gemini function calls, which
// carry no id of their own on the wire.
func syntheticCallID(model string, index int) string {
	return model + "-call-" + strconv.Itoa(index)
}

func mapFinishReason(reason string) types.FinishReason {
	switch reason {
	case "STOP":
		return types.FinishReason{Tag: types.FinishStop}
	case "MAX_TOKENS":
		return types.FinishReason{Tag: types.FinishLength}
	case "SAFETY", "RECITATION", "BLOCKLIST", "PROHIBITED_CONTENT", "SPII":
		return types.FinishReason{Tag: types.FinishContentFilter}
	case "":
		return types.FinishReason{}
	default:
		return types.OtherFinishReason(reason)
	}
}
