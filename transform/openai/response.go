package openai

import (
	"encoding/json"

	"github.com/taipm/go-llm-gateway/llmerrors"
	"github.com/taipm/go-llm-gateway/types"
)

type chatCompletionWire struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Created int64  `json:"created"`
	Choices []struct {
		Message struct {
			Content   *string `json:"content"`
			Refusal   string  `json:"refusal"`
			ToolCalls []struct {
				ID       string `json:"id"`
				Type     string `json:"type"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
			ExtraReasoning string `json:"reasoning_content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
		PromptTokensDetails struct {
			CachedTokens int `json:"cached_tokens"`
		} `json:"prompt_tokens_details"`
		CompletionTokensDetails struct {
			ReasoningTokens int `json:"reasoning_tokens"`
		} `json:"completion_tokens_details"`
	} `json:"usage"`
}

// ResponseTransformer parses an OpenAI Chat Completions body.
type ResponseTransformer struct{}

func (ResponseTransformer) ParseChat(body []byte) (*types.ChatResponse, error) {
	var wire chatCompletionWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, llmerrors.Wrap(llmerrors.KindParseError, "openai: decode chat completion", err)
	}

	resp := &types.ChatResponse{
		ID:      wire.ID,
		Model:   wire.Model,
		Created: wire.Created,
		Usage: types.Usage{
			PromptTokens:     wire.Usage.PromptTokens,
			CompletionTokens: wire.Usage.CompletionTokens,
			TotalTokens:      wire.Usage.TotalTokens,
		},
	}
	if wire.Usage.PromptTokensDetails.CachedTokens > 0 {
		v := wire.Usage.PromptTokensDetails.CachedTokens
		resp.Usage.CachedTokens = &v
	}
	if wire.Usage.CompletionTokensDetails.ReasoningTokens > 0 {
		v := wire.Usage.CompletionTokensDetails.ReasoningTokens
		resp.Usage.ReasoningTokens = &v
	}

	if len(wire.Choices) == 0 {
		return resp, nil
	}
	choice := wire.Choices[0]
	if choice.Message.Content != nil {
		resp.Content = *choice.Message.Content
	}
	if resp.Content == "" && choice.Message.ExtraReasoning != "" {
		resp.Reasoning = choice.Message.ExtraReasoning
	}
	resp.FinishReason = mapFinishReason(choice.FinishReason)
	for _, tc := range choice.Message.ToolCalls {
		resp.ToolCalls = append(resp.ToolCalls, types.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}

	return resp, nil
}

func mapFinishReason(reason string) types.FinishReason {
	switch reason {
	case "stop":
		return types.FinishReason{Tag: types.FinishStop}
	case "length":
		return types.FinishReason{Tag: types.FinishLength}
	case "tool_calls":
		return types.FinishReason{Tag: types.FinishToolCalls}
	case "content_filter":
		return types.FinishReason{Tag: types.FinishContentFilter}
	case "":
		return types.FinishReason{}
	default:
		return types.OtherFinishReason(reason)
	}
}
