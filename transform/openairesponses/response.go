package openairesponses

import (
	"encoding/json"

	"github.com/taipm/go-llm-gateway/llmerrors"
	"github.com/taipm/go-llm-gateway/types"
)

type responseOutputItemWire struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	CallID  string `json:"call_id"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Arguments string `json:"arguments"`
	Summary   []struct {
		Text string `json:"text"`
	} `json:"summary"`
	EncryptedContent string `json:"encrypted_content"`
}

type responseIncompleteDetailsWire struct {
	Reason string `json:"reason"`
}

type responseWire struct {
	ID        string                    `json:"id"`
	Model     string                    `json:"model"`
	CreatedAt int64                     `json:"created_at"`
	Status    string                    `json:"status"`
	Output    []responseOutputItemWire `json:"output"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
		TotalTokens  int `json:"total_tokens"`
		OutputTokensDetails struct {
			ReasoningTokens int `json:"reasoning_tokens"`
		} `json:"output_tokens_details"`
		InputTokensDetails struct {
			CachedTokens int `json:"cached_tokens"`
		} `json:"input_tokens_details"`
	} `json:"usage"`
	IncompleteDetails *responseIncompleteDetailsWire `json:"incomplete_details"`
}

// ResponseTransformer parses the non-streaming Responses API body: each
// output item (message, reasoning, function_call, hosted tool call) is
// folded into the unified ChatResponse, mirroring the reassembly the
// streaming converter does incrementally in stream.go.
type ResponseTransformer struct{}

func (ResponseTransformer) ParseChat(body []byte) (*types.ChatResponse, error) {
	var wire responseWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, llmerrors.Wrap(llmerrors.KindParseError, "openai responses: decode response", err)
	}

	resp := &types.ChatResponse{
		ID:      wire.ID,
		Model:   wire.Model,
		Created: wire.CreatedAt,
		Usage: types.Usage{
			PromptTokens:     wire.Usage.InputTokens,
			CompletionTokens: wire.Usage.OutputTokens,
			TotalTokens:      wire.Usage.TotalTokens,
		},
	}
	if wire.Usage.OutputTokensDetails.ReasoningTokens > 0 {
		v := wire.Usage.OutputTokensDetails.ReasoningTokens
		resp.Usage.ReasoningTokens = &v
	}
	if wire.Usage.InputTokensDetails.CachedTokens > 0 {
		v := wire.Usage.InputTokensDetails.CachedTokens
		resp.Usage.CachedTokens = &v
	}

	var textBuf, reasoningBuf string
	providerMeta := map[string]any{}

	for _, item := range wire.Output {
		switch item.Type {
		case "message":
			for _, c := range item.Content {
				if c.Type == "output_text" {
					textBuf += c.Text
				}
			}
		case "reasoning":
			for _, s := range item.Summary {
				reasoningBuf += s.Text
			}
			if item.EncryptedContent != "" {
				providerMeta["reasoning_encrypted_content"] = item.EncryptedContent
			}
		case "function_call":
			resp.ToolCalls = append(resp.ToolCalls, types.ToolCall{
				ID:        item.CallID,
				Name:      item.Name,
				Arguments: item.Arguments,
			})
		case "web_search_call", "file_search_call", "computer_call", "apply_patch_call":
			resp.ToolCalls = append(resp.ToolCalls, types.ToolCall{
				ID:        item.CallID,
				Name:      item.Type,
				Arguments: item.Arguments,
			})
		}
	}

	resp.Content = textBuf
	resp.Reasoning = reasoningBuf
	if len(providerMeta) > 0 {
		resp.ProviderMetadata = map[string]map[string]any{"openai": providerMeta}
	}

	resp.FinishReason = mapFinishReason(wire.Status, wire.IncompleteDetails, len(resp.ToolCalls) > 0)
	return resp, nil
}

func mapFinishReason(status string, incomplete *responseIncompleteDetailsWire, hasToolCalls bool) types.FinishReason {
	if hasToolCalls {
		return types.FinishReason{Tag: types.FinishToolCalls}
	}
	switch status {
	case "completed":
		return types.FinishReason{Tag: types.FinishStop}
	case "incomplete":
		if incomplete != nil && incomplete.Reason == "max_output_tokens" {
			return types.FinishReason{Tag: types.FinishLength}
		}
		return types.OtherFinishReason("incomplete")
	case "failed", "cancelled":
		return types.OtherFinishReason(status)
	default:
		return types.FinishReason{Tag: types.FinishStop}
	}
}
