package anthropic

import (
	"encoding/json"

	"github.com/taipm/go-llm-gateway/llmerrors"
	"github.com/taipm/go-llm-gateway/types"
)

type messageWire struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Content []struct {
		Type  string          `json:"type"`
		Text  string          `json:"text"`
		ID    string          `json:"id"`
		Name  string          `json:"name"`
		Input json.RawMessage `json:"input"`
	} `json:"content"`
	StopReason   string `json:"stop_reason"`
	StopSequence string `json:"stop_sequence"`
	Usage        struct {
		InputTokens              int `json:"input_tokens"`
		OutputTokens             int `json:"output_tokens"`
		CacheReadInputTokens     int `json:"cache_read_input_tokens"`
		CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
	} `json:"usage"`
}

// ResponseTransformer parses an Anthropic Messages API body.
type ResponseTransformer struct{}

func (ResponseTransformer) ParseChat(body []byte) (*types.ChatResponse, error) {
	var wire messageWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, llmerrors.Wrap(llmerrors.KindParseError, "anthropic: decode message", err)
	}

	resp := &types.ChatResponse{
		ID:    wire.ID,
		Model: wire.Model,
		Usage: types.Usage{
			PromptTokens:     wire.Usage.InputTokens,
			CompletionTokens: wire.Usage.OutputTokens,
			TotalTokens:      wire.Usage.InputTokens + wire.Usage.OutputTokens,
		},
	}
	if wire.Usage.CacheReadInputTokens > 0 {
		v := wire.Usage.CacheReadInputTokens
		resp.Usage.CachedTokens = &v
	}

	for _, block := range wire.Content {
		switch block.Type {
		case "text":
			resp.Content += block.Text
		case "thinking":
			resp.Reasoning += block.Text
		case "tool_use":
			resp.ToolCalls = append(resp.ToolCalls, types.ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: string(block.Input),
			})
		}
	}

	resp.FinishReason = mapFinishReason(wire.StopReason)
	return resp, nil
}

// mapFinishReason mirrors original_source's utils/finish.rs mapping exactly:
// end_turn -> Stop, max_tokens -> Length, stop_sequence -> StopSequence,
// tool_use -> ToolCalls, refusal -> ContentFilter, pause_turn -> Other(raw).
func mapFinishReason(reason string) types.FinishReason {
	switch reason {
	case "end_turn":
		return types.FinishReason{Tag: types.FinishStop}
	case "max_tokens":
		return types.FinishReason{Tag: types.FinishLength}
	case "stop_sequence":
		return types.FinishReason{Tag: types.FinishStopSequence}
	case "tool_use":
		return types.FinishReason{Tag: types.FinishToolCalls}
	case "refusal":
		return types.FinishReason{Tag: types.FinishContentFilter}
	case "":
		return types.FinishReason{}
	default:
		// pause_turn and any future reason: surfaced verbatim. Auto-resume
		// on pause_turn is left to the tool-loop orchestrator, not this
		// transformer (Open Question, see DESIGN.md).
		return types.OtherFinishReason(reason)
	}
}

// ClassifyError maps an Anthropic error response body to an llmerrors.Error,
// per original_source's utils/errors.rs table. "overloaded_error" maps to a
// rate-limit error whatever the status, and a 529 status with an
// unrecognized error type maps the same way; Code is always the HTTP status
// actually received.
func ClassifyError(statusCode int, body []byte) error {
	var wire struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	_ = json.Unmarshal(body, &wire)

	kind := kindForType(wire.Error.Type, statusCode)
	msg := wire.Error.Message
	if msg == "" {
		msg = wire.Error.Type
	}
	return &llmerrors.Error{
		Kind:    kind,
		Message: msg,
		Code:    statusCode,
		Details: map[string]any{"type": wire.Error.Type},
	}
}

func kindForType(errType string, statusCode int) llmerrors.Kind {
	switch errType {
	case "authentication_error":
		return llmerrors.KindAuthentication
	case "permission_error":
		return llmerrors.KindAuthentication
	case "not_found_error":
		return llmerrors.KindNotFound
	case "invalid_request_error", "request_too_large":
		return llmerrors.KindInvalidInput
	case "rate_limit_error":
		return llmerrors.KindRateLimit
	case "overloaded_error":
		return llmerrors.KindRateLimit
	case "api_error":
		return llmerrors.KindAPIError
	default:
		switch {
		case statusCode == llmerrors.AnthropicOverloadCode:
			return llmerrors.KindRateLimit
		case statusCode == 401:
			return llmerrors.KindAuthentication
		case statusCode == 403:
			return llmerrors.KindAuthentication
		case statusCode == 404:
			return llmerrors.KindNotFound
		case statusCode == 429:
			return llmerrors.KindRateLimit
		case statusCode >= 500:
			return llmerrors.KindAPIError
		default:
			return llmerrors.KindAPIError
		}
	}
}
