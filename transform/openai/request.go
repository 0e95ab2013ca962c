// Package openai implements the OpenAI Chat Completions transformers
// (request, response, stream chunk), grounded in the teacher's
// agent/adapters/openai_adapter.go and in original_source's
// siumai-provider-openai-compatible standard.
package openai

import (
	"github.com/taipm/go-llm-gateway/llmerrors"
	"github.com/taipm/go-llm-gateway/types"
)

// ChatTransformer renders ChatRequest into an OpenAI Chat Completions body.
type ChatTransformer struct{}

// TransformChat builds the request body per spec §4.1: max_tokens passes
// through as-is; stream=true adds stream_options.include_usage; tools
// render as Chat-Completions function tools; providerOptions.openai is
// merged shallowly last so callers can override any field.
func (ChatTransformer) TransformChat(req *types.ChatRequest) (map[string]any, error) {
	if req.Common.Model == "" {
		return nil, llmerrors.New(llmerrors.KindInvalidInput, "model is required")
	}

	body := map[string]any{
		"model":    req.Common.Model,
		"messages": convertMessages(req.Messages),
	}

	if req.Common.Temperature != nil {
		body["temperature"] = *req.Common.Temperature
	}
	if req.Common.MaxTokens != nil {
		body["max_tokens"] = *req.Common.MaxTokens
	}
	if req.Common.MaxCompletionTokens != nil {
		body["max_completion_tokens"] = *req.Common.MaxCompletionTokens
	}
	if req.Common.TopP != nil {
		body["top_p"] = *req.Common.TopP
	}
	if len(req.Common.StopSequences) > 0 {
		body["stop"] = req.Common.StopSequences
	}
	if req.Common.Seed != nil {
		body["seed"] = *req.Common.Seed
	}

	if len(req.Tools) > 0 {
		body["tools"] = convertTools(req.Tools)
	}
	if req.ToolChoice != nil {
		if tc := convertToolChoice(*req.ToolChoice); tc != nil {
			body["tool_choice"] = tc
		}
	}

	if req.Stream {
		body["stream"] = true
		body["stream_options"] = map[string]any{"include_usage": true}
	}

	if opts := req.Options.Get("openai"); opts != nil {
		for k, v := range opts {
			body[k] = v
		}
	}

	return body, nil
}

func convertMessages(messages []types.Message) []map[string]any {
	out := make([]map[string]any, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case types.RoleTool:
			out = append(out, map[string]any{
				"role":         "tool",
				"tool_call_id": msg.ToolCallID,
				"content":      msg.Content,
			})
		case types.RoleAssistant:
			m := map[string]any{"role": "assistant", "content": msg.Content}
			if len(msg.ToolCalls) > 0 {
				m["content"] = nil
				calls := make([]map[string]any, len(msg.ToolCalls))
				for i, tc := range msg.ToolCalls {
					calls[i] = map[string]any{
						"id":   tc.ID,
						"type": "function",
						"function": map[string]any{
							"name":      tc.Name,
							"arguments": tc.Arguments,
						},
					}
				}
				m["tool_calls"] = calls
			}
			out = append(out, m)
		default:
			out = append(out, map[string]any{"role": string(msg.Role), "content": msg.Content})
		}
	}
	return out
}

func convertTools(tools []*types.Tool) []map[string]any {
	out := make([]map[string]any, 0, len(tools))
	for _, t := range tools {
		if t.Function == nil {
			continue
		}
		fn := map[string]any{
			"name":        t.Function.Name,
			"description": t.Function.Description,
			"parameters":  t.Function.Parameters,
		}
		if t.Function.Strict {
			fn["strict"] = true
		}
		out = append(out, map[string]any{"type": "function", "function": fn})
	}
	return out
}

func convertToolChoice(tc types.ToolChoice) any {
	switch tc.Kind {
	case types.ToolChoiceAuto:
		return "auto"
	case types.ToolChoiceRequired:
		return "required"
	case types.ToolChoiceNone:
		return "none"
	case types.ToolChoiceNamed:
		return map[string]any{
			"type":     "function",
			"function": map[string]any{"name": tc.Name},
		}
	default:
		return nil
	}
}
