// Package ollama implements transformers for the Ollama /api/chat endpoint,
// grounded in original_source's siumai-core/standards/ollama/params.rs and
// siumai-provider-ollama/provider_options/ollama.rs.
package ollama

import (
	"github.com/taipm/go-llm-gateway/llmerrors"
	"github.com/taipm/go-llm-gateway/types"
)

// ChatTransformer renders ChatRequest into an Ollama /api/chat body.
// CommonParams.MaxTokens maps to options.num_predict (Ollama has no
// top-level max_tokens field); temperature/top_p/stop also live under
// the nested "options" object.
type ChatTransformer struct{}

func (ChatTransformer) TransformChat(req *types.ChatRequest) (map[string]any, error) {
	if req.Common.Model == "" {
		return nil, llmerrors.New(llmerrors.KindInvalidInput, "model is required")
	}

	body := map[string]any{
		"model":    req.Common.Model,
		"messages": convertMessages(req.Messages),
		"stream":   req.Stream,
	}

	options := map[string]any{}
	if req.Common.Temperature != nil {
		options["temperature"] = *req.Common.Temperature
	}
	if req.Common.TopP != nil {
		options["top_p"] = *req.Common.TopP
	}
	if req.Common.MaxTokens != nil {
		options["num_predict"] = *req.Common.MaxTokens
	}
	if len(req.Common.StopSequences) > 0 {
		options["stop"] = req.Common.StopSequences
	}
	if req.Common.Seed != nil {
		options["seed"] = *req.Common.Seed
	}

	if len(req.Tools) > 0 {
		body["tools"] = convertTools(req.Tools)
	}

	if opts := req.Options.Get("ollama"); opts != nil {
		for k, v := range opts {
			switch k {
			case "keep_alive", "raw", "format", "think":
				body[k] = v
			default:
				options[k] = v
			}
		}
	}

	if len(options) > 0 {
		body["options"] = options
	}

	return body, nil
}

func convertMessages(messages []types.Message) []map[string]any {
	out := make([]map[string]any, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case types.RoleTool:
			out = append(out, map[string]any{
				"role":    "tool",
				"content": msg.Content,
			})
		case types.RoleAssistant:
			m := map[string]any{"role": "assistant", "content": msg.Content}
			if len(msg.ToolCalls) > 0 {
				calls := make([]map[string]any, len(msg.ToolCalls))
				for i, tc := range msg.ToolCalls {
					calls[i] = map[string]any{
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
		out = append(out, map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        t.Function.Name,
				"description": t.Function.Description,
				"parameters":  t.Function.Parameters,
			},
		})
	}
	return out
}
