// Package anthropic implements the Anthropic Messages API transformers,
// grounded in original_source's siumai-provider-anthropic standard
// (utils/tool_choice.rs, utils/finish.rs, utils/errors.rs) and adapted into
// this module's unified request/response types.
package anthropic

import (
	"encoding/json"

	"github.com/taipm/go-llm-gateway/llmerrors"
	"github.com/taipm/go-llm-gateway/types"
)

// ChatTransformer renders ChatRequest into an Anthropic Messages body.
type ChatTransformer struct {
	// DefaultMaxTokens is used when the request doesn't set MaxTokens;
	// Anthropic requires max_tokens on every request.
	DefaultMaxTokens int
}

func (c ChatTransformer) TransformChat(req *types.ChatRequest) (map[string]any, error) {
	if req.Common.Model == "" {
		return nil, llmerrors.New(llmerrors.KindInvalidInput, "model is required")
	}

	var systemParts []string
	messages := make([]map[string]any, 0, len(req.Messages))
	for _, msg := range req.Messages {
		if msg.Role == types.RoleSystem {
			systemParts = append(systemParts, msg.Content)
			continue
		}
		messages = append(messages, convertMessage(msg))
	}

	maxTokens := c.DefaultMaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	if req.Common.MaxTokens != nil {
		maxTokens = *req.Common.MaxTokens
	}

	body := map[string]any{
		"model":      req.Common.Model,
		"messages":   messages,
		"max_tokens": maxTokens,
	}
	if len(systemParts) > 0 {
		body["system"] = joinSystem(systemParts)
	}
	if req.Common.Temperature != nil {
		body["temperature"] = *req.Common.Temperature
	}
	if req.Common.TopP != nil {
		body["top_p"] = *req.Common.TopP
	}
	if len(req.Common.StopSequences) > 0 {
		body["stop_sequences"] = req.Common.StopSequences
	}

	if len(req.Tools) > 0 {
		tools := convertTools(req.Tools)
		if req.ToolChoice != nil {
			if tc := convertToolChoice(*req.ToolChoice); tc != nil {
				body["tool_choice"] = tc
			} else {
				// ToolChoiceNone: Anthropic has no "none"; omit tools entirely.
				tools = nil
			}
		}
		if tools != nil {
			body["tools"] = tools
		}
	}

	if req.Stream {
		body["stream"] = true
	}

	if opts := req.Options.Get("anthropic"); opts != nil {
		for k, v := range opts {
			body[k] = v
		}
	}

	return body, nil
}

func joinSystem(parts []string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += "\n\n" + p
	}
	return out
}

func convertMessage(msg types.Message) map[string]any {
	role := "user"
	if msg.Role == types.RoleAssistant {
		role = "assistant"
	}

	if msg.Role == types.RoleTool {
		return map[string]any{
			"role": "user",
			"content": []map[string]any{
				{
					"type":        "tool_result",
					"tool_use_id": msg.ToolCallID,
					"content":     msg.Content,
				},
			},
		}
	}

	if len(msg.ToolCalls) > 0 {
		content := []map[string]any{}
		if msg.Content != "" {
			content = append(content, map[string]any{"type": "text", "text": msg.Content})
		}
		for _, tc := range msg.ToolCalls {
			content = append(content, map[string]any{
				"type":  "tool_use",
				"id":    tc.ID,
				"name":  tc.Name,
				"input": decodeToolArguments(tc.Arguments),
			})
		}
		return map[string]any{"role": role, "content": content}
	}

	return map[string]any{"role": role, "content": msg.Content}
}

// decodeToolArguments unmarshals a ToolCall's raw JSON arguments string into
// an object so it serializes as Anthropic's tool_use.input expects (a JSON
// object, not a string holding JSON). An empty or unparseable argument
// string becomes an empty object rather than failing the whole request.
func decodeToolArguments(raw string) map[string]any {
	if raw == "" {
		return map[string]any{}
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return map[string]any{}
	}
	return args
}

func convertTools(tools []*types.Tool) []map[string]any {
	out := make([]map[string]any, 0, len(tools))
	for _, t := range tools {
		if t.Function == nil {
			continue
		}
		out = append(out, map[string]any{
			"name":         t.Function.Name,
			"description":  t.Function.Description,
			"input_schema": t.Function.Parameters,
		})
	}
	return out
}

// convertToolChoice mirrors original_source's convert_tool_choice exactly:
// Auto -> {type:auto}, Required -> {type:any}, None -> nil (remove tools),
// Tool{name} -> {type:tool,name}.
func convertToolChoice(tc types.ToolChoice) map[string]any {
	switch tc.Kind {
	case types.ToolChoiceAuto:
		return map[string]any{"type": "auto"}
	case types.ToolChoiceRequired:
		return map[string]any{"type": "any"}
	case types.ToolChoiceNone:
		return nil
	case types.ToolChoiceNamed:
		return map[string]any{"type": "tool", "name": tc.Name}
	default:
		return nil
	}
}
