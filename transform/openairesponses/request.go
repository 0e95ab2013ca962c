// Package openairesponses implements the OpenAI Responses API transformers:
// request rendering into typed input_* items, response parsing, and the SSE
// state machine described in spec §4.1.1 — the hardest transformer in this
// module. Grounded in original_source's
// siumai-protocol-openai/src/standards/openai/responses_sse converter
// (state.rs's per-item emission-once sets and function-call table) and in
// the teacher's agent/adapters/openai_adapter.go for the surrounding
// request/response shape this standard reuses from Chat Completions.
package openairesponses

import (
	"github.com/taipm/go-llm-gateway/llmerrors"
	"github.com/taipm/go-llm-gateway/types"
)

// ChatTransformer renders ChatRequest into a Responses API body: messages
// become typed input_* items instead of the flat {role,content} shape Chat
// Completions uses. Several OpenAI-specific knobs (reasoning_effort,
// verbosity, truncation, prompt_cache_key, prompt_cache_retention,
// service_tier) are read from the open providerOptions map under the
// "openai" key (see applyTypedOptions).
type ChatTransformer struct{}

// ResponsesOptions lists the Responses-specific knobs spec §4.1 names.
// TransformChat does not read this struct, and its fields carry no JSON
// tags: the knobs reach the request body only as snake_case keys of
// ChatRequest.Options.Get("openai"), which TransformChat reads directly.
type ResponsesOptions struct {
	ReasoningEffort       string
	Verbosity             string
	Truncation             string
	PromptCacheKey         string
	PromptCacheRetention   string
	ServiceTier            string
	Store                  *bool
	PreviousResponseID     string
}

func (ChatTransformer) TransformChat(req *types.ChatRequest) (map[string]any, error) {
	if req.Common.Model == "" {
		return nil, llmerrors.New(llmerrors.KindInvalidInput, "model is required")
	}

	body := map[string]any{
		"model": req.Common.Model,
		"input": convertInputItems(req.Messages),
	}

	if req.Common.Temperature != nil {
		body["temperature"] = *req.Common.Temperature
	}
	if req.Common.TopP != nil {
		body["top_p"] = *req.Common.TopP
	}
	if req.Common.MaxCompletionTokens != nil {
		body["max_output_tokens"] = *req.Common.MaxCompletionTokens
	} else if req.Common.MaxTokens != nil {
		body["max_output_tokens"] = *req.Common.MaxTokens
	}
	if len(req.Common.StopSequences) > 0 {
		body["stop"] = req.Common.StopSequences
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
	}

	applyTypedOptions(body, req.Options.Get("openai"))

	return body, nil
}

func applyTypedOptions(body map[string]any, opts map[string]any) {
	if opts == nil {
		return
	}
	pass := []string{
		"reasoning_effort", "verbosity", "truncation",
		"prompt_cache_key", "prompt_cache_retention", "service_tier",
		"store", "previous_response_id",
	}
	renamed := map[string]string{
		"reasoning_effort": "reasoning", // nested under {"reasoning":{"effort":...}}
	}
	_ = renamed
	for _, k := range pass {
		if v, ok := opts[k]; ok {
			switch k {
			case "reasoning_effort":
				body["reasoning"] = map[string]any{"effort": v}
			default:
				body[k] = v
			}
		}
	}
	// Any remaining unrecognized keys are merged through verbatim, last,
	// matching Chat Completions' "shallow merge of providerOptions.openai".
	for k, v := range opts {
		switch k {
		case "reasoning_effort", "verbosity", "truncation",
			"prompt_cache_key", "prompt_cache_retention", "service_tier",
			"store", "previous_response_id":
			continue
		default:
			body[k] = v
		}
	}
}

func convertInputItems(messages []types.Message) []map[string]any {
	out := make([]map[string]any, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case types.RoleTool:
			out = append(out, map[string]any{
				"type":    "function_call_output",
				"call_id": msg.ToolCallID,
				"output":  msg.Content,
			})
		case types.RoleAssistant:
			if len(msg.ToolCalls) > 0 {
				for _, tc := range msg.ToolCalls {
					out = append(out, map[string]any{
						"type":      "function_call",
						"call_id":   tc.ID,
						"name":      tc.Name,
						"arguments": tc.Arguments,
					})
				}
				if msg.Content == "" {
					continue
				}
			}
			out = append(out, map[string]any{
				"type": "message",
				"role": "assistant",
				"content": []map[string]any{
					{"type": "output_text", "text": msg.Content},
				},
			})
		default:
			out = append(out, map[string]any{
				"type":    "message",
				"role":    string(msg.Role),
				"content": convertContent(msg),
			})
		}
	}
	return out
}

func convertContent(msg types.Message) []map[string]any {
	if len(msg.Parts) == 0 {
		return []map[string]any{{"type": "input_text", "text": msg.Content}}
	}
	parts := make([]map[string]any, 0, len(msg.Parts))
	for _, p := range msg.Parts {
		switch p.Type {
		case types.PartText:
			parts = append(parts, map[string]any{"type": "input_text", "text": p.Text})
		case types.PartImage:
			img := map[string]any{"type": "input_image"}
			if p.URL != "" {
				img["image_url"] = p.URL
			} else {
				img["image_url"] = "data:" + p.MimeType + ";base64," + p.Data
			}
			parts = append(parts, img)
		case types.PartFile:
			parts = append(parts, map[string]any{
				"type": "input_file", "filename": p.Filename, "file_data": p.Data,
			})
		}
	}
	return parts
}

func convertTools(tools []*types.Tool) []map[string]any {
	out := make([]map[string]any, 0, len(tools))
	for _, t := range tools {
		switch {
		case t.Function != nil:
			fn := map[string]any{
				"type":        "function",
				"name":        t.Function.Name,
				"description": t.Function.Description,
				"parameters":  t.Function.Parameters,
			}
			if t.Function.Strict {
				fn["strict"] = true
			}
			out = append(out, fn)
		case t.ProviderDefined != nil:
			hosted := map[string]any{"type": t.ProviderDefined.ID}
			for k, v := range t.ProviderDefined.Config {
				hosted[k] = v
			}
			out = append(out, hosted)
		}
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
		return map[string]any{"type": "function", "name": tc.Name}
	default:
		return nil
	}
}
