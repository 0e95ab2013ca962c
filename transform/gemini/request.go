// Package gemini implements the Google Gemini generateContent transformers,
// grounded in original_source's gemini_request_params_transform_test.rs and
// gemini_imagen_image_generation_alignment_test.rs, which pin the exact
// generationConfig field names and Imagen default/warning behavior.
package gemini

import (
	"encoding/json"
	"strings"

	"github.com/taipm/go-llm-gateway/llmerrors"
	"github.com/taipm/go-llm-gateway/types"
)

// ChatTransformer renders ChatRequest into a Gemini generateContent body.
type ChatTransformer struct{}

func (ChatTransformer) TransformChat(req *types.ChatRequest) (map[string]any, error) {
	if req.Common.Model == "" {
		return nil, llmerrors.New(llmerrors.KindInvalidInput, "model is required")
	}

	var systemInstruction map[string]any
	contents := make([]map[string]any, 0, len(req.Messages))
	for _, msg := range req.Messages {
		if msg.Role == types.RoleSystem {
			systemInstruction = map[string]any{
				"parts": []map[string]any{{"text": msg.Content}},
			}
			continue
		}
		contents = append(contents, convertMessage(msg))
	}

	body := map[string]any{
		"model":    NormalizeModelID(req.Common.Model),
		"contents": contents,
	}
	if systemInstruction != nil {
		body["systemInstruction"] = systemInstruction
	}

	genCfg := map[string]any{}
	if req.Common.Temperature != nil {
		genCfg["temperature"] = *req.Common.Temperature
	}
	if req.Common.TopP != nil {
		genCfg["topP"] = *req.Common.TopP
	}
	if req.Common.MaxTokens != nil {
		genCfg["maxOutputTokens"] = *req.Common.MaxTokens
	}
	if len(req.Common.StopSequences) > 0 {
		genCfg["stopSequences"] = req.Common.StopSequences
	}
	if len(genCfg) > 0 {
		body["generationConfig"] = genCfg
	}

	if len(req.Tools) > 0 {
		body["tools"] = []map[string]any{{"functionDeclarations": convertTools(req.Tools)}}
	}
	if req.ToolChoice != nil {
		if tc := convertToolChoice(*req.ToolChoice); tc != nil {
			body["toolConfig"] = tc
		}
	}

	if opts := req.Options.Get("gemini"); opts != nil {
		for k, v := range opts {
			body[k] = v
		}
	}

	return body, nil
}

// NormalizeModelID strips the "models/" and "publishers/google/models/"
// path prefixes Gemini and Vertex both accept in a model string, so the
// URL builder can always append exactly one "models/{id}" segment.
func NormalizeModelID(model string) string {
	model = strings.TrimPrefix(model, "publishers/google/models/")
	model = strings.TrimPrefix(model, "models/")
	return model
}

func convertMessage(msg types.Message) map[string]any {
	role := "user"
	if msg.Role == types.RoleAssistant {
		role = "model"
	}

	if msg.Role == types.RoleTool {
		return map[string]any{
			"role": "function",
			"parts": []map[string]any{{
				"functionResponse": map[string]any{
					"name":     msg.ToolName,
					"response": map[string]any{"result": msg.Content},
				},
			}},
		}
	}

	parts := []map[string]any{}
	if msg.Content != "" {
		parts = append(parts, map[string]any{"text": msg.Content})
	}
	for _, tc := range msg.ToolCalls {
		parts = append(parts, map[string]any{
			"functionCall": map[string]any{"name": tc.Name, "args": decodeToolArguments(tc.Arguments)},
		})
	}
	return map[string]any{"role": role, "parts": parts}
}

// decodeToolArguments unmarshals a ToolCall's raw JSON arguments string into
// an object so it serializes as Gemini's functionCall.args expects (a JSON
// object, not a string holding JSON). An empty or unparseable argument string
// becomes an empty object rather than failing the whole request.
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
			"name":        t.Function.Name,
			"description": t.Function.Description,
			"parameters":  t.Function.Parameters,
		})
	}
	return out
}

func convertToolChoice(tc types.ToolChoice) map[string]any {
	switch tc.Kind {
	case types.ToolChoiceAuto:
		return map[string]any{"functionCallingConfig": map[string]any{"mode": "AUTO"}}
	case types.ToolChoiceRequired:
		return map[string]any{"functionCallingConfig": map[string]any{"mode": "ANY"}}
	case types.ToolChoiceNone:
		return map[string]any{"functionCallingConfig": map[string]any{"mode": "NONE"}}
	case types.ToolChoiceNamed:
		return map[string]any{"functionCallingConfig": map[string]any{
			"mode":                 "ANY",
			"allowedFunctionNames": []string{tc.Name},
		}}
	default:
		return nil
	}
}
