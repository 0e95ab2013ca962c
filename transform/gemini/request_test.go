package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taipm/go-llm-gateway/types"
)

func TestTransformChat_GenerationConfigMapping(t *testing.T) {
	temp := 0.3
	topP := 0.9
	maxTokens := 512
	req := &types.ChatRequest{
		Common: types.CommonParams{
			Model:         "gemini-1.5-pro",
			Temperature:   &temp,
			TopP:          &topP,
			MaxTokens:     &maxTokens,
			StopSequences: []string{"STOP"},
		},
		Messages: []types.Message{types.User("hi")},
	}

	body, err := ChatTransformer{}.TransformChat(req)
	require.NoError(t, err)

	genCfg := body["generationConfig"].(map[string]any)
	assert.Equal(t, 0.3, genCfg["temperature"])
	assert.Equal(t, 0.9, genCfg["topP"])
	assert.Equal(t, 512, genCfg["maxOutputTokens"])
	assert.Equal(t, []string{"STOP"}, genCfg["stopSequences"])
}

func TestTransformChat_ModelIDNormalized(t *testing.T) {
	req := &types.ChatRequest{
		Common:   types.CommonParams{Model: "models/gemini-1.5-pro"},
		Messages: []types.Message{types.User("hi")},
	}

	body, err := ChatTransformer{}.TransformChat(req)
	require.NoError(t, err)
	assert.Equal(t, "gemini-1.5-pro", body["model"])
}

func TestTransformChat_SystemInstructionExtracted(t *testing.T) {
	req := &types.ChatRequest{
		Common: types.CommonParams{Model: "gemini-1.5-pro"},
		Messages: []types.Message{
			types.System("be terse"),
			types.User("hi"),
		},
	}

	body, err := ChatTransformer{}.TransformChat(req)
	require.NoError(t, err)
	require.Contains(t, body, "systemInstruction")
	assert.Len(t, body["contents"], 1)
}

func TestTransformChat_ReplayedToolCallArgsIsAnObjectNotAString(t *testing.T) {
	// Spec §4.5 step 2 -> step 1: a prior assistant tool call gets re-sent as
	// history on the next turn. Gemini's functionCall.args must deserialize
	// as a JSON object, not a string holding JSON.
	req := &types.ChatRequest{
		Common: types.CommonParams{Model: "gemini-1.5-pro"},
		Messages: []types.Message{
			types.User("what's the weather in Hanoi?"),
			{
				Role:      types.RoleAssistant,
				ToolCalls: []types.ToolCall{{ID: "call_1", Name: "get_weather", Arguments: `{"city":"Hanoi"}`}},
			},
			types.ToolResult("call_1", "get_weather", "22C, sunny"),
		},
	}

	body, err := ChatTransformer{}.TransformChat(req)
	require.NoError(t, err)

	contents := body["contents"].([]map[string]any)
	require.Len(t, contents, 3)

	parts := contents[1]["parts"].([]map[string]any)
	require.Len(t, parts, 1)
	fc := parts[0]["functionCall"].(map[string]any)
	assert.Equal(t, map[string]any{"city": "Hanoi"}, fc["args"])
}

func TestDecodeToolArguments_EmptyOrMalformedFallsBackToEmptyObject(t *testing.T) {
	assert.Equal(t, map[string]any{}, decodeToolArguments(""))
	assert.Equal(t, map[string]any{}, decodeToolArguments("not json"))
}
