package openairesponses

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taipm/go-llm-gateway/types"
)

func TestTransformChat_RequiresModel(t *testing.T) {
	_, err := ChatTransformer{}.TransformChat(&types.ChatRequest{})
	require.Error(t, err)
}

func TestTransformChat_BasicTextMessage(t *testing.T) {
	req := &types.ChatRequest{
		Common: types.CommonParams{Model: "gpt-4.1"},
		Messages: []types.Message{
			types.System("be terse"),
			types.User("hello"),
		},
	}
	body, err := ChatTransformer{}.TransformChat(req)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4.1", body["model"])

	items, ok := body["input"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, items, 2)
	assert.Equal(t, "system", items[0]["role"])
	assert.Equal(t, "user", items[1]["role"])
}

func TestTransformChat_ReasoningEffortNestsUnderReasoning(t *testing.T) {
	req := &types.ChatRequest{
		Common: types.CommonParams{Model: "o4-mini"},
		Messages: []types.Message{types.User("solve it")},
		Options: types.ProviderOptions{
			"openai": {"reasoning_effort": "high", "store": true},
		},
	}
	body, err := ChatTransformer{}.TransformChat(req)
	require.NoError(t, err)

	reasoning, ok := body["reasoning"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "high", reasoning["effort"])
	assert.Equal(t, true, body["store"])
}

func TestTransformChat_ToolCallMessageBecomesFunctionCallOutput(t *testing.T) {
	req := &types.ChatRequest{
		Common: types.CommonParams{Model: "gpt-4.1"},
		Messages: []types.Message{
			types.User("what's the weather"),
			{
				Role:      types.RoleAssistant,
				ToolCalls: []types.ToolCall{{ID: "call_1", Name: "get_weather", Arguments: `{"city":"Hanoi"}`}},
			},
			types.ToolResult("call_1", "get_weather", `{"tempC":30}`),
		},
	}
	body, err := ChatTransformer{}.TransformChat(req)
	require.NoError(t, err)

	items := body["input"].([]map[string]any)
	require.Len(t, items, 3)
	assert.Equal(t, "function_call", items[1]["type"])
	assert.Equal(t, "call_1", items[1]["call_id"])
	assert.Equal(t, "function_call_output", items[2]["type"])
	assert.Equal(t, `{"tempC":30}`, items[2]["output"])
}

func TestConvertToolChoice_Named(t *testing.T) {
	tc := types.ToolChoiceFor("get_weather")
	out := convertToolChoice(tc)
	m, ok := out.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "function", m["type"])
	assert.Equal(t, "get_weather", m["name"])
}

func TestConvertTools_FunctionAndProviderDefined(t *testing.T) {
	tools := []*types.Tool{
		types.NewFunctionTool("get_weather", "fetches weather"),
		{ProviderDefined: &types.ProviderDefinedTool{ID: "web_search", Config: map[string]any{"max_uses": 3}}},
	}
	out := convertTools(tools)
	require.Len(t, out, 2)
	assert.Equal(t, "function", out[0]["type"])
	assert.Equal(t, "web_search", out[1]["type"])
	assert.Equal(t, 3, out[1]["max_uses"])
}
