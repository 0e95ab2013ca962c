package gemini

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taipm/go-llm-gateway/types"
)

func TestSystemPrompt_FindsSystemRoleMessage(t *testing.T) {
	msgs := []types.Message{types.System("be concise"), types.User("hi")}
	assert.Equal(t, "be concise", systemPrompt(msgs))
}

func TestSystemPrompt_EmptyWhenNoSystemMessage(t *testing.T) {
	assert.Empty(t, systemPrompt([]types.Message{types.User("hi")}))
}

func TestConvertMessagesToParts_OnlyUserAndAssistantTextSurvive(t *testing.T) {
	msgs := []types.Message{
		types.System("system prompt"),
		types.User("question"),
		types.Assistant("answer"),
		types.ToolResult("call_1", "tool", "result"),
	}
	parts := convertMessagesToParts(msgs)
	require.Len(t, parts, 2)
	assert.Equal(t, genai.Text("question"), parts[0])
	assert.Equal(t, genai.Text("answer"), parts[1])
}

func TestConvertTools_SkipsProviderDefinedTools(t *testing.T) {
	tools := []*types.Tool{
		types.NewFunctionTool("lookup", "looks things up"),
		{ProviderDefined: &types.ProviderDefinedTool{ID: "code_execution"}},
	}
	out := convertTools(tools)
	require.Len(t, out, 1)
	assert.Equal(t, "lookup", out[0].FunctionDeclarations[0].Name)
}

func TestConvertResponse_EmptyCandidatesReturnsZeroValue(t *testing.T) {
	resp := convertResponse(&genai.GenerateContentResponse{})
	assert.Empty(t, resp.Content)
	assert.Empty(t, resp.ToolCalls)
}

func TestConvertResponse_ConcatenatesTextPartsAndExtractsToolCalls(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Parts: []genai.Part{
						genai.Text("part one "),
						genai.Text("part two"),
						genai.FunctionCall{Name: "lookup", Args: map[string]any{"q": "weather"}},
					},
				},
			},
		},
	}
	got := convertResponse(resp)
	assert.Equal(t, "part one part two", got.Content)
	require.Len(t, got.ToolCalls, 1)
	assert.Equal(t, "lookup", got.ToolCalls[0].Name)
	assert.JSONEq(t, `{"q":"weather"}`, got.ToolCalls[0].Arguments)
}

func TestMarshalArgs_EmptyMapYieldsEmptyObject(t *testing.T) {
	assert.Equal(t, "{}", marshalArgs(nil))
	assert.Equal(t, "{}", marshalArgs(map[string]any{}))
}
