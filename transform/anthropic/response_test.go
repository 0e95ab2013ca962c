package anthropic

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taipm/go-llm-gateway/types"
)

func TestMapFinishReason(t *testing.T) {
	cases := []struct {
		wire string
		want types.FinishReason
	}{
		{"end_turn", types.FinishReason{Tag: types.FinishStop}},
		{"max_tokens", types.FinishReason{Tag: types.FinishLength}},
		{"stop_sequence", types.FinishReason{Tag: types.FinishStopSequence}},
		{"tool_use", types.FinishReason{Tag: types.FinishToolCalls}},
		{"refusal", types.FinishReason{Tag: types.FinishContentFilter}},
		{"pause_turn", types.OtherFinishReason("pause_turn")},
	}

	for _, tc := range cases {
		t.Run(tc.wire, func(t *testing.T) {
			assert.Equal(t, tc.want, mapFinishReason(tc.wire))
		})
	}
}

func TestParseChat_ToolUseBlock(t *testing.T) {
	body := []byte(`{
		"id": "msg_1",
		"model": "claude-3-5-sonnet-20241022",
		"content": [{"type":"tool_use","id":"toolu_1","name":"get_weather","input":{"city":"Hanoi"}}],
		"stop_reason": "tool_use",
		"usage": {"input_tokens": 10, "output_tokens": 5}
	}`)

	resp, err := ResponseTransformer{}.ParseChat(body)
	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal(types.FinishToolCalls, resp.FinishReason.Tag)
	assert.Len(resp.ToolCalls, 1)
	assert.Equal("get_weather", resp.ToolCalls[0].Name)
}

func TestClassifyError_OverloadedIsRetryable(t *testing.T) {
	body := []byte(`{"error":{"type":"overloaded_error","message":"overloaded"}}`)
	err := ClassifyError(529, body)
	assert.True(t, func() bool {
		type retryable interface{ Retryable() bool }
		r, ok := err.(retryable)
		return ok && r.Retryable()
	}())
}
