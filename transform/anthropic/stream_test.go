package anthropic

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taipm/go-llm-gateway/streamcore"
	"github.com/taipm/go-llm-gateway/types"
)

func TestStreamTransformer_TextAndToolUse(t *testing.T) {
	tr := NewStreamTransformer()

	start := tr.ConvertEvent(streamcore.RawEvent{Data: `{"type":"message_start","message":{"id":"msg_1","model":"claude-3-5-sonnet-20241022","usage":{"input_tokens":10}}}`})
	assert.Len(t, start, 1)
	assert.Equal(t, types.EventStreamStart, start[0].Event.Kind)

	blockStart := tr.ConvertEvent(streamcore.RawEvent{Data: `{"type":"content_block_start","index":0,"content_block":{"type":"tool_use","id":"toolu_1","name":"get_weather"}}`})
	assert.Nil(t, blockStart)

	argsDelta := tr.ConvertEvent(streamcore.RawEvent{Data: `{"type":"content_block_delta","index":0,"delta":{"type":"input_json_delta","partial_json":"{\"city\":"}}`})
	assert.Len(t, argsDelta, 1)
	assert.Equal(t, types.EventToolCallDelta, argsDelta[0].Event.Kind)
	assert.Equal(t, "get_weather", argsDelta[0].Event.ToolCallName)

	argsDelta2 := tr.ConvertEvent(streamcore.RawEvent{Data: `{"type":"content_block_delta","index":0,"delta":{"type":"input_json_delta","partial_json":"\"Hanoi\"}"}}`})
	assert.Len(t, argsDelta2, 1)

	msgDelta := tr.ConvertEvent(streamcore.RawEvent{Data: `{"type":"message_delta","delta":{"stop_reason":"tool_use"},"usage":{"output_tokens":7}}`})
	assert.Len(t, msgDelta, 1)
	assert.Equal(t, types.EventUsageUpdate, msgDelta[0].Event.Kind)
	assert.Equal(t, 17, msgDelta[0].Event.Usage.TotalTokens)

	end := tr.HandleStreamEndEvents()
	assert.Len(t, end, 1)
	resp := end[0].Event.Response
	assert.Equal(t, types.FinishToolCalls, resp.FinishReason.Tag)
	assert.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, `{"city":"Hanoi"}`, resp.ToolCalls[0].Arguments)
}

func TestStreamTransformer_TextDeltaConcatenationMatchesStreamEnd(t *testing.T) {
	tr := NewStreamTransformer()
	tr.ConvertEvent(streamcore.RawEvent{Data: `{"type":"message_start","message":{"id":"msg_2","model":"claude-3-5-sonnet-20241022","usage":{"input_tokens":1}}}`})

	var concatenated string
	for _, chunk := range []string{"Hello", ", ", "world"} {
		results := tr.ConvertEvent(streamcore.RawEvent{Data: `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"` + chunk + `"}}`})
		assert.Len(t, results, 1)
		concatenated += results[0].Event.Delta
	}

	end := tr.HandleStreamEndEvents()
	assert.Equal(t, concatenated, end[0].Event.Response.Content)
	assert.Equal(t, "Hello, world", concatenated)
}

func TestStreamTransformer_ErrorEventDeliveredWithoutAborting(t *testing.T) {
	tr := NewStreamTransformer()
	results := tr.ConvertEvent(streamcore.RawEvent{Data: `{"type":"error","error":{"type":"overloaded_error","message":"overloaded"}}`})
	assert.Len(t, results, 1)
	assert.Error(t, results[0].Err)
	assert.True(t, tr.FinalizeOnDisconnect())
}
