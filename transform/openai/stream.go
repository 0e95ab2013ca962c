package openai

import (
	"encoding/json"

	"github.com/taipm/go-llm-gateway/llmerrors"
	"github.com/taipm/go-llm-gateway/streamcore"
	"github.com/taipm/go-llm-gateway/types"
)

type chatCompletionChunkWire struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Created int64  `json:"created"`
	Choices []struct {
		Index int `json:"index"`
		Delta struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				Index    int    `json:"index"`
				ID       string `json:"id"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// StreamTransformer decodes OpenAI Chat Completions SSE chunks into unified
// events, accumulating enough state to emit a final StreamEnd response.
type StreamTransformer struct {
	started      bool
	contentBuf   []byte
	toolCalls    map[int]*types.ToolCall
	toolOrder    []int
	id, model    string
	created      int64
	finishReason types.FinishReason
	usage        types.Usage
}

func NewStreamTransformer() *StreamTransformer {
	return &StreamTransformer{toolCalls: map[int]*types.ToolCall{}}
}

func (t *StreamTransformer) ProviderID() string { return "openai" }

func (t *StreamTransformer) ConvertEvent(raw streamcore.RawEvent) []streamcore.Result {
	if raw.Data == "[DONE]" {
		return nil
	}

	var chunk chatCompletionChunkWire
	if err := json.Unmarshal([]byte(raw.Data), &chunk); err != nil {
		return []streamcore.Result{streamcore.Err(llmerrors.Wrap(llmerrors.KindParseError, "openai: decode stream chunk", err))}
	}

	var results []streamcore.Result
	if !t.started {
		t.started = true
		t.id, t.model, t.created = chunk.ID, chunk.Model, chunk.Created
		results = append(results, streamcore.Ok(types.NewStreamStart(types.StreamMetadata{
			ID: chunk.ID, Model: chunk.Model, Provider: "openai",
		})))
	}

	for _, choice := range chunk.Choices {
		if choice.Delta.Content != "" {
			t.contentBuf = append(t.contentBuf, choice.Delta.Content...)
			idx := choice.Index
			results = append(results, streamcore.Ok(types.NewContentDelta(choice.Delta.Content, &idx)))
		}
		for _, tc := range choice.Delta.ToolCalls {
			call, exists := t.toolCalls[tc.Index]
			if !exists {
				call = &types.ToolCall{ID: tc.ID, Name: tc.Function.Name}
				t.toolCalls[tc.Index] = call
				t.toolOrder = append(t.toolOrder, tc.Index)
			}
			call.Arguments += tc.Function.Arguments
			idx := tc.Index
			results = append(results, streamcore.Ok(types.NewToolCallDelta(tc.ID, tc.Function.Name, tc.Function.Arguments, &idx)))
		}
		if choice.FinishReason != nil {
			t.finishReason = mapFinishReason(*choice.FinishReason)
		}
	}

	if chunk.Usage != nil {
		t.usage = types.Usage{
			PromptTokens:     chunk.Usage.PromptTokens,
			CompletionTokens: chunk.Usage.CompletionTokens,
			TotalTokens:      chunk.Usage.TotalTokens,
		}
		results = append(results, streamcore.Ok(types.NewUsageUpdate(t.usage)))
	}

	return results
}

func (t *StreamTransformer) HandleStreamEndEvents() []streamcore.Result {
	resp := &types.ChatResponse{
		ID:           t.id,
		Model:        t.model,
		Created:      t.created,
		Content:      string(t.contentBuf),
		FinishReason: t.finishReason,
		Usage:        t.usage,
	}
	for _, idx := range t.toolOrder {
		resp.ToolCalls = append(resp.ToolCalls, *t.toolCalls[idx])
	}
	return []streamcore.Result{streamcore.Ok(types.NewStreamEnd(resp))}
}

func (t *StreamTransformer) FinalizeOnDisconnect() bool { return true }
