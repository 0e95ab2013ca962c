package anthropic

import (
	"encoding/json"

	"github.com/taipm/go-llm-gateway/llmerrors"
	"github.com/taipm/go-llm-gateway/streamcore"
	"github.com/taipm/go-llm-gateway/types"
)

type contentBlockWire struct {
	Type  string          `json:"type"`
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Text  string          `json:"text"`
	Input json.RawMessage `json:"input"`
}

type sseEventWire struct {
	Type         string           `json:"type"`
	Index        int              `json:"index"`
	Message      *messageWire     `json:"message"`
	ContentBlock contentBlockWire `json:"content_block"`
	Delta        struct {
		Type        string `json:"type"`
		Text        string `json:"text"`
		PartialJSON string `json:"partial_json"`
		StopReason  string `json:"stop_reason"`
	} `json:"delta"`
	Usage struct {
		OutputTokens int `json:"output_tokens"`
		InputTokens  int `json:"input_tokens"`
	} `json:"usage"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// StreamTransformer decodes Anthropic Messages API SSE events (message_start,
// content_block_start/delta/stop, message_delta, message_stop), grounded in
// original_source's anthropic standard streaming converter.
type StreamTransformer struct {
	id, model    string
	contentBuf   []byte
	reasoningBuf []byte
	toolCalls    map[int]*types.ToolCall
	toolOrder    []int
	finish       types.FinishReason
	usage        types.Usage
}

func NewStreamTransformer() *StreamTransformer {
	return &StreamTransformer{toolCalls: map[int]*types.ToolCall{}}
}

func (t *StreamTransformer) ProviderID() string { return "anthropic" }

func (t *StreamTransformer) ConvertEvent(raw streamcore.RawEvent) []streamcore.Result {
	var ev sseEventWire
	if err := json.Unmarshal([]byte(raw.Data), &ev); err != nil {
		return []streamcore.Result{streamcore.Err(llmerrors.Wrap(llmerrors.KindParseError, "anthropic: decode stream event", err))}
	}

	switch ev.Type {
	case "message_start":
		if ev.Message != nil {
			t.id, t.model = ev.Message.ID, ev.Message.Model
			t.usage.PromptTokens = ev.Message.Usage.InputTokens
		}
		return []streamcore.Result{streamcore.Ok(types.NewStreamStart(types.StreamMetadata{
			ID: t.id, Model: t.model, Provider: "anthropic",
		}))}

	case "content_block_start":
		if ev.ContentBlock.Type == "tool_use" {
			call := &types.ToolCall{ID: ev.ContentBlock.ID, Name: ev.ContentBlock.Name}
			t.toolCalls[ev.Index] = call
			t.toolOrder = append(t.toolOrder, ev.Index)
		}
		return nil

	case "content_block_delta":
		return t.convertBlockDelta(ev)

	case "content_block_stop":
		return nil

	case "message_delta":
		if ev.Delta.StopReason != "" {
			t.finish = mapFinishReason(ev.Delta.StopReason)
		}
		if ev.Usage.OutputTokens > 0 {
			t.usage.CompletionTokens = ev.Usage.OutputTokens
			t.usage.TotalTokens = t.usage.PromptTokens + t.usage.CompletionTokens
			return []streamcore.Result{streamcore.Ok(types.NewUsageUpdate(t.usage))}
		}
		return nil

	case "message_stop":
		return nil

	case "error":
		return []streamcore.Result{streamcore.Err(ClassifyError(0, []byte(raw.Data)))}

	case "ping":
		return nil

	default:
		return nil
	}
}

func (t *StreamTransformer) convertBlockDelta(ev sseEventWire) []streamcore.Result {
	idx := ev.Index
	switch ev.Delta.Type {
	case "text_delta":
		t.contentBuf = append(t.contentBuf, ev.Delta.Text...)
		return []streamcore.Result{streamcore.Ok(types.NewContentDelta(ev.Delta.Text, &idx))}
	case "thinking_delta":
		t.reasoningBuf = append(t.reasoningBuf, ev.Delta.Text...)
		return []streamcore.Result{streamcore.Ok(types.NewReasoningDelta(ev.Delta.Text, ""))}
	case "input_json_delta":
		call, ok := t.toolCalls[idx]
		if !ok {
			return nil
		}
		call.Arguments += ev.Delta.PartialJSON
		return []streamcore.Result{streamcore.Ok(types.NewToolCallDelta(call.ID, call.Name, ev.Delta.PartialJSON, &idx))}
	default:
		return nil
	}
}

func (t *StreamTransformer) HandleStreamEndEvents() []streamcore.Result {
	resp := &types.ChatResponse{
		ID:           t.id,
		Model:        t.model,
		Content:      string(t.contentBuf),
		Reasoning:    string(t.reasoningBuf),
		FinishReason: t.finish,
		Usage:        t.usage,
	}
	for _, idx := range t.toolOrder {
		resp.ToolCalls = append(resp.ToolCalls, *t.toolCalls[idx])
	}
	return []streamcore.Result{streamcore.Ok(types.NewStreamEnd(resp))}
}

func (t *StreamTransformer) FinalizeOnDisconnect() bool { return true }
