package gemini

import (
	"encoding/json"

	"github.com/taipm/go-llm-gateway/llmerrors"
	"github.com/taipm/go-llm-gateway/streamcore"
	"github.com/taipm/go-llm-gateway/types"
)

// StreamTransformer decodes Gemini's streamGenerateContent SSE stream. Each
// event is a complete GenerateContentResponse whose candidate parts are
// already incremental (Gemini does not resend prior text), so each part is
// forwarded as one delta.
type StreamTransformer struct {
	started    bool
	model      string
	contentBuf []byte
	toolCalls  []types.ToolCall
	finish     types.FinishReason
	usage      types.Usage
}

func NewStreamTransformer() *StreamTransformer { return &StreamTransformer{} }

func (t *StreamTransformer) ProviderID() string { return "gemini" }

func (t *StreamTransformer) ConvertEvent(raw streamcore.RawEvent) []streamcore.Result {
	var wire generateContentWire
	if err := json.Unmarshal([]byte(raw.Data), &wire); err != nil {
		return []streamcore.Result{streamcore.Err(llmerrors.Wrap(llmerrors.KindParseError, "gemini: decode stream chunk", err))}
	}

	var results []streamcore.Result
	if !t.started {
		t.started = true
		t.model = wire.ModelVersion
		results = append(results, streamcore.Ok(types.NewStreamStart(types.StreamMetadata{
			Model: t.model, Provider: "gemini",
		})))
	}

	if len(wire.Candidates) > 0 {
		cand := wire.Candidates[0]
		for _, part := range cand.Content.Parts {
			if part.FunctionCall != nil {
				idx := len(t.toolCalls)
				call := types.ToolCall{
					ID:        syntheticCallID(t.model, idx),
					Name:      part.FunctionCall.Name,
					Arguments: string(part.FunctionCall.Args),
				}
				t.toolCalls = append(t.toolCalls, call)
				results = append(results, streamcore.Ok(types.NewToolCallDelta(call.ID, call.Name, call.Arguments, &idx)))
				continue
			}
			if part.Text != "" {
				t.contentBuf = append(t.contentBuf, part.Text...)
				results = append(results, streamcore.Ok(types.NewContentDelta(part.Text, nil)))
			}
		}
		if cand.FinishReason != "" {
			t.finish = mapFinishReason(cand.FinishReason)
		}
	}

	if wire.UsageMetadata.TotalTokenCount > 0 {
		t.usage = types.Usage{
			PromptTokens:     wire.UsageMetadata.PromptTokenCount,
			CompletionTokens: wire.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      wire.UsageMetadata.TotalTokenCount,
		}
		results = append(results, streamcore.Ok(types.NewUsageUpdate(t.usage)))
	}

	return results
}

func (t *StreamTransformer) HandleStreamEndEvents() []streamcore.Result {
	resp := &types.ChatResponse{
		Model:        t.model,
		Content:      string(t.contentBuf),
		ToolCalls:    t.toolCalls,
		FinishReason: t.finish,
		Usage:        t.usage,
	}
	return []streamcore.Result{streamcore.Ok(types.NewStreamEnd(resp))}
}

func (t *StreamTransformer) FinalizeOnDisconnect() bool { return true }
