package ollama

import (
	"encoding/json"

	"github.com/taipm/go-llm-gateway/llmerrors"
	"github.com/taipm/go-llm-gateway/streamcore"
	"github.com/taipm/go-llm-gateway/types"
)

type chatStreamLineWire struct {
	Model   string `json:"model"`
	Message struct {
		Content  string `json:"content"`
		Thinking string `json:"thinking"`
	} `json:"message"`
	Done               bool   `json:"done"`
	DoneReason         string `json:"done_reason"`
	PromptEvalCount    int    `json:"prompt_eval_count"`
	EvalCount          int    `json:"eval_count"`
}

// StreamTransformer decodes Ollama's NDJSON /api/chat stream, one JSON
// object per line, terminated by a line with done:true.
type StreamTransformer struct {
	started    bool
	model      string
	contentBuf []byte
	reasonBuf  []byte
	finish     types.FinishReason
	usage      types.Usage
}

func NewStreamTransformer() *StreamTransformer { return &StreamTransformer{} }

func (t *StreamTransformer) ProviderID() string { return "ollama" }

func (t *StreamTransformer) ConvertEvent(raw streamcore.RawEvent) []streamcore.Result {
	var line chatStreamLineWire
	if err := json.Unmarshal([]byte(raw.Data), &line); err != nil {
		return []streamcore.Result{streamcore.Err(llmerrors.Wrap(llmerrors.KindParseError, "ollama: decode stream line", err))}
	}

	var results []streamcore.Result
	if !t.started {
		t.started = true
		t.model = line.Model
		results = append(results, streamcore.Ok(types.NewStreamStart(types.StreamMetadata{
			Model: t.model, Provider: "ollama",
		})))
	}

	if line.Message.Content != "" {
		t.contentBuf = append(t.contentBuf, line.Message.Content...)
		results = append(results, streamcore.Ok(types.NewContentDelta(line.Message.Content, nil)))
	}
	if line.Message.Thinking != "" {
		t.reasonBuf = append(t.reasonBuf, line.Message.Thinking...)
		results = append(results, streamcore.Ok(types.NewReasoningDelta(line.Message.Thinking, "")))
	}

	if line.Done {
		t.finish = mapFinishReason(line.DoneReason, false)
		t.usage = types.Usage{
			PromptTokens:     line.PromptEvalCount,
			CompletionTokens: line.EvalCount,
			TotalTokens:      line.PromptEvalCount + line.EvalCount,
		}
		results = append(results, streamcore.Ok(types.NewUsageUpdate(t.usage)))
	}

	return results
}

func (t *StreamTransformer) HandleStreamEndEvents() []streamcore.Result {
	resp := &types.ChatResponse{
		Model:        t.model,
		Content:      string(t.contentBuf),
		Reasoning:    string(t.reasonBuf),
		FinishReason: t.finish,
		Usage:        t.usage,
	}
	return []streamcore.Result{streamcore.Ok(types.NewStreamEnd(resp))}
}

func (t *StreamTransformer) FinalizeOnDisconnect() bool { return true }
