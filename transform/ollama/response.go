package ollama

import (
	"encoding/json"
	"strconv"

	"github.com/taipm/go-llm-gateway/llmerrors"
	"github.com/taipm/go-llm-gateway/types"
)

type chatResponseWire struct {
	Model   string `json:"model"`
	Message struct {
		Content   string `json:"content"`
		Thinking  string `json:"thinking"`
		ToolCalls []struct {
			Function struct {
				Name      string          `json:"name"`
				Arguments json.RawMessage `json:"arguments"`
			} `json:"function"`
		} `json:"tool_calls"`
	} `json:"message"`
	Done               bool   `json:"done"`
	DoneReason         string `json:"done_reason"`
	PromptEvalCount    int    `json:"prompt_eval_count"`
	EvalCount          int    `json:"eval_count"`
}

// ResponseTransformer parses an Ollama /api/chat response body.
type ResponseTransformer struct{}

func (ResponseTransformer) ParseChat(body []byte) (*types.ChatResponse, error) {
	var wire chatResponseWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, llmerrors.Wrap(llmerrors.KindParseError, "ollama: decode chat response", err)
	}

	resp := &types.ChatResponse{
		Model:     wire.Model,
		Content:   wire.Message.Content,
		Reasoning: wire.Message.Thinking,
		Usage: types.Usage{
			PromptTokens:     wire.PromptEvalCount,
			CompletionTokens: wire.EvalCount,
			TotalTokens:      wire.PromptEvalCount + wire.EvalCount,
		},
	}
	for i, tc := range wire.Message.ToolCalls {
		resp.ToolCalls = append(resp.ToolCalls, types.ToolCall{
			ID:        syntheticCallID(i),
			Name:      tc.Function.Name,
			Arguments: string(tc.Function.Arguments),
		})
	}
	resp.FinishReason = mapFinishReason(wire.DoneReason, len(resp.ToolCalls) > 0)

	return resp, nil
}

func syntheticCallID(index int) string {
	return "ollama-call-" + strconv.Itoa(index)
}

func mapFinishReason(reason string, hasToolCalls bool) types.FinishReason {
	if hasToolCalls {
		return types.FinishReason{Tag: types.FinishToolCalls}
	}
	switch reason {
	case "stop", "":
		return types.FinishReason{Tag: types.FinishStop}
	case "length":
		return types.FinishReason{Tag: types.FinishLength}
	default:
		return types.OtherFinishReason(reason)
	}
}
