// Package openai is an SDK-backed adapters.Adapter for OpenAI and
// OpenAI-compatible APIs (Azure OpenAI, Ollama, local gateways), grounded in
// the teacher's OpenAIAdapter (agent/adapters/openai_adapter.go) and
// generalized from agent.CompletionRequest/CompletionResponse to the
// module's unified types.ChatRequest/types.ChatResponse.
package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/taipm/go-llm-gateway/types"
)

// Client wraps the OpenAI Go SDK.
type Client struct {
	sdk *openai.Client
}

// New builds a Client. Pass baseURL to target an OpenAI-compatible endpoint
// (empty string targets api.openai.com).
func New(apiKey, baseURL string) *Client {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	sdk := openai.NewClient(opts...)
	return &Client{sdk: &sdk}
}

// Complete issues a non-streaming chat completion.
func (c *Client) Complete(ctx context.Context, req *types.ChatRequest) (*types.ChatResponse, error) {
	params, err := buildParams(req)
	if err != nil {
		return nil, err
	}
	completion, err := c.sdk.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai adapter: %w", err)
	}
	return convertResponse(completion), nil
}

// Stream issues a streaming chat completion, invoking onChunk for each
// content delta, and returns the accumulated final response.
func (c *Client) Stream(ctx context.Context, req *types.ChatRequest, onChunk func(types.ChatStreamEvent)) (*types.ChatResponse, error) {
	params, err := buildParams(req)
	if err != nil {
		return nil, err
	}
	stream := c.sdk.Chat.Completions.NewStreaming(ctx, params)
	acc := openai.ChatCompletionAccumulator{}
	var fullContent, id, model string

	for stream.Next() {
		chunk := stream.Current()
		acc.AddChunk(chunk)
		if id == "" {
			id, model = chunk.ID, chunk.Model
		}

		if content, ok := acc.JustFinishedContent(); ok {
			fullContent = content
		}
		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			delta := chunk.Choices[0].Delta.Content
			if onChunk != nil {
				onChunk(types.NewContentDelta(delta, nil))
			}
			if fullContent == "" {
				fullContent += delta
			}
		}
	}
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("openai adapter: streaming: %w", err)
	}

	return &types.ChatResponse{ID: id, Model: model, Content: fullContent}, nil
}

func buildParams(req *types.ChatRequest) (openai.ChatCompletionNewParams, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Common.Model),
		Messages: convertMessages(req.Messages),
	}

	if req.Common.Temperature != nil {
		params.Temperature = openai.Float(*req.Common.Temperature)
	}
	if req.Common.MaxTokens != nil {
		params.MaxTokens = openai.Int(int64(*req.Common.MaxTokens))
	}
	if req.Common.MaxCompletionTokens != nil {
		params.MaxCompletionTokens = openai.Int(int64(*req.Common.MaxCompletionTokens))
	}
	if req.Common.TopP != nil {
		params.TopP = openai.Float(*req.Common.TopP)
	}
	if req.Common.Seed != nil {
		params.Seed = openai.Int(*req.Common.Seed)
	}
	// Stop sequences: the union param type requires careful handling of the
	// SDK's oneof encoding; left for a caller to set via req.Options if
	// needed, matching the teacher adapter's documented limitation.
	if len(req.Tools) > 0 {
		tools, err := convertTools(req.Tools)
		if err != nil {
			return params, err
		}
		params.Tools = tools
	}
	if req.ToolChoice != nil {
		params.ToolChoice = convertToolChoice(*req.ToolChoice)
	}

	return params, nil
}

func convertMessages(msgs []types.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, msg := range msgs {
		switch msg.Role {
		case types.RoleSystem:
			out = append(out, openai.SystemMessage(msg.Content))
		case types.RoleUser:
			out = append(out, openai.UserMessage(msg.Content))
		case types.RoleAssistant:
			out = append(out, openai.AssistantMessage(msg.Content))
		case types.RoleTool:
			out = append(out, openai.ToolMessage(msg.Content, msg.ToolCallID))
		default:
			out = append(out, openai.UserMessage(msg.Content))
		}
	}
	return out
}

func convertTools(tools []*types.Tool) ([]openai.ChatCompletionToolUnionParam, error) {
	out := make([]openai.ChatCompletionToolUnionParam, 0, len(tools))
	for _, tool := range tools {
		if tool.Function == nil {
			// Provider-hosted tools have no OpenAI SDK equivalent here; the
			// HTTP transform path (transform/openai) handles built-in tools.
			continue
		}
		out = append(out, openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        tool.Function.Name,
			Description: openai.String(tool.Function.Description),
			Parameters:  openai.FunctionParameters(tool.Function.Parameters),
			Strict:      openai.Bool(tool.Function.Strict),
		}))
	}
	return out, nil
}

func convertToolChoice(choice types.ToolChoice) openai.ChatCompletionToolChoiceOptionUnionParam {
	switch choice.Kind {
	case types.ToolChoiceRequired:
		return openai.ChatCompletionToolChoiceOptionUnionParam{OfAuto: openai.String("required")}
	case types.ToolChoiceNone:
		return openai.ChatCompletionToolChoiceOptionUnionParam{OfAuto: openai.String("none")}
	case types.ToolChoiceNamed:
		// Named tool choice is a nested union type; pass through as "required"
		// and let the model pick among the (typically single) tool offered.
		// Callers needing strict per-name forcing should use the HTTP
		// transform path (transform/openai) instead.
		return openai.ChatCompletionToolChoiceOptionUnionParam{OfAuto: openai.String("required")}
	default:
		return openai.ChatCompletionToolChoiceOptionUnionParam{OfAuto: openai.String("auto")}
	}
}

func convertResponse(completion *openai.ChatCompletion) *types.ChatResponse {
	resp := &types.ChatResponse{
		ID:    completion.ID,
		Model: completion.Model,
	}
	if len(completion.Choices) == 0 {
		return resp
	}
	choice := completion.Choices[0]
	message := choice.Message
	resp.Content = message.Content
	resp.FinishReason = convertFinishReason(string(choice.FinishReason))
	resp.Usage = types.Usage{
		PromptTokens:     int(completion.Usage.PromptTokens),
		CompletionTokens: int(completion.Usage.CompletionTokens),
		TotalTokens:      int(completion.Usage.TotalTokens),
	}

	if len(message.ToolCalls) > 0 {
		resp.ToolCalls = make([]types.ToolCall, len(message.ToolCalls))
		for i, tc := range message.ToolCalls {
			args := tc.Function.Arguments
			if args == "" {
				args = "{}"
			}
			if !json.Valid([]byte(args)) {
				args = "{}"
			}
			resp.ToolCalls[i] = types.ToolCall{ID: tc.ID, Name: tc.Function.Name, Arguments: args}
		}
	}
	return resp
}

func convertFinishReason(raw string) types.FinishReason {
	switch raw {
	case "stop":
		return types.FinishReason{Tag: types.FinishStop}
	case "length":
		return types.FinishReason{Tag: types.FinishLength}
	case "tool_calls", "function_call":
		return types.FinishReason{Tag: types.FinishToolCalls}
	case "content_filter":
		return types.FinishReason{Tag: types.FinishContentFilter}
	case "":
		return types.FinishReason{}
	default:
		return types.OtherFinishReason(raw)
	}
}
