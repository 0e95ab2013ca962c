// Package anthropic is an SDK-backed adapters.Adapter for Anthropic Claude,
// grounded in goa-ai's model/anthropic.Client
// (features/model/anthropic/client.go, stream.go) and generalized from
// goa-ai's model.Request/model.Response to the module's unified
// types.ChatRequest/types.ChatResponse.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/taipm/go-llm-gateway/types"
)

// Client wraps the Anthropic Go SDK's Messages service.
type Client struct {
	sdk       *sdk.Client
	maxTokens int
}

// New builds a Client from an API key. defaultMaxTokens is used when a
// request does not set Common.MaxTokens, since Anthropic requires max_tokens
// on every call.
func New(apiKey string, defaultMaxTokens int) *Client {
	c := sdk.NewClient(option.WithAPIKey(apiKey))
	return &Client{sdk: &c, maxTokens: defaultMaxTokens}
}

// Complete issues a non-streaming Messages.New request.
func (c *Client) Complete(ctx context.Context, req *types.ChatRequest) (*types.ChatResponse, error) {
	params, err := c.buildParams(req)
	if err != nil {
		return nil, err
	}
	msg, err := c.sdk.Messages.New(ctx, *params)
	if err != nil {
		return nil, fmt.Errorf("anthropic adapter: %w", err)
	}
	return convertResponse(msg), nil
}

// Stream issues a streaming Messages.New request, invoking onChunk for each
// text delta, and returns the accumulated final response.
func (c *Client) Stream(ctx context.Context, req *types.ChatRequest, onChunk func(types.ChatStreamEvent)) (*types.ChatResponse, error) {
	params, err := c.buildParams(req)
	if err != nil {
		return nil, err
	}
	stream := c.sdk.Messages.NewStreaming(ctx, *params)
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("anthropic adapter: streaming: %w", err)
	}

	var content strings.Builder
	var usage types.Usage
	var stopReason string
	toolCalls := map[int]*toolBuffer{}

	for stream.Next() {
		event := stream.Current()
		switch ev := event.AsAny().(type) {
		case sdk.ContentBlockStartEvent:
			if toolUse, ok := ev.ContentBlock.AsAny().(sdk.ToolUseBlock); ok {
				toolCalls[int(ev.Index)] = &toolBuffer{id: toolUse.ID, name: toolUse.Name}
			}
		case sdk.ContentBlockDeltaEvent:
			switch delta := ev.Delta.AsAny().(type) {
			case sdk.TextDelta:
				if delta.Text == "" {
					continue
				}
				content.WriteString(delta.Text)
				if onChunk != nil {
					onChunk(types.NewContentDelta(delta.Text, nil))
				}
			case sdk.InputJSONDelta:
				if tb := toolCalls[int(ev.Index)]; tb != nil {
					tb.args.WriteString(delta.PartialJSON)
				}
			}
		case sdk.MessageDeltaEvent:
			stopReason = string(ev.Delta.StopReason)
			usage = types.Usage{
				PromptTokens:     int(ev.Usage.InputTokens),
				CompletionTokens: int(ev.Usage.OutputTokens),
				TotalTokens:      int(ev.Usage.InputTokens + ev.Usage.OutputTokens),
			}
		}
	}
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("anthropic adapter: streaming: %w", err)
	}

	resp := &types.ChatResponse{
		Content:      content.String(),
		Usage:        usage,
		FinishReason: convertFinishReason(stopReason),
	}
	for _, tb := range toolCalls {
		args := strings.TrimSpace(tb.args.String())
		if args == "" {
			args = "{}"
		}
		resp.ToolCalls = append(resp.ToolCalls, types.ToolCall{ID: tb.id, Name: tb.name, Arguments: args})
	}
	return resp, nil
}

type toolBuffer struct {
	id   string
	name string
	args strings.Builder
}

func (c *Client) buildParams(req *types.ChatRequest) (*sdk.MessageNewParams, error) {
	if len(req.Messages) == 0 {
		return nil, errors.New("anthropic adapter: messages are required")
	}
	maxTokens := c.maxTokens
	if req.Common.MaxTokens != nil {
		maxTokens = *req.Common.MaxTokens
	}
	if maxTokens <= 0 {
		return nil, errors.New("anthropic adapter: max_tokens must be positive")
	}

	msgs, system, err := convertMessages(req.Messages)
	if err != nil {
		return nil, err
	}

	params := &sdk.MessageNewParams{
		Model:     sdk.Model(req.Common.Model),
		MaxTokens: int64(maxTokens),
		Messages:  msgs,
	}
	if len(system) > 0 {
		params.System = system
	}
	if req.Common.Temperature != nil {
		params.Temperature = sdk.Float(*req.Common.Temperature)
	}
	if req.Common.TopP != nil {
		params.TopP = sdk.Float(*req.Common.TopP)
	}
	if len(req.Common.StopSequences) > 0 {
		params.StopSequences = req.Common.StopSequences
	}
	if len(req.Tools) > 0 {
		tools, err := convertTools(req.Tools)
		if err != nil {
			return nil, err
		}
		params.Tools = tools
	}
	return params, nil
}

func convertMessages(msgs []types.Message) ([]sdk.MessageParam, []sdk.TextBlockParam, error) {
	conversation := make([]sdk.MessageParam, 0, len(msgs))
	system := make([]sdk.TextBlockParam, 0, len(msgs))

	for _, msg := range msgs {
		if msg.Role == types.RoleSystem {
			if msg.Content != "" {
				system = append(system, sdk.TextBlockParam{Text: msg.Content})
			}
			continue
		}

		var blocks []sdk.ContentBlockParamUnion
		switch msg.Role {
		case types.RoleUser:
			if msg.Content != "" {
				blocks = append(blocks, sdk.NewTextBlock(msg.Content))
			}
			conversation = append(conversation, sdk.NewUserMessage(blocks...))
		case types.RoleAssistant:
			if msg.Content != "" {
				blocks = append(blocks, sdk.NewTextBlock(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				var input any = map[string]any{}
				_ = json.Unmarshal([]byte(tc.Arguments), &input)
				blocks = append(blocks, sdk.NewToolUseBlock(tc.ID, input, tc.Name))
			}
			conversation = append(conversation, sdk.NewAssistantMessage(blocks...))
		case types.RoleTool:
			blocks = append(blocks, sdk.NewToolResultBlock(msg.ToolCallID, msg.Content, false))
			conversation = append(conversation, sdk.NewUserMessage(blocks...))
		default:
			return nil, nil, fmt.Errorf("anthropic adapter: unsupported message role %q", msg.Role)
		}
	}
	if len(conversation) == 0 {
		return nil, nil, errors.New("anthropic adapter: at least one user/assistant message is required")
	}
	return conversation, system, nil
}

func convertTools(tools []*types.Tool) ([]sdk.ToolUnionParam, error) {
	out := make([]sdk.ToolUnionParam, 0, len(tools))
	for _, tool := range tools {
		if tool.Function == nil {
			continue
		}
		schema := sdk.ToolInputSchemaParam{ExtraFields: tool.Function.Parameters}
		u := sdk.ToolUnionParamOfTool(schema, tool.Function.Name)
		if u.OfTool != nil {
			u.OfTool.Description = sdk.String(tool.Function.Description)
		}
		out = append(out, u)
	}
	return out, nil
}

func convertResponse(msg *sdk.Message) *types.ChatResponse {
	resp := &types.ChatResponse{ID: msg.ID, Model: string(msg.Model)}
	for _, block := range msg.Content {
		switch block.Type {
		case "text":
			resp.Content += block.Text
		case "tool_use":
			resp.ToolCalls = append(resp.ToolCalls, types.ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: marshalInput(block.Input),
			})
		}
	}
	resp.FinishReason = convertFinishReason(string(msg.StopReason))
	resp.Usage = types.Usage{
		PromptTokens:     int(msg.Usage.InputTokens),
		CompletionTokens: int(msg.Usage.OutputTokens),
		TotalTokens:      int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
	}
	return resp
}

func marshalInput(input any) string {
	data, err := json.Marshal(input)
	if err != nil || len(data) == 0 {
		return "{}"
	}
	return string(data)
}

func convertFinishReason(stopReason string) types.FinishReason {
	switch stopReason {
	case "end_turn":
		return types.FinishReason{Tag: types.FinishStop}
	case "max_tokens":
		return types.FinishReason{Tag: types.FinishLength}
	case "tool_use":
		return types.FinishReason{Tag: types.FinishToolCalls}
	case "stop_sequence":
		return types.FinishReason{Tag: types.FinishStopSequence}
	case "":
		return types.FinishReason{}
	default:
		return types.OtherFinishReason(stopReason)
	}
}
