// Package gemini is an SDK-backed adapters.Adapter for Google Gemini,
// grounded in the teacher's GeminiAdapter (agent/adapters/gemini_adapter.go)
// and generalized from agent.CompletionRequest/CompletionResponse to the
// module's unified types.ChatRequest/types.ChatResponse.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/taipm/go-llm-gateway/types"
)

// Client wraps the Google Generative AI Go SDK.
type Client struct {
	sdk *genai.Client
}

// New builds a Client from a Google AI API key.
func New(ctx context.Context, apiKey string) (*Client, error) {
	sdk, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini adapter: %w", err)
	}
	return &Client{sdk: sdk}, nil
}

// Close releases the underlying client's resources.
func (c *Client) Close() error {
	if c.sdk == nil {
		return nil
	}
	return c.sdk.Close()
}

// Complete sends a synchronous generation request.
func (c *Client) Complete(ctx context.Context, req *types.ChatRequest) (*types.ChatResponse, error) {
	model := c.sdk.GenerativeModel(req.Common.Model)
	configureModel(model, req)
	parts := convertMessagesToParts(req.Messages)

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("gemini adapter: %w", err)
	}
	return convertResponse(resp), nil
}

// Stream sends a streaming generation request, invoking onChunk for each
// text delta.
func (c *Client) Stream(ctx context.Context, req *types.ChatRequest, onChunk func(types.ChatStreamEvent)) (*types.ChatResponse, error) {
	model := c.sdk.GenerativeModel(req.Common.Model)
	configureModel(model, req)
	parts := convertMessagesToParts(req.Messages)

	iter := model.GenerateContentStream(ctx, parts...)

	var fullContent string
	var usage types.Usage
	var finish types.FinishReason

	for {
		chunk, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("gemini adapter: streaming: %w", err)
		}

		if len(chunk.Candidates) > 0 {
			candidate := chunk.Candidates[0]
			for _, part := range candidate.Content.Parts {
				if txt, ok := part.(genai.Text); ok {
					text := string(txt)
					fullContent += text
					if onChunk != nil {
						onChunk(types.NewContentDelta(text, nil))
					}
				}
			}
			if candidate.FinishReason != genai.FinishReasonUnspecified {
				finish = convertFinishReason(candidate.FinishReason)
			}
		}
		if chunk.UsageMetadata != nil {
			usage = types.Usage{
				PromptTokens:     int(chunk.UsageMetadata.PromptTokenCount),
				CompletionTokens: int(chunk.UsageMetadata.CandidatesTokenCount),
				TotalTokens:      int(chunk.UsageMetadata.TotalTokenCount),
			}
		}
	}

	return &types.ChatResponse{Content: fullContent, Usage: usage, FinishReason: finish}, nil
}

func configureModel(model *genai.GenerativeModel, req *types.ChatRequest) {
	if system := systemPrompt(req.Messages); system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	if req.Common.Temperature != nil {
		temp := float32(*req.Common.Temperature)
		if temp > 1.0 {
			temp = 1.0 // Gemini's supported range tops out at 1.0.
		}
		model.SetTemperature(temp)
	}
	if req.Common.MaxTokens != nil {
		model.SetMaxOutputTokens(int32(*req.Common.MaxTokens))
	}
	if req.Common.TopP != nil {
		model.SetTopP(float32(*req.Common.TopP))
	}
	if len(req.Common.StopSequences) > 0 {
		model.StopSequences = req.Common.StopSequences
	}
	if len(req.Tools) > 0 {
		model.Tools = convertTools(req.Tools)
	}
}

func systemPrompt(msgs []types.Message) string {
	for _, msg := range msgs {
		if msg.Role == types.RoleSystem {
			return msg.Content
		}
	}
	return ""
}

// convertMessagesToParts converts unified messages to Gemini parts. Gemini
// does not use a messages array; the system prompt is handled separately via
// SystemInstruction and tool-role messages are not replayed here (Gemini
// function responses require a dedicated FunctionResponse part, not yet
// wired through this convenience adapter).
func convertMessagesToParts(msgs []types.Message) []genai.Part {
	parts := []genai.Part{}
	for _, msg := range msgs {
		if msg.Role == types.RoleUser || msg.Role == types.RoleAssistant {
			parts = append(parts, genai.Text(msg.Content))
		}
	}
	return parts
}

func convertTools(tools []*types.Tool) []*genai.Tool {
	out := make([]*genai.Tool, 0, len(tools))
	for _, tool := range tools {
		if tool.Function == nil {
			continue
		}
		schema := &genai.Schema{Type: genai.TypeObject}
		decl := &genai.FunctionDeclaration{
			Name:        tool.Function.Name,
			Description: tool.Function.Description,
			Parameters:  schema,
		}
		out = append(out, &genai.Tool{FunctionDeclarations: []*genai.FunctionDeclaration{decl}})
	}
	return out
}

func convertResponse(resp *genai.GenerateContentResponse) *types.ChatResponse {
	result := &types.ChatResponse{}
	if len(resp.Candidates) == 0 {
		return result
	}
	candidate := resp.Candidates[0]

	for _, part := range candidate.Content.Parts {
		switch v := part.(type) {
		case genai.Text:
			result.Content += string(v)
		case genai.FunctionCall:
			result.ToolCalls = append(result.ToolCalls, types.ToolCall{
				Name:      v.Name,
				Arguments: marshalArgs(v.Args),
			})
		}
	}

	if candidate.FinishReason != genai.FinishReasonUnspecified {
		result.FinishReason = convertFinishReason(candidate.FinishReason)
	}
	if resp.UsageMetadata != nil {
		result.Usage = types.Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	return result
}

// convertFinishReason maps by the SDK's string rendering rather than its
// enum constants: the adapter only depends on FinishReasonUnspecified (used
// as the "still generating" guard), matching how the teacher adapter reads
// FinishReason (candidate.FinishReason.String()).
func convertFinishReason(reason genai.FinishReason) types.FinishReason {
	switch reason.String() {
	case "STOP":
		return types.FinishReason{Tag: types.FinishStop}
	case "MAX_TOKENS":
		return types.FinishReason{Tag: types.FinishLength}
	case "SAFETY", "RECITATION":
		return types.FinishReason{Tag: types.FinishContentFilter}
	default:
		return types.OtherFinishReason(reason.String())
	}
}

func marshalArgs(args map[string]any) string {
	if len(args) == 0 {
		return "{}"
	}
	out, err := json.Marshal(args)
	if err != nil {
		return "{}"
	}
	return string(out)
}
