// Package adapters provides SDK-backed convenience clients for OpenAI,
// Gemini, and Anthropic. Unlike the transform/executor path, which drives
// providers over raw HTTP with hand-written request/response codecs, these
// adapters delegate to each provider's official Go SDK and are meant for
// callers that already depend on that SDK and want the unified types.ChatRequest
// / types.ChatResponse shapes without going through the registry.
//
// The interface is intentionally the same shape as the teacher's
// agent.LLMAdapter (agent/adapter.go): two methods, Complete and Stream,
// so a caller can swap between adapters without touching call sites.
package adapters

import (
	"context"

	"github.com/taipm/go-llm-gateway/types"
)

// Adapter abstracts an SDK-backed provider client. Complete blocks for the
// full response; Stream invokes onChunk for each content delta and still
// returns the fully accumulated response once the stream ends.
type Adapter interface {
	Complete(ctx context.Context, req *types.ChatRequest) (*types.ChatResponse, error)
	Stream(ctx context.Context, req *types.ChatRequest, onChunk func(types.ChatStreamEvent)) (*types.ChatResponse, error)
}
