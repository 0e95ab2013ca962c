package registry

import (
	"context"
	"strings"

	"github.com/taipm/go-llm-gateway/types"
)

// Handler performs one chat completion. An Executor.Complete bound to a
// resolved Spec satisfies this after being adapted by the caller.
type Handler func(ctx context.Context, req *types.ChatRequest) (*types.ChatResponse, error)

// Middleware wraps a Handler with cross-cutting behavior (defaults,
// clamping, caching, rate limiting, ...), composable via Chain.
type Middleware func(next Handler) Handler

// Chain composes middlewares so the first entry runs outermost.
func Chain(middlewares ...Middleware) Middleware {
	return func(next Handler) Handler {
		h := next
		for i := len(middlewares) - 1; i >= 0; i-- {
			h = middlewares[i](h)
		}
		return h
	}
}

// DefaultParamsMiddleware sets Temperature to temperature only when the
// caller left *both* Temperature and TopP unset (spec §4.4: "if neither
// temperature nor top_p is set, set temperature=0.7") — setting TopP alone
// is a deliberate choice to use nucleus sampling instead, which this must
// not override. MaxTokens is filled in independently when left unset, same
// fill-only-if-absent rule.
func DefaultParamsMiddleware(temperature float64, maxTokens int) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *types.ChatRequest) (*types.ChatResponse, error) {
			if req.Common.Temperature == nil && req.Common.TopP == nil {
				t := temperature
				req.Common.Temperature = &t
			}
			if req.Common.MaxTokens == nil {
				m := maxTokens
				req.Common.MaxTokens = &m
			}
			return next(ctx, req)
		}
	}
}

// ClampTopPMiddleware clamps CommonParams.TopP into [0, 1], since some
// providers reject an out-of-range value outright rather than clamping it
// themselves.
func ClampTopPMiddleware() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *types.ChatRequest) (*types.ChatResponse, error) {
			if req.Common.TopP != nil {
				v := *req.Common.TopP
				if v < 0 {
					v = 0
				}
				if v > 1 {
					v = 1
				}
				req.Common.TopP = &v
			}
			return next(ctx, req)
		}
	}
}

// ExtractReasoningMiddleware moves a leading <think>...</think> block out of
// Content and into Reasoning for models that emit reasoning inline in the
// text channel instead of a dedicated field (some Ollama/DeepSeek-compatible
// deployments).
func ExtractReasoningMiddleware() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *types.ChatRequest) (*types.ChatResponse, error) {
			resp, err := next(ctx, req)
			if err != nil || resp == nil {
				return resp, err
			}
			reasoning, content, ok := splitThinkBlock(resp.Content)
			if ok {
				resp.Reasoning = reasoning
				resp.Content = content
			}
			return resp, nil
		}
	}
}

func splitThinkBlock(content string) (reasoning, rest string, ok bool) {
	const open, closeTag = "<think>", "</think>"
	if !strings.HasPrefix(content, open) {
		return "", content, false
	}
	end := strings.Index(content[len(open):], closeTag)
	if end < 0 {
		return "", content, false
	}
	end += len(open)
	reasoning = content[len(open):end]
	rest = content[end+len(closeTag):]
	return reasoning, rest, true
}

// SimulateStreamingMiddleware is applied on the non-streaming path only; it
// exists as a marker middleware documenting that streamcore.SimulateStreaming
// is how a caller requesting a stream from a non-streaming-capable spec gets
// one (wired in client, not here, since it changes the call shape from
// Handler to a stream).
func SimulateStreamingMiddleware() Middleware {
	return func(next Handler) Handler { return next }
}
