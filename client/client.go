// Package client provides the facade an application actually calls:
// Chat/ChatStream resolve a "provider:model" id against a registry.Registry,
// run the request through the registered middleware chain, and dispatch to
// an executor.Executor. Grounded in the teacher's Builder
// (agent/builder.go, agent/builder_execution.go) as the single front door a
// caller holds, generalized from one provider-per-Builder into a lookup over
// every registered provider.
package client

import (
	"context"
	"time"

	"github.com/taipm/go-llm-gateway/cancel"
	"github.com/taipm/go-llm-gateway/executor"
	"github.com/taipm/go-llm-gateway/llmerrors"
	"github.com/taipm/go-llm-gateway/providerspec"
	"github.com/taipm/go-llm-gateway/registry"
	"github.com/taipm/go-llm-gateway/streamcore"
	"github.com/taipm/go-llm-gateway/types"
)

// Client binds a Registry (provider lookup) to an Executor (HTTP transport)
// and an optional middleware chain every call is routed through.
type Client struct {
	Registry   *registry.Registry
	Executor   *executor.Executor
	Middleware registry.Middleware
}

// New builds a Client from a registry and executor. Pass nil for exec to get
// a default executor.New().
func New(reg *registry.Registry, exec *executor.Executor) *Client {
	if exec == nil {
		exec = executor.New()
	}
	return &Client{Registry: reg, Executor: exec}
}

// Use sets the middleware chain applied to every Chat call (ChatStream does
// not run it).
func (c *Client) Use(mw ...registry.Middleware) *Client {
	c.Middleware = registry.Chain(mw...)
	return c
}

// resolve looks up modelID ("provider:model") for the given capability,
// consulting the registry's client cache (spec §4.4). It returns the spec
// and the bare model id; each caller stamps that model id onto its own
// request so transformers never see the provider prefix.
func (c *Client) resolve(modelID string, capability providerspec.Capability) (*registry.Resolved, error) {
	resolved, ok := c.Registry.ResolveCapability(modelID, capability)
	if !ok {
		return nil, llmerrors.New(llmerrors.KindNotFound, "client: no provider registered for model id "+modelID)
	}
	return &resolved, nil
}

// Chat resolves modelID and performs one non-streaming completion, routed
// through the middleware chain (spec §4.4).
func (c *Client) Chat(ctx context.Context, modelID string, req *types.ChatRequest) (*types.ChatResponse, error) {
	resolved, err := c.resolve(modelID, providerspec.CapChat)
	if err != nil {
		return nil, err
	}
	req.Common.Model = resolved.Model

	handler := registry.Handler(func(ctx context.Context, req *types.ChatRequest) (*types.ChatResponse, error) {
		return c.Executor.Complete(ctx, resolved.Spec, req)
	})
	if c.Middleware != nil {
		handler = c.Middleware(handler)
	}
	return handler(ctx, req)
}

// Embed resolves modelID and performs one embedding request. Unlike Chat,
// it does not route through the middleware chain: the registered
// middlewares operate on ChatRequest/ChatResponse, not embeddings.
func (c *Client) Embed(ctx context.Context, modelID string, req *types.EmbeddingRequest) (*types.EmbeddingResponse, error) {
	resolved, err := c.resolve(modelID, providerspec.CapEmbedding)
	if err != nil {
		return nil, err
	}
	req.Model = resolved.Model

	if !resolved.Spec.Supports(providerspec.CapEmbedding) {
		return nil, llmerrors.New(llmerrors.KindUnsupportedOp, "client: "+resolved.Spec.ID+" does not support embeddings")
	}
	return c.Executor.Embed(ctx, resolved.Spec, req)
}

// GenerateImage resolves modelID and performs one image-generation
// request. Like Embed, it bypasses the chat middleware chain: the
// registered middlewares operate on ChatRequest/ChatResponse.
func (c *Client) GenerateImage(ctx context.Context, modelID string, req *types.ImageGenerationRequest) (*types.ImageGenerationResponse, error) {
	resolved, err := c.resolve(modelID, providerspec.CapImage)
	if err != nil {
		return nil, err
	}
	req.Model = resolved.Model

	if !resolved.Spec.Supports(providerspec.CapImage) {
		return nil, llmerrors.New(llmerrors.KindUnsupportedOp, "client: "+resolved.Spec.ID+" does not support image generation")
	}
	return c.Executor.GenerateImage(ctx, resolved.Spec, req)
}

// Rerank resolves modelID and performs one document-reranking request.
// Like Embed, it bypasses the chat middleware chain.
func (c *Client) Rerank(ctx context.Context, modelID string, req *types.RerankRequest) (*types.RerankResponse, error) {
	resolved, err := c.resolve(modelID, providerspec.CapRerank)
	if err != nil {
		return nil, err
	}
	req.Model = resolved.Model

	if !resolved.Spec.Supports(providerspec.CapRerank) {
		return nil, llmerrors.New(llmerrors.KindUnsupportedOp, "client: "+resolved.Spec.ID+" does not support rerank")
	}
	return c.Executor.Rerank(ctx, resolved.Spec, req)
}

// Moderate resolves modelID and performs one content-moderation request.
func (c *Client) Moderate(ctx context.Context, modelID string, req *types.ModerationRequest) (*types.ModerationResponse, error) {
	resolved, err := c.resolve(modelID, providerspec.CapModeration)
	if err != nil {
		return nil, err
	}
	req.Model = resolved.Model

	if !resolved.Spec.Supports(providerspec.CapModeration) {
		return nil, llmerrors.New(llmerrors.KindUnsupportedOp, "client: "+resolved.Spec.ID+" does not support moderation")
	}
	return c.Executor.Moderate(ctx, resolved.Spec, req)
}

// SynthesizeSpeech resolves modelID and performs one text-to-speech request.
func (c *Client) SynthesizeSpeech(ctx context.Context, modelID string, req *types.TTSRequest) (*types.TTSResponse, error) {
	resolved, err := c.resolve(modelID, providerspec.CapTTS)
	if err != nil {
		return nil, err
	}
	req.Model = resolved.Model

	if !resolved.Spec.Supports(providerspec.CapTTS) {
		return nil, llmerrors.New(llmerrors.KindUnsupportedOp, "client: "+resolved.Spec.ID+" does not support text-to-speech")
	}
	return c.Executor.SynthesizeSpeech(ctx, resolved.Spec, req)
}

// Transcribe resolves modelID and performs one speech-to-text request.
func (c *Client) Transcribe(ctx context.Context, modelID string, req *types.STTRequest) (*types.STTResponse, error) {
	resolved, err := c.resolve(modelID, providerspec.CapSTT)
	if err != nil {
		return nil, err
	}
	req.Model = resolved.Model

	if !resolved.Spec.Supports(providerspec.CapSTT) {
		return nil, llmerrors.New(llmerrors.KindUnsupportedOp, "client: "+resolved.Spec.ID+" does not support speech-to-text")
	}
	return c.Executor.Transcribe(ctx, resolved.Spec, req)
}

// UploadFile resolves providerID (used only to pick a provider spec; file
// upload has no per-request model) and performs one file-upload request.
func (c *Client) UploadFile(ctx context.Context, providerID string, req *types.FileUploadRequest) (*types.FileUploadResponse, error) {
	resolved, err := c.resolve(providerID+":", providerspec.CapFiles)
	if err != nil {
		return nil, err
	}

	if !resolved.Spec.Supports(providerspec.CapFiles) {
		return nil, llmerrors.New(llmerrors.KindUnsupportedOp, "client: "+resolved.Spec.ID+" does not support file upload")
	}
	return c.Executor.UploadFile(ctx, resolved.Spec, req)
}

// ChatWithTimeout wraps the entire chat call, including any retries, in a
// deadline (spec §5: "chat_with_timeout wraps the entire chat call").
func (c *Client) ChatWithTimeout(ctx context.Context, modelID string, req *types.ChatRequest, timeout time.Duration) (*types.ChatResponse, error) {
	ctx, cancelFn := context.WithTimeout(ctx, timeout)
	defer cancelFn()
	resp, err := c.Chat(ctx, modelID, req)
	if err != nil && ctx.Err() != nil {
		return nil, llmerrors.Wrap(llmerrors.KindTimeout, "client: chat_with_timeout deadline exceeded", ctx.Err())
	}
	return resp, err
}

// ChatStream resolves modelID and opens a cancellable stream of unified
// events. The middleware chain set by Use is not applied on this path: the
// request goes to the executor as the caller built it.
func (c *Client) ChatStream(ctx context.Context, modelID string, req *types.ChatRequest) (*cancel.CancellableStream[types.ChatStreamEvent], *cancel.Handle, error) {
	resolved, err := c.resolve(modelID, providerspec.CapChat)
	if err != nil {
		return nil, nil, err
	}
	req.Common.Model = resolved.Model

	if !resolved.Spec.Supports(providerspec.CapChat) {
		return nil, nil, llmerrors.New(llmerrors.KindUnsupportedOp, "client: "+resolved.Spec.ID+" does not support chat")
	}
	return c.Executor.Stream(ctx, resolved.Spec, req)
}

// ChatStreamWithTimeout wraps only stream initialization (establishing the
// connection and receiving the first bytes) in a deadline; once streaming
// begins, in-stream idle timeouts are the HTTP client's responsibility (spec
// §5).
func (c *Client) ChatStreamWithTimeout(ctx context.Context, modelID string, req *types.ChatRequest, timeout time.Duration) (*cancel.CancellableStream[types.ChatStreamEvent], *cancel.Handle, error) {
	initCtx, cancelFn := context.WithCancel(ctx)
	timer := time.AfterFunc(timeout, cancelFn)
	stream, handle, err := c.ChatStream(initCtx, modelID, req)
	timedOut := !timer.Stop()
	if err != nil {
		cancelFn()
		if timedOut {
			return nil, nil, llmerrors.Wrap(llmerrors.KindTimeout, "client: chat_stream_with_timeout init deadline exceeded", context.DeadlineExceeded)
		}
		return nil, nil, err
	}
	return stream, handle, nil
}

// SimulateStream requests modelID non-streaming, then replays the final
// content as a synthetic event sequence (spec §4.2: how a caller requesting a
// stream from a non-streaming-capable spec gets one).
func (c *Client) SimulateStream(ctx context.Context, modelID string, req *types.ChatRequest, cfg streamcore.SimulateStreamingConfig) ([]types.ChatStreamEvent, error) {
	resolved, err := c.resolve(modelID, providerspec.CapChat)
	if err != nil {
		return nil, err
	}
	resp, err := c.Chat(ctx, modelID, req)
	if err != nil {
		return nil, err
	}
	meta := types.StreamMetadata{ID: resp.ID, Model: resp.Model, Provider: resolved.Spec.ID}
	return streamcore.SimulateStreaming(resp, meta, cfg), nil
}
