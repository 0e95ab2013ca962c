// Package compat implements the generic OpenAI-compatible transformer used
// by DeepSeek, OpenRouter, SiliconFlow, Together, Fireworks, Mistral,
// Perplexity, and any other provider that speaks the OpenAI Chat
// Completions wire format with small per-vendor deviations. It is grounded
// in original_source's siumai-provider-openai-compatible standard, which
// centralizes exactly this kind of reuse across lookalike providers.
package compat

import (
	"github.com/taipm/go-llm-gateway/llmerrors"
	"github.com/taipm/go-llm-gateway/streamcore"
	"github.com/taipm/go-llm-gateway/transform/openai"
	"github.com/taipm/go-llm-gateway/types"
)

// ChatTransformer renders ChatRequest into an OpenAI Chat Completions body,
// merging providerOptions under VendorKey instead of "openai" so each
// OpenAI-lookalike reads its own options namespace (e.g.
// providerOptions["openrouter"].route).
type ChatTransformer struct {
	VendorKey string
	inner     openai.ChatTransformer
}

func NewChatTransformer(vendorKey string) ChatTransformer {
	return ChatTransformer{VendorKey: vendorKey}
}

func (c ChatTransformer) TransformChat(req *types.ChatRequest) (map[string]any, error) {
	if req.Common.Model == "" {
		return nil, llmerrors.New(llmerrors.KindInvalidInput, "model is required")
	}
	// Point the "openai" key the inner transformer reads at the vendor's
	// options, on a copy of the request and of its options map, so the
	// caller's request is never mutated.
	rerouted := *req
	rerouted.Options = rerouteOptions(req.Options, c.VendorKey)
	return c.inner.TransformChat(&rerouted)
}

func rerouteOptions(opts types.ProviderOptions, vendorKey string) types.ProviderOptions {
	if opts == nil {
		return nil
	}
	vendorOpts := opts.Get(vendorKey)
	if vendorOpts == nil {
		return opts
	}
	merged := types.ProviderOptions{}
	for k, v := range opts {
		merged[k] = v
	}
	merged["openai"] = vendorOpts
	return merged
}

// EmbeddingTransformer reroutes providerOptions the same way ChatTransformer
// does, then reuses openai.EmbeddingTransformer's body shape unchanged.
type EmbeddingTransformer struct {
	VendorKey string
	inner     openai.EmbeddingTransformer
}

func NewEmbeddingTransformer(vendorKey string) EmbeddingTransformer {
	return EmbeddingTransformer{VendorKey: vendorKey}
}

func (e EmbeddingTransformer) TransformEmbedding(req *types.EmbeddingRequest) (map[string]any, error) {
	rerouted := *req
	rerouted.Options = rerouteOptions(req.Options, e.VendorKey)
	return e.inner.TransformEmbedding(&rerouted)
}

// ResponseTransformer reuses the OpenAI Chat Completions response parser
// unchanged: every OpenAI-compatible vendor returns the same choice/usage
// envelope, including the reasoning_content fallback DeepSeek-R1-style
// reasoning models use.
type ResponseTransformer = openai.ResponseTransformer

// NewStreamTransformer returns an OpenAI-shaped SSE stream transformer
// tagged with providerID, so ProviderID and the StreamStart metadata name
// the actual vendor instead of a generic "openai".
func NewStreamTransformer(providerID string) *StreamTransformer {
	return &StreamTransformer{inner: openai.NewStreamTransformer(), providerID: providerID}
}

// StreamTransformer wraps openai.StreamTransformer to override ProviderID
// and the Provider of StreamStart metadata; all other event conversion is
// identical.
type StreamTransformer struct {
	inner      *openai.StreamTransformer
	providerID string
}

func (t *StreamTransformer) ProviderID() string { return t.providerID }

func (t *StreamTransformer) ConvertEvent(raw streamcore.RawEvent) []streamcore.Result {
	results := t.inner.ConvertEvent(raw)
	for i := range results {
		if results[i].Err == nil && results[i].Event.Kind == types.EventStreamStart {
			results[i].Event.Metadata.Provider = t.providerID
		}
	}
	return results
}

func (t *StreamTransformer) HandleStreamEndEvents() []streamcore.Result {
	return t.inner.HandleStreamEndEvents()
}

func (t *StreamTransformer) FinalizeOnDisconnect() bool { return t.inner.FinalizeOnDisconnect() }
