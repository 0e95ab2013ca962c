package providerspec

import (
	"fmt"

	"github.com/taipm/go-llm-gateway/streamcore"
	"github.com/taipm/go-llm-gateway/transform/anthropic"
	"github.com/taipm/go-llm-gateway/transform/compat"
	"github.com/taipm/go-llm-gateway/transform/embedding"
	"github.com/taipm/go-llm-gateway/transform/gemini"
	"github.com/taipm/go-llm-gateway/transform/ollama"
	"github.com/taipm/go-llm-gateway/transform/openai"
	"github.com/taipm/go-llm-gateway/transform/openairesponses"
)

// NewOpenAI builds the Spec for api.openai.com's Chat Completions endpoint.
func NewOpenAI(apiKey string) *Spec {
	return &Spec{
		ID:                      "openai",
		BaseURL:                 "https://api.openai.com/v1",
		APIKey:                  apiKey,
		Capabilities:            map[Capability]bool{CapChat: true, CapEmbedding: true, CapImage: true, CapTTS: true, CapSTT: true, CapModeration: true, CapFiles: true},
		ChatRequestTransformer:      openai.ChatTransformer{},
		ChatResponseTransformer:     openai.ResponseTransformer{},
		ChatStreamTransformer:       func() streamcore.StreamChunkTransformer { return openai.NewStreamTransformer() },
		StreamFrameKind:             streamcore.FrameSSE,
		EmbeddingRequestTransformer: openai.EmbeddingTransformer{},
		EmbeddingResponseParser:     embedding.ParseOpenAIStyleEmbedding,
		ImageRequestTransformer:     openai.ImageTransformer{},
		ImageResponseParser:         openai.ParseImage,
		ModerationRequestTransformer: openai.ModerationTransformer{},
		ModerationResponseParser:     openai.ParseModeration,
		TTSRequestTransformer:        openai.TTSTransformer{},
		TTSResponseParser:            openai.ParseTTS,
		STTRequestTransformer:        openai.STTTransformer{},
		STTResponseParser:            openai.ParseSTT,
		FilesRequestTransformer:      openai.FilesTransformer{},
		FilesResponseParser:          openai.ParseFilesUpload,
		ChatURL:                     func(base, model string) string { return base + "/chat/completions" },
		EmbeddingURL:                func(base, model string) string { return base + "/embeddings" },
		ImageURL:                func(base, model string) string { return base + "/images/generations" },
		ModerationURL:           func(base, model string) string { return base + "/moderations" },
		TTSURL:                  func(base, model string) string { return base + "/audio/speech" },
		STTURL:                  func(base, model string) string { return base + "/audio/transcriptions" },
		FilesURL:                func(base string) string { return base + "/files" },
		ModelsURL:               func(base string) string { return base + "/models" },
		ModelURL:                func(base, model string) string { return base + "/models/" + model },
		BuildHeaders:            OpenAIHeaders,
		ClassifyError:           openai.ClassifyError,
	}
}

// NewOpenAIResponses builds the Spec for api.openai.com's stateful
// Responses endpoint (spec §4.1.1), registered under a distinct provider id
// ("openai-responses") so a caller opts in explicitly rather than having it
// silently replace Chat Completions.
func NewOpenAIResponses(apiKey string) *Spec {
	return &Spec{
		ID:                      "openai-responses",
		BaseURL:                 "https://api.openai.com/v1",
		APIKey:                  apiKey,
		Capabilities:            map[Capability]bool{CapChat: true},
		ChatRequestTransformer:  openairesponses.ChatTransformer{},
		ChatResponseTransformer: openairesponses.ResponseTransformer{},
		ChatStreamTransformer:   func() streamcore.StreamChunkTransformer { return openairesponses.NewStreamTransformer() },
		StreamFrameKind:         streamcore.FrameSSE,
		ChatURL:                 func(base, model string) string { return base + "/responses" },
		BuildHeaders:            OpenAIHeaders,
		ClassifyError:           openairesponses.ClassifyError,
	}
}

// NewAnthropic builds the Spec for api.anthropic.com's Messages endpoint.
func NewAnthropic(apiKey string) *Spec {
	return &Spec{
		ID:                      "anthropic",
		BaseURL:                 "https://api.anthropic.com/v1",
		APIKey:                  apiKey,
		Capabilities:            map[Capability]bool{CapChat: true},
		ChatRequestTransformer:  anthropic.ChatTransformer{DefaultMaxTokens: 4096},
		ChatResponseTransformer: anthropic.ResponseTransformer{},
		ChatStreamTransformer:   func() streamcore.StreamChunkTransformer { return anthropic.NewStreamTransformer() },
		StreamFrameKind:         streamcore.FrameSSE,
		ChatURL:                 func(base, model string) string { return base + "/messages" },
		ModelsURL:               func(base string) string { return base + "/models" },
		ModelURL:                func(base, model string) string { return base + "/models/" + model },
		BuildHeaders:            AnthropicHeaders,
		ClassifyError:           anthropic.ClassifyError,
	}
}

// NewGemini builds the Spec for generativelanguage.googleapis.com's
// generateContent/streamGenerateContent endpoints, addressed via an API key
// (Vertex bearer-token mode is selected by an Authorization entry in
// ExtraHeaders; GeminiHeaders then sends that header as is, omits
// x-goog-api-key and does not consult the token provider).
func NewGemini(apiKey string) *Spec {
	return &Spec{
		ID:                      "gemini",
		BaseURL:                 "https://generativelanguage.googleapis.com/v1beta",
		APIKey:                  apiKey,
		Capabilities:            map[Capability]bool{CapChat: true, CapImage: true, CapEmbedding: true},
		ChatRequestTransformer:      gemini.ChatTransformer{},
		ChatResponseTransformer:     gemini.ResponseTransformer{},
		ChatStreamTransformer:       func() streamcore.StreamChunkTransformer { return gemini.NewStreamTransformer() },
		StreamFrameKind:             streamcore.FrameSSE,
		EmbeddingRequestTransformer: gemini.EmbeddingTransformer{},
		EmbeddingResponseParser:     gemini.ParseEmbedding,
		ImageRequestTransformer:     gemini.ImageTransformer{},
		ImageResponseParser:         gemini.ParseImage,
		ChatURL: func(base, model string) string {
			return fmt.Sprintf("%s/models/%s:generateContent", base, gemini.NormalizeModelID(model))
		},
		ChatStreamURL: geminiStreamChatURL,
		ImageURL: func(base, model string) string {
			return fmt.Sprintf("%s/models/%s:predict", base, gemini.NormalizeModelID(model))
		},
		EmbeddingURL: func(base, model string) string {
			return fmt.Sprintf("%s/models/%s:embedContent", base, gemini.NormalizeModelID(model))
		},
		ModelURL: func(base, model string) string {
			return fmt.Sprintf("%s/models/%s", base, gemini.NormalizeModelID(model))
		},
		BuildHeaders:  GeminiHeaders,
		ClassifyError: gemini.ClassifyError,
	}
}

// geminiStreamChatURL addresses Gemini's streamGenerateContent method,
// distinct from generateContent rather than a query flag on the same URL.
func geminiStreamChatURL(base, model string) string {
	return fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", base, gemini.NormalizeModelID(model))
}

// NewOllama builds the Spec for a local Ollama daemon's /api/chat endpoint.
func NewOllama(baseURL string) *Spec {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &Spec{
		ID:                      "ollama",
		BaseURL:                 baseURL,
		Capabilities:                map[Capability]bool{CapChat: true, CapEmbedding: true},
		ChatRequestTransformer:      ollama.ChatTransformer{},
		ChatResponseTransformer:     ollama.ResponseTransformer{},
		ChatStreamTransformer:       func() streamcore.StreamChunkTransformer { return ollama.NewStreamTransformer() },
		StreamFrameKind:             streamcore.FrameNDJSON,
		EmbeddingRequestTransformer: ollama.EmbeddingTransformer{},
		EmbeddingResponseParser:     ollama.ParseEmbedding,
		ChatURL:                     func(base, model string) string { return base + "/api/chat" },
		EmbeddingURL:                func(base, model string) string { return base + "/api/embed" },
		ModelsURL:                   func(base string) string { return base + "/api/tags" },
		BuildHeaders:                OllamaHeaders,
		ClassifyError:               ollama.ClassifyError,
	}
}

// NewOpenAICompat builds a Spec for an OpenAI-compatible vendor (DeepSeek,
// OpenRouter, SiliconFlow, Together, Fireworks, Mistral, Perplexity, ...),
// reusing transform/compat's thin OpenAI wrapper so each vendor's distinct
// providerOptions namespace still reaches the real OpenAI transformer.
func NewOpenAICompat(id, baseURL, apiKey string) *Spec {
	return &Spec{
		ID:                      id,
		BaseURL:                 baseURL,
		APIKey:                  apiKey,
		Capabilities:                map[Capability]bool{CapChat: true, CapEmbedding: true, CapRerank: true},
		ChatRequestTransformer:      compat.NewChatTransformer(id),
		ChatResponseTransformer:     compat.ResponseTransformer{},
		ChatStreamTransformer:       func() streamcore.StreamChunkTransformer { return compat.NewStreamTransformer(id) },
		StreamFrameKind:             streamcore.FrameSSE,
		EmbeddingRequestTransformer: compat.NewEmbeddingTransformer(id),
		EmbeddingResponseParser:     embedding.ParseOpenAIStyleEmbedding,
		RerankRequestTransformer:    compat.NewRerankTransformer(id),
		RerankResponseParser:        compat.ParseRerank,
		ChatURL:                     func(base, model string) string { return base + "/chat/completions" },
		EmbeddingURL:                func(base, model string) string { return base + "/embeddings" },
		RerankURL:                   func(base, model string) string { return base + "/rerank" },
		ModelsURL:                   func(base string) string { return base + "/models" },
		BuildHeaders:                OpenAIHeaders,
		ClassifyError:               openai.ClassifyError,
	}
}

// NewDeepSeek builds the DeepSeek Spec (reasoning_content streamed inline,
// handled by compat/openai's response parser already).
func NewDeepSeek(apiKey string) *Spec {
	return NewOpenAICompat("deepseek", "https://api.deepseek.com/v1", apiKey)
}

// NewOpenRouter builds the OpenRouter Spec, a router in front of many
// upstream models addressed as "vendor/model".
func NewOpenRouter(apiKey string) *Spec {
	return NewOpenAICompat("openrouter", "https://openrouter.ai/api/v1", apiKey)
}

// NewSiliconFlow builds the SiliconFlow Spec.
func NewSiliconFlow(apiKey string) *Spec {
	return NewOpenAICompat("siliconflow", "https://api.siliconflow.cn/v1", apiKey)
}
