// Package providerspec describes, per provider, the URLs, header builders,
// and capability/transformer wiring an executor needs (spec §4.1, §6).
package providerspec

import (
	"net/http"

	"github.com/taipm/go-llm-gateway/streamcore"
	"github.com/taipm/go-llm-gateway/types"
)

// Capability is one of the invocable surfaces a provider may support.
type Capability string

const (
	CapChat       Capability = "chat"
	CapEmbedding  Capability = "embedding"
	CapImage      Capability = "image"
	CapTTS        Capability = "tts"
	CapSTT        Capability = "stt"
	CapRerank     Capability = "rerank"
	CapModeration Capability = "moderation"
	CapFiles      Capability = "files"
)

// RequestTransformer renders a unified request into a provider JSON body.
type RequestTransformer interface {
	TransformChat(req *types.ChatRequest) (map[string]any, error)
}

// ResponseTransformer parses a provider JSON body into a unified response.
type ResponseTransformer interface {
	ParseChat(body []byte) (*types.ChatResponse, error)
}

// EmbeddingRequestTransformer renders an EmbeddingRequest into a provider
// JSON body.
type EmbeddingRequestTransformer interface {
	TransformEmbedding(req *types.EmbeddingRequest) (map[string]any, error)
}

// EmbeddingResponseParser parses a provider JSON body into a unified
// EmbeddingResponse.
type EmbeddingResponseParser func(body []byte) (*types.EmbeddingResponse, error)

// ImageRequestTransformer renders an ImageGenerationRequest into a provider
// JSON body, returning any unsupported-setting warnings alongside it.
type ImageRequestTransformer interface {
	TransformImage(req *types.ImageGenerationRequest) (body map[string]any, warnings []string, err error)
}

// ImageResponseParser parses a provider JSON body into a unified
// ImageGenerationResponse.
type ImageResponseParser func(body []byte) (*types.ImageGenerationResponse, error)

// RerankRequestTransformer renders a RerankRequest into a provider JSON body.
type RerankRequestTransformer interface {
	TransformRerank(req *types.RerankRequest) (map[string]any, error)
}

// RerankResponseParser parses a provider JSON body into a unified
// RerankResponse.
type RerankResponseParser func(body []byte) (*types.RerankResponse, error)

// ModerationRequestTransformer renders a ModerationRequest into a provider
// JSON body.
type ModerationRequestTransformer interface {
	TransformModeration(req *types.ModerationRequest) (map[string]any, error)
}

// ModerationResponseParser parses a provider JSON body into a unified
// ModerationResponse.
type ModerationResponseParser func(body []byte) (*types.ModerationResponse, error)

// TTSRequestTransformer renders a TTSRequest into a provider JSON body.
type TTSRequestTransformer interface {
	TransformTTS(req *types.TTSRequest) (map[string]any, error)
}

// TTSResponseParser wraps a raw response body and its Content-Type header
// into a unified TTSResponse. Unlike every other capability here, the wire
// response is the audio payload itself rather than a JSON envelope (spec
// §4.1: transform_tts returns `Json | Multipart`, and on the response side
// there is no JSON to parse at all).
type TTSResponseParser func(body []byte, contentType string) (*types.TTSResponse, error)

// STTRequestTransformer renders an STTRequest into a multipart/form-data
// body. Every provider this module wires speaks multipart for audio upload
// (spec §4.1: transform_stt returns `Json | Multipart`).
type STTRequestTransformer interface {
	TransformSTT(req *types.STTRequest) (*types.MultipartForm, error)
}

// STTResponseParser parses a provider JSON body into a unified STTResponse.
type STTResponseParser func(body []byte) (*types.STTResponse, error)

// FilesRequestTransformer renders a FileUploadRequest into a
// multipart/form-data body.
type FilesRequestTransformer interface {
	TransformFilesUpload(req *types.FileUploadRequest) (*types.MultipartForm, error)
}

// FilesResponseParser parses a provider JSON body into a unified
// FileUploadResponse.
type FilesResponseParser func(body []byte) (*types.FileUploadResponse, error)

// TokenProvider supplies (and can refresh) a bearer credential.
type TokenProvider interface {
	// Token returns the current credential. refreshed is true when a new
	// token was minted (as opposed to a cached one), which an executor
	// uses to decide whether a 401 retry is worth attempting again.
	Token(refresh bool) (token string, refreshed bool, err error)
}

// Spec is the static descriptor for one provider.
type Spec struct {
	ID      string
	BaseURL string

	// APIKey / TokenProvider: exactly one is typically set. TokenProvider
	// takes precedence when both are present.
	APIKey        string
	TokenProvider TokenProvider
	Org           string
	Project       string
	ExtraHeaders  http.Header

	Capabilities map[Capability]bool

	ChatRequestTransformer  RequestTransformer
	ChatResponseTransformer ResponseTransformer
	ChatStreamTransformer   func() streamcore.StreamChunkTransformer
	StreamFrameKind         streamcore.FrameKind

	EmbeddingRequestTransformer EmbeddingRequestTransformer
	EmbeddingResponseParser     EmbeddingResponseParser

	ImageRequestTransformer ImageRequestTransformer
	ImageResponseParser     ImageResponseParser

	RerankRequestTransformer RerankRequestTransformer
	RerankResponseParser     RerankResponseParser

	ModerationRequestTransformer ModerationRequestTransformer
	ModerationResponseParser     ModerationResponseParser

	TTSRequestTransformer TTSRequestTransformer
	TTSResponseParser     TTSResponseParser

	STTRequestTransformer STTRequestTransformer
	STTResponseParser     STTResponseParser

	FilesRequestTransformer FilesRequestTransformer
	FilesResponseParser     FilesResponseParser

	// ChatURL/EmbeddingURL/... build the full request URL for model.
	ChatURL      func(baseURL, model string) string
	// ChatStreamURL builds the streaming request URL, when a provider
	// addresses streaming as a distinct resource/method rather than a flag
	// on the same request (e.g. Gemini's streamGenerateContent). Nil means
	// streaming reuses ChatURL.
	ChatStreamURL func(baseURL, model string) string
	EmbeddingURL func(baseURL, model string) string
	RerankURL     func(baseURL, model string) string
	TTSURL        func(baseURL, model string) string
	STTURL        func(baseURL, model string) string
	ModerationURL func(baseURL, model string) string
	ImageURL     func(baseURL, model string) string
	FilesURL     func(baseURL string) string
	ModelsURL    func(baseURL string) string
	ModelURL     func(baseURL, model string) string

	// BuildHeaders returns the full header set for a request, given
	// whether this is an auth-refresh retry attempt.
	BuildHeaders func(s *Spec, refreshToken bool) (http.Header, error)

	// ClassifyError maps a non-2xx HTTP status + body into an llmerrors
	// error kind specific to this provider's error envelope.
	ClassifyError func(statusCode int, body []byte) error

	Stream bool
}

func (s *Spec) Supports(cap Capability) bool {
	return s.Capabilities != nil && s.Capabilities[cap]
}
