package types

// FinishReason is the provider-agnostic reason generation stopped.
type FinishReason struct {
	Tag FinishTag
	// Other carries the raw provider string when Tag == FinishOther.
	Other string
}

type FinishTag string

const (
	FinishStop         FinishTag = "stop"
	FinishLength       FinishTag = "length"
	FinishToolCalls    FinishTag = "tool_calls"
	FinishContentFilter FinishTag = "content_filter"
	FinishStopSequence FinishTag = "stop_sequence"
	FinishOther        FinishTag = "other"
)

func OtherFinishReason(tag string) FinishReason {
	return FinishReason{Tag: FinishOther, Other: tag}
}

// Usage reports token consumption for a single completion.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	CachedTokens     *int
	ReasoningTokens  *int
}

// ChatResponse is the unified non-streaming chat response.
type ChatResponse struct {
	Content   string
	Parts     []ContentPart
	ToolCalls []ToolCall
	Reasoning string

	FinishReason FinishReason
	Usage        Usage

	// ProviderMetadata carries provider-specific extras keyed by provider
	// id, e.g. Anthropic thinking signatures or OpenAI Responses item ids.
	ProviderMetadata map[string]map[string]any

	Warnings []string

	ID      string
	Model   string
	Created int64
}

// EmbeddingResponse carries one vector per input string.
type EmbeddingResponse struct {
	Vectors [][]float64
	Usage   Usage
	Model   string
}

// ImageGenerationResponse carries one or more generated images.
type ImageGenerationResponse struct {
	Images   []GeneratedImage
	Warnings []string
}

type GeneratedImage struct {
	URL      string
	Data     string // base64, when the provider returns inline bytes
	MimeType string
}

// RerankResponse carries reranked document indices and relevance scores.
type RerankResponse struct {
	Results []RerankResult
	Usage   Usage
}

type RerankResult struct {
	Index int
	Score float64
}

// ModerationResponse reports whether Input was flagged.
type ModerationResponse struct {
	Flagged    bool
	Categories map[string]bool
	Scores     map[string]float64
}

// TTSResponse carries synthesized audio bytes.
type TTSResponse struct {
	AudioData []byte
	MimeType  string
}

// STTResponse carries a transcript.
type STTResponse struct {
	Text     string
	Language string
}

// FileUploadResponse identifies an uploaded file.
type FileUploadResponse struct {
	ID       string
	Filename string
	Bytes    int64
}
