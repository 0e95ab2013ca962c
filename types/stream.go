package types

// ChatStreamEventKind discriminates the ChatStreamEvent sum type (§3).
type ChatStreamEventKind string

const (
	EventStreamStart     ChatStreamEventKind = "stream_start"
	EventContentDelta    ChatStreamEventKind = "content_delta"
	EventReasoningDelta  ChatStreamEventKind = "reasoning_delta"
	EventToolCallDelta   ChatStreamEventKind = "tool_call_delta"
	EventUsageUpdate     ChatStreamEventKind = "usage_update"
	EventStreamEnd       ChatStreamEventKind = "stream_end"
	EventWarning         ChatStreamEventKind = "warning"
)

// StreamMetadata identifies the stream's origin, when the provider emits it.
type StreamMetadata struct {
	ID       string
	Model    string
	Provider string
}

// ChatStreamEvent is one item of a unified chat stream. Only the field(s)
// matching Kind are meaningful.
type ChatStreamEvent struct {
	Kind ChatStreamEventKind

	// StreamStart
	Metadata StreamMetadata

	// ContentDelta
	Delta string
	Index *int

	// ReasoningDelta
	ReasoningID string

	// ToolCallDelta
	ToolCallID               string
	ToolCallName              string
	ToolCallArgumentsFragment string
	ToolCallIndex             *int

	// UsageUpdate
	Usage Usage

	// StreamEnd
	Response *ChatResponse

	// Warning
	Warning string
}

func NewStreamStart(meta StreamMetadata) ChatStreamEvent {
	return ChatStreamEvent{Kind: EventStreamStart, Metadata: meta}
}

func NewContentDelta(delta string, index *int) ChatStreamEvent {
	return ChatStreamEvent{Kind: EventContentDelta, Delta: delta, Index: index}
}

func NewReasoningDelta(delta, id string) ChatStreamEvent {
	return ChatStreamEvent{Kind: EventReasoningDelta, Delta: delta, ReasoningID: id}
}

func NewToolCallDelta(id, name, argsFragment string, index *int) ChatStreamEvent {
	return ChatStreamEvent{
		Kind:                      EventToolCallDelta,
		ToolCallID:                id,
		ToolCallName:              name,
		ToolCallArgumentsFragment: argsFragment,
		ToolCallIndex:             index,
	}
}

func NewUsageUpdate(u Usage) ChatStreamEvent {
	return ChatStreamEvent{Kind: EventUsageUpdate, Usage: u}
}

func NewStreamEnd(resp *ChatResponse) ChatStreamEvent {
	return ChatStreamEvent{Kind: EventStreamEnd, Response: resp}
}

func NewWarningEvent(msg string) ChatStreamEvent {
	return ChatStreamEvent{Kind: EventWarning, Warning: msg}
}
