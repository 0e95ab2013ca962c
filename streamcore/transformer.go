package streamcore

import "github.com/taipm/go-llm-gateway/types"

// Result carries either a value or an error, letting a stream-chunk
// transformer deliver zero, one, or many events per raw frame without
// aborting the stream on the first error (spec §4.1 contract, §7).
type Result struct {
	Event types.ChatStreamEvent
	Err   error
}

func Ok(ev types.ChatStreamEvent) Result { return Result{Event: ev} }
func Err(err error) Result               { return Result{Err: err} }

// RawEvent is a provider-framed event, already split by SSEFramer or
// NDJSONFramer, handed to a StreamChunkTransformer for interpretation.
type RawEvent struct {
	// EventName is the SSE `event:` field (empty for NDJSON streams).
	EventName string
	// Data is the SSE `data:` payload or one NDJSON line.
	Data string
}

// StreamChunkTransformer is the per-provider contract for turning raw
// framed events into unified ChatStreamEvents (spec §4.1).
type StreamChunkTransformer interface {
	ProviderID() string

	// ConvertEvent may emit zero or many results for a single raw event.
	ConvertEvent(raw RawEvent) []Result

	// HandleStreamEndEvents is called once the raw event source is
	// exhausted; it lets a stateful converter (e.g. the OpenAI Responses
	// state machine) drain any pending completion events.
	HandleStreamEndEvents() []Result

	// FinalizeOnDisconnect reports whether a transport close without a
	// terminal provider signal should still synthesize a StreamEnd
	// (spec §3 invariant: not synthesized unless the transformer opts in).
	FinalizeOnDisconnect() bool
}
