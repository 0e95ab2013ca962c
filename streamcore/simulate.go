package streamcore

import (
	"time"

	"github.com/taipm/go-llm-gateway/types"
)

// SimulateStreamingConfig configures SimulateStreaming.
type SimulateStreamingConfig struct {
	// ChunkSize is the number of runes per synthetic ContentDelta. Must be
	// positive; a non-positive value defaults to 1.
	ChunkSize int

	// Delay, when positive, is slept between chunks to mimic network
	// pacing. It is not applied before the first chunk.
	Delay time.Duration
}

// SimulateStreaming turns a non-streaming ChatResponse into a synthetic
// event sequence: a StreamStart, UTF-8-safe ContentDelta chunks of
// cfg.ChunkSize runes, and a trailing StreamEnd carrying resp unchanged
// (spec §4.2 "Simulate streaming middleware"). Chunking on []rune keeps
// every delta a whole number of code points.
func SimulateStreaming(resp *types.ChatResponse, meta types.StreamMetadata, cfg SimulateStreamingConfig) []types.ChatStreamEvent {
	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 1
	}

	events := []types.ChatStreamEvent{types.NewStreamStart(meta)}

	runes := []rune(resp.Content)
	for i := 0; i < len(runes); i += chunkSize {
		end := i + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunk := string(runes[i:end])
		if chunk == "" {
			continue
		}
		events = append(events, types.NewContentDelta(chunk, nil))
		if cfg.Delay > 0 && end < len(runes) {
			time.Sleep(cfg.Delay)
		}
	}

	events = append(events, types.NewStreamEnd(resp))
	return events
}
