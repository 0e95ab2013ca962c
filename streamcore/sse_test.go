package streamcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSSEFramer_ParsesCompleteFrame(t *testing.T) {
	var f SSEFramer
	events := f.Feed([]byte("event: message\ndata: hello\n\n"))
	require.Len(t, events, 1)
	assert.Equal(t, "message", events[0].Event)
	assert.Equal(t, "hello", events[0].Data)
}

func TestSSEFramer_HoldsIncompleteFrameAcrossFeeds(t *testing.T) {
	var f SSEFramer
	events := f.Feed([]byte("data: par"))
	assert.Empty(t, events)

	events = f.Feed([]byte("tial\n\n"))
	require.Len(t, events, 1)
	assert.Equal(t, "partial", events[0].Data)
}

func TestSSEFramer_MultilineDataJoinedWithNewline(t *testing.T) {
	var f SSEFramer
	events := f.Feed([]byte("data: line one\ndata: line two\n\n"))
	require.Len(t, events, 1)
	assert.Equal(t, "line one\nline two", events[0].Data)
}

func TestSSEFramer_NormalizesCRLF(t *testing.T) {
	var f SSEFramer
	events := f.Feed([]byte("data: hi\r\n\r\n"))
	require.Len(t, events, 1)
	assert.Equal(t, "hi", events[0].Data)
}

func TestSSEFramer_IgnoresCommentLines(t *testing.T) {
	var f SSEFramer
	events := f.Feed([]byte(": this is a comment\ndata: real\n\n"))
	require.Len(t, events, 1)
	assert.Equal(t, "real", events[0].Data)
}

func TestSSEFramer_FlushEmitsTrailingFrameWithoutBlankLine(t *testing.T) {
	var f SSEFramer
	f.Feed([]byte("data: no-terminator"))
	events := f.Flush()
	require.Len(t, events, 1)
	assert.Equal(t, "no-terminator", events[0].Data)
}

func TestSSEFramer_MultipleFramesInOneChunk(t *testing.T) {
	var f SSEFramer
	events := f.Feed([]byte("data: one\n\ndata: two\n\n"))
	require.Len(t, events, 2)
	assert.Equal(t, "one", events[0].Data)
	assert.Equal(t, "two", events[1].Data)
}
