package streamcore

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taipm/go-llm-gateway/types"
)

// echoTransformer turns each raw event's Data into a ContentDelta, and
// emits one extra StreamEnd when the source is exhausted.
type echoTransformer struct {
	endCalled bool
}

func (e *echoTransformer) ProviderID() string { return "test" }

func (e *echoTransformer) ConvertEvent(raw RawEvent) []Result {
	if raw.Data == "" {
		return nil
	}
	return []Result{Ok(types.NewContentDelta(raw.Data, nil))}
}

func (e *echoTransformer) HandleStreamEndEvents() []Result {
	if e.endCalled {
		return nil
	}
	e.endCalled = true
	return []Result{Ok(types.NewStreamEnd(&types.ChatResponse{Content: "done"}))}
}

func (e *echoTransformer) FinalizeOnDisconnect() bool { return true }

func TestByteStream_SSE_DeliversDeltasThenSynthesizedEnd(t *testing.T) {
	body := io.NopCloser(strings.NewReader("data: one\n\ndata: two\n\n"))
	transformer := &echoTransformer{}
	bs := NewByteStream(body, FrameSSE, transformer)

	var deltas []string
	var sawEnd bool
	for {
		ev, ok, err := bs.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		switch ev.Kind {
		case types.EventContentDelta:
			deltas = append(deltas, ev.Delta)
		case types.EventStreamEnd:
			sawEnd = true
		}
	}

	assert.Equal(t, []string{"one", "two"}, deltas)
	assert.True(t, sawEnd, "exhausting the body must drain HandleStreamEndEvents")
}

func TestByteStream_NDJSON_DeliversOneDeltaPerLine(t *testing.T) {
	body := io.NopCloser(strings.NewReader("alpha\nbeta\n"))
	transformer := &echoTransformer{}
	bs := NewByteStream(body, FrameNDJSON, transformer)

	var deltas []string
	for {
		ev, ok, err := bs.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		if ev.Kind == types.EventContentDelta {
			deltas = append(deltas, ev.Delta)
		}
	}
	assert.Equal(t, []string{"alpha", "beta"}, deltas)
}

func TestByteStream_HandleStreamEndEventsDrainsExactlyOnce(t *testing.T) {
	body := io.NopCloser(strings.NewReader(""))
	transformer := &echoTransformer{}
	bs := NewByteStream(body, FrameSSE, transformer)

	var ends int
	for {
		ev, ok, err := bs.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		if ev.Kind == types.EventStreamEnd {
			ends++
		}
	}
	assert.Equal(t, 1, ends)
}

func TestByteStream_Close_ClosesUnderlyingBody(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	bs := NewByteStream(pr, FrameSSE, &echoTransformer{})
	require.NoError(t, bs.Close())

	_, err := pr.Read(make([]byte, 1))
	assert.Error(t, err, "reading a closed pipe reader should error")
}
