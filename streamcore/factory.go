package streamcore

import (
	"bufio"
	"io"

	"github.com/taipm/go-llm-gateway/types"
)

// FrameKind selects which wire framing a ByteStream uses.
type FrameKind int

const (
	FrameSSE FrameKind = iota
	FrameNDJSON
)

// ByteStream pulls raw event frames out of an HTTP response body and feeds
// them through a StreamChunkTransformer, producing a flat queue of unified
// events. It implements cancel.Stream[types.ChatStreamEvent] (structurally;
// this package does not import cancel to avoid a dependency cycle risk,
// callers wrap it with cancel.NewCancellableStream).
type ByteStream struct {
	body        io.ReadCloser
	reader      *bufio.Reader
	kind        FrameKind
	sse         SSEFramer
	ndjson      NDJSONFramer
	utf8        UTF8Reassembler
	transformer StreamChunkTransformer

	queue   []Result
	started bool
	ended   bool
}

// NewByteStream builds a stream factory over body, framing it per kind and
// decoding it with transformer.
func NewByteStream(body io.ReadCloser, kind FrameKind, transformer StreamChunkTransformer) *ByteStream {
	return &ByteStream{
		body:        body,
		reader:      bufio.NewReaderSize(body, 16*1024),
		kind:        kind,
		transformer: transformer,
	}
}

// Next returns the next unified stream event. ok is false once the stream
// is exhausted (after draining HandleStreamEndEvents).
func (s *ByteStream) Next() (types.ChatStreamEvent, bool, error) {
	for {
		if len(s.queue) > 0 {
			r := s.queue[0]
			s.queue = s.queue[1:]
			if r.Err != nil {
				return types.ChatStreamEvent{}, true, r.Err
			}
			return r.Event, true, nil
		}
		if s.ended {
			return types.ChatStreamEvent{}, false, nil
		}
		if !s.pull() {
			s.ended = true
			s.queue = append(s.queue, s.transformer.HandleStreamEndEvents()...)
			if len(s.queue) == 0 {
				return types.ChatStreamEvent{}, false, nil
			}
		}
	}
}

// pull reads one more chunk from the body and feeds it through the framer
// and transformer, appending results to the queue. Returns false when the
// body is exhausted.
func (s *ByteStream) pull() bool {
	chunk := make([]byte, 8*1024)
	n, err := s.reader.Read(chunk)
	if n > 0 {
		s.feed(chunk[:n])
	}
	if err != nil {
		return false
	}
	return true
}

func (s *ByteStream) feed(chunk []byte) {
	switch s.kind {
	case FrameSSE:
		for _, ev := range s.sse.Feed(chunk) {
			s.feedSSE(ev)
		}
	case FrameNDJSON:
		for _, line := range s.ndjson.Feed(chunk) {
			s.queue = append(s.queue, s.transformer.ConvertEvent(RawEvent{Data: line})...)
		}
	}
}

func (s *ByteStream) feedSSE(ev SSEEvent) {
	data := s.utf8.Feed([]byte(ev.Data))
	s.queue = append(s.queue, s.transformer.ConvertEvent(RawEvent{EventName: ev.Event, Data: data})...)
}

// Close releases the underlying HTTP body, signalling the transport to
// close the connection (spec §4.6).
func (s *ByteStream) Close() error {
	return s.body.Close()
}
