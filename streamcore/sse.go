// Package streamcore implements the byte-to-event framing layer described
// in spec §4.2: SSE and NDJSON framing, a UTF-8-safe chunk reassembler, and
// the stream factory that ties a frame decoder to a StreamChunkTransformer.
package streamcore

import "strings"

// SSEEvent is one parsed Server-Sent Event frame.
type SSEEvent struct {
	Event string
	Data  string
	ID    string
	Retry string
}

// SSEFramer incrementally splits a byte stream into SSE frames terminated
// by a blank line, normalizing CRLF to LF first. It is safe to feed partial
// chunks across multiple Feed calls; an incomplete trailing frame is held
// until the next Feed or Flush.
type SSEFramer struct {
	buf strings.Builder
}

// Feed appends raw bytes and returns any complete frames now available.
func (f *SSEFramer) Feed(chunk []byte) []SSEEvent {
	normalized := strings.ReplaceAll(string(chunk), "\r\n", "\n")
	f.buf.WriteString(normalized)
	return f.drain(false)
}

// Flush forces emission of a trailing frame that never received its
// terminating blank line. ByteStream does not call it, so such a frame is
// dropped when the body ends.
func (f *SSEFramer) Flush() []SSEEvent {
	return f.drain(true)
}

func (f *SSEFramer) drain(final bool) []SSEEvent {
	content := f.buf.String()
	var events []SSEEvent

	for {
		idx := strings.Index(content, "\n\n")
		if idx < 0 {
			break
		}
		raw := content[:idx]
		content = content[idx+2:]
		if ev, ok := parseSSEFrame(raw); ok {
			events = append(events, ev)
		}
	}

	if final && len(content) > 0 {
		if ev, ok := parseSSEFrame(content); ok {
			events = append(events, ev)
		}
		content = ""
	}

	f.buf.Reset()
	f.buf.WriteString(content)
	return events
}

func parseSSEFrame(raw string) (SSEEvent, bool) {
	var ev SSEEvent
	var dataLines []string
	any := false
	for _, line := range strings.Split(raw, "\n") {
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "event:"):
			ev.Event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			any = true
		case strings.HasPrefix(line, "data:"):
			dataLines = append(dataLines, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
			any = true
		case strings.HasPrefix(line, "id:"):
			ev.ID = strings.TrimSpace(strings.TrimPrefix(line, "id:"))
			any = true
		case strings.HasPrefix(line, "retry:"):
			ev.Retry = strings.TrimSpace(strings.TrimPrefix(line, "retry:"))
			any = true
		case strings.HasPrefix(line, ":"):
			// comment line, ignored
		}
	}
	if !any {
		return ev, false
	}
	ev.Data = strings.Join(dataLines, "\n")
	return ev, true
}
