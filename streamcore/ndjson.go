package streamcore

import "strings"

// NDJSONFramer splits a byte stream into newline-delimited JSON lines, used
// by Ollama's chat/generate streaming endpoints (spec §4.2).
type NDJSONFramer struct {
	buf strings.Builder
}

// Feed appends chunk and returns any complete lines now available. Blank
// lines are skipped.
func (f *NDJSONFramer) Feed(chunk []byte) []string {
	f.buf.Write(chunk)
	content := f.buf.String()

	var lines []string
	for {
		idx := strings.IndexByte(content, '\n')
		if idx < 0 {
			break
		}
		line := strings.TrimRight(content[:idx], "\r")
		content = content[idx+1:]
		if line != "" {
			lines = append(lines, line)
		}
	}

	f.buf.Reset()
	f.buf.WriteString(content)
	return lines
}

// Flush returns a trailing line that never received its newline.
func (f *NDJSONFramer) Flush() string {
	line := strings.TrimRight(f.buf.String(), "\r\n")
	f.buf.Reset()
	return line
}
