package streamcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNDJSONFramer_SplitsCompleteLines(t *testing.T) {
	var f NDJSONFramer
	lines := f.Feed([]byte("{\"a\":1}\n{\"b\":2}\n"))
	require.Len(t, lines, 2)
	assert.Equal(t, `{"a":1}`, lines[0])
	assert.Equal(t, `{"b":2}`, lines[1])
}

func TestNDJSONFramer_HoldsPartialLineAcrossFeeds(t *testing.T) {
	var f NDJSONFramer
	lines := f.Feed([]byte(`{"a":1`))
	assert.Empty(t, lines)

	lines = f.Feed([]byte("}\n"))
	require.Len(t, lines, 1)
	assert.Equal(t, `{"a":1}`, lines[0])
}

func TestNDJSONFramer_SkipsBlankLines(t *testing.T) {
	var f NDJSONFramer
	lines := f.Feed([]byte("\n\n{\"x\":1}\n"))
	require.Len(t, lines, 1)
}

func TestNDJSONFramer_FlushReturnsTrailingLine(t *testing.T) {
	var f NDJSONFramer
	f.Feed([]byte(`{"a":1}`))
	assert.Equal(t, `{"a":1}`, f.Flush())
}
