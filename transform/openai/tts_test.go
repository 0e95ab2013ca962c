package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taipm/go-llm-gateway/llmerrors"
	"github.com/taipm/go-llm-gateway/types"
)

func TestTTSTransformer_Basic(t *testing.T) {
	body, err := TTSTransformer{}.TransformTTS(&types.TTSRequest{
		Model:  "tts-1",
		Input:  "hello world",
		Voice:  "alloy",
		Format: "mp3",
	})
	require.NoError(t, err)
	assert.Equal(t, "tts-1", body["model"])
	assert.Equal(t, "hello world", body["input"])
	assert.Equal(t, "alloy", body["voice"])
	assert.Equal(t, "mp3", body["response_format"])
}

func TestTTSTransformer_MissingInput(t *testing.T) {
	_, err := TTSTransformer{}.TransformTTS(&types.TTSRequest{Model: "tts-1"})
	require.Error(t, err)
	assert.True(t, llmerrors.IsInvalidInput(err))
}

func TestParseTTS_WrapsRawBytes(t *testing.T) {
	resp, err := ParseTTS([]byte("fake-audio-bytes"), "audio/mpeg")
	require.NoError(t, err)
	assert.Equal(t, []byte("fake-audio-bytes"), resp.AudioData)
	assert.Equal(t, "audio/mpeg", resp.MimeType)
}

func TestParseTTS_DefaultsContentType(t *testing.T) {
	resp, err := ParseTTS([]byte("x"), "")
	require.NoError(t, err)
	assert.Equal(t, "audio/mpeg", resp.MimeType)
}
