package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taipm/go-llm-gateway/types"
)

func TestTransformImage_Basic(t *testing.T) {
	body, warnings, err := ImageTransformer{}.TransformImage(&types.ImageGenerationRequest{
		Model:  "dall-e-3",
		Prompt: "a cat",
		Size:   "1024x1024",
	})
	require.NoError(t, err)
	assert.Equal(t, "dall-e-3", body["model"])
	assert.Equal(t, "a cat", body["prompt"])
	assert.Equal(t, 1, body["n"])
	assert.Equal(t, "1024x1024", body["size"])
	assert.Empty(t, warnings)
}

func TestTransformImage_SeedProducesWarning(t *testing.T) {
	seed := int64(7)
	_, warnings, err := ImageTransformer{}.TransformImage(&types.ImageGenerationRequest{
		Model:  "dall-e-3",
		Prompt: "a cat",
		Seed:   &seed,
	})
	require.NoError(t, err)
	assert.Len(t, warnings, 1)
}

func TestTransformImage_RequiresPrompt(t *testing.T) {
	_, _, err := ImageTransformer{}.TransformImage(&types.ImageGenerationRequest{Model: "dall-e-3"})
	require.Error(t, err)
}

func TestParseImage_PrefersBase64OverURL(t *testing.T) {
	resp, err := ParseImage([]byte(`{"data":[{"b64_json":"abc123"},{"url":"https://example.com/x.png"}]}`))
	require.NoError(t, err)
	require.Len(t, resp.Images, 2)
	assert.Equal(t, "abc123", resp.Images[0].Data)
	assert.Equal(t, "https://example.com/x.png", resp.Images[1].URL)
}
