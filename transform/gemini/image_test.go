package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taipm/go-llm-gateway/types"
)

func TestTransformImage_ImagenDefaultsAndWarnings(t *testing.T) {
	seed := int64(42)
	req := &types.ImageGenerationRequest{
		Prompt: "a cat",
		Count:  1,
		Size:   "1024x1024",
		Seed:   &seed,
	}

	body, warnings, err := ImageTransformer{}.TransformImage(req)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"instances":  []map[string]any{{"prompt": "a cat"}},
		"parameters": map[string]any{"sampleCount": 1, "aspectRatio": "1:1"},
	}, body)
	assert.Len(t, warnings, 2)
}

func TestTransformImage_RequiresPrompt(t *testing.T) {
	_, _, err := ImageTransformer{}.TransformImage(&types.ImageGenerationRequest{})
	require.Error(t, err)
}
