package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taipm/go-llm-gateway/llmerrors"
	"github.com/taipm/go-llm-gateway/types"
)

func TestModerationTransformer_Basic(t *testing.T) {
	body, err := ModerationTransformer{}.TransformModeration(&types.ModerationRequest{
		Model: "omni-moderation-latest",
		Input: []string{"hello"},
	})
	require.NoError(t, err)
	assert.Equal(t, "omni-moderation-latest", body["model"])
	assert.Equal(t, []string{"hello"}, body["input"])
}

func TestModerationTransformer_MissingInput(t *testing.T) {
	_, err := ModerationTransformer{}.TransformModeration(&types.ModerationRequest{Model: "m"})
	require.Error(t, err)
	assert.True(t, llmerrors.IsInvalidInput(err))
}

func TestParseModeration_FlaggedAndScores(t *testing.T) {
	body := []byte(`{"results":[{"flagged":true,"categories":{"violence":true,"hate":false},"category_scores":{"violence":0.9,"hate":0.1}}]}`)
	resp, err := ParseModeration(body)
	require.NoError(t, err)
	assert.True(t, resp.Flagged)
	assert.True(t, resp.Categories["violence"])
	assert.False(t, resp.Categories["hate"])
	assert.InDelta(t, 0.9, resp.Scores["violence"], 1e-9)
}

func TestParseModeration_NotFlagged(t *testing.T) {
	body := []byte(`{"results":[{"flagged":false,"categories":{},"category_scores":{}}]}`)
	resp, err := ParseModeration(body)
	require.NoError(t, err)
	assert.False(t, resp.Flagged)
}
