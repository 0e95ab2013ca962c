package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taipm/go-llm-gateway/types"
)

func terminal(resp *types.ChatResponse) Handler {
	return func(ctx context.Context, req *types.ChatRequest) (*types.ChatResponse, error) {
		return resp, nil
	}
}

func TestDefaultParamsMiddleware_FillsOnlyUnsetFields(t *testing.T) {
	mw := DefaultParamsMiddleware(0.7, 1024)
	req := &types.ChatRequest{}
	_, err := mw(terminal(&types.ChatResponse{}))(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, req.Common.Temperature)
	assert.Equal(t, 0.7, *req.Common.Temperature)
	require.NotNil(t, req.Common.MaxTokens)
	assert.Equal(t, 1024, *req.Common.MaxTokens)
}

func TestDefaultParamsMiddleware_DoesNotSetTemperatureWhenTopPIsSet(t *testing.T) {
	topP := 0.9
	req := &types.ChatRequest{Common: types.CommonParams{TopP: &topP}}
	mw := DefaultParamsMiddleware(0.7, 1024)
	_, err := mw(terminal(&types.ChatResponse{}))(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, req.Common.Temperature)
	assert.Equal(t, 0.9, *req.Common.TopP)
}

func TestDefaultParamsMiddleware_DoesNotOverrideCallerValues(t *testing.T) {
	custom := 0.2
	req := &types.ChatRequest{Common: types.CommonParams{Temperature: &custom}}
	mw := DefaultParamsMiddleware(0.7, 1024)
	_, err := mw(terminal(&types.ChatResponse{}))(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 0.2, *req.Common.Temperature)
}

func TestClampTopPMiddleware_ClampsOutOfRangeValues(t *testing.T) {
	tooHigh := 1.5
	req := &types.ChatRequest{Common: types.CommonParams{TopP: &tooHigh}}
	mw := ClampTopPMiddleware()
	_, err := mw(terminal(&types.ChatResponse{}))(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1.0, *req.Common.TopP)

	tooLow := -0.3
	req = &types.ChatRequest{Common: types.CommonParams{TopP: &tooLow}}
	_, err = mw(terminal(&types.ChatResponse{}))(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 0.0, *req.Common.TopP)
}

func TestExtractReasoningMiddleware_SplitsThinkBlock(t *testing.T) {
	mw := ExtractReasoningMiddleware()
	resp := &types.ChatResponse{Content: "<think>step one</think>the answer is 42"}
	out, err := mw(terminal(resp))(context.Background(), &types.ChatRequest{})
	require.NoError(t, err)
	assert.Equal(t, "step one", out.Reasoning)
	assert.Equal(t, "the answer is 42", out.Content)
}

func TestExtractReasoningMiddleware_LeavesPlainContentUntouched(t *testing.T) {
	mw := ExtractReasoningMiddleware()
	resp := &types.ChatResponse{Content: "just an answer"}
	out, err := mw(terminal(resp))(context.Background(), &types.ChatRequest{})
	require.NoError(t, err)
	assert.Empty(t, out.Reasoning)
	assert.Equal(t, "just an answer", out.Content)
}

func TestChain_RunsFirstMiddlewareOutermost(t *testing.T) {
	var order []string
	record := func(name string) Middleware {
		return func(next Handler) Handler {
			return func(ctx context.Context, req *types.ChatRequest) (*types.ChatResponse, error) {
				order = append(order, name+":before")
				resp, err := next(ctx, req)
				order = append(order, name+":after")
				return resp, err
			}
		}
	}

	chain := Chain(record("a"), record("b"))
	_, err := chain(terminal(&types.ChatResponse{}))(context.Background(), &types.ChatRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a:before", "b:before", "b:after", "a:after"}, order)
}
