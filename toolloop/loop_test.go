package toolloop

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taipm/go-llm-gateway/types"
)

func TestRun_StopsOnceNoToolCallsAreRequested(t *testing.T) {
	calls := 0
	chat := func(ctx context.Context, req *types.ChatRequest) (*types.ChatResponse, error) {
		calls++
		if calls == 1 {
			return &types.ChatResponse{
				Content:   "let me check",
				ToolCalls: []types.ToolCall{{ID: "call_1", Name: "get_weather", Arguments: `{"city":"Hanoi"}`}},
			}, nil
		}
		return &types.ChatResponse{Content: "it's sunny"}, nil
	}

	resolver := Resolver{"get_weather": func(ctx context.Context, args string) (string, error) {
		return `{"tempC":30}`, nil
	}}

	steps, err := Run(context.Background(), chat, &types.ChatRequest{
		Messages: []types.Message{types.User("what's the weather in Hanoi?")},
	}, Options{Resolver: resolver})

	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, "it's sunny", steps[len(steps)-1].Response.Content)
	assert.Equal(t, 2, calls)

	// The tool-result message must carry the resolved output back upstream.
	lastReq := steps[len(steps)-1].Request
	var sawToolMsg bool
	for _, m := range lastReq.Messages {
		if m.Role == types.RoleTool && m.Content == `{"tempC":30}` {
			sawToolMsg = true
		}
	}
	assert.True(t, sawToolMsg)
}

func TestRun_EnforcesMaxStepsHardCap(t *testing.T) {
	chat := func(ctx context.Context, req *types.ChatRequest) (*types.ChatResponse, error) {
		return &types.ChatResponse{ToolCalls: []types.ToolCall{{ID: "x", Name: "noop", Arguments: "{}"}}}, nil
	}
	resolver := Resolver{"noop": func(ctx context.Context, args string) (string, error) { return "ok", nil }}

	steps, err := Run(context.Background(), chat, &types.ChatRequest{
		Messages: []types.Message{types.User("go forever")},
	}, Options{Resolver: resolver, MaxSteps: 3})

	require.Error(t, err)
	assert.Len(t, steps, 3)
}

func TestRun_UnresolvedToolSurfacesAsErrorMessageNotAbort(t *testing.T) {
	calls := 0
	chat := func(ctx context.Context, req *types.ChatRequest) (*types.ChatResponse, error) {
		calls++
		if calls == 1 {
			return &types.ChatResponse{
				ToolCalls: []types.ToolCall{{ID: "call_1", Name: "unknown_tool", Arguments: "{}"}},
			}, nil
		}
		return &types.ChatResponse{Content: "done"}, nil
	}

	steps, err := Run(context.Background(), chat, &types.ChatRequest{
		Messages: []types.Message{types.User("hi")},
	}, Options{Resolver: Resolver{}})

	require.NoError(t, err)
	require.Len(t, steps, 2)
	require.Len(t, steps[0].Results, 1)
	assert.Error(t, steps[0].Results[0].Err)
}

func TestStopCondition_AllOfAndAnyOf(t *testing.T) {
	steps := []Step{{Response: &types.ChatResponse{Content: "hi"}}}

	assert.True(t, AnyOf(HasTextResponse(), StepCountIs(99))(steps))
	assert.False(t, AllOf(HasTextResponse(), StepCountIs(99))(steps))
	assert.True(t, AllOf(HasTextResponse(), StepCountIs(1))(steps))
}

func TestExecuteParallel_BoundedByMaxWorkers(t *testing.T) {
	calls := []types.ToolCall{
		{ID: "1", Name: "echo", Arguments: "a"},
		{ID: "2", Name: "echo", Arguments: "b"},
		{ID: "3", Name: "echo", Arguments: "c"},
	}
	resolver := Resolver{"echo": func(ctx context.Context, args string) (string, error) { return args, nil }}

	results := ExecuteParallel(context.Background(), calls, resolver, nil, 2)
	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, calls[i].Arguments, r.Output)
	}
}

func TestApprovalRejectionSurfacesAsErrorResult(t *testing.T) {
	calls := []types.ToolCall{{ID: "1", Name: "danger", Arguments: "{}"}}
	resolver := Resolver{"danger": func(ctx context.Context, args string) (string, error) { return "", errors.New("should not run") }}
	approve := func(ctx context.Context, call types.ToolCall) bool { return false }

	results := ExecuteSequential(context.Background(), calls, resolver, approve)
	require.Len(t, results, 1)
	assert.Error(t, results[0].Err)
}
