package toolloop

import (
	"context"
	"fmt"
	"sync"

	"github.com/taipm/go-llm-gateway/types"
)

// ToolFunc resolves one tool call's arguments (raw JSON) into its output
// text, or an error if the call could not be satisfied.
type ToolFunc func(ctx context.Context, argumentsJSON string) (string, error)

// Resolver maps a tool name to the function that executes it.
type Resolver map[string]ToolFunc

// ToolResult is one resolved tool invocation, ready to fold back into the
// conversation as a tool-role message.
type ToolResult struct {
	CallID   string
	ToolName string
	Output   string
	Err      error
}

// ApprovalFunc is consulted before a tool call executes; returning false
// rejects the call without running it, surfaced to the model as an error
// result instead.
type ApprovalFunc func(ctx context.Context, call types.ToolCall) bool

// ExecuteSequential runs each call in order, stopping at the first one the
// resolver or approval callback rejects only insofar as it records the
// error in that call's ToolResult — later calls still run, mirroring the
// teacher's executeToolsSequential which continues building messages for
// calls that follow a failure rather than aborting the whole round.
func ExecuteSequential(ctx context.Context, calls []types.ToolCall, resolver Resolver, approve ApprovalFunc) []ToolResult {
	results := make([]ToolResult, len(calls))
	for i, call := range calls {
		results[i] = executeOne(ctx, call, resolver, approve)
	}
	return results
}

// ExecuteParallel runs calls concurrently, bounded by maxWorkers (0 means
// unbounded up to len(calls)), grounded in the teacher's
// executeToolsParallel worker-pool pattern (agent/tool_parallel.go).
func ExecuteParallel(ctx context.Context, calls []types.ToolCall, resolver Resolver, approve ApprovalFunc, maxWorkers int) []ToolResult {
	if len(calls) <= 1 {
		return ExecuteSequential(ctx, calls, resolver, approve)
	}
	if maxWorkers <= 0 || maxWorkers > len(calls) {
		maxWorkers = len(calls)
	}

	results := make([]ToolResult, len(calls))
	sem := make(chan struct{}, maxWorkers)
	var wg sync.WaitGroup

	for i, call := range calls {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, call types.ToolCall) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = executeOne(ctx, call, resolver, approve)
		}(i, call)
	}
	wg.Wait()
	return results
}

func executeOne(ctx context.Context, call types.ToolCall, resolver Resolver, approve ApprovalFunc) ToolResult {
	if approve != nil && !approve(ctx, call) {
		return ToolResult{CallID: call.ID, ToolName: call.Name, Err: fmt.Errorf("tool call %q rejected by approval callback", call.Name)}
	}
	fn, ok := resolver[call.Name]
	if !ok {
		return ToolResult{CallID: call.ID, ToolName: call.Name, Err: fmt.Errorf("no resolver registered for tool %q", call.Name)}
	}
	output, err := fn(ctx, call.Arguments)
	if err != nil {
		return ToolResult{CallID: call.ID, ToolName: call.Name, Err: err}
	}
	return ToolResult{CallID: call.ID, ToolName: call.Name, Output: output}
}

// ToMessages converts resolved tool results into tool-role messages ready
// to append to the conversation, rendering a failed call's error as its
// output text so the model can see and react to the failure.
func ToMessages(results []ToolResult) []types.Message {
	msgs := make([]types.Message, len(results))
	for i, r := range results {
		output := r.Output
		if r.Err != nil {
			output = "error: " + r.Err.Error()
		}
		msgs[i] = types.ToolResult(r.CallID, r.ToolName, output)
	}
	return msgs
}
