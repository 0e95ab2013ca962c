package toolloop

import (
	"context"
	"fmt"

	"github.com/taipm/go-llm-gateway/types"
)

// ChatFunc performs one chat completion; an Executor.Complete bound to a
// resolved provider spec satisfies this after adaptation by the caller.
type ChatFunc func(ctx context.Context, req *types.ChatRequest) (*types.ChatResponse, error)

// defaultMaxSteps is the hard cap enforced even when the caller supplies no
// explicit stop-condition, so a misbehaving model can't loop forever.
const defaultMaxSteps = 10

// Options configures one Run.
type Options struct {
	Resolver   Resolver
	Approve    ApprovalFunc
	Parallel   bool
	MaxWorkers int

	// Stop is consulted after every step; the loop also stops once MaxSteps
	// is reached regardless of Stop.
	Stop StopCondition
	// MaxSteps overrides defaultMaxSteps when positive.
	MaxSteps int
}

// Run drives the tool-calling loop starting from req, mutating a working
// copy of req.Messages as it appends assistant and tool-result turns. It
// returns every completed Step, the last of which holds the final response.
func Run(ctx context.Context, chat ChatFunc, req *types.ChatRequest, opts Options) ([]Step, error) {
	maxSteps := opts.MaxSteps
	if maxSteps <= 0 {
		maxSteps = defaultMaxSteps
	}

	working := *req
	working.Messages = append([]types.Message(nil), req.Messages...)

	var steps []Step
	for i := 0; i < maxSteps; i++ {
		resp, err := chat(ctx, &working)
		if err != nil {
			return steps, err
		}

		sent := working
		step := Step{Request: &sent, Response: resp}

		if len(resp.ToolCalls) == 0 {
			steps = append(steps, step)
			return steps, nil
		}

		assistantMsg := types.Message{Role: types.RoleAssistant, Content: resp.Content, ToolCalls: resp.ToolCalls}
		working.Messages = append(working.Messages, assistantMsg)

		var results []ToolResult
		if opts.Parallel && len(resp.ToolCalls) > 1 {
			results = ExecuteParallel(ctx, resp.ToolCalls, opts.Resolver, opts.Approve, opts.MaxWorkers)
		} else {
			results = ExecuteSequential(ctx, resp.ToolCalls, opts.Resolver, opts.Approve)
		}
		step.Results = results
		working.Messages = append(working.Messages, ToMessages(results)...)

		steps = append(steps, step)
		if opts.Stop != nil && opts.Stop(steps) {
			return steps, nil
		}
	}

	return steps, fmt.Errorf("toolloop: max steps (%d) exceeded without satisfying a stop-condition", maxSteps)
}
