package toolloop

import (
	"context"

	"github.com/taipm/go-llm-gateway/types"
)

// StreamFunc opens one streaming chat turn, returning a pull source of
// unified events. An Executor.Stream bound to a resolved provider spec
// satisfies this after adaptation by the caller.
type StreamFunc func(ctx context.Context, req *types.ChatRequest) (EventSource, error)

// EventSource is the minimal pull interface toolloop needs from a stream;
// cancel.CancellableStream[types.ChatStreamEvent] satisfies it directly.
type EventSource interface {
	Next() (types.ChatStreamEvent, bool, error)
	Close() error
}

// StreamRun drives the tool-calling loop over a sequence of provider
// streams, presenting them to the caller as one logical stream: each
// underlying stream's events are forwarded to emit verbatim, and once a
// step's stream ends with tool calls, those are resolved and a fresh
// stream is opened for the next step — pausing and resuming the logical
// stream across however many provider round trips the loop takes.
func StreamRun(ctx context.Context, open StreamFunc, req *types.ChatRequest, opts Options, emit func(types.ChatStreamEvent)) ([]Step, error) {
	maxSteps := opts.MaxSteps
	if maxSteps <= 0 {
		maxSteps = defaultMaxSteps
	}

	working := *req
	working.Messages = append([]types.Message(nil), req.Messages...)

	var steps []Step
	for i := 0; i < maxSteps; i++ {
		resp, err := runOneStream(ctx, open, &working, emit)
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
	return steps, nil
}

// runOneStream drains a single provider stream, forwarding every event to
// emit and returning the terminal ChatResponse carried by the stream-end
// event.
func runOneStream(ctx context.Context, open StreamFunc, req *types.ChatRequest, emit func(types.ChatStreamEvent)) (*types.ChatResponse, error) {
	src, err := open(ctx, req)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	var final *types.ChatResponse
	for {
		ev, ok, err := src.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		emit(ev)
		if ev.Kind == types.EventStreamEnd {
			final = ev.Response
		}
	}
	if final == nil {
		final = &types.ChatResponse{}
	}
	return final, nil
}
