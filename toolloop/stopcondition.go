// Package toolloop drives the multi-step function-calling loop: send a
// request, execute any requested tools, append their results, and repeat
// until a stop-condition holds or the step cap is hit. Grounded in the
// teacher's askWithToolExecution loop (agent/builder_execution.go) and its
// parallel/sequential tool executors (agent/tool_parallel.go), generalized
// from a single OpenAI-shaped Builder onto the unified types.ChatRequest.
package toolloop

import "github.com/taipm/go-llm-gateway/types"

// Step is one completed round of the loop: the request sent and the
// response received, including any tool calls and their resolved outputs.
type Step struct {
	Request  *types.ChatRequest
	Response *types.ChatResponse
	Results  []ToolResult
}

// StopCondition inspects the run so far and reports whether the loop should
// stop. steps includes the just-completed step.
type StopCondition func(steps []Step) bool

// StepCountIs stops once the loop has completed at least n steps.
func StepCountIs(n int) StopCondition {
	return func(steps []Step) bool { return len(steps) >= n }
}

// HasNoToolCalls stops once the most recent response requested no tools,
// i.e. the model considers the task done.
func HasNoToolCalls() StopCondition {
	return func(steps []Step) bool {
		if len(steps) == 0 {
			return false
		}
		return len(steps[len(steps)-1].Response.ToolCalls) == 0
	}
}

// HasTextResponse stops once the most recent response carries non-empty
// text content.
func HasTextResponse() StopCondition {
	return func(steps []Step) bool {
		if len(steps) == 0 {
			return false
		}
		return steps[len(steps)-1].Response.Content != ""
	}
}

// HasToolCall stops once any step requested a call to the named tool.
func HasToolCall(name string) StopCondition {
	return func(steps []Step) bool {
		for _, s := range steps {
			for _, tc := range s.Response.ToolCalls {
				if tc.Name == name {
					return true
				}
			}
		}
		return false
	}
}

// HasToolResult stops once any step produced a result for the named tool.
func HasToolResult(name string) StopCondition {
	return func(steps []Step) bool {
		for _, s := range steps {
			for _, r := range s.Results {
				if r.ToolName == name {
					return true
				}
			}
		}
		return false
	}
}

// CustomCondition adapts an arbitrary predicate into a StopCondition.
func CustomCondition(fn func(steps []Step) bool) StopCondition {
	return fn
}

// AllOf stops only once every condition holds.
func AllOf(conditions ...StopCondition) StopCondition {
	return func(steps []Step) bool {
		for _, c := range conditions {
			if !c(steps) {
				return false
			}
		}
		return true
	}
}

// AnyOf stops as soon as any condition holds.
func AnyOf(conditions ...StopCondition) StopCondition {
	return func(steps []Step) bool {
		for _, c := range conditions {
			if c(steps) {
				return true
			}
		}
		return false
	}
}
