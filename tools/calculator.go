// Package tools provides built-in tools usable with the toolloop
// orchestrator, grounded in the teacher's agent/tools package.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/Knetic/govaluate"
	"gonum.org/v1/gonum/stat"

	"github.com/taipm/go-llm-gateway/toolloop"
	"github.com/taipm/go-llm-gateway/types"
)

// NewCalculatorTool returns the tool descriptor and its resolver function
// for a calculator supporting expression evaluation (govaluate) and
// summary statistics (gonum/stat): the worked example the tool-loop
// orchestrator is exercised against.
func NewCalculatorTool() (*types.Tool, toolloop.ToolFunc) {
	tool := types.NewFunctionTool("calc", "Evaluate a math expression or compute summary statistics over a list of numbers").
		AddParameter("operation", "string", "One of: evaluate, statistics", true).
		AddParameter("expression", "string", "Expression for evaluate, e.g. '2 * (3 + 4) + sqrt(16)'", false).
		AddParameter("stat_type", "string", "One of: mean, median, stdev, variance, min, max, sum", false)

	props := tool.Function.Parameters["properties"].(map[string]any)
	props["numbers"] = map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "number"},
	}

	return tool, calculatorHandler
}

func calculatorHandler(_ context.Context, argumentsJSON string) (string, error) {
	var params struct {
		Operation  string    `json:"operation"`
		Expression string    `json:"expression"`
		StatType   string    `json:"stat_type"`
		Numbers    []float64 `json:"numbers"`
	}
	if err := json.Unmarshal([]byte(argumentsJSON), &params); err != nil {
		return "", fmt.Errorf("calc: invalid arguments JSON: %w", err)
	}

	switch params.Operation {
	case "evaluate":
		return evaluate(params.Expression)
	case "statistics":
		return statistics(params.Numbers, params.StatType)
	default:
		return "", fmt.Errorf("calc: unknown operation %q", params.Operation)
	}
}

func evaluate(expression string) (string, error) {
	if expression == "" {
		return "", fmt.Errorf("calc: expression is required")
	}
	expr, err := govaluate.NewEvaluableExpressionWithFunctions(expression, calculatorFunctions)
	if err != nil {
		return "", fmt.Errorf("calc: invalid expression: %w", err)
	}
	result, err := expr.Evaluate(nil)
	if err != nil {
		return "", fmt.Errorf("calc: evaluation failed: %w", err)
	}
	switch v := result.(type) {
	case float64:
		return fmt.Sprintf("%.6f", v), nil
	case int:
		return fmt.Sprintf("%.6f", float64(v)), nil
	default:
		return "", fmt.Errorf("calc: unexpected result type %T", result)
	}
}

var calculatorFunctions = map[string]govaluate.ExpressionFunction{
	"sqrt":  func(a ...interface{}) (interface{}, error) { return math.Sqrt(a[0].(float64)), nil },
	"pow":   func(a ...interface{}) (interface{}, error) { return math.Pow(a[0].(float64), a[1].(float64)), nil },
	"sin":   func(a ...interface{}) (interface{}, error) { return math.Sin(a[0].(float64)), nil },
	"cos":   func(a ...interface{}) (interface{}, error) { return math.Cos(a[0].(float64)), nil },
	"log":   func(a ...interface{}) (interface{}, error) { return math.Log10(a[0].(float64)), nil },
	"ln":    func(a ...interface{}) (interface{}, error) { return math.Log(a[0].(float64)), nil },
	"abs":   func(a ...interface{}) (interface{}, error) { return math.Abs(a[0].(float64)), nil },
	"ceil":  func(a ...interface{}) (interface{}, error) { return math.Ceil(a[0].(float64)), nil },
	"floor": func(a ...interface{}) (interface{}, error) { return math.Floor(a[0].(float64)), nil },
	"round": func(a ...interface{}) (interface{}, error) { return math.Round(a[0].(float64)), nil },
}

func statistics(numbers []float64, statType string) (string, error) {
	if len(numbers) == 0 {
		return "", fmt.Errorf("calc: numbers is required")
	}
	var result float64
	switch statType {
	case "mean":
		result = stat.Mean(numbers, nil)
	case "median":
		sorted := append([]float64(nil), numbers...)
		sort.Float64s(sorted)
		result = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	case "stdev":
		result = stat.StdDev(numbers, nil)
	case "variance":
		result = stat.Variance(numbers, nil)
	case "min":
		result = numbers[0]
		for _, n := range numbers {
			if n < result {
				result = n
			}
		}
	case "max":
		result = numbers[0]
		for _, n := range numbers {
			if n > result {
				result = n
			}
		}
	case "sum":
		for _, n := range numbers {
			result += n
		}
	default:
		return "", fmt.Errorf("calc: unknown stat_type %q", statType)
	}
	return fmt.Sprintf("%.6f", result), nil
}
