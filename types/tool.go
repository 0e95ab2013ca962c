package types

// Tool is either a caller-supplied Function tool or a provider-hosted tool
// (web_search, file_search, code_execution, computer_use). Exactly one of
// Function/ProviderDefined is set.
type Tool struct {
	Function        *FunctionTool
	ProviderDefined *ProviderDefinedTool
}

// FunctionTool describes a callable function the model may invoke.
type FunctionTool struct {
	Name        string
	Description string

	// Parameters is a JSON-Schema object describing the function's
	// arguments. Kept as a raw map so it survives round-tripping through
	// provider-specific encodings untouched.
	Parameters map[string]any

	// Strict requests provider-side schema enforcement where supported
	// (e.g. OpenAI's strict function calling).
	Strict bool

	// InputExamples are optional few-shot argument examples. No request
	// transformer in this module sends them to a provider.
	InputExamples []map[string]any

	// ProviderOptions holds per-provider tool options, keyed by lowercased
	// provider id. No request transformer in this module reads it.
	ProviderOptions map[string]any
}

// ProviderDefinedTool references a tool the provider executes itself.
type ProviderDefinedTool struct {
	ID     string
	Name   string
	Config map[string]any
}

// ToolChoiceKind selects how the model is allowed to use tools.
type ToolChoiceKind int

const (
	ToolChoiceAuto ToolChoiceKind = iota
	ToolChoiceRequired
	ToolChoiceNone
	ToolChoiceNamed
)

// ToolChoice controls tool usage for a request. Name is only meaningful
// when Kind == ToolChoiceNamed.
type ToolChoice struct {
	Kind ToolChoiceKind
	Name string
}

func ToolChoiceFor(name string) ToolChoice {
	return ToolChoice{Kind: ToolChoiceNamed, Name: name}
}

func NewFunctionTool(name, description string) *Tool {
	return &Tool{Function: &FunctionTool{
		Name:        name,
		Description: description,
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
			"required":   []string{},
		},
	}}
}

// AddParameter adds one property to the function's JSON-Schema parameters.
func (t *Tool) AddParameter(name, paramType, description string, required bool) *Tool {
	if t.Function == nil {
		return t
	}
	props, _ := t.Function.Parameters["properties"].(map[string]any)
	if props == nil {
		props = map[string]any{}
		t.Function.Parameters["properties"] = props
	}
	props[name] = map[string]any{"type": paramType, "description": description}
	if required {
		reqs, _ := t.Function.Parameters["required"].([]string)
		t.Function.Parameters["required"] = append(reqs, name)
	}
	return t
}
