package confirm

import (
	"fmt"
	"maps"
	"sort"
	"strings"
)

// Request is a tool invocation awaiting dispatch. It is immutable once built.
type Request struct {
	toolName   string
	parameters map[string]any
}

// NewRequest builds a request. The parameter map is copied.
func NewRequest(toolName string, parameters map[string]any) Request {
	return Request{
		toolName:   toolName,
		parameters: maps.Clone(parameters),
	}
}

// ToolName returns the name of the tool to invoke.
func (r Request) ToolName() string {
	return r.toolName
}

// Parameters returns a copy of the invocation parameters.
func (r Request) Parameters() map[string]any {
	return maps.Clone(r.parameters)
}

// Summarize renders the request as a single line for a human approver.
// Parameters are listed in key order so the same request always reads the same.
func Summarize(r Request) string {
	keys := make([]string, 0, len(r.parameters))
	for k := range r.parameters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, r.parameters[k]))
	}
	return fmt.Sprintf("%s(%s)", r.toolName, strings.Join(parts, ", "))
}
