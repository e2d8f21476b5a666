package confirm

import "sort"

// Policy is the set of tool names that require human approval.
// It has no mutating methods; a Policy can be shared freely once built.
type Policy struct {
	gated map[string]struct{}
}

// NewPolicy builds a policy from tool names. Empty names are ignored and
// duplicates collapse.
func NewPolicy(toolNames ...string) *Policy {
	gated := make(map[string]struct{}, len(toolNames))
	for _, name := range toolNames {
		if name == "" {
			continue
		}
		gated[name] = struct{}{}
	}
	return &Policy{gated: gated}
}

// RequiresConfirmation reports whether toolName is gated.
// Unknown and empty names are not gated. A nil policy gates nothing.
func (p *Policy) RequiresConfirmation(toolName string) bool {
	if p == nil {
		return false
	}
	_, ok := p.gated[toolName]
	return ok
}

// Tools returns the gated tool names in sorted order.
func (p *Policy) Tools() []string {
	if p == nil {
		return nil
	}
	names := make([]string, 0, len(p.gated))
	for name := range p.gated {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of gated tools.
func (p *Policy) Len() int {
	if p == nil {
		return 0
	}
	return len(p.gated)
}
