package agent

import (
	"context"
	"fmt"
	"sort"

	"github.com/meetspot-ai/meetspot/provider"
)

// Tool is one capability the model may invoke. Execute receives the raw
// JSON arguments from the model and returns a JSON (or plain text)
// result for the transcript.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]interface{}
	Execute(ctx context.Context, args string) (string, error)
}

// Registry is a closed set of tools fixed at construction. Dispatch
// outside the set is an error, never a silent no-op.
type Registry struct {
	tools map[string]Tool
	order []string
}

// NewRegistry validates and indexes the given tools: every tool needs a
// non-empty unique name, and every name in required must be present.
func NewRegistry(tools []Tool, required []string) (*Registry, error) {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		name := t.Name()
		if name == "" {
			return nil, fmt.Errorf("tool with empty name")
		}
		if _, dup := r.tools[name]; dup {
			return nil, fmt.Errorf("duplicate tool name %q", name)
		}
		r.tools[name] = t
		r.order = append(r.order, name)
	}
	sort.Strings(r.order)
	for _, name := range required {
		if _, ok := r.tools[name]; !ok {
			return nil, fmt.Errorf("required tool %q not registered", name)
		}
	}
	return r, nil
}

// Get returns the named tool.
func (r *Registry) Get(name string) (Tool, error) {
	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool %q", name)
	}
	return t, nil
}

// Specs returns the tool catalog for the model, in name order.
func (r *Registry) Specs() []provider.ToolSpec {
	out := make([]provider.ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		out = append(out, provider.ToolSpec{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return out
}
