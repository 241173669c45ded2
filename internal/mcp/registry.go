package mcp

import (
	"context"
	"fmt"
	"strings"
)

// Param declares one tool parameter: its JSON type, whether callers
// must supply it, the allowed values, and the default applied when it
// is absent. The same declaration feeds both the tools/list schema and
// the tools/call argument validation.
type Param struct {
	Name        string
	Type        string
	Description string
	Required    bool
	Enum        []string
	Default     interface{}
}

type ToolHandler func(ctx context.Context, args map[string]interface{}) (string, error)

type ToolDescriptor struct {
	Name        string
	Description string
	Params      []Param
	Handler     ToolHandler
}

// Registry holds the tool descriptors, built once at startup and never
// mutated afterwards. List order follows registration order.
type Registry struct {
	order []string
	tools map[string]*ToolDescriptor
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*ToolDescriptor)}
}

func (r *Registry) Register(d *ToolDescriptor) {
	if _, ok := r.tools[d.Name]; !ok {
		r.order = append(r.order, d.Name)
	}
	r.tools[d.Name] = d
}

func (r *Registry) Lookup(name string) (*ToolDescriptor, bool) {
	d, ok := r.tools[name]
	return d, ok
}

func (r *Registry) List() []Tool {
	tools := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		d := r.tools[name]
		tools = append(tools, Tool{
			Name:        d.Name,
			Description: d.Description,
			InputSchema: d.InputSchema(),
		})
	}
	return tools
}

func (d *ToolDescriptor) InputSchema() InputSchema {
	props := make(map[string]Property, len(d.Params))
	var required []string
	for _, p := range d.Params {
		props[p.Name] = Property{
			Type:        p.Type,
			Description: p.Description,
			Enum:        p.Enum,
			Default:     p.Default,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return InputSchema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}

// ValidateArgs checks the caller's arguments against the declared
// parameters and returns a fresh map with defaults filled in.
// Arguments not declared by the tool are dropped.
func (d *ToolDescriptor) ValidateArgs(args map[string]interface{}) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(d.Params))
	for _, p := range d.Params {
		v, ok := args[p.Name]
		if !ok || v == nil {
			if p.Required {
				return nil, fmt.Errorf("missing required argument: %s", p.Name)
			}
			if p.Default != nil {
				out[p.Name] = p.Default
			}
			continue
		}

		switch p.Type {
		case "string":
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("argument %s must be a string", p.Name)
			}
			if len(p.Enum) > 0 && !containsString(p.Enum, s) {
				return nil, fmt.Errorf("argument %s must be one of: %s", p.Name, strings.Join(p.Enum, ", "))
			}
			out[p.Name] = s
		case "number":
			n, ok := v.(float64)
			if !ok {
				return nil, fmt.Errorf("argument %s must be a number", p.Name)
			}
			out[p.Name] = n
		default:
			out[p.Name] = v
		}
	}
	return out, nil
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
