package config

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/alnah/go-mdext/internal/yamlutil"
)

// ErrInvalidStack indicates a gamut stack value with the wrong shape.
var ErrInvalidStack = errors.New("invalid gamut stack")

// StackEntry is one stage of a gamut stack.
// Stage is kept as decoded (usually a string); it is validated when parsed
// into a stage reference, so a bad key fails as a stage-name error.
type StackEntry struct {
	Stage    any
	Priority int
}

// Name renders the stage for logs and lookups.
func (e StackEntry) Name() string {
	if s, ok := e.Stage.(string); ok {
		return s
	}
	return fmt.Sprint(e.Stage)
}

// Stack is an ordered list of stages with priorities, in declaration order.
type Stack []StackEntry

// Sorted returns the stages by ascending priority.
// Ties keep declaration order.
func (s Stack) Sorted() Stack {
	out := slices.Clone(s)
	slices.SortStableFunc(out, func(a, b StackEntry) int {
		return cmp.Compare(a.Priority, b.Priority)
	})
	return out
}

// Names returns the stage names in declaration order.
func (s Stack) Names() []string {
	out := make([]string, len(s))
	for i, e := range s {
		out[i] = e.Name()
	}
	return out
}

func (s Stack) merge(more Stack) Stack {
	out := slices.Clone(s)
	for _, e := range more {
		idx := slices.IndexFunc(out, func(x StackEntry) bool { return x.Name() == e.Name() })
		if idx >= 0 {
			out[idx].Priority = e.Priority
			continue
		}
		out = append(out, e)
	}
	return out
}

func (s Stack) ordered() yamlutil.Ordered {
	out := make(yamlutil.Ordered, len(s))
	for i, e := range s {
		out[i] = yamlutil.Item{Key: e.Stage, Value: e.Priority}
	}
	return out
}

// StackFromValue decodes a stack from a registry value: a Stack, an ordered
// YAML mapping of stage to priority, or a plain list of stages (priorities
// then follow list position).
func StackFromValue(v any) (Stack, error) {
	switch val := v.(type) {
	case Stack:
		return slices.Clone(val), nil
	case yamlutil.Ordered:
		out := make(Stack, 0, len(val))
		for _, it := range val {
			p, ok := toInt(it.Value)
			if !ok {
				return nil, fmt.Errorf("%w: priority of %q is %T, want integer", ErrInvalidStack, it.KeyString(), it.Value)
			}
			out = append(out, StackEntry{Stage: it.Key, Priority: p})
		}
		return out, nil
	case []any:
		out := make(Stack, len(val))
		for i, stage := range val {
			out[i] = StackEntry{Stage: stage, Priority: i}
		}
		return out, nil
	case []string:
		out := make(Stack, len(val))
		for i, stage := range val {
			out[i] = StackEntry{Stage: stage, Priority: i}
		}
		return out, nil
	case nil:
		return Stack{}, nil
	default:
		return nil, fmt.Errorf("%w: got %T", ErrInvalidStack, v)
	}
}
