package config

import (
	"fmt"
	"maps"
	"regexp"
	"slices"

	"github.com/alnah/go-mdext/internal/yamlutil"
)

// stackKeyPattern matches the reserved names under which gamut stacks live.
var stackKeyPattern = regexp.MustCompile(`^[a-zA-Z0-9_]+_gamut$`)

// IsStackKey reports whether key names a gamut stack.
func IsStackKey(key string) bool {
	return stackKeyPattern.MatchString(key)
}

// Registry is a key/value store of tunables and gamut stacks.
// Reading an unknown key is never an error: callers supply a default.
// A Registry is owned by one engine and is not safe for concurrent use.
type Registry struct {
	values map[string]any
	order  []string
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{values: make(map[string]any)}
}

// Get returns the value stored under key, or def when absent.
func (r *Registry) Get(key string, def any) any {
	if v, ok := r.values[key]; ok {
		return v
	}
	return def
}

// Has reports whether key is set.
func (r *Registry) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

// Keys returns the keys in insertion order.
func (r *Registry) Keys() []string {
	return slices.Clone(r.order)
}

// Set stores value under key, replacing any previous value.
func (r *Registry) Set(key string, value any) {
	if _, ok := r.values[key]; !ok {
		r.order = append(r.order, key)
	}
	r.values[key] = normalize(value)
}

// Delete removes key.
func (r *Registry) Delete(key string) {
	if _, ok := r.values[key]; !ok {
		return
	}
	delete(r.values, key)
	r.order = slices.DeleteFunc(r.order, func(k string) bool { return k == key })
}

// Add merges value into the existing entry instead of replacing it:
// lists append, strings concatenate, numbers sum, mappings and stacks merge.
// On a missing key, or when kinds do not match, Add behaves like Set.
func (r *Registry) Add(key string, value any) {
	existing, ok := r.values[key]
	if !ok {
		r.Set(key, value)
		return
	}
	r.values[key] = merge(existing, normalize(value))
}

// Merge sets every top-level entry of o, in order.
func (r *Registry) Merge(o yamlutil.Ordered) {
	for _, it := range o {
		r.Set(it.KeyString(), it.Value)
	}
}

// Clone returns a copy whose top-level entries can be changed independently.
func (r *Registry) Clone() *Registry {
	c := &Registry{
		values: make(map[string]any, len(r.values)),
		order:  slices.Clone(r.order),
	}
	for k, v := range r.values {
		c.values[k] = cloneValue(v)
	}
	return c
}

// Ordered exports the registry in insertion order, for display.
func (r *Registry) Ordered() yamlutil.Ordered {
	out := make(yamlutil.Ordered, 0, len(r.order))
	for _, k := range r.order {
		v := r.values[k]
		if s, ok := v.(Stack); ok {
			v = s.ordered()
		}
		out = append(out, yamlutil.Item{Key: k, Value: v})
	}
	return out
}

// Int returns key as an int, or def when absent or not numeric.
func (r *Registry) Int(key string, def int) int {
	if n, ok := toInt(r.values[key]); ok {
		return n
	}
	return def
}

// String returns key as a string, or def when absent or not a string.
func (r *Registry) String(key, def string) string {
	if s, ok := r.values[key].(string); ok {
		return s
	}
	return def
}

// Bool returns key as a bool, or def when absent or not a bool.
func (r *Registry) Bool(key string, def bool) bool {
	if b, ok := r.values[key].(bool); ok {
		return b
	}
	return def
}

// Strings returns key as a list of strings. A single string is a one-item list.
func (r *Registry) Strings(key string) []string {
	switch v := r.values[key].(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []string:
		return slices.Clone(v)
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			out = append(out, fmt.Sprint(e))
		}
		return out
	default:
		return nil
	}
}

// StringMap returns key as a string map. Non-string values are formatted.
func (r *Registry) StringMap(key string) map[string]string {
	out := make(map[string]string)
	switch v := r.values[key].(type) {
	case yamlutil.Ordered:
		for _, it := range v {
			out[it.KeyString()] = fmt.Sprint(it.Value)
		}
	case map[string]string:
		maps.Copy(out, v)
	case map[string]any:
		for k, e := range v {
			out[k] = fmt.Sprint(e)
		}
	}
	return out
}

// StackNames returns the keys holding gamut stacks, in insertion order.
func (r *Registry) StackNames() []string {
	var names []string
	for _, k := range r.order {
		if IsStackKey(k) {
			names = append(names, k)
		}
	}
	return names
}

// Stack decodes the gamut stack stored under name.
// ok is false when the key is absent.
func (r *Registry) Stack(name string) (stack Stack, ok bool, err error) {
	v, found := r.values[name]
	if !found {
		return nil, false, nil
	}
	stack, err = StackFromValue(v)
	if err != nil {
		return nil, true, fmt.Errorf("%s: %w", name, err)
	}
	return stack, true, nil
}

func normalize(v any) any {
	if n, ok := toInt(v); ok {
		return n
	}
	switch val := v.(type) {
	case float32:
		return float64(val)
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out
	}
	return v
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	default:
		return 0, false
	}
}

func merge(existing, value any) any {
	switch cur := existing.(type) {
	case []any:
		if more, ok := value.([]any); ok {
			return slices.Concat(cur, more)
		}
		return append(slices.Clone(cur), value)
	case string:
		if s, ok := value.(string); ok {
			return cur + s
		}
	case int:
		switch n := value.(type) {
		case int:
			return cur + n
		case float64:
			return float64(cur) + n
		}
	case float64:
		switch n := value.(type) {
		case int:
			return cur + float64(n)
		case float64:
			return cur + n
		}
	case Stack:
		if more, err := StackFromValue(value); err == nil {
			return cur.merge(more)
		}
	case yamlutil.Ordered:
		if more, ok := value.(yamlutil.Ordered); ok {
			return mergeOrdered(cur, more)
		}
		if more, ok := value.(Stack); ok {
			if base, err := StackFromValue(cur); err == nil {
				return base.merge(more)
			}
		}
	case map[string]any:
		if more, ok := value.(map[string]any); ok {
			out := maps.Clone(cur)
			maps.Copy(out, more)
			return out
		}
	case map[string]string:
		if more, ok := value.(map[string]string); ok {
			out := maps.Clone(cur)
			maps.Copy(out, more)
			return out
		}
	}
	return value
}

func mergeOrdered(base, more yamlutil.Ordered) yamlutil.Ordered {
	out := slices.Clone(base)
	for _, it := range more {
		idx := slices.IndexFunc(out, func(e yamlutil.Item) bool { return e.Key == it.Key })
		if idx >= 0 {
			out[idx].Value = it.Value
			continue
		}
		out = append(out, it)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case []any:
		return slices.Clone(val)
	case yamlutil.Ordered:
		return slices.Clone(val)
	case Stack:
		return slices.Clone(val)
	case map[string]any:
		return maps.Clone(val)
	case map[string]string:
		return maps.Clone(val)
	default:
		return v
	}
}
