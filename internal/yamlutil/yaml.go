// Package yamlutil wraps YAML parsing to isolate the external dependency.
// Configuration order is significant (gamut stacks break priority ties by
// declaration order), so mappings decode into ordered slices, never Go maps.
package yamlutil

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
)

// MaxInputSize limits YAML input to prevent memory exhaustion (default 1MB).
var MaxInputSize = 1 << 20

var (
	ErrNilData        = errors.New("yamlutil: nil or empty data")
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
	ErrNotMapping     = errors.New("yamlutil: document is not a mapping")
)

// Item is one key/value pair of an ordered mapping.
// Key keeps the decoded scalar type; use KeyString for display.
type Item struct {
	Key   any
	Value any
}

// KeyString renders the key as text.
func (it Item) KeyString() string {
	if s, ok := it.Key.(string); ok {
		return s
	}
	return fmt.Sprint(it.Key)
}

// Ordered is a mapping that keeps document order.
// Nested mappings are themselves Ordered.
type Ordered []Item

// Get returns the value stored under key.
func (o Ordered) Get(key string) (any, bool) {
	for _, it := range o {
		if it.KeyString() == key {
			return it.Value, true
		}
	}
	return nil, false
}

func validateInput(data []byte, v any) error {
	if len(data) == 0 {
		return ErrNilData
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	if v == nil {
		return ErrNilDestination
	}
	return nil
}

// UnmarshalOrdered decodes a top-level mapping keeping key order at every level.
// Keys that are not strings (e.g. `42: 1`) keep their scalar type so stage
// names can be rejected downstream.
func UnmarshalOrdered(data []byte) (Ordered, error) {
	var raw yaml.MapSlice
	if err := validateInput(data, &raw); err != nil {
		return nil, err
	}
	if err := yaml.UnmarshalWithOptions(data, &raw, yaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("yamlutil: %w", err)
	}
	if raw == nil {
		return nil, ErrNotMapping
	}
	out := convertMapSlice(raw)

	// The decoder renders every mapping key as a string; the syntax tree
	// still knows which keys were numbers or booleans.
	file, err := parser.ParseBytes(data, 0)
	if err != nil {
		return nil, fmt.Errorf("yamlutil: %w", err)
	}
	if len(file.Docs) > 0 {
		restoreKeys(out, file.Docs[0].Body)
	}
	return out, nil
}

// restoreKeys walks o alongside its mapping node and gives non-string
// scalar keys back their type. Mappings reshaped by merge keys or aliases
// no longer line up with the tree and are left as decoded.
func restoreKeys(o Ordered, n ast.Node) {
	values := mappingValues(n)
	if len(values) != len(o) {
		return
	}
	for i, mv := range values {
		if key, ok := scalarKey(mv.Key); ok {
			o[i].Key = key
		}
		restoreValue(o[i].Value, mv.Value)
	}
}

func restoreValue(v any, n ast.Node) {
	switch val := v.(type) {
	case Ordered:
		restoreKeys(val, n)
	case []any:
		seq, ok := unwrapNode(n).(*ast.SequenceNode)
		if !ok || len(seq.Values) != len(val) {
			return
		}
		for i := range val {
			restoreValue(val[i], seq.Values[i])
		}
	}
}

func mappingValues(n ast.Node) []*ast.MappingValueNode {
	switch m := unwrapNode(n).(type) {
	case *ast.MappingNode:
		return m.Values
	case *ast.MappingValueNode:
		return []*ast.MappingValueNode{m}
	}
	return nil
}

func scalarKey(n ast.Node) (any, bool) {
	switch k := unwrapNode(n).(type) {
	case *ast.IntegerNode:
		return k.Value, true
	case *ast.FloatNode:
		return k.Value, true
	case *ast.BoolNode:
		return k.Value, true
	}
	return nil, false
}

// unwrapNode strips tags and anchors off n.
func unwrapNode(n ast.Node) ast.Node {
	for {
		switch t := n.(type) {
		case *ast.TagNode:
			n = t.Value
		case *ast.AnchorNode:
			n = t.Value
		default:
			return n
		}
	}
}

func convertMapSlice(ms yaml.MapSlice) Ordered {
	out := make(Ordered, 0, len(ms))
	for _, it := range ms {
		out = append(out, Item{Key: it.Key, Value: convertValue(it.Value)})
	}
	return out
}

func convertValue(v any) any {
	switch val := v.(type) {
	case yaml.MapSlice:
		return convertMapSlice(val)
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = convertValue(e)
		}
		return out
	default:
		return v
	}
}

// MarshalOrdered encodes o back to YAML in its original key order.
func MarshalOrdered(o Ordered) ([]byte, error) {
	result, err := yaml.Marshal(toMapSlice(o))
	if err != nil {
		return nil, fmt.Errorf("yamlutil: %w", err)
	}
	return result, nil
}

func toMapSlice(o Ordered) yaml.MapSlice {
	ms := make(yaml.MapSlice, 0, len(o))
	for _, it := range o {
		ms = append(ms, yaml.MapItem{Key: it.Key, Value: fromValue(it.Value)})
	}
	return ms
}

func fromValue(v any) any {
	switch val := v.(type) {
	case Ordered:
		return toMapSlice(val)
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = fromValue(e)
		}
		return out
	default:
		return v
	}
}
