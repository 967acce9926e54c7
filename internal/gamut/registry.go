package gamut

import (
	"maps"
	"slices"
)

// Namespaces the built-in rules are registered under.
const (
	DefaultFilterNamespace = "mdext/filter"
	DefaultToolNamespace   = "mdext/tool"
)

// Registry maps qualified rule names to factories.
// It is filled once at engine construction and only read afterwards.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds or replaces the factory for a qualified name.
func (r *Registry) Register(qualified string, f Factory) {
	r.factories[qualified] = f
}

// RegisterFilter registers a filter class under the default filter namespace.
func (r *Registry) RegisterFilter(class string, f Factory) {
	r.Register(Qualify(DefaultFilterNamespace, class), f)
}

// RegisterTool registers a tool under the default tool namespace.
func (r *Registry) RegisterTool(name string, f Factory) {
	r.Register(Qualify(DefaultToolNamespace, name), f)
}

// Lookup returns the factory for a qualified name.
func (r *Registry) Lookup(qualified string) (Factory, bool) {
	f, ok := r.factories[qualified]
	return f, ok
}

// Names returns every registered name, sorted.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.factories))
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	return len(r.factories)
}

// Clone returns an independent copy.
func (r *Registry) Clone() *Registry {
	return &Registry{factories: maps.Clone(r.factories)}
}
