package gamut

import (
	"fmt"
	"slices"
	"strings"

	"github.com/alnah/go-mdext/internal/config"
)

// RefKind is the shape of a parsed stage name.
type RefKind int

const (
	// StackRef names another gamut stack: "<name>_gamut".
	StackRef RefKind = iota + 1
	// FilterRef names a filter: "filter:<Class>[:<method>]".
	FilterRef
	// ToolRef names a tool: "tool:<Name>[:<method>]".
	ToolRef
	// DirectRef names any registered rule by qualified name: "<Qualified>[:<method>]".
	DirectRef
)

func (k RefKind) String() string {
	switch k {
	case StackRef:
		return "stack"
	case FilterRef:
		return "filter"
	case ToolRef:
		return "tool"
	case DirectRef:
		return "direct"
	default:
		return fmt.Sprintf("RefKind(%d)", int(k))
	}
}

// Reference is a parsed stage name.
type Reference struct {
	Kind   RefKind
	Raw    string
	Alias  string // alias used by filter and tool references
	Class  string // stack name, filter class, tool name or qualified class
	Method string // empty means the rule's default method
}

// Aliases are the prefixes that select filter and tool references.
type Aliases struct {
	Filter []string
	Tool   []string
}

// DefaultAliases are used when the configuration names none.
var DefaultAliases = Aliases{
	Filter: []string{"filter"},
	Tool:   []string{"tool", "tools"},
}

// AliasesFrom reads the alias lists from cfg, falling back to DefaultAliases.
func AliasesFrom(cfg *config.Registry) Aliases {
	a := Aliases{
		Filter: cfg.Strings(config.KeyFilterAliases),
		Tool:   cfg.Strings(config.KeyToolAliases),
	}
	if len(a.Filter) == 0 {
		a.Filter = DefaultAliases.Filter
	}
	if len(a.Tool) == 0 {
		a.Tool = DefaultAliases.Tool
	}
	return a
}

// ParseReference parses a stage name. raw comes straight from configuration,
// so anything that is not a non-empty string is rejected.
func ParseReference(raw any, aliases Aliases) (Reference, error) {
	name, ok := raw.(string)
	if !ok {
		return Reference{}, fmt.Errorf("%w: %v (%T) is not a string", ErrInvalidStageName, raw, raw)
	}
	if strings.TrimSpace(name) == "" || strings.ContainsAny(name, " \t\r\n") {
		return Reference{}, fmt.Errorf("%w: %q", ErrInvalidStageName, name)
	}

	parts := strings.Split(name, ":")
	if len(parts) > 3 || slices.Contains(parts, "") {
		return Reference{}, fmt.Errorf("%w: %q", ErrInvalidStageName, name)
	}

	if len(parts) == 1 && strings.HasSuffix(name, "_gamut") {
		if !config.IsStackKey(name) {
			return Reference{}, fmt.Errorf("%w: malformed stack name %q", ErrInvalidStageName, name)
		}
		return Reference{Kind: StackRef, Raw: name, Class: name}, nil
	}

	head := parts[0]
	switch {
	case len(parts) > 1 && slices.Contains(aliases.Filter, head):
		return aliasedRef(FilterRef, name, parts), nil
	case len(parts) > 1 && slices.Contains(aliases.Tool, head):
		return aliasedRef(ToolRef, name, parts), nil
	case len(parts) == 3:
		return Reference{}, fmt.Errorf("%w: %q has too many parts for a class reference", ErrInvalidStageName, name)
	case len(parts) == 2:
		return Reference{Kind: DirectRef, Raw: name, Class: parts[0], Method: parts[1]}, nil
	default:
		return Reference{Kind: DirectRef, Raw: name, Class: name}, nil
	}
}

func aliasedRef(kind RefKind, raw string, parts []string) Reference {
	ref := Reference{Kind: kind, Raw: raw, Alias: parts[0], Class: parts[1]}
	if len(parts) == 3 {
		ref.Method = parts[2]
	}
	return ref
}

// Qualified returns the registry name the reference resolves to.
// Stack references have none.
func (r Reference) Qualified(filterNamespace, toolNamespace string) string {
	switch r.Kind {
	case FilterRef:
		return Qualify(filterNamespace, r.Class)
	case ToolRef:
		return Qualify(toolNamespace, r.Class)
	case DirectRef:
		return r.Class
	default:
		return ""
	}
}

// Qualify joins a namespace and a class name.
func Qualify(namespace, class string) string {
	if namespace == "" {
		return class
	}
	return namespace + "." + class
}

// ShortName strips the namespace from a qualified name.
func ShortName(qualified string) string {
	if i := strings.LastIndex(qualified, "."); i >= 0 {
		return qualified[i+1:]
	}
	return qualified
}
