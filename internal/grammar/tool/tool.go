// Package tool holds the text utilities that stages reference as
// "tool:<Name>". Tools are small, mostly stateless functions; the few that
// need configuration or sub-stages read them from their Runtime.
package tool

import (
	"github.com/alnah/go-mdext/internal/config"
	"github.com/alnah/go-mdext/internal/gamut"
)

// Func adapts a plain string function to the Tool contract.
type Func func(text string) string

// Run implements gamut.Tool.
func (f Func) Run(text string) (string, error) {
	return f(text), nil
}

// Compile-time interface implementation checks.
var (
	_ gamut.Tool      = Func(nil)
	_ gamut.Tool      = (*Detab)(nil)
	_ gamut.Tool      = (*Outdent)(nil)
	_ gamut.Tool      = (*EncodeAmpAndAngle)(nil)
	_ gamut.Tool      = (*HTML)(nil)
	_ gamut.MethodSet = (*HTML)(nil)
	_ gamut.Tool      = (*RebuildParagraph)(nil)
)

// Factories returns the factory of every tool, keyed by tool name.
func Factories() map[string]gamut.Factory {
	return map[string]gamut.Factory{
		"RemoveUtf8Marker":      func(gamut.Runtime) any { return Func(RemoveUTF8Marker) },
		"StandardizeLineEnding": func(gamut.Runtime) any { return Func(StandardizeLineEnding) },
		"AppendEndingNewLines":  func(gamut.Runtime) any { return Func(AppendEndingNewLines) },
		"StripSpacedLines":      func(gamut.Runtime) any { return Func(StripSpacedLines) },
		"EncodeCode":            func(gamut.Runtime) any { return Func(EncodeCode) },
		"Detab":                 func(rt gamut.Runtime) any { return &Detab{cfg: rt.Config()} },
		"Outdent":               func(rt gamut.Runtime) any { return &Outdent{cfg: rt.Config()} },
		"EncodeAmpAndAngle":     func(rt gamut.Runtime) any { return &EncodeAmpAndAngle{cfg: rt.Config()} },
		"HTML":                  func(rt gamut.Runtime) any { return &HTML{rt: rt} },
		"RebuildParagraph":      func(rt gamut.Runtime) any { return &RebuildParagraph{rt: rt} },
	}
}

// Register adds every tool to reg under namespace.
// An empty namespace selects gamut.DefaultToolNamespace.
func Register(reg *gamut.Registry, namespace string) {
	if namespace == "" {
		namespace = gamut.DefaultToolNamespace
	}
	for name, f := range Factories() {
		reg.Register(gamut.Qualify(namespace, name), f)
	}
}

func tabWidth(cfg *config.Registry) int {
	n := cfg.Int(config.KeyTabWidth, 4)
	if n < 1 || n > config.MaxTabWidth {
		return 4
	}
	return n
}
