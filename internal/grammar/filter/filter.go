// Package filter holds the grammar rules that stages reference as
// "filter:<Class>". Filters rewrite block or span text, protect what they
// produce through the hash store and call other stages for nested content.
package filter

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/alnah/go-mdext/internal/config"
	"github.com/alnah/go-mdext/internal/gamut"
	"github.com/alnah/go-mdext/internal/grammar/tool"
	"github.com/alnah/go-mdext/internal/hashing"
)

// Compile-time interface implementation checks.
var (
	_ gamut.Filter       = (*MetaData)(nil)
	_ gamut.MethodSet    = (*MetaData)(nil)
	_ gamut.SetupHook    = (*MetaData)(nil)
	_ gamut.Filter       = (*HTMLBlock)(nil)
	_ gamut.Filter       = (*FencedCodeBlock)(nil)
	_ gamut.Filter       = (*CodeSpan)(nil)
	_ gamut.Filter       = (*Header)(nil)
	_ gamut.Filter       = (*HorizontalRule)(nil)
	_ gamut.Filter       = (*BlockQuote)(nil)
	_ gamut.Filter       = (*Anchor)(nil)
	_ gamut.MethodSet    = (*Anchor)(nil)
	_ gamut.Filter       = (*Emphasis)(nil)
	_ gamut.Filter       = (*Escape)(nil)
	_ gamut.Filter       = (*Note)(nil)
	_ gamut.MethodSet    = (*Note)(nil)
	_ gamut.SetupHook    = (*Note)(nil)
	_ gamut.TeardownHook = (*Note)(nil)
	_ gamut.Filter       = (*Paragraph)(nil)
)

// Factories returns the factory of every filter, keyed by class name.
func Factories() map[string]gamut.Factory {
	return map[string]gamut.Factory{
		"MetaData":        func(rt gamut.Runtime) any { return &MetaData{base: base{rt}} },
		"HTMLBlock":       func(rt gamut.Runtime) any { return &HTMLBlock{base: base{rt}} },
		"FencedCodeBlock": func(rt gamut.Runtime) any { return &FencedCodeBlock{base: base{rt}} },
		"CodeSpan":        func(rt gamut.Runtime) any { return &CodeSpan{base: base{rt}} },
		"Header":          func(rt gamut.Runtime) any { return &Header{base: base{rt}} },
		"HorizontalRule":  func(rt gamut.Runtime) any { return &HorizontalRule{base: base{rt}} },
		"BlockQuote":      func(rt gamut.Runtime) any { return &BlockQuote{base: base{rt}} },
		"Anchor":          func(rt gamut.Runtime) any { return &Anchor{base: base{rt}} },
		"Emphasis":        func(rt gamut.Runtime) any { return &Emphasis{base: base{rt}} },
		"Escape":          func(rt gamut.Runtime) any { return &Escape{base: base{rt}} },
		"Note":            func(rt gamut.Runtime) any { return NewNote(rt) },
		"Paragraph":       func(rt gamut.Runtime) any { return &Paragraph{base: base{rt}} },
	}
}

// Register adds every filter to reg under namespace.
// An empty namespace selects gamut.DefaultFilterNamespace.
func Register(reg *gamut.Registry, namespace string) {
	if namespace == "" {
		namespace = gamut.DefaultFilterNamespace
	}
	for class, f := range Factories() {
		reg.Register(gamut.Qualify(namespace, class), f)
	}
}

// base gives filters short access to their Runtime.
type base struct {
	rt gamut.Runtime
}

func (b base) hashes() *hashing.Store { return b.rt.Hashes() }

func (b base) cfg() *config.Registry { return b.rt.Config() }

func (b base) span(text string) (string, error) {
	return b.rt.RunStage(config.SpanGamut, text)
}

func (b base) block(text string) (string, error) {
	return b.rt.RunStage(config.BlockGamut, text)
}

// hashBlock protects html and keeps it on its own block.
func (b base) hashBlock(html string) string {
	return "\n\n" + b.hashes().HashBlock(html) + "\n\n"
}

// replaceAll is regexp.ReplaceAllStringSubmatchFunc with an error return,
// so replacement callbacks can run stages.
func replaceAll(re *regexp.Regexp, text string, fn func(groups []string) (string, error)) (string, error) {
	matches := re.FindAllStringSubmatchIndex(text, -1)
	if matches == nil {
		return text, nil
	}
	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, m := range matches {
		groups := make([]string, len(m)/2)
		for i := range groups {
			if m[2*i] >= 0 {
				groups[i] = text[m[2*i]:m[2*i+1]]
			}
		}
		out, err := fn(groups)
		if err != nil {
			return "", err
		}
		b.WriteString(text[last:m[0]])
		b.WriteString(out)
		last = m[1]
	}
	b.WriteString(text[last:])
	return b.String(), nil
}

// patterns caches regexes built from configuration fragments.
var patterns sync.Map // string -> *regexp.Regexp

func compileCached(expr string) (*regexp.Regexp, error) {
	if re, ok := patterns.Load(expr); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	patterns.Store(expr, re)
	return re, nil
}

// fragment returns a derived regex fragment, failing when the
// configuration was not prepared.
func (b base) fragment(key string) (string, error) {
	s := b.cfg().String(key, "")
	if s == "" {
		return "", fmt.Errorf("%w: %s", gamut.ErrConfigurationMissing, key)
	}
	return s, nil
}

// encodeAttribute escapes text for a double-quoted attribute value.
func encodeAttribute(s string) string {
	s = tool.EncodeAmpsAndAngles(s, false)
	return strings.NewReplacer(`"`, "&quot;", "<", "&lt;", ">", "&gt;").Replace(s)
}

var idUnsafe = regexp.MustCompile(`[^\w:.-]+`)

// htmlID turns s into a usable id attribute value.
func htmlID(s string) string {
	return strings.Trim(idUnsafe.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-"), "-")
}
