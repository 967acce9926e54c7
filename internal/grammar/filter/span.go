package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/alnah/go-mdext/internal/config"
	"github.com/alnah/go-mdext/internal/gamut"
	"github.com/alnah/go-mdext/internal/grammar/tool"
	"github.com/alnah/go-mdext/internal/hashing"
)

var (
	linkDefinition = regexp.MustCompile(`(?m)^[ ]{0,3}\[([^\]\^#\n][^\]\n]*)\]:[ \t]*\n?[ \t]*<?([^\s>]+)>?[ \t]*(?:\n?[ \t]*(?:"([^\n]*)"|'([^\n]*)'|\(([^\n]*)\))[ \t]*)?(?:\n+|\z)`)
	autoLink       = regexp.MustCompile(`<((?:https?|ftp)://[^'">\s]+)>`)
	shortcutLink   = regexp.MustCompile(`\[([^\[\]\n]+)\]`)
)

// Anchor handles links and images.
//
// The strip method removes reference definitions ("[id]: url "title"")
// and records them in the cross-reference tables. The default method
// renders reference links, inline links, shortcut references, inline
// images and <scheme://...> autolinks. Rendered tags are protected.
type Anchor struct {
	base
}

// Transform implements gamut.Filter.
func (a *Anchor) Transform(text string) (string, error) {
	if !strings.ContainsAny(text, "[<") {
		return text, nil
	}

	nb, err := a.fragment(config.KeyNestedBracketsRE)
	if err != nil {
		return "", err
	}
	np, err := a.fragment(config.KeyNestedParenthesisRE)
	if err != nil {
		return "", err
	}
	image, err := compileCached(`!\[(` + nb + `)\]\([ \t]*<?(` + np + `)>?[ \t]*(?:"([^"\n]*)"|'([^'\n]*)')?[ \t]*\)`)
	if err != nil {
		return "", err
	}
	reference, err := compileCached(`\[(` + nb + `)\][ ]?(?:\n[ ]*)?\[([^\]]*)\]`)
	if err != nil {
		return "", err
	}
	inline, err := compileCached(`\[(` + nb + `)\]\([ \t]*<?(` + np + `)>?[ \t]*(?:"([^"\n]*)"|'([^'\n]*)')?[ \t]*\)`)
	if err != nil {
		return "", err
	}

	text, err = replaceAll(image, text, func(g []string) (string, error) {
		return a.image(g[1], g[2], firstNonEmpty(g[3], g[4])), nil
	})
	if err != nil {
		return "", err
	}
	text, err = replaceAll(reference, text, func(g []string) (string, error) {
		id := g[2]
		if id == "" {
			id = g[1]
		}
		return a.reference(g[0], g[1], id)
	})
	if err != nil {
		return "", err
	}
	text, err = replaceAll(inline, text, func(g []string) (string, error) {
		return a.link(g[1], g[2], firstNonEmpty(g[3], g[4]), "")
	})
	if err != nil {
		return "", err
	}
	text, err = replaceAll(shortcutLink, text, func(g []string) (string, error) {
		return a.reference(g[0], g[1], g[1])
	})
	if err != nil {
		return "", err
	}
	return autoLink.ReplaceAllStringFunc(text, func(m string) string {
		url := m[1 : len(m)-1]
		tag := fmt.Sprintf(`<a href="%s">%s</a>`, encodeAttribute(url), tool.EncodeCode(url))
		return a.hashes().HashPart(tag, hashing.Part)
	}), nil
}

// Method implements gamut.MethodSet.
func (a *Anchor) Method(name string) (gamut.StageFunc, bool) {
	if name == "strip" {
		return a.strip, true
	}
	return nil, false
}

func (a *Anchor) strip(text string) (string, error) {
	refs := a.rt.References()
	return linkDefinition.ReplaceAllStringFunc(text, func(m string) string {
		g := linkDefinition.FindStringSubmatch(m)
		id := strings.ToLower(g[1])
		refs.URLs[id] = g[2]
		if title := firstNonEmpty(g[3], g[4], g[5]); title != "" {
			refs.Titles[id] = title
		}
		return ""
	}), nil
}

// reference renders a link to a recorded definition, or returns whole
// unchanged when id is unknown.
func (a *Anchor) reference(whole, label, id string) (string, error) {
	id = strings.ToLower(strings.Join(strings.Fields(id), " "))
	refs := a.rt.References()
	url, ok := refs.URLs[id]
	if !ok {
		return whole, nil
	}
	return a.link(label, url, refs.Titles[id], refs.Attributes[id])
}

func (a *Anchor) link(label, url, title, attrs string) (string, error) {
	label, err := a.span(label)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, `<a href="%s"`, encodeAttribute(a.rt.Hashes().Unhash(url)))
	if title != "" {
		fmt.Fprintf(&b, ` title="%s"`, encodeAttribute(title))
	}
	if attrs != "" {
		b.WriteString(" " + attrs)
	}
	b.WriteString(">" + label + "</a>")
	return a.hashes().HashPart(b.String(), hashing.Part), nil
}

func (a *Anchor) image(alt, src, title string) string {
	tag := fmt.Sprintf(`<img src="%s" alt="%s"`, encodeAttribute(a.rt.Hashes().Unhash(src)), encodeAttribute(alt))
	if title != "" {
		tag += fmt.Sprintf(` title="%s"`, encodeAttribute(title))
	}
	return a.hashes().HashPart(tag+" />", hashing.Part)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

var (
	strongStar = regexp.MustCompile(`(?s)\*\*([^\s*](?:.*?[^\s*])?)\*\*`)
	strongLine = regexp.MustCompile(`(?s)\b__([^\s_](?:.*?[^\s_])?)__\b`)
	emStar     = regexp.MustCompile(`\*([^\s*](?:[^*]*?[^\s*])?)\*`)
	emLine     = regexp.MustCompile(`\b_([^\s_](?:[^_]*?[^\s_])?)_\b`)
)

// Emphasis renders **strong**, __strong__, *em* and _em_. Underscores
// inside words are left alone.
type Emphasis struct {
	base
}

// Transform implements gamut.Filter.
func (e *Emphasis) Transform(text string) (string, error) {
	if !strings.ContainsAny(text, "*_") {
		return text, nil
	}
	text = strongStar.ReplaceAllString(text, "<strong>$1</strong>")
	text = strongLine.ReplaceAllString(text, "<strong>$1</strong>")
	text = emStar.ReplaceAllString(text, "<em>$1</em>")
	text = emLine.ReplaceAllString(text, "<em>$1</em>")
	return text, nil
}

// Escape protects backslash-escaped characters from the following span
// rules. The set of escapable characters is escaped_characters.
type Escape struct {
	base
}

// Transform implements gamut.Filter.
func (e *Escape) Transform(text string) (string, error) {
	if !strings.Contains(text, `\`) {
		return text, nil
	}
	class, err := e.fragment(config.KeyEscapedCharactersRE)
	if err != nil {
		return "", err
	}
	re, err := compileCached(`\\(` + class + `)`)
	if err != nil {
		return "", err
	}
	return re.ReplaceAllStringFunc(text, func(m string) string {
		return e.hashes().HashPart(tool.EncodeCode(m[1:]), hashing.Part)
	}), nil
}
