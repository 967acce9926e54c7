package filter

import (
	"regexp"
	"strings"

	"golang.org/x/net/html/atom"
)

// blockTags are the elements that start a raw HTML block.
var blockTags = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Audio: true,
	atom.Blockquote: true, atom.Canvas: true, atom.Dd: true, atom.Del: true,
	atom.Details: true, atom.Div: true, atom.Dl: true, atom.Fieldset: true,
	atom.Figure: true, atom.Footer: true, atom.Form: true, atom.H1: true,
	atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Header: true, atom.Hr: true, atom.Iframe: true, atom.Ins: true,
	atom.Math: true, atom.Nav: true, atom.Noscript: true, atom.Ol: true,
	atom.P: true, atom.Pre: true, atom.Script: true, atom.Section: true,
	atom.Style: true, atom.Svg: true, atom.Table: true, atom.Ul: true,
	atom.Video: true,
}

// voidBlockTags never have a closing tag.
var voidBlockTags = map[atom.Atom]bool{atom.Hr: true}

var openTag = regexp.MustCompile(`^<([A-Za-z][A-Za-z0-9]*)\b[^>]*?(/?)>`)

// HTMLBlock protects block-level raw HTML written at the start of a line,
// up to its matching closing tag, so no Markdown rule rewrites it.
// HTML comments starting a line are protected the same way. Fenced code
// regions are left for FencedCodeBlock.
type HTMLBlock struct {
	base
}

// Transform implements gamut.Filter.
func (h *HTMLBlock) Transform(text string) (string, error) {
	if !strings.Contains(text, "<") {
		return text, nil
	}

	lines := strings.SplitAfter(text, "\n")
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(lines); {
		if m := fenceOpen.FindStringSubmatch(lines[i]); m != nil {
			if end := fenceClose(lines, i+1, m[1]); end >= 0 {
				for _, line := range lines[i : end+1] {
					b.WriteString(line)
				}
				i = end + 1
				continue
			}
		}

		end := blockEnd(lines, i)
		if end < 0 {
			b.WriteString(lines[i])
			i++
			continue
		}
		block := strings.Join(lines[i:end+1], "")
		b.WriteString(h.hashBlock(strings.TrimRight(block, "\n")))
		i = end + 1
	}
	return b.String(), nil
}

// blockEnd returns the index of the last line of the HTML block starting at
// lines[start], or -1 when no block starts there.
func blockEnd(lines []string, start int) int {
	first := lines[start]
	if strings.HasPrefix(first, "<!--") {
		for j := start; j < len(lines); j++ {
			if strings.Contains(lines[j], "-->") {
				return j
			}
		}
		return -1
	}

	m := openTag.FindStringSubmatch(first)
	if m == nil {
		return -1
	}
	name := strings.ToLower(m[1])
	tag := atom.Lookup([]byte(name))
	if !blockTags[tag] {
		return -1
	}
	if m[2] == "/" || voidBlockTags[tag] {
		return start
	}

	opening, err := compileCached(`<` + name + `\b`)
	if err != nil {
		return -1
	}
	closing := "</" + name + ">"
	depth := 0
	for j := start; j < len(lines); j++ {
		lower := strings.ToLower(lines[j])
		depth += len(opening.FindAllStringIndex(lower, -1))
		depth -= strings.Count(lower, closing)
		if depth <= 0 {
			return j
		}
	}
	return -1
}
