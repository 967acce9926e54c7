package filter

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	setextHeader   = regexp.MustCompile(`(?m)^([^\n]+?)[ \t]*(?:\{#([\w:.-]+)\})?[ \t]*\n(=+|-+)[ \t]*\n+`)
	atxHeader      = regexp.MustCompile(`(?m)^(#{1,6})[ \t]*([^\n]+?)[ \t]*#*[ \t]*(?:\{#([\w:.-]+)\})?[ \t]*\n+`)
	horizontalRule = regexp.MustCompile(`(?m)^ {0,3}(?:(?:\*[ ]{0,2}){3,}|(?:-[ ]{0,2}){3,}|(?:_[ ]{0,2}){3,})[ \t]*$`)
	blockQuote     = regexp.MustCompile(`(?m)(?:^[ ]*>[^\n]*\n(?:[^\n]+\n)*\n*)+`)
	quoteMarker    = regexp.MustCompile(`(?m)^[ ]*>[ ]?`)
	blankSpaced    = regexp.MustCompile(`(?m)^[ \t]+$`)
)

// Header turns setext (underlined) and ATX (#) headers into h1 to h6.
// A trailing {#id} sets the id attribute. The first h1 becomes the
// document title unless one is already set.
type Header struct {
	base
}

// Transform implements gamut.Filter.
func (h *Header) Transform(text string) (string, error) {
	text, err := replaceAll(setextHeader, text, func(g []string) (string, error) {
		level := 1
		if g[3][0] == '-' {
			level = 2
		}
		return h.render(level, g[1], g[2])
	})
	if err != nil {
		return "", err
	}
	return replaceAll(atxHeader, text, func(g []string) (string, error) {
		return h.render(len(g[1]), g[2], g[3])
	})
}

func (h *Header) render(level int, title, id string) (string, error) {
	span, err := h.span(title)
	if err != nil {
		return "", err
	}
	if level == 1 {
		if content := h.rt.Content(); content.Title == "" {
			content.Title = strings.TrimSpace(title)
		}
	}
	attr := ""
	if id != "" {
		attr = fmt.Sprintf(` id="%s"`, encodeAttribute(id))
	}
	return h.hashBlock(fmt.Sprintf("<h%d%s>%s</h%d>", level, attr, span, level)), nil
}

// HorizontalRule turns lines of three or more *, - or _ into <hr />.
type HorizontalRule struct {
	base
}

// Transform implements gamut.Filter.
func (r *HorizontalRule) Transform(text string) (string, error) {
	return horizontalRule.ReplaceAllStringFunc(text, func(string) string {
		return r.hashBlock("<hr />")
	}), nil
}

// BlockQuote turns runs of "> " lines into <blockquote> elements. The quoted
// text goes through block_gamut again, so quotes nest.
type BlockQuote struct {
	base
}

// Transform implements gamut.Filter.
func (q *BlockQuote) Transform(text string) (string, error) {
	return replaceAll(blockQuote, text, func(g []string) (string, error) {
		inner := quoteMarker.ReplaceAllString(g[0], "")
		inner = blankSpaced.ReplaceAllString(inner, "")
		inner, err := q.block(inner)
		if err != nil {
			return "", err
		}
		return q.hashBlock("<blockquote>\n" + strings.Trim(inner, "\n") + "\n</blockquote>"), nil
	})
}

// Paragraph wraps the remaining text blocks in <p> through
// tool:RebuildParagraph.
type Paragraph struct {
	base
}

// Transform implements gamut.Filter.
func (p *Paragraph) Transform(text string) (string, error) {
	return p.rt.RunStage("tool:RebuildParagraph", text)
}
