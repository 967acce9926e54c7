package tool

import (
	"regexp"
	"strings"

	"github.com/alnah/go-mdext/internal/gamut"
	"github.com/alnah/go-mdext/internal/hashing"
)

// HTML restores protected fragments. Its default method and its "unhash"
// method do the same thing.
type HTML struct {
	rt gamut.Runtime
}

// Run implements gamut.Tool.
func (h *HTML) Run(text string) (string, error) {
	return h.rt.Hashes().Unhash(text), nil
}

// Method implements gamut.MethodSet.
func (h *HTML) Method(name string) (gamut.StageFunc, bool) {
	if name == "unhash" {
		return h.Run, true
	}
	return nil, false
}

var blankLines = regexp.MustCompile(`\n{2,}`)

// RebuildParagraph splits text on blank lines and wraps every chunk that is
// not a protected block in a paragraph, after running span_gamut over it.
type RebuildParagraph struct {
	rt gamut.Runtime
}

// Run implements gamut.Tool.
func (p *RebuildParagraph) Run(text string) (string, error) {
	text = strings.Trim(text, "\n")
	if text == "" {
		return "", nil
	}

	chunks := blankLines.Split(text, -1)
	out := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		if hashing.IsBlockToken(chunk) {
			html, err := p.rt.RunStage("tool:HTML:unhash", strings.TrimSpace(chunk))
			if err != nil {
				return "", err
			}
			out = append(out, html)
			continue
		}
		span, err := p.rt.RunStage("span_gamut", chunk)
		if err != nil {
			return "", err
		}
		out = append(out, "<p>"+strings.TrimLeft(span, " \t")+"</p>")
	}
	return strings.Join(out, "\n\n"), nil
}
