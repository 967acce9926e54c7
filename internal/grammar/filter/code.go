package filter

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/alnah/go-mdext/internal/config"
	"github.com/alnah/go-mdext/internal/hashing"
	"github.com/alnah/go-mdext/internal/logfields"
)

var fenceOpen = regexp.MustCompile("^(`{3,}|~{3,})[ \\t]*(?:\\{?\\.?([\\w#+.-]+)\\}?)?[ \\t]*\\n?$")

// FencedCodeBlock turns ``` and ~~~ fenced blocks into protected
// <pre><code> blocks. With highlight_code set and a known language, code is
// highlighted by chroma with CSS classes.
type FencedCodeBlock struct {
	base
}

// Transform implements gamut.Filter.
func (f *FencedCodeBlock) Transform(text string) (string, error) {
	if !strings.Contains(text, "```") && !strings.Contains(text, "~~~") {
		return text, nil
	}

	lines := strings.SplitAfter(text, "\n")
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(lines); {
		m := fenceOpen.FindStringSubmatch(lines[i])
		if m == nil {
			b.WriteString(lines[i])
			i++
			continue
		}
		end := fenceClose(lines, i+1, m[1])
		if end < 0 {
			b.WriteString(lines[i])
			i++
			continue
		}
		code := strings.Join(lines[i+1:end], "")
		html, err := f.render(code, m[2])
		if err != nil {
			return "", err
		}
		b.WriteString(f.hashBlock(html))
		i = end + 1
	}
	return b.String(), nil
}

// fenceClose finds the line closing a fence opened with marker.
func fenceClose(lines []string, from int, marker string) int {
	for j := from; j < len(lines); j++ {
		line := strings.TrimRight(lines[j], " \t\n")
		if len(line) >= len(marker) && strings.Trim(line, marker[:1]) == "" {
			return j
		}
	}
	return -1
}

func (f *FencedCodeBlock) render(code, lang string) (string, error) {
	if f.cfg().Bool(config.KeyHighlightCode, true) && lang != "" {
		if html, ok := f.highlight(code, lang); ok {
			return html, nil
		}
	}

	encoded, err := f.rt.RunStage("tool:EncodeCode", code)
	if err != nil {
		return "", err
	}
	if lang == "" {
		return "<pre><code>" + encoded + "</code></pre>", nil
	}
	return fmt.Sprintf(`<pre><code class="language-%s">%s</code></pre>`, encodeAttribute(lang), encoded), nil
}

// highlight renders code with chroma. ok is false when no lexer knows lang.
func (f *FencedCodeBlock) highlight(code, lang string) (string, bool) {
	lexer := lexers.Get(lang)
	if lexer == nil {
		return "", false
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		f.rt.Logger().Debug("highlighting failed", slog.String("language", lang), logfields.Error(err))
		return "", false
	}

	style := styles.Get(f.cfg().String(config.KeyHighlightStyle, "github"))
	formatter := chromahtml.New(chromahtml.WithClasses(true))

	var b strings.Builder
	if err := formatter.Format(&b, style, iterator); err != nil {
		f.rt.Logger().Debug("highlighting failed", slog.String("language", lang), logfields.Error(err))
		return "", false
	}
	return strings.TrimRight(b.String(), "\n"), true
}

// CodeSpan turns `code` spans into protected <code> elements. A span opened
// by n backticks is closed by the next run of exactly n backticks.
type CodeSpan struct {
	base
}

// Transform implements gamut.Filter.
func (c *CodeSpan) Transform(text string) (string, error) {
	if !strings.Contains(text, "`") {
		return text, nil
	}

	var b strings.Builder
	b.Grow(len(text))
	i := 0
	for i < len(text) {
		start := strings.IndexByte(text[i:], '`')
		if start < 0 {
			break
		}
		start += i
		n := backtickRun(text, start)
		if start > 0 && text[start-1] == '\\' {
			b.WriteString(text[i : start+n])
			i = start + n
			continue
		}
		end := closingRun(text, start+n, n)
		if end < 0 {
			b.WriteString(text[i : start+n])
			i = start + n
			continue
		}

		code := strings.TrimSpace(text[start+n : end])
		encoded, err := c.rt.RunStage("tool:EncodeCode", code)
		if err != nil {
			return "", err
		}
		b.WriteString(text[i:start])
		b.WriteString(c.hashes().HashPart("<code>"+encoded+"</code>", hashing.Part))
		i = end + n
	}
	b.WriteString(text[i:])
	return b.String(), nil
}

func backtickRun(text string, at int) int {
	n := 0
	for at+n < len(text) && text[at+n] == '`' {
		n++
	}
	return n
}

// closingRun returns the start of the next run of exactly n backticks.
func closingRun(text string, from, n int) int {
	for i := from; i < len(text); {
		j := strings.IndexByte(text[i:], '`')
		if j < 0 {
			return -1
		}
		j += i
		run := backtickRun(text, j)
		if run == n {
			return j
		}
		i = j + run
	}
	return -1
}
