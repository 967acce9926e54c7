package tool

import (
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/alnah/go-mdext/internal/config"
)

var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// Lines holding only spaces or tabs
	spacedLine = regexp.MustCompile(`(?m)^[ \t]+$`)
)

const utf8BOM = "\ufeff"

// RemoveUTF8Marker drops a leading byte order mark.
func RemoveUTF8Marker(text string) string {
	return strings.TrimPrefix(text, utf8BOM)
}

// StandardizeLineEnding converts \r\n and \r to \n.
func StandardizeLineEnding(text string) string {
	return crlfOrCR.ReplaceAllString(text, "\n")
}

// AppendEndingNewLines makes sure the last block is closed by a blank line.
func AppendEndingNewLines(text string) string {
	return text + "\n\n"
}

// StripSpacedLines empties lines made of whitespace only, so they count as
// blank lines.
func StripSpacedLines(text string) string {
	return spacedLine.ReplaceAllString(text, "")
}

// Detab expands tabs to spaces on tab_width columns.
type Detab struct {
	cfg *config.Registry
}

// Run implements gamut.Tool.
func (d *Detab) Run(text string) (string, error) {
	return ExpandTabs(text, tabWidth(d.cfg)), nil
}

// ExpandTabs replaces every tab by the spaces reaching the next multiple of width.
func ExpandTabs(text string, width int) string {
	if !strings.Contains(text, "\t") {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	col := 0
	for _, r := range text {
		switch r {
		case '\t':
			n := width - col%width
			b.WriteString(strings.Repeat(" ", n))
			col += n
		case '\n':
			b.WriteRune(r)
			col = 0
		default:
			b.WriteRune(r)
			col++
		}
	}
	return b.String()
}

// Outdent removes one level of indentation, a tab or tab_width spaces, from
// every line. Lines indented less are left as they are.
type Outdent struct {
	cfg *config.Registry
}

// Run implements gamut.Tool.
func (o *Outdent) Run(text string) (string, error) {
	return outdentPattern(tabWidth(o.cfg)).ReplaceAllString(text, ""), nil
}

var outdentPatterns sync.Map // int -> *regexp.Regexp

func outdentPattern(width int) *regexp.Regexp {
	if re, ok := outdentPatterns.Load(width); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`(?m)^(?:\t| {` + strconv.Itoa(width) + `})`)
	outdentPatterns.Store(width, re)
	return re
}
