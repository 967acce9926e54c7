package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/alnah/go-mdext/internal/document"
	"github.com/alnah/go-mdext/internal/gamut"
	"github.com/alnah/go-mdext/internal/hashing"
)

var (
	noteDefinition = regexp.MustCompile(`(?m)^[ ]{0,3}\[([\^#])([^\]\n]+)\]:[ \t]*([^\n]*(?:\n(?:[ ]{4}|\t)[^\n]*)*)\n*`)
	noteReference  = regexp.MustCompile(`\[([\^#])([^\]\n]+)\]`)
)

const glossaryPrefix = "glossary:"

type noteDef struct {
	kind document.NoteKind
	id   string
	text string
}

// noteStyle is how one kind of note is labelled in ids and classes.
type noteStyle struct {
	prefix  string
	section string
}

var noteStyles = map[document.NoteKind]noteStyle{
	document.Footnote: {prefix: "fn", section: "footnotes"},
	document.Glossary: {prefix: "gl", section: "glossary"},
	document.Citation: {prefix: "cite", section: "bibliography"},
}

// Note handles footnotes ([^id]), glossary entries ([^glossary:term]) and
// citations ([#id]).
//
// The strip method records and removes definitions, the default method
// replaces references to known definitions by numbered links and fills
// Content.Notes, and the append method adds the note sections at the end of
// the document.
type Note struct {
	base
	defs map[string]noteDef
	used map[string]document.NoteEntry
}

// NewNote returns a Note bound to rt.
func NewNote(rt gamut.Runtime) *Note {
	n := &Note{base: base{rt}}
	n.reset()
	return n
}

// Setup implements gamut.SetupHook.
func (n *Note) Setup() error {
	n.reset()
	return nil
}

// Teardown implements gamut.TeardownHook.
func (n *Note) Teardown() error {
	n.reset()
	return nil
}

func (n *Note) reset() {
	n.defs = make(map[string]noteDef)
	n.used = make(map[string]document.NoteEntry)
}

// Method implements gamut.MethodSet.
func (n *Note) Method(name string) (gamut.StageFunc, bool) {
	switch name {
	case "strip":
		return n.strip, true
	case "append":
		return n.append, true
	}
	return nil, false
}

func (n *Note) strip(text string) (string, error) {
	if !strings.Contains(text, "]:") {
		return text, nil
	}
	return noteDefinition.ReplaceAllStringFunc(text, func(m string) string {
		g := noteDefinition.FindStringSubmatch(m)
		def := noteDef{kind: document.Footnote, id: g[2], text: outdentNote(g[3])}
		switch {
		case g[1] == "#":
			def.kind = document.Citation
		case strings.HasPrefix(g[2], glossaryPrefix):
			def.kind = document.Glossary
			def.id = strings.TrimPrefix(g[2], glossaryPrefix)
		}
		n.defs[g[1]+g[2]] = def
		return ""
	}), nil
}

// Transform implements gamut.Filter.
func (n *Note) Transform(text string) (string, error) {
	if len(n.defs) == 0 {
		return text, nil
	}
	return replaceAll(noteReference, text, func(g []string) (string, error) {
		key := g[1] + g[2]
		def, ok := n.defs[key]
		if !ok {
			return g[0], nil
		}
		entry, seen := n.used[key]
		if !seen {
			// Recorded before its text is rendered so a note that
			// references itself links back instead of recursing.
			content := n.rt.Content()
			style := noteStyles[def.kind]
			entry = content.AddNote(document.NoteEntry{
				Kind:     def.kind,
				InTextID: style.prefix + "ref:" + htmlID(def.id),
				NoteID:   style.prefix + ":" + htmlID(def.id),
			})
			n.used[key] = entry

			rendered, err := n.span(def.text)
			if err != nil {
				return "", err
			}
			content.Notes[entry.Sequence-1].Text = n.hashes().Unhash(rendered)
		}
		sup := fmt.Sprintf(`<sup id="%s"><a href="#%s" class="%s-ref">%d</a></sup>`,
			entry.InTextID, entry.NoteID, noteStyles[entry.Kind].prefix, entry.Sequence)
		return n.hashes().HashPart(sup, hashing.Part), nil
	})
}

func (n *Note) append(text string) (string, error) {
	notes := n.rt.Content().Notes
	if len(notes) == 0 {
		return text, nil
	}

	var sections []string
	for _, kind := range []document.NoteKind{document.Footnote, document.Glossary, document.Citation} {
		style := noteStyles[kind]
		var items []string
		for _, note := range notes {
			if note.Kind != kind {
				continue
			}
			items = append(items, fmt.Sprintf(
				`<li id="%s"><p>%s&#160;<a href="#%s" class="reverse-%s-ref">&#8617;</a></p></li>`,
				note.NoteID, note.Text, note.InTextID, style.prefix))
		}
		if len(items) == 0 {
			continue
		}
		sections = append(sections, fmt.Sprintf("<div class=\"%s\">\n<hr />\n<ol>\n%s\n</ol>\n</div>",
			style.section, strings.Join(items, "\n")))
	}
	return strings.TrimRight(text, "\n") + n.hashBlock(strings.Join(sections, "\n")), nil
}

var noteIndent = regexp.MustCompile(`(?m)^(?:[ ]{4}|\t)`)

func outdentNote(text string) string {
	return strings.TrimSpace(noteIndent.ReplaceAllString(text, ""))
}
