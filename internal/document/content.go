// Package document holds the data carried through one parse: the source
// text going in and the body, title, metadata and notes coming out.
package document

import (
	"errors"
	"fmt"
	"os"
	"slices"
)

// ErrBodyAlreadySet indicates a second attempt to commit a parse result.
var ErrBodyAlreadySet = errors.New("content body already set")

// DefaultCharset is used when the caller does not set one.
const DefaultCharset = "utf-8"

// NoteKind distinguishes the note flavours collected during a parse.
type NoteKind int

const (
	Footnote NoteKind = iota
	Glossary
	Citation
)

func (k NoteKind) String() string {
	switch k {
	case Footnote:
		return "footnote"
	case Glossary:
		return "glossary"
	case Citation:
		return "citation"
	default:
		return fmt.Sprintf("NoteKind(%d)", int(k))
	}
}

// NoteEntry is one note referenced from the body.
type NoteEntry struct {
	Sequence int
	Kind     NoteKind
	InTextID string // id of the reference anchor in the body
	NoteID   string // id of the note itself
	Text     string
}

// Content is one document under transformation.
// Source is set by the caller; everything else is filled by the pipeline.
type Content struct {
	Source         string
	Title          string
	Charset        string
	Metadata       Metadata
	Notes          []NoteEntry
	ParsingOptions map[string]any

	body    string
	hasBody bool
}

// NewContent returns a Content for source.
func NewContent(source string) *Content {
	return &Content{
		Source:         source,
		Charset:        DefaultCharset,
		ParsingOptions: make(map[string]any),
	}
}

// NewContentFromFile reads path into a new Content.
func NewContentFromFile(path string) (*Content, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- input path is user-provided
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}
	c := NewContent(string(data))
	c.ParsingOptions["source_path"] = path
	return c, nil
}

// Body returns the transformed text, empty until a parse succeeds.
func (c *Content) Body() string {
	return c.body
}

// HasBody reports whether a parse result was committed.
func (c *Content) HasBody() bool {
	return c.hasBody
}

// SetBody commits the parse result. It can only be done once.
func (c *Content) SetBody(body string) error {
	if c.hasBody {
		return ErrBodyAlreadySet
	}
	c.body = body
	c.hasBody = true
	return nil
}

// AddNote appends a note and returns it with its sequence number set.
func (c *Content) AddNote(n NoteEntry) NoteEntry {
	n.Sequence = len(c.Notes) + 1
	c.Notes = append(c.Notes, n)
	return n
}

// Option returns a parsing option, or nil.
func (c *Content) Option(key string) any {
	if c.ParsingOptions == nil {
		return nil
	}
	return c.ParsingOptions[key]
}

// Metadata is a string map that remembers insertion order.
type Metadata struct {
	keys   []string
	values map[string]string
}

// Set stores value under key. Re-setting a key keeps its position.
func (m *Metadata) Set(key, value string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under key.
func (m *Metadata) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m *Metadata) Keys() []string {
	return slices.Clone(m.keys)
}

// Len returns the number of entries.
func (m *Metadata) Len() int {
	return len(m.keys)
}

// Reset removes every entry.
func (m *Metadata) Reset() {
	m.keys = nil
	m.values = nil
}
