package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/alnah/go-mdext/internal/config"
	"github.com/alnah/go-mdext/internal/gamut"
	"github.com/alnah/go-mdext/internal/yamlutil"
)

var metaKeyLine = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 _-]*:(?:[ \t]|$)`)

// MetaData reads the metadata header at the top of a document into
// Content.Metadata. The header is either a "---" fenced YAML block or a run
// of "key: value" lines ending at the first blank line.
//
// Methods: strip (default) removes the header, extract returns the header
// rendered as meta tags in place of the document, append adds those tags
// after the document.
type MetaData struct {
	base
	titleKey string
}

// Setup implements gamut.SetupHook.
func (m *MetaData) Setup() error {
	m.titleKey = strings.ToLower(m.cfg().String(config.KeyMetadataToTitle, "title"))
	return nil
}

// Transform implements gamut.Filter.
func (m *MetaData) Transform(text string) (string, error) {
	return m.strip(text)
}

// Method implements gamut.MethodSet.
func (m *MetaData) Method(name string) (gamut.StageFunc, bool) {
	switch name {
	case "strip":
		return m.strip, true
	case "extract":
		return m.extract, true
	case "append":
		return m.append, true
	}
	return nil, false
}

func (m *MetaData) strip(text string) (string, error) {
	header, rest, fenced, ok := splitHeader(text)
	if !ok {
		return text, nil
	}

	var entries []metaEntry
	if fenced {
		ordered, err := yamlutil.UnmarshalOrdered([]byte(header))
		if err != nil {
			// Not YAML after all: leave the text to the block rules.
			return text, nil
		}
		for _, it := range ordered {
			entries = append(entries, metaEntry{key: it.KeyString(), value: metaValue(it.Value)})
		}
	} else {
		entries = plainEntries(header)
	}

	content := m.rt.Content()
	titleKey := m.titleKey
	if titleKey == "" {
		titleKey = "title"
	}
	for _, e := range entries {
		key := strings.ToLower(strings.TrimSpace(e.key))
		content.Metadata.Set(key, e.value)
		if key == titleKey {
			content.Title = e.value
		}
	}
	return rest, nil
}

type metaEntry struct {
	key, value string
}

// plainEntries reads "key: value" lines verbatim. Indented lines continue
// the previous value.
func plainEntries(header string) []metaEntry {
	var entries []metaEntry
	for line := range strings.Lines(header) {
		line = strings.TrimRight(line, "\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if metaKeyLine.MatchString(line) {
			key, value, _ := strings.Cut(line, ":")
			entries = append(entries, metaEntry{key: key, value: strings.TrimSpace(value)})
			continue
		}
		if len(entries) == 0 {
			continue
		}
		last := &entries[len(entries)-1]
		if last.value == "" {
			last.value = strings.TrimSpace(line)
		} else {
			last.value += " " + strings.TrimSpace(line)
		}
	}
	return entries
}

func (m *MetaData) extract(text string) (string, error) {
	if _, err := m.strip(text); err != nil {
		return "", err
	}
	return m.render(), nil
}

func (m *MetaData) append(text string) (string, error) {
	meta := m.render()
	if meta == "" {
		return text, nil
	}
	return strings.TrimRight(text, "\n") + m.hashBlock(meta), nil
}

func (m *MetaData) render() string {
	md := &m.rt.Content().Metadata
	lines := make([]string, 0, md.Len())
	for _, key := range md.Keys() {
		value, _ := md.Get(key)
		lines = append(lines, fmt.Sprintf(`<meta name="%s" content="%s" />`, encodeAttribute(key), encodeAttribute(value)))
	}
	return strings.Join(lines, "\n")
}

// splitHeader cuts the metadata header off text. fenced reports a "---"
// YAML block.
func splitHeader(text string) (header, rest string, fenced, ok bool) {
	if body, found := strings.CutPrefix(text, "---\n"); found {
		offset := 0
		for line := range strings.Lines(body) {
			trimmed := strings.TrimRight(line, " \t\n")
			if trimmed == "---" || trimmed == "..." {
				return body[:offset], strings.TrimLeft(body[offset+len(line):], "\n"), true, true
			}
			offset += len(line)
		}
		return "", "", false, false
	}

	header, rest, _ = strings.Cut(text, "\n\n")
	lines := strings.Split(header, "\n")
	if !metaKeyLine.MatchString(lines[0]) {
		return "", "", false, false
	}
	for _, line := range lines[1:] {
		if !metaKeyLine.MatchString(line) && !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") {
			return "", "", false, false
		}
	}
	return header + "\n", strings.TrimLeft(rest, "\n"), false, true
}

func metaValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case []any:
		parts := make([]string, len(val))
		for i, e := range val {
			parts[i] = metaValue(e)
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(val)
	}
}
