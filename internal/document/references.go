package document

import "maps"

// References are the cross-reference tables link and abbreviation rules
// fill while reading a document. They start each parse from the
// configured predefined values.
type References struct {
	URLs          map[string]string
	Titles        map[string]string
	Attributes    map[string]string
	Abbreviations map[string]string
}

// NewReferences returns empty tables.
func NewReferences() *References {
	r := &References{}
	r.Reset(nil, nil, nil, nil)
	return r
}

// Reset replaces every table by a copy of the given initial values.
func (r *References) Reset(urls, titles, attributes, abbreviations map[string]string) {
	r.URLs = copyOrEmpty(urls)
	r.Titles = copyOrEmpty(titles)
	r.Attributes = copyOrEmpty(attributes)
	r.Abbreviations = copyOrEmpty(abbreviations)
}

func copyOrEmpty(m map[string]string) map[string]string {
	if m == nil {
		return make(map[string]string)
	}
	return maps.Clone(m)
}
