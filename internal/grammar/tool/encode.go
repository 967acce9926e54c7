package tool

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark/util"

	"github.com/alnah/go-mdext/internal/config"
)

// ampOrAngle matches an ampersand with the entity it may start, and an
// opening angle with the character that may make it a tag.
var ampOrAngle = regexp.MustCompile(`&(?:#?[xX]?(?:[0-9a-fA-F]+|\w+);)?|<[a-zA-Z/?$!]?`)

// EncodeAmpAndAngle encodes ampersands and angle brackets that do not start
// an entity or a tag. With no_entities set, every ampersand is encoded.
type EncodeAmpAndAngle struct {
	cfg *config.Registry
}

// Run implements gamut.Tool.
func (e *EncodeAmpAndAngle) Run(text string) (string, error) {
	return EncodeAmpsAndAngles(text, e.cfg.Bool(config.KeyNoEntities, false)), nil
}

// EncodeAmpsAndAngles is the function behind the EncodeAmpAndAngle tool.
func EncodeAmpsAndAngles(text string, noEntities bool) string {
	if !strings.ContainsAny(text, "&<") {
		return text
	}
	return ampOrAngle.ReplaceAllStringFunc(text, func(m string) string {
		switch {
		case m == "&":
			return "&amp;"
		case m[0] == '&':
			if noEntities {
				return "&amp;" + m[1:]
			}
			return m
		case m == "<":
			return "&lt;"
		default:
			return m
		}
	})
}

// EncodeCode escapes text shown verbatim in code spans and blocks.
func EncodeCode(text string) string {
	return string(util.EscapeHTML([]byte(text)))
}
