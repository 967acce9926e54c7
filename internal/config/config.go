// Package config holds the engine's configuration registry: tunables,
// cross-reference tables and the gamut stacks that drive the pipeline.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/alnah/go-mdext/internal/fileutil"
	"github.com/alnah/go-mdext/internal/hints"
	"github.com/alnah/go-mdext/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound       = errors.New("config file not found")
	ErrEmptyConfigName      = errors.New("config name cannot be empty")
	ErrConfigParse          = errors.New("failed to parse config")
	ErrInvalidValue         = errors.New("invalid config value")
	ErrConfigurationMissing = errors.New("required configuration missing")
)

// Well-known keys.
const (
	KeyNestedBracketsDepth    = "nested_brackets_depth"
	KeyNestedParenthesisDepth = "nested_parenthesis_depth"
	KeyEscapedCharacters      = "escaped_characters"
	KeyTabWidth               = "tab_width"
	KeySkipFilters            = "skip_filters"
	KeyNoEntities             = "no_entities"
	KeyFilterAliases          = "filter_aliases"
	KeyToolAliases            = "tool_aliases"
	KeyFilterNamespace        = "filter_namespace"
	KeyToolNamespace          = "tool_namespace"
	KeyHighlightCode          = "highlight_code"
	KeyHighlightStyle         = "highlight_style"
	KeyMetadataToTitle        = "metadata_to_title"

	KeyPredefinedURLs          = "predefined_urls"
	KeyPredefinedTitles        = "predefined_titles"
	KeyPredefinedAttributes    = "predefined_attributes"
	KeyPredefinedAbbreviations = "predefined_abbreviations"

	// Derived by DeriveFragments.
	KeyNestedBracketsRE    = "nested_brackets_re"
	KeyNestedParenthesisRE = "nested_parenthesis_re"
	KeyEscapedCharactersRE = "escaped_characters_re"
)

// Gamut stack names.
const (
	InitialGamut   = "initial_gamut"
	TransformGamut = "transform_gamut"
	DocumentGamut  = "document_gamut"
	SpanGamut      = "span_gamut"
	BlockGamut     = "block_gamut"
	SpecialGamut   = "special_gamut"
)

// Bounds for nesting and indentation tunables.
const (
	MaxNestingDepth = 32
	MaxTabWidth     = 16
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Default returns a registry loaded with the built-in configuration.
// Panics if the embedded defaults are malformed (a build defect).
func Default() *Registry {
	r := New()
	o, err := yamlutil.UnmarshalOrdered(defaultsYAML)
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	r.Merge(o)
	return r
}

// LoadBytes merges YAML data over r. Top-level keys replace defaults;
// a key prefixed with "+" is merged with Add instead (e.g. "+skip_filters").
func (r *Registry) LoadBytes(data []byte) error {
	o, err := yamlutil.UnmarshalOrdered(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	for _, it := range o {
		key := it.KeyString()
		if add, ok := strings.CutPrefix(key, "+"); ok {
			r.Add(add, it.Value)
			continue
		}
		r.Set(key, it.Value)
	}
	return r.Validate()
}

// Load reads a config file by name or path and merges it over the defaults.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func Load(nameOrPath string) (*Registry, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath, err := Resolve(nameOrPath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	r := Default()
	if err := r.LoadBytes(data); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	return r, nil
}

// Resolve turns a config name or path into a file path.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, <user config dir>/go-mdext/
func Resolve(nameOrPath string) (string, error) {
	if fileutil.IsFilePath(nameOrPath) {
		return nameOrPath, nil
	}

	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := nameOrPath + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-mdext", nameOrPath+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s%s", ErrConfigNotFound, strings.Join(triedPaths, ", "), hints.ForConfigNotFound(triedPaths))
}

// Validate checks the tunables the engine derives regex fragments from.
func (r *Registry) Validate() error {
	if err := validateRange(r, KeyNestedBracketsDepth, 1, MaxNestingDepth); err != nil {
		return err
	}
	if err := validateRange(r, KeyNestedParenthesisDepth, 1, MaxNestingDepth); err != nil {
		return err
	}
	if err := validateRange(r, KeyTabWidth, 1, MaxTabWidth); err != nil {
		return err
	}
	if v := r.Get(KeyEscapedCharacters, ""); v != nil {
		if _, ok := v.(string); !ok {
			return fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidValue, KeyEscapedCharacters, v)
		}
	}
	return nil
}

func validateRange(r *Registry, key string, lo, hi int) error {
	v, ok := r.values[key]
	if !ok {
		return nil
	}
	n, ok := toInt(v)
	if !ok {
		return fmt.Errorf("%w: %s must be an integer, got %T", ErrInvalidValue, key, v)
	}
	if n < lo || n > hi {
		return fmt.Errorf("%w: %s must be between %d and %d, got %d", ErrInvalidValue, key, lo, hi, n)
	}
	return nil
}

// RequireInt returns key as an int or ErrConfigurationMissing.
func (r *Registry) RequireInt(key string) (int, error) {
	n, ok := toInt(r.values[key])
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrConfigurationMissing, key)
	}
	return n, nil
}

// DeriveFragments builds the regex fragments rules share from the depth and
// escape tunables. Nesting is approximated by unrolling a non-capturing
// alternation depth times: brackets nested deeper than that do not match.
func (r *Registry) DeriveFragments() error {
	if err := r.Validate(); err != nil {
		return err
	}
	bracketDepth, err := r.RequireInt(KeyNestedBracketsDepth)
	if err != nil {
		return err
	}
	parenDepth, err := r.RequireInt(KeyNestedParenthesisDepth)
	if err != nil {
		return err
	}

	r.Set(KeyNestedBracketsRE, NestedBracketsPattern(bracketDepth))
	r.Set(KeyNestedParenthesisRE, NestedParenthesisPattern(parenDepth))
	r.Set(KeyEscapedCharactersRE, EscapedCharactersPattern(r.String(KeyEscapedCharacters, "")))
	return nil
}

// NestedBracketsPattern matches text with square brackets balanced up to depth levels.
func NestedBracketsPattern(depth int) string {
	return strings.Repeat(`(?:[^\[\]]+|\[`, depth) + strings.Repeat(`\])*`, depth)
}

// NestedParenthesisPattern matches URL text with parentheses balanced up to depth levels.
func NestedParenthesisPattern(depth int) string {
	return strings.Repeat(`(?:[^()\s]+|\(`, depth) + strings.Repeat(`\))*`, depth)
}

// EscapedCharactersPattern returns a character class of chars.
// An empty set yields a class that never matches.
func EscapedCharactersPattern(chars string) string {
	if chars == "" {
		return `[^\x00-\x{10FFFF}]`
	}
	quoted := regexp.QuoteMeta(chars)
	quoted = strings.ReplaceAll(quoted, "-", `\-`)
	return "[" + quoted + "]"
}
