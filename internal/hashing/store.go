// Package hashing protects finished output fragments from later pipeline
// stages. A fragment is swapped for an opaque token, and tokens are swapped
// back by Unhash once no stage can touch the text anymore.
package hashing

import (
	"regexp"
	"strconv"
	"strings"
)

// Boundary tags a token with how the protected fragment should be treated.
type Boundary byte

const (
	// Part marks an inline fragment.
	Part Boundary = 'X'
	// Block marks a fragment that is already block-level: paragraph
	// building must not wrap it.
	Block Boundary = 'B'
	// Clean marks verbatim tag text that must never be escaped again.
	Clean Boundary = 'C'
)

// Separator sits between the boundary and the counter in every token.
const Separator = "\x1A"

var tokenPattern = regexp.MustCompile(`[XBC]\x1A[0-9]+[XBC]`)

// Store maps tokens to the fragments they replace.
// One Store serves every rule of one parse; it is not safe for concurrent use.
type Store struct {
	entries map[string]string
	counter int
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{entries: make(map[string]string)}
}

// HashPart stores text under a new token and returns the token.
// Tokens already embedded in text are resolved first, so a stored fragment
// never contains another token.
func (s *Store) HashPart(text string, b Boundary) string {
	text = s.Unhash(text)
	s.counter++
	key := string(b) + Separator + strconv.Itoa(s.counter) + string(b)
	s.entries[key] = text
	return key
}

// HashBlock stores a block-level fragment.
func (s *Store) HashBlock(text string) string {
	return s.HashPart(text, Block)
}

// HashClean stores verbatim tag text.
func (s *Store) HashClean(text string) string {
	return s.HashPart(text, Clean)
}

// Unhash replaces every known token in text by its fragment in a single pass.
// Unknown tokens and tokens with mismatched boundaries are left untouched.
func (s *Store) Unhash(text string) string {
	if len(s.entries) == 0 || !strings.Contains(text, Separator) {
		return text
	}
	return tokenPattern.ReplaceAllStringFunc(text, func(key string) string {
		if key[0] != key[len(key)-1] {
			return key
		}
		if v, ok := s.entries[key]; ok {
			return v
		}
		return key
	})
}

// Lookup returns the fragment stored under key.
func (s *Store) Lookup(key string) (string, bool) {
	v, ok := s.entries[key]
	return v, ok
}

// Len returns the number of stored fragments.
func (s *Store) Len() int {
	return len(s.entries)
}

// Reset drops every fragment and restarts the counter.
func (s *Store) Reset() {
	clear(s.entries)
	s.counter = 0
}

// IsToken reports whether text is exactly one token with boundary b.
func IsToken(text string, b Boundary) bool {
	if len(text) < 4 || text[0] != byte(b) || text[len(text)-1] != byte(b) {
		return false
	}
	loc := tokenPattern.FindStringIndex(text)
	return loc != nil && loc[0] == 0 && loc[1] == len(text)
}

// ContainsToken reports whether text holds at least one token shape.
func ContainsToken(text string) bool {
	return tokenPattern.MatchString(text)
}

// IsBlockToken reports whether text, ignoring surrounding space, is one
// block token.
func IsBlockToken(text string) bool {
	return IsToken(strings.TrimSpace(text), Block)
}
