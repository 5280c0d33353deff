// Package species assembles the species dictionary: the ordered mapping from
// two-character species code to sample object that the alignment engine
// consumes.
package species

import (
	"path/filepath"
	"strings"

	"github.com/samap-tools/samprep/internal/errors"
	"github.com/samap-tools/samprep/internal/sample"
)

// CodeLength is the number of characters in a species code.
const CodeLength = 2

// pathListSeparator is the only separator the list format supports; a path
// containing it cannot be expressed.
const pathListSeparator = ", "

// ParsePathList parses "[a, b, c]" (brackets optional) into its paths. A
// single leading "[" and trailing "]" are removed; no other trimming or
// unescaping happens.
func ParsePathList(s string) []string {
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	return strings.Split(s, pathListSeparator)
}

// CodeFromPath returns the first two characters of the file name of path.
func CodeFromPath(path string) (string, error) {
	base := filepath.Base(path)
	runes := []rune(base)
	if path == "" || len(runes) < CodeLength {
		return "", errors.NewValidationError("sample file name is too short to carry a species code").
			WithField("sams").WithValue(path)
	}
	return string(runes[:CodeLength]), nil
}

// Entry is one species in the dictionary.
type Entry struct {
	Code   string
	Path   string
	Sample *sample.Object
}

// Dictionary maps species codes to samples in insertion order.
type Dictionary struct {
	order   []string
	entries map[string]Entry
}

// NewDictionary returns an empty Dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{entries: make(map[string]Entry)}
}

// Set stores e under e.Code. Replacing an existing code keeps that code's
// original position and returns the replaced entry.
func (d *Dictionary) Set(e Entry) (Entry, bool) {
	prev, ok := d.entries[e.Code]
	if !ok {
		d.order = append(d.order, e.Code)
	}
	d.entries[e.Code] = e
	return prev, ok
}

// Get returns the entry for code.
func (d *Dictionary) Get(code string) (Entry, bool) {
	e, ok := d.entries[code]
	return e, ok
}

// Codes returns the species codes in insertion order.
func (d *Dictionary) Codes() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Entries returns the entries in insertion order.
func (d *Dictionary) Entries() []Entry {
	out := make([]Entry, 0, len(d.order))
	for _, code := range d.order {
		out = append(out, d.entries[code])
	}
	return out
}

// Samples returns the code to sample mapping.
func (d *Dictionary) Samples() map[string]*sample.Object {
	out := make(map[string]*sample.Object, len(d.entries))
	for code, e := range d.entries {
		out[code] = e.Sample
	}
	return out
}

// Len returns the number of species.
func (d *Dictionary) Len() int {
	return len(d.order)
}
