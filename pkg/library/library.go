package library

import (
	"sort"
	"strings"
)

// MacroDesc describes one macro of a symbol library. Key is lowercase and
// unique, Description holds the drawing commands, and Filename is the file
// prefix the macro was read from ("" for the standard library).
type MacroDesc struct {
	Key         string `msgpack:"key" json:"key"`
	Name        string `msgpack:"name" json:"name"`
	Description string `msgpack:"desc" json:"desc"`
	Category    string `msgpack:"category" json:"category"`
	Library     string `msgpack:"library" json:"library"`
	Filename    string `msgpack:"filename" json:"filename"`
}

// Library maps lowercase macro keys to their descriptors
type Library map[string]*MacroDesc

// New creates an empty library
func New() Library {
	return make(Library)
}

// Lookup finds a macro, ignoring the case of the key
func (l Library) Lookup(key string) (*MacroDesc, bool) {
	m, ok := l[strings.ToLower(key)]
	return m, ok
}

// Keys returns every macro key in sorted order
func (l Library) Keys() []string {
	keys := make([]string, 0, len(l))
	for k := range l {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Libraries returns the library names present, sorted
func (l Library) Libraries() []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range l {
		if !seen[m.Library] {
			seen[m.Library] = true
			names = append(names, m.Library)
		}
	}
	sort.Strings(names)
	return names
}

// standardPrefixes are the libraries shipped with FidoCadJ itself
var standardPrefixes = []string{"pcb", "ihram", "elettrotecnica", "ey_libraries"}

// IsStandard reports whether a macro key belongs to one of the standard
// libraries. Keys without a prefix come from the standard library.
func IsStandard(key string) bool {
	prefix, _, found := strings.Cut(strings.ToLower(key), ".")
	if !found {
		return true
	}
	for _, p := range standardPrefixes {
		if prefix == p {
			return true
		}
	}
	return false
}
