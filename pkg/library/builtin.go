package library

import (
	"embed"
	"fmt"
	"path"
	"strings"
)

//go:embed builtin/*.fcl
var builtinFS embed.FS

// LoadBuiltin reads the libraries embedded in the binary into lib
func LoadBuiltin(lib Library) error {
	return loadBuiltin(lib, nil)
}

// loadBuiltin reads the embedded libraries, except those whose lowercased
// file name is in replaced
func loadBuiltin(lib Library, replaced map[string]bool) error {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return fmt.Errorf("failed to list built-in libraries: %w", err)
	}
	for _, e := range entries {
		if replaced[strings.ToLower(e.Name())] {
			continue
		}
		name := path.Join("builtin", e.Name())
		file, err := builtinFS.Open(name)
		if err != nil {
			return fmt.Errorf("failed to open built-in library %s: %w", e.Name(), err)
		}
		err = Read(file, PrefixFor(e.Name()), lib)
		file.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", e.Name(), err)
		}
	}
	return nil
}
