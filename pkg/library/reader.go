package library

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// StandardLibraryFile is the base name of the library read without prefix
const StandardLibraryFile = "FCDstdlib"

// Read loads a library from r into lib. Every key read is prefixed with
// prefix and a dot, unless prefix is empty. Macros already in lib with the
// same key are replaced.
func Read(r io.Reader, prefix string, lib Library) error {
	var (
		current      *MacroDesc
		categoryName string
		libraryName  string
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if len(line) <= 1 {
			continue
		}

		switch line[0] {
		case '{':
			name, err := defaultHeaderParser.Category(line)
			if err != nil {
				return fmt.Errorf("line %d: %w", lineNum, err)
			}
			categoryName = name
			continue
		case '[':
			key, longName, err := defaultHeaderParser.Macro(line)
			if err != nil {
				return fmt.Errorf("line %d: %w", lineNum, err)
			}
			if key == "FIDOLIB" {
				libraryName = longName
				continue
			}
			if prefix != "" {
				key = prefix + "." + key
			}
			key = strings.ToLower(key)
			current = &MacroDesc{
				Key:      key,
				Name:     longName,
				Category: categoryName,
				Library:  libraryName,
				Filename: prefix,
			}
			lib[key] = current
			continue
		}

		if current != nil {
			current.Description += "\n" + line
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read library: %w", err)
	}
	return nil
}

// PrefixFor derives the key prefix from a library file path
func PrefixFor(path string) string {
	base := filepath.Base(path)
	prefix := strings.TrimSuffix(base, filepath.Ext(base))
	if prefix == StandardLibraryFile {
		return ""
	}
	return prefix
}

// ReadFile loads the library stored at path into lib
func ReadFile(path string, lib Library) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open library: %w", err)
	}
	defer file.Close()

	if err := Read(file, PrefixFor(path), lib); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return nil
}

// LoadDirectory loads the built-in libraries and then every *.fcl file
// found in dir, in name order. A file named like a built-in library
// (FCDstdlib.fcl, pcb.fcl) replaces it. A file that cannot be read is
// logged and skipped, and all such failures are returned joined. When dir
// cannot be listed only the built-in libraries are loaded and no error is
// returned.
func LoadDirectory(dir string, lib Library) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if dir != "" {
			log.Printf("Warning: library directory is incorrect: %s", dir)
		}
		log.Printf("Activated internal libraries and symbols")
		return LoadBuiltin(lib)
	}

	var files []string
	replaced := make(map[string]bool)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".fcl") {
			continue
		}
		files = append(files, e.Name())
		replaced[strings.ToLower(e.Name())] = true
	}

	if err := loadBuiltin(lib, replaced); err != nil {
		return err
	}

	var errs []error
	for _, name := range files {
		if err := ReadFile(filepath.Join(dir, name), lib); err != nil {
			log.Printf("Problems reading library %s: %v", name, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
