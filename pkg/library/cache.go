package library

import (
	"fmt"
	"io"
	"os"

	"github.com/vmihailenco/msgpack/v5"
)

// cacheVersion is bumped whenever MacroDesc changes shape
const cacheVersion = 1

type cacheFile struct {
	Version int          `msgpack:"version"`
	Macros  []*MacroDesc `msgpack:"macros"`
}

// SaveCache writes every macro of lib to w as a msgpack snapshot, sorted
// by key.
func SaveCache(w io.Writer, lib Library) error {
	cf := cacheFile{Version: cacheVersion}
	for _, k := range lib.Keys() {
		cf.Macros = append(cf.Macros, lib[k])
	}
	enc := msgpack.NewEncoder(w)
	if err := enc.Encode(&cf); err != nil {
		return fmt.Errorf("failed to encode library cache: %w", err)
	}
	return nil
}

// LoadCache reads a snapshot written by SaveCache
func LoadCache(r io.Reader) (Library, error) {
	var cf cacheFile
	if err := msgpack.NewDecoder(r).Decode(&cf); err != nil {
		return nil, fmt.Errorf("failed to decode library cache: %w", err)
	}
	if cf.Version != cacheVersion {
		return nil, fmt.Errorf("unsupported library cache version %d", cf.Version)
	}
	lib := New()
	for _, m := range cf.Macros {
		if m == nil || m.Key == "" {
			continue
		}
		lib[m.Key] = m
	}
	return lib, nil
}

// SaveCacheFile writes the snapshot to path
func SaveCacheFile(path string, lib Library) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create library cache: %w", err)
	}
	if err := SaveCache(file, lib); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// LoadCacheFile reads the snapshot stored at path
func LoadCacheFile(path string) (Library, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open library cache: %w", err)
	}
	defer file.Close()
	return LoadCache(file)
}
