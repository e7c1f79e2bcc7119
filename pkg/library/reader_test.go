package library

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleLib = `[FIDOLIB Sample library]
{Logic gates}
[AND2 And gate, 2 inputs]
LI 100 100 110 100 0
EV 105 95 115 105 0
[OR2 Or gate]
LI 100 100 110 100 0
{Other}
[OSC Oscillator]
RV 90 90 110 110 0
`

func TestReadSample(t *testing.T) {
	lib := New()
	if err := Read(strings.NewReader(sampleLib), "gates", lib); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(lib) != 3 {
		t.Fatalf("expected 3 macros, got %d (%v)", len(lib), lib.Keys())
	}

	and, ok := lib.Lookup("GATES.AND2")
	if !ok {
		t.Fatalf("gates.and2 not found")
	}
	if and.Key != "gates.and2" {
		t.Errorf("key = %q", and.Key)
	}
	if and.Name != "And gate, 2 inputs" {
		t.Errorf("name = %q", and.Name)
	}
	if and.Category != "Logic gates" {
		t.Errorf("category = %q", and.Category)
	}
	if and.Library != "Sample library" {
		t.Errorf("library = %q", and.Library)
	}
	if and.Filename != "gates" {
		t.Errorf("filename = %q", and.Filename)
	}
	want := "\nLI 100 100 110 100 0\nEV 105 95 115 105 0"
	if and.Description != want {
		t.Errorf("description = %q, want %q", and.Description, want)
	}

	osc, _ := lib.Lookup("gates.osc")
	if osc == nil || osc.Category != "Other" {
		t.Fatalf("osc macro = %+v", osc)
	}
}

func TestReadWithoutPrefix(t *testing.T) {
	lib := New()
	if err := Read(strings.NewReader(sampleLib), "", lib); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if _, ok := lib["and2"]; !ok {
		t.Fatalf("expected unprefixed key and2, got %v", lib.Keys())
	}
}

func TestReadHeaderErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"category", "{Broken category\n[A b]\n", ErrCategoryNotTerminated},
		{"macro", "{Cat}\n[A long name\nLI 0 0 1 1 0\n", ErrMacroNameNotTerminated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Read(strings.NewReader(tt.input), "", New())
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			if !strings.Contains(err.Error(), "line ") {
				t.Errorf("error %q does not carry a line number", err)
			}
		})
	}
}

func TestReadSkipsShortLinesAndOrphanBody(t *testing.T) {
	lib := New()
	input := "LI 0 0 10 10 0\n \nx\n[K Key]\n\nLI 1 1 2 2 0\r\n"
	if err := Read(strings.NewReader(input), "", lib); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(lib) != 1 {
		t.Fatalf("expected one macro, got %d", len(lib))
	}
	if got := lib["k"].Description; got != "\nLI 1 1 2 2 0" {
		t.Fatalf("description = %q", got)
	}
}

func TestHeaderParser(t *testing.T) {
	p, err := NewHeaderParser()
	if err != nil {
		t.Fatalf("NewHeaderParser failed: %v", err)
	}

	cat, err := p.Category("{ Spaced category }")
	if err != nil || cat != "Spaced category" {
		t.Fatalf("Category = %q, %v", cat, err)
	}

	key, name, err := p.Macro("[R01 Resistor [EU] ]")
	if err != nil {
		t.Fatalf("Macro failed: %v", err)
	}
	if key != "R01" || name != "Resistor [EU" {
		t.Fatalf("Macro = %q %q", key, name)
	}

	key, name, err = p.Macro("[KEYONLY]")
	if err != nil || key != "KEYONLY" || name != "" {
		t.Fatalf("Macro(key only) = %q %q %v", key, name, err)
	}
}

func TestPrefixFor(t *testing.T) {
	tests := map[string]string{
		"/usr/share/fidocadj/FCDstdlib.fcl": "",
		"libs/pcb.fcl":                      "pcb",
		"IHRAM.FCL":                         "IHRAM",
		"elettrotecnica.fcl":                "elettrotecnica",
	}
	for in, want := range tests {
		if got := PrefixFor(in); got != want {
			t.Errorf("PrefixFor(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	write("FCDstdlib.fcl", "{Cat}\n[R Resistor]\nLI 0 0 1 1 0\n")
	write("mine.FCL", "{Cat}\n[X Thing]\nLI 0 0 1 1 0\n")
	write("broken.fcl", "{Cat\n")
	write("notes.txt", "{Cat}\n[N Note]\n")

	lib := New()
	err := LoadDirectory(dir, lib)
	if err == nil || !errors.Is(err, ErrCategoryNotTerminated) {
		t.Fatalf("expected the broken file error, got %v", err)
	}
	if _, ok := lib["r"]; !ok {
		t.Errorf("standard library macro missing: %v", lib.Keys())
	}
	if _, ok := lib["mine.x"]; !ok {
		t.Errorf("mine.x missing: %v", lib.Keys())
	}
	if _, ok := lib["notes.n"]; ok {
		t.Errorf("non .fcl file was read")
	}
	if _, ok := lib["010"]; ok {
		t.Errorf("built-in standard library not replaced by FCDstdlib.fcl")
	}
	if _, ok := lib["pcb.res04"]; !ok {
		t.Errorf("built-in pcb library missing: %v", lib.Keys())
	}
}

func TestLoadDirectoryKeepsBuiltins(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		lib := New()
		if err := LoadDirectory(t.TempDir(), lib); err != nil {
			t.Fatalf("LoadDirectory on an empty dir returned %v", err)
		}
		if _, ok := lib["010"]; !ok {
			t.Fatalf("built-in standard library not loaded: %v", lib.Keys())
		}
		if _, ok := lib["pcb.res04"]; !ok {
			t.Fatalf("built-in pcb library not loaded: %v", lib.Keys())
		}
	})

	t.Run("custom only", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "custom.fcl"), []byte("{Cat}\n[X Thing]\nLI 0 0 1 1 0\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		lib := New()
		if err := LoadDirectory(dir, lib); err != nil {
			t.Fatalf("LoadDirectory returned %v", err)
		}
		for _, key := range []string{"custom.x", "010", "pcb.res04"} {
			if _, ok := lib[key]; !ok {
				t.Errorf("%s missing: %v", key, lib.Keys())
			}
		}
	})
}

func TestLoadDirectoryMissingFallsBack(t *testing.T) {
	lib := New()
	if err := LoadDirectory(filepath.Join(t.TempDir(), "nope"), lib); err != nil {
		t.Fatalf("LoadDirectory on a missing dir returned %v", err)
	}
	if _, ok := lib["010"]; !ok {
		t.Fatalf("built-in standard library not loaded: %v", lib.Keys())
	}
	if _, ok := lib["pcb.res04"]; !ok {
		t.Fatalf("built-in pcb library not loaded: %v", lib.Keys())
	}
}

func TestIsStandard(t *testing.T) {
	for key, want := range map[string]bool{
		"010":              true,
		"PCB.RES04":        true,
		"ihram.x":          true,
		"gates.and2":       false,
		"":                 true,
		"ey_libraries.abc": true,
	} {
		if got := IsStandard(key); got != want {
			t.Errorf("IsStandard(%q) = %v, want %v", key, got, want)
		}
	}
}
