package parser

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/OpenTraceLab/OpenTraceFCD/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceFCD/pkg/layers"
	"github.com/OpenTraceLab/OpenTraceFCD/pkg/model"
	"github.com/OpenTraceLab/OpenTraceFCD/pkg/primitives"
)

// SplitMacros rewrites text with the macros expanded into the primitives
// they are made of. Macros of the standard libraries stay as MC rows
// unless splitStandard is set. The text is parsed into a scratch drawing
// with the library of p and a copy of its layers, exported to a temporary
// file and read back. The drawing of p is left untouched.
func (p *Parser) SplitMacros(text string, splitStandard bool) (string, error) {
	p.mu.Lock()
	scratch := model.New(p.drawing.Library, layers.Clone(p.drawing.Layers))
	scratch.TextFont = p.drawing.TextFont
	scratch.TextFontSize = p.drawing.TextFontSize
	defaults := p.defaults
	p.mu.Unlock()

	sp := New(scratch)
	sp.SetDefaults(defaults)
	if _, err := sp.ParseString(text); err != nil {
		return "", err
	}

	temp, err := os.CreateTemp("", "copy*.fcd")
	if err != nil {
		return "", fmt.Errorf("failed to create split file: %w", err)
	}
	defer os.Remove(temp.Name())

	w := bufio.NewWriter(temp)
	e := primitives.NewExporter(w)
	e.SplitStandard = splitStandard
	e.TextFont = scratch.TextFont

	err = e.Start(sp.RegisterConfiguration(true))
	if err == nil {
		err = scratch.Export(geom.NewMapCoordinates(), e)
	}
	if err == nil {
		err = w.Flush()
	}
	if cerr := temp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("failed to split macros: %w", err)
	}

	return readLines(temp.Name())
}

// readLines reads a text file, ending every line with a newline
func readLines(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open split file: %w", err)
	}
	defer file.Close()

	var s strings.Builder
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		s.WriteString(scanner.Text())
		s.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read split file: %w", err)
	}
	return s.String(), nil
}
