package parser

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/OpenTraceLab/OpenTraceFCD/pkg/library"
	"github.com/OpenTraceLab/OpenTraceFCD/pkg/model"
	"github.com/OpenTraceLab/OpenTraceFCD/pkg/primitives"
)

func testLibrary() library.Library {
	lib := library.New()
	lib["box"] = &library.MacroDesc{Key: "box", Description: "\nRV 100 100 110 110 0"}
	lib["mylib.foo"] = &library.MacroDesc{Key: "mylib.foo", Description: "\nRV 100 100 110 110 0"}
	lib["loop"] = &library.MacroDesc{Key: "loop", Description: "\nMC 100 100 0 0 loop"}
	return lib
}

func parse(t *testing.T, text string) *Result {
	t.Helper()
	p := New(model.New(testLibrary(), nil))
	res, err := p.ParseString(text)
	if err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}
	return res
}

func kinds(d *model.Drawing) []primitives.Kind {
	var out []primitives.Kind
	for _, p := range d.Primitives() {
		out = append(out, p.Kind())
	}
	return out
}

func TestLookaheadMerge(t *testing.T) {
	res := parse(t, "LI 0 0 10 10 0\nFCJ 0 0 3 3 0 2 0\n")
	if res.Added != 1 || res.Drawing.Len() != 1 {
		t.Fatalf("Added = %d, Len = %d, want a single line", res.Added, res.Drawing.Len())
	}
	if len(res.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics %v", res.Diagnostics)
	}

	res = parse(t, "LI 0 0 10 10 0\nFCJ 3 0 3 1 2 0\n")
	want := "LI 0 0 10 10 0\nFCJ 3 0 3 1 2 0\n"
	if got := res.Drawing.Primitives()[0].String(true); got != want {
		t.Fatalf("merged line = %q, want %q", got, want)
	}
}

func TestLookaheadNoMerge(t *testing.T) {
	res := parse(t, "LI 0 0 10 10 0\nEV 1 1 5 5 0\n")
	got := kinds(res.Drawing)
	if len(got) != 2 || got[0] != primitives.KindLine || got[1] != primitives.KindOval {
		t.Fatalf("kinds = %v, want [line oval]", got)
	}
	if s := res.Drawing.Primitives()[0].String(true); s != "LI 0 0 10 10 0\n" {
		t.Fatalf("line without extension = %q", s)
	}
}

func TestMacroNameAndValue(t *testing.T) {
	res := parse(t, "MC 10 10 0 0 mylib.foo\nFCJ\n"+
		"TY 20 20 4 3 0 0 0 * R1\n"+
		"TY 20 15 4 3 0 0 0 * 10k\n")
	if res.Drawing.Len() != 1 {
		t.Fatalf("Len = %d, want 1", res.Drawing.Len())
	}
	m := res.Drawing.Primitives()[0]
	if m.Kind() != primitives.KindMacro || m.Name() != "R1" || m.Value() != "10k" {
		t.Fatalf("macro %v name %q value %q", m.Kind(), m.Name(), m.Value())
	}
	if got := len(m.(*primitives.Macro).Primitives()); got != 1 {
		t.Fatalf("macro body has %d primitives, want 1", got)
	}

	// The buffer ends before the value
	res = parse(t, "MC 10 10 0 0 mylib.foo\nFCJ\nTY 20 20 4 3 0 0 0 * R1")
	if res.Drawing.Len() != 1 {
		t.Fatalf("Len = %d, want 1", res.Drawing.Len())
	}
	m = res.Drawing.Primitives()[0]
	if m.Name() != "R1" || m.Value() != "" {
		t.Fatalf("flushed macro name %q value %q", m.Name(), m.Value())
	}
}

func TestPrimitiveNameAndValue(t *testing.T) {
	res := parse(t, "LI 0 0 10 10 0\nFCJ 0 0 3 1 0 1\n"+
		"TY 5 5 4 3 0 0 0 * R1\n"+
		"TY 5 10 4 3 0 0 0 * 1k\n"+
		"SA 0 0 0\nFCJ\n"+
		"TY 1 1 4 3 0 0 0 * node\n"+
		"TY 1 6 4 3 0 0 0 * x\n")
	got := res.Drawing.Primitives()
	if len(got) != 2 {
		t.Fatalf("Len = %d, want 2", len(got))
	}
	if got[0].Name() != "R1" || got[0].Value() != "1k" {
		t.Fatalf("line name %q value %q", got[0].Name(), got[0].Value())
	}
	if got[1].Name() != "node" || got[1].Value() != "x" {
		t.Fatalf("connection name %q value %q", got[1].Name(), got[1].Value())
	}

	// A text flag of 0 leaves the following TY standalone
	res = parse(t, "LI 0 0 10 10 0\nFCJ 0 0 3 1 0 0\nTY 5 5 4 3 0 0 0 * R1\n")
	if k := kinds(res.Drawing); len(k) != 2 || k[1] != primitives.KindAdvText {
		t.Fatalf("kinds = %v, want [line text]", k)
	}
}

func TestFlushAtEndOfBuffer(t *testing.T) {
	for _, text := range []string{
		"LI 0 0 10 10 0",
		"LI 0 0 10 10 0\n",
		"PA 10 10 5 5 2 0 2",
		"MC 10 10 0 0 box\nFCJ",
	} {
		if res := parse(t, text); res.Drawing.Len() != 1 {
			t.Errorf("%q: Len = %d, want 1", text, res.Drawing.Len())
		}
	}
}

func TestOtherLineFlushesPendingText(t *testing.T) {
	res := parse(t, "MC 10 10 0 0 box\nFCJ\nTY 20 20 4 3 0 0 0 * R1\nSA 5 5 0\n")
	got := res.Drawing.Primitives()
	if len(got) != 2 || got[0].Kind() != primitives.KindMacro || got[0].Name() != "R1" {
		t.Fatalf("unexpected primitives %v", kinds(res.Drawing))
	}
}

func TestMalformedLineIsolation(t *testing.T) {
	res := parse(t, "LI 0 0 10 10 0\nRV 1 x 3 4 0\nEV 1 1 5 5 0\nSA 1\n")
	if got := kinds(res.Drawing); len(got) != 2 || got[0] != primitives.KindLine || got[1] != primitives.KindOval {
		t.Fatalf("kinds = %v, want [line oval]", got)
	}
	if len(res.Diagnostics) != 2 {
		t.Fatalf("diagnostics = %v, want 2", res.Diagnostics)
	}
	d := res.Diagnostics[0]
	if d.Line != 2 || d.Command != "RV" || !errors.Is(d, strconv.ErrSyntax) {
		t.Fatalf("first diagnostic = %v", d)
	}
	d = res.Diagnostics[1]
	if d.Line != 4 || !errors.Is(d, primitives.ErrTooFewTokens) {
		t.Fatalf("second diagnostic = %v", d)
	}

	// A failed merge drops the held back primitive
	res = parse(t, "LI 0 0 10 10 0\nFCJ x\nEV 1 1 5 5 0\n")
	if got := kinds(res.Drawing); len(got) != 1 || got[0] != primitives.KindOval {
		t.Fatalf("kinds = %v, want [oval]", got)
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Line != 2 {
		t.Fatalf("diagnostics = %v", res.Diagnostics)
	}

	// Empty interior tokens are not numbers
	res = parse(t, "LI 0  0 10 10 0")
	if res.Drawing.Len() != 0 || len(res.Diagnostics) != 1 {
		t.Fatalf("double space gave %d primitives and %v", res.Drawing.Len(), res.Diagnostics)
	}
}

func TestUnknownAndNestedMacros(t *testing.T) {
	res := parse(t, "MC 0 0 0 0 nothere\nMC 0 0 0 0 loop\nMC 50 50 0 0 box\n")
	if res.Drawing.Len() != 1 {
		t.Fatalf("Len = %d, want 1", res.Drawing.Len())
	}
	if len(res.Diagnostics) != 2 {
		t.Fatalf("diagnostics = %v", res.Diagnostics)
	}
	if !errors.Is(res.Diagnostics[0], primitives.ErrUnknownMacro) {
		t.Errorf("first diagnostic = %v", res.Diagnostics[0])
	}
	if !errors.Is(res.Diagnostics[1], primitives.ErrMacroDepth) {
		t.Errorf("second diagnostic = %v", res.Diagnostics[1])
	}
}

func TestCRLFInput(t *testing.T) {
	res := parse(t, "[FIDOCAD]\r\nLI 0 0 10 10 0\r\nFCJ 0 0 3 1 2 0\r\nSA 5 5 0\r\n")
	if got := kinds(res.Drawing); len(got) != 2 {
		t.Fatalf("kinds = %v, want [line connection]", got)
	}
	if !strings.HasPrefix(res.Drawing.Primitives()[0].String(true), "LI 0 0 10 10 0\nFCJ") {
		t.Fatalf("CRLF line lost its extension")
	}
}

func TestSortByLayer(t *testing.T) {
	p := New(nil)
	if _, err := p.ParseString("LI 0 0 10 10 3\nSA 5 5 1\nLI 0 0 20 20 1\n"); err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}
	want := "SA 5 5 1\nLI 0 0 20 20 1\nLI 0 0 10 10 3\n"
	if got := p.Text(true); got != want {
		t.Fatalf("Text = %q, want %q", got, want)
	}
}

func TestAddString(t *testing.T) {
	p := New(nil)
	if _, err := p.ParseString("SA 0 0 0"); err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}
	res, err := p.AddString("SA 5 5 0\nSA 10 10 0", true)
	if err != nil {
		t.Fatalf("AddString failed: %v", err)
	}
	if res.Added != 2 || p.Drawing().Len() != 3 || len(p.Drawing().Selected()) != 2 {
		t.Fatalf("Added %d, Len %d, selected %d", res.Added, p.Drawing().Len(), len(p.Drawing().Selected()))
	}

	if _, err := p.ParseString("SA 0 0 0"); err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}
	if p.Drawing().Len() != 1 {
		t.Fatalf("ParseString did not replace the drawing, Len = %d", p.Drawing().Len())
	}
}

func TestConfigurationPragmas(t *testing.T) {
	p := New(nil)
	res, err := p.ParseString("FJC C 3.5\nFJC A 0.3\nFJC B -1\n" +
		"FJC L 3 -16711936 0.5\nFJC N 3 My Silk\nFJC L 40 1 1\nFJC N 99 x\n")
	if err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}
	if len(res.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics %v", res.Diagnostics)
	}
	want := DocumentDefaults{ConnectionDiameter: 3.5, LineWidth: 0.3, LineWidthCircles: 0.35}
	if res.Defaults != want || p.Defaults() != want {
		t.Fatalf("Defaults = %+v, want %+v", res.Defaults, want)
	}
	l := p.Drawing().Layers[3]
	if l.Alpha != 0.5 || l.Description != "My Silk" || !l.Modified || l.Color.G != 255 {
		t.Fatalf("layer 3 = %+v", l)
	}

	wantCfg := "FJC C 3.5\nFJC L 3 -16711936 0.5\nFJC N 3 My Silk\nFJC A 0.3\n"
	if got := p.RegisterConfiguration(true); got != wantCfg {
		t.Fatalf("RegisterConfiguration = %q, want %q", got, wantCfg)
	}
	if got := p.RegisterConfiguration(false); got != "" {
		t.Fatalf("RegisterConfiguration without extensions = %q", got)
	}

	// Written pragmas read back to the same configuration
	q := New(nil)
	if _, err := q.ParseString(p.Text(true)); err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}
	if got := q.RegisterConfiguration(true); got != wantCfg {
		t.Fatalf("reread configuration = %q", got)
	}
}

func TestBadPragma(t *testing.T) {
	res := parse(t, "FJC C\nFJC L 1 x 1\nFJC A y\nSA 0 0 0\n")
	if len(res.Diagnostics) != 3 || res.Drawing.Len() != 1 {
		t.Fatalf("diagnostics %v, Len %d", res.Diagnostics, res.Drawing.Len())
	}
	if res.Defaults != DefaultDocumentDefaults() {
		t.Fatalf("Defaults changed to %+v", res.Defaults)
	}
}

func TestSplitMacros(t *testing.T) {
	lib := testLibrary()
	lib["mine.box"] = &library.MacroDesc{Key: "mine.box", Description: "\nRV 100 100 110 110 0"}
	p := New(model.New(lib, nil))

	text := "MC 50 50 0 0 mine.box\nMC 50 50 0 0 box\n"
	got, err := p.SplitMacros(text, false)
	if err != nil {
		t.Fatalf("SplitMacros failed: %v", err)
	}
	if want := "[FIDOCAD]\nRV 50 50 60 60 0\nMC 50 50 0 0 box\n"; got != want {
		t.Fatalf("SplitMacros = %q, want %q", got, want)
	}

	got, err = p.SplitMacros(text, true)
	if err != nil {
		t.Fatalf("SplitMacros failed: %v", err)
	}
	if want := "[FIDOCAD]\nRV 50 50 60 60 0\nRV 50 50 60 60 0\n"; got != want {
		t.Fatalf("SplitMacros with standard = %q, want %q", got, want)
	}

	if p.Drawing().Len() != 0 {
		t.Fatalf("SplitMacros changed the drawing")
	}
}

func TestSplitMacrosKeepsLayers(t *testing.T) {
	p := New(model.New(testLibrary(), nil))
	if _, err := p.ParseString("LI 0 0 10 10 3\n"); err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}

	got, err := p.SplitMacros("FJC L 3 -16711936 0.5\nFJC N 3 Silk\nLI 0 0 10 10 3\n", false)
	if err != nil {
		t.Fatalf("SplitMacros failed: %v", err)
	}
	if !strings.Contains(got, "FJC L 3 -16711936 0.5\n") {
		t.Fatalf("split text lost the layer pragma: %q", got)
	}
	if l := p.Drawing().Layers[3]; l.Modified || l.Description != "Silkscreen" {
		t.Fatalf("SplitMacros modified the layer table: %+v", l)
	}
	if cfg := p.RegisterConfiguration(true); cfg != "" {
		t.Fatalf("RegisterConfiguration = %q after split, want none", cfg)
	}
}

func TestSplitMacrosConcurrentWithText(t *testing.T) {
	p := New(model.New(testLibrary(), nil))
	if _, err := p.ParseString("FJC L 3 -16711936 0.5\nLI 0 0 10 10 3\nMC 50 50 0 0 box\n"); err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}
	want := p.Text(true)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := p.SplitMacros(p.Text(true), false); err != nil {
				errs <- err
			}
		}()
		go func() {
			defer wg.Done()
			p.Text(true)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("SplitMacros failed: %v", err)
	}
	if got := p.Text(true); got != want {
		t.Fatalf("Text changed after concurrent splits: %q, want %q", got, want)
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drawing.fcd")
	if err := os.WriteFile(path, []byte("[FIDOCAD]\nLI 0 0 10 10 0\nSA 5 5 0\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	p := New(nil)
	res, err := p.ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if res.Added != 2 {
		t.Fatalf("Added = %d, want 2", res.Added)
	}

	if _, err := p.ParseFile(filepath.Join(t.TempDir(), "missing.fcd")); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}

func TestTokenize(t *testing.T) {
	got := tokenize("A B\r\nC  D \n\n E")
	want := []tokenLine{
		{num: 1, tokens: []string{"A", "B"}},
		{num: 2, tokens: []string{"C", "", "D"}},
		{num: 4, tokens: []string{"", "E"}},
	}
	if len(got) != len(want) {
		t.Fatalf("tokenize gave %d lines, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i].num != want[i].num || strings.Join(got[i].tokens, "|") != strings.Join(want[i].tokens, "|") {
			t.Errorf("line %d = %d %q, want %d %q", i, got[i].num, got[i].tokens, want[i].num, want[i].tokens)
		}
	}

	long := strings.Repeat("1 ", MaxTokens+5)
	if lines := tokenize(long); len(lines[0].tokens) != MaxTokens {
		t.Fatalf("long line kept %d tokens, want %d", len(lines[0].tokens), MaxTokens)
	}
}
