package primitives

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/OpenTraceLab/OpenTraceFCD/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceFCD/pkg/library"
)

// testEnv expands macro bodies one row at a time, without text rows
func testEnv(lib library.Library) *Env {
	env := &Env{Library: lib, TextFont: DefaultTextFont, TextFontSize: DefaultFontSize}
	env.Expand = func(body string, env *Env) ([]Primitive, error) {
		var out []Primitive
		for _, line := range strings.Split(body, "\n") {
			tokens := strings.Fields(line)
			if len(tokens) == 0 {
				continue
			}
			p, err := Parse(tokens, env)
			if err != nil {
				return nil, err
			}
			out = append(out, p)
		}
		return out, nil
	}
	return env
}

func mustParse(t *testing.T, row string, env *Env) Primitive {
	t.Helper()
	p, err := Parse(strings.Fields(row), env)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", row, err)
	}
	return p
}

func TestRoundTrip(t *testing.T) {
	lib := library.New()
	lib["foo"] = &library.MacroDesc{Key: "foo", Description: "\nSA 100 100 0"}
	env := testEnv(lib)

	cases := []struct {
		in, want string
	}{
		{"LI 10 20 30 40 3", "LI 10 20 30 40 3\n"},
		{"LI 10 20 30 40 3 FCJ 2 0 3 1 1 0", "LI 10 20 30 40 3\nFCJ 2 0 3 1 1 0\n"},
		{"LI 10 20 30 40 3 FCJ 3 1 2.5 1 0 0", "LI 10 20 30 40 3\nFCJ 3 1 2.5 1 0 0\n"},
		{"BE 1 2 3 4 5 6 7 8 2", "BE 1 2 3 4 5 6 7 8 2\n"},
		{"BE 1 2 3 4 5 6 7 8 2 FCJ 1 0 3 1 2 0", "BE 1 2 3 4 5 6 7 8 2\nFCJ 1 0 3 1 2 0\n"},
		{"RV 10 10 40 30 1", "RV 10 10 40 30 1\n"},
		{"RP 10 10 40 30 1 FCJ 2 0", "RP 10 10 40 30 1\nFCJ 2 0\n"},
		{"EV 5 5 25 15 0", "EV 5 5 25 15 0\n"},
		{"EP 5 5 25 15 7 FCJ 9 0", "EP 5 5 25 15 7\nFCJ 4 0\n"},
		{"PV 10 10 20 10 20 20 0", "PV 10 10 20 10 20 20 0\n"},
		{"PP 10 10 20 10 20 20 4 FCJ 1 0", "PP 10 10 20 10 20 20 4\nFCJ 1 0\n"},
		{"CV 1 10 10 20 10 20 20 0", "CV 1 10 10 20 10 20 20 0\n"},
		{"CP 0 10 10 20 10 20 20 5", "CP 0 10 10 20 10 20 20 5\n"},
		{"PL 10 10 50 10 2 1", "PL 10 10 50 10 2 1\n"},
		{"PL 10 10 50 10 2.5 1", "PL 10 10 50 10 2.5 1\n"},
		{"PA 10 10 5 5 2 0 2", "PA 10 10 5 5 2 0 2\n"},
		{"SA 10 10 0", "SA 10 10 0\n"},
		{"SA 10 10", "SA 10 10 0\n"},
		{"SA 10 10 99", "SA 10 10 0\n"},
		{"TY 10 20 4 3 0 0 2 * Hello world", "TY 10 20 4 3 0 0 2 * Hello world\n"},
		{"TY 10 20 4 3 90 4 2 Arial++Black X", "TY 10 20 4 3 90 4 2 Arial++Black X\n"},
		{"TY 10 20 0 5000 0 0 2 * clamp", "TY 10 20 1 2000 0 0 2 * clamp\n"},
		{"TE 10 20 hello there", "TY 10 20 4 3 0 0 0 * hello there \n"},
		{"MC 10 20 1 1 FOO", "MC 10 20 1 1 foo\n"},
	}
	for _, tc := range cases {
		p := mustParse(t, tc.in, env)
		if got := p.String(true); got != tc.want {
			t.Errorf("%q: String = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	env := testEnv(library.New())
	for _, row := range []string{
		"LI 10 20 30",
		"BE 1 2 3 4 5 6 7",
		"RV 1 2 3",
		"PV 1 2 3 4",
		"CV 0 1 2 3",
		"PL 1 2 3 4",
		"PA 1 2 3 4 5",
		"SA 1",
		"TY 1 2 3 4 5 6 7",
		"TE 1 2",
		"MC 1 2 0 0",
	} {
		_, err := Parse(strings.Fields(row), env)
		if !errors.Is(err, ErrTooFewTokens) {
			t.Errorf("%q: expected ErrTooFewTokens, got %v", row, err)
		}
	}

	if _, err := Parse(strings.Fields("LI 1 2 x 4 0"), env); err == nil {
		t.Errorf("expected an error for a non numeric coordinate")
	}
	if _, err := Parse(strings.Fields("XX 1 2"), env); err == nil {
		t.Errorf("expected an error for an unknown command")
	}
	if !IsCommand("PP") || IsCommand("FCJ") {
		t.Errorf("IsCommand gave unexpected results")
	}
}

func TestAttachedText(t *testing.T) {
	l := mustParse(t, "LI 10 20 30 40 3", testEnv(nil))
	if err := l.SetNameTokens(strings.Fields("TY 15 25 4 3 0 0 3 * R1")); err != nil {
		t.Fatalf("SetNameTokens failed: %v", err)
	}
	if err := l.SetValueTokens(strings.Fields("TY 15 30 4 3 0 0 3 * 10 k")); err != nil {
		t.Fatalf("SetValueTokens failed: %v", err)
	}
	want := "LI 10 20 30 40 3\nFCJ 0 0 3 1 0 1\n" +
		"TY 15 25 4 3 0 0 3 * R1\nTY 15 30 4 3 0 0 3 * 10 k\n"
	if got := l.String(true); got != want {
		t.Fatalf("String = %q, want %q", got, want)
	}
	if got := l.String(false); !strings.HasPrefix(got, "LI 10 20 30 40 3\nTY") {
		t.Fatalf("String without extensions = %q", got)
	}

	if err := l.SetNameTokens(strings.Fields("TY 1 2")); !errors.Is(err, ErrTooFewTokens) {
		t.Fatalf("short name row gave %v", err)
	}
}

func TestDegenerateLineIsDropped(t *testing.T) {
	l := mustParse(t, "LI 10 10 10 10 0", testEnv(nil))
	if got := l.String(true); got != "" {
		t.Fatalf("String = %q, want empty", got)
	}
}

func TestDistance(t *testing.T) {
	env := testEnv(nil)
	cases := []struct {
		row    string
		px, py int
		want   int
	}{
		{"LI 0 0 100 0 0", 50, 10, 10},
		{"PL 0 0 100 0 10 0", 50, 10, 5},
		{"PL 0 0 100 0 10 0", 50, 2, 0},
		{"SA 10 10 0", 13, 14, 4},
		{"PA 10 10 6 4 2 0 0", 20, 10, 8},
		{"RP 0 0 10 10 0", 5, 5, 1},
		{"RP 0 0 10 10 0", 50, 50, 1000},
		{"RV 0 0 10 10 0", 5, 15, 5},
		{"EP 0 0 20 10 0", 10, 5, 0},
		{"EP 0 0 20 10 0", 50, 50, 1000},
		{"PP 0 0 10 0 10 10 0 10 0", 5, 5, 1},
		{"PV 0 0 10 0 10 10 0", 20, 0, 10},
	}
	for _, tc := range cases {
		p := mustParse(t, tc.row, env)
		if got := p.Distance(tc.px, tc.py); got != tc.want {
			t.Errorf("%q: Distance(%d,%d) = %d, want %d", tc.row, tc.px, tc.py, got, tc.want)
		}
	}
}

func TestCurveDistance(t *testing.T) {
	env := testEnv(nil)
	c := mustParse(t, "CV 0 0 0 50 0 100 0 0", env)
	if got := c.Distance(50, 0); got != 0 {
		t.Errorf("Distance on a straight spline = %d, want 0", got)
	}
	if got := c.Distance(50, 20); got != 20 {
		t.Errorf("Distance from a straight spline = %d, want 20", got)
	}

	single := newComplexCurveAt(false, false, 0, NewArrow(), 0, "", DefaultFontSize)
	single.AddPoint(10, 10)
	if got := single.Distance(13, 14); got != 5 {
		t.Errorf("Distance to a single point curve = %d, want 5", got)
	}
	if got := single.String(true); got != "" {
		t.Errorf("single point curve String = %q, want empty", got)
	}
}

func TestSplineThroughControlPoints(t *testing.T) {
	x := []float64{0, 10, 30, 35}
	cc := naturalCubic(len(x)-1, x)
	if len(cc) != 3 {
		t.Fatalf("len = %d, want 3", len(cc))
	}
	for i, k := range cc {
		if math.Abs(k.eval(0)-x[i]) > 1e-9 || math.Abs(k.eval(1)-x[i+1]) > 1e-9 {
			t.Errorf("segment %d does not join %v and %v", i, x[i], x[i+1])
		}
	}

	closed := naturalCubicClosed(len(x)-1, x)
	if len(closed) != 4 {
		t.Fatalf("closed len = %d, want 4", len(closed))
	}
	if math.Abs(closed[3].eval(1)-x[0]) > 1e-4 {
		t.Errorf("closed spline does not return to the first point: %v", closed[3].eval(1))
	}
}

func TestCurveSamples(t *testing.T) {
	c := mustParse(t, "CV 0 0 0 50 20 100 0 0", testEnv(nil)).(*ComplexCurve)
	pp := c.samples(geom.NewMapCoordinates())
	if len(pp) != 2*CurveSteps+1 {
		t.Fatalf("len(samples) = %d, want %d", len(pp), 2*CurveSteps+1)
	}
	last := pp[len(pp)-1]
	if math.Abs(last.X-100) > 1e-9 || math.Abs(last.Y) > 1e-9 {
		t.Fatalf("last sample = %+v", last)
	}
}

func TestTextDistance(t *testing.T) {
	txt := mustParse(t, "TY 10 20 4 3 0 0 0 * Hello", testEnv(nil))
	if got := txt.Distance(11, 21); got != 0 {
		t.Errorf("Distance inside the text = %d, want 0", got)
	}
	if got := txt.Distance(500, 500); got != math.MaxInt32/2 {
		t.Errorf("Distance outside the text = %d", got)
	}
}

func TestTextRotateMirror(t *testing.T) {
	txt := mustParse(t, "TY 0 0 4 3 0 0 0 * A", testEnv(nil)).(*AdvText)
	txt.Rotate(true, 0, 0)
	if txt.Orientation() != 90 {
		t.Fatalf("orientation after ccw rotation = %d", txt.Orientation())
	}
	txt.Mirror(0)
	if txt.Style()&TextMirrored == 0 {
		t.Fatalf("mirror bit not set")
	}
	txt.Rotate(true, 0, 0)
	if txt.Orientation() != 0 {
		t.Fatalf("mirrored ccw rotation gave %d, want 0", txt.Orientation())
	}
}

func TestTransforms(t *testing.T) {
	env := testEnv(nil)

	l := mustParse(t, "LI 10 0 20 0 0", env)
	l.Move(5, 5)
	l.Mirror(0)
	if got := l.String(true); got != "LI -15 5 -25 5 0\n" {
		t.Fatalf("moved and mirrored line = %q", got)
	}
	l.Rotate(false, 0, 0)
	if got := l.String(true); got != "LI -5 -15 -5 -25 0\n" {
		t.Fatalf("rotated line = %q", got)
	}

	pad := mustParse(t, "PA 0 0 10 4 2 1 0", env)
	pad.Rotate(true, 0, 0)
	if got := pad.String(true); got != "PA 0 0 4 10 2 1 0\n" {
		t.Fatalf("rotated pad = %q", got)
	}
}

func TestSelectRect(t *testing.T) {
	l := mustParse(t, "LI 10 10 20 20 0", testEnv(nil))
	if l.SelectRect(0, 0, 5, 5) || l.Selected() {
		t.Fatalf("line selected by a far rectangle")
	}
	if !l.SelectRect(15, 15, 10, 10) || !l.Selected() {
		t.Fatalf("line not selected")
	}
}

func boxLibrary() library.Library {
	lib := library.New()
	lib["box"] = &library.MacroDesc{Key: "box", Description: "\nRV 100 100 110 110 0"}
	lib["mine.box"] = &library.MacroDesc{Key: "mine.box", Description: "\nRV 100 100 110 110 0"}
	lib["loop"] = &library.MacroDesc{Key: "loop", Description: "\nMC 100 100 0 0 loop"}
	return lib
}

func TestMacroDistance(t *testing.T) {
	env := testEnv(boxLibrary())

	m := mustParse(t, "MC 50 50 0 0 box", env)
	if got := m.Distance(55, 50); got != 0 {
		t.Errorf("Distance on the body = %d, want 0", got)
	}
	if got := m.Distance(55, 40); got != 10 {
		t.Errorf("Distance from the body = %d, want 10", got)
	}

	r := mustParse(t, "MC 50 50 1 0 box", env)
	if got := r.Distance(50, 55); got != 0 {
		t.Errorf("Distance on the rotated body = %d, want 0", got)
	}

	if m.Layer() != 0 || !m.ContainsLayer(0) || m.ContainsLayer(3) || m.MaxLayer() != 0 {
		t.Errorf("unexpected macro layers")
	}
}

func TestMacroErrors(t *testing.T) {
	env := testEnv(boxLibrary())

	_, err := Parse(strings.Fields("MC 0 0 0 0 nope"), env)
	if !errors.Is(err, ErrUnknownMacro) || !strings.Contains(err.Error(), "'nope'") {
		t.Fatalf("unknown macro gave %v", err)
	}

	_, err = Parse(strings.Fields("MC 0 0 0 0 loop"), env)
	if !errors.Is(err, ErrMacroDepth) {
		t.Fatalf("recursive macro gave %v", err)
	}
}

func TestMacroRotateMirror(t *testing.T) {
	m := mustParse(t, "MC 10 0 0 0 box", testEnv(boxLibrary())).(*Macro)
	m.Rotate(true, 0, 0)
	if m.Orientation() != 3 {
		t.Fatalf("orientation after ccw rotation = %d, want 3", m.Orientation())
	}
	m.Mirror(0)
	if !m.Mirrored() {
		t.Fatalf("mirror flag not set")
	}
	if got := m.String(true); got != "MC 0 -10 3 1 box\n" {
		t.Fatalf("String = %q", got)
	}
}

func TestExporter(t *testing.T) {
	env := testEnv(boxLibrary())
	cs := geom.NewMapCoordinates()

	var buf bytes.Buffer
	e := NewExporter(&buf)
	if err := e.Start(""); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	for _, row := range []string{
		"LI 10 20 30 40 3",
		"RP 0 0 10 10 2",
		"SA 5 5 1",
		"PA 10 10 6 4 2 0 2",
		"MC 50 50 1 0 box",
		"MC 50 50 0 0 mine.box",
	} {
		if err := mustParse(t, row, env).Export(cs, e); err != nil {
			t.Fatalf("Export(%q) failed: %v", row, err)
		}
	}
	want := "[FIDOCAD]\n" +
		"LI 10 20 30 40 3\n" +
		"RP 0 0 10 10 2\n" +
		"SA 5 5 1\n" +
		"PA 10 10 6 4 2 0 2\n" +
		"MC 50 50 1 0 box\n" +
		"RV 50 50 60 60 0\n"
	if got := buf.String(); got != want {
		t.Fatalf("export = %q, want %q", got, want)
	}

	buf.Reset()
	e.SplitStandard = true
	if err := mustParse(t, "MC 50 50 0 0 box", env).Export(cs, e); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if got := buf.String(); got != "RV 50 50 60 60 0\n" {
		t.Fatalf("split export = %q", got)
	}
}

func TestExporterPadHoleOnly(t *testing.T) {
	var buf bytes.Buffer
	e := NewExporter(&buf)
	pad := mustParse(t, "PA 10 10 6 4 2 0 2", testEnv(nil)).(*PCBPad)
	pad.OnlyHole = true
	if err := pad.Export(geom.NewMapCoordinates(), e); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("hole only pad exported %q", buf.String())
	}
}

func TestExporterStandardMacros(t *testing.T) {
	e := NewExporter(&bytes.Buffer{})
	for key, want := range map[string]bool{
		"res":            true,
		"pcb.dip08":      true,
		"ihram.x":        true,
		"mine.box":       false,
		"ey_libraries.a": true,
	} {
		if got := e.isStandardMacro(key); got != want {
			t.Errorf("isStandardMacro(%q) = %v", key, got)
		}
	}
	e.Extensions = false
	if e.isStandardMacro("pcb.dip08") {
		t.Errorf("pcb macros are not standard without extensions")
	}
}

func TestTrack(t *testing.T) {
	cs := geom.NewMapCoordinates()
	mustParse(t, "LI 10 20 30 5 0", testEnv(nil)).Track(cs)
	if cs.XMin() != 10 || cs.XMax() != 30 || cs.YMin() != 5 || cs.YMax() != 20 {
		t.Fatalf("tracked %s", cs)
	}

	cs = geom.NewMapCoordinates()
	mustParse(t, "MC 50 50 0 0 box", testEnv(boxLibrary())).Track(cs)
	if cs.XMin() != 50 || cs.XMax() != 60 || cs.YMin() != 50 || cs.YMax() != 60 {
		t.Fatalf("tracked macro %s", cs)
	}
}

func TestMeasureText(t *testing.T) {
	if m := measureText("abc", 0); m != (metrics{}) {
		t.Fatalf("zero size gave %+v", m)
	}
	one := measureText("a", 20)
	two := measureText("aa", 20)
	if one.width <= 0 || two.width <= one.width || one.ascent <= 0 {
		t.Fatalf("unexpected metrics %+v %+v", one, two)
	}
}
