package primitives

import (
	"fmt"
	"math"
	"strings"

	"github.com/OpenTraceLab/OpenTraceFCD/pkg/geom"
)

// Text style bits
const (
	TextBold     = 1
	TextItalic   = 2
	TextMirrored = 4
)

// Text size limits, in logical units
const (
	TextMinSize = 1
	TextMaxSize = 2000
)

// AdvText is a text string, "TY x y sy sx o style layer font text". The
// legacy "TE x y text" form is read too.
type AdvText struct {
	base
	six, siy int
	o        int // degrees
	style    int
	txt      string
}

func NewAdvText() *AdvText {
	return &AdvText{base: newBase(1, false, DefaultTextFont, DefaultFontSize), six: 3, siy: 4}
}

func newAdvTextAt(x, y, sx, sy int, font string, o, style int, txt string, layer int) *AdvText {
	t := NewAdvText()
	t.points[0] = geom.Point{X: x, Y: y}
	t.six, t.siy = sx, sy
	t.checkSizes()
	t.o, t.style, t.txt = o, style, txt
	if font != "" {
		t.font = font
	}
	t.SetLayer(layer)
	return t
}

func (t *AdvText) Kind() Kind { return KindAdvText }

func (t *AdvText) Text() string { return t.txt }

func (t *AdvText) SetText(s string) { t.txt = s }

// Size returns the horizontal and vertical text size
func (t *AdvText) Size() (int, int) { return t.six, t.siy }

// Orientation returns the rotation angle in degrees
func (t *AdvText) Orientation() int { return t.o }

func (t *AdvText) Style() int { return t.style }

func (t *AdvText) mirrored() bool { return t.style&TextMirrored != 0 }

func (t *AdvText) checkSizes() {
	t.six = min(max(t.six, TextMinSize), TextMaxSize)
	t.siy = min(max(t.siy, TextMinSize), TextMaxSize)
}

func (t *AdvText) ParseTokens(tokens []string) error {
	nn := len(tokens)
	switch tokens[0] {
	case "TY":
		if nn < 9 {
			return fmt.Errorf("TY: %w", ErrTooFewTokens)
		}
		c, err := parseCoords(tokens, 1, 2)
		if err != nil {
			return fmt.Errorf("TY: %w", err)
		}
		sy, err := parseFloat(tokens[3], "text size")
		if err != nil {
			return fmt.Errorf("TY: %w", err)
		}
		sx, err := parseFloat(tokens[4], "text size")
		if err != nil {
			return fmt.Errorf("TY: %w", err)
		}
		o, err := parseInt(tokens[5], "orientation")
		if err != nil {
			return fmt.Errorf("TY: %w", err)
		}
		style, err := parseInt(tokens[6], "style")
		if err != nil {
			return fmt.Errorf("TY: %w", err)
		}
		t.points[0] = geom.Point{X: c[0], Y: c[1]}
		t.siy, t.six = geom.Round(sy), geom.Round(sx)
		t.checkSizes()
		t.o, t.style = o, style
		t.parseLayer(tokens[7])
		t.font = fontFromToken(tokens[8])
		t.txt = strings.Join(tokens[9:], " ")
	case "TE":
		if nn < 4 {
			return fmt.Errorf("TE: %w", ErrTooFewTokens)
		}
		c, err := parseCoords(tokens, 1, 2)
		if err != nil {
			return fmt.Errorf("TE: %w", err)
		}
		t.points[0] = geom.Point{X: c[0], Y: c[1]}
		t.six, t.siy, t.o, t.style = 3, 4, 0, 0
		var sb strings.Builder
		for _, tok := range tokens[3:] {
			sb.WriteString(tok)
			sb.WriteByte(' ')
		}
		t.txt = sb.String()
		t.layer = 0
	default:
		return fmt.Errorf("%s: not a text command", tokens[0])
	}
	return nil
}

func (t *AdvText) String(bool) string {
	p := t.points[0]
	return fmt.Sprintf("TY %d %d %d %d %d %d %d %s %s\n", p.X, p.Y, t.siy, t.six,
		t.o, t.style, t.layer, fontToken(t.font), t.txt)
}

// extent holds the text box size, vertically scaled by the aspect ratio
func (t *AdvText) extent(size float64, factor float64) (h, th, w int) {
	m := measureText(t.txt, size)
	h, th, w = m.ascent, m.ascent+m.descent, m.width
	if factor != 1 {
		h = geom.Round(float64(h) * factor)
		th = geom.Round(float64(th) * factor)
	}
	return h, th, w
}

func (t *AdvText) Distance(px, py int) int {
	p := t.points[0]
	factor := 1.0
	if t.siy/t.six != 1 {
		factor = float64(t.siy) * 22 / 40 / float64(t.six)
	}
	_, th, w := t.extent(float64(int(float64(t.six)*12/7+.5)), factor)

	o := t.o
	if t.mirrored() {
		o = -o
		w = -w
	}
	if o == 0 {
		if geom.PointInRectangle(min(p.X, p.X+w), p.Y, absInt(w), th, px, py) {
			return 0
		}
		return math.MaxInt32 / 2
	}

	si := math.Sin(float64(o) * math.Pi / 180)
	co := math.Cos(float64(o) * math.Pi / 180)
	x, y := float64(p.X), float64(p.Y)
	fw, fth := float64(w), float64(th)
	xp := []int{p.X, int(x + fth*si), int(x + fth*si + fw*co), int(x + fw*co)}
	yp := []int{p.Y, int(y + fth*co), int(y + fth*co - fw*si), int(y - fw*si)}
	if geom.PointInPolygon(xp, yp, float64(px), float64(py)) {
		return 0
	}
	return math.MaxInt32 / 2
}

func (t *AdvText) Track(cs *geom.MapCoordinates) {
	if t.txt == "" {
		return
	}
	xa, ya := mapPoint(cs, t.points[0])

	six, siy := t.six, t.siy
	if six == 0 || siy == 0 {
		six, siy = 7, 10
	}
	orientation := t.o
	mirror := t.mirrored()
	if mirror {
		orientation = -orientation
	}
	orientation -= cs.Orientation() * 90
	if cs.Mirror() {
		mirror = !mirror
		orientation = -orientation
	}

	size := float64(int(float64(six)*12*cs.YMagnitude()/7 + .5))
	xyf := 1.0
	if siy/six != 1 {
		xyf = float64(siy) / float64(six) * 22 / 40
	}
	m := measureText(t.txt, size)
	h, th, w := m.ascent, m.ascent+m.descent, m.width

	fx, fy := float64(xa), float64(ya)
	if orientation == 0 {
		if mirror {
			cs.TrackPoint(fx-float64(w), fy)
			cs.TrackPoint(fx, fy+float64(int(float64(th)*xyf)))
		} else {
			cs.TrackPoint(fx+float64(w), fy)
			cs.TrackPoint(fx, fy+float64(int(float64(h)*xyf)))
		}
		return
	}

	ang := orientation
	if mirror {
		ang = -orientation
	}
	si := math.Sin(float64(ang) * math.Pi / 180)
	co := math.Cos(float64(ang) * math.Pi / 180)
	sx := 1.0
	if mirror {
		sx = -1
	}
	fth := float64(th) * xyf
	fw := float64(w)
	cs.TrackPoint(fx+sx*fth*si, fy+fth*co)
	cs.TrackPoint(fx+sx*(fth*si+fw*co), fy+fth*co-fw*si)
	cs.TrackPoint(fx+sx*fw*co, fy-fw*si)
}

func (t *AdvText) Export(cs *geom.MapCoordinates, e *Exporter) error {
	x, y := mapPoint(cs, t.points[0])
	sx := math.Abs(cs.MapXr(float64(t.six), float64(t.six)) - cs.MapXr(0, 0))
	sy := math.Abs(cs.MapYr(float64(t.siy), float64(t.siy)) - cs.MapYr(0, 0))
	return e.ExportAdvText(x, y, int(sx), int(sy), t.font, t.style,
		t.o-cs.Orientation()*90, t.layer, t.txt)
}

// Rotate turns the text by a quarter, in the opposite sense when mirrored
func (t *AdvText) Rotate(ccw bool, cx, cy int) {
	t.base.Rotate(ccw, cx, cy)
	po := t.o / 90
	if t.mirrored() {
		ccw = !ccw
	}
	if ccw {
		po = (po + 1) % 4
	} else {
		po = (po + 3) % 4
	}
	t.o = 90 * po
}

func (t *AdvText) Mirror(xPos int) {
	t.base.Mirror(xPos)
	t.style ^= TextMirrored
}
