package geom

import (
	"fmt"
	"log"
	"math"
)

const (
	MinMagnitude = 0.25
	MaxMagnitude = 100.0

	// MacroOffset is the logical origin of every macro design frame
	MacroOffset = 100.0
)

// mapState is everything Push saves and Pop restores
type mapState struct {
	xCenter    float64
	yCenter    float64
	xMagnitude float64
	yMagnitude float64

	orientation int  // quarter turns, 0..3
	mirror      bool // horizontal mirror, only honoured inside a macro
	isMacro     bool // apply the macro-local transform
	snapActive  bool

	// Extrema of every tracked pixel coordinate
	xMin, xMax int
	yMin, yMax int

	xGridStep int
	yGridStep int
}

// MapCoordinates converts logical drawing units (5 mil each) into pixels.
// It can zoom, pan, mirror and rotate by quarter turns, and it records
// the extrema of every point it maps while tracking is on, which is how
// drawing sizes are computed.
//
// A MapCoordinates is not safe for concurrent use.
type MapCoordinates struct {
	mapState
	stack []mapState
}

// NewMapCoordinates creates an identity mapper with a 5 unit snap grid
func NewMapCoordinates() *MapCoordinates {
	m := &MapCoordinates{}
	m.xMagnitude = 1.0
	m.yMagnitude = 1.0
	m.xGridStep = 5
	m.yGridStep = 5
	m.snapActive = true
	m.ResetMinMax()
	return m
}

// Push saves the whole state, extrema included
func (m *MapCoordinates) Push() {
	m.stack = append(m.stack, m.mapState)
}

// Pop restores the last pushed state. An empty stack is left alone.
func (m *MapCoordinates) Pop() {
	if len(m.stack) == 0 {
		log.Printf("Warning: coordinate state stack is empty, nothing to pop")
		return
	}
	m.mapState = m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
}

// Depth returns the number of pushed states
func (m *MapCoordinates) Depth() int {
	return len(m.stack)
}

// SetOrientation sets the quarter-turn count, clamped to 0..3
func (m *MapCoordinates) SetOrientation(o int) {
	m.orientation = min(max(o, 0), 3)
}

func (m *MapCoordinates) Orientation() int { return m.orientation }

// SetMirror sets the mirroring state used by the macro transform
func (m *MapCoordinates) SetMirror(mirror bool) { m.mirror = mirror }

func (m *MapCoordinates) Mirror() bool { return m.mirror }

// SetMacro switches the macro-local transform on or off
func (m *MapCoordinates) SetMacro(isMacro bool) { m.isMacro = isMacro }

func (m *MapCoordinates) IsMacro() bool { return m.isMacro }

func (m *MapCoordinates) SetSnap(s bool) { m.snapActive = s }

func (m *MapCoordinates) Snap() bool { return m.snapActive }

// SetXGridStep sets the horizontal snap step. Non-positive steps are ignored.
func (m *MapCoordinates) SetXGridStep(xg int) {
	if xg > 0 {
		m.xGridStep = xg
	}
}

// SetYGridStep sets the vertical snap step. Non-positive steps are ignored.
func (m *MapCoordinates) SetYGridStep(yg int) {
	if yg > 0 {
		m.yGridStep = yg
	}
}

func (m *MapCoordinates) XGridStep() int { return m.xGridStep }

func (m *MapCoordinates) YGridStep() int { return m.yGridStep }

func clampMagnitude(v float64) float64 {
	if math.Abs(v) < MinMagnitude {
		v = MinMagnitude
	}
	if math.Abs(v) > MaxMagnitude {
		v = MaxMagnitude
	}
	return v
}

// SetXMagnitude sets the horizontal zoom. Its absolute value is kept
// within [MinMagnitude, MaxMagnitude].
func (m *MapCoordinates) SetXMagnitude(xm float64) {
	m.xMagnitude = clampMagnitude(xm)
}

// SetYMagnitude sets the vertical zoom. Its absolute value is kept
// within [MinMagnitude, MaxMagnitude].
func (m *MapCoordinates) SetYMagnitude(ym float64) {
	m.yMagnitude = clampMagnitude(ym)
}

// SetMagnitudes sets both zoom factors with clamping
func (m *MapCoordinates) SetMagnitudes(xm, ym float64) {
	m.SetXMagnitude(xm)
	m.SetYMagnitude(ym)
}

// SetXMagnitudeNoCheck sets the horizontal zoom without any clamping
func (m *MapCoordinates) SetXMagnitudeNoCheck(xm float64) { m.xMagnitude = xm }

// SetYMagnitudeNoCheck sets the vertical zoom without any clamping
func (m *MapCoordinates) SetYMagnitudeNoCheck(ym float64) { m.yMagnitude = ym }

// SetMagnitudesNoCheck sets both zoom factors without any clamping
func (m *MapCoordinates) SetMagnitudesNoCheck(xm, ym float64) {
	m.xMagnitude = xm
	m.yMagnitude = ym
}

func (m *MapCoordinates) XMagnitude() float64 { return m.xMagnitude }

func (m *MapCoordinates) YMagnitude() float64 { return m.yMagnitude }

// SetXCenter sets the horizontal shift in pixels
func (m *MapCoordinates) SetXCenter(x float64) { m.xCenter = x }

// SetYCenter sets the vertical shift in pixels
func (m *MapCoordinates) SetYCenter(y float64) { m.yCenter = y }

func (m *MapCoordinates) XCenter() float64 { return m.xCenter }

func (m *MapCoordinates) YCenter() float64 { return m.yCenter }

// ResetMinMax invalidates the tracked extrema
func (m *MapCoordinates) ResetMinMax() {
	m.xMin, m.yMin = math.MaxInt32, math.MaxInt32
	m.xMax, m.yMax = math.MinInt32, math.MinInt32
}

func (m *MapCoordinates) XMin() int { return m.xMin }
func (m *MapCoordinates) XMax() int { return m.xMax }
func (m *MapCoordinates) YMin() int { return m.yMin }
func (m *MapCoordinates) YMax() int { return m.yMax }

// Bounds returns the tracked extrema as a rectangle. It is empty when
// nothing has been tracked since the last reset.
func (m *MapCoordinates) Bounds() Rect {
	return Rect{
		Min: Point{X: m.xMin, Y: m.yMin},
		Max: Point{X: m.xMax, Y: m.yMax},
	}
}

// MapX maps a logical point to a horizontal pixel position and tracks it
func (m *MapCoordinates) MapX(x, y float64) int {
	return m.MapXi(x, y, true)
}

// MapY maps a logical point to a vertical pixel position and tracks it
func (m *MapCoordinates) MapY(x, y float64) int {
	return m.MapYi(x, y, true)
}

// MapXi is MapX with optional tracking
func (m *MapCoordinates) MapXi(x, y float64, track bool) int {
	v := Round(m.MapXr(x, y))
	if track {
		if v < m.xMin {
			m.xMin = v
		}
		if v > m.xMax {
			m.xMax = v
		}
	}
	return v
}

// MapYi is MapY with optional tracking
func (m *MapCoordinates) MapYi(x, y float64, track bool) int {
	v := Round(m.MapYr(x, y))
	if track {
		if v < m.yMin {
			m.yMin = v
		}
		if v > m.yMax {
			m.yMax = v
		}
	}
	return v
}

// MapXr returns the unrounded horizontal pixel position, without tracking.
// Orientation and mirroring only apply inside a macro, where coordinates
// are relative to the design origin (100,100).
func (m *MapCoordinates) MapXr(x, y float64) float64 {
	var vx float64
	if m.isMacro {
		x -= MacroOffset
		y -= MacroOffset
		if m.mirror {
			switch m.orientation {
			case 1:
				vx = y * m.yMagnitude
			case 2:
				vx = x * m.xMagnitude
			case 3:
				vx = -y * m.yMagnitude
			default:
				vx = -x * m.xMagnitude
			}
		} else {
			switch m.orientation {
			case 1:
				vx = -y * m.yMagnitude
			case 2:
				vx = -x * m.xMagnitude
			case 3:
				vx = y * m.yMagnitude
			default:
				vx = x * m.xMagnitude
			}
		}
	} else {
		vx = x * m.xMagnitude
	}
	return vx + m.xCenter
}

// MapYr returns the unrounded vertical pixel position, without tracking
func (m *MapCoordinates) MapYr(x, y float64) float64 {
	var vy float64
	if m.isMacro {
		x -= MacroOffset
		y -= MacroOffset
		switch m.orientation {
		case 0:
			vy = y * m.yMagnitude
		case 1:
			vy = x * m.xMagnitude
		case 2:
			vy = -y * m.yMagnitude
		case 3:
			vy = -x * m.xMagnitude
		}
	} else {
		vy = y * m.yMagnitude
	}
	return vy + m.yCenter
}

// TrackPoint adds a point given in pixels to the extrema. Coordinates are
// truncated toward zero.
func (m *MapCoordinates) TrackPoint(x, y float64) {
	if y < float64(m.yMin) {
		m.yMin = int(y)
	}
	if y > float64(m.yMax) {
		m.yMax = int(y)
	}
	if x < float64(m.xMin) {
		m.xMin = int(x)
	}
	if x > float64(m.xMax) {
		m.xMax = int(x)
	}
}

// UnmapXNoSnap converts a horizontal pixel position back to logical units
func (m *MapCoordinates) UnmapXNoSnap(x int) int {
	return Round((float64(x) - m.xCenter) / m.xMagnitude)
}

// UnmapYNoSnap converts a vertical pixel position back to logical units
func (m *MapCoordinates) UnmapYNoSnap(y int) int {
	return Round((float64(y) - m.yCenter) / m.yMagnitude)
}

// UnmapXSnap is UnmapXNoSnap followed by grid snapping when enabled
func (m *MapCoordinates) UnmapXSnap(x int) int {
	xc := m.UnmapXNoSnap(x)
	if m.snapActive {
		xc = Round(float64(xc)/float64(m.xGridStep)) * m.xGridStep
	}
	return xc
}

// UnmapYSnap is UnmapYNoSnap followed by grid snapping when enabled
func (m *MapCoordinates) UnmapYSnap(y int) int {
	yc := m.UnmapYNoSnap(y)
	if m.snapActive {
		yc = Round(float64(yc)/float64(m.yGridStep)) * m.yGridStep
	}
	return yc
}

// MacroFrame returns a child mapper for drawing the body of a macro placed
// at (x,y) with orientation o and mirror flag. The child shares the
// (clamped) magnitudes of m, is centered on the mapped insertion point, and starts
// with empty extrema.
func (m *MapCoordinates) MacroFrame(x, y float64, o int, mirror bool) *MapCoordinates {
	c := NewMapCoordinates()
	c.SetMagnitudes(m.xMagnitude, m.yMagnitude)
	c.xCenter = m.MapXr(x, y)
	c.yCenter = m.MapYr(x, y)
	c.SetOrientation((o + m.orientation) % 4)
	c.mirror = mirror != m.mirror
	c.isMacro = true
	return c
}

// MergeBounds tracks the extrema of a child mapper into m, if the child
// tracked anything at all.
func (m *MapCoordinates) MergeBounds(c *MapCoordinates) {
	if c.xMax > c.xMin && c.yMax > c.yMin {
		m.TrackPoint(float64(c.xMax), float64(c.yMax))
		m.TrackPoint(float64(c.xMin), float64(c.yMin))
	}
}

// String dumps the whole state, for debugging
func (m *MapCoordinates) String() string {
	return fmt.Sprintf("[xCenter=%s|yCenter=%s|xMagnitude=%s|yMagnitude=%s"+
		"|orientation=%d|mirror=%t|isMacro=%t|snapActive=%t"+
		"|xMin=%d|xMax=%d|yMin=%d|yMax=%d|xGridStep=%d|yGridStep=%d]",
		FormatDouble(m.xCenter), FormatDouble(m.yCenter),
		FormatDouble(m.xMagnitude), FormatDouble(m.yMagnitude),
		m.orientation, m.mirror, m.isMacro, m.snapActive,
		m.xMin, m.xMax, m.yMin, m.yMax, m.xGridStep, m.yGridStep)
}
