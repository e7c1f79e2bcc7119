package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceFCD/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceFCD/pkg/layers"
	"github.com/OpenTraceLab/OpenTraceFCD/pkg/primitives"
)

// DocumentDefaults are the drawing-wide sizes set by FJC pragmas
type DocumentDefaults struct {
	ConnectionDiameter float64 `yaml:"connection_diameter" json:"connection_diameter" msgpack:"connection_diameter"`
	LineWidth          float64 `yaml:"line_width" json:"line_width" msgpack:"line_width"`
	LineWidthCircles   float64 `yaml:"line_width_circles" json:"line_width_circles" msgpack:"line_width_circles"`
}

// DefaultDocumentDefaults returns the sizes used when a drawing sets none
func DefaultDocumentDefaults() DocumentDefaults {
	return DocumentDefaults{
		ConnectionDiameter: 2.0,
		LineWidth:          0.5,
		LineWidthCircles:   0.35,
	}
}

// sameSize compares two sizes the way written pragmas are compared
func sameSize(a, b float64) bool {
	return math.Abs(a-b) <= 1e-5
}

// layerChange is an FJC L or FJC N pragma waiting to be applied
type layerChange struct {
	index int
	color *int32
	alpha float32
	name  *string
}

// pragmas collects the FJC lines of one pass
type pragmas struct {
	diameter    float64
	lineWidth   float64
	circleWidth float64
	layers      []layerChange
}

// parse reads one FJC row
func (pr *pragmas) parse(tokens []string) error {
	if len(tokens) < 3 {
		return fmt.Errorf("FJC: %w", primitives.ErrTooFewTokens)
	}
	switch tokens[1] {
	case "C", "A", "B":
		v, err := strconv.ParseFloat(tokens[2], 64)
		if err != nil {
			return fmt.Errorf("FJC %s: %w", tokens[1], err)
		}
		switch tokens[1] {
		case "C":
			pr.diameter = v
		case "A":
			pr.lineWidth = v
		case "B":
			pr.circleWidth = v
		}
	case "L":
		if len(tokens) < 5 {
			return fmt.Errorf("FJC L: %w", primitives.ErrTooFewTokens)
		}
		idx, err := strconv.Atoi(tokens[2])
		if err != nil {
			return fmt.Errorf("FJC L layer: %w", err)
		}
		rgb, err := strconv.ParseInt(tokens[3], 10, 32)
		if err != nil {
			return fmt.Errorf("FJC L colour: %w", err)
		}
		alpha, err := strconv.ParseFloat(tokens[4], 32)
		if err != nil {
			return fmt.Errorf("FJC L alpha: %w", err)
		}
		c := int32(rgb)
		pr.layers = append(pr.layers, layerChange{index: idx, color: &c, alpha: float32(alpha)})
	case "N":
		idx, err := strconv.Atoi(tokens[2])
		if err != nil {
			return fmt.Errorf("FJC N layer: %w", err)
		}
		name := strings.Join(tokens[3:], " ")
		pr.layers = append(pr.layers, layerChange{index: idx, name: &name})
	}
	return nil
}

// apply writes the collected pragmas into the defaults and the layer
// table. Changes to layers that do not exist are ignored.
func (pr *pragmas) apply(d *DocumentDefaults, ll []*layers.Layer) {
	if pr.diameter > 0 {
		d.ConnectionDiameter = pr.diameter
	}
	if pr.lineWidth > 0 {
		d.LineWidth = pr.lineWidth
	}
	if pr.circleWidth > 0 {
		d.LineWidthCircles = pr.circleWidth
	}
	for _, c := range pr.layers {
		if c.index < 0 || c.index >= len(ll) {
			continue
		}
		l := ll[c.index]
		if c.color != nil {
			l.SetColorARGB(*c.color, c.alpha)
		}
		if c.name != nil {
			l.SetDescription(*c.name)
		}
	}
}

// writePragmas writes the FJC lines describing d and ll. Nothing is
// written for values equal to the standard ones.
func writePragmas(d DocumentDefaults, ll []*layers.Layer) string {
	def := DefaultDocumentDefaults()
	var s strings.Builder

	if !sameSize(def.ConnectionDiameter, d.ConnectionDiameter) {
		fmt.Fprintf(&s, "FJC C %s\n", geom.FormatDouble(d.ConnectionDiameter))
	}
	for i, l := range ll {
		if !l.Modified {
			continue
		}
		fmt.Fprintf(&s, "FJC L %d %d %s\n", i, layers.ARGB(l.Color), geom.FormatFloat32(l.Alpha))
		if l.Description != layers.StandardName(i) {
			fmt.Fprintf(&s, "FJC N %d %s\n", i, l.Description)
		}
	}
	if !sameSize(def.LineWidth, d.LineWidth) {
		fmt.Fprintf(&s, "FJC A %s\n", geom.FormatDouble(d.LineWidth))
	}
	if !sameSize(def.LineWidthCircles, d.LineWidthCircles) {
		fmt.Fprintf(&s, "FJC B %s\n", geom.FormatDouble(d.LineWidthCircles))
	}
	return s.String()
}
