// Package model holds a FidoCadJ drawing: its primitives, the macro
// library they refer to and the layer table.
package model

import (
	"math"
	"sort"

	"github.com/OpenTraceLab/OpenTraceFCD/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceFCD/pkg/layers"
	"github.com/OpenTraceLab/OpenTraceFCD/pkg/library"
	"github.com/OpenTraceLab/OpenTraceFCD/pkg/primitives"
)

// Drawing is an ordered list of primitives with the library and layers
// they are drawn with. A Drawing is not safe for concurrent use, the
// parser serializes its own passes.
type Drawing struct {
	prims []primitives.Primitive

	Library library.Library
	Layers  []*layers.Layer

	// Font of the name and value text of new primitives
	TextFont     string
	TextFontSize int
}

// New creates an empty drawing. A nil library or layer table is replaced
// by an empty library and the standard layers.
func New(lib library.Library, ll []*layers.Layer) *Drawing {
	if lib == nil {
		lib = library.New()
	}
	if ll == nil {
		ll = layers.Standard()
	}
	return &Drawing{
		Library:      lib,
		Layers:       ll,
		TextFont:     primitives.DefaultTextFont,
		TextFontSize: primitives.DefaultFontSize,
	}
}

// Primitives returns a copy of the primitive list.
func (d *Drawing) Primitives() []primitives.Primitive {
	out := make([]primitives.Primitive, len(d.prims))
	copy(out, d.prims)
	return out
}

func (d *Drawing) Len() int { return len(d.prims) }

// Add appends p, optionally selected.
func (d *Drawing) Add(p primitives.Primitive, selected bool) {
	p.SetSelected(selected)
	d.prims = append(d.prims, p)
}

// Remove deletes p, compared by identity, and reports whether it was
// present.
func (d *Drawing) Remove(p primitives.Primitive) bool {
	for i, q := range d.prims {
		if q == p {
			d.prims = append(d.prims[:i], d.prims[i+1:]...)
			return true
		}
	}
	return false
}

// Clear removes every primitive, keeping the library and layers.
func (d *Drawing) Clear() {
	d.prims = nil
}

// SortByLayer orders the primitives by layer, keeping the file order
// within a layer.
func (d *Drawing) SortByLayer() {
	sort.SliceStable(d.prims, func(i, j int) bool {
		return d.prims[i].Layer() < d.prims[j].Layer()
	})
}

// Env returns the environment primitives of this drawing are parsed with.
func (d *Drawing) Env(expand func(string, *primitives.Env) ([]primitives.Primitive, error)) *primitives.Env {
	return &primitives.Env{
		Library:      d.Library,
		Layers:       d.Layers,
		TextFont:     d.TextFont,
		TextFontSize: d.TextFontSize,
		Expand:       expand,
	}
}

// drawn reports whether p takes part in drawing, macros always do
func (d *Drawing) drawn(p primitives.Primitive) bool {
	return p.Kind() == primitives.KindMacro || layers.IsVisible(d.Layers, p.Layer())
}

// Track maps every drawn primitive through cs to compute its extents.
func (d *Drawing) Track(cs *geom.MapCoordinates) {
	for _, p := range d.prims {
		if d.drawn(p) {
			p.Track(cs)
		}
	}
}

// Export writes every drawn primitive to e, mapped through cs.
func (d *Drawing) Export(cs *geom.MapCoordinates, e *primitives.Exporter) error {
	for _, p := range d.prims {
		if !d.drawn(p) {
			continue
		}
		if err := p.Export(cs, e); err != nil {
			return err
		}
	}
	return nil
}

// Nearest returns the primitive closest to (px,py) on a visible layer and
// its distance. It returns nil when nothing is visible.
func (d *Drawing) Nearest(px, py int) (primitives.Primitive, int) {
	var best primitives.Primitive
	dist := math.MaxInt
	for _, p := range d.prims {
		dp := p.Distance(px, py)
		if dp <= dist && layers.IsVisible(d.Layers, p.Layer()) {
			best, dist = p, dp
		}
	}
	return best, dist
}

// Distance is the distance from (px,py) to the nearest visible primitive.
func (d *Drawing) Distance(px, py int) int {
	_, dist := d.Nearest(px, py)
	return dist
}

// SelectRect selects the primitives with a handle inside the rectangle
// and returns how many were selected.
func (d *Drawing) SelectRect(x, y, w, h int) int {
	n := 0
	for _, p := range d.prims {
		if layers.IsVisible(d.Layers, p.Layer()) && p.SelectRect(x, y, w, h) {
			n++
		}
	}
	return n
}

// SetSelectionAll selects or deselects every primitive.
func (d *Drawing) SetSelectionAll(s bool) {
	for _, p := range d.prims {
		p.SetSelected(s)
	}
}

// Selected returns the selected primitives in drawing order.
func (d *Drawing) Selected() []primitives.Primitive {
	var out []primitives.Primitive
	for _, p := range d.prims {
		if p.Selected() {
			out = append(out, p)
		}
	}
	return out
}

// MaxLayer is the highest layer used by the drawing.
func (d *Drawing) MaxLayer() int {
	ml := 0
	for _, p := range d.prims {
		ml = max(ml, p.MaxLayer())
	}
	return ml
}

// ContainsLayer reports whether a primitive is drawn on layer l.
func (d *Drawing) ContainsLayer(l int) bool {
	for _, p := range d.prims {
		if p.ContainsLayer(l) {
			return true
		}
	}
	return false
}

// Macros returns the number of uses of each macro key.
func (d *Drawing) Macros() map[string]int {
	out := make(map[string]int)
	for _, p := range d.prims {
		if m, ok := p.(*primitives.Macro); ok {
			out[m.Key()]++
		}
	}
	return out
}
