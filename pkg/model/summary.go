package model

import "github.com/OpenTraceLab/OpenTraceFCD/pkg/geom"

// Summary counts what a drawing is made of
type Summary struct {
	Primitives int            `json:"primitives" msgpack:"primitives"`
	Kinds      map[string]int `json:"kinds" msgpack:"kinds"`
	Layers     map[int]int    `json:"layers" msgpack:"layers"`
	Macros     map[string]int `json:"macros" msgpack:"macros"`

	// Bounds are the logical extents of the drawn primitives, meaningless
	// when Empty is set
	Bounds geom.Rect `json:"bounds" msgpack:"bounds"`
	Empty  bool      `json:"empty" msgpack:"empty"`

	// Size of the drawing at one unit per pixel
	Width  int        `json:"width" msgpack:"width"`
	Height int        `json:"height" msgpack:"height"`
	Origin geom.Point `json:"origin" msgpack:"origin"`
}

// Summarize counts the primitives of d per kind and layer and measures it
func Summarize(d *Drawing) Summary {
	s := Summary{
		Primitives: d.Len(),
		Kinds:      make(map[string]int),
		Layers:     make(map[int]int),
		Macros:     d.Macros(),
	}
	for _, p := range d.prims {
		s.Kinds[p.Kind().String()]++
		s.Layers[p.Layer()]++
	}

	m := geom.NewMapCoordinates()
	d.Track(m)
	s.Bounds = m.Bounds()
	s.Empty = s.Bounds.IsEmpty()

	s.Width, s.Height, s.Origin = ImageSize(d, 1, true)
	return s
}
