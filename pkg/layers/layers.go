package layers

import "image/color"

// MaxLayers is the number of layers of a FidoCadJ drawing
const MaxLayers = 16

// Layer describes one drawing layer
type Layer struct {
	Color       color.NRGBA // always opaque, transparency lives in Alpha
	Alpha       float32     // 0.0 (transparent) to 1.0 (opaque)
	Visible     bool
	Modified    bool // differs from the standard layer, saved with FJC L/N
	Description string
}

type standardLayer struct {
	name  string
	argb  int32
	alpha float32
}

// Standard layer colours, in the signed ARGB form used by FJC L pragmas
var standardLayers = [MaxLayers]standardLayer{
	{"Circuit", -16777216, 1.0},
	{"Bottom copper", -16777088, 1.0},
	{"Top copper", -65536, 1.0},
	{"Silkscreen", -16744320, 1.0},
	{"Other 1", -14336, 1.0},
	{"Other 2", -8388864, 1.0},
	{"Other 3", -16711681, 1.0},
	{"Other 4", -16744448, 1.0},
	{"Other 5", -6632142, 1.0},
	{"Other 6", -60269, 1.0},
	{"Other 7", -4875508, 1.0},
	{"Other 8", -16678657, 1.0},
	{"Other 9", -1973791, 0.95},
	{"Other 10", -6118750, 0.9},
	{"Other 11", -10526881, 0.9},
	{"Other 12", -16777216, 1.0},
}

// Standard creates a fresh copy of the 16 standard layers, all visible
// and unmodified.
func Standard() []*Layer {
	ll := make([]*Layer, MaxLayers)
	for i, s := range standardLayers {
		ll[i] = &Layer{
			Color:       FromARGB(s.argb),
			Alpha:       s.alpha,
			Visible:     true,
			Description: s.name,
		}
	}
	return ll
}

// Clone returns a deep copy of ll
func Clone(ll []*Layer) []*Layer {
	out := make([]*Layer, len(ll))
	for i, l := range ll {
		c := *l
		out[i] = &c
	}
	return out
}

// StandardName returns the default description of layer i, or "" when i
// is not a valid layer index.
func StandardName(i int) string {
	if i < 0 || i >= MaxLayers {
		return ""
	}
	return standardLayers[i].name
}

// FromARGB converts a packed 0xAARRGGBB integer into an opaque colour.
// The alpha byte is ignored.
func FromARGB(v int32) color.NRGBA {
	u := uint32(v)
	return color.NRGBA{
		R: uint8(u >> 16),
		G: uint8(u >> 8),
		B: uint8(u),
		A: 0xff,
	}
}

// ARGB packs an opaque colour as a signed 0xFFRRGGBB integer
func ARGB(c color.NRGBA) int32 {
	return int32(0xff<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B))
}

// SetColorARGB updates the colour from a packed integer and marks the
// layer as modified.
func (l *Layer) SetColorARGB(v int32, alpha float32) {
	l.Color = FromARGB(v)
	l.Alpha = alpha
	l.Modified = true
}

// SetDescription renames the layer and marks it as modified
func (l *Layer) SetDescription(desc string) {
	l.Description = desc
	l.Modified = true
}

// IsVisible reports whether layer i exists in ll and is visible
func IsVisible(ll []*Layer, i int) bool {
	return i >= 0 && i < len(ll) && ll[i].Visible
}
