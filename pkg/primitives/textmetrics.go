package primitives

import (
	"log"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Metrics are measured once at this size and scaled linearly
const referenceSize = 100

type metrics struct {
	ascent  int
	descent int
	width   int
}

var (
	faceOnce sync.Once
	refFace  font.Face

	// opentype faces keep a glyph buffer and cannot be shared
	faceMu sync.Mutex
)

// referenceFace loads the monospaced face used for every text extent.
// Courier New is not shipped with Go, Go Mono has the same role.
func referenceFace() font.Face {
	faceOnce.Do(func() {
		fnt, err := opentype.Parse(gomono.TTF)
		if err != nil {
			log.Printf("Warning: failed to parse text font: %v", err)
			return
		}
		face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
			Size:    referenceSize,
			DPI:     72,
			Hinting: font.HintingNone,
		})
		if err != nil {
			log.Printf("Warning: failed to create text face: %v", err)
			return
		}
		refFace = face
	})
	return refFace
}

func toFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

// measureText returns the ascent, descent and advance of s at the given
// size in pixels
func measureText(s string, size float64) metrics {
	face := referenceFace()
	if face == nil || size <= 0 {
		return metrics{}
	}
	scale := size / referenceSize
	faceMu.Lock()
	defer faceMu.Unlock()
	m := face.Metrics()
	return metrics{
		ascent:  int(toFloat(m.Ascent)*scale + .5),
		descent: int(toFloat(m.Descent)*scale + .5),
		width:   int(toFloat(font.MeasureString(face, s))*scale + .5),
	}
}
