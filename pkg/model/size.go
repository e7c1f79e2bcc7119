package model

import "github.com/OpenTraceLab/OpenTraceFCD/pkg/geom"

// ImageSize tracks the drawing at the given zoom and returns its size in
// pixels and its origin. With countMin the size is measured from the
// minimum coordinates, otherwise from (0,0). Sizes are at least 1.
func ImageSize(d *Drawing, unitPerPixel float64, countMin bool) (width, height int, origin geom.Point) {
	m := geom.NewMapCoordinates()
	m.SetMagnitudes(unitPerPixel, unitPerPixel)
	m.SetXCenter(0)
	m.SetYCenter(0)
	d.Track(m)

	if countMin {
		width = m.XMax() - m.XMin()
		height = m.YMax() - m.YMin()
	} else {
		width = m.XMax()
		height = m.YMax()
	}
	width = max(width, 1)
	height = max(height, 1)

	if m.XMax() >= m.XMin() && m.YMax() >= m.YMin() {
		origin = geom.Point{X: m.XMin(), Y: m.YMin()}
	}
	return width, height, origin
}

// ImageOrigin returns the top left corner of the drawing in pixels, or
// (0,0) for an empty drawing.
func ImageOrigin(d *Drawing, unitPerPixel float64) geom.Point {
	_, _, origin := ImageSize(d, unitPerPixel, true)
	return origin
}

// ZoomToFit returns a mapper showing the whole drawing in sizeX by sizeY
// pixels. Without countMin the origin (0,0) stays in view.
func ZoomToFit(d *Drawing, sizeX, sizeY int, countMin bool) *geom.MapCoordinates {
	w, h, org := ImageSize(d, 1, countMin)
	if !countMin {
		org = geom.Point{}
	}

	zx := float64(sizeX) / float64(w+1)
	zy := float64(sizeY) / float64(h+1)
	z := min(zx, zy)
	z = float64(geom.Round(z*100)) / 100
	z = max(z, geom.MinMagnitude)

	m := geom.NewMapCoordinates()
	m.SetMagnitudesNoCheck(z, z)
	m.SetXCenter(-float64(org.X) * z)
	m.SetYCenter(-float64(org.Y) * z)
	return m
}
