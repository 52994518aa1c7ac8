// Package ocr turns raster page images into text detections and rebuilds
// reading-order lines from them.
package ocr

// Point is a 2D image coordinate in pixels.
type Point struct {
	X, Y float64
}

// Quad is a detected text region, four points clockwise from top-left.
type Quad [4]Point

// RectQuad builds the quad of an axis-aligned box.
func RectQuad(left, top, width, height float64) Quad {
	return Quad{
		{X: left, Y: top},
		{X: left + width, Y: top},
		{X: left + width, Y: top + height},
		{X: left, Y: top + height},
	}
}

// Detection is one recognized text region.
type Detection struct {
	Quad       Quad
	Text       string
	Confidence float64 // 0..1
}

// Top is the y of the quad's first (top-left) point.
func (d Detection) Top() float64 {
	return d.Quad[0].Y
}
