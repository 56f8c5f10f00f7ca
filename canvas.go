package deckpdf

// CanvasSize represents page dimensions in CSS pixels.
type CanvasSize struct {
	Width  float64 // Width in pixels.
	Height float64 // Height in pixels.
}

// Common slide canvases.
var (
	// Widescreen matches a 1920x980 browser viewport, the area a maximised
	// desktop window leaves for the page.
	Widescreen = CanvasSize{Width: 1920, Height: 980}
	FullHD     = CanvasSize{Width: 1920, Height: 1080}
	Standard   = CanvasSize{Width: 1024, Height: 768}
)

// Orientation represents the page orientation.
type Orientation int

const (
	// Landscape is the default horizontal orientation.
	Landscape Orientation = iota
	// Portrait rotates the page to vertical orientation.
	Portrait
)

// Canvas controls the PDF page every captured slide is stretched onto.
//
// A nil Canvas or zero-value fields use [DefaultCanvas]: a 1920x980
// landscape page.
type Canvas struct {
	// Size specifies the page size. Defaults to Widescreen.
	Size CanvasSize

	// Orientation specifies landscape or portrait. Defaults to Landscape.
	Orientation Orientation
}

// DefaultCanvas returns the canvas used when none is configured.
func DefaultCanvas() Canvas {
	return Canvas{
		Size:        Widescreen,
		Orientation: Landscape,
	}
}

// resolved returns a Canvas with all zero values replaced by defaults.
func (c *Canvas) resolved() Canvas {
	d := DefaultCanvas()
	if c == nil {
		return d
	}
	r := *c
	if r.Size.Width <= 0 || r.Size.Height <= 0 {
		r.Size = d.Size
	}
	return r
}

// pxToPoints converts CSS pixels (96 per inch) to PDF points (72 per inch).
func pxToPoints(px float64) float64 {
	return px * 72 / 96
}

// pageDimensions returns the page width and height in points, the long
// side horizontal for Landscape.
func (c *Canvas) pageDimensions() (width, height float64) {
	r := c.resolved()
	w := pxToPoints(r.Size.Width)
	h := pxToPoints(r.Size.Height)
	if w < h {
		w, h = h, w
	}
	if r.Orientation == Portrait {
		return h, w
	}
	return w, h
}
