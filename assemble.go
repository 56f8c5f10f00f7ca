package deckpdf

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf/v2"
)

// Assemble stitches images into a PDF with one page per image, in order.
// Every image is stretched over the whole canvas regardless of its aspect
// ratio. If canvas is nil, [DefaultCanvas] is used.
func Assemble(images [][]byte, canvas *Canvas) (*Result, error) {
	if len(images) == 0 {
		return nil, ErrNoSlides
	}
	c := canvas.resolved()
	w, h := c.pageDimensions()

	// gofpdf takes the size in portrait terms and swaps it for "L".
	orientation := "L"
	size := gofpdf.SizeType{Wd: h, Ht: w}
	if w < h {
		orientation = "P"
		size = gofpdf.SizeType{Wd: w, Ht: h}
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: orientation,
		UnitStr:        "pt",
		Size:           size,
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("deckpdf", true)

	for i, img := range images {
		typ, err := imageType(img)
		if err != nil {
			return nil, fmt.Errorf("deckpdf: page %d: %w", i+1, err)
		}
		name := fmt.Sprintf("slide-%d", i+1)
		opts := gofpdf.ImageOptions{ImageType: typ}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img))
		pdf.AddPage()
		pdf.ImageOptions(name, 0, 0, w, h, false, opts, 0, "")
		if pdf.Err() {
			return nil, fmt.Errorf("deckpdf: page %d: %w", i+1, pdf.Error())
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("deckpdf: writing PDF: %w", err)
	}
	return &Result{data: buf.Bytes(), pages: len(images)}, nil
}
