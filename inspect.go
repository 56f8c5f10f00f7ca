package deckpdf

import (
	"fmt"
	"io"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PageDim is a PDF page size in points.
type PageDim struct {
	Width  float64
	Height float64
}

// Info describes a validated PDF document.
type Info struct {
	Pages int
	Dims  []PageDim
}

var disableConfigDir sync.Once

// Inspect validates the PDF read from rs and reports its page count and
// page dimensions.
func Inspect(rs io.ReadSeeker) (*Info, error) {
	disableConfigDir.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()

	if err := api.Validate(rs, conf); err != nil {
		return nil, fmt.Errorf("deckpdf: invalid PDF: %w", err)
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("deckpdf: rewinding PDF: %w", err)
	}
	n, err := api.PageCount(rs, conf)
	if err != nil {
		return nil, fmt.Errorf("deckpdf: counting pages: %w", err)
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("deckpdf: rewinding PDF: %w", err)
	}
	dims, err := api.PageDims(rs, conf)
	if err != nil {
		return nil, fmt.Errorf("deckpdf: reading page sizes: %w", err)
	}

	info := &Info{Pages: n, Dims: make([]PageDim, 0, len(dims))}
	for _, d := range dims {
		info.Dims = append(info.Dims, PageDim{Width: d.Width, Height: d.Height})
	}
	return info, nil
}
