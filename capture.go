package deckpdf

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // register decoder for screenshot validation
	_ "image/png"  // register decoder for screenshot validation
)

// Progress reports the outcome of one capture attempt.
type Progress struct {
	Slide    int   // 1-based slide number
	Total    int   // slides in the presentation
	Captured bool  // whether the screenshot succeeded
	Err      error // set when Captured is false
}

// Capture exports the presentation shown in page to a PDF.
//
// It detects the viewer from the page URL, rewinds to slide 1, reads the
// slide total, then for every slide waits the settle delay, takes a
// screenshot and advances. A failed screenshot is logged and its page left
// out of the PDF; any navigation error aborts the export. Capture fails
// with [ErrNoSlides] when no screenshot succeeded. The whole call is bounded
// by [WithTimeout].
func Capture(ctx context.Context, page Page, opts ...Option) (*Result, error) {
	cfg := newConfig(opts)
	drv, err := newDriver(page, &cfg)
	if err != nil {
		return nil, err
	}
	return drv.capture(ctx)
}

func (d *Driver) capture(ctx context.Context) (*Result, error) {
	if d.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.timeout)
		defer cancel()
	}

	if err := d.Rewind(ctx); err != nil {
		return nil, fmt.Errorf("deckpdf: rewind: %w", err)
	}
	total, err := d.SlideCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("deckpdf: slide count: %w", err)
	}
	selected, err := parseSlideRange(d.cfg.slideRange, total)
	if err != nil {
		return nil, fmt.Errorf("deckpdf: %w", err)
	}
	last := 0
	for s := range selected {
		last = max(last, s)
	}

	d.logger.Info("deckpdf: capturing", "total", total, "selected", len(selected))

	var (
		images  [][]byte
		slides  []int
		skipped []int
	)
	for i := 1; i <= last; i++ {
		if selected[i] {
			img, err := d.captureSlide(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				d.logger.Warn("deckpdf: screenshot failed, skipping slide", "slide", i, "error", err)
				skipped = append(skipped, i)
			} else {
				images = append(images, img)
				slides = append(slides, i)
			}
			d.cfg.report(Progress{Slide: i, Total: total, Captured: err == nil, Err: err})
		}
		if i < last {
			if err := d.advance(ctx, i+1); err != nil {
				return nil, fmt.Errorf("deckpdf: advancing to slide %d: %w", i+1, err)
			}
		}
	}

	if len(images) == 0 {
		return nil, ErrNoSlides
	}
	res, err := Assemble(images, &d.cfg.canvas)
	if err != nil {
		return nil, err
	}
	res.Platform = d.profile.Name
	res.Total = total
	res.Slides = slides
	res.Skipped = skipped

	d.logger.Info("deckpdf: capture complete", "pages", len(slides), "skipped", len(skipped))
	return res, nil
}

// captureSlide waits for the slide to settle and screenshots it.
func (d *Driver) captureSlide(ctx context.Context) ([]byte, error) {
	if err := sleep(ctx, d.cfg.settle(d.profile)); err != nil {
		return nil, err
	}
	img, err := d.page.Screenshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCapture, err)
	}
	if _, err := imageType(img); err != nil {
		return nil, err
	}
	return img, nil
}

// imageType returns the gofpdf image type of data, or an error wrapping
// [ErrCapture] when data is not a PNG or JPEG image.
func imageType(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty image", ErrCapture)
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: decoding image: %v", ErrCapture, err)
	}
	switch format {
	case "png":
		return "PNG", nil
	case "jpeg":
		return "JPG", nil
	}
	return "", fmt.Errorf("%w: unsupported image format %q", ErrCapture, format)
}
