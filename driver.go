package deckpdf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Page is a live browser tab showing a presentation viewer. Selectors are
// CSS selectors resolved with document.querySelector.
type Page interface {
	// URL returns the address of the document shown in the tab.
	URL() string

	// Text returns the text content of the first element matching selector.
	Text(ctx context.Context, selector string) (text string, found bool, err error)

	// Visible reports whether the first element matching selector is shown.
	Visible(ctx context.Context, selector string) (visible, found bool, err error)

	// Click activates the first element matching selector. With synthetic
	// set, mousedown, mouseup and click events are dispatched instead.
	Click(ctx context.Context, selector string, synthetic bool) (found bool, err error)

	// Screenshot captures the visible part of the tab as an image.
	Screenshot(ctx context.Context) ([]byte, error)

	// Mutations delivers a value whenever the document changes. It may
	// return nil when the tab cannot observe mutations.
	Mutations() <-chan struct{}
}

// SlideInfo is the viewer's slide position, read live from the DOM.
type SlideInfo struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// Driver navigates a presentation viewer through its own controls.
// All methods read the DOM afresh; nothing is cached between calls.
type Driver struct {
	profile *Profile
	page    Page
	cfg     *config
	logger  *slog.Logger
}

// NewDriver detects the viewer shown in page and returns a Driver for it.
// It fails with [ErrUnsupportedSite] without touching the DOM when the page
// URL matches no [Profile].
func NewDriver(page Page, opts ...Option) (*Driver, error) {
	cfg := newConfig(opts)
	return newDriver(page, &cfg)
}

func newDriver(page Page, cfg *config) (*Driver, error) {
	p, err := Detect(page.URL())
	if err != nil {
		return nil, err
	}
	return &Driver{
		profile: p,
		page:    page,
		cfg:     cfg,
		logger:  cfg.logger.With("platform", p.Name),
	}, nil
}

// Profile returns the detected viewer profile.
func (d *Driver) Profile() *Profile {
	return d.profile
}

func (d *Driver) text(ctx context.Context, selector string) (string, error) {
	text, found, err := d.page.Text(ctx, selector)
	if err != nil {
		return "", fmt.Errorf("deckpdf: reading %s: %w", selector, err)
	}
	if !found {
		return "", fmt.Errorf("%w: %s", ErrElementNotFound, selector)
	}
	return text, nil
}

func (d *Driver) click(ctx context.Context, selector string) error {
	found, err := d.page.Click(ctx, selector, d.profile.SyntheticClick)
	if err != nil {
		return fmt.Errorf("deckpdf: clicking %s: %w", selector, err)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrElementNotFound, selector)
	}
	return nil
}

// SlideCount returns the total number of slides shown by the indicator.
func (d *Driver) SlideCount(ctx context.Context) (int, error) {
	text, err := d.text(ctx, d.profile.CountSelector)
	if err != nil {
		return 0, err
	}
	return d.profile.ParseCount(text)
}

// CurrentSlide returns the 1-based index of the slide on screen.
func (d *Driver) CurrentSlide(ctx context.Context) (int, error) {
	text, err := d.text(ctx, d.profile.CurrentSelector)
	if err != nil {
		return 0, err
	}
	return d.profile.ParseCurrent(text)
}

// Info returns the current slide and the slide total.
func (d *Driver) Info(ctx context.Context) (SlideInfo, error) {
	cur, err := d.CurrentSlide(ctx)
	if err != nil {
		return SlideInfo{}, err
	}
	total, err := d.SlideCount(ctx)
	if err != nil {
		return SlideInfo{}, err
	}
	return SlideInfo{Current: cur, Total: total}, nil
}

// Next clicks the viewer's next-slide control once.
func (d *Driver) Next(ctx context.Context) error {
	return d.click(ctx, d.profile.NextSelector)
}

// Prev clicks the viewer's previous-slide control once.
func (d *Driver) Prev(ctx context.Context) error {
	return d.click(ctx, d.profile.PrevSelector)
}

// WaitReady waits until the viewer's slide indicators are present and
// readable, bounded by the load timeout.
func (d *Driver) WaitReady(ctx context.Context) error {
	err := waitFor(ctx, d.cfg.loadTimeout, d.cfg.pollInterval, d.page.Mutations(),
		func(ctx context.Context) (bool, error) {
			_, err := d.Info(ctx)
			if errors.Is(err, ErrElementNotFound) || errors.Is(err, ErrParse) {
				return false, nil
			}
			return err == nil, err
		})
	if errors.Is(err, errWaitTimeout) {
		return fmt.Errorf("%w: slide indicators %s and %s never became readable",
			ErrElementNotFound, d.profile.CurrentSelector, d.profile.CountSelector)
	}
	return err
}

// WaitForSlide blocks until the viewer shows slide target. It returns at
// once when the viewer is already there and fails with
// [ErrNavigationTimeout] when the wait timeout elapses first.
func (d *Driver) WaitForSlide(ctx context.Context, target int) error {
	return d.waitForSlide(ctx, target, d.cfg.waitTimeout)
}

func (d *Driver) waitForSlide(ctx context.Context, target int, timeout time.Duration) error {
	last := 0
	err := waitFor(ctx, timeout, d.cfg.pollInterval, d.page.Mutations(),
		func(ctx context.Context) (bool, error) {
			cur, err := d.CurrentSlide(ctx)
			if errors.Is(err, ErrParse) {
				// Some viewers blank the indicator mid-transition.
				return false, nil
			}
			if err != nil {
				return false, err
			}
			last = cur
			return cur == target, nil
		})
	if errors.Is(err, errWaitTimeout) {
		return fmt.Errorf("%w: waiting for slide %d, viewer shows %d after %s",
			ErrNavigationTimeout, target, last, timeout)
	}
	return err
}

// Rewind navigates back to slide 1. It is a no-op when slide 1 is already
// shown. Viewers with a jump-to-first control are rewound with one click;
// the others are stepped back at most once per slide.
func (d *Driver) Rewind(ctx context.Context) error {
	cur, err := d.CurrentSlide(ctx)
	if err != nil {
		return err
	}
	if cur == 1 {
		return nil
	}
	d.logger.Debug("deckpdf: rewinding", "from", cur)

	if d.profile.FirstSelector != "" {
		if err := d.click(ctx, d.profile.FirstSelector); err != nil {
			return err
		}
		if err := d.WaitForSlide(ctx, 1); err != nil {
			return err
		}
		return sleep(ctx, d.cfg.rewindDelay)
	}

	total, err := d.SlideCount(ctx)
	if err != nil {
		return err
	}
	hidden := false
	for i := 0; i < total && cur > 1; i++ {
		if d.profile.HideCheck {
			visible, found, err := d.page.Visible(ctx, d.profile.PrevSelector)
			if err != nil {
				return fmt.Errorf("deckpdf: checking %s: %w", d.profile.PrevSelector, err)
			}
			if !found {
				return fmt.Errorf("%w: %s", ErrElementNotFound, d.profile.PrevSelector)
			}
			if !visible {
				d.logger.Debug("deckpdf: previous control hidden", "slide", cur)
				hidden = true
				break
			}
		}
		if err := d.Prev(ctx); err != nil {
			return err
		}
		if err := sleep(ctx, d.cfg.rewindDelay); err != nil {
			return err
		}
		n, err := d.CurrentSlide(ctx)
		switch {
		case errors.Is(err, ErrParse):
			// Blank mid-transition; the final wait catches up.
			continue
		case err != nil:
			return err
		}
		cur = n
	}
	if cur == 1 {
		return nil
	}
	if hidden {
		// The viewer claims to be on slide 1; allow only for indicator lag.
		return d.waitForSlide(ctx, 1, d.cfg.hiddenWait())
	}
	// The indicator may lag the last click.
	return d.WaitForSlide(ctx, 1)
}

// advance moves from one slide to target, the next one.
func (d *Driver) advance(ctx context.Context, target int) error {
	if err := d.Next(ctx); err != nil {
		return err
	}
	if err := sleep(ctx, d.cfg.advance(d.profile)); err != nil {
		return err
	}
	return d.WaitForSlide(ctx, target)
}
