package deckpdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"
)

// fakeDeck is an in-memory presentation viewer rendering a profile's
// slide indicator and reacting to its navigation controls.
type fakeDeck struct {
	url     string
	profile *Profile

	current int // slide the viewer is on
	shown   int // slide the indicator displays
	total   int

	lag      int // indicator reads before it catches up after a click
	pending  int
	stuck    bool            // navigation clicks are ignored
	hidePrev bool            // previous control hidden regardless of slide
	missing  map[string]bool // selectors absent from the DOM
	override map[string]string
	failOn   map[int]bool   // slides whose screenshot fails
	late     map[string]int // selectors absent for their first n reads

	blankAfterClick bool // current indicator reads empty once after each click
	blank           bool

	reads     int
	clicks    []string
	synthetic []bool
	shots     []int
	mutations chan struct{}
}

func newFakeDeck(p *Profile, total, start int) *fakeDeck {
	return &fakeDeck{
		url:       "https://www." + p.Host + "/v/quarterly-review",
		profile:   p,
		current:   start,
		shown:     start,
		total:     total,
		missing:   map[string]bool{},
		override:  map[string]string{},
		failOn:    map[int]bool{},
		late:      map[string]int{},
		mutations: make(chan struct{}, 1),
	}
}

func (f *fakeDeck) URL() string { return f.url }

func (f *fakeDeck) indicator() int {
	if f.pending > 0 {
		f.pending--
		return f.shown
	}
	f.shown = f.current
	return f.shown
}

func (f *fakeDeck) Text(ctx context.Context, selector string) (string, bool, error) {
	f.reads++
	if f.missing[selector] {
		return "", false, nil
	}
	if f.late[selector] > 0 {
		f.late[selector]--
		return "", false, nil
	}
	if f.blank && selector == f.profile.CurrentSelector {
		f.blank = false
		return "", true, nil
	}
	if text, ok := f.override[selector]; ok {
		return text, true, nil
	}
	cur := f.indicator()
	switch f.profile.Name {
	case "pitch":
		if selector == Pitch.CountSelector {
			return fmt.Sprintf("%d / %d", cur, f.total), true, nil
		}
	case "docsend":
		switch selector {
		case DocSend.CountSelector:
			return fmt.Sprintf("Page %d / %d", cur, f.total), true, nil
		case DocSend.CurrentSelector:
			return fmt.Sprintf("%d", cur), true, nil
		}
	case "papermark":
		switch selector {
		case Papermark.CountSelector:
			return fmt.Sprintf("%d", f.total), true, nil
		case Papermark.CurrentSelector:
			return fmt.Sprintf("%d", cur), true, nil
		}
	}
	return "", false, nil
}

func (f *fakeDeck) Visible(ctx context.Context, selector string) (bool, bool, error) {
	if f.missing[selector] {
		return false, false, nil
	}
	if selector == f.profile.PrevSelector {
		return !f.hidePrev && f.current > 1, true, nil
	}
	return true, true, nil
}

func (f *fakeDeck) Click(ctx context.Context, selector string, synthetic bool) (bool, error) {
	if f.missing[selector] {
		return false, nil
	}
	f.clicks = append(f.clicks, selector)
	f.synthetic = append(f.synthetic, synthetic)
	f.blank = f.blankAfterClick
	if f.stuck {
		return true, nil
	}
	before := f.current
	switch selector {
	case f.profile.NextSelector:
		if f.current < f.total {
			f.current++
		}
	case f.profile.PrevSelector:
		if f.current > 1 {
			f.current--
		}
	case f.profile.FirstSelector:
		f.current = 1
	default:
		return false, nil
	}
	if f.current != before {
		f.pending = f.lag
		select {
		case f.mutations <- struct{}{}:
		default:
		}
	}
	return true, nil
}

func (f *fakeDeck) Screenshot(ctx context.Context) ([]byte, error) {
	if f.failOn[f.current] {
		return nil, errors.New("tab capture rate limited")
	}
	f.shots = append(f.shots, f.current)
	return slidePNG(f.current), nil
}

func (f *fakeDeck) Mutations() <-chan struct{} { return f.mutations }

func (f *fakeDeck) count(selector string) int {
	n := 0
	for _, c := range f.clicks {
		if c == selector {
			n++
		}
	}
	return n
}

// slidePNG renders a small solid image whose shade encodes the slide number.
func slidePNG(slide int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 16, 9))
	c := color.RGBA{R: uint8(slide * 20), G: 64, B: 128, A: 255}
	for y := 0; y < 9; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// fastOptions removes the human-scale delays so tests run in milliseconds.
func fastOptions(extra ...Option) []Option {
	return append([]Option{
		WithSettleDelay(0),
		WithAdvanceDelay(0),
		WithRewindDelay(0),
		WithPollInterval(time.Millisecond),
		WithWaitTimeout(200 * time.Millisecond),
		WithLoadTimeout(200 * time.Millisecond),
	}, extra...)
}

func newTestDriver(t *testing.T, f *fakeDeck, extra ...Option) *Driver {
	t.Helper()
	d, err := NewDriver(f, fastOptions(extra...)...)
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}
	return d
}
