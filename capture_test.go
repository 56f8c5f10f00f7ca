package deckpdf

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"
)

func TestCapture(t *testing.T) {
	for _, p := range Profiles() {
		t.Run(p.Name, func(t *testing.T) {
			f := newFakeDeck(p, 5, 1)
			r, err := Capture(context.Background(), f, fastOptions()...)
			if err != nil {
				t.Fatalf("Capture: %v", err)
			}
			if r.Platform != p.Name {
				t.Errorf("Platform = %q, want %q", r.Platform, p.Name)
			}
			if r.Total != 5 {
				t.Errorf("Total = %d, want 5", r.Total)
			}
			if want := []int{1, 2, 3, 4, 5}; !slices.Equal(r.Slides, want) {
				t.Errorf("Slides = %v, want %v", r.Slides, want)
			}
			if !slices.Equal(f.shots, r.Slides) {
				t.Errorf("screenshots taken on slides %v, want %v", f.shots, r.Slides)
			}
			if len(r.Skipped) != 0 {
				t.Errorf("Skipped = %v, want none", r.Skipped)
			}
			if info := inspectResult(t, r); info.Pages != 5 {
				t.Errorf("PDF has %d pages, want 5", info.Pages)
			}
			// The last slide is never advanced past.
			if n := f.count(p.NextSelector); n != 4 {
				t.Errorf("next clicked %d times, want 4", n)
			}
		})
	}
}

func TestCapture_RewindsFirst(t *testing.T) {
	f := newFakeDeck(Papermark, 4, 3)
	r, err := Capture(context.Background(), f, fastOptions()...)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if want := []int{1, 2, 3, 4}; !slices.Equal(f.shots, want) {
		t.Errorf("screenshots taken on slides %v, want %v", f.shots, want)
	}
	if r.Pages() != 4 {
		t.Errorf("Pages() = %d, want 4", r.Pages())
	}
}

func TestCapture_SingleSlide(t *testing.T) {
	f := newFakeDeck(DocSend, 1, 1)
	r, err := Capture(context.Background(), f, fastOptions()...)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if r.Pages() != 1 {
		t.Errorf("Pages() = %d, want 1", r.Pages())
	}
	if len(f.clicks) != 0 {
		t.Errorf("clicked %v on a one-slide deck", f.clicks)
	}
}

func TestCapture_SkipsFailedScreenshots(t *testing.T) {
	f := newFakeDeck(Pitch, 5, 1)
	f.failOn[3] = true

	var progress []Progress
	r, err := Capture(context.Background(), f, fastOptions(WithProgress(func(p Progress) {
		progress = append(progress, p)
	}))...)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if want := []int{1, 2, 4, 5}; !slices.Equal(r.Slides, want) {
		t.Errorf("Slides = %v, want %v", r.Slides, want)
	}
	if want := []int{3}; !slices.Equal(r.Skipped, want) {
		t.Errorf("Skipped = %v, want %v", r.Skipped, want)
	}
	if info := inspectResult(t, r); info.Pages != 4 {
		t.Errorf("PDF has %d pages, want 4", info.Pages)
	}

	if len(progress) != 5 {
		t.Fatalf("got %d progress reports, want 5", len(progress))
	}
	for i, p := range progress {
		if p.Slide != i+1 || p.Total != 5 {
			t.Errorf("progress[%d] = slide %d of %d, want %d of 5", i, p.Slide, p.Total, i+1)
		}
		wantOK := p.Slide != 3
		if p.Captured != wantOK {
			t.Errorf("progress[%d].Captured = %v, want %v", i, p.Captured, wantOK)
		}
		if !wantOK && !errors.Is(p.Err, ErrCapture) {
			t.Errorf("progress[%d].Err = %v, want ErrCapture", i, p.Err)
		}
	}
}

func TestCapture_AllScreenshotsFail(t *testing.T) {
	f := newFakeDeck(Papermark, 3, 1)
	for i := 1; i <= 3; i++ {
		f.failOn[i] = true
	}
	_, err := Capture(context.Background(), f, fastOptions()...)
	if !errors.Is(err, ErrNoSlides) {
		t.Fatalf("Capture error = %v, want ErrNoSlides", err)
	}
	if !errors.Is(err, ErrCapture) {
		t.Errorf("ErrNoSlides does not wrap ErrCapture: %v", err)
	}
}

func TestCapture_UnsupportedSite(t *testing.T) {
	f := newFakeDeck(Pitch, 5, 1)
	f.url = "https://slides.example.org/deck/1"

	_, err := Capture(context.Background(), f, fastOptions()...)
	if !errors.Is(err, ErrUnsupportedSite) {
		t.Fatalf("Capture error = %v, want ErrUnsupportedSite", err)
	}
	if f.reads != 0 || len(f.clicks) != 0 || len(f.shots) != 0 {
		t.Errorf("DOM touched: %d reads, %d clicks, %d screenshots", f.reads, len(f.clicks), len(f.shots))
	}
}

func TestCapture_SlideRange(t *testing.T) {
	f := newFakeDeck(DocSend, 6, 1)
	r, err := Capture(context.Background(), f, fastOptions(WithSlideRange("2,4"))...)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if want := []int{2, 4}; !slices.Equal(r.Slides, want) {
		t.Errorf("Slides = %v, want %v", r.Slides, want)
	}
	// Navigation stops at the last selected slide.
	if n := f.count(DocSend.NextSelector); n != 3 {
		t.Errorf("next clicked %d times, want 3", n)
	}
	if r.Pages() != 2 {
		t.Errorf("Pages() = %d, want 2", r.Pages())
	}
}

func TestCapture_InvalidSlideRange(t *testing.T) {
	f := newFakeDeck(DocSend, 3, 1)
	if _, err := Capture(context.Background(), f, fastOptions(WithSlideRange("7"))...); err == nil {
		t.Fatal("Capture accepted a range beyond the slide total")
	}
	if len(f.shots) != 0 {
		t.Errorf("took %d screenshots before rejecting the range", len(f.shots))
	}
}

func TestCapture_NavigationFailureAborts(t *testing.T) {
	f := newFakeDeck(Papermark, 4, 1)
	f.stuck = true

	_, err := Capture(context.Background(), f, fastOptions()...)
	if !errors.Is(err, ErrNavigationTimeout) {
		t.Fatalf("Capture error = %v, want ErrNavigationTimeout", err)
	}
	if len(f.shots) != 1 {
		t.Errorf("took %d screenshots, want 1 before the stuck advance", len(f.shots))
	}
}

func TestCapture_LaggingIndicator(t *testing.T) {
	f := newFakeDeck(Pitch, 4, 2)
	f.lag = 2
	r, err := Capture(context.Background(), f, fastOptions()...)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if want := []int{1, 2, 3, 4}; !slices.Equal(f.shots, want) {
		t.Errorf("screenshots taken on slides %v, want %v", f.shots, want)
	}
	if r.Pages() != 4 {
		t.Errorf("Pages() = %d, want 4", r.Pages())
	}
}

func TestCapture_Timeout(t *testing.T) {
	f := newFakeDeck(Pitch, 4, 1)
	start := time.Now()
	_, err := Capture(context.Background(), f, fastOptions(
		WithSettleDelay(time.Hour),
		WithTimeout(30*time.Millisecond),
	)...)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Capture error = %v, want context.DeadlineExceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Capture took %v, timeout ignored", elapsed)
	}
}

func TestCapture_Cancelled(t *testing.T) {
	f := newFakeDeck(Pitch, 4, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Capture(ctx, f, fastOptions()...)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Capture error = %v, want context.Canceled", err)
	}
}
