package deckpdf

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the library. Wrapped errors carry the
// selector, text or slide number involved; match them with [errors.Is].
var (
	// ErrClosed is returned when attempting to use a closed [Exporter].
	ErrClosed = errors.New("deckpdf: exporter is closed")

	// ErrUnsupportedSite is returned when no [Profile] matches the page URL.
	ErrUnsupportedSite = errors.New("deckpdf: unsupported site")

	// ErrElementNotFound is returned when an expected DOM element is absent.
	ErrElementNotFound = errors.New("deckpdf: element not found")

	// ErrParse is returned when slide indicator text has an unexpected shape.
	ErrParse = errors.New("deckpdf: cannot parse slide indicator")

	// ErrNavigationTimeout is returned when the viewer never reached the
	// expected slide within the wait timeout.
	ErrNavigationTimeout = errors.New("deckpdf: navigation timeout")

	// ErrCapture is returned when a slide screenshot could not be taken or decoded.
	ErrCapture = errors.New("deckpdf: capture failed")

	// ErrNoSlides is returned when every slide capture failed.
	ErrNoSlides = fmt.Errorf("%w: no slides captured", ErrCapture)
)
