package deckpdf

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Profile describes how to drive one supported presentation viewer: where
// its slide indicator and navigation controls live in the DOM and how long
// its slide transitions take. Profiles are immutable; use [Detect] or
// [Profiles] to obtain one.
type Profile struct {
	// Name is a short identifier such as "pitch".
	Name string
	// Host is matched as a substring of the page hostname.
	Host string

	// CountSelector locates the element whose text holds the slide total.
	CountSelector string
	// CurrentSelector locates the element whose text holds the current slide.
	CurrentSelector string
	// NextSelector and PrevSelector locate the navigation controls.
	NextSelector string
	PrevSelector string
	// FirstSelector locates a control that jumps straight to slide 1.
	// Empty means rewinding clicks PrevSelector repeatedly.
	FirstSelector string

	// ParseCount and ParseCurrent turn indicator text into slide numbers.
	ParseCount   func(text string) (int, error)
	ParseCurrent func(text string) (int, error)

	// SyntheticClick dispatches mousedown, mouseup and click events instead
	// of calling click() on the control.
	SyntheticClick bool
	// HideCheck stops rewinding as soon as the previous control is hidden.
	HideCheck bool

	// SettleDelay is waited before every screenshot.
	SettleDelay time.Duration
	// AdvanceDelay is waited after every next click.
	AdvanceDelay time.Duration
}

// String returns the profile name.
func (p *Profile) String() string {
	return p.Name
}

// Supported presentation viewers.
var (
	Pitch = &Profile{
		Name:            "pitch",
		Host:            "pitch.com",
		CountSelector:   ".player-v2-chrome-controls-slide-count",
		CurrentSelector: ".player-v2-chrome-controls-slide-count",
		NextSelector:    `.player-v2--button[aria-label="next"]`,
		PrevSelector:    `.player-v2--button[aria-label="previous"]`,
		FirstSelector:   `div.dash[data-test-id="dash-0"][idx="0"]`,
		ParseCount:      ParseFractionTotal,
		ParseCurrent:    ParseFractionCurrent,
		SettleDelay:     1000 * time.Millisecond,
	}

	DocSend = &Profile{
		Name:            "docsend",
		Host:            "docsend.com",
		CountSelector:   ".toolbar-page-indicator",
		CurrentSelector: "#page-number",
		NextSelector:    "#nextPageIcon",
		PrevSelector:    "#prevPageIcon",
		ParseCount:      ParseFractionTotal,
		ParseCurrent:    ParseNumber,
		SyntheticClick:  true,
		HideCheck:       true,
		SettleDelay:     1500 * time.Millisecond,
	}

	Papermark = &Profile{
		Name:            "papermark",
		Host:            "papermark.com",
		CountSelector:   "div.flex.h-8.items-center span:last-child",
		CurrentSelector: "div.flex.h-8.items-center span",
		NextSelector:    `button[aria-label="Next slide"]`,
		PrevSelector:    `button[aria-label="Previous slide"]`,
		ParseCount:      ParseNumber,
		ParseCurrent:    ParseNumber,
		SettleDelay:     1200 * time.Millisecond,
		AdvanceDelay:    500 * time.Millisecond,
	}
)

var profiles = []*Profile{Pitch, DocSend, Papermark}

// Profiles returns the supported viewers in match order.
func Profiles() []*Profile {
	out := make([]*Profile, len(profiles))
	copy(out, profiles)
	return out
}

// Detect returns the profile whose host occurs in the hostname of rawURL.
// It fails with [ErrUnsupportedSite] when rawURL cannot be parsed or no
// profile matches.
func Detect(rawURL string) (*Profile, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid URL %q: %v", ErrUnsupportedSite, rawURL, err)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return nil, fmt.Errorf("%w: %q has no hostname", ErrUnsupportedSite, rawURL)
	}
	for _, p := range profiles {
		if strings.Contains(host, p.Host) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s (supported: %s)", ErrUnsupportedSite, host, supportedHosts())
}

func supportedHosts() string {
	hosts := make([]string, len(profiles))
	for i, p := range profiles {
		hosts[i] = p.Host
	}
	return strings.Join(hosts, ", ")
}
