package deckpdf

import (
	"log/slog"
	"time"
)

// config holds internal configuration shared by [Exporter], [Driver] and [Capture].
type config struct {
	// browser
	chromePath   string
	timeout      time.Duration
	noSandbox    bool
	headless     bool
	flags        map[string]any
	remoteURL    string
	stealth      bool
	autoDownload bool

	// navigation
	loadTimeout  time.Duration
	waitTimeout  time.Duration
	pollInterval time.Duration
	rewindDelay  time.Duration
	settleDelay  *time.Duration
	advanceDelay *time.Duration

	// output
	canvas     Canvas
	slideRange string
	progress   func(Progress)

	logger *slog.Logger
}

func defaultConfig() config {
	return config{
		timeout:      10 * time.Minute,
		headless:     true,
		loadTimeout:  30 * time.Second,
		waitTimeout:  8 * time.Second,
		pollInterval: 100 * time.Millisecond,
		rewindDelay:  400 * time.Millisecond,
		canvas:       DefaultCanvas(),
		logger:       slog.Default(),
	}
}

func newConfig(opts []Option) config {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return cfg
}

func (c *config) settle(p *Profile) time.Duration {
	if c.settleDelay != nil {
		return *c.settleDelay
	}
	return p.SettleDelay
}

func (c *config) advance(p *Profile) time.Duration {
	if c.advanceDelay != nil {
		return *c.advanceDelay
	}
	return p.AdvanceDelay
}

// hiddenWait bounds the wait for slide 1 once the previous control has
// disappeared.
func (c *config) hiddenWait() time.Duration {
	return min(c.waitTimeout, max(2*c.rewindDelay, 10*c.pollInterval))
}

func (c *config) report(p Progress) {
	if c.progress != nil {
		c.progress(p)
	}
}

// Option configures an [Exporter], a [Driver] or a [Capture] call.
type Option func(*config)

// WithChromePath sets the path to the Chrome or Chromium executable.
// By default the library searches standard locations automatically.
func WithChromePath(path string) Option {
	return func(c *config) {
		c.chromePath = path
	}
}

// WithAutoDownload downloads a compatible Chromium build when no
// executable path is configured. See [resolveBrowser].
func WithAutoDownload() Option {
	return func(c *config) {
		c.autoDownload = true
	}
}

// WithTimeout sets the maximum duration of a single export, whether run by
// [Exporter.Export], [Session.Export] or [Capture]. Defaults to 10 minutes.
// A zero or negative value disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithNoSandbox disables the Chrome sandbox. This is required when
// running as root, for example inside Docker containers.
func WithNoSandbox() Option {
	return func(c *config) {
		c.noSandbox = true
	}
}

// WithHeadful shows the browser window. Useful for logging in to viewers
// that gate presentations behind an email or password form.
func WithHeadful() Option {
	return func(c *config) {
		c.headless = false
	}
}

// WithFlag passes an extra command-line flag to a locally launched Chrome.
func WithFlag(name string, value any) Option {
	return func(c *config) {
		if c.flags == nil {
			c.flags = make(map[string]any)
		}
		c.flags[name] = value
	}
}

// WithRemoteURL connects to an already running Chrome through its DevTools
// WebSocket URL instead of launching one. When a tab showing the requested
// presentation is already open there, it is driven in place.
func WithRemoteURL(wsURL string) Option {
	return func(c *config) {
		c.remoteURL = wsURL
	}
}

// WithStealth drives the browser through go-rod with the stealth evasions
// applied to every tab, for viewers that refuse automated browsers.
func WithStealth() Option {
	return func(c *config) {
		c.stealth = true
	}
}

// WithLogger sets the structured logger. Defaults to [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithLoadTimeout bounds how long a freshly opened tab may take to show the
// viewer's slide indicator. Defaults to 30 seconds.
func WithLoadTimeout(d time.Duration) Option {
	return func(c *config) {
		c.loadTimeout = d
	}
}

// WithWaitTimeout bounds every wait for the viewer to reach a slide.
// Defaults to 8 seconds.
func WithWaitTimeout(d time.Duration) Option {
	return func(c *config) {
		c.waitTimeout = d
	}
}

// WithPollInterval sets how often slide waits re-read the indicator when
// no DOM mutation arrives. Defaults to 100ms.
func WithPollInterval(d time.Duration) Option {
	return func(c *config) {
		c.pollInterval = d
	}
}

// WithRewindDelay sets the pause after each previous-slide click while
// rewinding. Defaults to 400ms.
func WithRewindDelay(d time.Duration) Option {
	return func(c *config) {
		c.rewindDelay = d
	}
}

// WithSettleDelay overrides the profile's wait before each screenshot.
func WithSettleDelay(d time.Duration) Option {
	return func(c *config) {
		c.settleDelay = &d
	}
}

// WithAdvanceDelay overrides the profile's wait after each next click.
func WithAdvanceDelay(d time.Duration) Option {
	return func(c *config) {
		c.advanceDelay = &d
	}
}

// WithCanvas sets the PDF page canvas. Defaults to [DefaultCanvas].
func WithCanvas(cv Canvas) Option {
	return func(c *config) {
		c.canvas = cv
	}
}

// WithSlideRange captures only the listed slides, e.g. "1-3,7".
// Every slide is still visited in order.
func WithSlideRange(spec string) Option {
	return func(c *config) {
		c.slideRange = spec
	}
}

// WithProgress registers a callback invoked after every capture attempt.
func WithProgress(fn func(Progress)) Option {
	return func(c *config) {
		c.progress = fn
	}
}
