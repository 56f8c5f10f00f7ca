// Package rodtab drives Chrome tabs with go-rod, applying the stealth
// evasions to every page so viewers that reject automation still render.
package rodtab

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/porticus-lab/go-deck-pdf/internal/domjs"
)

// Config configures a Browser.
type Config struct {
	// RemoteURL is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local Chrome via launcher.
	RemoteURL string
	ExecPath  string
	Headless  bool
	NoSandbox bool
	Flags     map[string]any
	Width     int
	Height    int
	// NavigateTimeout bounds page navigation. Default: 30s.
	NavigateTimeout time.Duration
	Logger          *slog.Logger
}

func (c *Config) defaults() {
	if c.NavigateTimeout <= 0 {
		c.NavigateTimeout = 30 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Browser is a Chrome instance controlled through rod.
type Browser struct {
	cfg     Config
	browser *rod.Browser
	lnch    *launcher.Launcher
}

// Start launches Chrome (or connects to a remote instance).
func Start(cfg Config) (*Browser, error) {
	cfg.defaults()
	log := cfg.Logger

	var wsURL string
	var lnch *launcher.Launcher

	if cfg.RemoteURL != "" {
		wsURL = cfg.RemoteURL
		log.Info("rodtab: connecting to remote", "url", wsURL)
	} else {
		l := launcher.New().
			Headless(cfg.Headless).
			NoSandbox(cfg.NoSandbox).
			Set("window-size", fmt.Sprintf("%d,%d", cfg.Width, cfg.Height))
		if cfg.ExecPath != "" {
			l = l.Bin(cfg.ExecPath)
		}

		// Anti-detection flags.
		l = l.Set("disable-blink-features", "AutomationControlled")

		for name, value := range cfg.Flags {
			switch v := value.(type) {
			case bool:
				if v {
					l = l.Set(flags.Flag(name))
				} else {
					l = l.Delete(flags.Flag(name))
				}
			default:
				l = l.Set(flags.Flag(name), fmt.Sprint(v))
			}
		}

		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("rodtab: launch: %w", err)
		}
		wsURL = u
		lnch = l
		log.Info("rodtab: launched local chrome", "url", wsURL)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		if lnch != nil {
			lnch.Cleanup()
		}
		return nil, fmt.Errorf("rodtab: connect: %w", err)
	}

	return &Browser{cfg: cfg, browser: b, lnch: lnch}, nil
}

// Close shuts down Chrome.
func (b *Browser) Close() error {
	err := b.browser.Close()
	if b.lnch != nil {
		b.lnch.Cleanup()
	}
	return err
}

// Open creates a stealth tab, installs the mutation observer and navigates
// it to rawURL.
func (b *Browser) Open(ctx context.Context, rawURL string) (*Tab, error) {
	page, err := stealth.Page(b.browser)
	if err != nil {
		return nil, fmt.Errorf("rodtab: create tab: %w", err)
	}

	// The tab context outlives Open and ends the event listener on Close.
	tabCtx, cancel := context.WithCancel(context.Background())
	t := &Tab{
		page:      page.Context(tabCtx),
		cancel:    cancel,
		url:       rawURL,
		mutations: make(chan struct{}, 1),
		listening: make(chan struct{}),
	}
	if err := t.setup(b.cfg.Width, b.cfg.Height); err != nil {
		t.Close()
		return nil, err
	}

	navCtx, navCancel := context.WithTimeout(ctx, b.cfg.NavigateTimeout)
	defer navCancel()

	if err := t.page.Context(navCtx).Navigate(rawURL); err != nil {
		t.Close()
		return nil, fmt.Errorf("rodtab: navigate %s: %w", rawURL, err)
	}
	if err := t.page.Context(navCtx).WaitLoad(); err != nil {
		b.cfg.Logger.Warn("rodtab: wait load timeout", "url", rawURL, "error", err)
	}
	return t, nil
}

// Tab is one stealth tab.
type Tab struct {
	page      *rod.Page
	cancel    context.CancelFunc
	url       string
	mutations chan struct{}
	listening chan struct{} // closed when the binding listener returns
	closeOnce sync.Once
	closeErr  error
}

func (t *Tab) setup(width, height int) error {
	err := t.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		return fmt.Errorf("rodtab: set viewport: %w", err)
	}

	wait := t.page.EachEvent(func(e *proto.RuntimeBindingCalled) {
		if e.Name != domjs.Binding {
			return
		}
		select {
		case t.mutations <- struct{}{}:
		default:
		}
	})
	go func() {
		defer close(t.listening)
		wait()
	}()

	if err := (proto.RuntimeAddBinding{Name: domjs.Binding}).Call(t.page); err != nil {
		return fmt.Errorf("rodtab: add binding: %w", err)
	}
	if _, err := t.page.EvalOnNewDocument(domjs.Observer); err != nil {
		return fmt.Errorf("rodtab: install observer: %w", err)
	}
	return nil
}

func (t *Tab) query(ctx context.Context, fn, selector string) (domjs.Reply, error) {
	res, err := t.page.Context(ctx).Eval(fn, selector)
	if err != nil {
		return domjs.Reply{}, err
	}
	return domjs.Decode(res.Value.Str())
}

// URL returns the address the tab was opened on.
func (t *Tab) URL() string {
	return t.url
}

// Text returns the text content of the first element matching selector.
func (t *Tab) Text(ctx context.Context, selector string) (string, bool, error) {
	r, err := t.query(ctx, domjs.Text, selector)
	return r.Text, r.Found, err
}

// Visible reports whether the first element matching selector is shown.
func (t *Tab) Visible(ctx context.Context, selector string) (bool, bool, error) {
	r, err := t.query(ctx, domjs.Visible, selector)
	return r.Visible, r.Found, err
}

// Click activates the first element matching selector.
func (t *Tab) Click(ctx context.Context, selector string, synthetic bool) (bool, error) {
	fn := domjs.Click
	if synthetic {
		fn = domjs.SyntheticClick
	}
	r, err := t.query(ctx, fn, selector)
	return r.Found, err
}

// Screenshot captures the viewport as PNG.
func (t *Tab) Screenshot(ctx context.Context) ([]byte, error) {
	return t.page.Context(ctx).Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
}

// Mutations delivers a value whenever the document changes.
func (t *Tab) Mutations() <-chan struct{} {
	return t.mutations
}

// Close closes the tab and stops its event listener. Close is idempotent.
func (t *Tab) Close() error {
	t.closeOnce.Do(func() {
		t.closeErr = t.page.Close()
		t.cancel()
	})
	return t.closeErr
}
