// Package cdp drives Chrome tabs over the DevTools protocol with chromedp.
package cdp

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"

	"github.com/porticus-lab/go-deck-pdf/internal/domjs"
)

// Config configures a Browser.
type Config struct {
	// ExecPath is the Chrome executable. Empty searches standard locations.
	ExecPath string
	// RemoteURL is the DevTools WebSocket URL of a running Chrome.
	// Empty launches a local Chrome.
	RemoteURL string
	Headless  bool
	NoSandbox bool
	// Flags are extra command-line flags for a local Chrome.
	Flags map[string]any
	// Width and Height set the viewport, in CSS pixels.
	Width  int
	Height int
	Logger *slog.Logger
}

// Browser is a running (or connected) Chrome instance.
type Browser struct {
	cfg           Config
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	mu       sync.Mutex
	attached []context.CancelFunc
}

// Start launches Chrome, or connects to cfg.RemoteURL, and waits until the
// browser answers so startup errors surface here.
func Start(cfg Config) (*Browser, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	var (
		allocCtx    context.Context
		allocCancel context.CancelFunc
	)
	if cfg.RemoteURL != "" {
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
		cfg.Logger.Info("cdp: connecting to remote chrome", "url", cfg.RemoteURL)
	} else {
		allocOpts := append(
			chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("disable-extensions", true),
			chromedp.Flag("disable-sync", true),
			chromedp.Flag("disable-translate", true),
			chromedp.Flag("no-first-run", true),
			chromedp.Flag("hide-scrollbars", true),
			chromedp.WindowSize(cfg.Width, cfg.Height),
		)
		if cfg.Headless {
			allocOpts = append(allocOpts, chromedp.Flag("headless", "new"))
		} else {
			allocOpts = append(allocOpts, chromedp.Flag("headless", false))
		}
		if cfg.ExecPath != "" {
			allocOpts = append(allocOpts, chromedp.ExecPath(cfg.ExecPath))
		}
		if cfg.NoSandbox {
			allocOpts = append(allocOpts, chromedp.Flag("no-sandbox", true))
		}
		for name, value := range cfg.Flags {
			allocOpts = append(allocOpts, chromedp.Flag(name, value))
		}
		allocCtx, allocCancel = chromedp.NewExecAllocator(context.Background(), allocOpts...)
	}

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Start the browser eagerly so errors surface at creation time.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("cdp: starting browser: %w", err)
	}

	return &Browser{
		cfg:           cfg,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// Close shuts the browser down, or disconnects from a remote one.
//
// Cancelling a chromedp context closes its target, so contexts of tabs
// attached in a remote Chrome are released only once the connection is
// gone. They stay alive until then; see [Tab.Close].
func (b *Browser) Close() error {
	b.browserCancel()
	b.allocCancel()

	b.mu.Lock()
	attached := b.attached
	b.attached = nil
	b.mu.Unlock()
	if len(attached) == 0 {
		return nil
	}
	if c := chromedp.FromContext(b.browserCtx); c != nil && c.Browser != nil {
		select {
		case <-c.Browser.LostConnection:
		case <-time.After(5 * time.Second):
			b.cfg.Logger.Warn("cdp: connection still open, keeping attached tab contexts")
			return nil
		}
	}
	for _, cancel := range attached {
		cancel()
	}
	return nil
}

// attach returns a context for the existing target id. The context never
// ends with its parent, so neither Tab.Close nor Browser.Close close the
// user's tab.
func (b *Browser) attach(id target.ID) context.Context {
	ctx, cancel := chromedp.NewContext(context.WithoutCancel(b.browserCtx), chromedp.WithTargetID(id))
	b.mu.Lock()
	b.attached = append(b.attached, cancel)
	b.mu.Unlock()
	return ctx
}

// Open returns a tab showing rawURL. Connected to a remote Chrome, an
// already open tab on the same document is reused as is; otherwise a new
// tab is created and navigated.
func (b *Browser) Open(ctx context.Context, rawURL string) (*Tab, error) {
	if b.cfg.RemoteURL != "" {
		id, err := b.findTarget(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		if id != "" {
			b.cfg.Logger.Info("cdp: attaching to open tab", "url", rawURL, "target", id)
			t := newTab(b.attach(id), nil, rawURL)
			t.attached = true
			if err := t.start(ctx); err != nil {
				return nil, fmt.Errorf("cdp: attaching to %s: %w", rawURL, err)
			}
			if err := t.run(ctx, t.observe(false)); err != nil {
				return nil, fmt.Errorf("cdp: attaching to %s: %w", rawURL, err)
			}
			return t, nil
		}
	}

	tabCtx, cancel := chromedp.NewContext(b.browserCtx)
	t := newTab(tabCtx, cancel, rawURL)
	if err := t.start(ctx); err != nil {
		cancel()
		return nil, fmt.Errorf("cdp: opening tab: %w", err)
	}
	err := t.run(ctx,
		chromedp.EmulateViewport(int64(b.cfg.Width), int64(b.cfg.Height)),
		t.observe(true),
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("cdp: navigate %s: %w", rawURL, err)
	}
	return t, nil
}

// findTarget returns the ID of an open page showing rawURL, ignoring the
// fragment, or "" when there is none.
func (b *Browser) findTarget(ctx context.Context, rawURL string) (target.ID, error) {
	targets, err := chromedp.Targets(b.browserCtx)
	if err != nil {
		return "", fmt.Errorf("cdp: listing targets: %w", err)
	}
	want := stripFragment(rawURL)
	for _, info := range targets {
		if info.Type == "page" && stripFragment(info.URL) == want {
			return info.TargetID, nil
		}
	}
	return "", ctx.Err()
}

func stripFragment(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Fragment = ""
	return strings.TrimSuffix(u.String(), "/")
}

// Tab is one Chrome tab.
type Tab struct {
	ctx       context.Context
	cancel    context.CancelFunc
	url       string
	mutations chan struct{}
	attached  bool
	closeOnce sync.Once
}

func newTab(ctx context.Context, cancel context.CancelFunc, rawURL string) *Tab {
	return &Tab{
		ctx:       ctx,
		cancel:    cancel,
		url:       rawURL,
		mutations: make(chan struct{}, 1),
	}
}

// observe installs the mutation binding and observer script. Before a
// navigation the script is registered for new documents; on an attached
// tab it is evaluated in the current document.
func (t *Tab) observe(beforeNavigate bool) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		chromedp.ListenTarget(t.ctx, func(ev interface{}) {
			if e, ok := ev.(*runtime.EventBindingCalled); ok && e.Name == domjs.Binding {
				select {
				case t.mutations <- struct{}{}:
				default:
				}
			}
		})
		if err := runtime.AddBinding(domjs.Binding).Do(ctx); err != nil {
			return fmt.Errorf("adding binding: %w", err)
		}
		if beforeNavigate {
			_, err := page.AddScriptToEvaluateOnNewDocument(domjs.Observer).Do(ctx)
			return err
		}
		return chromedp.Evaluate(domjs.Observer, nil).Do(ctx)
	})
}

// start creates or attaches the tab target. The first Run on a tab must
// use the tab context itself: the target lives as long as that context.
func (t *Tab) start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return chromedp.Run(t.ctx)
}

// run executes actions on the tab, cancelled early when ctx ends.
func (t *Tab) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(t.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

func (t *Tab) query(ctx context.Context, fn, selector string) (domjs.Reply, error) {
	var raw string
	if err := t.run(ctx, chromedp.Evaluate(domjs.Call(fn, selector), &raw)); err != nil {
		return domjs.Reply{}, err
	}
	return domjs.Decode(raw)
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
	var buf []byte
	if err := t.run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, err
	}
	return buf, nil
}

// Mutations delivers a value whenever the document changes.
func (t *Tab) Mutations() <-chan struct{} {
	return t.mutations
}

// Close releases the tab. Close is idempotent. A tab attached to in a
// remote Chrome stays open and its context lives until [Browser.Close],
// one per attached session.
func (t *Tab) Close() error {
	if t.attached {
		return nil
	}
	t.closeOnce.Do(t.cancel)
	return nil
}
