package deckpdf

import (
	"context"
	"fmt"
	"sync"
)

// Exporter exports web-hosted presentations to PDF.
//
// An Exporter manages a browser instance that is reused across exports.
// It is safe for concurrent use; every export runs in its own tab.
//
// Call [Exporter.Close] when the Exporter is no longer needed to release
// browser resources.
type Exporter struct {
	cfg     config
	backend backend

	mu     sync.Mutex
	closed bool
}

// NewExporter creates an Exporter with the given options.
//
// It starts a headless browser (or connects to the one given with
// [WithRemoteURL]). The caller must call [Exporter.Close] when finished.
func NewExporter(opts ...Option) (*Exporter, error) {
	cfg := newConfig(opts)

	if cfg.autoDownload && cfg.chromePath == "" && cfg.remoteURL == "" {
		path, err := resolveBrowser()
		if err != nil {
			return nil, err
		}
		cfg.chromePath = path
	}

	b, err := startBackend(&cfg)
	if err != nil {
		return nil, err
	}
	return &Exporter{cfg: cfg, backend: b}, nil
}

// Close releases all resources held by the Exporter, including the
// browser process. Close is idempotent.
func (e *Exporter) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	return e.backend.close()
}

// Session is an open tab showing a supported presentation viewer. It
// embeds the [Driver] for interactive navigation.
type Session struct {
	*Driver
	tab tab
}

// Open detects the viewer for rawURL, opens it in a tab and waits until
// its slide indicator is readable. Unsupported URLs fail with
// [ErrUnsupportedSite] before any browser work. The caller must close the
// returned Session.
func (e *Exporter) Open(ctx context.Context, rawURL string) (*Session, error) {
	if err := e.checkClosed(); err != nil {
		return nil, err
	}
	if _, err := Detect(rawURL); err != nil {
		return nil, err
	}

	t, err := e.backend.open(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("deckpdf: opening %s: %w", rawURL, err)
	}
	drv, err := newDriver(t, &e.cfg)
	if err != nil {
		t.Close()
		return nil, err
	}
	if err := drv.WaitReady(ctx); err != nil {
		t.Close()
		return nil, err
	}
	return &Session{Driver: drv, tab: t}, nil
}

// Export captures every slide of the presentation shown in the session,
// bounded by [WithTimeout].
func (s *Session) Export(ctx context.Context) (*Result, error) {
	return s.capture(ctx)
}

// Close closes the session's tab.
func (s *Session) Close() error {
	return s.tab.Close()
}

// Export opens rawURL and exports the presentation to a PDF.
func (e *Exporter) Export(ctx context.Context, rawURL string) (*Result, error) {
	if e.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.timeout)
		defer cancel()
	}

	s, err := e.Open(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	res, err := s.Export(ctx)
	if err != nil {
		return nil, fmt.Errorf("deckpdf: exporting %s: %w", rawURL, err)
	}
	return res, nil
}

func (e *Exporter) checkClosed() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	return nil
}

// --- Package-level convenience functions ---

// Export exports the presentation at rawURL using a temporary [Exporter].
// Unsupported URLs fail with [ErrUnsupportedSite] without starting a browser.
func Export(ctx context.Context, rawURL string, opts ...Option) (*Result, error) {
	if _, err := Detect(rawURL); err != nil {
		return nil, err
	}
	exp, err := NewExporter(opts...)
	if err != nil {
		return nil, err
	}
	defer exp.Close()
	return exp.Export(ctx, rawURL)
}
