package deckpdf

import (
	"context"
	"fmt"

	"github.com/go-rod/rod/lib/launcher"

	"github.com/porticus-lab/go-deck-pdf/internal/cdp"
	"github.com/porticus-lab/go-deck-pdf/internal/rodtab"
)

// resolveBrowser downloads a compatible Chromium binary if one is not
// already cached and returns the path to the executable. The binary is
// stored in ~/.cache/rod/browser (Unix) or %APPDATA%\rod\browser (Windows).
func resolveBrowser() (string, error) {
	path, err := launcher.NewBrowser().Get()
	if err != nil {
		return "", fmt.Errorf("deckpdf: downloading browser: %w", err)
	}
	return path, nil
}

// tab is a Page the exporter owns and must close.
type tab interface {
	Page
	Close() error
}

// backend opens tabs in one browser instance.
type backend interface {
	open(ctx context.Context, rawURL string) (tab, error)
	close() error
}

func startBackend(cfg *config) (backend, error) {
	size := cfg.canvas.resolved().Size
	w, h := int(size.Width), int(size.Height)
	if cfg.stealth {
		b, err := rodtab.Start(rodtab.Config{
			RemoteURL: cfg.remoteURL,
			ExecPath:  cfg.chromePath,
			Headless:  cfg.headless,
			NoSandbox: cfg.noSandbox,
			Flags:     cfg.flags,
			Width:     w,
			Height:    h,
			Logger:    cfg.logger,
		})
		if err != nil {
			return nil, fmt.Errorf("deckpdf: starting browser: %w", err)
		}
		return rodBackend{b}, nil
	}

	b, err := cdp.Start(cdp.Config{
		ExecPath:  cfg.chromePath,
		RemoteURL: cfg.remoteURL,
		Headless:  cfg.headless,
		NoSandbox: cfg.noSandbox,
		Flags:     cfg.flags,
		Width:     w,
		Height:    h,
		Logger:    cfg.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("deckpdf: starting browser: %w", err)
	}
	return cdpBackend{b}, nil
}

type cdpBackend struct{ b *cdp.Browser }

func (c cdpBackend) open(ctx context.Context, rawURL string) (tab, error) {
	t, err := c.b.Open(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (c cdpBackend) close() error { return c.b.Close() }

type rodBackend struct{ b *rodtab.Browser }

func (r rodBackend) open(ctx context.Context, rawURL string) (tab, error) {
	t, err := r.b.Open(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r rodBackend) close() error { return r.b.Close() }
