package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	deckpdf "github.com/porticus-lab/go-deck-pdf"
	"github.com/porticus-lab/go-deck-pdf/internal/config"
)

// browserFlags are shared by every command that opens a browser.
type browserFlags struct {
	chromePath   string
	remote       string
	noSandbox    bool
	headful      bool
	stealth      bool
	autoDownload bool
}

func (f *browserFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.chromePath, "chrome", "", "path to the Chrome/Chromium executable")
	fs.StringVar(&f.remote, "remote", "", "DevTools WebSocket URL of a running Chrome")
	fs.BoolVar(&f.noSandbox, "no-sandbox", false, "disable the Chrome sandbox (needed as root)")
	fs.BoolVar(&f.headful, "headful", false, "show the browser window")
	fs.BoolVar(&f.stealth, "stealth", false, "use the go-rod backend with stealth evasions")
	fs.BoolVar(&f.autoDownload, "auto-download", false, "download Chromium if none is installed")
}

// apply overlays explicitly set flags on the browser config.
func (f *browserFlags) apply(cmd *cobra.Command, b *config.BrowserConfig) {
	fs := cmd.Flags()
	if fs.Changed("chrome") {
		b.ChromePath = f.chromePath
	}
	if fs.Changed("remote") {
		b.Remote = f.remote
	}
	if fs.Changed("no-sandbox") {
		b.NoSandbox = f.noSandbox
	}
	if fs.Changed("headful") {
		b.Headful = f.headful
	}
	if fs.Changed("stealth") {
		b.Stealth = f.stealth
	}
	if fs.Changed("auto-download") {
		b.AutoDownload = f.autoDownload
	}
}

// exporterOptions maps the configuration to library options.
func exporterOptions(cfg *config.Config) []deckpdf.Option {
	b, e := cfg.Browser, cfg.Export
	opts := []deckpdf.Option{
		deckpdf.WithTimeout(e.Timeout),
		deckpdf.WithLoadTimeout(e.LoadTimeout),
		deckpdf.WithWaitTimeout(e.WaitTimeout),
		deckpdf.WithPollInterval(e.PollInterval),
		deckpdf.WithRewindDelay(e.RewindDelay),
		deckpdf.WithCanvas(deckpdf.Canvas{
			Size: deckpdf.CanvasSize{Width: float64(e.Width), Height: float64(e.Height)},
		}),
	}
	if b.ChromePath != "" {
		opts = append(opts, deckpdf.WithChromePath(b.ChromePath))
	}
	if b.Remote != "" {
		opts = append(opts, deckpdf.WithRemoteURL(b.Remote))
	}
	if b.NoSandbox {
		opts = append(opts, deckpdf.WithNoSandbox())
	}
	if b.Headful {
		opts = append(opts, deckpdf.WithHeadful())
	}
	if b.Stealth {
		opts = append(opts, deckpdf.WithStealth())
	}
	if b.AutoDownload {
		opts = append(opts, deckpdf.WithAutoDownload())
	}
	for name, value := range b.Flags {
		opts = append(opts, deckpdf.WithFlag(name, value))
	}
	if e.SettleDelay > 0 {
		opts = append(opts, deckpdf.WithSettleDelay(e.SettleDelay))
	}
	if e.Slides != "" {
		opts = append(opts, deckpdf.WithSlideRange(e.Slides))
	}
	return opts
}

func newExportCmd() *cobra.Command {
	var (
		bf     browserFlags
		output string
		slides string
		settle time.Duration
		noBar  bool
	)

	cmd := &cobra.Command{
		Use:   "export <url>",
		Short: "Export a presentation to PDF",
		Example: `  deckpdf export https://pitch.com/v/quarterly-review
  deckpdf export -o deck.pdf --slides 1-10 https://docsend.com/view/abc123
  deckpdf export --remote ws://127.0.0.1:9222/devtools/browser/<id> https://docsend.com/view/abc123`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			bf.apply(cmd, &cfg.Browser)
			if cmd.Flags().Changed("output") {
				cfg.Export.Output = output
			}
			if cmd.Flags().Changed("slides") {
				cfg.Export.Slides = slides
			}
			if cmd.Flags().Changed("settle") {
				cfg.Export.SettleDelay = settle
			}

			logger := newLogger(cmd.ErrOrStderr(), cfg.Log)
			opts := append(exporterOptions(cfg), deckpdf.WithLogger(logger))

			var bar *progressbar.ProgressBar
			if !noBar {
				opts = append(opts, deckpdf.WithProgress(func(p deckpdf.Progress) {
					if bar == nil {
						bar = progressbar.NewOptions(p.Total,
							progressbar.OptionSetWriter(cmd.ErrOrStderr()),
							progressbar.OptionSetDescription("capturing slides"),
							progressbar.OptionShowCount(),
							progressbar.OptionClearOnFinish(),
						)
					}
					_ = bar.Set(p.Slide)
				}))
			}

			res, err := deckpdf.Export(cmd.Context(), args[0], opts...)
			if bar != nil {
				_ = bar.Finish()
			}
			if err != nil {
				color.New(color.FgRed, color.Bold).Fprintln(cmd.ErrOrStderr(), "EXPORT FAILED")
				return err
			}

			if dir := filepath.Dir(cfg.Export.Output); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("creating output directory: %w", err)
				}
			}
			if err := res.WriteToFile(cfg.Export.Output, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", cfg.Export.Output, err)
			}

			color.New(color.FgGreen, color.Bold).Fprintln(cmd.ErrOrStderr(), "EXPORT COMPLETE")
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d of %d slides from %s\n",
				cfg.Export.Output, res.Pages(), res.Total, res.Platform)
			if len(res.Skipped) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "skipped slides: %v\n", res.Skipped)
			}
			return nil
		},
	}

	bf.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: ~/Downloads/presentation.pdf)")
	cmd.Flags().StringVarP(&slides, "slides", "s", "", `slides to capture, e.g. "1-5,8" (default: all)`)
	cmd.Flags().DurationVar(&settle, "settle", 0, "wait before each screenshot (default: per viewer)")
	cmd.Flags().BoolVar(&noBar, "no-progress", false, "hide the progress bar")
	return cmd
}
