// deckpdf exports web-hosted slide presentations (Pitch, DocSend,
// Papermark) to PDF by stepping through the slides in Chrome.
//
// Usage:
//
//	deckpdf export [flags] <url>
//	deckpdf slide [--next|--prev] <url>
//	deckpdf sites
//	deckpdf info <file.pdf>
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/porticus-lab/go-deck-pdf/internal/config"
)

var (
	// Version is set during build
	Version = "dev"

	configPath string
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "deckpdf",
	Short: "Export web-hosted slide presentations to PDF",
	Long: `deckpdf opens a presentation hosted on Pitch, DocSend or Papermark in
Chrome, steps through every slide with the viewer's own controls,
screenshots each one and writes them to a landscape PDF.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text, json")

	rootCmd.AddCommand(newExportCmd(), newSlideCmd(), newSitesCmd(), newInfoCmd())
}

// loadConfig reads the config file and applies the global flags on top.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", configPath, err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
