package main

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"path/filepath"
	"strings"
	"testing"

	deckpdf "github.com/porticus-lab/go-deck-pdf"
	"github.com/porticus-lab/go-deck-pdf/internal/config"
)

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err = rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestSitesCommand(t *testing.T) {
	out, _, err := execute(t, "sites")
	if err != nil {
		t.Fatalf("sites: %v", err)
	}
	for _, want := range []string{"NAME", "pitch.com", "docsend.com", "papermark.com", "1.5s"} {
		if !strings.Contains(out, want) {
			t.Errorf("sites output missing %q:\n%s", want, out)
		}
	}
}

func TestInfoCommand(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 8, 4))); err != nil {
		t.Fatal(err)
	}
	res, err := deckpdf.Assemble([][]byte{buf.Bytes(), buf.Bytes()}, nil)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	path := filepath.Join(t.TempDir(), "deck.pdf")
	if err := res.WriteToFile(path, 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := execute(t, "info", path)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	for _, want := range []string{"Pages:   2", "Page 1: 1440 x 735 pt", "Page 2: 1440 x 735 pt"} {
		if !strings.Contains(out, want) {
			t.Errorf("info output missing %q:\n%s", want, out)
		}
	}
}

func TestInfoCommand_Missing(t *testing.T) {
	if _, _, err := execute(t, "info", filepath.Join(t.TempDir(), "nope.pdf")); err == nil {
		t.Fatal("info on a missing file succeeded")
	}
}

func TestExportCommand_Unsupported(t *testing.T) {
	_, errOut, err := execute(t, "export", "--no-progress", "https://example.com/deck")
	if !errors.Is(err, deckpdf.ErrUnsupportedSite) {
		t.Fatalf("export error = %v, want ErrUnsupportedSite", err)
	}
	if !strings.Contains(errOut, "EXPORT FAILED") {
		t.Errorf("stderr missing failure status:\n%s", errOut)
	}
}

func TestSlideCommand_ExclusiveFlags(t *testing.T) {
	_, _, err := execute(t, "slide", "--next", "--prev", "https://pitch.com/v/deck")
	if err == nil || !strings.Contains(err.Error(), "mutually exclusive") {
		t.Fatalf("slide error = %v, want mutually exclusive", err)
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		cfg       config.LogConfig
		wantDebug bool
		wantJSON  bool
	}{
		{config.LogConfig{Level: "debug", Format: "json"}, true, true},
		{config.LogConfig{Level: "info", Format: "text"}, false, false},
		{config.LogConfig{Level: "WARN"}, false, false},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		l := newLogger(&buf, tt.cfg)
		l.Debug("deckpdf: probe", "slide", 1)
		l.Error("deckpdf: failure", "slide", 2)

		out := buf.String()
		if got := strings.Contains(out, "probe"); got != tt.wantDebug {
			t.Errorf("%+v: debug logged = %v, want %v", tt.cfg, got, tt.wantDebug)
		}
		if got := strings.HasPrefix(out, "{"); got != tt.wantJSON {
			t.Errorf("%+v: JSON output = %v, want %v:\n%s", tt.cfg, got, tt.wantJSON, out)
		}
	}
}

func TestExporterOptions(t *testing.T) {
	cfg := config.Default()
	base := len(exporterOptions(cfg))

	cfg.Browser.NoSandbox = true
	cfg.Browser.Stealth = true
	cfg.Browser.Flags = map[string]string{"lang": "en-US"}
	cfg.Export.Slides = "1-3"
	if got := len(exporterOptions(cfg)); got != base+4 {
		t.Errorf("exporterOptions returned %d options, want %d", got, base+4)
	}
}
