// Package config handles deckpdf configuration from YAML files.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFilename is the fixed name of an exported PDF.
const DefaultFilename = "presentation.pdf"

// Config is the top-level deckpdf configuration.
type Config struct {
	Browser BrowserConfig `yaml:"browser"`
	Export  ExportConfig  `yaml:"export"`
	Log     LogConfig     `yaml:"log"`
}

// BrowserConfig controls how Chrome is started.
type BrowserConfig struct {
	ChromePath   string            `yaml:"chrome_path"`
	Remote       string            `yaml:"remote"` // DevTools WebSocket URL
	NoSandbox    bool              `yaml:"no_sandbox"`
	Headful      bool              `yaml:"headful"`
	Stealth      bool              `yaml:"stealth"`
	AutoDownload bool              `yaml:"auto_download"`
	Flags        map[string]string `yaml:"flags"`
}

// ExportConfig controls navigation timing and output.
type ExportConfig struct {
	Output       string        `yaml:"output"`
	Timeout      time.Duration `yaml:"timeout"`
	LoadTimeout  time.Duration `yaml:"load_timeout"`
	WaitTimeout  time.Duration `yaml:"wait_timeout"`
	PollInterval time.Duration `yaml:"poll_interval"`
	RewindDelay  time.Duration `yaml:"rewind_delay"`
	// SettleDelay overrides every viewer's wait before a screenshot.
	SettleDelay time.Duration `yaml:"settle_delay"`
	Width       int           `yaml:"width"`
	Height      int           `yaml:"height"`
	Slides      string        `yaml:"slides"` // e.g. "1-5,8"
}

// LogConfig controls the CLI logger.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Default returns the configuration used without a config file.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadFile reads a YAML configuration file. An empty path yields [Default].
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Export.Output == "" {
		c.Export.Output = DefaultOutput()
	}
	if c.Export.Timeout <= 0 {
		c.Export.Timeout = 10 * time.Minute
	}
	if c.Export.LoadTimeout <= 0 {
		c.Export.LoadTimeout = 30 * time.Second
	}
	if c.Export.WaitTimeout <= 0 {
		c.Export.WaitTimeout = 8 * time.Second
	}
	if c.Export.PollInterval <= 0 {
		c.Export.PollInterval = 100 * time.Millisecond
	}
	if c.Export.RewindDelay <= 0 {
		c.Export.RewindDelay = 400 * time.Millisecond
	}
	if c.Export.Width <= 0 {
		c.Export.Width = 1920
	}
	if c.Export.Height <= 0 {
		c.Export.Height = 980
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// DefaultOutput returns presentation.pdf in the user's Downloads directory,
// or in the working directory when there is none.
func DefaultOutput() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultFilename
	}
	dir := filepath.Join(home, "Downloads")
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		return DefaultFilename
	}
	return filepath.Join(dir, DefaultFilename)
}

// Validate reports configuration combinations that cannot work.
func (c *Config) Validate() error {
	if c.Browser.Remote != "" && c.Browser.AutoDownload {
		return errors.New("config: auto_download has no effect with a remote browser")
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.New("config: log.format must be text or json")
	}
	return nil
}
