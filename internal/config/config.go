// Package config loads doc2pdf settings from YAML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

// AppDir is the directory name under os.UserConfigDir searched for configs.
const AppDir = "doc2pdf"

// MaxInputSize limits YAML input to prevent memory exhaustion (1MB).
var MaxInputSize = 1 << 20

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrInputTooLarge   = errors.New("config exceeds maximum size")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Config holds all doc2pdf settings. Zero values mean "use the default".
type Config struct {
	Output  OutputConfig  `yaml:"output"`
	Retry   RetryConfig   `yaml:"retry"`
	Merge   MergeConfig   `yaml:"merge"`
	Office  OfficeConfig  `yaml:"office"`
	Browser BrowserConfig `yaml:"browser"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// OutputConfig defines what a run does with its PDFs.
type OutputConfig struct {
	MergeName           string `yaml:"mergeName"` // without .pdf (default: merged)
	Merge               bool   `yaml:"merge"`
	DeleteSource        bool   `yaml:"deleteSource"`
	DeleteIntermediates bool   `yaml:"deleteIntermediates"`
}

// RetryConfig bounds the conversion loop.
type RetryConfig struct {
	Attempts        int           `yaml:"attempts"`        // default 3
	ArtifactTimeout time.Duration `yaml:"artifactTimeout"` // default 10s
	PollInterval    time.Duration `yaml:"pollInterval"`    // default 250ms
	Pause           time.Duration `yaml:"pause"`           // between attempts, default 1s
}

// MergeConfig tunes the merge stage.
type MergeConfig struct {
	SettleDelay time.Duration `yaml:"settleDelay"` // before deleting intermediates, default 2.5s
}

// OfficeConfig configures the LibreOffice backend.
type OfficeConfig struct {
	Binary  string        `yaml:"binary"`
	Timeout time.Duration `yaml:"timeout"`
}

// BrowserConfig configures the headless Chrome backend.
type BrowserConfig struct {
	Engine    string        `yaml:"engine"` // rod or chromedp
	Bin       string        `yaml:"bin"`
	NoSandbox bool          `yaml:"noSandbox"`
	Timeout   time.Duration `yaml:"timeout"`
	CodeStyle string        `yaml:"codeStyle"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console or json
	File   string `yaml:"file"`   // empty = stderr
}

// MetricsConfig configures metric export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"` // node_exporter textfile path
}

// Validate rejects values the converter cannot run with.
func (c *Config) Validate() error {
	if c.Retry.Attempts < 0 {
		return fmt.Errorf("%w: retry.attempts must not be negative, got %d", ErrInvalidValue, c.Retry.Attempts)
	}
	for name, d := range map[string]time.Duration{
		"retry.artifactTimeout": c.Retry.ArtifactTimeout,
		"retry.pollInterval":    c.Retry.PollInterval,
		"retry.pause":           c.Retry.Pause,
		"merge.settleDelay":     c.Merge.SettleDelay,
		"office.timeout":        c.Office.Timeout,
		"browser.timeout":       c.Browser.Timeout,
	} {
		if d < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %v", ErrInvalidValue, name, d)
		}
	}
	if strings.ContainsAny(c.Output.MergeName, "/\\\x00") {
		return fmt.Errorf("%w: output.mergeName %q must be a file name", ErrInvalidValue, c.Output.MergeName)
	}
	switch strings.ToLower(c.Browser.Engine) {
	case "", "rod", "chromedp":
	default:
		return fmt.Errorf("%w: browser.engine %q (must be rod or chromedp)", ErrInvalidValue, c.Browser.Engine)
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level %q (must be debug, info, warn or error)", ErrInvalidValue, c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("%w: log.format %q (must be console or json)", ErrInvalidValue, c.Log.Format)
	}
	return nil
}

// DefaultConfig returns a configuration with every default spelled out.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{MergeName: "merged"},
		Retry: RetryConfig{
			Attempts:        3,
			ArtifactTimeout: 10 * time.Second,
			PollInterval:    250 * time.Millisecond,
			Pause:           time.Second,
		},
		Merge:   MergeConfig{SettleDelay: 2500 * time.Millisecond},
		Office:  OfficeConfig{Timeout: 2 * time.Minute},
		Browser: BrowserConfig{Engine: "rod", Timeout: 30 * time.Second, CodeStyle: "github"},
		Log:     LogConfig{Level: "warn", Format: "console"},
	}
}

// Parse decodes YAML strictly: unknown fields are rejected.
func Parse(data []byte) (*Config, error) {
	if len(data) > MaxInputSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	var cfg Config
	if len(strings.TrimSpace(string(data))) == 0 {
		return &cfg, nil
	}
	if err := yaml.UnmarshalWithOptions(data, &cfg, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !isFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\") || strings.HasSuffix(s, ".yaml") || strings.HasSuffix(s, ".yml")
}

// SearchPaths lists the files resolveConfigPath tries for name, in order.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(dir, AppDir, name+ext))
		}
	}
	return paths
}

// resolveConfigPath searches for a config file by name in the current
// directory, then in the user config directory.
func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
