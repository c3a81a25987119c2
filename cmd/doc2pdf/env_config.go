package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/alnah/go-doc2pdf/internal/config"
)

// envPrefix namespaces doc2pdf environment variables.
const envPrefix = "DOC2PDF_"

// envConfig holds configuration from environment variables.
// Provides CI-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath      string        // DOC2PDF_CONFIG
	MergeName       string        // DOC2PDF_MERGE_NAME
	Attempts        int           // DOC2PDF_ATTEMPTS
	ArtifactTimeout time.Duration // DOC2PDF_ARTIFACT_TIMEOUT
	PollInterval    time.Duration // DOC2PDF_POLL_INTERVAL
	Soffice         string        // DOC2PDF_SOFFICE
	Browser         string        // DOC2PDF_BROWSER
	LogLevel        string        // DOC2PDF_LOG_LEVEL
	LogFormat       string        // DOC2PDF_LOG_FORMAT
	LogFile         string        // DOC2PDF_LOG_FILE
	MetricsFile     string        // DOC2PDF_METRICS_FILE
}

// knownEnvVars lists valid DOC2PDF_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"DOC2PDF_CONFIG":           true,
	"DOC2PDF_MERGE_NAME":       true,
	"DOC2PDF_ATTEMPTS":         true,
	"DOC2PDF_ARTIFACT_TIMEOUT": true,
	"DOC2PDF_POLL_INTERVAL":    true,
	"DOC2PDF_SOFFICE":          true,
	"DOC2PDF_BROWSER":          true,
	"DOC2PDF_LOG_LEVEL":        true,
	"DOC2PDF_LOG_FORMAT":       true,
	"DOC2PDF_LOG_FILE":         true,
	"DOC2PDF_METRICS_FILE":     true,
	"DOC2PDF_CONTAINER":        true,
}

// loadDotEnv loads a .env file from the working directory, if present.
// Variables already set in the environment win over the file.
func loadDotEnv() {
	_ = godotenv.Load()
}

// loadEnvConfig reads configuration from environment variables.
// Malformed numbers and durations are ignored.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath:  getenv("DOC2PDF_CONFIG"),
		MergeName:   getenv("DOC2PDF_MERGE_NAME"),
		Soffice:     getenv("DOC2PDF_SOFFICE"),
		Browser:     getenv("DOC2PDF_BROWSER"),
		LogLevel:    getenv("DOC2PDF_LOG_LEVEL"),
		LogFormat:   getenv("DOC2PDF_LOG_FORMAT"),
		LogFile:     getenv("DOC2PDF_LOG_FILE"),
		MetricsFile: getenv("DOC2PDF_METRICS_FILE"),
	}

	if v := getenv("DOC2PDF_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Attempts = n
		}
	}
	if v := getenv("DOC2PDF_ARTIFACT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.ArtifactTimeout = d
		}
	}
	if v := getenv("DOC2PDF_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.PollInterval = d
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized DOC2PDF_* variables.
// Helps catch typos like DOC2PDF_ATTEMPT instead of DOC2PDF_ATTEMPTS.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, kv := range environ {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		name := strings.SplitN(kv, "=", 2)[0]
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig overlays environment values on cfg.
// Precedence: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.MergeName != "" {
		cfg.Output.MergeName = env.MergeName
	}
	if env.Attempts > 0 {
		cfg.Retry.Attempts = env.Attempts
	}
	if env.ArtifactTimeout > 0 {
		cfg.Retry.ArtifactTimeout = env.ArtifactTimeout
	}
	if env.PollInterval > 0 {
		cfg.Retry.PollInterval = env.PollInterval
	}
	if env.Soffice != "" {
		cfg.Office.Binary = env.Soffice
	}
	if env.Browser != "" {
		cfg.Browser.Engine = env.Browser
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.LogFormat != "" {
		cfg.Log.Format = env.LogFormat
	}
	if env.LogFile != "" {
		cfg.Log.File = env.LogFile
	}
	if env.MetricsFile != "" {
		cfg.Metrics.Textfile = env.MetricsFile
	}
}
