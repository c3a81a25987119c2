package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-doc2pdf/internal/config"
)

func getenvFrom(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

// ---------------------------------------------------------------------------
// TestLoadEnvConfig - Environment parsing
// ---------------------------------------------------------------------------

func TestLoadEnvConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		vars map[string]string
		want envConfig
	}{
		{
			name: "empty",
			vars: nil,
			want: envConfig{},
		},
		{
			name: "all set",
			vars: map[string]string{
				"DOC2PDF_CONFIG":           "work",
				"DOC2PDF_MERGE_NAME":       "bundle",
				"DOC2PDF_ATTEMPTS":         "5",
				"DOC2PDF_ARTIFACT_TIMEOUT": "30s",
				"DOC2PDF_POLL_INTERVAL":    "100ms",
				"DOC2PDF_SOFFICE":          "/opt/soffice",
				"DOC2PDF_BROWSER":          "chromedp",
				"DOC2PDF_LOG_LEVEL":        "debug",
				"DOC2PDF_LOG_FORMAT":       "json",
				"DOC2PDF_LOG_FILE":         "/tmp/d.log",
				"DOC2PDF_METRICS_FILE":     "/tmp/d.prom",
			},
			want: envConfig{
				ConfigPath:      "work",
				MergeName:       "bundle",
				Attempts:        5,
				ArtifactTimeout: 30 * time.Second,
				PollInterval:    100 * time.Millisecond,
				Soffice:         "/opt/soffice",
				Browser:         "chromedp",
				LogLevel:        "debug",
				LogFormat:       "json",
				LogFile:         "/tmp/d.log",
				MetricsFile:     "/tmp/d.prom",
			},
		},
		{
			name: "malformed numbers ignored",
			vars: map[string]string{
				"DOC2PDF_ATTEMPTS":         "three",
				"DOC2PDF_ARTIFACT_TIMEOUT": "soon",
				"DOC2PDF_POLL_INTERVAL":    "-1s",
			},
			want: envConfig{},
		},
		{
			name: "zero attempts ignored",
			vars: map[string]string{"DOC2PDF_ATTEMPTS": "0"},
			want: envConfig{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := loadEnvConfig(getenvFrom(tt.vars))
			if *got != tt.want {
				t.Errorf("loadEnvConfig() = %+v, want %+v", *got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestApplyEnvConfig - Overlay on config
// ---------------------------------------------------------------------------

func TestApplyEnvConfig(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Office.Binary = "/from/file"

	applyEnvConfig(&envConfig{
		Attempts: 7,
		Soffice:  "/from/env",
		Browser:  "chromedp",
		LogLevel: "info",
	}, cfg)

	if cfg.Retry.Attempts != 7 {
		t.Errorf("Attempts = %d, want 7", cfg.Retry.Attempts)
	}
	if cfg.Office.Binary != "/from/env" {
		t.Errorf("Office.Binary = %q, env should override file", cfg.Office.Binary)
	}
	if cfg.Browser.Engine != "chromedp" {
		t.Errorf("Browser.Engine = %q", cfg.Browser.Engine)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
	if cfg.Retry.ArtifactTimeout != 10*time.Second {
		t.Errorf("unset env values must not change config, ArtifactTimeout = %v", cfg.Retry.ArtifactTimeout)
	}
}

// ---------------------------------------------------------------------------
// TestWarnUnknownEnvVars - Typo detection
// ---------------------------------------------------------------------------

func TestWarnUnknownEnvVars(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	warnUnknownEnvVars(&buf, []string{
		"HOME=/root",
		"DOC2PDF_ATTEMPTS=3",
		"DOC2PDF_ATTEMPT=3",
		"DOC2PDF_CONTAINER=1",
		"DOC2PDF_SOFICE=/x=y",
	})

	out := buf.String()
	for _, want := range []string{"DOC2PDF_ATTEMPT ", "DOC2PDF_SOFICE "} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing warning for %q:\n%s", strings.TrimSpace(want), out)
		}
	}
	if strings.Count(out, "warning:") != 2 {
		t.Errorf("want exactly 2 warnings:\n%s", out)
	}
}
