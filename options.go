package doc2pdf

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Defaults for the conversion loop and merge stage.
const (
	DefaultAttempts        = 3
	DefaultArtifactTimeout = 10 * time.Second
	DefaultPollInterval    = 250 * time.Millisecond
	DefaultRetryPause      = time.Second
	DefaultSettleDelay     = 2500 * time.Millisecond
)

// settings holds configuration shared by Driver, Runner and Pipeline.
type settings struct {
	attempts        int
	artifactTimeout time.Duration
	pollInterval    time.Duration
	retryPause      time.Duration
	settleDelay     time.Duration
	logger          *zap.Logger
	metrics         *Metrics
	status          StatusFunc
	merger          Merger
}

func defaultSettings() settings {
	return settings{
		attempts:        DefaultAttempts,
		artifactTimeout: DefaultArtifactTimeout,
		pollInterval:    DefaultPollInterval,
		retryPause:      DefaultRetryPause,
		settleDelay:     DefaultSettleDelay,
		logger:          zap.NewNop(),
	}
}

func newSettings(opts []Option) (settings, error) {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	if s.attempts < 1 {
		return s, fmt.Errorf("%w: %d (must be >= 1)", ErrInvalidAttempts, s.attempts)
	}
	if s.pollInterval <= 0 {
		return s, fmt.Errorf("%w: %v", ErrInvalidPollInterval, s.pollInterval)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s, nil
}

// Option configures a Driver, Runner or Pipeline.
type Option func(*settings)

// WithAttempts sets how many times a document is tried before the run aborts.
func WithAttempts(n int) Option {
	return func(s *settings) { s.attempts = n }
}

// WithArtifactTimeout bounds how long one attempt waits for the PDF to appear.
func WithArtifactTimeout(d time.Duration) Option {
	return func(s *settings) { s.artifactTimeout = d }
}

// WithPollInterval sets how often the output file is checked.
func WithPollInterval(d time.Duration) Option {
	return func(s *settings) { s.pollInterval = d }
}

// WithRetryPause sets the pause between failed attempts.
func WithRetryPause(d time.Duration) Option {
	return func(s *settings) { s.retryPause = d }
}

// WithSettleDelay sets the wait before intermediates are deleted after a merge.
func WithSettleDelay(d time.Duration) Option {
	return func(s *settings) { s.settleDelay = d }
}

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithMetrics records counters and durations into m.
func WithMetrics(m *Metrics) Option {
	return func(s *settings) { s.metrics = m }
}

// WithStatus receives a Status at every phase transition.
func WithStatus(fn StatusFunc) Option {
	return func(s *settings) { s.status = fn }
}

// WithMerger replaces the pdfcpu merger used by a Pipeline.
func WithMerger(m Merger) Option {
	return func(s *settings) { s.merger = m }
}
