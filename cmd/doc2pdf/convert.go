package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	doc2pdf "github.com/alnah/go-doc2pdf"
	"github.com/alnah/go-doc2pdf/internal/config"
	"github.com/alnah/go-doc2pdf/internal/logging"
)

// ErrNoInput is returned when no supported file was given.
var ErrNoInput = errors.New("no input specified")

// runConvertCmd parses flags and runs the convert command.
func runConvertCmd(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseConvertFlags(args, env.Stdout)
	if err != nil {
		return err
	}
	return runConvert(ctx, positional, flags, env)
}

// runConvert builds the worklist from positional args, converts it and
// optionally merges the result.
func runConvert(ctx context.Context, positional []string, flags *convertFlags, env *Environment) error {
	cfg, err := resolveConfig(flags, env)
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
		Writer: env.Stderr,
	})
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	wl, err := buildWorklist(positional, flags.common.quiet, env.Stderr)
	if err != nil {
		return err
	}

	backends, err := env.NewBackends(cfg, logger)
	if err != nil {
		return err
	}

	var metrics *doc2pdf.Metrics
	if cfg.Metrics.Textfile != "" {
		metrics = doc2pdf.NewMetrics()
	}

	opts := pipelineOptions(cfg, logger, metrics)
	if !flags.common.quiet {
		opts = append(opts, doc2pdf.WithStatus(func(st doc2pdf.Status) {
			if st.Phase != doc2pdf.PhaseDone {
				fmt.Fprintln(env.Stderr, st.String())
			}
		}))
	}

	p, err := doc2pdf.NewPipeline(backends, opts...)
	if err != nil {
		return err
	}

	start := env.Now()
	sum, runErr := p.Execute(ctx, wl, runOptions(cfg))

	if metrics != nil {
		if err := metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			logger.Warn("writing metrics", zap.String("path", cfg.Metrics.Textfile), zap.Error(err))
		}
	}

	if !flags.common.quiet {
		printSummary(env.Stdout, sum, wl, flags.common.verbose)
		if flags.common.verbose {
			fmt.Fprintf(env.Stdout, "elapsed: %s\n", env.Now().Sub(start).Round(time.Millisecond))
		}
	}

	if runErr != nil {
		return runErr
	}
	if sum.Run.Aborted {
		return fmt.Errorf("run stopped: %w", sum.Run.Cause)
	}
	return nil
}

// buildWorklist expands directories and queues every supported file.
// Unsupported files given explicitly are reported and skipped.
func buildWorklist(positional []string, quiet bool, stderr io.Writer) (*doc2pdf.Worklist, error) {
	if len(positional) == 0 {
		return nil, ErrNoInput
	}

	paths, err := doc2pdf.ExpandInputs(positional, doc2pdf.IsSupported)
	if err != nil {
		return nil, err
	}

	wl, err := doc2pdf.NewWorklist(paths...)
	if err != nil && !quiet {
		for _, line := range strings.Split(err.Error(), "\n") {
			fmt.Fprintf(stderr, "warning: skipping %s\n", line)
		}
	}
	if wl.Len() == 0 {
		return nil, fmt.Errorf("%w: no supported files in %s", ErrNoInput, strings.Join(positional, ", "))
	}
	return wl, nil
}

// resolveConfig layers defaults, config file, environment and flags.
func resolveConfig(flags *convertFlags, env *Environment) (*config.Config, error) {
	cfg, err := loadBaseConfig(flags.common.config, env)
	if err != nil {
		return nil, err
	}
	mergeFlags(flags, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadBaseConfig layers defaults, the config file named by configFlag or
// DOC2PDF_CONFIG, and the environment.
func loadBaseConfig(configFlag string, env *Environment) (*config.Config, error) {
	envCfg := loadEnvConfig(env.Getenv)
	cfg := config.DefaultConfig()

	name := configFlag
	if name == "" {
		name = envCfg.ConfigPath
	}
	if name != "" {
		fileCfg, err := config.LoadConfig(name)
		if err != nil {
			return nil, &configLoadError{name: name, err: err}
		}
		overlayConfig(cfg, fileCfg)
	}

	applyEnvConfig(envCfg, cfg)
	return cfg, nil
}

// overlayConfig copies every non-zero value of src into dst.
func overlayConfig(dst, src *config.Config) {
	setString(&dst.Output.MergeName, src.Output.MergeName)
	dst.Output.Merge = dst.Output.Merge || src.Output.Merge
	dst.Output.DeleteSource = dst.Output.DeleteSource || src.Output.DeleteSource
	dst.Output.DeleteIntermediates = dst.Output.DeleteIntermediates || src.Output.DeleteIntermediates

	if src.Retry.Attempts > 0 {
		dst.Retry.Attempts = src.Retry.Attempts
	}
	setDuration(&dst.Retry.ArtifactTimeout, src.Retry.ArtifactTimeout)
	setDuration(&dst.Retry.PollInterval, src.Retry.PollInterval)
	setDuration(&dst.Retry.Pause, src.Retry.Pause)
	setDuration(&dst.Merge.SettleDelay, src.Merge.SettleDelay)

	setString(&dst.Office.Binary, src.Office.Binary)
	setDuration(&dst.Office.Timeout, src.Office.Timeout)

	setString(&dst.Browser.Engine, src.Browser.Engine)
	setString(&dst.Browser.Bin, src.Browser.Bin)
	dst.Browser.NoSandbox = dst.Browser.NoSandbox || src.Browser.NoSandbox
	setDuration(&dst.Browser.Timeout, src.Browser.Timeout)
	setString(&dst.Browser.CodeStyle, src.Browser.CodeStyle)

	setString(&dst.Log.Level, src.Log.Level)
	setString(&dst.Log.Format, src.Log.Format)
	setString(&dst.Log.File, src.Log.File)
	setString(&dst.Metrics.Textfile, src.Metrics.Textfile)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration[T ~int64](dst *T, v T) {
	if v > 0 {
		*dst = v
	}
}

// mergeFlags applies explicitly given CLI flags to cfg (CLI wins).
func mergeFlags(flags *convertFlags, cfg *config.Config) {
	set := flags.changed

	if set["merge-name"] {
		cfg.Output.MergeName = flags.output.mergeName
		if !set["merge"] {
			cfg.Output.Merge = true
		}
	}
	if set["merge"] {
		cfg.Output.Merge = flags.output.merge
	}
	if set["delete-source"] {
		cfg.Output.DeleteSource = flags.output.deleteSource
	}
	if set["delete-intermediates"] {
		cfg.Output.DeleteIntermediates = flags.output.deleteIntermediates
	}
	if set["metrics-file"] {
		cfg.Metrics.Textfile = flags.output.metricsFile
	}

	if set["attempts"] {
		cfg.Retry.Attempts = flags.retry.attempts
	}
	if set["artifact-timeout"] {
		cfg.Retry.ArtifactTimeout = flags.retry.artifactTimeout
	}
	if set["poll-interval"] {
		cfg.Retry.PollInterval = flags.retry.pollInterval
	}

	if set["browser"] {
		cfg.Browser.Engine = flags.backend.browser
	}
	if set["soffice"] {
		cfg.Office.Binary = flags.backend.soffice
	}

	switch {
	case set["log-level"]:
		cfg.Log.Level = flags.common.logLevel
	case flags.common.verbose:
		cfg.Log.Level = "debug"
	case flags.common.quiet:
		cfg.Log.Level = "error"
	}
	if set["log-format"] {
		cfg.Log.Format = flags.common.logFormat
	}
	if set["log-file"] {
		cfg.Log.File = flags.common.logFile
	}
}

// pipelineOptions maps cfg onto pipeline options.
func pipelineOptions(cfg *config.Config, logger *zap.Logger, metrics *doc2pdf.Metrics) []doc2pdf.Option {
	opts := []doc2pdf.Option{doc2pdf.WithLogger(logger)}
	if cfg.Retry.Attempts != 0 {
		opts = append(opts, doc2pdf.WithAttempts(cfg.Retry.Attempts))
	}
	if cfg.Retry.ArtifactTimeout > 0 {
		opts = append(opts, doc2pdf.WithArtifactTimeout(cfg.Retry.ArtifactTimeout))
	}
	if cfg.Retry.PollInterval > 0 {
		opts = append(opts, doc2pdf.WithPollInterval(cfg.Retry.PollInterval))
	}
	if cfg.Retry.Pause > 0 {
		opts = append(opts, doc2pdf.WithRetryPause(cfg.Retry.Pause))
	}
	if cfg.Merge.SettleDelay > 0 {
		opts = append(opts, doc2pdf.WithSettleDelay(cfg.Merge.SettleDelay))
	}
	if metrics != nil {
		opts = append(opts, doc2pdf.WithMetrics(metrics))
	}
	return opts
}

// runOptions maps cfg onto per-run options.
func runOptions(cfg *config.Config) doc2pdf.RunOptions {
	return doc2pdf.RunOptions{
		OutputName:                    cfg.Output.MergeName,
		DeleteSourceOnSuccess:         cfg.Output.DeleteSource,
		Merge:                         cfg.Output.Merge,
		DeleteIntermediatesAfterMerge: cfg.Output.DeleteIntermediates,
	}
}

// printSummary writes the final report, including what is still queued
// after an aborted run.
func printSummary(w io.Writer, sum *doc2pdf.Summary, wl *doc2pdf.Worklist, verbose bool) {
	if sum == nil {
		return
	}
	fmt.Fprintln(w, sum.Message())

	if sum.Run != nil {
		for _, d := range sum.Run.Deleted {
			if !d.OK() {
				fmt.Fprintf(w, "warning: could not delete %s: %v\n", d.Path, d.Err)
			}
		}
		if verbose {
			for _, s := range sum.Run.Skipped {
				fmt.Fprintf(w, "skipped %s (%s)\n", s.Item.Name(), s.Reason)
			}
		}
	}
	for _, d := range sum.Deleted {
		if !d.OK() {
			fmt.Fprintf(w, "warning: could not delete %s: %v\n", d.Path, d.Err)
		}
	}

	if sum.Run != nil && (sum.Run.Aborted || sum.Run.Canceled) {
		left := wl.Snapshot()
		if len(left) == 0 {
			return
		}
		fmt.Fprintf(w, "still queued (%d):\n", len(left))
		for _, it := range left {
			fmt.Fprintf(w, "  %s\n", it.Path)
		}
	}
}
