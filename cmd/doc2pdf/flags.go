package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"
)

// ErrUsage marks invalid command-line usage.
var ErrUsage = errors.New("invalid usage")

// errHelpShown is returned after -h/--help printed usage.
var errHelpShown = errors.New("help shown")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config    string
	quiet     bool
	verbose   bool
	logLevel  string
	logFormat string
	logFile   string
}

// retryFlags holds conversion loop flags.
type retryFlags struct {
	attempts        int
	artifactTimeout time.Duration
	pollInterval    time.Duration
}

// backendFlags holds external application flags.
type backendFlags struct {
	browser string
	soffice string
}

// outputFlags holds run output flags.
type outputFlags struct {
	mergeName           string
	merge               bool
	deleteSource        bool
	deleteIntermediates bool
	metricsFile         string
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common  commonFlags
	retry   retryFlags
	backend backendFlags
	output  outputFlags

	// changed records flags given explicitly, so zero values can still
	// override config (e.g. --merge=false).
	changed map[string]bool
}

// pagesFlags holds flags for the pages command.
type pagesFlags struct {
	json bool
}

// doctorFlags holds flags for the doctor command.
type doctorFlags struct {
	json    bool
	config  string
	soffice string
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: console, json")
	fs.StringVar(&f.logFile, "log-file", "", "write logs to this file")
}

// addRetryFlags adds conversion loop flags to a FlagSet.
func addRetryFlags(fs *flag.FlagSet, f *retryFlags) {
	fs.IntVar(&f.attempts, "attempts", 0, "attempts per document before the run stops (default 3)")
	fs.DurationVar(&f.artifactTimeout, "artifact-timeout", 0, "how long to wait for each PDF (default 10s)")
	fs.DurationVar(&f.pollInterval, "poll-interval", 0, "how often to check for the PDF (default 250ms)")
}

// addBackendFlags adds external application flags to a FlagSet.
func addBackendFlags(fs *flag.FlagSet, f *backendFlags) {
	fs.StringVar(&f.browser, "browser", "", "browser engine for HTML/Markdown: rod, chromedp")
	fs.StringVar(&f.soffice, "soffice", "", "path to the LibreOffice soffice binary")
}

// addOutputFlags adds run output flags to a FlagSet.
func addOutputFlags(fs *flag.FlagSet, f *outputFlags) {
	fs.StringVarP(&f.mergeName, "merge-name", "o", "", "merge into NAME.pdf (implies --merge)")
	fs.BoolVar(&f.merge, "merge", false, "merge all PDFs into one")
	fs.BoolVar(&f.deleteSource, "delete-source", false, "delete each source after it converts")
	fs.BoolVar(&f.deleteIntermediates, "delete-intermediates", false, "delete individual PDFs after a merge")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
}

// parseFlagSet runs fs.Parse and maps help and parse errors.
func parseFlagSet(fs *flag.FlagSet, args []string, usage func(io.Writer), stdout io.Writer) error {
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			usage(stdout)
			return errHelpShown
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return nil
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string, stdout io.Writer) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	f := &convertFlags{changed: map[string]bool{}}

	addCommonFlags(fs, &f.common)
	addRetryFlags(fs, &f.retry)
	addBackendFlags(fs, &f.backend)
	addOutputFlags(fs, &f.output)

	if err := parseFlagSet(fs, args, printConvertUsage, stdout); err != nil {
		return nil, nil, err
	}
	fs.Visit(func(fl *flag.Flag) { f.changed[fl.Name] = true })

	return f, fs.Args(), nil
}

// parsePagesFlags parses pages command flags and returns positional args.
func parsePagesFlags(args []string, stdout io.Writer) (*pagesFlags, []string, error) {
	fs := flag.NewFlagSet("pages", flag.ContinueOnError)
	f := &pagesFlags{}
	fs.BoolVar(&f.json, "json", false, "print JSON")

	if err := parseFlagSet(fs, args, printPagesUsage, stdout); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseDoctorFlags parses doctor command flags.
func parseDoctorFlags(args []string, stdout io.Writer) (*doctorFlags, error) {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	f := &doctorFlags{}
	fs.BoolVar(&f.json, "json", false, "print JSON")
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVar(&f.soffice, "soffice", "", "path to the LibreOffice soffice binary")

	if err := parseFlagSet(fs, args, printDoctorUsage, stdout); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: doctor takes no arguments", ErrUsage)
	}
	return f, nil
}
