package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/alnah/go-doc2pdf/internal/browser"
	"github.com/alnah/go-doc2pdf/internal/config"
	"github.com/alnah/go-doc2pdf/internal/office"
	"github.com/alnah/go-doc2pdf/internal/process"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"` // "ready", "warnings", "errors"
	Office   binaryInfo `json:"office"`
	Chrome   binaryInfo `json:"chrome"`
	Env      envInfo    `json:"environment"`
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// binaryInfo holds detection results for an external program.
type binaryInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// doctorProbes locates external programs; replaced in tests.
type doctorProbes struct {
	soffice func(bin string) (string, error)
	chrome  func(bin string) (string, bool)
	version func(ctx context.Context, bin string) (string, error)
}

func defaultProbes() doctorProbes {
	return doctorProbes{
		soffice: office.LookPath,
		chrome:  browser.LookPath,
		version: func(ctx context.Context, bin string) (string, error) {
			res, err := process.Run(ctx, 30*time.Second, nil, bin, "--version")
			return strings.TrimSpace(res.Stdout), err
		},
	}
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(ctx context.Context, args []string, env *Environment) int {
	flags, err := parseDoctorFlags(args, env.Stdout)
	if err != nil {
		if errors.Is(err, errHelpShown) {
			return ExitSuccess
		}
		fmt.Fprintln(env.Stderr, "error:", err)
		return ExitUsage
	}

	cfg, err := loadBaseConfig(flags.config, env)
	if err != nil {
		fmt.Fprintln(env.Stderr, "error:", err.Error()+hintFor(err))
		return exitCodeFor(err)
	}
	if flags.soffice != "" {
		cfg.Office.Binary = flags.soffice
	}

	result := runDoctor(ctx, defaultProbes(), env.Getenv, cfg)

	if flags.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks. Binaries are looked up the way
// convert would: cfg carries the config file, environment and flag values.
func runDoctor(ctx context.Context, probes doctorProbes, getenv func(string) string, cfg *config.Config) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  getenv("ROD_NO_SANDBOX"),
			BrowserBin: getenv("ROD_BROWSER_BIN"),
		},
	}

	chromeBin := cfg.Browser.Bin
	if chromeBin == "" {
		chromeBin = result.Env.BrowserBin
	}

	checkOffice(ctx, result, probes, cfg.Office.Binary)
	checkChrome(ctx, result, probes, chromeBin)
	checkEnvironment(result, getenv)
	checkSystem(result)

	if !result.Office.Found && !result.Chrome.Found {
		result.Errors = append(result.Errors, "No conversion backend available")
	}

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}
	return result
}

// checkOffice detects LibreOffice.
func checkOffice(ctx context.Context, result *doctorResult, probes doctorProbes, bin string) {
	path, err := probes.soffice(bin)
	if err != nil {
		if bin != "" {
			result.Errors = append(result.Errors, fmt.Sprintf("LibreOffice not found at %s", bin))
			return
		}
		result.Warnings = append(result.Warnings,
			"LibreOffice not found: office documents cannot be converted. Install it or set DOC2PDF_SOFFICE")
		return
	}
	result.Office.Found = true
	result.Office.Path = path

	if v, err := probes.version(ctx, path); err == nil {
		result.Office.Version = v
	} else {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Could not get LibreOffice version: %v", err))
	}
}

// checkChrome detects Chrome/Chromium.
func checkChrome(ctx context.Context, result *doctorResult, probes doctorProbes, bin string) {
	path, found := probes.chrome(bin)
	if !found {
		if bin != "" {
			result.Errors = append(result.Errors, fmt.Sprintf("Chrome not found at %s", bin))
			return
		}
		result.Warnings = append(result.Warnings,
			"Chrome/Chromium not found: it will be downloaded on first HTML/Markdown conversion")
		return
	}
	result.Chrome.Found = true
	result.Chrome.Path = path

	if v, err := probes.version(ctx, path); err == nil {
		result.Chrome.Version = v
	} else {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Could not get Chrome version: %v", err))
	}
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult, getenv func(string) string) {
	result.Env.Container, result.Env.ContainerHint = isContainer(getenv)

	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer(getenv func(string) string) (bool, string) {
	if getenv("DOC2PDF_CONTAINER") == "1" {
		return true, "DOC2PDF_CONTAINER=1"
	}
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	if v := getenv("container"); v != "" {
		return true, "container=" + v
	}
	if getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the temp directory used for profiles and rendered HTML.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	testFile := filepath.Join(tmpDir, "doc2pdf-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Temp directory not writable: %s", tmpDir))
		return
	}
	_ = os.Remove(testFile)
	result.System.TempWritable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "doc2pdf doctor")
	fmt.Fprintln(w)

	printBinary(w, "LibreOffice", r.Office)
	printBinary(w, "Chrome/Chromium", r.Chrome)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to convert")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}

func printBinary(w io.Writer, title string, b binaryInfo) {
	fmt.Fprintln(w, title)
	if b.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", b.Path)
		if b.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", b.Version)
		}
	} else {
		fmt.Fprintln(w, "  [WARN] Not found")
	}
	fmt.Fprintln(w)
}
