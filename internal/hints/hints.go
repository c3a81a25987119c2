// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"runtime"
	"strings"

	"github.com/alnah/go-doc2pdf/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for browser connection errors.
// Detects CI/Docker environment and suggests relevant environment variables.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}

	return formatHints(hints)
}

// ForSofficeNotFound suggests how to install or point at LibreOffice.
func ForSofficeNotFound() string {
	var install string
	switch runtime.GOOS {
	case "darwin":
		install = "brew install --cask libreoffice"
	case "windows":
		install = "winget install TheDocumentFoundation.LibreOffice"
	default:
		install = "install the libreoffice package"
	}
	return formatHints([]string{install, "or set DOC2PDF_SOFFICE / --soffice to the soffice binary"})
}

// ForLockedDocument reminds users that an open document blocks conversion.
func ForLockedDocument() string {
	return format("check the file is not open in another program, then run again")
}

// ForExhaustedRetries explains how to resume after an aborted run.
func ForExhaustedRetries() string {
	return formatHints([]string{
		"check the file is not open in another program",
		"fix or remove it and run again; converted files are not redone",
	})
}

// ForArtifactTimeout suggests a longer wait for slow documents.
func ForArtifactTimeout() string {
	return format("for large documents, use --artifact-timeout")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in the user config directory.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(slashPath(p), "/doc2pdf/") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// slashPath normalizes separators so the search works on every OS.
func slashPath(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
