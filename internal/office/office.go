// Package office converts office documents to PDF with a headless
// LibreOffice (soffice) running against a private user profile.
package office

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"

	doc2pdf "github.com/alnah/go-doc2pdf"
	"github.com/alnah/go-doc2pdf/internal/process"
)

// DefaultExportTimeout bounds one soffice --convert-to run.
const DefaultExportTimeout = 2 * time.Minute

// probeTimeout bounds the version check made at launch.
const probeTimeout = 30 * time.Second

// Sentinel errors for office operations.
var (
	ErrSofficeNotFound = errors.New("LibreOffice (soffice) not found")
	ErrLocked          = errors.New("document is open in another program")
	ErrNothingOpen     = errors.New("no document is open")
	ErrNoOutput        = errors.New("soffice produced no PDF")
)

// Config configures the office backend.
type Config struct {
	Bin           string        // soffice binary; empty searches PATH and known install dirs
	ExportTimeout time.Duration // per document
}

// Compile-time interface implementation checks.
var (
	_ doc2pdf.Backend     = (*Backend)(nil)
	_ doc2pdf.Application = (*session)(nil)
)

// runFunc executes a command; replaced in tests.
type runFunc func(ctx context.Context, timeout time.Duration, env []string, name string, args ...string) (process.Result, error)

// Backend launches soffice sessions for office documents.
type Backend struct {
	cfg    Config
	logger *zap.Logger
	run    runFunc
	look   func(bin string) (string, error)
}

// New creates an office backend. A nil logger disables logging.
func New(cfg Config, logger *zap.Logger) *Backend {
	if cfg.ExportTimeout <= 0 {
		cfg.ExportTimeout = DefaultExportTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backend{cfg: cfg, logger: logger, run: process.Run, look: LookPath}
}

// Name implements doc2pdf.Backend.
func (b *Backend) Name() string { return "office" }

// Supports implements doc2pdf.Backend.
func (b *Backend) Supports(ext string) bool { return doc2pdf.OfficeExtensions[ext] }

// Launch resolves soffice, checks that it starts, and creates a private
// profile so runs never touch (or get blocked by) the user's instance.
func (b *Backend) Launch(ctx context.Context) (doc2pdf.Application, error) {
	bin, err := b.look(b.cfg.Bin)
	if err != nil {
		return nil, err
	}

	profile, err := os.MkdirTemp("", "doc2pdf-soffice-*")
	if err != nil {
		return nil, fmt.Errorf("creating profile dir: %w", err)
	}
	s := &session{backend: b, bin: bin, profile: profile}

	res, err := b.run(ctx, probeTimeout, nil, bin, s.args("--version")...)
	if err != nil {
		_ = os.RemoveAll(profile)
		return nil, err
	}
	b.logger.Debug("soffice ready", zap.String("bin", bin), zap.String("version", strings.TrimSpace(res.Stdout)))
	return s, nil
}

// session is one soffice profile with at most one document open. Each
// export is a separate soffice process that exits when done.
type session struct {
	backend *Backend
	bin     string
	profile string
	src     string
}

// Open checks that path is readable and not locked by another program.
func (s *session) Open(ctx context.Context, path string) error {
	s.src = ""
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	_ = f.Close()

	if lock := LockFile(path); lock != "" {
		return fmt.Errorf("%w: %s (lock file %s)", ErrLocked, filepath.Base(path), filepath.Base(lock))
	}
	s.src = path
	return nil
}

// Export converts the open document into dst. soffice writes into a
// scratch directory next to dst; the result is then renamed into place.
func (s *session) Export(ctx context.Context, dst string) error {
	if s.src == "" {
		return ErrNothingOpen
	}

	outDir, err := os.MkdirTemp(filepath.Dir(dst), ".doc2pdf-out-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.RemoveAll(outDir) }()

	res, err := s.backend.run(ctx, s.backend.cfg.ExportTimeout, nil, s.bin,
		s.args("--convert-to", "pdf", "--outdir", outDir, s.src)...)
	if err != nil {
		return err
	}

	stem := strings.TrimSuffix(filepath.Base(s.src), filepath.Ext(s.src))
	produced := filepath.Join(outDir, stem+".pdf")
	info, err := os.Stat(produced)
	if err != nil || info.Size() == 0 {
		if msg := strings.TrimSpace(res.Stderr); msg != "" {
			return fmt.Errorf("%w: %s", ErrNoOutput, msg)
		}
		return ErrNoOutput
	}
	return os.Rename(produced, dst)
}

// Reset forgets the open document.
func (s *session) Reset(context.Context) error {
	s.src = ""
	return nil
}

// Quit removes the private profile.
func (s *session) Quit() error {
	s.src = ""
	return os.RemoveAll(s.profile)
}

// args prefixes the flags every soffice invocation shares.
func (s *session) args(extra ...string) []string {
	base := []string{
		"-env:UserInstallation=" + profileURL(s.profile),
		"--headless",
		"--invisible",
		"--norestore",
		"--nologo",
		"--nodefault",
		"--nolockcheck",
	}
	return append(base, extra...)
}

// profileURL builds the file URL soffice expects for UserInstallation.
func profileURL(dir string) string {
	p := filepath.ToSlash(dir)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}

// LockFile returns the lock file another office program holds on path,
// or "" if none. LibreOffice writes .~lock.<name>#, Microsoft Office
// writes ~$<name> with the first two characters dropped for long names.
func LockFile(path string) string {
	dir, name := filepath.Split(path)
	candidates := []string{".~lock." + name + "#", "~$" + name}
	if r := []rune(name); len(r) > 2 {
		candidates = append(candidates, "~$"+string(r[2:]))
	}
	for _, c := range candidates {
		p := filepath.Join(dir, c)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// knownPaths lists default install locations searched after PATH.
func knownPaths() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"/Applications/LibreOffice.app/Contents/MacOS/soffice"}
	case "windows":
		return []string{
			`C:\Program Files\LibreOffice\program\soffice.exe`,
			`C:\Program Files (x86)\LibreOffice\program\soffice.exe`,
		}
	}
	return []string{"/usr/bin/soffice", "/usr/lib/libreoffice/program/soffice", "/opt/libreoffice/program/soffice", "/snap/bin/libreoffice"}
}

// LookPath resolves the soffice binary. An explicit bin must exist;
// otherwise PATH and the known install locations are searched.
func LookPath(bin string) (string, error) {
	if bin != "" {
		p, err := exec.LookPath(bin)
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrSofficeNotFound, bin)
		}
		return p, nil
	}
	for _, name := range []string{"soffice", "libreoffice"} {
		if p, err := exec.LookPath(name); err == nil {
			return p, nil
		}
	}
	for _, p := range knownPaths() {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", ErrSofficeNotFound
}
