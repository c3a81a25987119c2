// Package browser converts HTML and Markdown documents to PDF by printing
// them from a headless Chrome, driven either through go-rod or chromedp.
package browser

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	doc2pdf "github.com/alnah/go-doc2pdf"
	"github.com/alnah/go-doc2pdf/internal/fileutil"
	"github.com/alnah/go-doc2pdf/internal/markdown"
)

// Engine names.
const (
	EngineRod      = "rod"
	EngineChromedp = "chromedp"
)

// Defaults for page rendering. Paper sizes are in inches (US Letter).
const (
	DefaultPageTimeout = 30 * time.Second
	DefaultPaperWidth  = 8.5
	DefaultPaperHeight = 11
	DefaultMargin      = 0.5
)

// Sentinel errors for browser operations.
var (
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrUnknownEngine  = errors.New("unknown browser engine")
	ErrNothingOpen    = errors.New("no document is open")
)

// Config configures the browser backend.
type Config struct {
	Engine      string        // rod (default) or chromedp
	Bin         string        // Chrome binary; empty uses ROD_BROWSER_BIN or auto-detection
	NoSandbox   bool          // required in most containers
	PageTimeout time.Duration // load + print bound per document
	CodeStyle   string        // chroma style for Markdown code blocks
	PaperWidth  float64
	PaperHeight float64
	Margin      float64
}

func (c Config) withDefaults() Config {
	if c.Engine == "" {
		c.Engine = EngineRod
	}
	if c.Bin == "" {
		c.Bin = os.Getenv("ROD_BROWSER_BIN")
	}
	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" {
		c.NoSandbox = true
	}
	if c.PageTimeout <= 0 {
		c.PageTimeout = DefaultPageTimeout
	}
	if c.PaperWidth <= 0 {
		c.PaperWidth = DefaultPaperWidth
	}
	if c.PaperHeight <= 0 {
		c.PaperHeight = DefaultPaperHeight
	}
	if c.Margin < 0 {
		c.Margin = 0
	} else if c.Margin == 0 {
		c.Margin = DefaultMargin
	}
	return c
}

// renderer prints a URL to PDF bytes. One renderer wraps one browser process.
type renderer interface {
	render(ctx context.Context, target string) ([]byte, error)
	close() error
}

// launchFunc starts a browser for cfg.
type launchFunc func(ctx context.Context, cfg Config) (renderer, error)

// Compile-time interface implementation checks.
var (
	_ doc2pdf.Backend     = (*Backend)(nil)
	_ doc2pdf.Application = (*session)(nil)
)

// Backend launches headless Chrome sessions for markup documents.
type Backend struct {
	cfg    Config
	md     *markdown.Converter
	logger *zap.Logger
	launch launchFunc
}

// New creates a browser backend. A nil logger disables logging.
func New(cfg Config, logger *zap.Logger) (*Backend, error) {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	var launch launchFunc
	switch cfg.Engine {
	case EngineRod:
		launch = launchRod
	case EngineChromedp:
		launch = launchChromedp
	default:
		return nil, fmt.Errorf("%w: %q (want %s or %s)", ErrUnknownEngine, cfg.Engine, EngineRod, EngineChromedp)
	}

	return &Backend{
		cfg:    cfg,
		md:     markdown.New(cfg.CodeStyle),
		logger: logger.With(zap.String("engine", cfg.Engine)),
		launch: launch,
	}, nil
}

// Name implements doc2pdf.Backend.
func (b *Backend) Name() string { return "browser" }

// Supports implements doc2pdf.Backend.
func (b *Backend) Supports(ext string) bool { return doc2pdf.MarkupExtensions[ext] }

// Launch starts a browser process.
func (b *Backend) Launch(ctx context.Context) (doc2pdf.Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, err := b.launch(ctx, b.cfg)
	if err != nil {
		return nil, err
	}
	b.logger.Debug("browser started")
	return &session{backend: b, r: r}, nil
}

// session is one running browser with at most one document open.
type session struct {
	backend *Backend
	r       renderer

	target  string // URL printed by Export
	cleanup func() // removes the rendered Markdown, if any
}

// Open prepares path for printing. Markdown is rendered to a temporary
// HTML file whose <base> points back at the source directory so relative
// images still resolve.
func (s *session) Open(ctx context.Context, path string) error {
	s.release()

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".md" && ext != ".markdown" {
		s.target = fileURL(path)
		return nil
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	doc, err := s.backend.md.ToHTML(ctx, title, string(src))
	if err != nil {
		return err
	}
	doc = injectBase(doc, fileURL(filepath.Dir(path))+"/")

	tmp, cleanup, err := fileutil.WriteTempFile(doc, "html")
	if err != nil {
		return err
	}
	s.target, s.cleanup = fileURL(tmp), cleanup
	return nil
}

// Export prints the open document and writes it to dst atomically.
func (s *session) Export(ctx context.Context, dst string) error {
	if s.target == "" {
		return ErrNothingOpen
	}
	pdf, err := s.r.render(ctx, s.target)
	if err != nil {
		return err
	}
	return writeAtomic(dst, pdf)
}

// Reset forgets the open document.
func (s *session) Reset(context.Context) error {
	s.release()
	return nil
}

// Quit closes the browser.
func (s *session) Quit() error {
	s.release()
	return s.r.close()
}

func (s *session) release() {
	if s.cleanup != nil {
		s.cleanup()
	}
	s.target, s.cleanup = "", nil
}

// fileURL builds a file:// URL that is valid on both Unix and Windows.
func fileURL(path string) string {
	p := filepath.ToSlash(fileutil.Normalize(path))
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}

// injectBase inserts a <base href> right after <head>.
func injectBase(doc, href string) string {
	tag := `<base href="` + href + `">`
	if i := strings.Index(doc, "<head>"); i >= 0 {
		i += len("<head>")
		return doc[:i] + "\n" + tag + doc[i:]
	}
	return tag + doc
}

// writeAtomic writes data next to dst and renames it into place, so dst is
// never observed half-written.
func writeAtomic(dst string, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty output", ErrPDFGeneration)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".doc2pdf-*.pdf")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return err
	}
	// CreateTemp files are private.
	if err := os.Chmod(name, fileutil.OutputPerm); err != nil {
		_ = os.Remove(name)
		return err
	}
	if err := os.Rename(name, dst); err != nil {
		_ = os.Remove(name)
		return err
	}
	return nil
}

// LookPath reports the Chrome binary that would be launched.
func LookPath(bin string) (string, bool) {
	if bin == "" {
		bin = os.Getenv("ROD_BROWSER_BIN")
	}
	if bin != "" {
		if fileutil.FileExists(bin) {
			return bin, true
		}
		return bin, false
	}
	return lookPathRod()
}
