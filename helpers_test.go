package doc2pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// fastOpts keeps retry loops short in tests.
func fastOpts(extra ...Option) []Option {
	return append([]Option{
		WithArtifactTimeout(30 * time.Millisecond),
		WithPollInterval(5 * time.Millisecond),
		WithRetryPause(0),
		WithSettleDelay(0),
	}, extra...)
}

// ---------------------------------------------------------------------------
// fakeApp - scripted Application
// ---------------------------------------------------------------------------

// fakeApp writes a small PDF on Export unless exportFn overrides it.
type fakeApp struct {
	mu       sync.Mutex
	opened   []string
	exports  int
	resets   int
	quits    int
	openErr  error
	resetErr error
	quitErr  error
	exportFn func(n int, dst string) error // n is 1-based
}

func (a *fakeApp) Open(_ context.Context, path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.opened = append(a.opened, path)
	return a.openErr
}

func (a *fakeApp) Export(_ context.Context, dst string) error {
	a.mu.Lock()
	a.exports++
	n, fn := a.exports, a.exportFn
	a.mu.Unlock()

	if fn != nil {
		return fn(n, dst)
	}
	return os.WriteFile(dst, buildTestPDF(1, 612), 0o644)
}

func (a *fakeApp) Reset(context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.resets++
	return a.resetErr
}

func (a *fakeApp) Quit() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.quits++
	return a.quitErr
}

// ---------------------------------------------------------------------------
// fakeBackend - launches fakeApps
// ---------------------------------------------------------------------------

type fakeBackend struct {
	name      string
	exts      map[string]bool
	launchErr error
	newApp    func() *fakeApp
	launched  []*fakeApp
}

func newFakeBackend(name string, exts ...string) *fakeBackend {
	m := make(map[string]bool, len(exts))
	for _, e := range exts {
		m[e] = true
	}
	return &fakeBackend{name: name, exts: m}
}

func (b *fakeBackend) Name() string { return b.name }

func (b *fakeBackend) Supports(ext string) bool { return b.exts[ext] }

func (b *fakeBackend) Launch(ctx context.Context) (Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if b.launchErr != nil {
		return nil, b.launchErr
	}
	app := &fakeApp{}
	if b.newApp != nil {
		app = b.newApp()
	}
	b.launched = append(b.launched, app)
	return app, nil
}

func (b *fakeBackend) totalQuits() int {
	n := 0
	for _, a := range b.launched {
		n += a.quits
	}
	return n
}

// ---------------------------------------------------------------------------
// fakeConverter - scripted Converter for runner tests
// ---------------------------------------------------------------------------

type fakeConverter struct {
	calls  []string
	closes int
	// fail maps a base name to the error Convert returns for it.
	fail map[string]error
}

func (c *fakeConverter) Convert(_ context.Context, item WorkItem) (string, error) {
	c.calls = append(c.calls, item.Name())
	if err, ok := c.fail[item.Name()]; ok {
		return "", err
	}
	dst := item.PDFPath()
	if err := os.WriteFile(dst, buildTestPDF(1, 612), 0o644); err != nil {
		return "", err
	}
	return dst, nil
}

func (c *fakeConverter) Close() error {
	c.closes++
	return nil
}

func exhausted(name string) error {
	return &ConversionError{Item: WorkItem{Path: "/x/" + name, Kind: KindConvertible}, Attempts: 3, Last: ErrArtifactMissing}
}

// ---------------------------------------------------------------------------
// fakeMerger
// ---------------------------------------------------------------------------

type fakeMerger struct {
	got  []string
	name string
	err  error
}

func (m *fakeMerger) Merge(_ context.Context, paths []string, outputName string) (string, error) {
	m.got = append([]string(nil), paths...)
	m.name = outputName
	if m.err != nil {
		return "", m.err
	}
	out := MergeOutputPath(paths, outputName)
	return out, os.WriteFile(out, buildTestPDF(len(paths), 612), 0o644)
}

// ---------------------------------------------------------------------------
// Files
// ---------------------------------------------------------------------------

// touch writes content to dir/name and returns the path.
func touch(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}

// buildTestPDF returns a valid PDF with pages pages of the given width,
// computing xref offsets so pdfcpu reads it without repair.
func buildTestPDF(pages, width int) []byte {
	const content = "q Q"
	n := 2 + 2*pages
	offsets := make([]int, n+1)

	var b strings.Builder
	b.WriteString("%PDF-1.4\n")

	offsets[1] = b.Len()
	b.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	kids := make([]string, pages)
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 3+2*i)
	}
	offsets[2] = b.Len()
	fmt.Fprintf(&b, "2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n", strings.Join(kids, " "), pages)

	for i := range pages {
		page, stream := 3+2*i, 4+2*i
		offsets[page] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %d 792] /Resources << >> /Contents %d 0 R >>\nendobj\n",
			page, width, stream)
		offsets[stream] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", stream, len(content), content)
	}

	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n", n+1)
	b.WriteString("0000000000 65535 f \n")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", n+1, xref)
	return []byte(b.String())
}
