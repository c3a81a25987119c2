package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	doc2pdf "github.com/alnah/go-doc2pdf"
	"github.com/alnah/go-doc2pdf/internal/config"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Fake backend
// ---------------------------------------------------------------------------

// stubApp exports a one-page PDF unless the opened file is listed in fail.
type stubApp struct {
	opened string
	fail   map[string]bool
}

func (a *stubApp) Open(_ context.Context, path string) error {
	a.opened = path
	return nil
}

func (a *stubApp) Export(_ context.Context, dst string) error {
	if a.fail[filepath.Base(a.opened)] {
		return nil
	}
	return os.WriteFile(dst, onePagePDF(), 0o644)
}

func (a *stubApp) Reset(context.Context) error { return nil }
func (a *stubApp) Quit() error                 { return nil }

// stubBackend handles every convertible extension.
type stubBackend struct {
	fail      map[string]bool
	launchErr error
}

func (b *stubBackend) Name() string { return "stub" }

func (b *stubBackend) Supports(ext string) bool {
	return doc2pdf.OfficeExtensions[ext] || doc2pdf.MarkupExtensions[ext]
}

func (b *stubBackend) Launch(context.Context) (doc2pdf.Application, error) {
	if b.launchErr != nil {
		return nil, b.launchErr
	}
	return &stubApp{fail: b.fail}, nil
}

// testEnv returns an Environment with captured output, a fixed clock, and
// vars as the only environment variables.
func testEnv(vars map[string]string, backend *stubBackend) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	if backend == nil {
		backend = &stubBackend{}
	}
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &Environment{
		Now:    func() time.Time { return now },
		Stdout: stdout,
		Stderr: stderr,
		Getenv: func(k string) string { return vars[k] },
		Environ: func() []string {
			out := make([]string, 0, len(vars))
			for k, v := range vars {
				out = append(out, k+"="+v)
			}
			return out
		},
		NewBackends: func(*config.Config, *zap.Logger) ([]doc2pdf.Backend, error) {
			return []doc2pdf.Backend{backend}, nil
		},
	}, stdout, stderr
}

// fastArgs keeps failing conversions short.
var fastArgs = []string{"--attempts", "1", "--artifact-timeout", "20ms", "--poll-interval", "2ms"}

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// onePagePDF returns a minimal valid PDF with correct xref offsets.
func onePagePDF() []byte {
	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> /Contents 4 0 R >>",
		"<< /Length 3 >>\nstream\nq Q\nendstream",
	}

	var b strings.Builder
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return []byte(b.String())
}
