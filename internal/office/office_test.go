package office

// Notes:
// - soffice itself is never executed; Backend.run and Backend.look are
//   replaced with fakes that mimic --convert-to writing into --outdir.
// - LookPath is only checked for the explicit-missing-binary case since
//   PATH contents differ between machines.

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-doc2pdf/internal/process"
)

// ---------------------------------------------------------------------------
// Test Helpers
// ---------------------------------------------------------------------------

type fakeSoffice struct {
	calls   [][]string
	output  []byte // written as <outdir>/<stem>.pdf on --convert-to
	stderr  string
	err     error
	probeOK bool
}

func (f *fakeSoffice) run(ctx context.Context, timeout time.Duration, env []string, name string, args ...string) (process.Result, error) {
	f.calls = append(f.calls, args)
	if err := ctx.Err(); err != nil {
		return process.Result{}, err
	}
	if f.err != nil {
		return process.Result{Stderr: f.stderr}, f.err
	}

	var outDir, src string
	for i, a := range args {
		if a == "--version" {
			if !f.probeOK {
				return process.Result{}, errors.New("probe failed")
			}
			return process.Result{Stdout: "LibreOffice 7.6"}, nil
		}
		if a == "--outdir" && i+2 < len(args) {
			outDir, src = args[i+1], args[i+2]
		}
	}
	if outDir != "" && f.output != nil {
		stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
		if err := os.WriteFile(filepath.Join(outDir, stem+".pdf"), f.output, 0o644); err != nil {
			return process.Result{}, err
		}
	}
	return process.Result{Stderr: f.stderr}, nil
}

func newTestBackend(f *fakeSoffice) *Backend {
	b := New(Config{}, nil)
	b.run = f.run
	b.look = func(string) (string, error) { return "/usr/bin/soffice", nil }
	return b
}

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte("doc"), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

// ---------------------------------------------------------------------------
// TestBackend - Identity
// ---------------------------------------------------------------------------

func TestBackend_Supports(t *testing.T) {
	t.Parallel()

	b := New(Config{}, nil)
	for ext, want := range map[string]bool{
		".docx": true, ".hwp": true, ".xlsx": true, ".odp": true,
		".md": false, ".html": false, ".pdf": false,
	} {
		if got := b.Supports(ext); got != want {
			t.Errorf("Supports(%q) = %v, want %v", ext, got, want)
		}
	}
	if b.Name() != "office" {
		t.Errorf("Name() = %q", b.Name())
	}
}

// ---------------------------------------------------------------------------
// TestLaunch - Probe and Profile
// ---------------------------------------------------------------------------

func TestLaunch_ProbeFailure(t *testing.T) {
	t.Parallel()

	_, err := newTestBackend(&fakeSoffice{probeOK: false}).Launch(context.Background())
	if err == nil {
		t.Fatal("Launch() expected error when the version probe fails")
	}
}

func TestLaunch_NotFound(t *testing.T) {
	t.Parallel()

	b := newTestBackend(&fakeSoffice{probeOK: true})
	b.look = func(string) (string, error) { return "", ErrSofficeNotFound }

	if _, err := b.Launch(context.Background()); !errors.Is(err, ErrSofficeNotFound) {
		t.Errorf("Launch() error = %v, want ErrSofficeNotFound", err)
	}
}

func TestLaunch_QuitRemovesProfile(t *testing.T) {
	t.Parallel()

	app, err := newTestBackend(&fakeSoffice{probeOK: true}).Launch(context.Background())
	if err != nil {
		t.Fatalf("Launch() error = %v", err)
	}
	s := app.(*session)
	if _, err := os.Stat(s.profile); err != nil {
		t.Fatalf("profile dir missing: %v", err)
	}
	if err := app.Quit(); err != nil {
		t.Fatalf("Quit() error = %v", err)
	}
	if _, err := os.Stat(s.profile); !os.IsNotExist(err) {
		t.Errorf("profile dir should be removed, stat err = %v", err)
	}
}

// ---------------------------------------------------------------------------
// TestSession - Open / Export
// ---------------------------------------------------------------------------

func TestSession_Export(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := writeFile(t, dir, "report.docx")
	dst := filepath.Join(dir, "report.pdf")

	f := &fakeSoffice{probeOK: true, output: []byte("%PDF-1.4")}
	app, err := newTestBackend(f).Launch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = app.Quit() })

	ctx := context.Background()
	if err := app.Open(ctx, src); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := app.Export(ctx, dst); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	got, err := os.ReadFile(dst)
	if err != nil || string(got) != "%PDF-1.4" {
		t.Errorf("output = %q, err = %v", got, err)
	}

	last := f.calls[len(f.calls)-1]
	joined := strings.Join(last, " ")
	for _, want := range []string{"--headless", "--convert-to pdf", "-env:UserInstallation=file://", src} {
		if !strings.Contains(joined, want) {
			t.Errorf("args %q missing %q", joined, want)
		}
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".doc2pdf-out-") {
			t.Errorf("scratch dir %s left behind", e.Name())
		}
	}
}

func TestSession_ExportNoOutput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := writeFile(t, dir, "broken.doc")

	app, err := newTestBackend(&fakeSoffice{probeOK: true, stderr: "Error: source file could not be loaded"}).Launch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = app.Quit() })

	if err := app.Open(context.Background(), src); err != nil {
		t.Fatal(err)
	}
	err = app.Export(context.Background(), filepath.Join(dir, "broken.pdf"))
	if !errors.Is(err, ErrNoOutput) {
		t.Fatalf("Export() error = %v, want ErrNoOutput", err)
	}
	if !strings.Contains(err.Error(), "could not be loaded") {
		t.Errorf("error %q should carry soffice stderr", err)
	}
}

func TestSession_ExportWithoutOpen(t *testing.T) {
	t.Parallel()

	app, err := newTestBackend(&fakeSoffice{probeOK: true}).Launch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = app.Quit() })

	if err := app.Export(context.Background(), filepath.Join(t.TempDir(), "x.pdf")); !errors.Is(err, ErrNothingOpen) {
		t.Errorf("Export() error = %v, want ErrNothingOpen", err)
	}
}

func TestSession_ResetForgetsDocument(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := writeFile(t, dir, "a.odt")

	app, err := newTestBackend(&fakeSoffice{probeOK: true, output: []byte("%PDF")}).Launch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = app.Quit() })

	if err := app.Open(context.Background(), src); err != nil {
		t.Fatal(err)
	}
	if err := app.Reset(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := app.Export(context.Background(), filepath.Join(dir, "a.pdf")); !errors.Is(err, ErrNothingOpen) {
		t.Errorf("Export() after Reset error = %v, want ErrNothingOpen", err)
	}
}

func TestSession_OpenLocked(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		lock string
	}{
		{"libreoffice lock", ".~lock.budget.xlsx#"},
		{"ms office lock", "~$budget.xlsx"},
		{"ms office short lock", "~$dget.xlsx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			src := writeFile(t, dir, "budget.xlsx")
			writeFile(t, dir, tt.lock)

			app, err := newTestBackend(&fakeSoffice{probeOK: true}).Launch(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			t.Cleanup(func() { _ = app.Quit() })

			if err := app.Open(context.Background(), src); !errors.Is(err, ErrLocked) {
				t.Errorf("Open() error = %v, want ErrLocked", err)
			}
		})
	}
}

func TestSession_OpenMissing(t *testing.T) {
	t.Parallel()

	app, err := newTestBackend(&fakeSoffice{probeOK: true}).Launch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = app.Quit() })

	if err := app.Open(context.Background(), filepath.Join(t.TempDir(), "gone.docx")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Open() error = %v, want os.ErrNotExist", err)
	}
}

// ---------------------------------------------------------------------------
// TestLookPath
// ---------------------------------------------------------------------------

func TestLookPath_ExplicitMissing(t *testing.T) {
	t.Parallel()

	_, err := LookPath(filepath.Join(t.TempDir(), "no-soffice"))
	if !errors.Is(err, ErrSofficeNotFound) {
		t.Errorf("LookPath() error = %v, want ErrSofficeNotFound", err)
	}
}
