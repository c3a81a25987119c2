package main

import (
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	doc2pdf "github.com/alnah/go-doc2pdf"
	"github.com/alnah/go-doc2pdf/internal/browser"
	"github.com/alnah/go-doc2pdf/internal/config"
	"github.com/alnah/go-doc2pdf/internal/office"
)

// BackendFactory builds the conversion backends for a resolved config.
type BackendFactory func(cfg *config.Config, logger *zap.Logger) ([]doc2pdf.Backend, error)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now         func() time.Time
	Stdout      io.Writer
	Stderr      io.Writer
	Getenv      func(string) string
	Environ     func() []string
	NewBackends BackendFactory
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:         time.Now,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Getenv:      os.Getenv,
		Environ:     os.Environ,
		NewBackends: defaultBackends,
	}
}

// defaultBackends wires LibreOffice for office files and headless Chrome
// for markup. Office comes first so it wins any overlap.
func defaultBackends(cfg *config.Config, logger *zap.Logger) ([]doc2pdf.Backend, error) {
	off := office.New(office.Config{
		Bin:           cfg.Office.Binary,
		ExportTimeout: cfg.Office.Timeout,
	}, logger)

	br, err := browser.New(browser.Config{
		Engine:      cfg.Browser.Engine,
		Bin:         cfg.Browser.Bin,
		NoSandbox:   cfg.Browser.NoSandbox,
		PageTimeout: cfg.Browser.Timeout,
		CodeStyle:   cfg.Browser.CodeStyle,
	}, logger)
	if err != nil {
		return nil, err
	}
	return []doc2pdf.Backend{off, br}, nil
}
