package doc2pdf

import "context"

// Application is an external program that can turn an opened document into
// a PDF. Implementations are driven strictly sequentially by one Driver and
// need not be safe for concurrent use.
type Application interface {
	// Open loads the source document.
	Open(ctx context.Context, path string) error
	// Export writes the opened document as a PDF to dst.
	Export(ctx context.Context, dst string) error
	// Reset closes the opened document, leaving the application idle.
	Reset(ctx context.Context) error
	// Quit terminates the application. It is called once per launch.
	Quit() error
}

// Backend launches an Application for the file types it supports.
type Backend interface {
	Name() string
	// Supports reports whether the backend handles ext (lower-case, with dot).
	Supports(ext string) bool
	Launch(ctx context.Context) (Application, error)
}

// backendFor returns the first backend supporting ext.
func backendFor(backends []Backend, ext string) Backend {
	for _, b := range backends {
		if b.Supports(ext) {
			return b
		}
	}
	return nil
}
