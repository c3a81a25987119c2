package doc2pdf

import (
	"context"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// PageCount is the page count of one PDF. Unreadable files count as zero
// pages and carry the read error.
type PageCount struct {
	Path  string
	Pages int
	Err   error
}

// PageReport lists per-file page counts and their total.
type PageReport struct {
	Files []PageCount
	Total int
}

// Failed returns the number of files that could not be read.
func (r *PageReport) Failed() int {
	n := 0
	for _, f := range r.Files {
		if f.Err != nil {
			n++
		}
	}
	return n
}

// CountPages counts the pages of every PDF among paths. Directories are
// searched recursively for PDFs; non-PDF files are ignored.
func CountPages(ctx context.Context, paths []string) (*PageReport, error) {
	files, err := ExpandInputs(paths, IsPDF)
	if err != nil {
		return nil, err
	}

	report := &PageReport{}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if !IsPDF(f) {
			continue
		}
		n, err := pageCountFile(f)
		report.Files = append(report.Files, PageCount{Path: f, Pages: n, Err: err})
		report.Total += n
	}
	return report, nil
}

func pageCountFile(path string) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("reading %s: %v", path, r)
		}
	}()

	n, err = api.PageCountFile(path)
	if err != nil {
		return 0, err
	}
	return n, nil
}
