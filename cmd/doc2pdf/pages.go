package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	doc2pdf "github.com/alnah/go-doc2pdf"
)

// pagesJSON is the --json output of the pages command.
type pagesJSON struct {
	Files  []pageFileJSON `json:"files"`
	Total  int            `json:"total"`
	Failed int            `json:"failed"`
}

type pageFileJSON struct {
	Path  string `json:"path"`
	Pages int    `json:"pages"`
	Error string `json:"error,omitempty"`
}

// runPagesCmd counts the pages of PDFs given as files or directories.
func runPagesCmd(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parsePagesFlags(args, env.Stdout)
	if err != nil {
		return err
	}
	if len(positional) == 0 {
		return ErrNoInput
	}

	report, err := doc2pdf.CountPages(ctx, positional)
	if err != nil {
		return err
	}
	if len(report.Files) == 0 {
		return fmt.Errorf("%w: no PDF files found", ErrNoInput)
	}

	if flags.json {
		return writePagesJSON(env.Stdout, report)
	}
	printPages(env.Stdout, report)
	return nil
}

func writePagesJSON(w io.Writer, r *doc2pdf.PageReport) error {
	out := pagesJSON{Total: r.Total, Failed: r.Failed(), Files: make([]pageFileJSON, 0, len(r.Files))}
	for _, f := range r.Files {
		pf := pageFileJSON{Path: f.Path, Pages: f.Pages}
		if f.Err != nil {
			pf.Error = f.Err.Error()
		}
		out.Files = append(out.Files, pf)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printPages(w io.Writer, r *doc2pdf.PageReport) {
	for _, f := range r.Files {
		if f.Err != nil {
			fmt.Fprintf(w, "%6s  %s (unreadable: %v)\n", "?", f.Path, f.Err)
			continue
		}
		fmt.Fprintf(w, "%6d  %s\n", f.Pages, f.Path)
	}
	fmt.Fprintf(w, "%6d  total (%d files", r.Total, len(r.Files))
	if n := r.Failed(); n > 0 {
		fmt.Fprintf(w, ", %d unreadable", n)
	}
	fmt.Fprintln(w, ")")
}
