// Package doc2pdf converts a queue of office and markup documents to PDF by
// driving external applications, then optionally merges the results.
//
// # Quick Start
//
// Build a worklist, pick backends, and execute a pipeline:
//
//	wl, err := doc2pdf.NewWorklist("report.docx", "notes.md", "annex.pdf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	web, err := browser.New(browser.Config{}, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	backends := []doc2pdf.Backend{office.New(office.Config{}, nil), web}
//	p, err := doc2pdf.NewPipeline(backends, doc2pdf.WithAttempts(3))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sum, err := p.Execute(ctx, wl, doc2pdf.RunOptions{Merge: true, OutputName: "bundle"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(sum.Message())
//
// # Conversion
//
// A Driver owns at most one external application at a time. Each item gets
// a bounded number of attempts; an attempt opens the document, exports it
// next to the source as <name>.pdf, and polls until that file exists and
// is non-empty. The application is reset after every attempt.
//
// When an item exhausts its attempts the run aborts: the error matches
// ErrExhaustedRetries, and the failed item and everything after it stay in
// the worklist so the user can fix the file and run again.
//
// # Merging
//
// After a completed run, produced PDFs are merged in worklist order into
// <OutputName>.pdf in the directory of the first PDF. Merge failures never
// fail the run; they are reported in Summary.MergeErr.
//
// # Cancellation
//
// Every blocking operation honors its context. Cancel the context passed to
// Execute to stop between attempts or during a wait; the application is
// always quit before Execute returns.
//
// # Sentinel Errors
//
// Errors can be matched with errors.Is:
//
//	if errors.Is(err, doc2pdf.ErrExhaustedRetries) {
//	    // an item could not be converted
//	}
//
// Conversion errors:
//   - ErrExhaustedRetries: an item failed every attempt (see ConversionError)
//   - ErrArtifactMissing: the PDF did not appear in time
//   - ErrAppLaunch: the external application could not start
//   - ErrNoBackend: no backend handles the file type
//
// Merge errors:
//   - ErrMerge: the merge stage failed
//   - ErrNoMergeInputs: nothing was left to merge
package doc2pdf
