package doc2pdf_test

import (
	"errors"
	"fmt"

	doc2pdf "github.com/alnah/go-doc2pdf"
)

// ExampleNewWorklist shows how inputs are classified and ordered.
// Unsupported files are reported but do not prevent the rest from queueing.
func ExampleNewWorklist() {
	wl, err := doc2pdf.NewWorklist("/docs/b.docx", "/docs/A.pdf", "/docs/c.md", "/docs/notes.txt")
	if err != nil {
		fmt.Println("skipped unsupported:", errors.Is(err, doc2pdf.ErrUnsupportedExtension))
	}

	for _, item := range wl.Snapshot() {
		fmt.Println(item.Name(), item.Kind)
	}
	// Output:
	// skipped unsupported: true
	// A.pdf pdf
	// b.docx convertible
	// c.md convertible
}

// ExampleWorkItem_PDFPath shows where a conversion writes its output.
func ExampleWorkItem_PDFPath() {
	item, _ := doc2pdf.NewWorkItem("/docs/report.hwp")
	fmt.Println(item.PDFPath())
	// Output: /docs/report.pdf
}

// ExampleStatus_String shows the progress line reported for each attempt.
func ExampleStatus_String() {
	item, _ := doc2pdf.NewWorkItem("/docs/report.docx")
	st := doc2pdf.Status{Phase: doc2pdf.PhaseConverting, Item: &item, Attempt: 2, MaxAttempts: 3}
	fmt.Println(st)
	// Output: converting (2/3): report.docx
}
