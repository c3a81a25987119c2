package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: doc2pdf <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert    Convert documents to PDF and optionally merge them")
	fmt.Fprintln(w, "  pages      Count the pages of PDF files")
	fmt.Fprintln(w, "  doctor     Check LibreOffice and Chrome availability")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'doc2pdf help <command>' for details on a specific command.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: doc2pdf convert [flags] <file|dir>...")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert office, HTML and Markdown files to PDF next to each source,")
	fmt.Fprintln(w, "in file name order. Existing PDFs are kept as is. The run stops at the")
	fmt.Fprintln(w, "first document that fails every attempt; it and the rest stay queued.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported: .doc .docx .odt .rtf .hwp .hwpx .ppt .pptx .odp .xls .xlsx .ods")
	fmt.Fprintln(w, "           .html .htm .md .markdown .pdf")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --merge-name <name>       Merge into NAME.pdf (implies --merge)")
	fmt.Fprintln(w, "      --merge                   Merge all PDFs into one (default name: merged)")
	fmt.Fprintln(w, "      --delete-source           Delete each source after it converts")
	fmt.Fprintln(w, "      --delete-intermediates    Delete individual PDFs after a merge")
	fmt.Fprintln(w, "      --metrics-file <path>     Write Prometheus metrics to a textfile")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Retry:")
	fmt.Fprintln(w, "      --attempts <n>            Attempts per document (default 3)")
	fmt.Fprintln(w, "      --artifact-timeout <d>    Wait for each PDF (default 10s)")
	fmt.Fprintln(w, "      --poll-interval <d>       Check interval (default 250ms)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Backends:")
	fmt.Fprintln(w, "      --browser <engine>        HTML/Markdown engine: rod, chromedp")
	fmt.Fprintln(w, "      --soffice <path>          LibreOffice soffice binary")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "General:")
	fmt.Fprintln(w, "  -c, --config <name>           Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet                   Only show errors")
	fmt.Fprintln(w, "  -v, --verbose                 Show debug logs and timing")
	fmt.Fprintln(w, "      --log-level <level>       debug, info, warn, error")
	fmt.Fprintln(w, "      --log-format <format>     console, json")
	fmt.Fprintln(w, "      --log-file <path>         Write logs to a file")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit codes: 0 ok, 1 error, 2 usage, 3 input, 4 backend, 5 stopped on a document")
}

// printPagesUsage prints usage for the pages command.
func printPagesUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: doc2pdf pages [--json] <file|dir>...")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Count the pages of PDF files. Directories are searched recursively.")
	fmt.Fprintln(w, "Unreadable PDFs count as zero pages and are reported.")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: doc2pdf doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check that LibreOffice and Chrome can be found. Binaries set in the")
	fmt.Fprintln(w, "config file or environment are checked the way convert would use them.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -c, --config <name>    Config file name or path")
	fmt.Fprintln(w, "      --soffice <path>   Path to the LibreOffice soffice binary")
	fmt.Fprintln(w, "      --json             Print JSON")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "pages":
		printPagesUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: doc2pdf version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: doc2pdf help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
