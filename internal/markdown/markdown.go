// Package markdown renders Markdown sources into standalone, sanitized HTML
// documents that a headless browser can print.
package markdown

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldhtml "github.com/yuin/goldmark/renderer/html"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// DefaultCodeStyle is the chroma style used for fenced code blocks.
const DefaultCodeStyle = "github"

// baseCSS keeps printed output readable without any user stylesheet.
const baseCSS = `body { font-family: -apple-system, "Segoe UI", Helvetica, Arial, sans-serif; font-size: 11pt; line-height: 1.5; margin: 0; }
h1, h2, h3 { page-break-after: avoid; }
pre { padding: 8px; overflow-x: auto; font-size: 9pt; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 4px 8px; }
img { max-width: 100%; }`

// documentTemplate wraps the rendered fragment in a complete HTML5 document.
const documentTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
%s
%s
</style>
</head>
<body>
%s
</body>
</html>`

// Converter turns Markdown into HTML using goldmark with GFM, footnotes and
// chroma highlighting. Output is passed through a bluemonday UGC policy.
type Converter struct {
	md       goldmark.Markdown
	policy   *bluemonday.Policy
	styleCSS string
}

// New creates a Converter. An unknown codeStyle falls back to DefaultCodeStyle.
func New(codeStyle string) *Converter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			goldhtml.WithXHTML(),
		),
	)

	policy := bluemonday.UGCPolicy()
	// Keep the chroma classes and heading IDs goldmark emits.
	policy.AllowAttrs("class").Globally()
	policy.AllowAttrs("id").Globally()

	return &Converter{
		md:       md,
		policy:   policy,
		styleCSS: codeCSS(lookupStyle(codeStyle)),
	}
}

// ToHTML converts Markdown content to a standalone HTML5 document titled title.
// Goldmark does not take a context, so conversion runs in a goroutine and
// ctx is honored through select.
func (c *Converter) ToHTML(ctx context.Context, title, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(content), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		body := c.policy.Sanitize(buf.String())
		done <- result{html: fmt.Sprintf(documentTemplate, html.EscapeString(title), baseCSS, c.styleCSS, body)}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

func lookupStyle(name string) *chroma.Style {
	if s, ok := styles.Registry[strings.ToLower(name)]; ok {
		return s
	}
	return styles.Get(DefaultCodeStyle)
}

func codeCSS(style *chroma.Style) string {
	var buf bytes.Buffer
	if err := chromahtml.New(chromahtml.WithClasses(true)).WriteCSS(&buf, style); err != nil {
		return ""
	}
	return buf.String()
}
