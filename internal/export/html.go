// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/jeranaias/chatexport/internal/model"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports conversations to a standalone HTML document. The
// conversation is first assembled as Markdown, then converted with goldmark
// and wrapped in a small themed shell.
type HTMLExporter struct {
	options  *Options
	markdown *MarkdownExporter
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{
		options:  opts,
		markdown: NewMarkdownExporter(opts),
	}
}

// Export converts a conversation to HTML format.
func (e *HTMLExporter) Export(conv *model.Conversation) ([]byte, error) {
	if conv == nil {
		return nil, fmt.Errorf("conversation is nil")
	}

	source, err := e.markdown.Export(conv)
	if err != nil {
		return nil, err
	}

	// WithUnsafe keeps the <details> disclosure blocks emitted by the
	// renderer; everything else in the source was produced by us, not by
	// untrusted page content.
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(goldmarkhtml.WithUnsafe()),
	)

	var body bytes.Buffer
	if err := md.Convert(source, &body); err != nil {
		return nil, fmt.Errorf("markdown conversion failed: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	sb.WriteString("<meta charset=\"utf-8\">\n")
	sb.WriteString(fmt.Sprintf("<title>%s</title>\n", html.EscapeString(conv.GetTitle())))
	sb.WriteString("<style>\n")
	sb.WriteString(e.styles())
	sb.WriteString("</style>\n</head>\n<body>\n<main>\n")
	sb.Write(body.Bytes())
	sb.WriteString("</main>\n</body>\n</html>\n")

	return []byte(sb.String()), nil
}

// styles returns the embedded stylesheet for the configured theme.
func (e *HTMLExporter) styles() string {
	bg, fg, accent, codeBg := "#1e1e2e", "#cdd6f4", "#89b4fa", "#11111b"
	if e.options.Theme == "light" {
		bg, fg, accent, codeBg = "#ffffff", "#24292f", "#0969da", "#f6f8fa"
	}
	return fmt.Sprintf(`body { background: %s; color: %s; font-family: -apple-system, "Segoe UI", sans-serif; line-height: 1.6; }
main { max-width: 48rem; margin: 0 auto; padding: 2rem 1rem; }
h1, h2 { color: %s; }
h2 { border-bottom: 1px solid %s33; padding-bottom: .3rem; }
pre { background: %s; padding: 1rem; border-radius: 6px; overflow-x: auto; }
code { font-family: ui-monospace, "Cascadia Code", monospace; font-size: .9em; }
blockquote { border-left: 3px solid %s; margin-left: 0; padding-left: 1rem; opacity: .85; }
hr { border: none; border-top: 1px solid %s33; margin: 2rem 0; }
img { max-width: 100%%; }
details { margin: 1rem 0; }
details summary { cursor: pointer; color: %s; }
`, bg, fg, accent, accent, codeBg, accent, accent, accent)
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}
