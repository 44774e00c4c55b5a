// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/chatexport/internal/config"
	"github.com/jeranaias/chatexport/internal/export"
)

// HandlePreview renders an archived conversation as styled Markdown in the
// terminal.
func HandlePreview(args Args) error {
	id := args.Parser.Positional(0)
	if id == "" {
		return fmt.Errorf("usage: chatexport preview <archive-id>")
	}

	cfg := config.Global()
	arch, err := openArchive(cfg)
	if err != nil {
		return err
	}

	entry, err := arch.Load(id)
	if err != nil {
		return err
	}

	opts := export.DefaultOptions()
	opts.Theme = cfg.UI.Theme
	source, err := export.NewMarkdownExporter(opts).Export(&entry.Conversation)
	if err != nil {
		return err
	}

	// Piped output gets the plain Markdown; a terminal gets it styled.
	if !IsStdoutTTY() {
		fmt.Print(string(source))
		return nil
	}

	style := glamour.WithStandardStyle(cfg.UI.Theme)
	renderer, err := glamour.NewTermRenderer(
		style,
		glamour.WithWordWrap(previewWidth()),
	)
	if err != nil {
		return err
	}

	out, err := renderer.RenderBytes(source)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}

func previewWidth() int {
	width := GetTerminalWidth()
	if width > 100 {
		width = 100
	}
	return width
}
