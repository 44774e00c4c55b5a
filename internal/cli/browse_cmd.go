// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"

	"github.com/jeranaias/chatexport/internal/config"
	"github.com/jeranaias/chatexport/internal/export"
	"github.com/jeranaias/chatexport/internal/index"
	"github.com/jeranaias/chatexport/internal/ui/browse"
)

// HandleBrowse opens the interactive archive picker. Enter exports the
// selected conversation with the configured defaults.
func HandleBrowse(args Args) error {
	if !IsTTY() {
		return fmt.Errorf("browse requires an interactive terminal")
	}

	cfg := config.Global()
	arch, err := openArchive(cfg)
	if err != nil {
		return err
	}

	metas, err := arch.List()
	if err != nil {
		return err
	}
	if len(metas) == 0 {
		fmt.Println(DimStyle.Render("Archive is empty. Run an export first."))
		return nil
	}

	return browse.Run(metas, func(archiveID string) (string, error) {
		entry, err := arch.Load(archiveID)
		if err != nil {
			return "", err
		}

		opts := export.DefaultOptions()
		opts.OutputDir = cfg.Export.OutputDir
		opts.Timestamp = cfg.Export.Timestamp
		opts.IncludeMetadata = cfg.Export.IncludeMetadata
		opts.Theme = cfg.UI.Theme

		exporter, err := export.ForFormat(cfg.Export.Format, opts)
		if err != nil {
			return "", err
		}

		path, err := export.ExportToFile(&entry.Conversation, exporter, opts)
		if err != nil {
			return "", err
		}

		if dbPath, err := index.DefaultPath(); err == nil {
			if cat, err := index.Open(dbPath); err == nil {
				cat.Add(context.Background(), &index.Record{
					Provider:       entry.Conversation.Provider,
					ConversationID: entry.Conversation.ID,
					Title:          entry.Conversation.GetTitle(),
					Format:         cfg.Export.Format,
					Path:           path,
				})
				cat.Close()
			}
		}
		return path, nil
	})
}
