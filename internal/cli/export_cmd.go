// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jeranaias/chatexport/internal/config"
	"github.com/jeranaias/chatexport/internal/export"
	"github.com/jeranaias/chatexport/internal/index"
	"github.com/jeranaias/chatexport/internal/model"
	"github.com/jeranaias/chatexport/internal/provider"
	"github.com/jeranaias/chatexport/internal/storage"
)

// exportTimeout bounds one fetch-and-export run.
const exportTimeout = 2 * time.Minute

// HandleExport fetches one conversation and writes it as a document.
func HandleExport(args Args) error {
	providerName := args.Parser.Positional(0)
	conversationID := args.Parser.Positional(1)
	if providerName == "" || conversationID == "" {
		return fmt.Errorf("usage: chatexport export <provider> <conversation-id>")
	}

	p, ok := model.ParseProvider(providerName)
	if !ok {
		return fmt.Errorf("unknown provider %q (want chatgpt, copilot, or gemini)", providerName)
	}

	cfg := config.Global()
	fetcher := fetcherFor(p, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
	defer cancel()

	res, err := fetcher.Fetch(ctx, conversationID)
	if err != nil {
		return err
	}
	conv := res.Conversation

	if cfg.Archive.Enabled && !args.Parser.BoolFlag("no-archive") {
		if err := archiveConversation(cfg, conv); err != nil {
			// Archiving is best effort; the export still proceeds.
			fmt.Fprintln(os.Stderr, WarningStyle.Render("warning: ")+"archive failed: "+err.Error())
		}
	}

	opts := exportOptions(cfg, args)
	format := args.Parser.FlagOrDefault("format", cfg.Export.Format)

	exporter, err := export.ForFormat(format, opts)
	if err != nil {
		return err
	}

	path, err := export.ExportToFile(conv, exporter, opts)
	if err != nil {
		return err
	}
	fmt.Println(SuccessStyle.Render("Exported: ") + path)

	if args.Parser.BoolFlag("raw") {
		rawPath, err := export.ExportRawJSON(conv.GetTitle(), res.Raw, opts)
		if err != nil {
			return err
		}
		fmt.Println(SuccessStyle.Render("Raw payload: ") + rawPath)
	}

	recordExport(ctx, p, conversationID, conv.GetTitle(), format, path)
	return nil
}

// fetcherFor builds the provider fetcher from configuration.
func fetcherFor(p model.Provider, cfg *config.Config) provider.Fetcher {
	switch p {
	case model.ProviderChatGPT:
		pc := cfg.Providers.ChatGPT
		return provider.NewChatGPTFetcher(pc.BaseURL, pc.Token)
	case model.ProviderCopilot:
		pc := cfg.Providers.Copilot
		return provider.NewCopilotFetcher(pc.BaseURL, pc.Token)
	default:
		return provider.NewGeminiFetcher()
	}
}

// exportOptions merges config defaults with command flags.
func exportOptions(cfg *config.Config, args Args) *export.Options {
	opts := export.DefaultOptions()
	opts.OutputDir = args.Parser.FlagOrDefault("output", cfg.Export.OutputDir)
	opts.Timestamp = cfg.Export.Timestamp && !args.Parser.BoolFlag("no-timestamp")
	opts.IncludeMetadata = cfg.Export.IncludeMetadata || args.Parser.BoolFlag("metadata")
	opts.OpenAfterExport = cfg.Export.OpenAfterExport || args.Parser.BoolFlag("open")
	opts.Theme = cfg.UI.Theme
	return opts
}

// archiveConversation opens the configured archive and stores the transcript.
func archiveConversation(cfg *config.Config, conv *model.Conversation) error {
	arch, err := openArchive(cfg)
	if err != nil {
		return err
	}
	_, err = arch.Save(conv)
	return err
}

// openArchive opens the archive at the configured or default location.
func openArchive(cfg *config.Config) (*storage.Archive, error) {
	var arch *storage.Archive
	var err error
	if cfg.Archive.Dir != "" {
		arch, err = storage.OpenDir(cfg.Archive.Dir)
	} else {
		arch, err = storage.Open()
	}
	if err != nil {
		return nil, err
	}
	arch.MaxEntries = cfg.Archive.MaxEntries
	return arch, nil
}

// recordExport logs the export in the catalog. Failures are non-fatal: the
// document is already on disk.
func recordExport(ctx context.Context, p model.Provider, conversationID, title, format, path string) {
	dbPath, err := index.DefaultPath()
	if err != nil {
		return
	}
	cat, err := index.Open(dbPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("warning: ")+"export catalog unavailable: "+err.Error())
		return
	}
	defer cat.Close()

	if _, err := cat.Add(ctx, &index.Record{
		Provider:       p,
		ConversationID: conversationID,
		Title:          title,
		Format:         format,
		Path:           path,
	}); err != nil {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("warning: ")+"could not record export: "+err.Error())
	}
}
