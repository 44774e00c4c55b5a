// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"

	"github.com/jeranaias/chatexport/internal/config"
	"github.com/jeranaias/chatexport/internal/provider"
)

// HandleStatus shows the current configuration, credentials, and catalog
// state at a glance.
func HandleStatus(args Args) error {
	cfg := config.Global()

	fmt.Println(TitleStyle.Render("chatexport status"))

	fmt.Println(LabelStyle.Render("version") + Version)
	fmt.Println(LabelStyle.Render("output_dir") + cfg.Export.OutputDir)
	fmt.Println(LabelStyle.Render("format") + cfg.Export.Format)
	fmt.Println(RenderSeparator(40))

	// SECURITY: Credentials are shown as fingerprints, never as fragments.
	chatgpt := provider.NewChatGPTFetcher(cfg.Providers.ChatGPT.BaseURL, cfg.Providers.ChatGPT.Token)
	copilot := provider.NewCopilotFetcher(cfg.Providers.Copilot.BaseURL, cfg.Providers.Copilot.Token)
	fmt.Println(LabelStyle.Render("chatgpt") + credentialLine(cfg.Providers.ChatGPT.Token, chatgpt.TokenFingerprint()))
	fmt.Println(LabelStyle.Render("copilot") + credentialLine(cfg.Providers.Copilot.Token, copilot.TokenFingerprint()))
	fmt.Println(LabelStyle.Render("gemini") + DimStyle.Render("saved pages only, no credential"))
	fmt.Println(RenderSeparator(40))

	fmt.Println(LabelStyle.Render("archive") + archiveLine(cfg))
	fmt.Println(LabelStyle.Render("exports") + catalogLine())
	return nil
}

func credentialLine(token, fingerprint string) string {
	if token == "" {
		return RenderStatus(false) + DimStyle.Render(" no token configured")
	}
	return RenderStatus(true) + " token " + fingerprint
}

func archiveLine(cfg *config.Config) string {
	if !cfg.Archive.Enabled {
		return DimStyle.Render("disabled")
	}
	arch, err := openArchive(cfg)
	if err != nil {
		return ErrorStyle.Render("unavailable: " + err.Error())
	}
	metas, err := arch.List()
	if err != nil {
		return ErrorStyle.Render("unavailable: " + err.Error())
	}
	return fmt.Sprintf("%d conversations in %s", len(metas), arch.BaseDir)
}

func catalogLine() string {
	cat, err := openCatalog()
	if err != nil {
		return DimStyle.Render("catalog unavailable")
	}
	defer cat.Close()

	n, err := cat.Count(context.Background())
	if err != nil {
		return DimStyle.Render("catalog unavailable")
	}

	var last string
	if recs, err := cat.Recent(context.Background(), 1); err == nil && len(recs) > 0 {
		last = ", last " + recs[0].ExportedAt.Local().Format("2006-01-02 15:04")
	}
	return fmt.Sprintf("%d recorded%s", n, last)
}
