// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/chatexport/internal/config"
)

// HandleConfig shows or updates configuration.
func HandleConfig(args Args) error {
	switch args.Parser.Positional(0) {
	case "", "show":
		return configShow()
	case "path":
		path, err := config.ConfigPathTOML()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	case "init":
		return configInit()
	case "set":
		return configSet(args.Parser.Positional(1), args.Parser.Positional(2))
	default:
		return fmt.Errorf("usage: chatexport config [show|path|init|set <key> <value>]")
	}
}

func configShow() error {
	cfg := config.Global()

	fmt.Println(TitleStyle.Render("chatexport configuration"))
	fmt.Println(LabelStyle.Render("output_dir") + cfg.Export.OutputDir)
	fmt.Println(LabelStyle.Render("format") + cfg.Export.Format)
	fmt.Println(LabelStyle.Render("timestamp") + fmt.Sprint(cfg.Export.Timestamp))
	fmt.Println(LabelStyle.Render("metadata") + fmt.Sprint(cfg.Export.IncludeMetadata))
	fmt.Println(LabelStyle.Render("theme") + cfg.UI.Theme)
	fmt.Println(LabelStyle.Render("archive") + fmt.Sprint(cfg.Archive.Enabled))
	if cfg.Watch.Dir != "" {
		fmt.Println(LabelStyle.Render("watch_dir") + cfg.Watch.Dir)
	}

	// SECURITY: Never print tokens; show presence only.
	fmt.Println(LabelStyle.Render("chatgpt_token") + tokenState(cfg.Providers.ChatGPT.Token))
	fmt.Println(LabelStyle.Render("copilot_token") + tokenState(cfg.Providers.Copilot.Token))
	return nil
}

func tokenState(token string) string {
	if token == "" {
		return DimStyle.Render("(not set)")
	}
	return SuccessStyle.Render("(set)")
}

func configInit() error {
	path, err := config.ConfigPathTOML()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists at %s", path)
	}

	if err := config.Save(config.Default()); err != nil {
		return err
	}
	fmt.Println(SuccessStyle.Render("Created: ") + path)
	return nil
}

func configSet(key, value string) error {
	if key == "" || value == "" {
		return fmt.Errorf("usage: chatexport config set <key> <value>")
	}

	cfg := config.Global()

	switch strings.ToLower(key) {
	case "export.format", "format":
		cfg.Export.Format = value
	case "export.output_dir", "output_dir":
		cfg.Export.OutputDir = value
	case "export.timestamp":
		cfg.Export.Timestamp = value == "true" || value == "1"
	case "export.include_metadata":
		cfg.Export.IncludeMetadata = value == "true" || value == "1"
	case "ui.theme", "theme":
		cfg.UI.Theme = value
	case "archive.enabled":
		cfg.Archive.Enabled = value == "true" || value == "1"
	case "archive.dir":
		cfg.Archive.Dir = value
	case "watch.dir":
		cfg.Watch.Dir = value
	case "providers.chatgpt.token":
		cfg.Providers.ChatGPT.Token = value
	case "providers.copilot.token":
		cfg.Providers.Copilot.Token = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return err
	}
	fmt.Println(SuccessStyle.Render("Saved: ") + key)
	return nil
}
