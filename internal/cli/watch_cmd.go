// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jeranaias/chatexport/internal/config"
	"github.com/jeranaias/chatexport/internal/export"
	"github.com/jeranaias/chatexport/internal/model"
	"github.com/jeranaias/chatexport/internal/scrape"
)

// HandleWatch watches a directory for saved conversation pages and exports
// each one as it appears. Runs until interrupted.
func HandleWatch(args Args) error {
	cfg := config.Global()

	dir := args.Parser.Positional(0)
	if dir == "" {
		dir = cfg.Watch.Dir
	}
	if dir == "" {
		return fmt.Errorf("usage: chatexport watch <dir> (or set watch.dir in config)")
	}

	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("cannot watch %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("cannot watch %s: not a directory", dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	fmt.Println(TitleStyle.Render("Watching " + dir + " for saved pages"))
	fmt.Println(DimStyle.Render("Press Ctrl+C to stop."))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	// Browsers write saved pages in several bursts; debounce per path and
	// only parse once a file has gone quiet.
	debounce := cfg.WatchDebounce()
	pending := make(map[string]*time.Timer)
	done := make(chan string)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !isSavedPage(event.Name) {
				continue
			}

			path := event.Name
			if t, exists := pending[path]; exists {
				t.Reset(debounce)
				continue
			}
			pending[path] = time.AfterFunc(debounce, func() {
				done <- path
			})

		case path := <-done:
			delete(pending, path)
			if err := exportSavedPage(cfg, path); err != nil {
				fmt.Fprintln(os.Stderr, ErrorStyle.Render("error: ")+path+": "+err.Error())
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(os.Stderr, WarningStyle.Render("watch error: ")+err.Error())

		case <-sig:
			fmt.Println()
			fmt.Println(DimStyle.Render("Stopped."))
			return nil
		}
	}
}

// isSavedPage filters watch events down to page files.
func isSavedPage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".mhtml":
		return true
	}
	return false
}

// exportSavedPage parses one saved page and exports it with the configured
// defaults.
func exportSavedPage(cfg *config.Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	conv, err := scrape.Parse(raw, model.ProviderGemini)
	if err != nil {
		return err
	}
	conv.ID = path

	if cfg.Archive.Enabled {
		if err := archiveConversation(cfg, conv); err != nil {
			fmt.Fprintln(os.Stderr, WarningStyle.Render("warning: ")+"archive failed: "+err.Error())
		}
	}

	opts := export.DefaultOptions()
	opts.OutputDir = cfg.Export.OutputDir
	opts.Timestamp = cfg.Export.Timestamp
	opts.IncludeMetadata = cfg.Export.IncludeMetadata
	opts.Theme = cfg.UI.Theme

	exporter, err := export.ForFormat(cfg.Export.Format, opts)
	if err != nil {
		return err
	}

	outPath, err := export.ExportToFile(conv, exporter, opts)
	if err != nil {
		return err
	}
	fmt.Println(SuccessStyle.Render("Exported: ") + outPath)
	return nil
}
