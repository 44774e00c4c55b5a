// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"

	"github.com/jeranaias/chatexport/internal/config"
	"github.com/jeranaias/chatexport/internal/index"
	"github.com/jeranaias/chatexport/internal/storage"
	"github.com/jeranaias/chatexport/internal/util"
)

// HandleList lists archived conversations, or the export catalog with
// --exports.
func HandleList(args Args) error {
	limit := args.Parser.FlagIntOrDefault("limit", 20)

	if args.Parser.BoolFlag("exports") {
		return listExports(limit)
	}

	arch, err := openArchive(config.Global())
	if err != nil {
		return err
	}

	metas, err := arch.List()
	if err != nil {
		return err
	}
	if len(metas) > limit {
		metas = metas[:limit]
	}

	fmt.Println(TitleStyle.Render("Archived conversations"))
	fmt.Print(storage.FormatList(metas))
	return nil
}

// HandleSearch searches the archive (default) or the export catalog.
func HandleSearch(args Args) error {
	query := args.Parser.JoinPositionalFrom(0)
	if query == "" {
		return fmt.Errorf("usage: chatexport search <query>")
	}

	if args.Parser.BoolFlag("exports") {
		return searchExports(query, args.Parser.FlagIntOrDefault("limit", 20))
	}

	arch, err := openArchive(config.Global())
	if err != nil {
		return err
	}

	var metas []storage.Meta
	if args.Parser.BoolFlag("messages") {
		metas, err = arch.SearchMessages(query)
	} else {
		metas, err = arch.Search(query)
	}
	if err != nil {
		return err
	}

	if len(metas) == 0 {
		fmt.Println(DimStyle.Render("No matches for: " + query))
		return nil
	}
	fmt.Print(storage.FormatList(metas))
	return nil
}

func listExports(limit int) error {
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	recs, err := cat.Recent(context.Background(), limit)
	if err != nil {
		return err
	}
	printRecords(recs)
	return nil
}

func searchExports(query string, limit int) error {
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	recs, err := cat.Search(context.Background(), query, limit)
	if err != nil {
		return err
	}
	printRecords(recs)
	return nil
}

func openCatalog() (*index.Catalog, error) {
	dbPath, err := index.DefaultPath()
	if err != nil {
		return nil, err
	}
	return index.Open(dbPath)
}

func printRecords(recs []index.Record) {
	if len(recs) == 0 {
		fmt.Println(DimStyle.Render("No exports recorded."))
		return
	}

	fmt.Println(TitleStyle.Render("Export history"))
	for _, r := range recs {
		fmt.Printf("%s  %-8s  %-8s  %s\n",
			r.ExportedAt.Local().Format("2006-01-02 15:04"),
			r.Provider,
			r.Format,
			util.Truncate(r.Title, 48))
		fmt.Println(DimStyle.Render("  " + r.Path))
	}
}
