// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"fmt"
	"os"

	"github.com/jeranaias/chatexport/internal/model"
	"github.com/jeranaias/chatexport/internal/scrape"
)

// =============================================================================
// GEMINI FETCHER
// =============================================================================

// GeminiFetcher builds conversations from saved Gemini pages. Gemini exposes
// no usable conversation API, so the id passed to Fetch is a path to an HTML
// file saved from the browser.
type GeminiFetcher struct{}

// NewGeminiFetcher creates a saved-page fetcher.
func NewGeminiFetcher() *GeminiFetcher {
	return &GeminiFetcher{}
}

// Provider returns model.ProviderGemini.
func (f *GeminiFetcher) Provider() model.Provider {
	return model.ProviderGemini
}

// Fetch parses the saved page at the given path.
func (f *GeminiFetcher) Fetch(ctx context.Context, path string) (*Result, error) {
	if path == "" {
		return nil, fmt.Errorf("saved page path is empty")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read saved page: %w", err)
	}

	conv, err := scrape.Parse(raw, model.ProviderGemini)
	if err != nil {
		return nil, err
	}
	conv.ID = path

	return &Result{Conversation: conv, Raw: raw}, nil
}
