// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package index

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatexport/internal/model"
)

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	cat, err := Open(filepath.Join(t.TempDir(), "exports.db"))
	require.NoError(t, err)
	t.Cleanup(func() { cat.Close() })
	return cat
}

func TestAddAndRecent(t *testing.T) {
	cat := openTestCatalog(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, title := range []string{"older export", "newer export"} {
		_, err := cat.Add(ctx, &Record{
			Provider:       model.ProviderChatGPT,
			ConversationID: "conv-1",
			Title:          title,
			Format:         "markdown",
			Path:           "/tmp/" + title + ".md",
			ExportedAt:     base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	recs, err := cat.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "newer export", recs[0].Title)

	n, err := cat.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSearchTitles(t *testing.T) {
	cat := openTestCatalog(t)
	ctx := context.Background()

	titles := []string{"Go generics deep dive", "Dinner planning", "Generic containers in Go"}
	for _, title := range titles {
		_, err := cat.Add(ctx, &Record{
			Provider: model.ProviderGemini, ConversationID: "c", Title: title,
			Format: "markdown", Path: "/tmp/x.md",
		})
		require.NoError(t, err)
	}

	recs, err := cat.Search(ctx, "generics", 10)
	require.NoError(t, err)

	// Porter stemming matches both "generics" and "generic".
	require.Len(t, recs, 2)
	for _, r := range recs {
		assert.NotEqual(t, "Dinner planning", r.Title)
	}
}

func TestLastExport(t *testing.T) {
	cat := openTestCatalog(t)
	ctx := context.Background()

	_, err := cat.LastExport(ctx, model.ProviderChatGPT, "conv-9")
	assert.ErrorIs(t, err, ErrNotFound)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, format := range []string{"markdown", "json"} {
		_, err := cat.Add(ctx, &Record{
			Provider: model.ProviderChatGPT, ConversationID: "conv-9",
			Title: "t", Format: format, Path: "/tmp/t." + format,
			ExportedAt: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	rec, err := cat.LastExport(ctx, model.ProviderChatGPT, "conv-9")
	require.NoError(t, err)
	assert.Equal(t, "json", rec.Format)

	_, err = cat.LastExport(ctx, model.ProviderCopilot, "conv-9")
	assert.ErrorIs(t, err, ErrNotFound)
}
