// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatexport/internal/model"
)

func testConversation(title, question string) *model.Conversation {
	return &model.Conversation{
		Provider: model.ProviderChatGPT,
		Title:    title,
		Messages: []model.Message{
			{Role: model.RoleUser, Content: model.TextContent(question), Recipient: model.RecipientAll},
			{Role: model.RoleAssistant, Content: model.TextContent("answer"), Recipient: model.RecipientAll, EndOfTurn: true},
		},
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	arch, err := OpenDir(t.TempDir())
	require.NoError(t, err)

	id, err := arch.Save(testConversation("Round trip", "hello"))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	entry, err := arch.Load(id)
	require.NoError(t, err)
	assert.Equal(t, "Round trip", entry.Conversation.Title)
	assert.Len(t, entry.Conversation.Messages, 2)
	assert.False(t, entry.ArchivedAt.IsZero())
}

func TestLoadMissingEntry(t *testing.T) {
	arch, err := OpenDir(t.TempDir())
	require.NoError(t, err)

	_, err = arch.Load("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListMostRecentFirst(t *testing.T) {
	arch, err := OpenDir(t.TempDir())
	require.NoError(t, err)

	for _, title := range []string{"first", "second", "third"} {
		_, err := arch.Save(testConversation(title, "q"))
		require.NoError(t, err)
	}

	metas, err := arch.List()
	require.NoError(t, err)
	require.Len(t, metas, 3)

	for i := 0; i < len(metas)-1; i++ {
		assert.False(t, metas[i].ArchivedAt.Before(metas[i+1].ArchivedAt))
	}
	assert.Equal(t, 2, metas[0].MessageCount)
	assert.Equal(t, model.ProviderChatGPT, metas[0].Provider)
}

func TestSearchMatchesTitleCaseInsensitive(t *testing.T) {
	arch, err := OpenDir(t.TempDir())
	require.NoError(t, err)

	_, err = arch.Save(testConversation("Go generics deep dive", "q"))
	require.NoError(t, err)
	_, err = arch.Save(testConversation("Dinner ideas", "q"))
	require.NoError(t, err)

	results, err := arch.Search("GENERICS")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Go generics deep dive", results[0].Title)
}

func TestSearchMessagesScansBodies(t *testing.T) {
	arch, err := OpenDir(t.TempDir())
	require.NoError(t, err)

	_, err = arch.Save(testConversation("plain title", "where is the xenon lamp"))
	require.NoError(t, err)

	results, err := arch.SearchMessages("xenon")
	require.NoError(t, err)
	assert.Len(t, results, 1)

	none, err := arch.SearchMessages("krypton")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDeleteAndClear(t *testing.T) {
	arch, err := OpenDir(t.TempDir())
	require.NoError(t, err)

	id, err := arch.Save(testConversation("t", "q"))
	require.NoError(t, err)

	require.NoError(t, arch.Delete(id))
	assert.ErrorIs(t, arch.Delete(id), ErrNotFound)

	_, err = arch.Save(testConversation("t2", "q"))
	require.NoError(t, err)
	require.NoError(t, arch.Clear())

	metas, err := arch.List()
	require.NoError(t, err)
	assert.Empty(t, metas)
}

func TestMaxEntriesEvictsOldest(t *testing.T) {
	arch, err := OpenDir(t.TempDir())
	require.NoError(t, err)
	arch.MaxEntries = 2

	for _, title := range []string{"a", "b", "c"} {
		_, err := arch.Save(testConversation(title, "q"))
		require.NoError(t, err)
	}

	metas, err := arch.List()
	require.NoError(t, err)
	assert.Len(t, metas, 2)
}

func TestFormatList(t *testing.T) {
	out := FormatList(nil)
	assert.Equal(t, "No archived conversations.", out)
}
