// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatexport/internal/model"
)

func textMsg(role model.Role, text string) model.Message {
	return model.Message{Role: role, Content: model.TextContent(text), Recipient: model.RecipientAll}
}

func TestExportStartsWithTitleHeading(t *testing.T) {
	conv := &model.Conversation{
		Title: "T",
		Messages: []model.Message{
			textMsg(model.RoleUser, "hi"),
		},
	}

	out, err := NewMarkdownExporter(nil).Export(conv)
	require.NoError(t, err)

	doc := string(out)
	assert.True(t, strings.HasPrefix(doc, "# T\n\n"), "doc: %q", doc)
	assert.Contains(t, doc, "## [User]\n\nhi")
}

func TestAssistantTurnMergesUntilEndOfTurn(t *testing.T) {
	// Reasoning, a tool call, then the final text reply: one turn, one
	// header, one separator.
	conv := &model.Conversation{
		Title: "merge",
		Messages: []model.Message{
			textMsg(model.RoleUser, "question"),
			{
				Role: model.RoleAssistant,
				Content: model.ThoughtsContent(
					model.Thought{Summary: "Considering", Body: "the options"},
				),
				Recipient: model.RecipientAll,
			},
			{
				Role:      model.RoleAssistant,
				Content:   model.CodeContent(`{"query":"docs"}`, ""),
				Recipient: model.RecipientAll,
			},
			{
				Role:      model.RoleTool,
				Content:   model.TextContent("tool result"),
				Recipient: model.RecipientAll,
			},
			{
				Role:      model.RoleAssistant,
				Content:   model.TextContent("final answer"),
				Recipient: model.RecipientAll,
				EndOfTurn: true,
			},
		},
	}

	out, err := NewMarkdownExporter(nil).Export(conv)
	require.NoError(t, err)
	doc := string(out)

	assert.Equal(t, 1, strings.Count(doc, "## [Assistant]"),
		"assistant records must merge into one block:\n%s", doc)
	assert.Contains(t, doc, "**Considering**")
	assert.Contains(t, doc, "**Tool Call**")
	assert.Contains(t, doc, "tool result")
	assert.Contains(t, doc, "final answer")

	// One separator per turn: user block + merged assistant block.
	assert.Equal(t, 2, strings.Count(doc, "\n---\n"))
}

func TestTurnEndsWhenRoleReturnsToUser(t *testing.T) {
	conv := &model.Conversation{
		Title: "two turns",
		Messages: []model.Message{
			textMsg(model.RoleUser, "q1"),
			textMsg(model.RoleAssistant, "a1"), // no EndOfTurn flag
			textMsg(model.RoleUser, "q2"),
			textMsg(model.RoleAssistant, "a2"),
		},
	}

	out, err := NewMarkdownExporter(nil).Export(conv)
	require.NoError(t, err)
	doc := string(out)

	assert.Equal(t, 2, strings.Count(doc, "## [Assistant]"))
	assert.Equal(t, 2, strings.Count(doc, "## [User]"))
	// a1 must appear before q2.
	assert.Less(t, strings.Index(doc, "a1"), strings.Index(doc, "q2"))
}

func TestEmptyThoughtsProduceNoSeparatorOnlyBlock(t *testing.T) {
	conv := &model.Conversation{
		Title: "quiet",
		Messages: []model.Message{
			textMsg(model.RoleUser, "hello"),
			{
				Role:      model.RoleAssistant,
				Content:   model.ThoughtsContent(),
				Recipient: model.RecipientAll,
				EndOfTurn: true,
			},
		},
	}

	out, err := NewMarkdownExporter(nil).Export(conv)
	require.NoError(t, err)
	doc := string(out)

	assert.NotContains(t, doc, "## [Assistant]")
	assert.Equal(t, 1, strings.Count(doc, "\n---\n"), "doc: %q", doc)
}

func TestToolDirectedMessagesSkippedWithoutBreakingTurn(t *testing.T) {
	conv := &model.Conversation{
		Title: "recipients",
		Messages: []model.Message{
			textMsg(model.RoleUser, "search for me"),
			{
				Role:      model.RoleAssistant,
				Content:   model.CodeContent(`{"q":"x"}`, ""),
				Recipient: "browser", // directed at a tool, not the user
			},
			{
				Role:      model.RoleAssistant,
				Content:   model.TextContent("here is what I found"),
				Recipient: model.RecipientAll,
				EndOfTurn: true,
			},
		},
	}

	out, err := NewMarkdownExporter(nil).Export(conv)
	require.NoError(t, err)
	doc := string(out)

	assert.NotContains(t, doc, "Tool Call")
	assert.Equal(t, 1, strings.Count(doc, "## [Assistant]"))
	assert.Contains(t, doc, "here is what I found")
}

func TestUnknownContentSurvivesAsPlaceholder(t *testing.T) {
	conv := &model.Conversation{
		Title: "odd",
		Messages: []model.Message{
			textMsg(model.RoleUser, "hi"),
			{
				Role:      model.RoleAssistant,
				Content:   model.UnknownContent("tether_quote"),
				Recipient: model.RecipientAll,
				EndOfTurn: true,
			},
		},
	}

	out, err := NewMarkdownExporter(nil).Export(conv)
	require.NoError(t, err)
	assert.Contains(t, string(out), "[Unsupported content type: tether_quote]")
}

func TestNilConversationRejected(t *testing.T) {
	_, err := NewMarkdownExporter(nil).Export(nil)
	assert.Error(t, err)
}

func TestFrontmatterOptIn(t *testing.T) {
	conv := &model.Conversation{
		Title:    "Meta: test",
		Provider: model.ProviderChatGPT,
		Messages: []model.Message{textMsg(model.RoleUser, "x")},
	}

	opts := DefaultOptions()
	opts.IncludeMetadata = true
	out, err := NewMarkdownExporter(opts).Export(conv)
	require.NoError(t, err)

	doc := string(out)
	assert.True(t, strings.HasPrefix(doc, "---\n"), "doc: %q", doc)
	assert.Contains(t, doc, "provider: chatgpt")
	// Title contains a colon, so it must be quoted in YAML.
	assert.Contains(t, doc, `title: "Meta: test"`)
}
