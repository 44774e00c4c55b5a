// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/chatexport/internal/model"
	"github.com/jeranaias/chatexport/internal/render"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports conversations to Markdown format.
type MarkdownExporter struct {
	options *Options
	render  render.Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts, render: render.DefaultOptions()}
}

// Export converts a conversation to Markdown format.
//
// Messages are walked with a cursor. A user message emits its own block. An
// assistant message opens a turn: consecutive assistant and tool records are
// merged under one role header until a record carries EndOfTurn or the role
// returns to user. Messages that render to nothing, and messages not
// addressed to the visible audience, advance the cursor without emitting a
// fragment or a separator.
func (e *MarkdownExporter) Export(conv *model.Conversation) ([]byte, error) {
	if conv == nil {
		return nil, fmt.Errorf("conversation is nil")
	}

	var sb strings.Builder

	if e.options.IncludeMetadata {
		e.writeFrontmatter(&sb, conv)
	}

	sb.WriteString(fmt.Sprintf("# %s\n\n", strings.TrimSpace(conv.GetTitle())))

	i := 0
	for i < len(conv.Messages) {
		msg := &conv.Messages[i]

		if !msg.VisibleToAll() {
			i++
			continue
		}

		if msg.Role == model.RoleUser {
			fragment := render.Fragment(msg, e.render)
			i++
			if fragment == "" {
				continue
			}
			e.writeTurn(&sb, model.RoleUser, []string{fragment})
			continue
		}

		// Assistant (or stray tool) record: merge the whole turn.
		fragments, next := e.collectTurn(conv.Messages, i)
		i = next
		if len(fragments) > 0 {
			e.writeTurn(&sb, model.RoleAssistant, fragments)
		}
	}

	return []byte(sb.String()), nil
}

// collectTurn gathers rendered fragments for one assistant turn starting at
// index start. Returns the fragments and the index of the first message not
// consumed.
func (e *MarkdownExporter) collectTurn(messages []model.Message, start int) ([]string, int) {
	var fragments []string

	i := start
	for i < len(messages) {
		msg := &messages[i]
		if msg.Role == model.RoleUser {
			break
		}

		if msg.VisibleToAll() {
			if fragment := render.Fragment(msg, e.render); fragment != "" {
				fragments = append(fragments, fragment)
			}
		}

		end := msg.EndOfTurn
		i++
		if end {
			break
		}
	}

	return fragments, i
}

// writeTurn emits one role header, the merged content, and the turn
// separator.
func (e *MarkdownExporter) writeTurn(sb *strings.Builder, role model.Role, fragments []string) {
	sb.WriteString(fmt.Sprintf("## %s\n\n", roleHeader(role)))
	sb.WriteString(strings.Join(fragments, "\n\n"))
	sb.WriteString("\n\n---\n\n")
}

// writeFrontmatter emits the optional YAML metadata header.
func (e *MarkdownExporter) writeFrontmatter(sb *strings.Builder, conv *model.Conversation) {
	sb.WriteString("---\n")
	sb.WriteString(fmt.Sprintf("title: %s\n", escapeYAML(conv.GetTitle())))
	if conv.Provider != "" {
		sb.WriteString(fmt.Sprintf("provider: %s\n", conv.Provider))
	}
	if !conv.CreatedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("created: %s\n", conv.CreatedAt.Format(time.RFC3339)))
	}
	if !conv.UpdatedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("updated: %s\n", conv.UpdatedAt.Format(time.RFC3339)))
	}
	sb.WriteString(fmt.Sprintf("messages: %d\n", len(conv.Messages)))
	sb.WriteString(fmt.Sprintf("exported: %s\n", time.Now().Format(time.RFC3339)))
	sb.WriteString("---\n\n")
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// =============================================================================
// FORMATTING HELPERS
// =============================================================================

// roleHeader returns the header label for a turn's role.
func roleHeader(role model.Role) string {
	switch role {
	case model.RoleUser:
		return "[User]"
	case model.RoleAssistant:
		return "[Assistant]"
	case model.RoleTool:
		return "[Tool]"
	default:
		if len(role) > 0 {
			runes := []rune(string(role))
			return strings.ToUpper(string(runes[0])) + string(runes[1:])
		}
		return string(role)
	}
}

// escapeYAML escapes special YAML characters in values.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#|>@`\"'[]{}!%&*\n\r\\") || strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		s = strings.ReplaceAll(s, "\\", "\\\\")
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", "\\n")
		s = strings.ReplaceAll(s, "\r", "\\r")
		return fmt.Sprintf("\"%s\"", s)
	}
	return s
}
