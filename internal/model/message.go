// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "User"
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "System"
	case RoleTool:
		return "Tool"
	default:
		return string(r)
	}
}

// =============================================================================
// CONTENT KINDS
// =============================================================================

// ContentKind tags how a message payload should be interpreted and rendered.
type ContentKind string

const (
	// KindText is plain text, stored as ordered lines.
	KindText ContentKind = "text"

	// KindCode is a code payload with an optional language tag.
	KindCode ContentKind = "code"

	// KindThoughts is a sequence of reasoning items (summary + body).
	KindThoughts ContentKind = "thoughts"

	// KindMultimodal is an ordered sequence of mixed parts (text, image, code).
	KindMultimodal ContentKind = "multimodal_text"

	// KindRecap is internal conversation-recap noise. Renders as nothing.
	KindRecap ContentKind = "thinking_recap"

	// KindUserContext carries editable user context injected by the host
	// application. Never user-visible; the linearizer excludes it.
	KindUserContext ContentKind = "user_editable_context"

	// KindUnknown marks a content type this build does not recognize.
	// The renderer degrades it to a visible placeholder instead of failing.
	KindUnknown ContentKind = "unknown"
)

// Internal returns true for bookkeeping kinds that must never reach the
// rendered document.
func (k ContentKind) Internal() bool {
	return k == KindUserContext
}

// =============================================================================
// CONTENT PAYLOAD
// =============================================================================

// Thought is one reasoning item: a short summary and a longer body.
type Thought struct {
	Summary string `json:"summary"`
	Body    string `json:"content"`
}

// PartKind tags one part of a multimodal payload.
type PartKind string

const (
	PartText  PartKind = "text"
	PartImage PartKind = "image"
	PartCode  PartKind = "code"
)

// Part is one element of a multimodal payload.
type Part struct {
	Kind     PartKind `json:"kind"`
	Text     string   `json:"text,omitempty"`
	ImageURL string   `json:"image_url,omitempty"`
	AltText  string   `json:"alt_text,omitempty"`
	Code     string   `json:"code,omitempty"`
	Language string   `json:"language,omitempty"`

	// RawType holds the provider's tag for parts of no known kind.
	RawType string `json:"raw_type,omitempty"`
}

// Content is the tagged payload of one message. Only the fields implied by
// Kind are meaningful; the rest stay zero. A closed set of kinds with a
// single struct keeps JSON round-trips trivial while the render package
// switches exhaustively on Kind.
type Content struct {
	Kind ContentKind `json:"kind"`

	// KindText
	Lines []string `json:"lines,omitempty"`

	// KindCode
	Code     string `json:"code,omitempty"`
	Language string `json:"language,omitempty"`

	// KindThoughts
	Thoughts []Thought `json:"thoughts,omitempty"`

	// KindMultimodal
	Parts []Part `json:"parts,omitempty"`

	// KindUnknown: the provider's original content-type tag.
	RawType string `json:"raw_type,omitempty"`
}

// TextContent constructs a plain-text payload from pre-split lines.
func TextContent(lines ...string) Content {
	return Content{Kind: KindText, Lines: lines}
}

// CodeContent constructs a code payload.
func CodeContent(code, language string) Content {
	return Content{Kind: KindCode, Code: code, Language: language}
}

// ThoughtsContent constructs a reasoning payload.
func ThoughtsContent(items ...Thought) Content {
	return Content{Kind: KindThoughts, Thoughts: items}
}

// UnknownContent constructs a payload for an unrecognized provider tag.
func UnknownContent(rawType string) Content {
	return Content{Kind: KindUnknown, RawType: rawType}
}

// PlainText joins the payload into a single string for previews and search.
// Non-text kinds contribute their best-effort textual form.
func (c Content) PlainText() string {
	switch c.Kind {
	case KindText:
		return strings.Join(c.Lines, "\n")
	case KindCode:
		return c.Code
	case KindThoughts:
		var sb strings.Builder
		for i, t := range c.Thoughts {
			if i > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(t.Summary)
		}
		return sb.String()
	case KindMultimodal:
		var sb strings.Builder
		for _, p := range c.Parts {
			if p.Kind == PartText && p.Text != "" {
				if sb.Len() > 0 {
					sb.WriteString("\n")
				}
				sb.WriteString(p.Text)
			}
		}
		return sb.String()
	default:
		return ""
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// RecipientAll marks a message addressed to the visible audience. Messages
// directed at tools (function-call plumbing) carry the tool name instead.
const RecipientAll = "all"

// Message represents a single message record in a conversation.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   Content   `json:"content"`
	CreatedAt time.Time `json:"created_at,omitempty"`

	// EndOfTurn is set on the record that closes an assistant turn.
	EndOfTurn bool `json:"end_of_turn,omitempty"`

	// ParentID references the previous record in parent-pointer graphs.
	// Empty for root messages and for flat-list sources.
	ParentID string `json:"parent_id,omitempty"`

	// Recipient is RecipientAll for user-visible messages, or a tool name
	// for messages routed to function-call machinery.
	Recipient string `json:"recipient,omitempty"`
}

// VisibleToAll reports whether the message is addressed to the visible
// audience. An unset recipient counts as visible.
func (m *Message) VisibleToAll() bool {
	return m.Recipient == "" || m.Recipient == RecipientAll
}

// Preview returns a truncated single-line preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	text := strings.ReplaceAll(m.Content.PlainText(), "\n", " ")
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// IsEmpty returns true if the message carries no renderable text. Unknown
// kinds are never empty: they render a visible placeholder.
func (m *Message) IsEmpty() bool {
	return m.Content.PlainText() == "" && m.Content.Kind != KindUnknown
}
