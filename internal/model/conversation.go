// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"
)

// Provider identifies the chat application a conversation came from.
type Provider string

const (
	ProviderChatGPT Provider = "chatgpt"
	ProviderCopilot Provider = "copilot"
	ProviderGemini  Provider = "gemini"
)

// KnownProviders lists the providers this build can fetch or parse.
var KnownProviders = []Provider{ProviderChatGPT, ProviderCopilot, ProviderGemini}

// ParseProvider maps a user-supplied name to a Provider.
func ParseProvider(name string) (Provider, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "chatgpt", "openai":
		return ProviderChatGPT, true
	case "copilot", "bing":
		return ProviderCopilot, true
	case "gemini", "bard":
		return ProviderGemini, true
	default:
		return "", false
	}
}

// Conversation is one linearized chat transcript. Produced once per export
// and discarded after rendering; nothing persists it except the optional
// archive.
type Conversation struct {
	ID        string    `json:"id"`
	Provider  Provider  `json:"provider"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`

	// Messages are ordered earliest to latest and contain no system-role
	// records; the linearizer enforces both.
	Messages []Message `json:"messages"`
}

// GetTitle returns the conversation title, falling back to the first user
// message when the provider supplied none.
func (c *Conversation) GetTitle() string {
	if strings.TrimSpace(c.Title) != "" {
		return c.Title
	}
	for i := range c.Messages {
		if c.Messages[i].Role == RoleUser {
			if p := c.Messages[i].Preview(50); p != "" {
				return p
			}
		}
	}
	return "Untitled conversation"
}

// MessageCount returns the number of messages in the conversation.
func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// Preview returns a short preview taken from the first user message.
func (c *Conversation) Preview() string {
	for i := range c.Messages {
		if c.Messages[i].Role == RoleUser {
			return c.Messages[i].Preview(80)
		}
	}
	return ""
}
