// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jeranaias/chatexport/internal/linearize"
	"github.com/jeranaias/chatexport/internal/model"
)

// DefaultCopilotBaseURL is the Copilot history backend used when the config
// does not override it.
const DefaultCopilotBaseURL = "https://copilot.microsoft.com/c/api"

// =============================================================================
// COPILOT FETCHER
// =============================================================================

// CopilotFetcher retrieves conversations from the Copilot history API. The
// payload is a flat, already-ordered list; no graph walk is needed.
type CopilotFetcher struct {
	client *client
}

// NewCopilotFetcher creates a fetcher using the given session token.
func NewCopilotFetcher(baseURL, token string) *CopilotFetcher {
	if baseURL == "" {
		baseURL = DefaultCopilotBaseURL
	}
	return &CopilotFetcher{
		client: newClient(model.ProviderCopilot, baseURL, token),
	}
}

// Provider returns model.ProviderCopilot.
func (f *CopilotFetcher) Provider() model.Provider {
	return model.ProviderCopilot
}

// TokenFingerprint exposes the masked credential for status display.
func (f *CopilotFetcher) TokenFingerprint() string {
	return f.client.TokenFingerprint()
}

// Fetch retrieves one conversation's history list.
func (f *CopilotFetcher) Fetch(ctx context.Context, conversationID string) (*Result, error) {
	if conversationID == "" {
		return nil, fmt.Errorf("conversation id is empty")
	}

	raw, err := f.client.getJSON(ctx, "/conversations/"+url.PathEscape(conversationID)+"/history")
	if err != nil {
		return nil, err
	}

	conv, err := ParseCopilotPayload(raw)
	if err != nil {
		return nil, err
	}
	conv.ID = conversationID

	return &Result{Conversation: conv, Raw: raw}, nil
}

// =============================================================================
// PAYLOAD PARSING
// =============================================================================

type copilotPayload struct {
	Title   string           `json:"title"`
	Results []copilotMessage `json:"results"`
}

type copilotMessage struct {
	ID        string `json:"id"`
	Author    string `json:"author"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
}

// ParseCopilotPayload converts a Copilot history payload into a linearized
// Conversation. Authors are "human" or "ai"; anything else is dropped by the
// flat-list filter.
func ParseCopilotPayload(raw []byte) (*model.Conversation, error) {
	var payload copilotPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse history payload: %w", err)
	}

	messages := make([]model.Message, 0, len(payload.Results))
	for _, r := range payload.Results {
		messages = append(messages, model.Message{
			ID:        r.ID,
			Role:      copilotRole(r.Author),
			Content:   model.TextContent(strings.Split(r.Text, "\n")...),
			CreatedAt: parseRFC3339(r.CreatedAt),
			Recipient: model.RecipientAll,
		})
	}

	return &model.Conversation{
		Provider: model.ProviderCopilot,
		Title:    payload.Title,
		Messages: linearize.FromList(messages),
	}, nil
}

func copilotRole(author string) model.Role {
	switch strings.ToLower(author) {
	case "human", "user":
		return model.RoleUser
	case "ai", "bot", "assistant":
		return model.RoleAssistant
	default:
		return model.Role(author)
	}
}

func parseRFC3339(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
