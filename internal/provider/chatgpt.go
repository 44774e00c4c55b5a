// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/jeranaias/chatexport/internal/linearize"
	"github.com/jeranaias/chatexport/internal/model"
)

// DefaultChatGPTBaseURL is the conversation backend used when the config
// does not override it.
const DefaultChatGPTBaseURL = "https://chatgpt.com/backend-api"

// =============================================================================
// CHATGPT FETCHER
// =============================================================================

// ChatGPTFetcher retrieves conversations from the ChatGPT backend API. The
// payload is a parent-pointer mapping of every message node (including edit
// branches); current_node selects the active leaf.
type ChatGPTFetcher struct {
	client *client
}

// NewChatGPTFetcher creates a fetcher using the given session token.
func NewChatGPTFetcher(baseURL, token string) *ChatGPTFetcher {
	if baseURL == "" {
		baseURL = DefaultChatGPTBaseURL
	}
	return &ChatGPTFetcher{
		client: newClient(model.ProviderChatGPT, baseURL, token),
	}
}

// Provider returns model.ProviderChatGPT.
func (f *ChatGPTFetcher) Provider() model.Provider {
	return model.ProviderChatGPT
}

// TokenFingerprint exposes the masked credential for status display.
func (f *ChatGPTFetcher) TokenFingerprint() string {
	return f.client.TokenFingerprint()
}

// Fetch retrieves one conversation and linearizes its active branch.
func (f *ChatGPTFetcher) Fetch(ctx context.Context, conversationID string) (*Result, error) {
	if conversationID == "" {
		return nil, fmt.Errorf("conversation id is empty")
	}

	raw, err := f.client.getJSON(ctx, "/conversation/"+url.PathEscape(conversationID))
	if err != nil {
		return nil, err
	}

	conv, err := ParseChatGPTPayload(raw)
	if err != nil {
		return nil, err
	}
	conv.ID = conversationID

	return &Result{Conversation: conv, Raw: raw}, nil
}

// =============================================================================
// PAYLOAD PARSING
// =============================================================================

// Wire types for the backend-api conversation payload. Only the fields we
// read are declared; the rest of the payload is carried through as Raw.
type chatgptPayload struct {
	Title       string                 `json:"title"`
	CreateTime  float64                `json:"create_time"`
	UpdateTime  float64                `json:"update_time"`
	Mapping     map[string]chatgptNode `json:"mapping"`
	CurrentNode string                 `json:"current_node"`
}

type chatgptNode struct {
	ID      string          `json:"id"`
	Message *chatgptMessage `json:"message"`
	Parent  string          `json:"parent"`
}

type chatgptMessage struct {
	ID     string `json:"id"`
	Author struct {
		Role string `json:"role"`
	} `json:"author"`
	CreateTime float64        `json:"create_time"`
	Content    chatgptContent `json:"content"`
	EndTurn    bool           `json:"end_turn"`
	Recipient  string         `json:"recipient"`
}

type chatgptContent struct {
	ContentType string `json:"content_type"`

	// content_type "text" and "multimodal_text"; elements are strings for
	// text parts and objects for asset pointers.
	Parts []json.RawMessage `json:"parts"`

	// content_type "code"
	Text     string `json:"text"`
	Language string `json:"language"`

	// content_type "thoughts"
	Thoughts []model.Thought `json:"thoughts"`
}

// ParseChatGPTPayload converts a backend-api conversation payload into a
// linearized Conversation.
func ParseChatGPTPayload(raw []byte) (*model.Conversation, error) {
	var payload chatgptPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse conversation payload: %w", err)
	}

	mapping := make(map[string]linearize.GraphNode, len(payload.Mapping))
	for id, node := range payload.Mapping {
		gn := linearize.GraphNode{Parent: node.Parent}
		if node.Message != nil {
			msg := convertChatGPTMessage(node.Message)
			gn.Message = &msg
		}
		mapping[id] = gn
	}

	messages, err := linearize.FromGraph(mapping, payload.CurrentNode)
	if err != nil {
		return nil, err
	}

	return &model.Conversation{
		Provider:  model.ProviderChatGPT,
		Title:     payload.Title,
		CreatedAt: unixFloat(payload.CreateTime),
		UpdatedAt: unixFloat(payload.UpdateTime),
		Messages:  messages,
	}, nil
}

// convertChatGPTMessage maps one wire message to the internal record.
func convertChatGPTMessage(m *chatgptMessage) model.Message {
	return model.Message{
		ID:        m.ID,
		Role:      model.Role(m.Author.Role),
		Content:   convertChatGPTContent(m.Content),
		CreatedAt: unixFloat(m.CreateTime),
		EndOfTurn: m.EndTurn,
		Recipient: m.Recipient,
	}
}

// convertChatGPTContent dispatches on content_type. Unrecognized types are
// preserved as KindUnknown so the export degrades visibly instead of
// dropping content.
func convertChatGPTContent(c chatgptContent) model.Content {
	switch c.ContentType {
	case "text":
		return model.TextContent(textParts(c.Parts)...)

	case "code":
		return model.CodeContent(c.Text, c.Language)

	case "thoughts":
		return model.ThoughtsContent(c.Thoughts...)

	case "multimodal_text":
		return model.Content{Kind: model.KindMultimodal, Parts: multimodalParts(c.Parts)}

	case string(model.KindRecap), string(model.KindUserContext):
		return model.Content{Kind: model.ContentKind(c.ContentType)}

	default:
		return model.UnknownContent(c.ContentType)
	}
}

// textParts flattens string parts into lines, splitting embedded newlines.
func textParts(parts []json.RawMessage) []string {
	var lines []string
	for _, p := range parts {
		var s string
		if err := json.Unmarshal(p, &s); err != nil {
			continue
		}
		lines = append(lines, strings.Split(s, "\n")...)
	}
	return lines
}

// chatgptPart is the object form of a multimodal part.
type chatgptPart struct {
	ContentType  string `json:"content_type"`
	AssetPointer string `json:"asset_pointer"`
	Text         string `json:"text"`
	AltText      string `json:"alt_text"`
	Language     string `json:"language"`
}

// multimodalParts converts the mixed string-or-object parts array.
func multimodalParts(parts []json.RawMessage) []model.Part {
	out := make([]model.Part, 0, len(parts))
	for _, p := range parts {
		var s string
		if err := json.Unmarshal(p, &s); err == nil {
			out = append(out, model.Part{Kind: model.PartText, Text: s})
			continue
		}

		var obj chatgptPart
		if err := json.Unmarshal(p, &obj); err != nil {
			continue
		}

		switch obj.ContentType {
		case "image_asset_pointer":
			out = append(out, model.Part{
				Kind:     model.PartImage,
				ImageURL: obj.AssetPointer,
				AltText:  obj.AltText,
			})
		case "text":
			out = append(out, model.Part{Kind: model.PartText, Text: obj.Text})
		case "code":
			out = append(out, model.Part{
				Kind:     model.PartCode,
				Code:     obj.Text,
				Language: obj.Language,
			})
		default:
			out = append(out, model.Part{RawType: obj.ContentType})
		}
	}
	return out
}

// unixFloat converts the backend's fractional unix timestamps.
func unixFloat(ts float64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	sec, frac := math.Modf(ts)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}
