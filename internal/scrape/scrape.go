// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package scrape parses conversations out of saved chat pages.
//
// Saved pages carry the transcript as rendered DOM rather than structured
// JSON. The parser walks known message-container selectors, classifies each
// container as a user or assistant turn, and converts the rich HTML body
// back to Markdown-shaped text. Output is a flat, ordered message list fed
// through the same linearization filter as API payloads.
package scrape

import (
	"bytes"
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"github.com/jeranaias/chatexport/internal/linearize"
	"github.com/jeranaias/chatexport/internal/model"
)

// selectorSet names the DOM hooks for one page flavor. Saved pages from
// different providers use different markup.
type selectorSet struct {
	container string
	userClass string
	title     string
}

// selectorsFor returns the DOM hooks for a provider's saved pages.
func selectorsFor(p model.Provider) selectorSet {
	switch p {
	case model.ProviderGemini:
		return selectorSet{
			container: "user-query, model-response",
			userClass: "user-query",
			title:     "title",
		}
	default:
		// Generic fallback covers pages saved from the share UI.
		return selectorSet{
			container: "[data-message-author-role]",
			userClass: "user",
			title:     "title",
		}
	}
}

// Parse extracts a conversation from a saved page.
func Parse(pageHTML []byte, p model.Provider) (*model.Conversation, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(pageHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	sel := selectorsFor(p)
	conv := markdownConverter()

	var messages []model.Message
	doc.Find(sel.container).Each(func(i int, s *goquery.Selection) {
		role := model.RoleAssistant
		if isUserNode(s, sel) {
			role = model.RoleUser
		}

		body, err := s.Html()
		if err != nil {
			return
		}
		text, err := conv.ConvertString(body)
		if err != nil {
			// Fall back to the bare text when conversion chokes on the
			// markup; losing formatting beats losing the message.
			text = strings.TrimSpace(s.Text())
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}

		messages = append(messages, model.Message{
			ID:        fmt.Sprintf("scraped-%d", i),
			Role:      role,
			Content:   model.TextContent(strings.Split(text, "\n")...),
			Recipient: model.RecipientAll,
		})
	})

	if len(messages) == 0 {
		return nil, fmt.Errorf("no messages found in saved page")
	}

	return &model.Conversation{
		Provider: p,
		Title:    pageTitle(doc, sel),
		Messages: linearize.FromList(messages),
	}, nil
}

// isUserNode classifies a message container.
func isUserNode(s *goquery.Selection, sel selectorSet) bool {
	if goquery.NodeName(s) == sel.userClass {
		return true
	}
	if s.HasClass(sel.userClass) {
		return true
	}
	if v, ok := s.Attr("data-message-author-role"); ok {
		return v == "user"
	}
	return false
}

// pageTitle pulls the document title, stripping the app-name suffix saved
// pages carry.
func pageTitle(doc *goquery.Document, sel selectorSet) string {
	title := strings.TrimSpace(doc.Find(sel.title).First().Text())
	for _, suffix := range []string{" - Gemini", " | Gemini", " - ChatGPT", " - Microsoft Copilot"} {
		title = strings.TrimSuffix(title, suffix)
	}
	return strings.TrimSpace(title)
}

// markdownConverter builds the HTML-to-Markdown converter used for message
// bodies. Fenced code blocks keep their language hint from the class name.
func markdownConverter() *md.Converter {
	conv := md.NewConverter("", true, &md.Options{
		CodeBlockStyle: "fenced",
	})
	return conv
}
