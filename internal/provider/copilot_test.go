// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatexport/internal/model"
)

const copilotFixture = `{
  "title": "History fixture",
  "results": [
    {"id": "1", "author": "human", "text": "hello there", "createdAt": "2025-03-01T10:00:00Z"},
    {"id": "2", "author": "ai", "text": "hi!\nhow can I help?", "createdAt": "2025-03-01T10:00:05Z"},
    {"id": "3", "author": "system", "text": "telemetry blob"}
  ]
}`

func TestParseCopilotPayload(t *testing.T) {
	conv, err := ParseCopilotPayload([]byte(copilotFixture))
	require.NoError(t, err)

	assert.Equal(t, "History fixture", conv.Title)
	assert.Equal(t, model.ProviderCopilot, conv.Provider)

	// The system record is filtered out of the flat list.
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, model.RoleUser, conv.Messages[0].Role)
	assert.Equal(t, "hello there", conv.Messages[0].Content.PlainText())
	assert.Equal(t, model.RoleAssistant, conv.Messages[1].Role)
	assert.Equal(t, []string{"hi!", "how can I help?"}, conv.Messages[1].Content.Lines)
	assert.False(t, conv.Messages[0].CreatedAt.IsZero())
}

func TestCopilotFetchAgainstTestServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/conversations/abc/history", r.URL.Path)
		_, _ = w.Write([]byte(copilotFixture))
	}))
	defer srv.Close()

	f := NewCopilotFetcher(srv.URL, "tok")
	res, err := f.Fetch(context.Background(), "abc")
	require.NoError(t, err)

	assert.Equal(t, "abc", res.Conversation.ID)
	assert.Len(t, res.Conversation.Messages, 2)
}

func TestParseCopilotPayloadMalformed(t *testing.T) {
	_, err := ParseCopilotPayload([]byte("not json"))
	assert.Error(t, err)
}
