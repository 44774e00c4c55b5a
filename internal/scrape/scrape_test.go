// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatexport/internal/model"
)

const geminiPage = `<!DOCTYPE html>
<html>
<head><title>Sorting help - Gemini</title></head>
<body>
  <main>
    <user-query><p>How do I sort a slice in Go?</p></user-query>
    <model-response>
      <p>Use the <code>slices</code> package:</p>
      <pre><code class="language-go">slices.Sort(xs)</code></pre>
    </model-response>
    <user-query><p>thanks</p></user-query>
  </main>
</body>
</html>`

func TestParseGeminiSavedPage(t *testing.T) {
	conv, err := Parse([]byte(geminiPage), model.ProviderGemini)
	require.NoError(t, err)

	assert.Equal(t, "Sorting help", conv.Title)
	assert.Equal(t, model.ProviderGemini, conv.Provider)
	require.Len(t, conv.Messages, 3)

	assert.Equal(t, model.RoleUser, conv.Messages[0].Role)
	assert.Contains(t, conv.Messages[0].Content.PlainText(), "sort a slice")

	// Rich markup converts back to Markdown, fences included.
	reply := conv.Messages[1].Content.PlainText()
	assert.Equal(t, model.RoleAssistant, conv.Messages[1].Role)
	assert.Contains(t, reply, "`slices`")
	assert.Contains(t, reply, "```")
	assert.Contains(t, reply, "slices.Sort(xs)")

	assert.Equal(t, model.RoleUser, conv.Messages[2].Role)
}

func TestParseGenericAuthorRolePage(t *testing.T) {
	page := `<html><head><title>Shared chat</title></head><body>
	  <div data-message-author-role="user"><p>q</p></div>
	  <div data-message-author-role="assistant"><p>a</p></div>
	</body></html>`

	conv, err := Parse([]byte(page), model.Provider("other"))
	require.NoError(t, err)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, model.RoleUser, conv.Messages[0].Role)
	assert.Equal(t, model.RoleAssistant, conv.Messages[1].Role)
}

func TestParseEmptyPageFails(t *testing.T) {
	_, err := Parse([]byte("<html><body><p>nothing here</p></body></html>"), model.ProviderGemini)
	assert.Error(t, err)
}
