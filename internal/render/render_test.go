// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jeranaias/chatexport/internal/model"
)

func TestPlainTextJoinsLines(t *testing.T) {
	m := &model.Message{Content: model.TextContent("one", "two", "three")}
	assert.Equal(t, "one\ntwo\nthree", Fragment(m, DefaultOptions()))
}

func TestCodeWithLanguage(t *testing.T) {
	m := &model.Message{Content: model.CodeContent("print(\"hi\")", "python")}
	got := Fragment(m, DefaultOptions())
	assert.True(t, strings.HasPrefix(got, "```python\n"), "got: %s", got)
	assert.True(t, strings.HasSuffix(got, "\n```"))
	assert.Contains(t, got, "print(\"hi\")")
}

func TestJSONCodeBecomesToolCall(t *testing.T) {
	m := &model.Message{Content: model.CodeContent(`{"foo":1}`, "")}
	got := Fragment(m, DefaultOptions())
	assert.Contains(t, got, "**Tool Call**")
	assert.Contains(t, got, "```json\n")
	assert.Contains(t, got, `{"foo":1}`)
}

func TestJSONCheckRequiresBothBraces(t *testing.T) {
	m := &model.Message{Content: model.CodeContent("{ not closed", "")}
	got := Fragment(m, DefaultOptions())
	assert.NotContains(t, got, "Tool Call")
}

func TestEmptyThoughtsRenderNothing(t *testing.T) {
	m := &model.Message{Content: model.ThoughtsContent()}
	assert.Equal(t, "", Fragment(m, DefaultOptions()))
}

func TestThoughtsDisclosure(t *testing.T) {
	m := &model.Message{Content: model.ThoughtsContent(
		model.Thought{Summary: "Plan", Body: "step one\nstep two"},
	)}

	got := Fragment(m, DefaultOptions())
	assert.Contains(t, got, "<details>")
	assert.Contains(t, got, "**Plan**")
	assert.Contains(t, got, "> step one\n> step two")
	assert.Contains(t, got, "</details>")

	inline := Fragment(m, Options{Disclosure: false})
	assert.NotContains(t, inline, "<details>")
	assert.Contains(t, inline, "> step one")
}

func TestMultimodalParts(t *testing.T) {
	m := &model.Message{Content: model.Content{
		Kind: model.KindMultimodal,
		Parts: []model.Part{
			{Kind: model.PartText, Text: "look at this"},
			{Kind: model.PartImage, ImageURL: "https://img/x.png", AltText: "diagram"},
			{Kind: model.PartCode, Code: "SELECT 1", Language: "sql"},
			{Kind: "audio", RawType: "audio_transcription"},
		},
	}}

	got := Fragment(m, DefaultOptions())
	assert.Contains(t, got, "look at this")
	assert.Contains(t, got, "![diagram](https://img/x.png)")
	assert.Contains(t, got, "```sql\nSELECT 1\n```")
	assert.Contains(t, got, "[Unsupported content: audio_transcription]")
}

func TestRecapRendersEmpty(t *testing.T) {
	m := &model.Message{Content: model.Content{Kind: model.KindRecap}}
	assert.Equal(t, "", Fragment(m, DefaultOptions()))
}

func TestUnknownKindNeverPanics(t *testing.T) {
	m := &model.Message{Content: model.UnknownContent("sonic_webpage")}
	got := Fragment(m, DefaultOptions())
	assert.Equal(t, "[Unsupported content type: sonic_webpage]", got)
}

// Rendering must be deterministic: the same message always yields the same
// fragment.
func TestFragmentDeterministic(t *testing.T) {
	messages := []*model.Message{
		{Content: model.TextContent("a", "b")},
		{Content: model.CodeContent(`{"x":true}`, "")},
		{Content: model.ThoughtsContent(model.Thought{Summary: "s", Body: "b"})},
		{Content: model.UnknownContent("z")},
	}

	for _, m := range messages {
		first := Fragment(m, DefaultOptions())
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, Fragment(m, DefaultOptions()))
		}
	}
}

func TestFenceInfoSanitized(t *testing.T) {
	m := &model.Message{Content: model.CodeContent("x", "py`thon extra")}
	got := Fragment(m, DefaultOptions())
	assert.True(t, strings.HasPrefix(got, "```python\n"), "got: %s", got)
}
