// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package linearize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatexport/internal/model"
)

func msg(id string, role model.Role, text string) *model.Message {
	return &model.Message{ID: id, Role: role, Content: model.TextContent(text)}
}

func TestFromGraphChronologicalOrder(t *testing.T) {
	mapping := map[string]GraphNode{
		"root": {Message: nil, Parent: ""},
		"a":    {Message: msg("a", model.RoleUser, "first"), Parent: "root"},
		"b":    {Message: msg("b", model.RoleAssistant, "second"), Parent: "a"},
		"c":    {Message: msg("c", model.RoleUser, "third"), Parent: "b"},
	}

	out, err := FromGraph(mapping, "c")
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "a", out[0].ID)
	assert.Equal(t, "b", out[1].ID)
	assert.Equal(t, "c", out[2].ID)
}

func TestFromGraphExcludesSystemAndInternal(t *testing.T) {
	mapping := map[string]GraphNode{
		"sys": {Message: msg("sys", model.RoleSystem, "system prompt"), Parent: ""},
		"ctx": {
			Message: &model.Message{
				ID:      "ctx",
				Role:    model.RoleUser,
				Content: model.Content{Kind: model.KindUserContext},
			},
			Parent: "sys",
		},
		"q": {Message: msg("q", model.RoleUser, "hi"), Parent: "ctx"},
		"r": {Message: msg("r", model.RoleAssistant, "hello"), Parent: "q"},
	}

	out, err := FromGraph(mapping, "r")
	require.NoError(t, err)
	require.Len(t, out, 2)
	for _, m := range out {
		assert.NotEqual(t, model.RoleSystem, m.Role)
		assert.NotEqual(t, model.KindUserContext, m.Content.Kind)
	}
}

func TestFromGraphMissingRoot(t *testing.T) {
	_, err := FromGraph(map[string]GraphNode{}, "")
	assert.ErrorIs(t, err, ErrMissingRoot)

	_, err = FromGraph(map[string]GraphNode{"a": {}}, "nope")
	assert.ErrorIs(t, err, ErrMissingRoot)
}

func TestFromGraphDanglingParentTerminatesChain(t *testing.T) {
	mapping := map[string]GraphNode{
		"b": {Message: msg("b", model.RoleUser, "only"), Parent: "gone"},
	}

	out, err := FromGraph(mapping, "b")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "b", out[0].ID)
}

func TestFromGraphCycleDetected(t *testing.T) {
	mapping := map[string]GraphNode{
		"a": {Message: msg("a", model.RoleUser, "a"), Parent: "b"},
		"b": {Message: msg("b", model.RoleAssistant, "b"), Parent: "a"},
	}

	_, err := FromGraph(mapping, "a")
	assert.ErrorIs(t, err, ErrCyclicGraph)
}

func TestFromListFiltersRolesInOrder(t *testing.T) {
	in := []model.Message{
		*msg("1", model.RoleSystem, "sys"),
		*msg("2", model.RoleUser, "q1"),
		*msg("3", model.RoleAssistant, "a1"),
		*msg("4", model.RoleTool, "tool output"),
		*msg("5", model.RoleUser, "q2"),
	}

	out := FromList(in)
	require.Len(t, out, 3)
	assert.Equal(t, []string{"2", "3", "5"}, []string{out[0].ID, out[1].ID, out[2].ID})
}

func TestFromListEmpty(t *testing.T) {
	assert.Empty(t, FromList(nil))
	assert.Empty(t, FromList([]model.Message{*msg("s", model.RoleSystem, "x")}))
}
