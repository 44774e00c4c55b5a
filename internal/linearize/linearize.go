// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package linearize converts raw conversation shapes into a single
// chronological sequence of visible messages.
//
// Providers hand us one of two shapes: a parent-pointer graph (ChatGPT's
// backend keeps every edit branch; current_node points at the active leaf)
// or a flat, already-ordered list (Copilot history, scraped pages). Both
// come out as the same thing: earliest-to-latest messages with system-role
// records and internal bookkeeping excluded.
package linearize

import (
	"errors"

	"github.com/jeranaias/chatexport/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrMissingRoot indicates no start node could be resolved for the walk.
	ErrMissingRoot = errors.New("conversation graph has no resolvable root")

	// ErrCyclicGraph indicates a parent chain that revisits a node. Walks
	// fail with this instead of looping forever.
	ErrCyclicGraph = errors.New("conversation graph contains a cycle")
)

// =============================================================================
// GRAPH LINEARIZATION
// =============================================================================

// GraphNode is one entry of a parent-pointer conversation mapping. Message
// may be nil for synthetic root nodes some providers emit.
type GraphNode struct {
	Message *model.Message
	Parent  string
}

// FromGraph walks parent pointers backward from currentID and returns the
// visible messages in chronological order.
//
// A referenced parent id that is absent from the mapping terminates the
// chain; a repeated id fails with ErrCyclicGraph. System-role messages and
// internal content kinds are skipped during the walk.
func FromGraph(mapping map[string]GraphNode, currentID string) ([]model.Message, error) {
	if currentID == "" {
		return nil, ErrMissingRoot
	}
	if _, ok := mapping[currentID]; !ok {
		return nil, ErrMissingRoot
	}

	seen := make(map[string]bool, len(mapping))
	var reversed []model.Message

	id := currentID
	for id != "" {
		if seen[id] {
			return nil, ErrCyclicGraph
		}
		seen[id] = true

		node, ok := mapping[id]
		if !ok {
			// Dangling parent reference: treat the chain as terminated.
			break
		}

		if node.Message != nil && Visible(node.Message) {
			reversed = append(reversed, *node.Message)
		}

		id = node.Parent
	}

	// The walk collected leaf-first; flip to chronological order.
	out := make([]model.Message, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		out = append(out, reversed[i])
	}
	return out, nil
}

// =============================================================================
// FLAT-LIST LINEARIZATION
// =============================================================================

// FromList filters an already-ordered message list down to visible user and
// assistant turns, preserving document order.
func FromList(messages []model.Message) []model.Message {
	out := make([]model.Message, 0, len(messages))
	for i := range messages {
		m := &messages[i]
		if m.Role != model.RoleUser && m.Role != model.RoleAssistant {
			continue
		}
		if !Visible(m) {
			continue
		}
		out = append(out, *m)
	}
	return out
}

// =============================================================================
// VISIBILITY
// =============================================================================

// Visible reports whether a message belongs in the linearized transcript.
// System messages and internal bookkeeping carriers do not.
func Visible(m *model.Message) bool {
	if m.Role == model.RoleSystem {
		return false
	}
	return !m.Content.Kind.Internal()
}
