// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// A Conversation is the transient, in-memory representation of one chat
// transcript fetched from a provider (ChatGPT, Copilot, Gemini) or parsed
// from a saved page. Messages carry a content-type-tagged payload; the
// render package maps each payload kind to a Markdown fragment.
//
// Values in this package are treated as immutable once fetched: the
// linearizer reorders and filters them, the renderer reads them, nothing
// mutates them.
package model
