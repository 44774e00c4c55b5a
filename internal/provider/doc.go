// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package provider fetches conversation transcripts from chat application
// backends.
//
// Each provider implements Fetcher: given a conversation id, return the
// parsed transcript plus the raw payload it came from. ChatGPT returns a
// parent-pointer message graph that is linearized from its current node;
// Copilot returns a flat history list; Gemini conversations are parsed
// from saved pages (see the scrape package) because no conversation API is
// exposed.
//
// Session tokens are taken as given from configuration. There is no login
// or refresh flow here: an empty token fails fast with ErrAuthUnavailable.
package provider
