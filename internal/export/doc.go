// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export assembles linearized conversations into documents and
// writes them to disk.
//
// Three formats are supported:
//
//   - Markdown: title heading, role headers, per-turn content with
//     horizontal-rule separators. Consecutive assistant/tool records
//     belonging to one turn are merged under a single header.
//   - JSON: a faithful echo of the conversation structure (or of the raw
//     provider payload when one is available).
//   - HTML: the Markdown document converted with goldmark and wrapped in a
//     small themed shell.
//
// Filenames are derived from the conversation title with filesystem-unsafe
// characters stripped and a timestamp appended for collision avoidance.
package export
