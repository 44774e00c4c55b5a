// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage archives fetched conversations as JSON files.
//
// The archive is optional: an export can run fetch-to-file without touching
// it. When enabled it keeps one pretty-printed JSON file per conversation
// under the archive directory, written atomically, so a transcript can be
// re-exported later without another backend fetch.
package storage
