// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the chatexport command line interface.
//
// Commands are parsed into a Command value plus an ArgParser; each command
// has a Handle function that does the work and writes human output. Colors
// are disabled automatically for piped output and under NO_COLOR.
package cli
