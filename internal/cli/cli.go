// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdExport Command = iota
	CmdList
	CmdSearch
	CmdPreview
	CmdBrowse
	CmdWatch
	CmdConfig
	CmdStatus
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments: the remaining args after the command
// word, pre-parsed into flags and positionals.
type Args struct {
	Parser *ArgParser
	Raw    []string
}

const usageText = `chatexport - export AI chat conversations to Markdown, JSON, or HTML

Chatexport fetches a conversation from a chat provider (or parses a saved
page), linearizes it into a clean transcript, and writes it as a document.

Usage:
  chatexport export <provider> <conversation-id>   Fetch and export
    --format markdown|json|html    Output format (default from config)
    --output DIR                   Output directory
    --raw                          Also write the raw provider payload
    --metadata                     Include YAML frontmatter (markdown)
    --no-timestamp                 Omit filename timestamp
    --no-archive                   Skip the local archive
    --open                         Open the file after export
  chatexport export gemini <saved-page.html>       Export a saved page
  chatexport list                  List archived conversations
    --limit N                      Limit results (default 20)
    --exports                      List the export catalog instead
  chatexport search <query>        Search archive titles and previews
    --messages                     Search message bodies too
    --exports                      Search the export catalog instead
  chatexport preview <archive-id>  Render an archived conversation in the terminal
  chatexport browse                Pick and export from the archive interactively
  chatexport watch [dir]           Watch a directory for saved pages and export them
  chatexport config [show|path|init|set <key> <value>]
  chatexport status, s             Show configuration and credential status
  chatexport version               Show version
  chatexport help                  Show this help

Providers: chatgpt, copilot, gemini (saved pages only)

Environment:
  CHATEXPORT_CHATGPT_TOKEN   ChatGPT session token
  CHATEXPORT_COPILOT_TOKEN   Copilot session token
  CHATEXPORT_OUTPUT_DIR      Default output directory
  CHATEXPORT_FORMAT          Default export format
  NO_COLOR                   Disable colored output
`

// Parse parses os.Args into a command and its arguments.
func Parse() (Command, Args) {
	raw := os.Args[1:]

	if len(raw) == 0 {
		return CmdHelp, Args{Parser: NewArgParser(nil)}
	}

	cmd := strings.ToLower(raw[0])
	rest := raw[1:]
	args := Args{Parser: NewArgParser(rest), Raw: rest}

	switch cmd {
	case "export", "e":
		return CmdExport, args
	case "list", "ls":
		return CmdList, args
	case "search":
		return CmdSearch, args
	case "preview", "show":
		return CmdPreview, args
	case "browse":
		return CmdBrowse, args
	case "watch":
		return CmdWatch, args
	case "config":
		return CmdConfig, args
	case "status", "s":
		return CmdStatus, args
	case "version", "-v", "--version":
		return CmdVersion, args
	case "help", "-h", "--help":
		return CmdHelp, args
	default:
		fmt.Fprintf(os.Stderr, "%s\n\n", ErrorStyle.Render("unknown command: "+cmd))
		return CmdHelp, args
	}
}

// Run dispatches a parsed command. Returns a process exit code.
func Run(cmd Command, args Args) int {
	var err error

	switch cmd {
	case CmdExport:
		err = HandleExport(args)
	case CmdList:
		err = HandleList(args)
	case CmdSearch:
		err = HandleSearch(args)
	case CmdPreview:
		err = HandlePreview(args)
	case CmdBrowse:
		err = HandleBrowse(args)
	case CmdWatch:
		err = HandleWatch(args)
	case CmdConfig:
		err = HandleConfig(args)
	case CmdStatus:
		err = HandleStatus(args)
	case CmdVersion:
		HandleVersion()
	case CmdHelp:
		HandleHelp()
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("error: ")+err.Error())
		return 1
	}
	return 0
}

// HandleVersion prints version information.
func HandleVersion() {
	fmt.Printf("chatexport %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}

// HandleHelp prints usage.
func HandleHelp() {
	fmt.Print(usageText)
}
