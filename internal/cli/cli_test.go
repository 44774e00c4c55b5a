// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatexport/internal/config"
)

func TestArgParserFlagFormats(t *testing.T) {
	p := NewArgParser([]string{"abc123", "--format", "json", "--output=/tmp/out", "--raw", "--open=false"})

	assert.Equal(t, "abc123", p.Positional(0))
	assert.Equal(t, "json", p.Flag("format"))
	assert.Equal(t, "/tmp/out", p.Flag("output"))
	assert.True(t, p.BoolFlag("raw"))
	assert.False(t, p.BoolFlag("open"))
	assert.True(t, p.HasFlag("open"))
	assert.False(t, p.HasFlag("missing"))
}

func TestArgParserDefaults(t *testing.T) {
	p := NewArgParser([]string{"--limit", "50"})

	assert.Equal(t, 50, p.FlagIntOrDefault("limit", 20))
	assert.Equal(t, 20, p.FlagIntOrDefault("absent", 20))
	assert.Equal(t, "md", p.FlagOrDefault("format", "md"))
	assert.Equal(t, "", p.Positional(0))
}

func TestArgParserJoinPositional(t *testing.T) {
	p := NewArgParser([]string{"error", "in", "production", "--messages"})

	assert.Equal(t, 3, p.PositionalCount())
	assert.Equal(t, "error in production", p.JoinPositionalFrom(0))
	assert.Equal(t, "in production", p.JoinPositionalFrom(1))
	assert.Empty(t, p.PositionalFrom(9))
}

func TestParseCommands(t *testing.T) {
	tests := []struct {
		args []string
		want Command
	}{
		{[]string{"export", "chatgpt", "id"}, CmdExport},
		{[]string{"e", "chatgpt", "id"}, CmdExport},
		{[]string{"list"}, CmdList},
		{[]string{"ls"}, CmdList},
		{[]string{"search", "query"}, CmdSearch},
		{[]string{"preview", "id"}, CmdPreview},
		{[]string{"browse"}, CmdBrowse},
		{[]string{"watch", "/tmp"}, CmdWatch},
		{[]string{"config", "show"}, CmdConfig},
		{[]string{"status"}, CmdStatus},
		{[]string{"s"}, CmdStatus},
		{[]string{"version"}, CmdVersion},
		{[]string{"help"}, CmdHelp},
		{[]string{}, CmdHelp},
		{[]string{"bogus"}, CmdHelp},
	}

	for _, tt := range tests {
		os.Args = append([]string{"chatexport"}, tt.args...)
		cmd, _ := Parse()
		assert.Equal(t, tt.want, cmd, "args %v", tt.args)
	}
}

func TestParseKeepsCommandArgs(t *testing.T) {
	os.Args = []string{"chatexport", "export", "chatgpt", "conv-1", "--format", "html"}
	cmd, args := Parse()

	require.Equal(t, CmdExport, cmd)
	assert.Equal(t, "chatgpt", args.Parser.Positional(0))
	assert.Equal(t, "conv-1", args.Parser.Positional(1))
	assert.Equal(t, "html", args.Parser.Flag("format"))
}

func TestExportRequiresProviderAndID(t *testing.T) {
	err := HandleExport(Args{Parser: NewArgParser(nil)})
	assert.Error(t, err)

	err = HandleExport(Args{Parser: NewArgParser([]string{"notaprovider", "id"})})
	assert.ErrorContains(t, err, "unknown provider")
}

func TestExportOptionsMergeFlagsOverConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Export.OutputDir = "/from/config"
	cfg.Export.Timestamp = true

	args := Args{Parser: NewArgParser([]string{"--output", "/from/flag", "--no-timestamp", "--metadata"})}
	opts := exportOptions(cfg, args)

	assert.Equal(t, "/from/flag", opts.OutputDir)
	assert.False(t, opts.Timestamp)
	assert.True(t, opts.IncludeMetadata)
}

func TestIsSavedPage(t *testing.T) {
	assert.True(t, isSavedPage("/tmp/chat.html"))
	assert.True(t, isSavedPage("/tmp/Chat.HTM"))
	assert.True(t, isSavedPage("/tmp/page.mhtml"))
	assert.False(t, isSavedPage("/tmp/notes.txt"))
	assert.False(t, isSavedPage("/tmp/payload.json"))
}
