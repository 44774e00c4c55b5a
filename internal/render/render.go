// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render maps one message's typed content payload to a Markdown
// fragment.
//
// Rendering is a pure function of the message: same input, same fragment,
// no side effects, and no failure path. Unknown content types degrade to a
// visible placeholder so nothing is silently dropped from an export.
package render

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/jeranaias/chatexport/internal/model"
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures fragment rendering.
type Options struct {
	// Disclosure wraps reasoning blocks in a collapsible <details> element.
	// Enabled for Markdown/HTML targets that support it; disabled renders
	// the same content inline.
	Disclosure bool

	// DetectLanguage guesses a fence language for unlabeled code payloads.
	DetectLanguage bool
}

// DefaultOptions returns the options used for Markdown exports.
func DefaultOptions() Options {
	return Options{Disclosure: true, DetectLanguage: true}
}

// =============================================================================
// FRAGMENT RENDERING
// =============================================================================

// Fragment renders a single message to its Markdown fragment. An empty
// string means the message contributes nothing to the document.
func Fragment(m *model.Message, opts Options) string {
	switch m.Content.Kind {
	case model.KindText:
		return strings.Join(m.Content.Lines, "\n")

	case model.KindCode:
		return codeFragment(m.Content.Code, m.Content.Language, opts)

	case model.KindThoughts:
		return thoughtsFragment(m.Content.Thoughts, opts)

	case model.KindMultimodal:
		return multimodalFragment(m.Content.Parts, opts)

	case model.KindRecap, model.KindUserContext:
		// Internal noise: dropped, contributes no block.
		return ""

	default:
		tag := m.Content.RawType
		if tag == "" {
			tag = string(m.Content.Kind)
		}
		return fmt.Sprintf("[Unsupported content type: %s]", tag)
	}
}

// =============================================================================
// CODE
// =============================================================================

// codeFragment fences a code payload. A payload that looks like a JSON
// object is labeled as a tool call and fenced as json, matching what the
// providers actually put in code-typed records for function invocations.
func codeFragment(code, language string, opts Options) string {
	code = strings.TrimRight(code, "\n")
	label := ""

	if looksLikeJSONObject(code) && language == "" {
		label = "**Tool Call**\n\n"
		language = "json"
	}

	if language == "" && opts.DetectLanguage {
		language = detectLanguage(code)
	}

	var sb strings.Builder
	sb.WriteString(label)
	sb.WriteString("```")
	sb.WriteString(sanitizeFenceInfo(language))
	sb.WriteString("\n")
	sb.WriteString(code)
	sb.WriteString("\n```")
	return sb.String()
}

// looksLikeJSONObject is a cheap structural check, not a parse: the
// providers tag tool invocations as code whose text is one JSON object.
func looksLikeJSONObject(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}")
}

// detectLanguage asks chroma to analyse unlabeled code. Best effort; an
// ambiguous sample stays unlabeled rather than guessing wrong.
func detectLanguage(code string) string {
	lexer := lexers.Analyse(code)
	if lexer == nil {
		return ""
	}
	name := strings.ToLower(lexer.Config().Name)
	if name == "plaintext" || name == "text" {
		return ""
	}
	return name
}

// sanitizeFenceInfo strips characters that would break out of a fence info
// string.
func sanitizeFenceInfo(language string) string {
	language = strings.TrimSpace(language)
	language = strings.ReplaceAll(language, "`", "")
	if i := strings.IndexAny(language, " \t\n"); i >= 0 {
		language = language[:i]
	}
	return language
}

// =============================================================================
// THOUGHTS
// =============================================================================

// thoughtsFragment renders reasoning items: a bold summary line, then the
// body as a blockquote. An empty item list renders as nothing at all so the
// assembler never emits a separator-only block for it.
func thoughtsFragment(items []model.Thought, opts Options) string {
	if len(items) == 0 {
		return ""
	}

	var body strings.Builder
	for i, item := range items {
		if i > 0 {
			body.WriteString("\n\n")
		}
		if s := strings.TrimSpace(item.Summary); s != "" {
			body.WriteString("**")
			body.WriteString(s)
			body.WriteString("**\n\n")
		}
		for j, line := range strings.Split(item.Body, "\n") {
			if j > 0 {
				body.WriteString("\n")
			}
			body.WriteString("> ")
			body.WriteString(line)
		}
	}

	if !opts.Disclosure {
		return body.String()
	}

	var sb strings.Builder
	sb.WriteString("<details>\n<summary>Thoughts</summary>\n\n")
	sb.WriteString(body.String())
	sb.WriteString("\n\n</details>")
	return sb.String()
}

// =============================================================================
// MULTIMODAL
// =============================================================================

// multimodalFragment renders mixed parts in sequence. Text passes through,
// images become placeholders, embedded code is fenced, and anything else
// becomes an explicit marker instead of vanishing.
func multimodalFragment(parts []model.Part, opts Options) string {
	rendered := make([]string, 0, len(parts))
	for _, p := range parts {
		switch p.Kind {
		case model.PartText:
			if p.Text != "" {
				rendered = append(rendered, p.Text)
			}
		case model.PartImage:
			alt := p.AltText
			if alt == "" {
				alt = "image"
			}
			if p.ImageURL != "" {
				rendered = append(rendered, fmt.Sprintf("![%s](%s)", alt, p.ImageURL))
			} else {
				rendered = append(rendered, fmt.Sprintf("[Image: %s]", alt))
			}
		case model.PartCode:
			rendered = append(rendered, codeFragment(p.Code, p.Language, opts))
		default:
			tag := p.RawType
			if tag == "" {
				tag = string(p.Kind)
			}
			rendered = append(rendered, fmt.Sprintf("[Unsupported content: %s]", tag))
		}
	}
	return strings.Join(rendered, "\n\n")
}
