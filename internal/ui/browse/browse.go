// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package browse provides the interactive archive picker.
//
// A Bubble Tea list over the archived conversations: arrow keys to move,
// enter to export the selection with the configured defaults, q to quit.
package browse

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatexport/internal/storage"
)

// =============================================================================
// LIST ITEMS
// =============================================================================

// item adapts one archive entry to the bubbles list.
type item struct {
	meta storage.Meta
}

func (i item) Title() string {
	return i.meta.Title
}

func (i item) Description() string {
	return fmt.Sprintf("%s · %d messages · %s",
		i.meta.Provider,
		i.meta.MessageCount,
		i.meta.ArchivedAt.Local().Format("2006-01-02 15:04"))
}

func (i item) FilterValue() string {
	return i.meta.Title + " " + i.meta.Preview
}

// =============================================================================
// MODEL
// =============================================================================

// ExportFunc is called with the selected archive id when the user confirms.
type ExportFunc func(archiveID string) (path string, err error)

// Model is the Bubble Tea model for the archive browser.
type Model struct {
	list     list.Model
	export   ExportFunc
	status   string
	quitting bool
}

var statusStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("42")).
	PaddingLeft(2)

var errorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("196")).
	PaddingLeft(2)

// New builds a browser over the given archive entries.
func New(metas []storage.Meta, export ExportFunc) Model {
	items := make([]list.Item, len(metas))
	for i, m := range metas {
		items[i] = item{meta: m}
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Archived conversations"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)

	return Model{list: l, export: export}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// exportDoneMsg carries the result of an export back into the update loop.
type exportDoneMsg struct {
	path string
	err  error
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Leave room for the status line.
		m.list.SetSize(msg.Width, msg.Height-2)
		return m, nil

	case tea.KeyMsg:
		// Keys pass through to the list while filtering.
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			selected, ok := m.list.SelectedItem().(item)
			if !ok {
				return m, nil
			}
			m.status = "Exporting " + selected.meta.Title + "..."
			return m, m.exportCmd(selected.meta.ArchiveID)
		}

	case exportDoneMsg:
		if msg.err != nil {
			m.status = errorStyle.Render("export failed: " + msg.err.Error())
		} else {
			m.status = statusStyle.Render("Exported: " + msg.path)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// exportCmd runs the export off the update loop.
func (m Model) exportCmd(archiveID string) tea.Cmd {
	return func() tea.Msg {
		path, err := m.export(archiveID)
		return exportDoneMsg{path: path, err: err}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	view := m.list.View()
	if m.status != "" {
		view += "\n" + m.status
	}
	return view
}

// Run starts the browser and blocks until the user quits.
func Run(metas []storage.Meta, export ExportFunc) error {
	program := tea.NewProgram(New(metas, export), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
