// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/chatexport/internal/model"
	"github.com/jeranaias/chatexport/internal/util"
)

// ErrNotFound is returned when an archive id resolves to nothing.
var ErrNotFound = errors.New("conversation not found in archive")

// =============================================================================
// ARCHIVED CONVERSATION
// =============================================================================

// Entry is one archived conversation plus archive bookkeeping.
type Entry struct {
	// ArchiveID identifies the entry locally; independent of the
	// provider's conversation id, which may repeat across re-fetches.
	ArchiveID string `json:"archive_id"`

	ArchivedAt   time.Time          `json:"archived_at"`
	Conversation model.Conversation `json:"conversation"`
}

// Meta is the listing view of an archived conversation.
type Meta struct {
	ArchiveID    string         `json:"archive_id"`
	Provider     model.Provider `json:"provider"`
	Title        string         `json:"title"`
	ArchivedAt   time.Time      `json:"archived_at"`
	MessageCount int            `json:"message_count"`
	Preview      string         `json:"preview"`
}

// =============================================================================
// ARCHIVE
// =============================================================================

// Archive handles conversation persistence.
type Archive struct {
	// BaseDir is the directory holding one JSON file per conversation.
	// Default: ~/.chatexport/archive/
	BaseDir string

	// MaxEntries limits stored conversations (0 = unlimited). Oldest
	// entries are evicted first.
	MaxEntries int
}

// Open creates an archive rooted at the default location.
func Open() (*Archive, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return OpenDir(filepath.Join(homeDir, ".chatexport", "archive"))
}

// OpenDir creates an archive rooted at a custom directory.
func OpenDir(baseDir string) (*Archive, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}
	return &Archive{BaseDir: baseDir, MaxEntries: 200}, nil
}

// =============================================================================
// SAVE
// =============================================================================

// Save persists a conversation and returns its archive id.
func (a *Archive) Save(conv *model.Conversation) (string, error) {
	entry := Entry{
		ArchiveID:    uuid.NewString(),
		ArchivedAt:   time.Now().UTC(),
		Conversation: *conv,
	}

	data, err := json.MarshalIndent(&entry, "", "  ")
	if err != nil {
		return "", err
	}

	// RELIABILITY: Atomic write with fsync prevents data loss on crash
	if err := util.AtomicWriteFile(a.filePath(entry.ArchiveID), data, 0644); err != nil {
		return "", err
	}

	if a.MaxEntries > 0 {
		a.enforceLimit()
	}

	return entry.ArchiveID, nil
}

// enforceLimit removes oldest entries if over limit.
func (a *Archive) enforceLimit() {
	metas, err := a.List()
	if err != nil || len(metas) <= a.MaxEntries {
		return
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].ArchivedAt.Before(metas[j].ArchivedAt)
	})

	excess := len(metas) - a.MaxEntries
	for i := 0; i < excess; i++ {
		a.Delete(metas[i].ArchiveID)
	}
}

// =============================================================================
// LOAD
// =============================================================================

// Load retrieves an archived conversation by id.
func (a *Archive) Load(id string) (*Entry, error) {
	data, err := os.ReadFile(a.filePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// LoadByIndex loads an entry by its position in the list (0 = most recent).
func (a *Archive) LoadByIndex(index int) (*Entry, error) {
	metas, err := a.List()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(metas) {
		return nil, ErrNotFound
	}
	return a.Load(metas[index].ArchiveID)
}

// =============================================================================
// LIST AND SEARCH
// =============================================================================

// List returns all archived conversations, most recent first.
func (a *Archive) List() ([]Meta, error) {
	entries, err := os.ReadDir(a.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Meta{}, nil
		}
		return nil, err
	}

	var metas []Meta
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}

		entry, err := a.Load(strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			// Skip corrupted files
			continue
		}

		metas = append(metas, Meta{
			ArchiveID:    entry.ArchiveID,
			Provider:     entry.Conversation.Provider,
			Title:        entry.Conversation.GetTitle(),
			ArchivedAt:   entry.ArchivedAt,
			MessageCount: entry.Conversation.MessageCount(),
			Preview:      entry.Conversation.Preview(),
		})
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].ArchivedAt.After(metas[j].ArchivedAt)
	})

	return metas, nil
}

// Search finds entries whose title or preview contains the query,
// case-insensitive.
func (a *Archive) Search(query string) ([]Meta, error) {
	all, err := a.List()
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(query)
	var results []Meta
	for _, meta := range all {
		if strings.Contains(strings.ToLower(meta.Title), query) ||
			strings.Contains(strings.ToLower(meta.Preview), query) {
			results = append(results, meta)
		}
	}
	return results, nil
}

// SearchMessages finds entries where any message body contains the query,
// case-insensitive. Loads every entry, so it is slower than Search.
func (a *Archive) SearchMessages(query string) ([]Meta, error) {
	if query == "" {
		return a.List()
	}

	all, err := a.List()
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(query)
	var results []Meta
	for _, meta := range all {
		entry, err := a.Load(meta.ArchiveID)
		if err != nil {
			continue
		}
		for i := range entry.Conversation.Messages {
			body := entry.Conversation.Messages[i].Content.PlainText()
			if strings.Contains(strings.ToLower(body), query) {
				results = append(results, meta)
				break
			}
		}
	}
	return results, nil
}

// =============================================================================
// DELETE
// =============================================================================

// Delete removes an entry by id.
func (a *Archive) Delete(id string) error {
	if err := os.Remove(a.filePath(id)); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Clear removes every archived conversation.
func (a *Archive) Clear() error {
	entries, err := os.ReadDir(a.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			os.Remove(filepath.Join(a.BaseDir, e.Name()))
		}
	}
	return nil
}

// filePath returns the file path for an archive id.
func (a *Archive) filePath(id string) string {
	return filepath.Join(a.BaseDir, id+".json")
}

// =============================================================================
// LIST FORMATTING
// =============================================================================

// FormatList renders archive metadata as a plain table for CLI output.
func FormatList(metas []Meta) string {
	if len(metas) == 0 {
		return "No archived conversations."
	}

	var sb strings.Builder
	sb.WriteString(util.Pad("ID", 36) + "  " + util.Pad("Provider", 8) + "  " +
		util.Pad("Archived", 16) + "  " + util.Pad("Msgs", 4) + "  Title\n")

	for _, m := range metas {
		sb.WriteString(util.Pad(m.ArchiveID, 36) + "  " +
			util.Pad(string(m.Provider), 8) + "  " +
			util.Pad(m.ArchivedAt.Local().Format("2006-01-02 15:04"), 16) + "  " +
			util.Pad(strconv.Itoa(m.MessageCount), 4) + "  " +
			util.Truncate(m.Title, 48) + "\n")
	}
	return sb.String()
}
