// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package index keeps a catalog of completed exports in SQLite.
//
// Every successful export is recorded: provider, conversation id, title,
// format, output path, timestamp. The catalog answers "have I already
// exported this" and backs the search and list commands without rereading
// output files. Full-text search over titles uses FTS5.
package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/chatexport/internal/model"
)

// SchemaVersion tracks the database schema version for migrations.
const SchemaVersion = 1

var (
	ErrNotFound      = errors.New("export record not found")
	ErrDatabaseError = errors.New("database error")
)

const schema = `
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;

-- Exports table: one row per completed export
CREATE TABLE IF NOT EXISTS exports (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    provider TEXT NOT NULL,
    conversation_id TEXT NOT NULL,
    title TEXT NOT NULL,
    format TEXT NOT NULL,
    path TEXT NOT NULL,
    exported_at INTEGER NOT NULL  -- Unix timestamp
);

CREATE INDEX IF NOT EXISTS idx_exports_conversation ON exports(provider, conversation_id);
CREATE INDEX IF NOT EXISTS idx_exports_time ON exports(exported_at);

-- Full-text search over titles
CREATE VIRTUAL TABLE IF NOT EXISTS exports_fts USING fts5(
    title,
    content='exports',
    content_rowid='id',
    tokenize='porter unicode61'
);

CREATE TRIGGER IF NOT EXISTS exports_ai AFTER INSERT ON exports BEGIN
    INSERT INTO exports_fts(rowid, title) VALUES (new.id, new.title);
END;

CREATE TRIGGER IF NOT EXISTS exports_ad AFTER DELETE ON exports BEGIN
    DELETE FROM exports_fts WHERE rowid = old.id;
END;
`

const initMetadata = `
INSERT OR IGNORE INTO metadata (key, value) VALUES ('schema_version', '1');
INSERT OR IGNORE INTO metadata (key, value) VALUES ('created_at', strftime('%s', 'now'));
`

// =============================================================================
// EXPORT CATALOG
// =============================================================================

// Record is one catalog row.
type Record struct {
	ID             int64
	Provider       model.Provider
	ConversationID string
	Title          string
	Format         string
	Path           string
	ExportedAt     time.Time
}

// Catalog records completed exports.
type Catalog struct {
	db *sql.DB
}

// DefaultPath returns the catalog location under the user config dir.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".chatexport", "exports.db"), nil
}

// Open opens (creating if needed) the catalog at the given path.
func Open(dbPath string) (*Catalog, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: schema init: %v", ErrDatabaseError, err)
	}
	if _, err := db.Exec(initMetadata); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: metadata init: %v", ErrDatabaseError, err)
	}

	return &Catalog{db: db}, nil
}

// Close releases the underlying database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Add records a completed export and returns its row id.
func (c *Catalog) Add(ctx context.Context, rec *Record) (int64, error) {
	if rec.ExportedAt.IsZero() {
		rec.ExportedAt = time.Now()
	}

	res, err := c.db.ExecContext(ctx,
		`INSERT INTO exports (provider, conversation_id, title, format, path, exported_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		string(rec.Provider), rec.ConversationID, rec.Title, rec.Format, rec.Path,
		rec.ExportedAt.Unix())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return res.LastInsertId()
}

// Recent returns the newest export records, most recent first.
func (c *Catalog) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, provider, conversation_id, title, format, path, exported_at
		 FROM exports ORDER BY exported_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Search runs a full-text query over export titles.
func (c *Catalog) Search(ctx context.Context, query string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := c.db.QueryContext(ctx,
		`SELECT e.id, e.provider, e.conversation_id, e.title, e.format, e.path, e.exported_at
		 FROM exports_fts f
		 JOIN exports e ON e.id = f.rowid
		 WHERE exports_fts MATCH ?
		 ORDER BY rank LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// LastExport returns the newest record for one conversation, or ErrNotFound.
func (c *Catalog) LastExport(ctx context.Context, p model.Provider, conversationID string) (*Record, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT id, provider, conversation_id, title, format, path, exported_at
		 FROM exports WHERE provider = ? AND conversation_id = ?
		 ORDER BY exported_at DESC, id DESC LIMIT 1`,
		string(p), conversationID)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return rec, nil
}

// Count returns the number of recorded exports.
func (c *Catalog) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM exports`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var rec Record
	var provider string
	var ts int64
	if err := row.Scan(&rec.ID, &provider, &rec.ConversationID, &rec.Title,
		&rec.Format, &rec.Path, &ts); err != nil {
		return nil, err
	}
	rec.Provider = model.Provider(provider)
	rec.ExportedAt = time.Unix(ts, 0)
	return &rec, nil
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}
