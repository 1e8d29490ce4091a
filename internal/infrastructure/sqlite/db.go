// Package sqlite persists registration drafts so an interrupted flow can
// be resumed from another session.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/seaswell/rollcall/internal/log"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS drafts (
	id TEXT PRIMARY KEY,
	server_url TEXT NOT NULL DEFAULT '',
	program_name TEXT NOT NULL DEFAULT '',
	snapshot TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_drafts_updated_at ON drafts(updated_at DESC);
`

// DB wraps the sqlite handle and hands out repositories.
type DB struct {
	db *sql.DB
}

// NewDB opens (creating if needed) the draft database at path. The
// parent directory is created with 0700 since drafts can hold personal
// data.
func NewDB(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(schemaDDL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	log.Debug(log.CatDB, "Draft database ready", "path", path)
	return &DB{db: db}, nil
}

// DraftRepository returns the repository for registration drafts.
func (d *DB) DraftRepository() *DraftRepository {
	return NewDraftRepository(d.db)
}

// Close closes the underlying handle.
func (d *DB) Close() error {
	return d.db.Close()
}
