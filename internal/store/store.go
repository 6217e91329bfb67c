// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists the document registry and the chunk index in
// SQLite. Chunk search uses an FTS5 table kept in sync by triggers, which
// requires building with the sqlite_fts5 tag. A Store opened without full
// text still serves the registry; pair it with MemoryIndex.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const (
	docsDir  = "docs"
	indexDir = "index"
	dbFile   = "report-qa.db"
)

// ErrNotFound is returned when a document id is not registered.
var ErrNotFound = errors.New("not found")

// Store manages the SQLite database under dataDir/index.
type Store struct {
	db       *sql.DB
	dataDir  string
	fullText bool
	counter  ChunkCounter
}

// ChunkCounter reports how many chunks each document has indexed.
type ChunkCounter interface {
	ChunkCounts(ctx context.Context) (map[string]int, error)
}

// Option configures Open.
type Option func(*Store)

// WithoutFullText skips the FTS5 table. Query then fails; registry and
// chunk bookkeeping still work.
func WithoutFullText() Option {
	return func(s *Store) { s.fullText = false }
}

// WithChunkCounter makes exports take per-document chunk counts from c,
// for when chunks live in an index outside the database.
func WithChunkCounter(c ChunkCounter) Option {
	return func(s *Store) { s.counter = c }
}

// Open creates dataDir/docs and dataDir/index when missing and opens or
// creates the database with its schema.
func Open(dataDir string, opts ...Option) (*Store, error) {
	s := &Store{dataDir: dataDir, fullText: true}
	for _, o := range opts {
		o(s)
	}

	for _, dir := range []string{s.DocsDir(), filepath.Join(dataDir, indexDir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", s.IndexPath()+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s.db = db

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DocsDir is where uploaded PDFs are kept.
func (s *Store) DocsDir() string {
	return filepath.Join(s.dataDir, docsDir)
}

// IndexPath is the database file.
func (s *Store) IndexPath() string {
	return filepath.Join(s.dataDir, indexDir, dbFile)
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			pdf_path TEXT NOT NULL,
			uploaded_at INTEGER NOT NULL,
			pages INTEGER NOT NULL DEFAULT 0,
			chunks INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS chunks (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			doc_id TEXT NOT NULL,
			doc_name TEXT NOT NULL,
			page INTEGER NOT NULL,
			text TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_doc_id ON chunks(doc_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	if !s.fullText {
		return nil
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='chunks_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		return nil
	}

	ftsStatements := []string{
		`CREATE VIRTUAL TABLE chunks_fts USING fts5(text, content=chunks, content_rowid=rowid)`,
		`CREATE TRIGGER chunks_ai AFTER INSERT ON chunks BEGIN
			INSERT INTO chunks_fts(rowid, text) VALUES (new.rowid, new.text);
		END`,
		`CREATE TRIGGER chunks_ad AFTER DELETE ON chunks BEGIN
			INSERT INTO chunks_fts(chunks_fts, rowid, text) VALUES('delete', old.rowid, old.text);
		END`,
		`CREATE TRIGGER chunks_au AFTER UPDATE ON chunks BEGIN
			INSERT INTO chunks_fts(chunks_fts, rowid, text) VALUES('delete', old.rowid, old.text);
			INSERT INTO chunks_fts(rowid, text) VALUES (new.rowid, new.text);
		END`,
		// Chunks written before full text was enabled.
		`INSERT INTO chunks_fts(chunks_fts) VALUES('rebuild')`,
	}
	for _, stmt := range ftsStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS infrastructure (build with -tags sqlite_fts5): %w", err)
		}
	}
	return nil
}
