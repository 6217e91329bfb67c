// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/report-qa/pkg/types"
)

// errNoFullText is returned by Query on a Store opened WithoutFullText.
var errNoFullText = errors.New("full-text index disabled")

// Add stores chunks in one transaction. Re-adding a chunk id replaces it.
func (s *Store) Add(ctx context.Context, chunks []types.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO chunks (id, doc_id, doc_name, page, text) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		if _, err := stmt.ExecContext(ctx, c.ID, c.Metadata.DocID, c.Metadata.DocName, c.Metadata.Page, c.Text); err != nil {
			return fmt.Errorf("inserting chunk %s: %w", c.ID, err)
		}
	}
	return tx.Commit()
}

// Query returns up to n chunks matching any word of text, best first,
// restricted to docID when it is non-empty. Distance is the FTS5 bm25
// rank, where lower is better. Text without word tokens matches nothing.
func (s *Store) Query(ctx context.Context, text string, n int, docID string) ([]types.Match, error) {
	if !s.fullText {
		return nil, errNoFullText
	}
	tokens := Tokens(text)
	if len(tokens) == 0 || n <= 0 {
		return nil, nil
	}

	var (
		qb   strings.Builder
		args = []any{matchExpr(tokens)}
	)
	qb.WriteString(
		`SELECT c.text, c.doc_id, c.doc_name, c.page, chunks_fts.rank
		FROM chunks_fts
		JOIN chunks c ON c.rowid = chunks_fts.rowid
		WHERE chunks_fts MATCH ?`)
	if docID != "" {
		qb.WriteString(` AND c.doc_id = ?`)
		args = append(args, docID)
	}
	qb.WriteString(` ORDER BY chunks_fts.rank LIMIT ?`)
	args = append(args, n)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunk index: %w", err)
	}
	defer rows.Close()

	var out []types.Match
	for rows.Next() {
		var (
			m    types.Match
			rank float64
		)
		if err := rows.Scan(&m.Text, &m.Metadata.DocID, &m.Metadata.DocName, &m.Metadata.Page, &rank); err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		m.Distance = &rank
		out = append(out, m)
	}
	return out, rows.Err()
}

// Count returns the number of stored chunks.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM chunks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

// DeleteChunks removes every chunk of docID and reports how many went.
func (s *Store) DeleteChunks(ctx context.Context, docID string) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE doc_id = ?`, docID)
	if err != nil {
		return 0, fmt.Errorf("deleting chunks of %s: %w", docID, err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// chunkCounts returns the number of stored chunks per document id.
func (s *Store) chunkCounts(ctx context.Context) (map[string]int, error) {
	if s.counter != nil {
		return s.counter.ChunkCounts(ctx)
	}
	rows, err := s.db.QueryContext(ctx, `SELECT doc_id, count(*) FROM chunks GROUP BY doc_id`)
	if err != nil {
		return nil, fmt.Errorf("counting chunks per document: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			id string
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scanning chunk count: %w", err)
		}
		counts[id] = n
	}
	return counts, rows.Err()
}
