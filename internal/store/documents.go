// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pdiddy/report-qa/pkg/types"
)

// UpsertDocument registers doc, replacing any record with the same id.
func (s *Store) UpsertDocument(ctx context.Context, doc types.Document) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, name, pdf_path, uploaded_at, pages, chunks)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name=excluded.name, pdf_path=excluded.pdf_path, uploaded_at=excluded.uploaded_at,
			pages=excluded.pages, chunks=excluded.chunks`,
		doc.ID, doc.Name, doc.PDFPath, doc.UploadedAt.Unix(), doc.Pages, doc.Chunks,
	)
	if err != nil {
		return fmt.Errorf("upserting document %s: %w", doc.ID, err)
	}
	return nil
}

// GetDocument returns the record for id or ErrNotFound.
func (s *Store) GetDocument(ctx context.Context, id string) (types.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, pdf_path, uploaded_at, pages, chunks FROM documents WHERE id = ?`, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Document{}, fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return types.Document{}, fmt.Errorf("looking up document %s: %w", id, err)
	}
	return doc, nil
}

// ListDocuments returns every record, newest upload first.
func (s *Store) ListDocuments(ctx context.Context) ([]types.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, pdf_path, uploaded_at, pages, chunks FROM documents
		 ORDER BY uploaded_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []types.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// DeleteDocument removes the record for id and all of its chunks.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting document %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE doc_id = ?`, id); err != nil {
		return fmt.Errorf("deleting chunks of %s: %w", id, err)
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(sc scanner) (types.Document, error) {
	var (
		doc      types.Document
		uploaded int64
	)
	if err := sc.Scan(&doc.ID, &doc.Name, &doc.PDFPath, &uploaded, &doc.Pages, &doc.Chunks); err != nil {
		return types.Document{}, err
	}
	doc.UploadedAt = time.Unix(uploaded, 0).UTC()
	return doc, nil
}
