// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/report-qa/pkg/types"
)

// registrySetup opens a store without FTS5 so registry tests run in any
// build.
func registrySetup(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), WithoutFullText())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleDoc(id string, uploaded time.Time) types.Document {
	return types.Document{
		ID:         id,
		Name:       id + ".pdf",
		PDFPath:    filepath.Join("data", "docs", id+"__"+id+".pdf"),
		UploadedAt: uploaded,
		Pages:      12,
		Chunks:     30,
	}
}

func TestOpenCreatesLayout(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, WithoutFullText())
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, filepath.Join(dir, "docs"), s.DocsDir())
	assert.Equal(t, filepath.Join(dir, "index", "report-qa.db"), s.IndexPath())
	assert.DirExists(t, s.DocsDir())
	assert.FileExists(t, s.IndexPath())

	for _, table := range []string{"documents", "chunks"} {
		var count int
		require.NoError(t, s.db.QueryRow(
			`SELECT count(*) FROM sqlite_master WHERE type='table' AND name = ?`, table,
		).Scan(&count))
		assert.Equal(t, 1, count, "table %s", table)
	}
}

func TestUpsertAndGetDocument(t *testing.T) {
	s := registrySetup(t)
	ctx := context.Background()
	uploaded := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

	doc := sampleDoc("d1", uploaded)
	require.NoError(t, s.UpsertDocument(ctx, doc))

	got, err := s.GetDocument(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, doc, got)

	doc.Name = "renamed.pdf"
	doc.Chunks = 31
	require.NoError(t, s.UpsertDocument(ctx, doc))
	got, err = s.GetDocument(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "renamed.pdf", got.Name)
	assert.Equal(t, 31, got.Chunks)

	docs, err := s.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestGetDocumentNotFound(t *testing.T) {
	s := registrySetup(t)
	_, err := s.GetDocument(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListDocumentsNewestFirst(t *testing.T) {
	s := registrySetup(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.UpsertDocument(ctx, sampleDoc("old", base)))
	require.NoError(t, s.UpsertDocument(ctx, sampleDoc("new", base.Add(2*time.Hour))))
	require.NoError(t, s.UpsertDocument(ctx, sampleDoc("mid", base.Add(time.Hour))))
	require.NoError(t, s.UpsertDocument(ctx, sampleDoc("mid-later-insert", base.Add(time.Hour))))

	docs, err := s.ListDocuments(ctx)
	require.NoError(t, err)

	var ids []string
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"new", "mid-later-insert", "mid", "old"}, ids)
}

func TestListDocumentsEmpty(t *testing.T) {
	docs, err := registrySetup(t).ListDocuments(context.Background())
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDeleteDocumentRemovesChunks(t *testing.T) {
	s := registrySetup(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertDocument(ctx, sampleDoc("a", time.Now())))
	require.NoError(t, s.UpsertDocument(ctx, sampleDoc("b", time.Now())))
	require.NoError(t, s.Add(ctx, []types.Chunk{
		{ID: "a1", Text: "alpha", Metadata: types.ChunkMetadata{DocID: "a", DocName: "a.pdf", Page: 1}},
		{ID: "a2", Text: "alpha two", Metadata: types.ChunkMetadata{DocID: "a", DocName: "a.pdf", Page: 2}},
		{ID: "b1", Text: "beta", Metadata: types.ChunkMetadata{DocID: "b", DocName: "b.pdf", Page: 1}},
	}))

	require.NoError(t, s.DeleteDocument(ctx, "a"))

	_, err := s.GetDocument(ctx, "a")
	require.ErrorIs(t, err, ErrNotFound)
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.ErrorIs(t, s.DeleteDocument(ctx, "a"), ErrNotFound)
}

func TestAddReplacesChunkID(t *testing.T) {
	s := registrySetup(t)
	ctx := context.Background()
	c := types.Chunk{ID: "x", Text: "first", Metadata: types.ChunkMetadata{DocID: "d", DocName: "d.pdf", Page: 1}}
	require.NoError(t, s.Add(ctx, []types.Chunk{c}))
	c.Text = "second"
	require.NoError(t, s.Add(ctx, []types.Chunk{c}))
	require.NoError(t, s.Add(ctx, nil))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	removed, err := s.DeleteChunks(ctx, "d")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestQueryWithoutFullText(t *testing.T) {
	_, err := registrySetup(t).Query(context.Background(), "anything", 5, "")
	require.Error(t, err)
}

func TestExport(t *testing.T) {
	s := registrySetup(t)
	ctx := context.Background()
	uploaded := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.UpsertDocument(ctx, sampleDoc("d1", uploaded)))
	require.NoError(t, s.Add(ctx, []types.Chunk{
		{ID: "c1", Text: "one", Metadata: types.ChunkMetadata{DocID: "d1", DocName: "d1.pdf", Page: 1}},
		{ID: "c2", Text: "two", Metadata: types.ChunkMetadata{DocID: "d1", DocName: "d1.pdf", Page: 2}},
	}))

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, s.ExportYAML(ctx, &buf))

		var got []map[string]any
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "d1", got[0]["doc_id"])
		assert.Equal(t, "d1.pdf", got[0]["doc_name"])
		assert.Equal(t, 2, got[0]["indexed_chunks"])
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, s.ExportJSON(ctx, &buf))

		var got []ExportEntry
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "d1", got[0].ID)
		assert.Equal(t, 30, got[0].Chunks)
		assert.Equal(t, 2, got[0].IndexedChunks)
		assert.True(t, uploaded.Equal(got[0].UploadedAt))
	})
}

func TestExportCountsFromChunkCounter(t *testing.T) {
	mem := NewMemoryIndex()
	s, err := Open(t.TempDir(), WithoutFullText(), WithChunkCounter(mem))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	ctx := context.Background()

	require.NoError(t, s.UpsertDocument(ctx, sampleDoc("d1", time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC))))
	require.NoError(t, mem.Add(ctx, []types.Chunk{
		{ID: "c1", Text: "one", Metadata: types.ChunkMetadata{DocID: "d1", Page: 1}},
		{ID: "c2", Text: "two", Metadata: types.ChunkMetadata{DocID: "d1", Page: 2}},
		{ID: "c3", Text: "three", Metadata: types.ChunkMetadata{DocID: "d2", Page: 1}},
	}))

	var buf bytes.Buffer
	require.NoError(t, s.ExportJSON(ctx, &buf))

	var got []ExportEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].IndexedChunks)
}

func TestExportEmptyRegistry(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, registrySetup(t).ExportJSON(context.Background(), &buf))
	assert.JSONEq(t, "[]", buf.String())
}

func TestOpenFailsOnUnwritableDataDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err := Open(file, WithoutFullText())
	require.Error(t, err)
}
