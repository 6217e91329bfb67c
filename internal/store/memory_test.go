// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/report-qa/pkg/types"
)

func chunk(id, docID string, page int, text string) types.Chunk {
	return types.Chunk{ID: id, Text: text, Metadata: types.ChunkMetadata{DocID: docID, DocName: docID + ".pdf", Page: page}}
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"private", "credit", "2025", "outlook", "café"},
		Tokens("Private credit: 2025 outlook, private CREDIT café!"))
	assert.Empty(t, Tokens("?? -- !!"))
	assert.Equal(t, `"near" OR "or"`, matchExpr([]string{"near", "or"}))
}

func TestMemoryIndexQuery(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()
	require.NoError(t, idx.Add(ctx, []types.Chunk{
		chunk("1", "a", 1, "Private credit spreads widened"),
		chunk("2", "a", 2, "Real estate valuations fell"),
		chunk("3", "b", 1, "Private equity exits slowed; credit tight"),
		chunk("4", "b", 2, "Nothing relevant here"),
	}))

	got, err := idx.Query(ctx, "private credit spreads", 10, "")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1", chunkTextID(got[0]))
	assert.InDelta(t, 0.0, *got[0].Distance, 1e-9)
	assert.InDelta(t, 1-2.0/3.0, *got[1].Distance, 1e-9)

	scoped, err := idx.Query(ctx, "private credit spreads", 10, "b")
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "b", scoped[0].Metadata.DocID)

	limited, err := idx.Query(ctx, "private", 1, "")
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	none, err := idx.Query(ctx, "...", 10, "")
	require.NoError(t, err)
	assert.Empty(t, none)

	unknown, err := idx.Query(ctx, "private", 10, "zzz")
	require.NoError(t, err)
	assert.Empty(t, unknown)
}

// chunkTextID maps fixture texts back to their ids.
func chunkTextID(m types.Match) string {
	switch m.Text {
	case "Private credit spreads widened":
		return "1"
	case "Private equity exits slowed; credit tight":
		return "3"
	}
	return "?"
}

func TestMemoryIndexCountAndDelete(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()
	require.NoError(t, idx.Add(ctx, []types.Chunk{
		chunk("1", "a", 1, "alpha"),
		chunk("2", "b", 1, "beta"),
		chunk("3", "a", 2, "alpha again"),
	}))
	require.NoError(t, idx.Add(ctx, []types.Chunk{chunk("1", "a", 1, "alpha replaced")}))

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	removed, err := idx.DeleteChunks(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	n, _ = idx.Count(ctx)
	assert.Equal(t, 1, n)
	got, err := idx.Query(ctx, "alpha beta", 10, "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].Metadata.DocID)
}

func TestMemoryIndexConcurrentUse(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			doc := fmt.Sprintf("doc%d", i)
			_ = idx.Add(ctx, []types.Chunk{chunk(doc+"-1", doc, 1, "shared words here")})
			_, _ = idx.Query(ctx, "shared", 5, "")
		}(i)
	}
	wg.Wait()

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
}
