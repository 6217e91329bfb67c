// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chunk

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/report-qa/internal/clean"
	"github.com/pdiddy/report-qa/internal/filter"
	"github.com/pdiddy/report-qa/pkg/types"
)

// fakeClassifier flags segments by marker words.
type fakeClassifier struct{}

func (fakeClassifier) IsBoilerplate(text string) bool         { return strings.Contains(text, "LEGALESE") }
func (fakeClassifier) LooksLikeChartOrTable(text string) bool { return strings.Contains(text, "AXIS") }

func newTestChunker(size, overlap int, c Classifier, opts ...Option) *Chunker {
	lex := filter.DefaultLexicon()
	return New(NewSplitter(size, overlap), clean.New(lex.FooterMarkers, lex.FooterPrefixes), c, opts...)
}

func sequentialIDs() Option {
	n := 0
	return WithIDFunc(func() string {
		n++
		return fmt.Sprintf("c%d", n)
	})
}

func TestChunkKeepsPagesSeparate(t *testing.T) {
	pages := []types.Page{
		{Number: 1, Text: strings.Repeat("Alpha page sentence about credit markets. ", 20)},
		{Number: 2, Text: strings.Repeat("Beta page sentence about equity markets. ", 20)},
		{Number: 3, Text: strings.Repeat("Gamma page sentence about real assets. ", 20)},
	}
	c := newTestChunker(200, 40, fakeClassifier{})

	res := c.Chunk(pages)
	require.NotEmpty(t, res.Chunks)

	byPage := map[int]string{1: "Alpha", 2: "Beta", 3: "Gamma"}
	seen := map[int]bool{}
	for _, ch := range res.Chunks {
		word := byPage[ch.Metadata.Page]
		require.NotEmpty(t, word, "unexpected page %d", ch.Metadata.Page)
		for p, other := range byPage {
			if p != ch.Metadata.Page {
				assert.NotContains(t, ch.Text, other, "chunk on page %d holds text of page %d", ch.Metadata.Page, p)
			}
		}
		assert.Contains(t, pages[ch.Metadata.Page-1].Text, ch.Text)
		seen[ch.Metadata.Page] = true
	}
	assert.Len(t, seen, 3)
}

func TestChunkSkipsEmptyPagesAndNoise(t *testing.T) {
	body := "Distributions recovered in the second half as exit markets reopened for sponsors."
	pages := []types.Page{
		{Number: 1, Text: body},
		{Number: 2, Text: "   \n  "},
		{Number: 3, Text: "Capital at risk. For institutional investors only."},
		{Number: 4, Text: "LEGALESE that should never be indexed by the pipeline at all."},
		{Number: 5, Text: "AXIS labels from a chart that slipped through extraction."},
	}
	c := newTestChunker(1800, 250, fakeClassifier{}, sequentialIDs())

	res := c.Chunk(pages)

	require.Len(t, res.Chunks, 1)
	assert.Equal(t, types.Chunk{ID: "c1", Text: body, Metadata: types.ChunkMetadata{Page: 1}}, res.Chunks[0])
	assert.Equal(t, 2, res.EmptyPages)
	assert.Equal(t, 1, res.Boilerplate)
	assert.Equal(t, 1, res.Charts)
}

func TestChunkAssignsUniqueIDs(t *testing.T) {
	text := strings.Repeat("Infrastructure debt spreads stayed wide relative to corporates. ", 40)
	pages := []types.Page{{Number: 1, Text: text}, {Number: 2, Text: text + " Second page."}}
	c := newTestChunker(300, 50, fakeClassifier{})

	res := c.Chunk(pages)
	require.Greater(t, len(res.Chunks), 2)

	ids := map[string]bool{}
	for _, ch := range res.Chunks {
		_, err := uuid.Parse(ch.ID)
		require.NoError(t, err)
		assert.False(t, ids[ch.ID], "duplicate id %s", ch.ID)
		ids[ch.ID] = true
	}
}

func TestChunkWithDefaultFilter(t *testing.T) {
	prose := strings.Repeat("Managers expect fundraising to stabilise as distributions improve and allocators rebalance. ", 3)
	pages := []types.Page{
		{Number: 1, Text: prose + "\nRegional Outlook Series"},
		{Number: 2, Text: "Short.\nRegional Outlook Series"},
		{Number: 3, Text: "Regional Outlook Series"},
		{Number: 4, Text: prose + "\nRegional Outlook Series"},
	}
	c := newTestChunker(1800, 250, filter.Default())

	res := c.Chunk(pages)

	require.Len(t, res.Chunks, 2)
	for _, ch := range res.Chunks {
		assert.NotContains(t, ch.Text, "Regional Outlook Series")
	}
	assert.Equal(t, 1, res.Chunks[0].Metadata.Page)
	assert.Equal(t, 4, res.Chunks[1].Metadata.Page)
	assert.Equal(t, 1, res.EmptyPages)
	assert.Equal(t, 1, res.Boilerplate)
}
