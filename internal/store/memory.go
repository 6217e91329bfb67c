// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"sort"
	"sync"

	"github.com/pdiddy/report-qa/pkg/types"
)

// MemoryIndex is an in-process chunk index with the same contract as
// the SQLite index. Distance is 1 minus the fraction of distinct query
// tokens the chunk contains, so 0 is a full match.
type MemoryIndex struct {
	mu     sync.RWMutex
	order  []string
	chunks map[string]memChunk
}

type memChunk struct {
	chunk  types.Chunk
	tokens map[string]struct{}
}

// NewMemoryIndex returns an empty index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{chunks: make(map[string]memChunk)}
}

// Add stores chunks. Re-adding a chunk id replaces it in place.
func (m *MemoryIndex) Add(_ context.Context, chunks []types.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range chunks {
		toks := Tokens(c.Text)
		set := make(map[string]struct{}, len(toks))
		for _, t := range toks {
			set[t] = struct{}{}
		}
		if _, ok := m.chunks[c.ID]; !ok {
			m.order = append(m.order, c.ID)
		}
		m.chunks[c.ID] = memChunk{chunk: c, tokens: set}
	}
	return nil
}

// Query implements the index lookup. Chunks sharing no token with text
// are not returned; ties keep insertion order.
func (m *MemoryIndex) Query(_ context.Context, text string, n int, docID string) ([]types.Match, error) {
	query := Tokens(text)
	if len(query) == 0 || n <= 0 {
		return nil, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []types.Match
	for _, id := range m.order {
		c := m.chunks[id]
		if docID != "" && c.chunk.Metadata.DocID != docID {
			continue
		}
		shared := 0
		for _, t := range query {
			if _, ok := c.tokens[t]; ok {
				shared++
			}
		}
		if shared == 0 {
			continue
		}
		d := 1 - float64(shared)/float64(len(query))
		out = append(out, types.Match{Text: c.chunk.Text, Metadata: c.chunk.Metadata, Distance: &d})
	}

	sort.SliceStable(out, func(i, j int) bool { return *out[i].Distance < *out[j].Distance })
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// Count returns the number of stored chunks.
func (m *MemoryIndex) Count(context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks), nil
}

// ChunkCounts returns the number of stored chunks per document id.
func (m *MemoryIndex) ChunkCounts(context.Context) (map[string]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int)
	for _, c := range m.chunks {
		counts[c.chunk.Metadata.DocID]++
	}
	return counts, nil
}

// DeleteChunks removes every chunk of docID.
func (m *MemoryIndex) DeleteChunks(_ context.Context, docID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.order[:0]
	removed := 0
	for _, id := range m.order {
		if m.chunks[id].chunk.Metadata.DocID == docID {
			delete(m.chunks, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	m.order = kept
	return removed, nil
}
