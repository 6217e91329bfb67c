// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retrieve queries the chunk index for a question, spreads the
// budget across the requested documents, ranks by distance and keeps at
// most one passage per page per document.
package retrieve

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/report-qa/pkg/types"
)

const (
	// SnippetLen is the display length of a source snippet.
	SnippetLen = 240

	// missingDistance ranks unscored matches after every scored one.
	missingDistance = 999999.0

	minPerDoc        = 4
	perDocHeadroom   = 2
	minGlobal        = 30
	globalMultiplier = 4
)

// Index is the lookup capability the Retriever needs. docID restricts
// the query to one document when non-empty.
type Index interface {
	Query(ctx context.Context, text string, n int, docID string) ([]types.Match, error)
}

// Scope restricts retrieval to documents. DocIDs wins over DocID; an
// empty Scope searches the whole index.
type Scope struct {
	DocID  string
	DocIDs []string
}

// Targets returns the document ids to query, or nil for an unscoped query.
func (s Scope) Targets() []string {
	if len(s.DocIDs) > 0 {
		return s.DocIDs
	}
	if s.DocID != "" {
		return []string{s.DocID}
	}
	return nil
}

// Retriever runs scoped and unscoped queries against an Index.
type Retriever struct {
	index Index
}

// New returns a Retriever over index.
func New(index Index) *Retriever {
	return &Retriever{index: index}
}

// PerDocBudget is the number of results requested from each of n
// documents when k sources are wanted overall.
func PerDocBudget(k, n int) int {
	if n <= 0 {
		return 0
	}
	return max(minPerDoc, k/n+perDocHeadroom)
}

// GlobalBudget is the number of raw candidates requested for an
// unscoped query, leaving headroom for page deduplication.
func GlobalBudget(k int) int {
	return max(minGlobal, k*globalMultiplier)
}

// Retrieve returns at most k sources for query, best first, with no two
// sources sharing a (document, page) pair. Unknown or empty scopes
// produce an empty result, not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int, scope Scope) ([]types.Source, error) {
	if k <= 0 {
		return nil, nil
	}

	var matches []types.Match
	if targets := scope.Targets(); len(targets) > 0 {
		perDoc := PerDocBudget(k, len(targets))
		for _, id := range targets {
			m, err := r.index.Query(ctx, query, perDoc, id)
			if err != nil {
				return nil, fmt.Errorf("querying document %s: %w", id, err)
			}
			matches = append(matches, m...)
		}
	} else {
		m, err := r.index.Query(ctx, query, GlobalBudget(k), "")
		if err != nil {
			return nil, fmt.Errorf("querying index: %w", err)
		}
		matches = m
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return distanceKey(matches[i].Distance) < distanceKey(matches[j].Distance)
	})

	type pageKey struct {
		docID string
		page  int
	}
	seen := make(map[pageKey]struct{})
	var out []types.Source
	for _, m := range matches {
		key := pageKey{m.Metadata.DocID, m.Metadata.Page}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		text := strings.TrimSpace(m.Text)
		out = append(out, types.Source{
			Text:     text,
			Snippet:  Snippet(text),
			Metadata: m.Metadata,
			Distance: m.Distance,
		})
		if len(out) >= k {
			break
		}
	}
	return out, nil
}

func distanceKey(d *float64) float64 {
	if d == nil {
		return missingDistance
	}
	return *d
}

// Snippet flattens newlines and truncates text to SnippetLen characters,
// appending an ellipsis when it cuts.
func Snippet(text string) string {
	t := strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
	if utf8.RuneCountInString(t) <= SnippetLen {
		return t
	}
	return string([]rune(t)[:SnippetLen]) + "…"
}
