// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chunk turns the extracted pages of one document into
// page-scoped, filtered chunks ready for indexing. Pages are chunked
// independently so every chunk cites exactly one page.
package chunk

import (
	"strings"

	"github.com/google/uuid"

	"github.com/pdiddy/report-qa/internal/clean"
	"github.com/pdiddy/report-qa/pkg/types"
)

// Classifier decides whether a candidate segment is noise.
type Classifier interface {
	IsBoilerplate(text string) bool
	LooksLikeChartOrTable(text string) bool
}

// Result is the outcome of chunking one document.
type Result struct {
	Chunks []types.Chunk

	// EmptyPages counts pages with no text left after stripping.
	EmptyPages int

	// Boilerplate and Charts count discarded segments.
	Boilerplate int
	Charts      int
}

// Chunker composes the stripper, splitter and classifier.
type Chunker struct {
	splitter   *Splitter
	stripper   *clean.Stripper
	classifier Classifier
	newID      func() string
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithIDFunc replaces the chunk id generator.
func WithIDFunc(fn func() string) Option {
	return func(c *Chunker) { c.newID = fn }
}

// New returns a Chunker. Chunk ids default to random UUIDs so chunks from
// concurrently ingested documents never collide.
func New(splitter *Splitter, stripper *clean.Stripper, classifier Classifier, opts ...Option) *Chunker {
	c := &Chunker{
		splitter:   splitter,
		stripper:   stripper,
		classifier: classifier,
		newID:      uuid.NewString,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Chunk strips repeated lines using a blacklist built over all pages,
// splits each page on its own and drops boilerplate and chart segments.
// Chunk metadata carries the page number only; the caller stamps the
// document id and name.
func (c *Chunker) Chunk(pages []types.Page) Result {
	bl := c.stripper.BuildBlacklist(pages)

	var res Result
	for _, p := range pages {
		text := c.stripper.Strip(strings.TrimSpace(p.Text), bl)
		if text == "" {
			res.EmptyPages++
			continue
		}

		for _, seg := range c.splitter.Split(text) {
			if c.classifier.IsBoilerplate(seg) {
				res.Boilerplate++
				continue
			}
			if c.classifier.LooksLikeChartOrTable(seg) {
				res.Charts++
				continue
			}
			res.Chunks = append(res.Chunks, types.Chunk{
				ID:       c.newID(),
				Text:     seg,
				Metadata: types.ChunkMetadata{Page: p.Number},
			})
		}
	}
	return res
}
