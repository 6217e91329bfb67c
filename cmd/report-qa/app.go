// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/pdiddy/report-qa/internal/chunk"
	"github.com/pdiddy/report-qa/internal/clean"
	"github.com/pdiddy/report-qa/internal/extract"
	"github.com/pdiddy/report-qa/internal/filter"
	"github.com/pdiddy/report-qa/internal/llm"
	"github.com/pdiddy/report-qa/internal/qa"
	"github.com/pdiddy/report-qa/internal/store"
	"github.com/pdiddy/report-qa/pkg/types"
)

// app holds the opened store and the service built on it.
type app struct {
	store *store.Store
	svc   *qa.Service
}

// openApp builds the service from cfg. The caller must Close it.
func openApp(ctx context.Context, cfg types.Config) (*app, error) {
	splitter := chunk.NewSplitter(cfg.Chunking.Size, cfg.Chunking.Overlap)
	if err := splitter.Validate(); err != nil {
		return nil, fmt.Errorf("chunking config: %w", err)
	}

	var index qa.Index
	var opts []store.Option
	switch cfg.Index.Backend {
	case types.IndexSQLite, "":
	case types.IndexMemory:
		mem := store.NewMemoryIndex()
		opts = append(opts, store.WithoutFullText(), store.WithChunkCounter(mem))
		index = mem
	default:
		return nil, fmt.Errorf("unknown index backend %q (use sqlite or memory)", cfg.Index.Backend)
	}

	st, err := store.Open(cfg.DataDir, opts...)
	if err != nil {
		return nil, err
	}
	if index == nil {
		index = st
	}

	ex, err := extract.New(ctx, cfg.Extraction.Backend)
	if err != nil {
		st.Close()
		return nil, err
	}

	lex, err := filter.LoadLexicon(cfg.LexiconPath)
	if err != nil {
		st.Close()
		return nil, err
	}
	classifier, err := filter.New(lex)
	if err != nil {
		st.Close()
		return nil, err
	}
	chunker := chunk.New(
		splitter,
		clean.New(lex.FooterMarkers, lex.FooterPrefixes),
		classifier,
	)

	svc := qa.New(
		qa.Config{DocsDir: st.DocsDir(), IndexPath: st.IndexPath(), K: cfg.Retrieval.K},
		st, index, ex, chunker,
		llm.New(cfg.LLM, log),
		log,
	)
	return &app{store: st, svc: svc}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// withApp opens the app for the duration of fn.
func withApp(ctx context.Context, fn func(*app) error) error {
	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
