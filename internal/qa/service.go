// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package qa is the application service behind every surface (CLI, HTTP,
// MCP, TUI, watcher). It ingests PDFs into the registry and index and
// answers questions with page-cited excerpts.
package qa

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/report-qa/internal/chunk"
	"github.com/pdiddy/report-qa/internal/extract"
	"github.com/pdiddy/report-qa/internal/llm"
	"github.com/pdiddy/report-qa/internal/retrieve"
	"github.com/pdiddy/report-qa/pkg/types"
)

// ErrEmptyQuestion is returned by Answer for a blank question.
var ErrEmptyQuestion = errors.New("missing question")

// Registry records uploaded documents.
type Registry interface {
	UpsertDocument(ctx context.Context, doc types.Document) error
	GetDocument(ctx context.Context, id string) (types.Document, error)
	ListDocuments(ctx context.Context) ([]types.Document, error)
	DeleteDocument(ctx context.Context, id string) error
}

// Index stores chunks and answers similarity queries.
type Index interface {
	retrieve.Index
	Add(ctx context.Context, chunks []types.Chunk) error
	Count(ctx context.Context) (int, error)
	DeleteChunks(ctx context.Context, docID string) (int, error)
}

// Generator produces answers and describes the backend in use.
type Generator interface {
	Generate(ctx context.Context, req llm.Request) (string, error)
	Provider() (llm.Provider, error)
	Model() string
	HasKey() bool
}

// Config holds the service settings that are not collaborators.
type Config struct {
	// DocsDir receives uploaded PDFs.
	DocsDir string

	// IndexPath is reported by Stats.
	IndexPath string

	// K is the number of sources retrieved per question.
	K int
}

// Service wires extraction, chunking, indexing, retrieval and generation.
type Service struct {
	cfg       Config
	registry  Registry
	index     Index
	extractor extract.Extractor
	chunker   *chunk.Chunker
	retriever *retrieve.Retriever
	gen       Generator
	log       logrus.FieldLogger

	newID func() string
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithIDFunc replaces the document id generator.
func WithIDFunc(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// WithClock replaces the upload timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New returns a Service.
func New(cfg Config, registry Registry, index Index, extractor extract.Extractor,
	chunker *chunk.Chunker, gen Generator, log logrus.FieldLogger, opts ...Option) *Service {
	s := &Service{
		cfg:       cfg,
		registry:  registry,
		index:     index,
		extractor: extractor,
		chunker:   chunker,
		retriever: retrieve.New(index),
		gen:       gen,
		log:       log,
		newID:     uuid.NewString,
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}
