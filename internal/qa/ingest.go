// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package qa

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/report-qa/pkg/types"
)

const defaultDocName = "document.pdf"

// IngestResult reports one completed upload.
type IngestResult struct {
	Status      string `json:"status"`
	DocID       string `json:"doc_id"`
	DocName     string `json:"doc_name"`
	Pages       int    `json:"pages"`
	ChunksAdded int    `json:"chunks_added"`
}

// SanitizeName makes an uploaded filename safe to embed in a path.
func SanitizeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.NewReplacer("/", "_", `\`, "_").Replace(name)
	if name == "" {
		return defaultDocName
	}
	return name
}

// Ingest saves the PDF read from r under a new document id, extracts and
// chunks its pages, indexes the chunks and registers the document. A
// file that fails extraction is removed again and the error wraps
// extract.ErrExtractionFailed. Any later failure removes the file and
// whatever chunks were indexed, so no partial document remains.
func (s *Service) Ingest(ctx context.Context, name string, r io.Reader) (IngestResult, error) {
	start := time.Now()
	docID := s.newID()
	docName := SanitizeName(name)
	log := s.log.WithFields(logrus.Fields{"doc_id": docID, "doc_name": docName})

	path, err := s.save(docID, docName, r)
	if err != nil {
		return IngestResult{}, err
	}

	pages, err := s.extractor.Extract(ctx, path)
	if err != nil {
		os.Remove(path)
		log.WithError(err).Warn("extraction failed")
		return IngestResult{}, fmt.Errorf("ingesting %s: %w", docName, err)
	}

	res := s.chunker.Chunk(pages)
	for i := range res.Chunks {
		res.Chunks[i].Metadata.DocID = docID
		res.Chunks[i].Metadata.DocName = docName
	}

	if err := s.index.Add(ctx, res.Chunks); err != nil {
		s.rollback(ctx, log, docID, path)
		return IngestResult{}, fmt.Errorf("indexing %s: %w", docName, err)
	}

	doc := types.Document{
		ID:         docID,
		Name:       docName,
		PDFPath:    path,
		UploadedAt: s.now().UTC(),
		Pages:      len(pages),
		Chunks:     len(res.Chunks),
	}
	if err := s.registry.UpsertDocument(ctx, doc); err != nil {
		s.rollback(ctx, log, docID, path)
		return IngestResult{}, fmt.Errorf("registering %s: %w", docName, err)
	}

	log.WithFields(logrus.Fields{
		"pages":       len(pages),
		"chunks":      len(res.Chunks),
		"empty_pages": res.EmptyPages,
		"boilerplate": res.Boilerplate,
		"charts":      res.Charts,
		"elapsed":     time.Since(start).Round(time.Millisecond),
	}).Info("document ingested")

	return IngestResult{
		Status:      "ok",
		DocID:       docID,
		DocName:     docName,
		Pages:       len(pages),
		ChunksAdded: len(res.Chunks),
	}, nil
}

// rollback undoes a partial ingest. It runs even when ctx is cancelled.
func (s *Service) rollback(ctx context.Context, log logrus.FieldLogger, docID, path string) {
	ctx = context.WithoutCancel(ctx)
	if _, err := s.index.DeleteChunks(ctx, docID); err != nil {
		log.WithError(err).Warn("could not remove chunks of failed ingest")
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("could not remove file of failed ingest")
	}
}

// IngestFile ingests the PDF at path under its base name.
func (s *Service) IngestFile(ctx context.Context, path string) (IngestResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return IngestResult{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return s.Ingest(ctx, filepath.Base(path), f)
}

// save writes r to DocsDir/<docID>__<docName>.
func (s *Service) save(docID, docName string, r io.Reader) (string, error) {
	if err := os.MkdirAll(s.cfg.DocsDir, 0o755); err != nil {
		return "", fmt.Errorf("creating docs directory: %w", err)
	}
	path := filepath.Join(s.cfg.DocsDir, docID+"__"+docName)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("closing %s: %w", path, err)
	}
	return path, nil
}
