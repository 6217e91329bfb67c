// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package qa

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/report-qa/internal/store"
	"github.com/pdiddy/report-qa/pkg/types"
)

// Stats describes the index.
type Stats struct {
	ChunksIndexed int    `json:"chunks_indexed"`
	DocsDir       string `json:"docs_dir"`
	IndexPath     string `json:"index_path"`
}

// Identity describes the generation backend without exposing secrets.
type Identity struct {
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	HasAPIKey bool   `json:"has_api_key"`
}

// Stats reports the chunk count and storage locations.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	n, err := s.index.Count(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{ChunksIndexed: n, DocsDir: s.cfg.DocsDir, IndexPath: s.cfg.IndexPath}, nil
}

// WhoAmI reports the configured provider, its model and whether a key is
// present. An unsupported provider name is reported as configured.
func (s *Service) WhoAmI() Identity {
	id := Identity{Model: s.gen.Model(), HasAPIKey: s.gen.HasKey()}
	if p, err := s.gen.Provider(); err == nil {
		id.Provider = p.String()
	}
	return id
}

// Documents lists registered documents, newest first.
func (s *Service) Documents(ctx context.Context) ([]types.Document, error) {
	docs, err := s.registry.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []types.Document{}
	}
	return docs, nil
}

// Document returns one registered document; unknown ids wrap
// store.ErrNotFound.
func (s *Service) Document(ctx context.Context, id string) (types.Document, error) {
	return s.registry.GetDocument(ctx, id)
}

// Delete unregisters a document, drops its chunks and removes its PDF.
func (s *Service) Delete(ctx context.Context, id string) error {
	doc, err := s.registry.GetDocument(ctx, id)
	if err != nil {
		return err
	}
	if err := s.registry.DeleteDocument(ctx, id); err != nil {
		return err
	}
	if _, err := s.index.DeleteChunks(ctx, id); err != nil {
		return fmt.Errorf("deleting chunks of %s: %w", id, err)
	}
	if err := os.Remove(doc.PDFPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", doc.PDFPath, err)
	}
	s.log.WithField("doc_id", id).Info("document deleted")
	return nil
}

// PDF locates the stored file of a document and the filename it was
// uploaded under. Files saved before registration are found by their
// "<id>__" prefix.
func (s *Service) PDF(ctx context.Context, id string) (path, filename string, err error) {
	doc, err := s.registry.GetDocument(ctx, id)
	switch {
	case err == nil:
		if _, statErr := os.Stat(doc.PDFPath); statErr == nil {
			return doc.PDFPath, doc.Name, nil
		}
	case !errors.Is(err, store.ErrNotFound):
		return "", "", err
	}

	if strings.ContainsAny(id, `/\`) {
		return "", "", fmt.Errorf("PDF for document %s: %w", id, store.ErrNotFound)
	}
	matches, globErr := filepath.Glob(filepath.Join(s.cfg.DocsDir, globEscape(id)+"__*.pdf"))
	if globErr != nil || len(matches) == 0 {
		return "", "", fmt.Errorf("PDF for document %s: %w", id, store.ErrNotFound)
	}
	path = matches[0]
	return path, strings.SplitN(filepath.Base(path), "__", 2)[1], nil
}

// globEscape neutralises glob metacharacters in a user-supplied id.
func globEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`).Replace(s)
}
