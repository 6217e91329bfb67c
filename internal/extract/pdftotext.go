// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pdiddy/report-qa/internal/container"
	"github.com/pdiddy/report-qa/pkg/types"
)

// ImagePdftotext is the poppler-utils image used by the pdftotext backend.
// Its entrypoint must be pdftotext.
const ImagePdftotext = "pdftotext:latest"

// pdftotext reads the PDF from stdin and writes UTF-8 text to stdout,
// ending every page with a form feed.
var pdftotextArgs = []string{"-enc", "UTF-8", "-", "-"}

// Pdftotext extracts text by piping the PDF through poppler's pdftotext
// in a container. It copes with some files the native parser cannot.
type Pdftotext struct {
	runtime container.Runtime
}

// NewPdftotext verifies the image is present in rt before returning.
func NewPdftotext(ctx context.Context, rt container.Runtime) (*Pdftotext, error) {
	if err := rt.ImageExists(ctx, ImagePdftotext); err != nil {
		return nil, fmt.Errorf("pdftotext image %s not available in %s: %w", ImagePdftotext, rt.Name(), err)
	}
	return &Pdftotext{runtime: rt}, nil
}

// Extract implements Extractor.
func (p *Pdftotext) Extract(ctx context.Context, path string) ([]types.Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, failed(path, err)
	}
	defer f.Close()

	var out bytes.Buffer
	if err := p.runtime.Run(ctx, ImagePdftotext, pdftotextArgs, f, &out); err != nil {
		return nil, failed(path, err)
	}
	return splitPages(out.String()), nil
}

// splitPages splits pdftotext output on form feeds. The feed after the
// last page does not start another page.
func splitPages(out string) []types.Page {
	raw := strings.Split(out, "\f")
	if n := len(raw); n > 0 && strings.TrimSpace(raw[n-1]) == "" {
		raw = raw[:n-1]
	}
	pages := make([]types.Page, len(raw))
	for i, text := range raw {
		pages[i] = types.Page{Number: i + 1, Text: text}
	}
	return pages
}
