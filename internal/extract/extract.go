// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract reads the per-page text of a PDF. Pages are returned
// 1-indexed and in order, including pages with no text, so page numbers
// in citations always match the printed document.
package extract

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdiddy/report-qa/internal/container"
	"github.com/pdiddy/report-qa/pkg/types"
)

// ErrExtractionFailed is returned when a file cannot be opened or parsed
// as a PDF. It wraps the underlying cause.
var ErrExtractionFailed = errors.New("PDF text extraction failed")

// Extractor abstracts the PDF text engine so tests and alternate
// backends can be substituted.
type Extractor interface {
	Extract(ctx context.Context, path string) ([]types.Page, error)
}

// detectRuntime is a package variable so tests can avoid probing the host.
var detectRuntime = container.DetectRuntime

// New returns the extractor for backend. The pdftotext backend requires
// a container runtime with the pdftotext image available.
func New(ctx context.Context, backend types.ExtractionBackend) (Extractor, error) {
	switch backend {
	case types.ExtractNative, "":
		return NewNative(), nil
	case types.ExtractPdftotext:
		rt, err := detectRuntime(ctx)
		if err != nil {
			return nil, fmt.Errorf("pdftotext backend: %w", err)
		}
		return NewPdftotext(ctx, rt)
	}
	return nil, fmt.Errorf("unknown extraction backend %q (use %s or %s)", backend, types.ExtractNative, types.ExtractPdftotext)
}

func failed(path string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrExtractionFailed, path, err)
}
