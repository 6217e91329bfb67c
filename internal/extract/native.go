// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/pdiddy/report-qa/pkg/types"
)

// Native extracts text in-process. pdfcpu validates the file structure
// first so broken uploads fail fast with a clear cause; ledongthuc/pdf
// then reads the text of each page.
type Native struct{}

// NewNative returns the in-process extractor.
func NewNative() *Native { return &Native{} }

// Extract implements Extractor.
func (n *Native) Extract(ctx context.Context, path string) ([]types.Page, error) {
	count, err := api.PageCountFile(path)
	if err != nil {
		return nil, failed(path, fmt.Errorf("validating PDF: %w", err))
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, failed(path, err)
	}
	defer f.Close()

	total := r.NumPage()
	if count > total {
		total = count
	}

	pages := make([]types.Page, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := pageText(r, i)
		if err != nil {
			return nil, failed(path, fmt.Errorf("page %d: %w", i, err))
		}
		pages = append(pages, types.Page{Number: i, Text: text})
	}
	return pages, nil
}

// pageText returns the plain text of page i. Missing pages yield empty
// text. The parser panics on some malformed content streams, so panics
// are converted to errors.
func pageText(r *pdf.Reader, i int) (text string, err error) {
	if i > r.NumPage() {
		return "", nil
	}
	p := r.Page(i)
	if p.V.IsNull() {
		return "", nil
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("reading content: %v", rec)
		}
	}()
	return p.GetPlainText(nil)
}
