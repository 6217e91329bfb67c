// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extracttest builds small, valid PDF files for tests.
package extracttest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// BuildPDF returns a PDF with one page per entry of pages. Each entry is
// split on newlines and each line is drawn on its own text line in
// Helvetica. An empty entry produces a page with no text.
func BuildPDF(pages ...string) []byte {
	const (
		catalogObj = 1
		pagesObj   = 2
		fontObj    = 3
		firstPage  = 4
	)
	pageObj := func(i int) int { return firstPage + 2*i }
	contentObj := func(i int) int { return firstPage + 2*i + 1 }
	total := firstPage + 2*len(pages)

	var b strings.Builder
	offsets := make([]int, total)
	b.WriteString("%PDF-1.4\n")

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", pageObj(i))
	}

	offsets[catalogObj] = b.Len()
	fmt.Fprintf(&b, "%d 0 obj\n<< /Type /Catalog /Pages %d 0 R >>\nendobj\n", catalogObj, pagesObj)

	offsets[pagesObj] = b.Len()
	fmt.Fprintf(&b, "%d 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n",
		pagesObj, strings.Join(kids, " "), len(pages))

	offsets[fontObj] = b.Len()
	fmt.Fprintf(&b, "%d 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n", fontObj)

	for i, text := range pages {
		stream := contentStream(text)

		offsets[pageObj(i)] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n<< /Type /Page /Parent %d 0 R /MediaBox [0 0 612 792] /Contents %d 0 R /Resources << /Font << /F1 %d 0 R >> >> >>\nendobj\n",
			pageObj(i), pagesObj, contentObj(i), fontObj)

		offsets[contentObj(i)] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", contentObj(i), len(stream), stream)
	}

	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n", total)
	b.WriteString("0000000000 65535 f \n")
	for i := 1; i < total; i++ {
		fmt.Fprintf(&b, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n", total, catalogObj, xref)
	return []byte(b.String())
}

func contentStream(text string) string {
	var s strings.Builder
	s.WriteString("BT\n/F1 12 Tf\n14 TL\n72 720 Td\n")
	if text != "" {
		for _, line := range strings.Split(text, "\n") {
			fmt.Fprintf(&s, "(%s) Tj\nT*\n", escape(line))
		}
	}
	s.WriteString("ET")
	return s.String()
}

func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "(", `\(`)
	return strings.ReplaceAll(s, ")", `\)`)
}

// WritePDF writes BuildPDF(pages...) to name inside a fresh temp dir and
// returns its path.
func WritePDF(t testing.TB, name string, pages ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, BuildPDF(pages...), 0o644); err != nil {
		t.Fatalf("writing test PDF: %v", err)
	}
	return path
}
