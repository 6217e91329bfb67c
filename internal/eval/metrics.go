// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eval

import (
	"regexp"
	"strings"

	"github.com/pdiddy/report-qa/pkg/types"
)

var citeRe = regexp.MustCompile(`(?i)\(p\.\s*\d+\)`)

// HasCitations reports whether the answer cites at least one page.
func HasCitations(answer string) bool {
	return citeRe.MatchString(answer)
}

// CitationCoverage is the fraction of non-blank lines that carry a page
// citation. An answer with no non-blank lines scores 0.
func CitationCoverage(answer string) float64 {
	var lines, cited int
	for _, ln := range strings.Split(answer, "\n") {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			continue
		}
		lines++
		if citeRe.MatchString(ln) {
			cited++
		}
	}
	if lines == 0 {
		return 0
	}
	return float64(cited) / float64(lines)
}

// DistinctPages counts the distinct (document, page) pairs among sources.
// Sources without a document id or page are ignored.
func DistinctPages(sources []types.Source) int {
	type key struct {
		doc  string
		page int
	}
	seen := make(map[key]struct{}, len(sources))
	for _, s := range sources {
		if s.Metadata.DocID == "" || s.Metadata.Page == 0 {
			continue
		}
		seen[key{s.Metadata.DocID, s.Metadata.Page}] = struct{}{}
	}
	return len(seen)
}
