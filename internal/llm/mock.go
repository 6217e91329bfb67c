// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"fmt"
	"strings"

	"github.com/pdiddy/report-qa/internal/cite"
	"github.com/pdiddy/report-qa/pkg/types"
)

const (
	mockTopSources = 5
	mockThemeChars = 220
	mockFocusItems = 3
)

// mockAnswer builds a deterministic four-section answer from the top
// sources without contacting any model.
func mockAnswer(sources []types.Source, year int) string {
	if len(sources) > mockTopSources {
		sources = sources[:mockTopSources]
	}

	var b strings.Builder
	b.WriteString("ANSWER:\n")
	if len(sources) == 0 {
		b.WriteString(cite.Fallback + "\n\n")
		b.WriteString("KEY THEMES:\n- " + cite.Fallback + "\n\n")
		fmt.Fprintf(&b, "WHAT TO FOCUS ON IN %d:\n- %s\n\n", year, cite.Fallback)
		b.WriteString("GAPS:\n")
		b.WriteString("- Missing: relevant excerpts. Look for: an ingested report covering this question.\n")
		b.WriteString("- Missing: a live model answer. Look for: the OLLAMA or OPENAI provider setting.")
		return b.String()
	}

	cites := make([]string, 0, len(sources))
	for _, s := range sources {
		cites = append(cites, fmt.Sprintf("(p.%d)", s.Metadata.Page))
	}
	fmt.Fprintf(&b, "(MOCK) This answer is grounded strictly in %d retrieved report excerpts %s.\n\n",
		len(sources), strings.Join(cites, " "))

	b.WriteString("KEY THEMES:\n")
	for _, s := range sources {
		fmt.Fprintf(&b, "- %s (p.%d)\n", truncate(normalizeWS(s.Text), mockThemeChars), s.Metadata.Page)
	}

	fmt.Fprintf(&b, "\nWHAT TO FOCUS ON IN %d:\n", year)
	for i, s := range sources {
		if i == mockFocusItems {
			break
		}
		name := s.Metadata.DocName
		if name == "" {
			name = "the report"
		}
		fmt.Fprintf(&b, "- Review page %d of %s (p.%d)\n", s.Metadata.Page, name, s.Metadata.Page)
	}

	b.WriteString("\nGAPS:\n")
	b.WriteString("- Missing: a live model answer. Look for: the OLLAMA or OPENAI provider setting.\n")
	b.WriteString("- Missing: excerpts beyond the top matches. Look for: a narrower question or document scope.")
	return b.String()
}
