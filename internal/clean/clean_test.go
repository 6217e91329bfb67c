// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package clean

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/report-qa/internal/filter"
	"github.com/pdiddy/report-qa/pkg/types"
)

func newTestStripper() *Stripper {
	lex := filter.DefaultLexicon()
	return New(lex.FooterMarkers, lex.FooterPrefixes)
}

func TestNormalizeLine(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "  Page 3 of 40  ", want: "page of"},
		{in: "CONFIDENTIAL — PAGE 12", want: "confidential page"},
		{in: "Global   Outlook\t2026:", want: "global outlook"},
		{in: "snake_case stays", want: "snake_case stays"},
		{in: "1234 / 56", want: ""},
		{in: "Prévisions économiques", want: "prévisions économiques"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeLine(tt.in))
		})
	}
}

func TestCutoff(t *testing.T) {
	s := newTestStripper()
	tests := []struct {
		pages int
		want  int
	}{
		{pages: 0, want: 3},
		{pages: 1, want: 3},
		{pages: 3, want: 3},
		{pages: 9, want: 4},
		{pages: 12, want: 5},
		{pages: 100, want: 35},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d pages", tt.pages), func(t *testing.T) {
			assert.Equal(t, tt.want, s.Cutoff(tt.pages))
		})
	}
}

// pagesWithLine builds n pages of distinct body text where the first
// `on` pages also carry line.
func pagesWithLine(n, on int, line string) []types.Page {
	pages := make([]types.Page, n)
	for i := range pages {
		text := fmt.Sprintf("Body paragraph unique to page number %s here.", strings.Repeat("x", i+1))
		if i < on {
			text += "\n" + line
		}
		pages[i] = types.Page{Number: i + 1, Text: text}
	}
	return pages
}

func TestBuildBlacklistCutoff(t *testing.T) {
	s := newTestStripper()
	const footer = "Quarterly Market Review"
	key := NormalizeLine(footer)

	t.Run("five of twelve pages is blacklisted", func(t *testing.T) {
		bl := s.BuildBlacklist(pagesWithLine(12, 5, footer))
		assert.True(t, bl.Contains(key))
	})

	t.Run("four of twelve pages is not", func(t *testing.T) {
		bl := s.BuildBlacklist(pagesWithLine(12, 4, footer))
		assert.False(t, bl.Contains(key))
	})

	t.Run("repeats within one page count once", func(t *testing.T) {
		pages := pagesWithLine(12, 4, footer)
		pages[0].Text += strings.Repeat("\n"+footer, 10)
		bl := s.BuildBlacklist(pages)
		assert.False(t, bl.Contains(key))
	})

	t.Run("short keys are never blacklisted", func(t *testing.T) {
		bl := s.BuildBlacklist(pagesWithLine(6, 6, "Summary"))
		assert.False(t, bl.Contains("summary"))
	})
}

func TestStrip(t *testing.T) {
	s := newTestStripper()
	longRepeated := "This recurring sentence is long enough and mixed case so the guard keeps it even though it repeats on many pages of the report."
	bl := Blacklist{
		"confidential page":         {},
		NormalizeLine(longRepeated): {},
		"market outlook":            {},
	}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "blacklisted short footer removed",
			in:   "Body text stays.\nCONFIDENTIAL — PAGE 4",
			want: "Body text stays.",
		},
		{
			name: "long mixed-case blacklisted prose kept",
			in:   longRepeated,
			want: longRepeated,
		},
		{
			name: "institutional marker removed",
			in:   "Real content.\nFor professional clients only. Capital at risk.\nMore content.",
			want: "Real content.\nMore content.",
		},
		{
			name: "document code prefix removed",
			in:   "Real content.\nEPMM0042 Some suffix text that is quite long",
			want: "Real content.",
		},
		{
			name: "document code footer removed",
			in:   "Real content.\nAB12-3456/78",
			want: "Real content.",
		},
		{
			name: "code-like line longer than 22 kept",
			in:   "Real content.\nABCDEFGHIJKLMNOPQRSTUVWXYZ",
			want: "Real content.\nABCDEFGHIJKLMNOPQRSTUVWXYZ",
		},
		{
			name: "short code-like line kept",
			in:   "Real content.\nQ3-2025",
			want: "Real content.\nQ3-2025",
		},
		{
			name: "blank runs collapse and ends trim",
			in:   "\n\nFirst.   \n\n\n\n\nSecond.\n\n",
			want: "First.\n\nSecond.",
		},
		{
			name: "surrounding whitespace trimmed",
			in:   "  - indented bullet\nnext",
			want: "- indented bullet\nnext",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Strip(tt.in, bl))
		})
	}
}

func TestStripUppercaseLongBlacklistedLine(t *testing.T) {
	s := newTestStripper()
	line := strings.ToUpper("this heading is written in capitals and is long enough to exceed the eighty character guard")
	require.Greater(t, len(line), guardLen)
	bl := Blacklist{NormalizeLine(line): {}}

	assert.Equal(t, "Kept.", s.Strip("Kept.\n"+line, bl))
}

func TestStripRemovesRecurringFooterAcrossDocument(t *testing.T) {
	s := newTestStripper()
	bodies := []string{
		"Private credit fundraising slowed in the first half while deployment held up.",
		"Secondary volumes reached a record as liquidity solutions became mainstream.",
		"Real estate valuations appear to have found a floor in most logistics markets.",
	}
	pages := make([]types.Page, len(bodies))
	for i, body := range bodies {
		pages[i] = types.Page{
			Number: i + 1,
			Text:   fmt.Sprintf("%s\nCONFIDENTIAL — PAGE %d", body, i+1),
		}
	}

	bl := s.BuildBlacklist(pages)
	require.True(t, bl.Contains("confidential page"))

	for i, p := range pages {
		got := s.Strip(p.Text, bl)
		assert.Equal(t, bodies[i], got)
		assert.NotContains(t, got, "CONFIDENTIAL")
	}
}
