// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package clean removes running headers, footers and document codes that
// repeat across the pages of one PDF. The blacklist is built from the
// whole document before any page is stripped.
package clean

import (
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/report-qa/pkg/types"
)

const (
	// DefaultMinFraction is the share of pages a line must appear on.
	DefaultMinFraction = 0.35

	// DefaultMinPages is the absolute floor for the page cutoff.
	DefaultMinPages = 3

	// minKeyLen keeps short headings out of the blacklist.
	minKeyLen = 10

	// guardLen is the line length up to which a blacklisted line is
	// always treated as header material.
	guardLen = 80

	// guardAlpha is the alphabetic count below which a blacklisted line
	// is treated as header material regardless of length.
	guardAlpha = 15

	codeMinLen = 8
	codeMaxLen = 22
)

var (
	wsRe      = regexp.MustCompile(`\s+`)
	digitsRe  = regexp.MustCompile(`\d+`)
	nonWordRe = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	docCodeRe = regexp.MustCompile(`^[A-Z0-9/\-]+$`)
	blanksRe  = regexp.MustCompile(`\n{3,}`)
)

// Blacklist is the set of normalized keys judged to be running
// headers or footers for one document.
type Blacklist map[string]struct{}

// Contains reports whether key is blacklisted.
func (b Blacklist) Contains(key string) bool {
	_, ok := b[key]
	return ok
}

// Stripper builds blacklists and strips pages. The zero value is not
// usable; construct with New.
type Stripper struct {
	minFraction    float64
	minPages       int
	footerMarkers  []string
	footerPrefixes []string
}

// Option configures a Stripper.
type Option func(*Stripper)

// WithCutoff overrides the page-presence fraction and floor.
func WithCutoff(minFraction float64, minPages int) Option {
	return func(s *Stripper) {
		s.minFraction = minFraction
		s.minPages = minPages
	}
}

// New returns a Stripper that removes lines containing any of the footer
// markers or starting with any of the prefixes. Matching is done on the
// uppercased line.
func New(footerMarkers, footerPrefixes []string, opts ...Option) *Stripper {
	s := &Stripper{
		minFraction: DefaultMinFraction,
		minPages:    DefaultMinPages,
	}
	for _, m := range footerMarkers {
		if m = strings.ToUpper(strings.TrimSpace(m)); m != "" {
			s.footerMarkers = append(s.footerMarkers, m)
		}
	}
	for _, p := range footerPrefixes {
		if p = strings.ToUpper(strings.TrimSpace(p)); p != "" {
			s.footerPrefixes = append(s.footerPrefixes, p)
		}
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NormalizeLine maps a raw line to its comparison key: lowercase,
// whitespace collapsed, digits and punctuation removed. Footer variants
// such as "Page 3 of 40" and "Page 4 of 40" share one key.
func NormalizeLine(line string) string {
	s := strings.ToLower(strings.TrimSpace(line))
	s = wsRe.ReplaceAllString(s, " ")
	s = digitsRe.ReplaceAllString(s, "")
	s = nonWordRe.ReplaceAllString(s, "")
	s = wsRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Cutoff returns the page-presence count a key needs to be blacklisted
// in a document of n pages.
func (s *Stripper) Cutoff(n int) int {
	if n < 1 {
		n = 1
	}
	c := int(math.Ceil(float64(n) * s.minFraction))
	if c < s.minPages {
		c = s.minPages
	}
	return c
}

// BuildBlacklist counts, for each normalized key, the number of pages it
// appears on (once per page) and keeps keys at or above the cutoff.
func (s *Stripper) BuildBlacklist(pages []types.Page) Blacklist {
	counts := make(map[string]int)
	for _, p := range pages {
		seen := make(map[string]struct{})
		for _, raw := range strings.Split(p.Text, "\n") {
			key := NormalizeLine(raw)
			if utf8.RuneCountInString(key) < minKeyLen {
				continue
			}
			seen[key] = struct{}{}
		}
		for key := range seen {
			counts[key]++
		}
	}

	cutoff := s.Cutoff(len(pages))
	bl := make(Blacklist)
	for key, c := range counts {
		if c >= cutoff {
			bl[key] = struct{}{}
		}
	}
	return bl
}

// Strip removes header, footer and document-code lines from one page of
// text. Line order is preserved, surviving lines are right-trimmed and
// runs of blank lines collapse to a single blank line.
func (s *Stripper) Strip(text string, bl Blacklist) string {
	var out []string
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			out = append(out, "")
			continue
		}
		if s.dropLine(line, bl) {
			continue
		}
		out = append(out, strings.TrimRightFunc(raw, unicode.IsSpace))
	}

	cleaned := blanksRe.ReplaceAllString(strings.Join(out, "\n"), "\n\n")
	return strings.TrimSpace(cleaned)
}

// dropLine applies the three removal rules to a trimmed, non-empty line.
func (s *Stripper) dropLine(line string, bl Blacklist) bool {
	upper := strings.ToUpper(line)

	if key := NormalizeLine(line); key != "" && bl.Contains(key) {
		if utf8.RuneCountInString(line) <= guardLen || isUpper(line) || alphaCount(line) < guardAlpha {
			return true
		}
	}

	for _, m := range s.footerMarkers {
		if strings.Contains(upper, m) {
			return true
		}
	}
	for _, p := range s.footerPrefixes {
		if strings.HasPrefix(upper, p) {
			return true
		}
	}

	n := utf8.RuneCountInString(upper)
	return n >= codeMinLen && n <= codeMaxLen && docCodeRe.MatchString(upper)
}

// isUpper reports whether line has at least one cased letter and no
// lowercase letters.
func isUpper(line string) bool {
	cased := false
	for _, r := range line {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			cased = true
		}
	}
	return cased
}

func alphaCount(line string) int {
	n := 0
	for _, r := range line {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}
