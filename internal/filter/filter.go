// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package filter classifies text spans as disclaimer boilerplate or as
// chart and table residue so they can be kept out of the index.
//
// Both checks are tuned for precision: a real passage wrongly kept costs
// little, a real passage wrongly dropped cannot be cited.
package filter

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// minProseLen is the normalized length below which a span cannot
	// carry an answerable statement.
	minProseLen = 80

	// minChartLen is the length below which chart detection never fires.
	minChartLen = 40

	numericRatioLimit = 0.35
	shortLineLen      = 12
	shortLineMinLines = 10
	shortLineRatio    = 0.45
	navRepeat         = 2
	boilerplateHits   = 2
)

var (
	whitespaceRe   = regexp.MustCompile(`\s+`)
	numericTokenRe = regexp.MustCompile(`^-?\$?\d+([.,]\d+)?%?$`)
)

// Filter holds the compiled lexicon. It is safe for concurrent use.
type Filter struct {
	patterns      []*regexp.Regexp
	strongPhrases []string
	navHeadings   []string
}

// New compiles the lexicon's patterns. An invalid pattern is an error.
func New(lex Lexicon) (*Filter, error) {
	f := &Filter{}
	for _, p := range lex.BoilerplatePatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compiling boilerplate pattern %q: %w", p, err)
		}
		f.patterns = append(f.patterns, re)
	}
	for _, s := range lex.StrongPhrases {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			f.strongPhrases = append(f.strongPhrases, s)
		}
	}
	for _, h := range lex.NavHeadings {
		if h = strings.ToUpper(strings.TrimSpace(h)); h != "" {
			f.navHeadings = append(f.navHeadings, h)
		}
	}
	return f, nil
}

// Default returns a Filter over the built-in lexicon.
func Default() *Filter {
	f, err := New(DefaultLexicon())
	if err != nil {
		panic(err)
	}
	return f
}

// IsBoilerplate reports whether text looks like disclaimer or regulatory
// material. Empty and very short spans count as boilerplate.
func (f *Filter) IsBoilerplate(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" {
		return true
	}

	lower := whitespaceRe.ReplaceAllString(strings.ToLower(t), " ")
	if utf8.RuneCountInString(lower) < minProseLen {
		return true
	}

	// Every pattern is evaluated so the count reflects distinct hits.
	hits := 0
	for _, re := range f.patterns {
		if re.MatchString(lower) {
			hits++
		}
	}
	if hits >= boilerplateHits {
		return true
	}

	for _, p := range f.strongPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// LooksLikeChartOrTable reports whether text looks like extracted chart
// labels, a numeric table or a repeated navigation block. Spans shorter
// than 40 characters are never flagged.
func (f *Filter) LooksLikeChartOrTable(text string) bool {
	t := strings.TrimSpace(text)
	if utf8.RuneCountInString(t) < minChartLen {
		return false
	}

	if numericRatio(t) > numericRatioLimit {
		return true
	}

	var lines []string
	for _, ln := range strings.Split(t, "\n") {
		if ln = strings.TrimSpace(ln); ln != "" {
			lines = append(lines, ln)
		}
	}
	if len(lines) >= shortLineMinLines {
		short := 0
		for _, ln := range lines {
			if utf8.RuneCountInString(ln) <= shortLineLen {
				short++
			}
		}
		if float64(short)/float64(len(lines)) > shortLineRatio {
			return true
		}
	}

	if len(f.navHeadings) == 0 {
		return false
	}
	upper := strings.ToUpper(t)
	for _, h := range f.navHeadings {
		if strings.Count(upper, h) < navRepeat {
			return false
		}
	}
	return true
}

// numericRatio is the share of whitespace-separated tokens that are
// numbers, currency amounts or percentages once wrapping punctuation is
// removed.
func numericRatio(text string) float64 {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return 0
	}
	numeric := 0
	for _, tok := range tokens {
		if numericTokenRe.MatchString(strings.Trim(tok, "()[],:;")) {
			numeric++
		}
	}
	return float64(numeric) / float64(len(tokens))
}
