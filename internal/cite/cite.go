// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cite checks and repairs the page-citation contract of a
// generated answer. It verifies that citation markers are present, not
// that they are true.
package cite

import (
	"regexp"
	"strings"
)

// Fallback replaces any cited-section line that carries no citation.
const Fallback = "Not enough information in the provided excerpts."

// Section identifies one of the four answer sections.
type Section int

const (
	// SectionNone is text before the first header.
	SectionNone Section = iota
	// SectionAnswer follows "ANSWER:".
	SectionAnswer
	// SectionKeyThemes follows "KEY THEMES:".
	SectionKeyThemes
	// SectionFocus follows "WHAT TO FOCUS ON IN <year>:".
	SectionFocus
	// SectionGaps follows "GAPS:" and needs no citations.
	SectionGaps
)

var (
	// TokenRe matches a page citation such as (p.7) or (p. 12).
	TokenRe = regexp.MustCompile(`\(p\.\s*\d+\)`)

	focusHeaderRe = regexp.MustCompile(`^WHAT TO FOCUS ON IN \d{4}:$`)
)

// HeaderSection returns the section a trimmed line opens, if it is a
// header line.
func HeaderSection(line string) (Section, bool) {
	switch line {
	case "ANSWER:":
		return SectionAnswer, true
	case "KEY THEMES:":
		return SectionKeyThemes, true
	case "GAPS:":
		return SectionGaps, true
	}
	if focusHeaderRe.MatchString(line) {
		return SectionFocus, true
	}
	return SectionNone, false
}

// requiresCitation reports whether lines in s must cite a page.
func (s Section) requiresCitation() bool {
	return s == SectionAnswer || s == SectionKeyThemes || s == SectionFocus
}

// HasCitation reports whether line carries a page citation.
func HasCitation(line string) bool {
	return TokenRe.MatchString(line)
}

// Enforce returns output with every uncited line in ANSWER, KEY THEMES
// and WHAT TO FOCUS replaced by Fallback (bulleted outside ANSWER). GAPS
// lines, blank lines, headers and text before the first header pass
// through. Line count and order never change.
func Enforce(output string) string {
	if output == "" {
		return output
	}

	lines := strings.Split(output, "\n")
	section := SectionNone
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if s, ok := HeaderSection(trimmed); ok {
			section = s
			continue
		}
		if trimmed == "" || !section.requiresCitation() || HasCitation(line) {
			continue
		}
		if section == SectionAnswer {
			lines[i] = Fallback
		} else {
			lines[i] = "- " + Fallback
		}
	}
	return strings.Join(lines, "\n")
}
