// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chunk

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultSeparators is the split priority: paragraphs, lines, sentences,
// words, then single characters.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Splitter cuts text into segments of at most Size characters, preferring
// the coarsest separator that fits and carrying up to Overlap characters
// of trailing context into the next segment. Lengths count runes.
type Splitter struct {
	Size       int
	Overlap    int
	Separators []string
}

// NewSplitter returns a Splitter with the default separators.
func NewSplitter(size, overlap int) *Splitter {
	return &Splitter{Size: size, Overlap: overlap, Separators: DefaultSeparators}
}

// Validate reports a size that cannot make progress: Size must be
// positive and Overlap must be smaller than Size.
func (s *Splitter) Validate() error {
	switch {
	case s.Size <= 0:
		return fmt.Errorf("chunk size must be positive, got %d", s.Size)
	case s.Overlap < 0:
		return fmt.Errorf("chunk overlap must not be negative, got %d", s.Overlap)
	case s.Overlap >= s.Size:
		return fmt.Errorf("chunk overlap %d must be smaller than chunk size %d", s.Overlap, s.Size)
	}
	return nil
}

// Split returns the segments of text in order.
func (s *Splitter) Split(text string) []string {
	return s.split(text, s.Separators)
}

func (s *Splitter) split(text string, separators []string) []string {
	// Pick the first separator present in the text; the empty separator
	// always applies.
	sep := ""
	var rest []string
	if len(separators) > 0 {
		sep = separators[len(separators)-1]
	}
	for i, cand := range separators {
		if cand == "" {
			sep = ""
			rest = nil
			break
		}
		if strings.Contains(text, cand) {
			sep = cand
			rest = separators[i+1:]
			break
		}
	}

	var (
		out  []string
		good []string
	)
	for _, piece := range splitKeep(text, sep) {
		if runeLen(piece) < s.Size {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			out = append(out, s.merge(good)...)
			good = nil
		}
		if len(rest) == 0 {
			out = append(out, piece)
		} else {
			out = append(out, s.split(piece, rest)...)
		}
	}
	if len(good) > 0 {
		out = append(out, s.merge(good)...)
	}
	return out
}

// merge packs pieces into segments no longer than Size, then drops
// pieces from the front until at most Overlap characters remain to seed
// the next segment. Separators are already attached to the pieces.
func (s *Splitter) merge(pieces []string) []string {
	var (
		out     []string
		current []string
		total   int
	)
	for _, p := range pieces {
		n := runeLen(p)
		if total+n > s.Size && len(current) > 0 {
			if seg := strings.TrimSpace(strings.Join(current, "")); seg != "" {
				out = append(out, seg)
			}
			for total > s.Overlap || (total+n > s.Size && total > 0) {
				total -= runeLen(current[0])
				current = current[1:]
			}
		}
		current = append(current, p)
		total += n
	}
	if seg := strings.TrimSpace(strings.Join(current, "")); seg != "" {
		out = append(out, seg)
	}
	return out
}

// splitKeep splits text on sep and attaches each separator to the start
// of the piece that follows it. An empty sep splits into characters.
// Empty pieces are dropped.
func splitKeep(text, sep string) []string {
	if sep == "" {
		out := make([]string, 0, utf8.RuneCountInString(text))
		for _, r := range text {
			out = append(out, string(r))
		}
		return out
	}

	parts := strings.Split(text, sep)
	out := make([]string, 0, len(parts))
	if parts[0] != "" {
		out = append(out, parts[0])
	}
	for _, p := range parts[1:] {
		out = append(out, sep+p)
	}
	return out
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
