// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package filter

import (
	_ "embed"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

//go:embed lexicon.yaml
var defaultLexiconYAML []byte

// Lexicon is the domain vocabulary behind the noise heuristics. It is
// data, not logic: deployments for other report families swap the file.
type Lexicon struct {
	// BoilerplatePatterns are regular expressions evaluated against
	// lowercased text. Order is preserved; every pattern is evaluated.
	BoilerplatePatterns []string `yaml:"boilerplate_patterns"`

	// StrongPhrases are lowercase substrings that alone mark boilerplate.
	StrongPhrases []string `yaml:"strong_phrases"`

	// NavHeadings are uppercase headings that together mark a
	// navigation or table-of-contents block.
	NavHeadings []string `yaml:"nav_headings"`

	// FooterMarkers are uppercase substrings identifying footer lines.
	FooterMarkers []string `yaml:"footer_markers"`

	// FooterPrefixes are uppercase prefixes identifying document-code lines.
	FooterPrefixes []string `yaml:"footer_prefixes"`
}

// DefaultLexicon returns the built-in financial-report vocabulary.
func DefaultLexicon() Lexicon {
	lex, err := parseLexicon(defaultLexiconYAML, Lexicon{})
	if err != nil {
		panic(fmt.Sprintf("built-in lexicon: %v", err))
	}
	return lex
}

// LoadLexicon reads a lexicon file. Keys missing from the file keep
// their built-in values. An empty path returns DefaultLexicon.
func LoadLexicon(path string) (Lexicon, error) {
	if path == "" {
		return DefaultLexicon(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Lexicon{}, fmt.Errorf("reading lexicon %s: %w", path, err)
	}
	lex, err := parseLexicon(data, DefaultLexicon())
	if err != nil {
		return Lexicon{}, fmt.Errorf("parsing lexicon %s: %w", path, err)
	}
	return lex, nil
}

func parseLexicon(data []byte, base Lexicon) (Lexicon, error) {
	if err := yaml.Unmarshal(data, &base); err != nil {
		return Lexicon{}, err
	}
	return base, nil
}
