// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"regexp"
	"strings"
)

var wordRe = regexp.MustCompile(`[\p{L}\p{N}]+`)

// Tokens returns the distinct lowercased word tokens of text in order of
// first appearance.
func Tokens(text string) []string {
	words := wordRe.FindAllString(strings.ToLower(text), -1)
	seen := make(map[string]struct{}, len(words))
	out := words[:0]
	for _, w := range words {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// matchExpr builds an FTS5 query matching any of tokens. Each token is
// quoted so operator words such as OR or NEAR are searched literally.
func matchExpr(tokens []string) string {
	quoted := make([]string, len(tokens))
	for i, t := range tokens {
		quoted[i] = `"` + t + `"`
	}
	return strings.Join(quoted, " OR ")
}
