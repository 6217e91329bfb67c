// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/report-qa/internal/cite"
	"github.com/pdiddy/report-qa/pkg/types"
)

// SystemPrompt is sent as the first message of every generation.
const SystemPrompt = "You are a careful investment/markets analyst. " +
	"You must ONLY use the provided CONTEXT excerpts. " +
	"You must cite page numbers exactly as (p.X). " +
	"Never invent or guess page numbers."

const promptTemplate = `You are a careful analyst answering questions about a PDF report.
Use ONLY the CONTEXT provided. Do not use outside knowledge.

Hard rules:
- For ANSWER / KEY THEMES / WHAT TO FOCUS ON IN %[1]d:
  - Every factual claim must include at least one citation like (p.7).
  - Do not invent page numbers.
  - If the context is insufficient for ANSWER, say exactly:
    "%[2]s"
- For GAPS:
  - Do NOT use citations.
  - Do NOT say "%[2]s"
  - Write analyst-style gaps as a checklist: "Missing: <thing>. Look for: <what/where>."
  - GAPS should be 2-5 bullets.

Output exactly these headers: ANSWER, KEY THEMES, WHAT TO FOCUS ON IN %[1]d, GAPS.

Return EXACTLY this format:

ANSWER:
<2-6 sentences, each with citations OR the exact insufficient-info sentence>

KEY THEMES:
- <theme> (p.X)

WHAT TO FOCUS ON IN %[1]d:
- <actionable focus> (p.X)

GAPS:
- Missing: <thing>. Look for: <what/where to find it>.

QUESTION:
%[3]s

CONTEXT:
%[4]s
`

var whitespaceRe = regexp.MustCompile(`\s+`)

func normalizeWS(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// truncate cuts s to n characters and marks the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

// FormatSources renders the CONTEXT block: the first maxSources sources,
// each as "[<doc name> p.<page>] <text>", separated by blank lines.
func FormatSources(sources []types.Source, maxSources, maxChars int) string {
	if maxSources >= 0 && len(sources) > maxSources {
		sources = sources[:maxSources]
	}
	parts := make([]string, 0, len(sources))
	for _, s := range sources {
		name := s.Metadata.DocName
		if name == "" {
			name = "report"
		}
		text := truncate(normalizeWS(s.Text), maxChars)
		parts = append(parts, fmt.Sprintf("[%s p.%d] %s", name, s.Metadata.Page, text))
	}
	return strings.Join(parts, "\n\n")
}

// BuildPrompt returns the user prompt for question over the formatted
// context block.
func BuildPrompt(question, context string, year int) string {
	return fmt.Sprintf(promptTemplate, year, cite.Fallback, question, context)
}

// BoundHistory keeps the user and assistant turns with content among the
// last n turns of history.
func BoundHistory(history []types.Turn, n int) []types.Turn {
	if n <= 0 {
		return nil
	}
	if len(history) > n {
		history = history[len(history)-n:]
	}
	var out []types.Turn
	for _, t := range history {
		content := strings.TrimSpace(t.Content)
		if content == "" {
			continue
		}
		if t.Role != types.RoleUser && t.Role != types.RoleAssistant {
			continue
		}
		out = append(out, types.Turn{Role: t.Role, Content: content})
	}
	return out
}

// buildMessages assembles the system instruction, bounded history and
// the final user prompt.
func buildMessages(history []types.Turn, historyTurns int, prompt string) []types.Turn {
	bounded := BoundHistory(history, historyTurns)
	msgs := make([]types.Turn, 0, len(bounded)+2)
	msgs = append(msgs, types.Turn{Role: types.RoleSystem, Content: SystemPrompt})
	msgs = append(msgs, bounded...)
	msgs = append(msgs, types.Turn{Role: types.RoleUser, Content: prompt})
	return msgs
}

// cleanOutput normalises line endings and trims the response.
func cleanOutput(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\r\n", "\n"))
}
