// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/report-qa/internal/qa"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer one question from the indexed reports",
	Long: `Ask retrieves the most relevant page excerpts, generates an answer with
the configured provider and prints it with its sources. Use --doc to
restrict retrieval to one or more documents.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	docs, _ := cmd.Flags().GetStringSlice("doc")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	return withApp(cmd.Context(), func(a *app) error {
		ans, err := a.svc.Answer(cmd.Context(), qa.Question{Text: strings.Join(args, " "), DocIDs: docs})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(ans)
		}

		fmt.Fprintln(out, ans.Answer)
		fmt.Fprintf(out, "\nSources (%d):\n", len(ans.Sources))
		for i, s := range ans.Sources {
			fmt.Fprintf(out, "%2d. [%s p.%d] %s\n", i+1, s.Metadata.DocName, s.Metadata.Page, s.Snippet)
		}
		return nil
	})
}

func init() {
	askCmd.Flags().StringSlice("doc", nil, "restrict retrieval to these document ids (repeatable)")
	askCmd.Flags().Bool("json", false, "print the answer and sources as JSON")
	rootCmd.AddCommand(askCmd)
}
