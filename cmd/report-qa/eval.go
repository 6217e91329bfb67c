// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/report-qa/internal/eval"
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Score answers from a running API for citation coverage",
	Long: `Eval asks a question set against a running report-qa API and writes a
CSV with, per question, whether the answer cites pages, the fraction of
cited lines and the number of distinct pages among its sources.

Start the API first with: report-qa serve`,
	Args: cobra.NoArgs,
	RunE: runEval,
}

func runEval(cmd *cobra.Command, args []string) error {
	baseURL, _ := cmd.Flags().GetString("base-url")
	outPath, _ := cmd.Flags().GetString("out")
	route, _ := cmd.Flags().GetBool("route")
	docIDs, _ := cmd.Flags().GetString("doc-ids")
	questionsPath, _ := cmd.Flags().GetString("questions")
	maxRetries, _ := cmd.Flags().GetInt("max-retries")

	ecfg := eval.Config{BaseURL: baseURL, Route: route, MaxRetries: maxRetries}
	for _, id := range strings.Split(docIDs, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ecfg.DocIDs = append(ecfg.DocIDs, id)
		}
	}
	if questionsPath != "" {
		qs, err := eval.LoadQuestions(questionsPath)
		if err != nil {
			return err
		}
		ecfg.Questions = qs
	}

	client := &http.Client{Timeout: cfg.LLM.Timeout + 30*time.Second}
	rows, err := eval.NewRunner(ecfg, client, log).Run(cmd.Context())
	if err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outPath, err)
	}
	defer f.Close()
	if err := eval.WriteCSV(f, rows); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s with %d rows.\n", outPath, len(rows))
	return nil
}

func init() {
	evalCmd.Flags().String("base-url", "http://localhost:8000", "report-qa API base URL")
	evalCmd.Flags().String("out", "results.csv", "output CSV file")
	evalCmd.Flags().Bool("route", false, "send route=true with each question")
	evalCmd.Flags().String("doc-ids", "", "comma-separated document ids (blank = all documents)")
	evalCmd.Flags().String("questions", "", "JSON file with an array of questions")
	evalCmd.Flags().Int("max-retries", 5, "retries per request on HTTP 429")
	rootCmd.AddCommand(evalCmd)
}
