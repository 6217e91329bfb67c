// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/report-qa/internal/acquire"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <pdf|url>...",
	Short: "Ingest PDF reports into the index",
	Long: `Ingest copies each PDF into the data directory, extracts its pages,
strips repeated headers and footers, drops boilerplate and chart debris,
and indexes the remaining page-scoped chunks.

Arguments may be local paths or http(s) URLs; URLs are downloaded first.
A file that fails to ingest is reported and the rest continue.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	client := &http.Client{Timeout: cfg.LLM.Timeout}

	tmpDir, err := os.MkdirTemp("", "report-qa-acquire-")
	if err != nil {
		return fmt.Errorf("creating download directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	return withApp(cmd.Context(), func(a *app) error {
		failed := 0
		for _, arg := range args {
			path := arg
			if acquire.IsURL(arg) {
				path, err = acquire.Download(cmd.Context(), client, arg, tmpDir, log)
				if err != nil {
					failed++
					fmt.Fprintf(out, "FAIL  %s: %v\n", arg, err)
					continue
				}
			}

			res, err := a.svc.IngestFile(cmd.Context(), path)
			if err != nil {
				failed++
				fmt.Fprintf(out, "FAIL  %s: %v\n", arg, err)
				continue
			}
			fmt.Fprintf(out, "OK    %s  doc_id=%s pages=%d chunks=%d\n", res.DocName, res.DocID, res.Pages, res.ChunksAdded)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d file(s) failed to ingest", failed, len(args))
		}
		return nil
	})
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
