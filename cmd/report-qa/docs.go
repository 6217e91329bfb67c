// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/report-qa/pkg/types"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Manage uploaded documents (list, show, rm, export)",
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")
		return withApp(cmd.Context(), func(a *app) error {
			docs, err := a.svc.Documents(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), docs)
			}
			return formatDocuments(cmd.OutOrStdout(), docs)
		})
	},
}

func formatDocuments(w io.Writer, docs []types.Document) error {
	if len(docs) == 0 {
		fmt.Fprintln(w, "No documents. Run: report-qa ingest <pdf>")
		return nil
	}

	fmt.Fprintf(w, "%-36s  %-40s  %-20s  %5s  %6s\n", "Doc ID", "Name", "Uploaded", "Pages", "Chunks")
	fmt.Fprintln(w, strings.Repeat("-", 115))
	for _, d := range docs {
		name := d.Name
		if len(name) > 40 {
			name = name[:37] + "..."
		}
		fmt.Fprintf(w, "%-36s  %-40s  %-20s  %5d  %6d\n",
			d.ID, name, d.UploadedAt.Format("2006-01-02 15:04:05"), d.Pages, d.Chunks)
	}
	fmt.Fprintf(w, "\n%d documents\n", len(docs))
	return nil
}

var docsShowCmd = &cobra.Command{
	Use:   "show <doc-id>",
	Short: "Show one document as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			doc, err := a.svc.Document(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(doc)
		})
	},
}

var docsRmCmd = &cobra.Command{
	Use:   "rm <doc-id>...",
	Short: "Delete documents, their chunks and their stored PDFs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			for _, id := range args {
				if err := a.svc.Delete(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
			}
			return nil
		})
	},
}

var docsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the document registry to YAML or JSON",
	Long: `Export writes every registered document with its indexed chunk count.
Output goes to stdout unless --out names a file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		outPath, _ := cmd.Flags().GetString("out")

		return withApp(cmd.Context(), func(a *app) error {
			w := cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("creating %s: %w", outPath, err)
				}
				defer f.Close()
				w = f
			}

			switch format {
			case "yaml", "":
				return a.store.ExportYAML(cmd.Context(), w)
			case "json":
				return a.store.ExportJSON(cmd.Context(), w)
			default:
				return fmt.Errorf("unsupported format %q: use yaml or json", format)
			}
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the chunk count and storage locations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			st, err := a.svc.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), st)
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Print the configured LLM provider and model",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			return writeJSON(cmd.OutOrStdout(), a.svc.WhoAmI())
		})
	},
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	docsListCmd.Flags().Bool("json", false, "output as JSON")
	docsExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	docsExportCmd.Flags().String("out", "", "write to this file instead of stdout")

	docsCmd.AddCommand(docsListCmd)
	docsCmd.AddCommand(docsShowCmd)
	docsCmd.AddCommand(docsRmCmd)
	docsCmd.AddCommand(docsExportCmd)

	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(whoamiCmd)
}
