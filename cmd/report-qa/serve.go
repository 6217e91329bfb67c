// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/report-qa/internal/mcpserver"
	"github.com/pdiddy/report-qa/internal/server"
	"github.com/pdiddy/report-qa/internal/tui"
	"github.com/pdiddy/report-qa/internal/watch"
)

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve starts the HTTP API used by the web client: upload, chat,
documents, PDF viewing, stats and health endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}
		ctx, stop := signalContext(cmd.Context())
		defer stop()

		return withApp(ctx, func(a *app) error {
			srv, err := server.New(a.svc, cfg.Server, log)
			if err != nil {
				return err
			}
			return srv.Run(ctx)
		})
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the reports in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		docs, _ := cmd.Flags().GetStringSlice("doc")
		return withApp(cmd.Context(), func(a *app) error {
			return tui.Run(cmd.Context(), a.svc, docs, cfg.LLM.HistoryTurns)
		})
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the ask and list_documents tools over MCP stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext(cmd.Context())
		defer stop()
		return withApp(ctx, func(a *app) error {
			return mcpserver.New(a.svc, version, log).Run(ctx)
		})
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Ingest PDFs as they are dropped into a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext(cmd.Context())
		defer stop()
		return withApp(ctx, func(a *app) error {
			return watch.New(args[0], a.svc, log).Run(ctx)
		})
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config, :8000)")
	chatCmd.Flags().StringSlice("doc", nil, "restrict retrieval to these document ids (repeatable)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(watchCmd)
}
