// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mcpserver exposes question answering to MCP clients over stdio.
package mcpserver

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/report-qa/internal/qa"
	"github.com/pdiddy/report-qa/pkg/types"
)

// Name is the implementation name reported to clients.
const Name = "report-qa"

// Service is the subset of the QA service the tools call.
type Service interface {
	Answer(ctx context.Context, q qa.Question) (qa.Answer, error)
	Documents(ctx context.Context) ([]types.Document, error)
}

// Server wraps an MCP server with the report-qa tools registered.
type Server struct {
	svc    Service
	log    logrus.FieldLogger
	server *mcp.Server
}

// New registers the ask and list_documents tools.
func New(svc Service, version string, log logrus.FieldLogger) *Server {
	s := &Server{
		svc:    svc,
		log:    log,
		server: mcp.NewServer(&mcp.Implementation{Name: Name, Version: version}, nil),
	}
	s.registerTools()
	return s
}

// MCP returns the underlying server, for in-process transports.
func (s *Server) MCP() *mcp.Server {
	return s.server
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("mcp server running on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// AskInput is the input schema of the ask tool.
type AskInput struct {
	Question string   `json:"question" jsonschema:"the question to answer from the indexed reports"`
	DocIDs   []string `json:"doc_ids,omitempty" jsonschema:"optional document ids to restrict retrieval to"`
}

// AskOutput is the cited answer and the passages it was grounded in.
type AskOutput struct {
	Answer  string         `json:"answer"`
	Sources []SourceOutput `json:"sources"`
}

// SourceOutput is one retrieved passage.
type SourceOutput struct {
	DocID   string `json:"doc_id"`
	DocName string `json:"doc_name"`
	Page    int    `json:"page"`
	Snippet string `json:"snippet"`
}

// ListDocumentsInput takes no arguments.
type ListDocumentsInput struct{}

// ListDocumentsOutput lists the registered documents, newest first.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput describes one registered document.
type DocumentOutput struct {
	DocID      string `json:"doc_id"`
	DocName    string `json:"doc_name"`
	UploadedAt string `json:"uploaded_at"`
	Pages      int    `json:"pages"`
	Chunks     int    `json:"chunks"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from the indexed PDF reports with page citations",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List the uploaded PDF reports",
	}, s.handleListDocuments)
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	ans, err := s.svc.Answer(ctx, qa.Question{Text: input.Question, DocIDs: input.DocIDs})
	if err != nil {
		return nil, AskOutput{}, err
	}

	out := AskOutput{Answer: ans.Answer, Sources: make([]SourceOutput, len(ans.Sources))}
	for i, src := range ans.Sources {
		out.Sources[i] = SourceOutput{
			DocID:   src.Metadata.DocID,
			DocName: src.Metadata.DocName,
			Page:    src.Metadata.Page,
			Snippet: src.Snippet,
		}
	}
	s.log.WithField("sources", len(out.Sources)).Debug("mcp ask answered")
	return nil, out, nil
}

func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	docs, err := s.svc.Documents(ctx)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	out := ListDocumentsOutput{Documents: make([]DocumentOutput, len(docs)), Count: len(docs)}
	for i, d := range docs {
		out.Documents[i] = DocumentOutput{
			DocID:      d.ID,
			DocName:    d.Name,
			UploadedAt: d.UploadedAt.Format(time.RFC3339),
			Pages:      d.Pages,
			Chunks:     d.Chunks,
		}
	}
	return nil, out, nil
}
