// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the question-answering service over HTTP with
// gin. The JSON shapes match the web client: errors carry a "detail"
// field and chat answers carry "answer" and "sources".
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/pdiddy/report-qa/internal/qa"
	"github.com/pdiddy/report-qa/pkg/types"
)

const shutdownTimeout = 10 * time.Second

// Service is the application behaviour the handlers need.
type Service interface {
	Ingest(ctx context.Context, name string, r io.Reader) (qa.IngestResult, error)
	Answer(ctx context.Context, q qa.Question) (qa.Answer, error)
	Stats(ctx context.Context) (qa.Stats, error)
	WhoAmI() qa.Identity
	Documents(ctx context.Context) ([]types.Document, error)
	Document(ctx context.Context, id string) (types.Document, error)
	Delete(ctx context.Context, id string) error
	PDF(ctx context.Context, id string) (path, filename string, err error)
}

// Server owns the gin engine and its configuration.
type Server struct {
	svc    Service
	cfg    types.ServerConfig
	log    logrus.FieldLogger
	engine *gin.Engine
}

// New builds the router. A ChatRate of zero disables chat limiting and
// an empty AllowedOrigins list disables CORS.
func New(svc Service, cfg types.ServerConfig, log logrus.FieldLogger) (*Server, error) {
	s := &Server{svc: svc, cfg: cfg, log: log}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))
	if len(cfg.AllowedOrigins) > 0 {
		cc := corsConfig(cfg.AllowedOrigins)
		if err := cc.Validate(); err != nil {
			return nil, fmt.Errorf("server.allowed_origins: %w", err)
		}
		r.Use(cors.New(cc))
	}

	r.GET("/health", s.health)
	r.GET("/stats", s.stats)
	r.GET("/whoami", s.whoami)
	r.GET("/documents", s.listDocuments)
	r.GET("/documents/:id", s.getDocument)
	r.DELETE("/documents/:id", s.deleteDocument)
	r.POST("/upload", s.upload)

	chat := []gin.HandlerFunc{}
	if cfg.ChatRate > 0 {
		burst := max(cfg.ChatBurst, 1)
		chat = append(chat, rateLimit(rate.NewLimiter(rate.Limit(cfg.ChatRate), burst)))
	}
	r.POST("/chat", append(chat, s.chat)...)

	r.GET("/pdf/:id", s.pdf)
	r.GET("/routes", s.routes)

	s.engine = r
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on cfg.Addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.WithField("addr", s.cfg.Addr).Info("http server listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving on %s: %w", s.cfg.Addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	s.log.Info("http server stopped")
	return nil
}
