// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pdiddy/report-qa/internal/extract"
	"github.com/pdiddy/report-qa/internal/llm"
	"github.com/pdiddy/report-qa/internal/qa"
	"github.com/pdiddy/report-qa/internal/store"
)

// statusFor maps service errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, qa.ErrEmptyQuestion):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, extract.ErrExtractionFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, llm.ErrUnsupportedProvider):
		return http.StatusInternalServerError
	case errors.Is(err, llm.ErrUnreachable),
		errors.Is(err, llm.ErrHTTPStatus),
		errors.Is(err, llm.ErrMalformedResponse),
		errors.Is(err, llm.ErrMissingCredential):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(statusFor(err), gin.H{"detail": err.Error()})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) stats(c *gin.Context) {
	st, err := s.svc.Stats(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) whoami(c *gin.Context) {
	c.JSON(http.StatusOK, s.svc.WhoAmI())
}

func (s *Server) listDocuments(c *gin.Context) {
	docs, err := s.svc.Documents(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (s *Server) getDocument(c *gin.Context) {
	doc, err := s.svc.Document(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (s *Server) deleteDocument(c *gin.Context) {
	if err := s.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "doc_id": c.Param("id")})
}

func (s *Server) upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": "Missing multipart field \"file\""})
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, fmt.Errorf("reading upload: %w", err))
		return
	}
	defer f.Close()

	res, err := s.svc.Ingest(c.Request.Context(), fh.Filename, f)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) chat(c *gin.Context) {
	var q qa.Question
	if err := c.ShouldBindJSON(&q); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body: " + err.Error()})
		return
	}
	ans, err := s.svc.Answer(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ans)
}

func (s *Server) pdf(c *gin.Context) {
	path, name, err := s.svc.PDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": "PDF not found for that doc_id"})
			return
		}
		fail(c, err)
		return
	}
	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, strings.ReplaceAll(name, `"`, "'")))
	c.File(path)
}

func (s *Server) routes(c *gin.Context) {
	seen := make(map[string]struct{})
	var paths []string
	for _, r := range s.engine.Routes() {
		if _, ok := seen[r.Path]; ok {
			continue
		}
		seen[r.Path] = struct{}{}
		paths = append(paths, r.Path)
	}
	sort.Strings(paths)
	c.JSON(http.StatusOK, paths)
}
