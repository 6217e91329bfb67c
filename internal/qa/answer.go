// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package qa

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/report-qa/internal/cite"
	"github.com/pdiddy/report-qa/internal/llm"
	"github.com/pdiddy/report-qa/internal/retrieve"
	"github.com/pdiddy/report-qa/pkg/types"
)

// Question is one chat request. DocIDs takes precedence over DocID; with
// neither set the whole index is searched. Route is accepted for client
// compatibility and has no effect.
type Question struct {
	Text    string       `json:"question"`
	DocID   string       `json:"doc_id,omitempty"`
	DocIDs  []string     `json:"doc_ids,omitempty"`
	Route   *bool        `json:"route,omitempty"`
	History []types.Turn `json:"history,omitempty"`
}

// Answer is a generated, citation-checked answer and the sources it was
// given.
type Answer struct {
	Answer  string         `json:"answer"`
	Sources []types.Source `json:"sources"`
}

// Answer retrieves sources for q, generates an answer and enforces the
// page-citation contract on it.
func (s *Service) Answer(ctx context.Context, q Question) (Answer, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return Answer{}, ErrEmptyQuestion
	}

	scope := retrieve.Scope{DocID: q.DocID, DocIDs: q.DocIDs}
	sources, err := s.retriever.Retrieve(ctx, text, s.cfg.K, scope)
	if err != nil {
		return Answer{}, fmt.Errorf("retrieving sources: %w", err)
	}
	if sources == nil {
		sources = []types.Source{}
	}

	out, err := s.gen.Generate(ctx, llm.Request{Question: text, Sources: sources, History: q.History})
	if err != nil {
		return Answer{}, fmt.Errorf("generating answer: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"docs":    len(scope.Targets()),
		"sources": len(sources),
		"history": len(q.History),
	}).Debug("question answered")

	return Answer{Answer: cite.Enforce(out), Sources: sources}, nil
}
