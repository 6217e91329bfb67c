// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package eval runs a fixed question set against a running report-qa API
// and scores the answers for citation discipline.
package eval

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/report-qa/internal/httputil"
	"github.com/pdiddy/report-qa/internal/qa"
	"github.com/pdiddy/report-qa/pkg/types"
)

// ErrNoDocuments is returned when there is nothing to evaluate against.
var ErrNoDocuments = errors.New("no documents found, upload PDFs first")

// DefaultQuestions is the built-in evaluation set.
var DefaultQuestions = []string{
	"Summarize the report and list key themes.",
	"What does the report say about secondaries and liquidity?",
	"What does it say about private credit outlook for 2026?",
	"What are the biggest risks mentioned? Provide cited bullets.",
	"List any quantitative figures mentioned in the excerpts (with citations).",
	"Compare the two most different themes across the uploaded reports (with citations).",
	"What is missing or unclear in the report(s)? Provide analyst-style GAPS.",
	"Give 3 actionable takeaways for an LP allocator (with citations).",
}

// Columns is the CSV header, in order.
var Columns = []string{
	"question",
	"route",
	"doc_ids_used",
	"answer_has_citations",
	"citation_coverage",
	"distinct_pages_cited",
	"answer",
}

// Config controls an evaluation run.
type Config struct {
	BaseURL string

	// DocIDs restricts the run; empty means every registered document.
	DocIDs    []string
	Questions []string
	Route     bool

	// MaxRetries bounds retries on HTTP 429 per request.
	MaxRetries int
}

// Row is one scored answer.
type Row struct {
	Question           string
	Route              bool
	DocIDsUsed         []string
	AnswerHasCitations bool
	CitationCoverage   float64
	DistinctPages      int
	Answer             string
}

// Runner talks to the API over HTTP.
type Runner struct {
	cfg    Config
	client *http.Client
	log    logrus.FieldLogger
}

// NewRunner creates a runner. Empty Questions fall back to
// DefaultQuestions.
func NewRunner(cfg Config, client *http.Client, log logrus.FieldLogger) *Runner {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if len(cfg.Questions) == 0 {
		cfg.Questions = DefaultQuestions
	}
	return &Runner{cfg: cfg, client: client, log: log}
}

// Run asks every question and returns the scored rows.
func (r *Runner) Run(ctx context.Context) ([]Row, error) {
	docIDs := r.cfg.DocIDs
	if len(docIDs) == 0 {
		docs, err := r.documents(ctx)
		if err != nil {
			return nil, err
		}
		for _, d := range docs {
			docIDs = append(docIDs, d.ID)
		}
	}
	if len(docIDs) == 0 {
		return nil, ErrNoDocuments
	}

	rows := make([]Row, 0, len(r.cfg.Questions))
	for i, q := range r.cfg.Questions {
		r.log.WithField("progress", fmt.Sprintf("%d/%d", i+1, len(r.cfg.Questions))).Info(q)

		route := r.cfg.Route
		ans, err := r.ask(ctx, qa.Question{Text: q, DocIDs: docIDs, Route: &route})
		if err != nil {
			return rows, fmt.Errorf("question %d: %w", i+1, err)
		}
		rows = append(rows, Row{
			Question:           q,
			Route:              route,
			DocIDsUsed:         docIDs,
			AnswerHasCitations: HasCitations(ans.Answer),
			CitationCoverage:   math.Round(CitationCoverage(ans.Answer)*1000) / 1000,
			DistinctPages:      DistinctPages(ans.Sources),
			Answer:             ans.Answer,
		})
	}
	return rows, nil
}

func (r *Runner) documents(ctx context.Context) ([]types.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.BaseURL+"/documents", nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	var docs []types.Document
	if err := r.do(ctx, req, &docs); err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	return docs, nil
}

func (r *Runner) ask(ctx context.Context, q qa.Question) (qa.Answer, error) {
	body, err := json.Marshal(q)
	if err != nil {
		return qa.Answer{}, fmt.Errorf("encoding question: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.BaseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return qa.Answer{}, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var ans qa.Answer
	if err := r.do(ctx, req, &ans); err != nil {
		return qa.Answer{}, err
	}
	return ans, nil
}

func (r *Runner) do(ctx context.Context, req *http.Request, out any) error {
	resp, err := httputil.DoWithRetry(ctx, r.client, req, r.cfg.MaxRetries, r.log)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Detail string `json:"detail"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(data, &e) != nil || e.Detail == "" {
			e.Detail = strings.TrimSpace(string(data))
		}
		return fmt.Errorf("%s %s: HTTP %d: %s", req.Method, req.URL.Path, resp.StatusCode, e.Detail)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", req.URL.Path, err)
	}
	return nil
}

// WriteCSV writes the header and one record per row.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, row := range rows {
		rec := []string{
			row.Question,
			strconv.FormatBool(row.Route),
			strings.Join(row.DocIDsUsed, "|"),
			strconv.FormatBool(row.AnswerHasCitations),
			strconv.FormatFloat(row.CitationCoverage, 'f', -1, 64),
			strconv.Itoa(row.DistinctPages),
			row.Answer,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// LoadQuestions reads a JSON array of question strings.
func LoadQuestions(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading questions: %w", err)
	}
	var qs []string
	if err := json.Unmarshal(data, &qs); err != nil {
		return nil, fmt.Errorf("parsing questions %s: %w", path, err)
	}
	if len(qs) == 0 {
		return nil, fmt.Errorf("questions file %s is empty", path)
	}
	return qs, nil
}
