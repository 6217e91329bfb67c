// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eval

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/report-qa/internal/httputil"
	"github.com/pdiddy/report-qa/internal/qa"
	"github.com/pdiddy/report-qa/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

func TestHasCitations(t *testing.T) {
	assert.True(t, HasCitations("growth slowed (p.3)"))
	assert.True(t, HasCitations("growth slowed (P. 12)"))
	assert.False(t, HasCitations("growth slowed (page 3)"))
	assert.False(t, HasCitations(""))
}

func TestCitationCoverage(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   float64
	}{
		{"empty", "", 0},
		{"blank lines only", "\n  \n", 0},
		{"all cited", "a (p.1)\nb (p.2)", 1},
		{"half", "ANSWER:\nSpreads widened (p.4)\n\n", 0.5},
		{"case insensitive", "x (P.1)\ny\nz", 1.0 / 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CitationCoverage(tt.answer), 1e-9)
		})
	}
}

func TestDistinctPages(t *testing.T) {
	src := func(doc string, page int) types.Source {
		return types.Source{Metadata: types.ChunkMetadata{DocID: doc, Page: page}}
	}
	assert.Equal(t, 0, DistinctPages(nil))
	assert.Equal(t, 3, DistinctPages([]types.Source{src("a", 1), src("a", 1), src("a", 2), src("b", 1), src("", 4), src("c", 0)}))
}

type apiStub struct {
	docs     []types.Document
	answer   qa.Answer
	throttle int32
	calls    int32
	asked    []qa.Question
}

func (s *apiStub) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /documents", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(s.docs)
	})
	mux.HandleFunc("POST /chat", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&s.calls, 1) <= s.throttle {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		var q qa.Question
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		s.asked = append(s.asked, q)
		_ = json.NewEncoder(w).Encode(s.answer)
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func TestRunnerRun(t *testing.T) {
	stub := &apiStub{
		docs: []types.Document{{ID: "d1"}, {ID: "d2"}},
		answer: qa.Answer{
			Answer: "ANSWER:\nA (p.1)\nB\nC (p.2)",
			Sources: []types.Source{
				{Metadata: types.ChunkMetadata{DocID: "d1", Page: 1}},
				{Metadata: types.ChunkMetadata{DocID: "d1", Page: 2}},
			},
		},
		throttle: 1,
	}
	ts := stub.server(t)
	log, _ := test.NewNullLogger()

	r := NewRunner(Config{BaseURL: ts.URL + "/", Questions: []string{"q1", "q2"}, Route: true}, ts.Client(), log)
	rows, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, Row{
		Question:           "q1",
		Route:              true,
		DocIDsUsed:         []string{"d1", "d2"},
		AnswerHasCitations: true,
		CitationCoverage:   0.5,
		DistinctPages:      2,
		Answer:             "ANSWER:\nA (p.1)\nB\nC (p.2)",
	}, rows[0])

	require.Len(t, stub.asked, 2)
	assert.Equal(t, []string{"d1", "d2"}, stub.asked[0].DocIDs)
	require.NotNil(t, stub.asked[0].Route)
	assert.True(t, *stub.asked[0].Route)
}

func TestRunnerExplicitDocsAndDefaults(t *testing.T) {
	stub := &apiStub{answer: qa.Answer{Answer: "no cites"}}
	ts := stub.server(t)
	log, _ := test.NewNullLogger()

	rows, err := NewRunner(Config{BaseURL: ts.URL, DocIDs: []string{"x"}}, ts.Client(), log).Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, len(DefaultQuestions))
	assert.False(t, rows[0].AnswerHasCitations)
	assert.Equal(t, []string{"x"}, rows[0].DocIDsUsed)
}

func TestRunnerNoDocuments(t *testing.T) {
	ts := (&apiStub{docs: []types.Document{}}).server(t)
	log, _ := test.NewNullLogger()
	_, err := NewRunner(Config{BaseURL: ts.URL}, ts.Client(), log).Run(context.Background())
	require.ErrorIs(t, err, ErrNoDocuments)
}

func TestRunnerSurfacesAPIErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"detail":"ollama unreachable"}`))
	}))
	defer ts.Close()
	log, _ := test.NewNullLogger()

	_, err := NewRunner(Config{BaseURL: ts.URL, DocIDs: []string{"x"}}, ts.Client(), log).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 502: ollama unreachable")
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []Row{{
		Question:           "q, with comma",
		DocIDsUsed:         []string{"a", "b"},
		AnswerHasCitations: true,
		CitationCoverage:   0.667,
		DistinctPages:      3,
		Answer:             "line1\nline2 (p.1)",
	}})
	require.NoError(t, err)

	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, Columns, recs[0])
	assert.Equal(t, []string{"q, with comma", "false", "a|b", "true", "0.667", "3", "line1\nline2 (p.1)"}, recs[1])
}

func TestLoadQuestions(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "q.json")
	require.NoError(t, os.WriteFile(good, []byte(`["one", "two"]`), 0o644))
	qs, err := LoadQuestions(good)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, qs)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`[]`), 0o644))
	_, err = LoadQuestions(empty)
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"q":1}`), 0o644))
	_, err = LoadQuestions(bad)
	assert.Error(t, err)

	_, err = LoadQuestions(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
