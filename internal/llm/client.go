// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm generates cited answers from retrieved sources through a
// configurable model backend. The backend is resolved from configuration
// on every call, so a provider change takes effect without rebuilding
// the client.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/report-qa/pkg/types"
)

// Request is the input to a single generation.
type Request struct {
	Question string
	Sources  []types.Source
	History  []types.Turn
}

// Client dispatches generation requests to the configured provider.
type Client struct {
	cfg  types.LLMConfig
	log  logrus.FieldLogger
	http *http.Client
	now  func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used by network providers.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithClock replaces the clock used to derive the default focus year.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New returns a Client for cfg.
func New(cfg types.LLMConfig, log logrus.FieldLogger, opts ...Option) *Client {
	c := &Client{
		cfg:  cfg,
		log:  log,
		http: &http.Client{Timeout: cfg.Timeout},
		now:  time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Provider resolves the configured provider.
func (c *Client) Provider() (Provider, error) {
	return ParseProvider(c.cfg.Provider)
}

// Model returns the model name the configured provider would use.
func (c *Client) Model() string {
	p, err := c.Provider()
	if err != nil {
		return ""
	}
	switch p {
	case ProviderOllama:
		return c.cfg.OllamaModel
	case ProviderOpenAI:
		return c.cfg.OpenAIModel
	default:
		return "mock"
	}
}

// HasKey reports whether an OpenAI key is configured. The key itself is
// never exposed.
func (c *Client) HasKey() bool {
	return strings.TrimSpace(c.cfg.OpenAIAPIKey) != ""
}

// FocusYear is the year named in the forward-looking answer section.
func (c *Client) FocusYear() int {
	if c.cfg.FocusYear > 0 {
		return c.cfg.FocusYear
	}
	return c.now().Year() + 1
}

// Generate produces an answer for req. Network backends receive the
// system instruction, bounded history and a prompt carrying the
// formatted sources.
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	p, err := c.Provider()
	if err != nil {
		return "", err
	}
	if p == ProviderMock {
		return mockAnswer(req.Sources, c.FocusYear()), nil
	}

	sources := FormatSources(req.Sources, c.cfg.MaxSources, c.cfg.MaxCharsPerSource)
	prompt := BuildPrompt(req.Question, sources, c.FocusYear())
	msgs := buildMessages(req.History, c.cfg.HistoryTurns, prompt)

	log := c.log.WithFields(logrus.Fields{
		"provider": p,
		"model":    c.Model(),
		"sources":  len(req.Sources),
	})
	start := time.Now()

	var out string
	switch p {
	case ProviderOllama:
		out, err = c.generateOllama(ctx, msgs)
	case ProviderOpenAI:
		out, err = c.generateOpenAI(ctx, msgs)
	default:
		return "", fmt.Errorf("%w %q", ErrUnsupportedProvider, p)
	}
	if err != nil {
		log.WithError(err).Warn("generation failed")
		return "", err
	}

	out = cleanOutput(out)
	if out == "" {
		return "", fmt.Errorf("%w: %s returned no content", ErrMalformedResponse, p)
	}
	log.WithField("elapsed", time.Since(start).Round(time.Millisecond)).Info("answer generated")
	return out, nil
}
