// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/pdiddy/report-qa/pkg/types"
)

func (c *Client) generateOllama(ctx context.Context, msgs []types.Turn) (string, error) {
	host := strings.TrimRight(c.cfg.OllamaHost, "/")
	base, err := url.Parse(host)
	if err != nil {
		return "", fmt.Errorf("parsing ollama host %q: %w", host, err)
	}
	client := api.NewClient(base, c.http)

	stream := false
	req := &api.ChatRequest{
		Model:    c.cfg.OllamaModel,
		Messages: toOllamaMessages(msgs),
		Stream:   &stream,
		Options:  map[string]any{"temperature": c.cfg.Temperature},
	}

	var content strings.Builder
	err = client.Chat(ctx, req, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", ollamaError(host, err)
	}
	return content.String(), nil
}

func toOllamaMessages(msgs []types.Turn) []api.Message {
	out := make([]api.Message, len(msgs))
	for i, m := range msgs {
		out[i] = api.Message{Role: string(m.Role), Content: m.Content}
	}
	return out
}

func ollamaError(host string, err error) error {
	var se api.StatusError
	if errors.As(err, &se) {
		body := se.ErrorMessage
		if body == "" {
			body = se.Status
		}
		return newStatusError(ProviderOllama, se.StatusCode, body)
	}
	var ue *url.Error
	if errors.As(err, &ue) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: cannot reach ollama at %s: %w", ErrUnreachable, host, err)
	}
	return fmt.Errorf("%w: ollama: %w", ErrMalformedResponse, err)
}
