// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	openai "github.com/meguminnnnnnnnn/go-openai"

	"github.com/pdiddy/report-qa/pkg/types"
)

func (c *Client) generateOpenAI(ctx context.Context, msgs []types.Turn) (string, error) {
	key := strings.TrimSpace(c.cfg.OpenAIAPIKey)
	if key == "" {
		return "", fmt.Errorf("%w: OPENAI_API_KEY is not set", ErrMissingCredential)
	}

	cfg := openai.DefaultConfig(key)
	if base := strings.TrimSpace(c.cfg.OpenAIBaseURL); base != "" {
		cfg.BaseURL = strings.TrimRight(base, "/")
	}
	cfg.HTTPClient = c.http
	client := openai.NewClientWithConfig(cfg)

	temp := float32(c.cfg.Temperature)
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.OpenAIModel,
		Temperature: &temp,
		Messages:    toOpenAIMessages(msgs),
	})
	if err != nil {
		return "", openAIError(cfg.BaseURL, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: openai returned no choices", ErrMalformedResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

func toOpenAIMessages(msgs []types.Turn) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(msgs))
	for i, m := range msgs {
		out[i] = openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content}
	}
	return out
}

func openAIError(baseURL string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return newStatusError(ProviderOpenAI, apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return newStatusError(ProviderOpenAI, reqErr.HTTPStatusCode, reqErr.Error())
	}
	var ue *url.Error
	if errors.As(err, &ue) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: cannot reach openai at %s: %w", ErrUnreachable, baseURL, err)
	}
	return fmt.Errorf("%w: openai: %w", ErrMalformedResponse, err)
}
