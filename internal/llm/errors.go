// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedProvider is returned for a provider name outside Providers.
	ErrUnsupportedProvider = errors.New("unsupported LLM provider")

	// ErrUnreachable is returned when the backend cannot be contacted or
	// the call times out.
	ErrUnreachable = errors.New("LLM backend unreachable")

	// ErrHTTPStatus is matched by every *StatusError.
	ErrHTTPStatus = errors.New("LLM backend returned an error status")

	// ErrMalformedResponse is returned when the backend answers without
	// usable content.
	ErrMalformedResponse = errors.New("malformed LLM response")

	// ErrMissingCredential is returned before any network call when a
	// provider needs a key that is not configured.
	ErrMissingCredential = errors.New("missing LLM credential")
)

// maxErrorBody bounds the response body carried by a StatusError.
const maxErrorBody = 500

// StatusError reports a non-success HTTP status from a backend.
type StatusError struct {
	Provider   Provider
	StatusCode int
	Body       string
}

func newStatusError(p Provider, code int, body string) *StatusError {
	if r := []rune(body); len(r) > maxErrorBody {
		body = string(r[:maxErrorBody])
	}
	return &StatusError{Provider: p, StatusCode: code, Body: body}
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned HTTP %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s returned HTTP %d: %s", e.Provider, e.StatusCode, e.Body)
}

// Is makes errors.Is(err, ErrHTTPStatus) hold for any StatusError.
func (e *StatusError) Is(target error) bool {
	return target == ErrHTTPStatus
}
