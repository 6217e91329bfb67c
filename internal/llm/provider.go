// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"fmt"
	"strings"
)

// Provider identifies a generative-model backend.
type Provider string

const (
	ProviderMock   Provider = "MOCK"
	ProviderOllama Provider = "OLLAMA"
	ProviderOpenAI Provider = "OPENAI"
)

// Providers lists every supported backend.
var Providers = []Provider{ProviderMock, ProviderOllama, ProviderOpenAI}

// ParseProvider resolves a provider name case-insensitively.
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToUpper(strings.TrimSpace(s)))
	switch p {
	case ProviderMock, ProviderOllama, ProviderOpenAI:
		return p, nil
	}
	return "", fmt.Errorf("%w %q (use MOCK, OLLAMA or OPENAI)", ErrUnsupportedProvider, s)
}

func (p Provider) String() string { return string(p) }
