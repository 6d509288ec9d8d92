package llm

import (
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// NewOllamaProvider creates a provider for a local Ollama server using
// its OpenAI-compatible /v1 endpoint. Ollama ignores the API key but the
// SDK requires one to be present.
func NewOllamaProvider(cfg OllamaConfig) (*OpenAIProvider, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("ollama host is required")
	}

	config := openai.DefaultConfig("ollama")
	config.BaseURL = strings.TrimRight(cfg.Host, "/") + "/v1"

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(config),
		model:  cfg.Model,
		label:  "ollama",
	}, nil
}
