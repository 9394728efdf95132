package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"kb-agent/internal/config"
)

// ErrEmbedding marks failures of the underlying embedding model. These
// always abort the enclosing ingestion or query.
var ErrEmbedding = errors.New("embedding failed")

// Provider maps a text string to a fixed-dimension dense vector. For a
// fixed model the mapping is deterministic and every vector has the same
// length.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// LangchainProvider wraps a langchaingo embedder. The underlying model
// client is costly to set up, so one provider is constructed per process
// and passed to the components that need it.
type LangchainProvider struct {
	embedder *embeddings.EmbedderImpl
}

// NewOllamaProvider builds a provider backed by a local ollama server.
func NewOllamaProvider(cfg *config.LLMConfig) (*LangchainProvider, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(cfg.BaseURL),
		ollama.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("init ollama embedding model: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	return &LangchainProvider{embedder: embedder}, nil
}

// NewOpenAIProvider builds a provider backed by an OpenAI-compatible
// endpoint such as OpenRouter.
func NewOpenAIProvider(cfg *config.LLMConfig) (*LangchainProvider, error) {
	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("init embedding model: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	return &LangchainProvider{embedder: embedder}, nil
}

func (p *LangchainProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := p.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}
	return vec, nil
}
