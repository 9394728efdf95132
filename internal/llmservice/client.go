package llmservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"kb-agent/internal/config"
)

var (
	// ErrNoCredentials means the chat client cannot be authenticated.
	ErrNoCredentials = errors.New("missing llm credentials")
	// ErrUpstream means the chat completion call failed or timed out.
	// Calls are not retried here; retry policy belongs to the caller's
	// environment.
	ErrUpstream = errors.New("llm request failed")
)

// Client is a chat-completion client. It is constructed once per process
// and caches the underlying model client across calls.
type Client struct {
	llm         *openai.LLM
	temperature float64
	timeout     time.Duration
}

func NewClient(cfg *config.LLMConfig) (*Client, error) {
	if strings.TrimSpace(cfg.Key) == "" {
		return nil, fmt.Errorf("%w: set llm.key or KB_LLM_KEY", ErrNoCredentials)
	}
	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoCredentials, err)
	}
	return &Client{
		llm:         llm,
		temperature: cfg.Temperature,
		timeout:     time.Duration(cfg.TimeoutSecs) * time.Second,
	}, nil
}

// Generate runs one system+user exchange and returns the completion text.
// The configured timeout bounds the call so a stuck upstream cannot hang
// the conversation.
func (c *Client) Generate(ctx context.Context, system, user string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextContent{Text: system}},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: user}},
		},
	}

	res, err := c.llm.GenerateContent(ctx, messages, llms.WithTemperature(c.temperature))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if len(res.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrUpstream)
	}
	return res.Choices[0].Content, nil
}
