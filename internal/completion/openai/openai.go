package openai

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"chatconnect/internal/completion"
	"chatconnect/internal/domain"
)

// Client is an OpenAI-compatible chat-completion client using bearer auth.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	client      *http.Client
}

// Config configures the OpenAI-compatible client.
type Config struct {
	BaseURL     string
	APIKeyEnv   string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// NewClient creates a new chat-completion client using the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      key,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		client:      &http.Client{Timeout: t},
	}, nil
}

// Name returns the identifier of this provider.
func (c *Client) Name() string { return "openai" }

// Complete sends the system prompt and conversation to /chat/completions.
func (c *Client) Complete(ctx context.Context, systemPrompt string, messages []domain.Message) (domain.Completion, error) {
	temp := c.temperature
	body := completion.Request{
		Model:       c.model,
		Messages:    completion.BuildMessages(systemPrompt, messages),
		MaxTokens:   c.maxTokens,
		Temperature: &temp,
	}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.apiKey)
	return completion.Post(ctx, c.client, c.baseURL+"/chat/completions", header, body)
}
