package azure

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"chatconnect/internal/completion"
	"chatconnect/internal/domain"
)

const defaultAPIVersion = "2024-02-15-preview"

// Client calls an Azure OpenAI chat deployment. The deployment is addressed in
// the path and the API version in the query string; auth uses the api-key header.
type Client struct {
	endpoint    string
	apiKey      string
	maxTokens   int
	temperature float64
	client      *http.Client
}

// Config configures the Azure deployment client.
type Config struct {
	Endpoint    string
	Deployment  string
	APIVersion  string
	APIKeyEnv   string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// NewClient creates a client for one deployment.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("azure endpoint is required")
	}
	if cfg.Deployment == "" {
		return nil, errors.New("azure deployment is required")
	}
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "AZURE_OPENAI_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultAPIVersion
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	endpoint := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		strings.TrimRight(cfg.Endpoint, "/"),
		url.PathEscape(cfg.Deployment),
		url.QueryEscape(cfg.APIVersion),
	)
	return &Client{
		endpoint:    endpoint,
		apiKey:      key,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		client:      &http.Client{Timeout: t},
	}, nil
}

// Name returns the identifier of this provider.
func (c *Client) Name() string { return "azure" }

// Complete sends the system prompt and conversation to the deployment.
func (c *Client) Complete(ctx context.Context, systemPrompt string, messages []domain.Message) (domain.Completion, error) {
	temp := c.temperature
	body := completion.Request{
		Messages:    completion.BuildMessages(systemPrompt, messages),
		MaxTokens:   c.maxTokens,
		Temperature: &temp,
	}
	header := http.Header{}
	header.Set("api-key", c.apiKey)
	return completion.Post(ctx, c.client, c.endpoint, header, body)
}
