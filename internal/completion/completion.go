// Package completion holds the chat-completion wire format shared by the
// remote providers, plus the error kinds the composer tells apart.
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"chatconnect/internal/domain"
)

var (
	// ErrUnavailable means the provider could not be reached or answered with a non-2xx status.
	ErrUnavailable = errors.New("completion provider unavailable")
	// ErrMalformedResponse means the provider answered 2xx with an unusable body.
	ErrMalformedResponse = errors.New("malformed completion response")
)

// Request is the body of a chat-completion call.
type Request struct {
	Model       string           `json:"model,omitempty"`
	Messages    []domain.Message `json:"messages"`
	MaxTokens   int              `json:"max_tokens,omitempty"`
	Temperature *float64         `json:"temperature,omitempty"`
}

type response struct {
	Choices []struct {
		Message *domain.Message `json:"message"`
	} `json:"choices"`
	Usage *domain.Usage `json:"usage"`
}

// BuildMessages puts the system prompt in front of the conversation.
func BuildMessages(systemPrompt string, conversation []domain.Message) []domain.Message {
	out := make([]domain.Message, 0, len(conversation)+1)
	out = append(out, domain.Message{Role: domain.RoleSystem, Content: systemPrompt})
	return append(out, conversation...)
}

// Post sends body as JSON to url and decodes a chat-completion response.
// It never retries.
func Post(ctx context.Context, client *http.Client, url string, header http.Header, body Request) (domain.Completion, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return domain.Completion{}, fmt.Errorf("marshal completion request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return domain.Completion{}, fmt.Errorf("create completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return domain.Completion{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.Completion{}, fmt.Errorf("%w: %s: %s", ErrUnavailable, resp.Status, strings.TrimSpace(string(snippet)))
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.Completion{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message == nil {
		return domain.Completion{}, fmt.Errorf("%w: no choices", ErrMalformedResponse)
	}
	msg := *out.Choices[0].Message
	if msg.Role == "" {
		msg.Role = domain.RoleAssistant
	}
	c := domain.Completion{Message: msg}
	if out.Usage != nil {
		c.Usage = *out.Usage
	}
	return c, nil
}
