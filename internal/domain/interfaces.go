package domain

import "context"

// Roles used in conversation messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// FAQEntry is a static question/answer pair from the local knowledge base.
type FAQEntry struct {
	Question string
	Answer   string
}

// ScoredFAQEntry is a FAQ entry annotated with its overlap score for one query.
type ScoredFAQEntry struct {
	Entry FAQEntry
	Score int
}

// Snippet is a string leaf of the knowledge tree that matched a query.
type Snippet struct {
	Path    string
	Content string
	Score   int
}

// Message is a single conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage reports token accounting of a remote completion. It is zero when the
// answer came from local knowledge.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Reply is the answer returned to the chat caller.
type Reply struct {
	Assistant Message `json:"assistant"`
	Usage     Usage   `json:"usage"`
}

// Completion is what a remote chat-completion provider produced.
type Completion struct {
	Message Message
	Usage   Usage
}

// Completer generates an assistant message from a system prompt followed by the
// conversation. Transport and authentication are up to the implementation.
type Completer interface {
	Name() string
	Complete(ctx context.Context, systemPrompt string, messages []Message) (Completion, error)
}

// ChatService defines the operation exposed by the application core.
type ChatService interface {
	Reply(ctx context.Context, messages []Message) (Reply, error)
}

// LastContent returns the content of the last message, or "" for an empty conversation.
func LastContent(messages []Message) string {
	if len(messages) == 0 {
		return ""
	}
	return messages[len(messages)-1].Content
}
