package llm

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Options struct {
	Temperature float32
	MaxTokens   int
}

// Provider is a chat-completion backend.
type Provider interface {
	Complete(ctx context.Context, messages []Message, opts Options) (string, error)
	Name() string
	Close() error
}
