package adapter

import "context"

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// ChatOptions tune a single completion call. Advisory generation runs at
// low temperature with a hard output ceiling to favor determinism.
type ChatOptions struct {
	Temperature float64
	MaxTokens   int
}

// AIServiceAdapter is the port for LLM chat completion.
type AIServiceAdapter interface {
	// Chat returns only the assistant text.
	Chat(ctx context.Context, messages []Message, opts ChatOptions) (string, error)
}
