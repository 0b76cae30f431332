package ai

import (
	"context"
	"time"

	"agro-advisory/internal/domain/ports/adapter"
)

var _ adapter.AIServiceAdapter = (*NoopAIAdapter)(nil)

// NoopAIAdapter implements adapter.AIServiceAdapter for local/dev runs.
// It returns a canned structured response instead of calling a provider.
type NoopAIAdapter struct{}

func NewNoopAIAdapter() *NoopAIAdapter { return &NoopAIAdapter{} }

func (a *NoopAIAdapter) Chat(ctx context.Context, messages []adapter.Message, opts adapter.ChatOptions) (string, error) {
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return `{"header":"Development advisory","items":[{"crop":"maize","advice":"This is a noop AI response."}]}`, nil
}
