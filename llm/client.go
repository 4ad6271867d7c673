package llm

import (
	"context"
	"fmt"

	"github.com/m4xw311/nexus/session"
	"github.com/m4xw311/nexus/tools"
)

// LLMClient is the interface for interacting with a Large Language Model.
// Transport failures (network, authentication, quota) surface as errors
// carrying errors.KindAPI; callers decide whether that is fatal.
type LLMClient interface {
	Chat(ctx context.Context, messages []session.Message, availableTools []tools.Tool) (*session.Message, error)
}

// MockLLMClient parrots the last user message. Useful for wiring checks
// without an API key.
type MockLLMClient struct{}

func (m *MockLLMClient) Chat(ctx context.Context, messages []session.Message, availableTools []tools.Tool) (*session.Message, error) {
	last := ""
	if len(messages) > 0 {
		last = messages[len(messages)-1].Content
	}
	return &session.Message{
		Role:    "assistant",
		Content: fmt.Sprintf("I am a mock LLM. You said: '%s'.", last),
	}, nil
}
