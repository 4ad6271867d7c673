package llm

import (
	"context"
	"sync"

	"github.com/m4xw311/nexus/errors"
	"github.com/m4xw311/nexus/session"
	"github.com/m4xw311/nexus/tools"
)

// ScriptedResponse configures one model turn in a scripted sequence.
type ScriptedResponse struct {
	Message session.Message
	Err     error
}

// ScriptedClient is a deterministic LLMClient for tests. Responses are
// consumed strictly in order; exhausting the script is an error.
type ScriptedClient struct {
	mu        sync.Mutex
	index     int
	responses []ScriptedResponse
}

func NewScriptedClient(responses ...ScriptedResponse) *ScriptedClient {
	cloned := make([]ScriptedResponse, len(responses))
	copy(cloned, responses)
	return &ScriptedClient{responses: cloned}
}

var _ LLMClient = (*ScriptedClient)(nil)

func (c *ScriptedClient) Chat(ctx context.Context, messages []session.Message, availableTools []tools.Tool) (*session.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.index >= len(c.responses) {
		return nil, errors.E(errors.KindAPI, "script exhausted at turn %d", c.index+1)
	}
	current := c.responses[c.index]
	c.index++
	if current.Err != nil {
		return nil, current.Err
	}
	msg := current.Message
	if msg.Role == "" {
		msg.Role = "assistant"
	}
	return &msg, nil
}

// Calls reports how many turns have been consumed.
func (c *ScriptedClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// Text is a convenience for a plain assistant text turn.
func Text(content string) ScriptedResponse {
	return ScriptedResponse{Message: session.Message{Role: "assistant", Content: content}}
}

// APIFailure is a convenience for a transport-level failure turn.
func APIFailure(format string, a ...interface{}) ScriptedResponse {
	return ScriptedResponse{Err: errors.E(errors.KindAPI, format, a...)}
}
