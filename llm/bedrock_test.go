package llm

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/m4xw311/nexus/session"
	"github.com/m4xw311/nexus/tools"
)

// MockTool is a simple mock tool for testing
type MockTool struct {
	name        string
	description string
}

func (m *MockTool) Name() string {
	return m.name
}

func (m *MockTool) Description() string {
	return m.description
}

func (m *MockTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	return "mock result", nil
}

func TestConvertMessagesToAnthropicFormat(t *testing.T) {
	messages := []session.Message{
		{Role: "system", Content: "You are helpful."},
		{Role: "user", Content: "Hello, world!"},
		{Role: "assistant", Content: "Hello! How can I help you?"},
	}

	result, systemPrompt := convertMessagesToAnthropicFormat(messages)
	if len(result) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(result))
	}
	if systemPrompt != "You are helpful." {
		t.Errorf("Expected system prompt to be extracted, got %q", systemPrompt)
	}
	if result[0]["role"] != "user" {
		t.Errorf("Expected role 'user', got '%s'", result[0]["role"])
	}
	if result[1]["role"] != "assistant" {
		t.Errorf("Expected role 'assistant', got '%s'", result[1]["role"])
	}
}

func TestConvertMessagesToAnthropicFormatToolCalls(t *testing.T) {
	messages := []session.Message{
		{
			Role: "assistant",
			ToolCalls: []session.ToolCall{
				{ToolCallID: "tc-1", Name: "read_file", Args: map[string]interface{}{"path": "a.txt"}},
			},
		},
		{
			Role:      "tool",
			Content:   "file contents",
			ToolCalls: []session.ToolCall{{ToolCallID: "tc-1", Name: "read_file"}},
		},
	}

	result, _ := convertMessagesToAnthropicFormat(messages)
	if len(result) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(result))
	}

	content := result[0]["content"].([]map[string]interface{})
	if content[0]["type"] != "tool_use" || content[0]["name"] != "read_file" {
		t.Errorf("Expected a tool_use block for read_file, got %v", content[0])
	}

	resultContent := result[1]["content"].([]map[string]interface{})
	if resultContent[0]["type"] != "tool_result" || resultContent[0]["tool_use_id"] != "tc-1" {
		t.Errorf("Expected a tool_result block for tc-1, got %v", resultContent[0])
	}
}

func TestCreateAnthropicRequest(t *testing.T) {
	messages := []map[string]interface{}{
		{"role": "user", "content": "hi"},
	}
	mockTool := &MockTool{name: "list_dir", description: "Lists a directory"}

	body, err := createAnthropicRequest(messages, "be terse", []tools.Tool{mockTool}, 0.3)
	if err != nil {
		t.Fatalf("createAnthropicRequest failed: %v", err)
	}

	var request map[string]interface{}
	if err := json.Unmarshal(body, &request); err != nil {
		t.Fatalf("Request body is not valid JSON: %v", err)
	}
	if request["system"] != "be terse" {
		t.Errorf("Expected system prompt in request, got %v", request["system"])
	}
	if request["temperature"] != 0.3 {
		t.Errorf("Expected temperature 0.3, got %v", request["temperature"])
	}
	toolDecls := request["tools"].([]interface{})
	if len(toolDecls) != 1 {
		t.Fatalf("Expected 1 tool declaration, got %d", len(toolDecls))
	}
}

func TestProcessBedrockResponse(t *testing.T) {
	body := []byte(`{
		"content": [
			{"type": "text", "text": "Calling a tool."},
			{"type": "tool_use", "id": "tu-1", "name": "write_file", "input": {"path": "b.txt", "content": "x"}}
		]
	}`)

	msg, err := processBedrockResponse(body)
	if err != nil {
		t.Fatalf("processBedrockResponse failed: %v", err)
	}
	if msg.Content != "Calling a tool." {
		t.Errorf("Unexpected content: %q", msg.Content)
	}
	if len(msg.ToolCalls) != 1 || msg.ToolCalls[0].Name != "write_file" || msg.ToolCalls[0].ToolCallID != "tu-1" {
		t.Errorf("Unexpected tool calls: %v", msg.ToolCalls)
	}
}

func TestProcessBedrockResponseError(t *testing.T) {
	if _, err := processBedrockResponse([]byte(`{"error": "throttled"}`)); err == nil {
		t.Error("Expected an error for an error response body")
	}
}
