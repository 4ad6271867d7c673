package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ToolCall is a model-requested tool invocation carried on a message.
type ToolCall struct {
	ToolCallID string                 `json:"tool_call_id"`
	Name       string                 `json:"name"`
	Args       map[string]interface{} `json:"args,omitempty"`
}

type Message struct {
	Role      string     `json:"role"` // "system", "user", "assistant", "tool"
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

type Session struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Mode          string    `json:"mode,omitempty"`
	Toolset       string    `json:"toolset,omitempty"`
	ToolVerbosity string    `json:"tool_verbosity,omitempty"`
	Messages      []Message `json:"messages"`
	path          string
}

// Info summarizes a session for display.
type Info struct {
	ID            string `json:"session_id"`
	Name          string `json:"name"`
	MessageCount  int    `json:"message_count"`
	ToolCallCount int    `json:"tool_call_count"`
}

// New creates a new session with a fresh ID.
func New(name string) (*Session, error) {
	path, err := getSessionPath(name)
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:       uuid.NewString(),
		Name:     name,
		Messages: []Message{},
		path:     path,
	}, nil
}

// Load loads an existing session from disk.
func Load(name string) (*Session, error) {
	path, err := getSessionPath(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read session file %s: %w", path, err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("could not parse session file %s: %w", path, err)
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.path = path
	return &s, nil
}

// Save writes the current session state to disk.
func (s *Session) Save() error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize session: %w", err)
	}
	return os.WriteFile(s.path, data, 0644)
}

// AddMessage appends a message to the session history.
func (s *Session) AddMessage(msg Message) {
	s.Messages = append(s.Messages, msg)
}

// ClearHistory drops all messages but keeps the session identity.
func (s *Session) ClearHistory() {
	s.Messages = []Message{}
}

// Reset clears history and assigns a new session ID.
func (s *Session) Reset() string {
	s.ID = uuid.NewString()
	s.Messages = []Message{}
	return s.ID
}

// GetInfo returns display counters for the session. Tool-role messages count
// as tool calls; system messages are excluded from the message count.
func (s *Session) GetInfo() Info {
	info := Info{ID: s.ID, Name: s.Name}
	for _, msg := range s.Messages {
		switch msg.Role {
		case "user", "assistant":
			info.MessageCount++
		case "tool":
			info.ToolCallCount++
		}
	}
	return info
}

func getSessionPath(name string) (string, error) {
	sessionDir := filepath.Join(".nexus", "sessions")
	if err := os.MkdirAll(sessionDir, 0755); err != nil {
		return "", fmt.Errorf("could not create session directory: %w", err)
	}
	return filepath.Join(sessionDir, fmt.Sprintf("%s.json", name)), nil
}
