package session

import (
	"os"
	"path/filepath"
	"testing"
)

func chdirTemp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestSaveLoadRoundTrip(t *testing.T) {
	chdirTemp(t)

	s, err := New("roundtrip")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	s.AddMessage(Message{Role: "user", Content: "hello"})
	s.AddMessage(Message{Role: "assistant", Content: "hi", ToolCalls: []ToolCall{
		{ToolCallID: "tc-1", Name: "read_file", Args: map[string]interface{}{"path": "a.txt"}},
	}})
	if err := s.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load("roundtrip")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.ID != s.ID {
		t.Errorf("Session ID changed on reload: %q != %q", loaded.ID, s.ID)
	}
	if len(loaded.Messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(loaded.Messages))
	}
	if len(loaded.Messages[1].ToolCalls) != 1 || loaded.Messages[1].ToolCalls[0].Name != "read_file" {
		t.Error("Tool calls did not survive the round trip")
	}

	if _, err := os.Stat(filepath.Join(".nexus", "sessions", "roundtrip.json")); err != nil {
		t.Errorf("Expected session file on disk: %v", err)
	}
}

func TestGetInfoCounts(t *testing.T) {
	chdirTemp(t)

	s, err := New("info")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	s.AddMessage(Message{Role: "system", Content: "be helpful"})
	s.AddMessage(Message{Role: "user", Content: "hi"})
	s.AddMessage(Message{Role: "assistant", Content: "hello"})
	s.AddMessage(Message{Role: "tool", Content: "{}"})

	info := s.GetInfo()
	if info.MessageCount != 2 {
		t.Errorf("Expected 2 user/assistant messages, got %d", info.MessageCount)
	}
	if info.ToolCallCount != 1 {
		t.Errorf("Expected 1 tool message, got %d", info.ToolCallCount)
	}
	if info.ID == "" {
		t.Error("Session ID should be set")
	}
}

func TestReset(t *testing.T) {
	chdirTemp(t)

	s, err := New("reset")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	oldID := s.ID
	s.AddMessage(Message{Role: "user", Content: "hi"})

	newID := s.Reset()
	if newID == oldID {
		t.Error("Reset should assign a new session ID")
	}
	if len(s.Messages) != 0 {
		t.Errorf("Reset should clear history, got %d messages", len(s.Messages))
	}
}
