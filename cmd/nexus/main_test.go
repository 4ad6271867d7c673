package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m4xw311/nexus/agent"
	"github.com/m4xw311/nexus/config"
	"github.com/m4xw311/nexus/goal"
	"github.com/m4xw311/nexus/llm"
	"github.com/m4xw311/nexus/session"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(old) })
	return dir
}

func TestDefaultSessionName(t *testing.T) {
	dir := chdirTemp(t)
	name := defaultSessionName()
	if !strings.HasPrefix(name, filepath.Base(dir)+"_") {
		t.Errorf("session name %q not derived from working directory %q", name, dir)
	}
}

func TestNewLLMClientFallsBackToMock(t *testing.T) {
	client, err := newLLMClient(context.Background(), &config.Config{LLMClient: "mock"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := client.(*llm.MockLLMClient); !ok {
		t.Fatalf("expected mock client, got %T", client)
	}
}

func TestRunGoalExitCodes(t *testing.T) {
	root := chdirTemp(t)
	cfg := &config.Config{Goal: config.GoalConfig{SandboxRoot: root}}

	newAgent := func(t *testing.T, name string, client llm.LLMClient) *agent.Agent {
		t.Helper()
		sess, err := session.New("goal-exit-" + name)
		if err != nil {
			t.Fatal(err)
		}
		a, err := agent.New(cfg, sess, "", agent.ModeAuto, client, agent.ToolVerbosityNone)
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(a.Stop)
		return a
	}

	t.Run("success", func(t *testing.T) {
		client := llm.NewScriptedClient(
			llm.Text(`{"steps": [{"kind": "tool_call", "tool": "write_file", "args": {"path": "ok.txt", "content": "x"}}]}`),
		)
		code := runGoal(context.Background(), newAgent(t, "success", client), "write ok.txt", goal.NoopEventSink())
		if code != 0 {
			t.Errorf("expected exit code 0, got %d", code)
		}
	})

	t.Run("failure", func(t *testing.T) {
		client := llm.NewScriptedClient(llm.Text("not a plan"))
		code := runGoal(context.Background(), newAgent(t, "failure", client), "impossible", goal.NoopEventSink())
		if code != 1 {
			t.Errorf("expected exit code 1, got %d", code)
		}
	})
}
