package goal

import (
	"context"
	"strings"
	"testing"

	"github.com/m4xw311/nexus/config"
	"github.com/m4xw311/nexus/llm"
)

func newGoalSession(t *testing.T, client llm.LLMClient, sink EventSink) *Session {
	t.Helper()
	registry, active, _ := testHarness(t)
	return NewSession(client, registry, active, config.GoalConfig{ReplanBudget: 1}, sink)
}

func TestSessionRunEndToEnd(t *testing.T) {
	client := llm.NewScriptedClient(
		llm.Text(`{"steps": [
			{"kind": "tool_call", "tool": "write_file", "args": {"path": "report.txt", "content": "findings"}},
			{"kind": "reason", "description": "confirm the report exists"}
		]}`),
		llm.Text("GOAL_COMPLETE: report written"),
	)
	sink := NewMemoryEventSink()
	sess := newGoalSession(t, client, sink)

	final, ec, err := sess.Run(context.Background(), "write a report")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if final != StateSucceeded {
		t.Fatalf("expected %s, got %s", StateSucceeded, final)
	}
	if len(ec.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(ec.Records))
	}

	events := sink.Events()
	if len(events) == 0 || events[0].Type != EventGoalStarted {
		t.Fatalf("expected goal_started first, got %+v", events)
	}
	if events[1].Type != EventPlanCreated {
		t.Errorf("expected plan_created second, got %s", events[1].Type)
	}
	last := events[len(events)-1]
	if last.Type != EventGoalTerminal || last.State != StateSucceeded {
		t.Errorf("expected terminal succeeded event, got %+v", last)
	}
}

func TestSessionZeroStepPlanFailsWithoutExecution(t *testing.T) {
	client := llm.NewScriptedClient(llm.Text(`{"steps": []}`))
	sink := NewMemoryEventSink()
	sess := newGoalSession(t, client, sink)

	final, ec, err := sess.Run(context.Background(), "do nothing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if final != StateFailed {
		t.Fatalf("expected %s, got %s", StateFailed, final)
	}
	if len(ec.Records) != 0 {
		t.Fatalf("no steps should execute, got %d records", len(ec.Records))
	}
	if client.Calls() != 1 {
		t.Errorf("expected only the planning call, got %d", client.Calls())
	}
	found := false
	for _, note := range ec.Notes {
		if strings.Contains(note, "planning failed") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a planning failure note, got %v", ec.Notes)
	}

	events := sink.Events()
	want := []EventType{EventGoalStarted, EventGoalTerminal}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %+v", len(want), events)
	}
	for i, ev := range events {
		if ev.Type != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], ev.Type)
		}
	}
}

func TestSessionIsSingleUse(t *testing.T) {
	client := llm.NewScriptedClient(
		llm.Text(`{"steps": [{"kind": "reason"}]}`),
		llm.Text("GOAL_COMPLETE: done"),
	)
	sess := newGoalSession(t, client, nil)

	if _, _, err := sess.Run(context.Background(), "first"); err != nil {
		t.Fatalf("first run errored: %v", err)
	}
	if _, _, err := sess.Run(context.Background(), "second"); err == nil {
		t.Fatal("expected an error on session reuse")
	}
}

func TestSessionUnworkablePlanReplans(t *testing.T) {
	client := llm.NewScriptedClient(
		llm.Text(`{"steps": [{"kind": "reason", "description": "sanity check"}]}`),
		llm.Text("PLAN_UNWORKABLE: the plan does not touch the filesystem"),
		llm.Text(`{"steps": [{"kind": "tool_call", "tool": "write_file", "args": {"path": "a.txt", "content": "x"}}]}`),
	)
	sess := newGoalSession(t, client, nil)

	final, ec, err := sess.Run(context.Background(), "write a.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if final != StateSucceeded {
		t.Fatalf("expected %s, got %s", StateSucceeded, final)
	}
	if len(ec.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(ec.Records))
	}
	if ec.Records[1].Step.Tool != "write_file" {
		t.Errorf("expected the replanned tool step, got %+v", ec.Records[1].Step)
	}
}
