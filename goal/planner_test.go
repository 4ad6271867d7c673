package goal

import (
	"context"
	"testing"

	"github.com/m4xw311/nexus/errors"
	"github.com/m4xw311/nexus/llm"
)

func TestParsePlanRejectsZeroSteps(t *testing.T) {
	_, err := parsePlan(`{"steps": []}`)
	if !errors.Is(err, errors.KindPlanning) {
		t.Fatalf("expected planning error, got %v", err)
	}
}

func TestParsePlanRejectsUnknownKind(t *testing.T) {
	_, err := parsePlan(`{"steps": [{"kind": "teleport"}]}`)
	if !errors.Is(err, errors.KindPlanning) {
		t.Fatalf("expected planning error, got %v", err)
	}
}

func TestParsePlanRejectsToolCallWithoutTool(t *testing.T) {
	_, err := parsePlan(`{"steps": [{"kind": "tool_call", "args": {"path": "a"}}]}`)
	if !errors.Is(err, errors.KindPlanning) {
		t.Fatalf("expected planning error, got %v", err)
	}
}

func TestParsePlanStripsMarkdownFences(t *testing.T) {
	plan, err := parsePlan("```json\n{\"steps\": [{\"kind\": \"reason\", \"description\": \"check\"}]}\n```")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Steps) != 1 || plan.Steps[0].Kind != StepReason {
		t.Fatalf("unexpected plan: %+v", plan)
	}
}

func TestParsePlanInvalidJSON(t *testing.T) {
	_, err := parsePlan("sure, here is the plan: first read the file")
	if !errors.Is(err, errors.KindPlanning) {
		t.Fatalf("expected planning error, got %v", err)
	}
}

func TestCreatePlanPreservesAPIKind(t *testing.T) {
	planner := NewPlanner(llm.NewScriptedClient(llm.APIFailure("boom")))
	_, err := planner.CreatePlan(context.Background(), "goal", nil)
	if !errors.Is(err, errors.KindAPI) {
		t.Fatalf("expected api error, got %v", err)
	}
}

func TestReplanIncludesHistory(t *testing.T) {
	client := llm.NewScriptedClient(llm.Text(`{"steps": [{"kind": "reason"}]}`))
	planner := NewPlanner(client)

	ec := NewExecutionContext()
	ec.Append(
		Step{Kind: StepToolCall, Tool: "read_file", Args: map[string]interface{}{"path": "missing.txt"}},
		Outcome{Tag: OutcomeToolError, ErrKind: errors.KindNotFound, Output: "no such file"},
	)

	plan, err := planner.Replan(context.Background(), "goal", ec, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Steps) != 1 {
		t.Fatalf("unexpected plan: %+v", plan)
	}
	if client.Calls() != 1 {
		t.Fatalf("expected one model call, got %d", client.Calls())
	}
}
