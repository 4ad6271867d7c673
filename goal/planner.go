package goal

import (
	"context"
	"fmt"
	"strings"

	"github.com/m4xw311/nexus/errors"
	"github.com/m4xw311/nexus/llm"
	"github.com/m4xw311/nexus/session"
	"github.com/m4xw311/nexus/tools"
)

const planSystemPrompt = `You are the planning component of an autonomous assistant.
Decompose the user's goal into an ordered list of steps. Each step is either:
- "tool_call": invoke one of the available tools with concrete arguments
- "reason": pause to assess progress and decide how to proceed

Respond with JSON only, no prose and no markdown fences, in this exact shape:
{"steps": [{"kind": "tool_call", "tool": "read_file", "args": {"path": "notes.txt"}}, {"kind": "reason", "description": "check whether the goal is satisfied"}]}

Rules:
- Use only the tools listed below. Never invent a tool.
- File paths must stay inside the working directory. Never use absolute paths or "..".
- End the plan with a "reason" step that verifies the goal was achieved.`

// Planner turns a goal into a Plan by asking the model, and revises plans
// that have gone wrong.
type Planner struct {
	client llm.LLMClient
}

func NewPlanner(client llm.LLMClient) *Planner {
	return &Planner{client: client}
}

// CreatePlan asks the model for an initial plan. Malformed or empty
// responses come back as planning errors; transport failures keep their api
// kind.
func (p *Planner) CreatePlan(ctx context.Context, goal string, available []tools.Tool) (*Plan, error) {
	prompt := fmt.Sprintf("Goal: %s\n\nAvailable tools:\n%s\n\nProduce the plan now.", goal, describeTools(available))
	return p.requestPlan(ctx, prompt)
}

// Replan asks the model for a fresh plan after the current one failed,
// feeding back the execution history so the model can route around what
// went wrong.
func (p *Planner) Replan(ctx context.Context, goal string, ec *ExecutionContext, available []tools.Tool) (*Plan, error) {
	prompt := fmt.Sprintf("Goal: %s\n\nAvailable tools:\n%s\n\nA previous plan did not work. Execution history:\n%s\n\nProduce a corrected plan that avoids the failures above.",
		goal, describeTools(available), ec.Summary())
	return p.requestPlan(ctx, prompt)
}

func (p *Planner) requestPlan(ctx context.Context, prompt string) (*Plan, error) {
	messages := []session.Message{
		{Role: "system", Content: planSystemPrompt},
		{Role: "user", Content: prompt},
	}

	response, err := p.client.Chat(ctx, messages, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "plan request failed")
	}
	if response == nil || strings.TrimSpace(response.Content) == "" {
		return nil, errors.E(errors.KindPlanning, "model returned no plan content")
	}

	return parsePlan(response.Content)
}

func describeTools(available []tools.Tool) string {
	if len(available) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for _, t := range available {
		fmt.Fprintf(&b, "- %s: %s\n", t.Name(), t.Description())
	}
	return strings.TrimRight(b.String(), "\n")
}
