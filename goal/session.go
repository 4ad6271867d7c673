// Package goal implements the autonomous goal-execution loop: a planner
// that decomposes a goal into tool calls and reasoning checkpoints, an
// executor that walks the plan while absorbing failures, and a single-use
// session tying the two together.
package goal

import (
	"context"

	"github.com/google/uuid"
	"github.com/m4xw311/nexus/config"
	"github.com/m4xw311/nexus/errors"
	"github.com/m4xw311/nexus/llm"
	"github.com/m4xw311/nexus/tools"
)

// Session runs exactly one goal from planning through to a terminal state.
// A second Run on the same Session is an error.
type Session struct {
	planner  *Planner
	executor *Executor
	events   EventSink
	active   []tools.Tool
	used     bool
}

func NewSession(client llm.LLMClient, registry *tools.ToolRegistry, active []tools.Tool, cfg config.GoalConfig, events EventSink) *Session {
	if events == nil {
		events = NoopEventSink()
	}
	planner := NewPlanner(client)
	return &Session{
		planner:  planner,
		executor: NewExecutor(client, registry, active, planner, events, cfg),
		events:   events,
		active:   active,
	}
}

// Run plans and executes the goal. Planning failures on the initial plan
// end the run as Failed without invoking the executor; the reason lands in
// the execution context notes. The returned error covers misuse only.
func (s *Session) Run(ctx context.Context, goalText string) (State, *ExecutionContext, error) {
	if s.used {
		return StateFailed, nil, errors.New("goal session already used; create a new one per goal")
	}
	s.used = true

	state := &SessionState{
		RunID:    uuid.NewString(),
		Goal:     goalText,
		Terminal: StateRunning,
	}
	_ = s.events.Publish(ctx, Event{RunID: state.RunID, Type: EventGoalStarted, Detail: goalText})

	plan, err := s.planner.CreatePlan(ctx, goalText, s.active)
	if err != nil {
		ec := NewExecutionContext()
		ec.AddNote("planning failed: %v", err)
		state.Terminal = StateFailed
		_ = s.events.Publish(ctx, Event{RunID: state.RunID, Type: EventGoalTerminal, State: StateFailed, Detail: err.Error()})
		return StateFailed, ec, nil
	}
	_ = s.events.Publish(ctx, Event{RunID: state.RunID, Type: EventPlanCreated, Detail: planDetail(plan)})

	final, ec := s.executor.Run(ctx, state, plan)
	return final, ec, nil
}
