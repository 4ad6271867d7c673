package goal

import (
	"context"
	"strings"

	"github.com/m4xw311/nexus/config"
	"github.com/m4xw311/nexus/errors"
	"github.com/m4xw311/nexus/llm"
	"github.com/m4xw311/nexus/session"
	"github.com/m4xw311/nexus/tools"
)

// State is the executor's lifecycle state. Succeeded and Failed are
// terminal; AwaitingReplan is transient and resolved inside Run.
type State string

const (
	StateRunning        State = "running"
	StateAwaitingReplan State = "awaiting_replan"
	StateSucceeded      State = "succeeded"
	StateFailed         State = "failed"
)

const reasonSystemPrompt = `You are assessing the progress of an autonomous goal run.
Review the goal and the execution history, then respond with exactly one of:
- "GOAL_COMPLETE: <short justification>" if the goal has been achieved
- "PLAN_UNWORKABLE: <short justification>" if the current plan cannot achieve the goal
- otherwise, brief guidance on how the remaining steps should proceed`

type reasonSignal int

const (
	signalContinue reasonSignal = iota
	signalComplete
	signalUnworkable
)

// SessionState is the mutable bookkeeping for one goal run, owned by the
// goal Session and updated by the Executor after each tick.
type SessionState struct {
	RunID    string
	Goal     string
	Ticks    int
	Terminal State
}

// Executor walks a plan step by step, absorbing tool and model failures
// into the execution context and replanning when failures accumulate.
type Executor struct {
	client   llm.LLMClient
	registry *tools.ToolRegistry
	planner  *Planner
	active   []tools.Tool
	events   EventSink

	failureThreshold int
	replanBudget     int
	maxActions       int
}

func NewExecutor(client llm.LLMClient, registry *tools.ToolRegistry, active []tools.Tool, planner *Planner, events EventSink, cfg config.GoalConfig) *Executor {
	if events == nil {
		events = NoopEventSink()
	}
	threshold := cfg.FailureThreshold
	if threshold <= 0 {
		threshold = config.DefaultFailureThreshold
	}
	budget := cfg.ReplanBudget
	if budget < 0 {
		budget = config.DefaultReplanBudget
	}
	maxActions := cfg.MaxActions
	if maxActions <= 0 {
		maxActions = config.DefaultMaxActions
	}
	return &Executor{
		client:           client,
		registry:         registry,
		planner:          planner,
		active:           active,
		events:           events,
		failureThreshold: threshold,
		replanBudget:     budget,
		maxActions:       maxActions,
	}
}

// Run executes the plan to a terminal state. Tool and model failures are
// recorded in the returned ExecutionContext, never surfaced as Go errors.
func (e *Executor) Run(ctx context.Context, state *SessionState, plan *Plan) (State, *ExecutionContext) {
	ec := NewExecutionContext()
	failures := 0
	replansUsed := 0
	index := 0

	for {
		// Cancellation is honored between steps; an in-flight step always
		// finishes.
		if ctx.Err() != nil {
			if index < len(plan.Steps) {
				ec.Append(plan.Steps[index], Outcome{Tag: OutcomeCancelled, ErrKind: errors.KindCancelled, Output: ctx.Err().Error()})
			}
			ec.AddNote("run cancelled after %d steps", state.Ticks)
			return e.terminal(ctx, state, ec, StateFailed)
		}

		if index >= len(plan.Steps) {
			return e.terminal(ctx, state, ec, StateSucceeded)
		}

		if state.Ticks >= e.maxActions {
			ec.AddNote("action limit of %d reached before the plan completed", e.maxActions)
			return e.terminal(ctx, state, ec, StateFailed)
		}

		step := plan.Steps[index]
		_ = e.events.Publish(ctx, Event{RunID: state.RunID, Type: EventStepStarted, StepIndex: index + 1, StepKind: step.Kind, Detail: stepLabel(step)})

		var outcome Outcome
		signal := signalContinue
		switch step.Kind {
		case StepToolCall:
			outcome = e.runToolStep(ctx, step)
		case StepReason:
			outcome, signal = e.runReasonStep(ctx, state.Goal, ec, step)
		}

		ec.Append(step, outcome)
		state.Ticks++
		_ = e.events.Publish(ctx, Event{RunID: state.RunID, Type: EventStepOutcome, StepIndex: index + 1, StepKind: step.Kind, Outcome: &outcome})

		if signal == signalComplete {
			return e.terminal(ctx, state, ec, StateSucceeded)
		}

		needReplan := signal == signalUnworkable
		if outcome.Tag == OutcomeToolError || outcome.Tag == OutcomeModelError {
			failures++
			if failures >= e.failureThreshold {
				needReplan = true
			}
		}

		index++
		if !needReplan {
			continue
		}

		if replansUsed >= e.replanBudget {
			ec.AddNote("replan budget of %d exhausted", e.replanBudget)
			return e.terminal(ctx, state, ec, StateFailed)
		}

		state.Terminal = StateAwaitingReplan
		_ = e.events.Publish(ctx, Event{RunID: state.RunID, Type: EventReplanning, State: StateAwaitingReplan})

		newPlan, err := e.replanWithRetry(ctx, state, ec)
		if err != nil {
			ec.AddNote("replanning failed: %v", err)
			return e.terminal(ctx, state, ec, StateFailed)
		}

		plan = newPlan
		index = 0
		failures = 0
		replansUsed++
		state.Terminal = StateRunning
		_ = e.events.Publish(ctx, Event{RunID: state.RunID, Type: EventPlanCreated, Detail: planDetail(newPlan)})
	}
}

// replanWithRetry invokes the planner, tolerating a single planning or
// model failure. A second consecutive failure is fatal to the run.
func (e *Executor) replanWithRetry(ctx context.Context, state *SessionState, ec *ExecutionContext) (*Plan, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if ctx.Err() != nil {
			return nil, errors.WrapKind(ctx.Err(), errors.KindCancelled, "replanning cancelled")
		}
		plan, err := e.planner.Replan(ctx, state.Goal, ec, e.active)
		if err == nil {
			return plan, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func (e *Executor) runToolStep(ctx context.Context, step Step) Outcome {
	tool, ok := e.registry.GetTool(step.Tool)
	if !ok {
		return Outcome{Tag: OutcomeToolError, ErrKind: errors.KindNotFound, Output: "tool '" + step.Tool + "' is not registered"}
	}

	result, err := tool.Execute(ctx, step.Args)
	if err != nil {
		kind := errors.KindOf(err)
		if kind == errors.KindNone {
			kind = errors.KindIO
		}
		return Outcome{Tag: OutcomeToolError, ErrKind: kind, Output: err.Error()}
	}
	return Outcome{Tag: OutcomeSuccess, Output: result}
}

func (e *Executor) runReasonStep(ctx context.Context, goal string, ec *ExecutionContext, step Step) (Outcome, reasonSignal) {
	prompt := "Goal: " + goal + "\n\nExecution history:\n" + ec.Summary()
	if step.Description != "" {
		prompt += "\n\nFocus: " + step.Description
	}
	messages := []session.Message{
		{Role: "system", Content: reasonSystemPrompt},
		{Role: "user", Content: prompt},
	}

	response, err := e.client.Chat(ctx, messages, nil)
	if err != nil {
		kind := errors.KindOf(err)
		if kind == errors.KindNone {
			kind = errors.KindModel
		}
		return Outcome{Tag: OutcomeModelError, ErrKind: kind, Output: err.Error()}, signalContinue
	}

	content := ""
	if response != nil {
		content = response.Content
	}
	upper := strings.ToUpper(content)
	switch {
	case strings.Contains(upper, "GOAL_COMPLETE"), strings.Contains(upper, "FINISHED"):
		return Outcome{Tag: OutcomeSuccess, Output: content}, signalComplete
	case strings.Contains(upper, "PLAN_UNWORKABLE"):
		return Outcome{Tag: OutcomeSuccess, Output: content}, signalUnworkable
	}
	return Outcome{Tag: OutcomeSuccess, Output: content}, signalContinue
}

func (e *Executor) terminal(ctx context.Context, state *SessionState, ec *ExecutionContext, final State) (State, *ExecutionContext) {
	state.Terminal = final
	_ = e.events.Publish(ctx, Event{RunID: state.RunID, Type: EventGoalTerminal, State: final})
	return final, ec
}

func stepLabel(step Step) string {
	if step.Kind == StepToolCall {
		return step.Tool
	}
	if step.Description != "" {
		return step.Description
	}
	return string(step.Kind)
}
