package goal

import (
	"fmt"
	"strings"

	"github.com/m4xw311/nexus/errors"
)

// OutcomeTag classifies how a step went. Tool and model failures are data,
// not Go errors: they land here and the executor decides what to do.
type OutcomeTag string

const (
	OutcomeSuccess    OutcomeTag = "success"
	OutcomeToolError  OutcomeTag = "tool_error"
	OutcomeModelError OutcomeTag = "model_error"
	OutcomeCancelled  OutcomeTag = "cancelled"
)

// Outcome is the result of executing a single step.
type Outcome struct {
	Tag     OutcomeTag  `json:"tag"`
	ErrKind errors.Kind `json:"error_kind,omitempty"`
	Output  string      `json:"output,omitempty"`
}

// Record pairs a step with its outcome, in execution order.
type Record struct {
	Step    Step    `json:"step"`
	Outcome Outcome `json:"outcome"`
}

// ExecutionContext accumulates everything that happened during a goal run.
// It feeds replanning prompts and the final report shown to the user.
type ExecutionContext struct {
	Records []Record `json:"records"`
	Notes   []string `json:"notes,omitempty"`
}

func NewExecutionContext() *ExecutionContext {
	return &ExecutionContext{}
}

func (ec *ExecutionContext) Append(step Step, outcome Outcome) {
	ec.Records = append(ec.Records, Record{Step: step, Outcome: outcome})
}

func (ec *ExecutionContext) AddNote(format string, a ...interface{}) {
	ec.Notes = append(ec.Notes, fmt.Sprintf(format, a...))
}

// Summary renders the run history as plain text, one line per record. Used
// both in replanning prompts and in the CLI's final report.
func (ec *ExecutionContext) Summary() string {
	if ec == nil || (len(ec.Records) == 0 && len(ec.Notes) == 0) {
		return "no steps executed"
	}

	var b strings.Builder
	for i, rec := range ec.Records {
		label := string(rec.Step.Kind)
		if rec.Step.Kind == StepToolCall {
			label = rec.Step.Tool
		} else if rec.Step.Description != "" {
			label = rec.Step.Description
		}
		fmt.Fprintf(&b, "%d. [%s] %s", i+1, rec.Outcome.Tag, label)
		if rec.Outcome.ErrKind != errors.KindNone {
			fmt.Fprintf(&b, " (%s)", rec.Outcome.ErrKind)
		}
		if out := strings.TrimSpace(rec.Outcome.Output); out != "" {
			if len(out) > 200 {
				out = out[:200] + "..."
			}
			fmt.Fprintf(&b, ": %s", strings.ReplaceAll(out, "\n", " "))
		}
		b.WriteString("\n")
	}
	for _, note := range ec.Notes {
		fmt.Fprintf(&b, "note: %s\n", note)
	}
	return strings.TrimRight(b.String(), "\n")
}
