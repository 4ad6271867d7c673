package goal

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/m4xw311/nexus/errors"
)

// StepKind is the closed set of planned action variants. Anything else in a
// model response is a planning error, not a best-effort guess.
type StepKind string

const (
	StepToolCall StepKind = "tool_call"
	StepReason   StepKind = "reason"
)

// Step is one planned action: a tool invocation or a reasoning/decision
// request.
type Step struct {
	Kind        StepKind               `json:"kind"`
	Tool        string                 `json:"tool,omitempty"`
	Args        map[string]interface{} `json:"args,omitempty"`
	Description string                 `json:"description,omitempty"`
}

// Plan is an ordered list of steps intended to satisfy a goal. A valid plan
// is never empty.
type Plan struct {
	Steps []Step `json:"steps"`
}

func planDetail(p *Plan) string {
	return fmt.Sprintf("%d steps", len(p.Steps))
}

var fenceRE = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// stripFences removes a surrounding markdown code fence, which models emit
// despite instructions not to.
func stripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if m := fenceRE.FindStringSubmatch(trimmed); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return trimmed
}

// parsePlan parses a model response into a Plan, enforcing the non-empty
// invariant and the closed step-kind set.
func parsePlan(text string) (*Plan, error) {
	raw := stripFences(text)
	if raw == "" {
		return nil, errors.E(errors.KindPlanning, "model returned an empty plan response")
	}

	var plan Plan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		return nil, errors.WrapKind(err, errors.KindPlanning, "plan response is not valid JSON")
	}
	if len(plan.Steps) == 0 {
		return nil, errors.E(errors.KindPlanning, "plan contains zero steps")
	}

	for i, step := range plan.Steps {
		switch step.Kind {
		case StepToolCall:
			if step.Tool == "" {
				return nil, errors.E(errors.KindPlanning, "step %d is a tool_call without a tool name", i+1)
			}
		case StepReason:
			// Description is optional.
		default:
			return nil, errors.E(errors.KindPlanning, "step %d has unrecognized kind %q", i+1, step.Kind)
		}
	}

	return &plan, nil
}
