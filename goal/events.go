package goal

import (
	"context"
	"sync"
)

// EventType identifies a progress event emitted during a goal run.
type EventType string

const (
	EventGoalStarted  EventType = "goal_started"
	EventPlanCreated  EventType = "plan_created"
	EventStepStarted  EventType = "step_started"
	EventStepOutcome  EventType = "step_outcome"
	EventReplanning   EventType = "replanning"
	EventGoalTerminal EventType = "goal_terminal"
)

// Event is a single progress notification. StepIndex is one-based and only
// set on step events.
type Event struct {
	RunID     string    `json:"run_id"`
	Type      EventType `json:"type"`
	StepIndex int       `json:"step_index,omitempty"`
	StepKind  StepKind  `json:"step_kind,omitempty"`
	Outcome   *Outcome  `json:"outcome,omitempty"`
	State     State     `json:"state,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// EventSink receives progress events. Publish errors never affect the run;
// callers ignore them.
type EventSink interface {
	Publish(ctx context.Context, event Event) error
}

type noopEventSink struct{}

func (noopEventSink) Publish(context.Context, Event) error { return nil }

// NoopEventSink returns a sink that discards all events.
func NoopEventSink() EventSink { return noopEventSink{} }

// MemoryEventSink records events in order, for inspection in tests.
type MemoryEventSink struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryEventSink() *MemoryEventSink {
	return &MemoryEventSink{}
}

func (s *MemoryEventSink) Publish(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *MemoryEventSink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}
