// Package logging provides the process logger: colored console output plus
// an optional timestamped log file under the state directory.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lmittmann/tint"
	"github.com/m4xw311/nexus/goal"
)

// New returns a console logger writing colored output to w.
func New(w io.Writer, level slog.Level) *slog.Logger {
	handler := tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05",
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Value.Kind() == slog.KindAny {
				if _, ok := a.Value.Any().(error); ok {
					return tint.Attr(9, a)
				}
			}
			return a
		},
	})
	return slog.New(handler)
}

// NewWithFile returns a logger that writes colored output to w and a plain
// copy to a timestamped file under dir. The caller closes the returned
// io.Closer when done.
func NewWithFile(w io.Writer, level slog.Level, dir string) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	name := fmt.Sprintf("nexus_%s.log", time.Now().Format("20060102_150405"))
	file, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	console := tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05",
	})
	plain := slog.NewTextHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(multiHandler{console, plain}), file, nil
}

// multiHandler fans one record out to several handlers. slog has no
// built-in fanout.
type multiHandler []slog.Handler

func (m multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m multiHandler) Handle(ctx context.Context, record slog.Record) error {
	var firstErr error
	for _, h := range m {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		if err := h.Handle(ctx, record.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(multiHandler, len(m))
	for i, h := range m {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (m multiHandler) WithGroup(name string) slog.Handler {
	out := make(multiHandler, len(m))
	for i, h := range m {
		out[i] = h.WithGroup(name)
	}
	return out
}

// eventSink renders goal progress events through the logger.
type eventSink struct {
	logger *slog.Logger
}

// NewEventSink adapts a logger into a goal progress sink.
func NewEventSink(logger *slog.Logger) goal.EventSink {
	return eventSink{logger: logger}
}

func (s eventSink) Publish(_ context.Context, event goal.Event) error {
	attrs := []any{slog.String("run", event.RunID)}
	switch event.Type {
	case goal.EventGoalStarted:
		s.logger.Info("goal started", append(attrs, slog.String("goal", event.Detail))...)
	case goal.EventPlanCreated:
		s.logger.Info("plan created", append(attrs, slog.String("plan", event.Detail))...)
	case goal.EventStepStarted:
		s.logger.Info("step started",
			append(attrs, slog.Int("step", event.StepIndex), slog.String("kind", string(event.StepKind)), slog.String("action", event.Detail))...)
	case goal.EventStepOutcome:
		attrs = append(attrs, slog.Int("step", event.StepIndex))
		if event.Outcome != nil {
			attrs = append(attrs, slog.String("outcome", string(event.Outcome.Tag)))
			if event.Outcome.ErrKind != "" {
				attrs = append(attrs, slog.String("error_kind", string(event.Outcome.ErrKind)))
			}
		}
		if event.Outcome != nil && event.Outcome.Tag != goal.OutcomeSuccess {
			s.logger.Warn("step failed", attrs...)
		} else {
			s.logger.Info("step finished", attrs...)
		}
	case goal.EventReplanning:
		s.logger.Warn("replanning", attrs...)
	case goal.EventGoalTerminal:
		attrs = append(attrs, slog.String("state", string(event.State)))
		if event.Detail != "" {
			attrs = append(attrs, slog.String("detail", event.Detail))
		}
		if event.State == goal.StateSucceeded {
			s.logger.Info("goal finished", attrs...)
		} else {
			s.logger.Error("goal failed", attrs...)
		}
	default:
		s.logger.Debug("goal event", append(attrs, slog.String("type", string(event.Type)))...)
	}
	return nil
}
