package agent

import (
	"context"
	"fmt"

	"github.com/m4xw311/nexus/config"
	"github.com/m4xw311/nexus/errors"
	"github.com/m4xw311/nexus/goal"
	"github.com/m4xw311/nexus/llm"
	"github.com/m4xw311/nexus/session"
	"github.com/m4xw311/nexus/tools"
)

type Mode string

const (
	ModeAuto   Mode = "auto"
	ModePrompt Mode = "prompt"
)

type ToolVerbosity string

const (
	ToolVerbosityNone ToolVerbosity = "none"
	ToolVerbosityInfo ToolVerbosity = "info"
	ToolVerbosityAll  ToolVerbosity = "all"
)

// ProcessCallbacks let the interaction surface (terminal, tests) observe and
// steer a conversation turn without the agent knowing about I/O.
type ProcessCallbacks struct {
	OnAssistantMessage func(message string)
	OnToolCall         func(toolCall session.ToolCall)
	OnToolResult       func(toolCall session.ToolCall, result string)
	ShouldExecuteTool  func(toolCall session.ToolCall) bool
	OnWarning          func(warning string)
}

// Agent ties the model client, tool registry, and conversation session
// together. It serves both the interactive chat loop and one-shot goal runs.
type Agent struct {
	Config         *config.Config
	Session        *session.Session
	LLMClient      llm.LLMClient
	Registry       *tools.ToolRegistry
	AvailableTools []tools.Tool
	Mode           Mode
	Verbosity      ToolVerbosity
}

func New(cfg *config.Config, sess *session.Session, toolset string, mode Mode, client llm.LLMClient, verbosity ToolVerbosity) (*Agent, error) {
	ts, err := cfg.GetToolset(toolset)
	if err != nil {
		return nil, err
	}

	sandbox, err := tools.NewSandbox(cfg.Goal.SandboxRoot, cfg.FilesystemAccess)
	if err != nil {
		return nil, err
	}
	registry := tools.NewToolRegistry(cfg, sandbox)
	activeTools, err := registry.GetActiveTools(ts)
	if err != nil {
		registry.Stop()
		return nil, err
	}

	return &Agent{
		Config:         cfg,
		Session:        sess,
		LLMClient:      client,
		Registry:       registry,
		AvailableTools: activeTools,
		Mode:           mode,
		Verbosity:      verbosity,
	}, nil
}

// Stop releases tool resources, including MCP server subprocesses.
func (a *Agent) Stop() {
	a.Registry.Stop()
}

// ProcessUserInput runs one conversation turn: model, requested tools, model
// again with the results, until the model answers without tool calls.
func (a *Agent) ProcessUserInput(ctx context.Context, userInput string, callbacks ProcessCallbacks) error {
	a.Session.AddMessage(session.Message{Role: "user", Content: userInput})

	for {
		assistantResponse, err := a.LLMClient.Chat(ctx, a.Session.Messages, a.AvailableTools)
		if err != nil {
			return errors.Wrapf(err, "chat request failed")
		}

		a.Session.AddMessage(*assistantResponse)
		if assistantResponse.Content != "" && callbacks.OnAssistantMessage != nil {
			callbacks.OnAssistantMessage(assistantResponse.Content)
		}

		if len(assistantResponse.ToolCalls) == 0 {
			break
		}

		for _, toolCall := range assistantResponse.ToolCalls {
			if callbacks.OnToolCall != nil {
				callbacks.OnToolCall(toolCall)
			}
			result := a.executeToolCall(ctx, toolCall, callbacks)
			if callbacks.OnToolResult != nil {
				callbacks.OnToolResult(toolCall, result)
			}
			a.Session.AddMessage(session.Message{
				Role:      "tool",
				Content:   result,
				ToolCalls: []session.ToolCall{toolCall},
			})
		}
	}

	if err := a.Session.Save(); err != nil && callbacks.OnWarning != nil {
		callbacks.OnWarning(fmt.Sprintf("failed to save session: %v", err))
	}
	return nil
}

func (a *Agent) executeToolCall(ctx context.Context, toolCall session.ToolCall, callbacks ProcessCallbacks) string {
	if callbacks.ShouldExecuteTool != nil && !callbacks.ShouldExecuteTool(toolCall) {
		return "Tool execution denied by user."
	}

	tool, ok := a.Registry.GetTool(toolCall.Name)
	if !ok {
		return fmt.Sprintf("Error: tool '%s' is not available", toolCall.Name)
	}
	result, err := tool.Execute(ctx, toolCall.Args)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return result
}

// RunGoal executes one autonomous goal and records the run in the session
// transcript. Events go to the provided sink; pass nil to discard them.
func (a *Agent) RunGoal(ctx context.Context, goalText string, events goal.EventSink) (goal.State, *goal.ExecutionContext, error) {
	goalSession := goal.NewSession(a.LLMClient, a.Registry, a.AvailableTools, a.Config.Goal, events)

	a.Session.AddMessage(session.Message{Role: "user", Content: "Goal: " + goalText})
	final, ec, err := goalSession.Run(ctx, goalText)
	if err != nil {
		return final, ec, err
	}

	a.Session.AddMessage(session.Message{
		Role:    "assistant",
		Content: fmt.Sprintf("Goal finished with state %s.\n%s", final, ec.Summary()),
	})
	if saveErr := a.Session.Save(); saveErr != nil {
		return final, ec, errors.Wrapf(saveErr, "failed to save session after goal run")
	}
	return final, ec, nil
}
