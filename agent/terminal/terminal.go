package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/m4xw311/nexus/agent"
	"github.com/m4xw311/nexus/goal"
	"github.com/m4xw311/nexus/session"
)

// Terminal handles the terminal/CLI interaction mode for the agent
type Terminal struct {
	agent  *agent.Agent
	events goal.EventSink
	in     io.Reader
	out    io.Writer
}

// New creates a new Terminal instance reading from stdin
func New(a *agent.Agent) *Terminal {
	return &Terminal{
		agent: a,
		in:    os.Stdin,
		out:   os.Stdout,
	}
}

// SetEventSink routes goal progress events started from this terminal.
func (t *Terminal) SetEventSink(sink goal.EventSink) {
	t.events = sink
}

// Run starts the interactive terminal session
func (t *Terminal) Run(ctx context.Context, initialPrompt string) error {
	// If there's an initial prompt from the command line, use it first
	if initialPrompt != "" {
		if err := t.processTurn(ctx, initialPrompt); err != nil {
			return err
		}
	}

	scanner := bufio.NewScanner(t.in)
	for {
		fmt.Fprint(t.out, "You: ")
		if !scanner.Scan() {
			// EOF or read error ends the session
			break
		}

		userInput := strings.TrimSpace(scanner.Text())
		if userInput == "" {
			continue
		}

		if strings.HasPrefix(userInput, "/") {
			quit, err := t.handleCommand(ctx, userInput)
			if err != nil {
				fmt.Fprintf(t.out, "Error: %v\n", err)
			}
			if quit {
				break
			}
			continue
		}

		if err := t.processTurn(ctx, userInput); err != nil {
			fmt.Fprintf(t.out, "Error: %v\n", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return err
	}

	return nil
}

// handleCommand dispatches slash commands. It reports whether the session
// should end.
func (t *Terminal) handleCommand(ctx context.Context, input string) (bool, error) {
	command, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)

	switch command {
	case "/quit", "/exit":
		return true, nil
	case "/help":
		fmt.Fprint(t.out, `Commands:
  /goal <text>  run an autonomous goal inside the working directory
  /session      show session information
  /clear        clear the conversation history
  /quit, /exit  end the session
`)
	case "/clear":
		t.agent.Session.ClearHistory()
		if err := t.agent.Session.Save(); err != nil {
			return false, err
		}
		fmt.Fprintln(t.out, "Conversation history cleared.")
	case "/session":
		info := t.agent.Session.GetInfo()
		fmt.Fprintf(t.out, "Session %s (%s): %d messages, %d tool calls\n", info.Name, info.ID, info.MessageCount, info.ToolCallCount)
	case "/goal":
		if rest == "" {
			fmt.Fprintln(t.out, "Usage: /goal <text>")
			return false, nil
		}
		return false, t.runGoal(ctx, rest)
	default:
		fmt.Fprintf(t.out, "Unknown command %s. Try /help.\n", command)
	}
	return false, nil
}

func (t *Terminal) runGoal(ctx context.Context, goalText string) error {
	final, ec, err := t.agent.RunGoal(ctx, goalText, t.events)
	if err != nil {
		return err
	}
	fmt.Fprintf(t.out, "Goal finished: %s\n%s\n", final, ec.Summary())
	return nil
}

// processTurn handles a single user input turn
func (t *Terminal) processTurn(ctx context.Context, userInput string) error {
	// Create callbacks for terminal-specific behavior
	callbacks := agent.ProcessCallbacks{
		OnAssistantMessage: func(message string) {
			fmt.Fprintf(t.out, "Nexus: %s\n", message)
		},
		OnToolCall: func(toolCall session.ToolCall) {
			// Display tool call information based on verbosity
			if t.agent.Verbosity == agent.ToolVerbosityAll {
				fmt.Fprintf(t.out, "Nexus wants to call tool `%s` with args: %v\n", toolCall.Name, toolCall.Args)
			} else if t.agent.Verbosity == agent.ToolVerbosityInfo {
				fmt.Fprintf(t.out, "Nexus wants to call tool `%s`\n", toolCall.Name)
			}
		},
		OnToolResult: func(toolCall session.ToolCall, result string) {
			// Display tool result if verbosity is set to all
			if t.agent.Verbosity == agent.ToolVerbosityAll {
				fmt.Fprintf(t.out, "Tool `%s` output: %s\n", toolCall.Name, result)
			}
		},
		ShouldExecuteTool: func(toolCall session.ToolCall) bool {
			// In prompt mode, ask for user confirmation
			if t.agent.Mode == agent.ModePrompt {
				fmt.Fprint(t.out, "Do you want to allow this? (y/n): ")
				reader := bufio.NewReader(t.in)
				answer, _ := reader.ReadString('\n')
				return strings.TrimSpace(strings.ToLower(answer)) == "y"
			}
			// In auto mode, always execute
			return true
		},
		OnWarning: func(warning string) {
			fmt.Fprintf(t.out, "Warning: %s\n", warning)
		},
	}

	return t.agent.ProcessUserInput(ctx, userInput, callbacks)
}
